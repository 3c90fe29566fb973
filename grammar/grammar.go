// Package grammar is the thin external collaborator described in §4.G:
// it owns token registration, freezes the token set on first parse, and
// builds a fresh Lexer + engine.Context per Grammar.Parse call so
// sessions never share mutable state.
//
// The grammar-declaration sugar (property-binding registration,
// declarative combinators) is explicitly out of scope (spec.md §1);
// this package exposes only the plain register/parse surface named in
// §6.
package grammar

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/parsus/engine"
	"github.com/deepnoodle-ai/parsus/parseerr"
	"github.com/deepnoodle-ai/parsus/token"
)

// ErrFrozen is returned by Register once a Grammar has parsed its first
// input: the token set becomes append-closed for the grammar's lifetime.
var ErrFrozen = errors.New("parsus: grammar is frozen, tokens cannot be registered after the first parse")

// ErrAlreadyRegistered is returned by Register for a token registered twice.
var ErrAlreadyRegistered = errors.New("parsus: token already registered")

// Option configures a Grammar's engine at construction time. It is not
// generic over V: a Grammar's token/engine configuration doesn't depend
// on its root parser's return type, so one Option value works for any
// Grammar[V].
type Option = func(*config)

// config is shared, V-independent state.
type config struct {
	engineOpts []engine.Option
}

// WithMaxDepth bounds parser-body nesting depth (engine.DefaultMaxDepth otherwise).
func WithMaxDepth(n int) Option {
	return func(c *config) { c.engineOpts = append(c.engineOpts, engine.WithMaxDepth(n)) }
}

// WithTrace enables zerolog debug tracing of the trampoline for every
// session this Grammar creates.
func WithTrace(logger zerolog.Logger) Option {
	return func(c *config) { c.engineOpts = append(c.engineOpts, engine.WithTrace(logger)) }
}

// Grammar is a frozen-on-first-use collection of tokens plus a
// designated root parser of type V. It is read-only once frozen and may
// be shared across concurrent sessions (§5 "Sharing") provided each
// session is its own Grammar.Parse call.
type Grammar[V any] struct {
	root       engine.Parser[V]
	tokens     []*token.Token
	registered map[*token.Token]bool
	frozen     bool
	cfg        config
}

// New builds a Grammar whose designated root parser is root. Additional
// tokens are added with Register before the first call to Parse.
func New[V any](root engine.Parser[V], opts ...Option) *Grammar[V] {
	g := &Grammar[V]{root: root, registered: make(map[*token.Token]bool)}
	for _, opt := range opts {
		opt(&g.cfg)
	}
	return g
}

// Register adds tok to the grammar. It fails if the grammar is frozen
// (parsed at least once already) or tok was already registered.
// Registration order is the lexer's tiebreak order (§3).
func (g *Grammar[V]) Register(tok *token.Token) error {
	if g.frozen {
		return ErrFrozen
	}
	if g.registered[tok] {
		return ErrAlreadyRegistered
	}
	g.registered[tok] = true
	g.tokens = append(g.tokens, tok)
	return nil
}

// MustRegister is Register, panicking on error. It returns tok so
// registration can be chained into a declaration like:
//
//	plus := g.MustRegister(token.Literal("plus", "+"))
func (g *Grammar[V]) MustRegister(tok *token.Token) *token.Token {
	if err := g.Register(tok); err != nil {
		panic(err)
	}
	return tok
}

// Tokens returns a copy of the frozen (or current, if not yet frozen)
// token list in registration order. token.EOF is implicit in every
// grammar's candidate set and is not included here; see lexerTokens.
func (g *Grammar[V]) Tokens() []*token.Token {
	out := make([]*token.Token, len(g.tokens))
	copy(out, g.tokens)
	return out
}

// lexerTokens is what the Lexer is actually built from: the registered
// tokens in order, with the implicit EOF terminal appended last so it
// never pre-empts a user token's priority.
func (g *Grammar[V]) lexerTokens() []*token.Token {
	out := make([]*token.Token, 0, len(g.tokens)+1)
	out = append(out, g.tokens...)
	out = append(out, token.EOF)
	return out
}

// Parse runs this grammar's root parser against input, freezing the
// token set on this (or a prior) call. The root parser is implicitly
// wrapped to require EOF immediately afterward: trailing unconsumed
// input surfaces as MismatchedToken/UnmatchedToken at the offset where
// consumption stopped.
func (g *Grammar[V]) Parse(input string) parseerr.ParseResult[V] {
	return ParseAs[V, V](g, g.root, input)
}

// ParseAs runs an arbitrary parser p (not necessarily the grammar's
// designated root) against input, using this grammar's frozen token set.
// This is Grammar.parse(parser, input) from §6: a fresh Lexer and
// engine.Context are built per call, so concurrent callers sharing g are
// safe as long as each owns its own call.
func ParseAs[V, T any](g *Grammar[V], p engine.Parser[T], input string) parseerr.ParseResult[T] {
	if !g.frozen {
		g.frozen = true
	}
	wrapped := func(scope *engine.Scope) T {
		value := engine.Run(scope, p)
		engine.Token(scope, token.EOF)
		return value
	}
	ctx := engine.NewContext(input, g.lexerTokens(), g.cfg.engineOpts...)
	return engine.RunParser(ctx, wrapped)
}

// ParseOrThrow is Parse, panicking with the ParseError on failure
// instead of returning it as a value (the spec's "raised failure
// carrying the same ParseError" semantics, realized in Go as a panic
// since there is no exception type to construct).
func (g *Grammar[V]) ParseOrThrow(input string) V {
	return g.Parse(input).GetOrThrow()
}

// ParseOrNil adapts failure to a nil pointer instead of a ParseError.
func (g *Grammar[V]) ParseOrNil(input string) *V {
	res := g.Parse(input)
	if !res.IsSuccess() {
		return nil
	}
	v := res.Value()
	return &v
}

// ParseOrElse adapts failure to the supplied default value.
func (g *Grammar[V]) ParseOrElse(input string, fallback V) V {
	res := g.Parse(input)
	if !res.IsSuccess() {
		return fallback
	}
	return res.Value()
}
