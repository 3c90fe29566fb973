// Package engine implements the backtracking execution engine (§4.F of
// the spec): the trampolined executor that drives a Parser, installs an
// O(1) backtrack point on every alternation, and restores lexer position
// when a branch fails.
//
// Go has no first-class continuations, so the spec's cont/result/
// backtrack registers are realized here as explicit, inspectable state
// on Context plus a typed panic/recover pair for "jump to the nearest
// backtrack continuation" — the same bailout technique go/parser and
// text/template use to unwind a deeply nested descent without threading
// an error return through every frame. TryParse is exactly the recover
// boundary the spec calls the backtrack continuation; installing it is
// O(1) (push one frame), and restoring it on either exit is O(1) (pop
// one frame). See DESIGN.md for the full rationale.
package engine

import (
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/parsus/lexer"
	"github.com/deepnoodle-ai/parsus/parseerr"
	"github.com/deepnoodle-ai/parsus/token"
)

// DefaultMaxDepth bounds parser-body nesting (not alternation-chain
// width, which this engine's design already keeps O(1)). It guards
// against runaway left-recursive grammars.
const DefaultMaxDepth = 500

// backtrackFrame is the spec's "backtrack continuation": a pointer to
// the previous frame plus the position to restore on failure. TryParse
// pushes one on entry and restores ctx.backtrack to frame.prev on every
// exit path (success or failure), matching invariant 2 (backtrack
// scope).
type backtrackFrame struct {
	prev     *backtrackFrame
	savedPos int
}

// failSignal is what Fail panics with. Recovering from anything else is
// a genuine bug (or an unrelated panic from user code) and is
// re-panicked rather than swallowed.
type failSignal struct {
	err parseerr.ParseError
}

// Context is a single parsing session's state (§3 "ParsingContext").
// It is created per Grammar.Parse call and is not safe for concurrent
// use; exactly one consumer drives it at a time (single-threaded
// cooperative, §5).
type Context struct {
	lx        *lexer.Lexer
	position  int
	backtrack *backtrackFrame

	depth    int
	maxDepth int

	sessionID uuid.UUID
	logger    zerolog.Logger
	tracing   bool

	closed bool
}

// Option configures a Context at construction time, following the
// functional-options idiom used throughout the reference codebase.
type Option func(*Context)

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(c *Context) { c.maxDepth = n }
}

// WithTrace enables zerolog debug-level tracing of trampoline events
// (session start/complete, TryParse enter/success/backtrack, fail) tagged with this
// session's id. Tracing is off by default; it exists for diagnosing
// grammars, not for correctness.
func WithTrace(logger zerolog.Logger) Option {
	return func(c *Context) {
		c.logger = logger
		c.tracing = true
	}
}

// NewContext builds a fresh session over input using the frozen token
// set tokens (registration order is preserved as the lexer's tiebreak
// order). Each call produces an independent Context and Lexer; sessions
// never share mutable state (§5 "Sharing").
func NewContext(input string, tokens []*token.Token, opts ...Option) *Context {
	id, err := uuid.NewV4()
	if err != nil {
		id = uuid.Nil
	}
	ctx := &Context{
		lx:        lexer.New(input, tokens),
		maxDepth:  DefaultMaxDepth,
		sessionID: id,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(ctx)
	}
	return ctx
}

// Position returns the current offset. Exposed for tooling and tests
// that inspect a Context after RunParser returns; parser bodies use
// CurrentOffset instead.
func (ctx *Context) Position() int { return ctx.position }

// Lexer exposes the session's Lexer for read-only lookups (CurrentToken).
func (ctx *Context) Lexer() *lexer.Lexer { return ctx.lx }

func (ctx *Context) checkAlive() {
	if ctx.closed {
		panic("parsus: ParsingScope used after its session completed (a parser must not capture and reuse a scope across sessions)")
	}
}

func (ctx *Context) trace(event string, args map[string]any) {
	if !ctx.tracing {
		return
	}
	e := ctx.logger.Debug().
		Str("session", ctx.sessionID.String()).
		Str("event", event).
		Int("position", ctx.position).
		Int("depth", ctx.depth)
	for k, v := range args {
		e = e.Interface(k, v)
	}
	e.Msg("parsus trampoline step")
}

// Scope is the capability set exposed inside a running parser body
// (§4.E). It is a thin handle onto a Context; the free functions in
// this package (Run, TryParse, Fail, ...) are its operations. Scope has
// no exported constructor: the only way to obtain one is as the
// argument your Parser body receives.
type Scope struct {
	ctx *Context
}

// RunParser drives p to completion over ctx and returns the final
// ParseResult. This is the spec's "Starting a session": it wraps p in
// the root task, installs it as the pending step, and is itself the
// outermost backtrack boundary — if Fail ever reaches here uncaught (no
// enclosing TryParse installed a nearer one), the panic is recovered
// here and reported as the final ParseError, exactly as "if backtrack is
// null, the loop will exit and runParser returns the error".
func RunParser[R any](ctx *Context, p Parser[R]) (result parseerr.ParseResult[R]) {
	scope := &Scope{ctx: ctx}
	defer func() { ctx.closed = true }()
	defer func() {
		if r := recover(); r != nil {
			sig, ok := r.(failSignal)
			if !ok {
				panic(r)
			}
			result = parseerr.Err[R](sig.err)
		}
	}()
	ctx.trace("session-start", nil)
	value := p(scope)
	ctx.trace("session-complete", nil)
	return parseerr.Ok(value)
}
