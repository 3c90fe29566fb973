// Package parseerr defines the tagged outcome of parsing (ParseResult)
// and the exhaustive error taxonomy a ParsingContext produces (§3, §4.D,
// §7 of the spec). Every error carries an offset; NoViableAlternative
// additionally aggregates its children's errors via go-multierror and
// reports the furthest one as principal.
package parseerr

import (
	"fmt"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/deepnoodle-ai/parsus/token"
)

// ParseError is the sum type of everything that can go wrong while
// running a grammar. Every variant below implements it.
type ParseError interface {
	error
	// Offset returns the input position the error was raised at.
	Offset() int
}

// NoMatchingToken is raised when the lexer finds nothing at all at an
// offset and no specific token identity had been requested.
type NoMatchingToken struct {
	At int
}

func (e *NoMatchingToken) Offset() int { return e.At }

func (e *NoMatchingToken) Error() string {
	return fmt.Sprintf("no matching token at offset %d", e.At)
}

// MismatchedToken is raised when a specific token was required but the
// lexer found a match for a different token at that position.
type MismatchedToken struct {
	Expected *token.Token
	Actual   *token.TokenMatch // nil when the lexer found nothing at all
	At       int
}

func (e *MismatchedToken) Offset() int { return e.At }

func (e *MismatchedToken) Error() string {
	if e.Actual == nil {
		return fmt.Sprintf("expected %s at offset %d, found nothing recognizable", describeToken(e.Expected), e.At)
	}
	return fmt.Sprintf("expected %s at offset %d, found %s", describeToken(e.Expected), e.At, describeToken(e.Actual.Token))
}

// UnmatchedToken is raised when a specific token was required and no
// token at all matched at that position (distinct from MismatchedToken,
// where something else matched).
type UnmatchedToken struct {
	Expected *token.Token
	At       int
}

func (e *UnmatchedToken) Offset() int { return e.At }

func (e *UnmatchedToken) Error() string {
	return fmt.Sprintf("expected %s at offset %d, found nothing", describeToken(e.Expected), e.At)
}

// MaxDepthExceeded is raised by the engine's depth guard (SPEC_FULL §4)
// when parser-body nesting exceeds the configured limit, turning a
// runaway left-recursive grammar into a reported ParseError instead of a
// native stack overflow.
type MaxDepthExceeded struct {
	Limit int
	At    int
}

func (e *MaxDepthExceeded) Offset() int { return e.At }

func (e *MaxDepthExceeded) Error() string {
	return fmt.Sprintf("max parser nesting depth (%d) exceeded at offset %d", e.Limit, e.At)
}

// NotEnoughRepetition is raised by repetition combinators with a lower
// bound (combinators.AtLeast) when that bound on match count was not met.
type NotEnoughRepetition struct {
	Expected int
	Actual   int
	At       int
}

func (e *NotEnoughRepetition) Offset() int { return e.At }

func (e *NotEnoughRepetition) Error() string {
	return fmt.Sprintf("expected at least %d repetitions at offset %d, got %d", e.Expected, e.At, e.Actual)
}

// NoViableAlternative is raised when every branch of an alternation
// failed. Causes holds every branch's error; Error() reports the one
// with the greatest offset (furthest progress) as principal, with ties
// broken in favor of the last one installed.
type NoViableAlternative struct {
	At     int
	Causes *multierror.Error
}

// NewNoViableAlternative builds a NoViableAlternative from the ordered
// list of branch failures, picking the furthest-progress cause as
// principal (ties go to the last one installed, i.e. the last in causes).
func NewNoViableAlternative(causes []ParseError) *NoViableAlternative {
	merr := &multierror.Error{}
	principal := 0
	for i, c := range causes {
		merr = multierror.Append(merr, c)
		if causes[i].Offset() >= causes[principal].Offset() {
			principal = i
		}
	}
	at := 0
	if len(causes) > 0 {
		at = causes[principal].Offset()
	}
	return &NoViableAlternative{At: at, Causes: merr}
}

func (e *NoViableAlternative) Offset() int { return e.At }

func (e *NoViableAlternative) Error() string {
	if e.Causes == nil || len(e.Causes.Errors) == 0 {
		return fmt.Sprintf("no viable alternative at offset %d", e.At)
	}
	principal := e.Causes.Errors[len(e.Causes.Errors)-1]
	for i := len(e.Causes.Errors) - 1; i >= 0; i-- {
		if pe, ok := e.Causes.Errors[i].(ParseError); ok && pe.Offset() == e.At {
			principal = pe
			break
		}
	}
	return fmt.Sprintf("no viable alternative at offset %d: %s", e.At, principal)
}

// CauseList returns the individual branch errors in installation order.
func (e *NoViableAlternative) CauseList() []error {
	if e.Causes == nil {
		return nil
	}
	return e.Causes.Errors
}

// NamedFailure wraps another ParseError with a human-readable parser
// name, attached by combinators.Named without altering the underlying
// cause's offset or its own classification.
type NamedFailure struct {
	Name  string
	Cause ParseError
}

func (e *NamedFailure) Offset() int { return e.Cause.Offset() }

func (e *NamedFailure) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Cause.Error())
}

// Unwrap lets errors.As/errors.Is see through to the underlying cause.
func (e *NamedFailure) Unwrap() error { return e.Cause }

// Position converts a byte offset into a 1-indexed line/column pair,
// the way the teacher's token.Position reports LineNumber/ColumnNumber.
func Position(input string, offset int) (line, col int) {
	line, col = 1, 1
	if offset > len(input) {
		offset = len(input)
	}
	for i := 0; i < offset; i++ {
		if input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func describeToken(t *token.Token) string {
	if t == nil {
		return "<unknown>"
	}
	if t.Name != "" {
		return t.Name
	}
	return "token"
}

// ParseResult is the tagged outcome of parsing: either a parsed value or
// a ParseError. It is a value type so it can flow through tryParse
// without allocation pressure on the hot path.
type ParseResult[R any] struct {
	value R
	err   ParseError
	ok    bool
}

// Ok builds a successful ParseResult.
func Ok[R any](value R) ParseResult[R] {
	return ParseResult[R]{value: value, ok: true}
}

// Err builds a failed ParseResult.
func Err[R any](err ParseError) ParseResult[R] {
	return ParseResult[R]{err: err}
}

// IsSuccess reports whether this result carries a value.
func (r ParseResult[R]) IsSuccess() bool { return r.ok }

// Value returns the parsed value. Only meaningful when IsSuccess() is true.
func (r ParseResult[R]) Value() R { return r.value }

// Error returns the parse error. Only meaningful when IsSuccess() is false.
func (r ParseResult[R]) Error() ParseError { return r.err }

// GetOrThrow returns the value, or panics with the ParseError if this
// result is a failure. Named to match the spec's getOrThrow helper;
// "throw" in Go terms means panic. Nothing in this module recovers that
// panic: it reaches the caller of GetOrThrow (or of
// Grammar.ParseOrThrow, which calls it).
func (r ParseResult[R]) GetOrThrow() R {
	if !r.ok {
		panic(r.err)
	}
	return r.value
}
