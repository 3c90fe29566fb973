// Package combinators holds the public combinator helpers spec.md §1
// leaves unspecified beyond "expressible purely in terms of the core
// primitives in §4.E/§4.F". Everything here is a thin composition over
// package engine; none of it touches Context state directly.
package combinators

import (
	"github.com/deepnoodle-ai/parsus/engine"
	"github.com/deepnoodle-ai/parsus/parseerr"
	"github.com/deepnoodle-ai/parsus/token"
)

// Pure always succeeds with value, consuming no input.
func Pure[R any](value R) engine.Parser[R] {
	return func(scope *engine.Scope) R { return value }
}

// Map runs p and transforms its value with fn. Failure of p propagates
// untouched; fn is never called on a failed parse.
func Map[A, B any](p engine.Parser[A], fn func(A) B) engine.Parser[B] {
	return func(scope *engine.Scope) B {
		return fn(engine.Run(scope, p))
	}
}

// Token wraps a single token.Token as a Parser[TokenMatch], failing
// with MismatchedToken/UnmatchedToken exactly as engine.Token does.
func Token(tok *token.Token) engine.Parser[token.TokenMatch] {
	return func(scope *engine.Scope) token.TokenMatch {
		return engine.Token(scope, tok)
	}
}

// AnyToken matches whatever non-ignored token is recognized at the
// current position, without requiring a specific identity. It fails
// with parseerr.NoMatchingToken when nothing at all is recognized.
func AnyToken(scope *engine.Scope) token.TokenMatch {
	return engine.AnyToken(scope)
}

// TokenText is Token followed by extracting the matched substring.
func TokenText(tok *token.Token) engine.Parser[string] {
	return func(scope *engine.Scope) string {
		m := engine.Token(scope, tok)
		return m.Text(engine.Input(scope))
	}
}

// Named attaches a human-readable name to p for error messages,
// without changing its matching behavior: on success the value passes
// through untouched, on failure the underlying ParseError is wrapped
// in a parseerr.NamedFailure carrying name.
func Named[R any](name string, p engine.Parser[R]) engine.Parser[R] {
	return func(scope *engine.Scope) R {
		res := engine.TryParse(scope, p)
		if !res.IsSuccess() {
			return engine.Fail[R](scope, &parseerr.NamedFailure{Name: name, Cause: res.Error()})
		}
		return res.Value()
	}
}

// Or tries each parser in order (§4.E.2's alternation idiom), committing
// to the first that succeeds. If all fail, it fails with
// NoViableAlternative aggregating every branch's error, rather than
// surfacing only the last one — the furthest-offset cause becomes the
// error's Offset() per parseerr.NewNoViableAlternative. Implemented as
// a loop, not recursion, so a wide alternative list costs one stack
// frame regardless of how many alternatives it has.
func Or[R any](parsers ...engine.Parser[R]) engine.Parser[R] {
	if len(parsers) == 0 {
		panic("parsus: combinators.Or requires at least one alternative")
	}
	return func(scope *engine.Scope) R {
		causes := make([]parseerr.ParseError, 0, len(parsers))
		for _, p := range parsers {
			res := engine.TryParse(scope, p)
			if res.IsSuccess() {
				return res.Value()
			}
			causes = append(causes, res.Error())
		}
		return engine.Fail[R](scope, parseerr.NewNoViableAlternative(causes))
	}
}

// Many matches p zero or more times, stopping at the first attempt
// that fails. That final attempt is made with TryParse so it never
// perturbs position or propagates its error — p simply wasn't present
// again. CheckPresent is deliberately not used here: it would require
// attempting p twice per successful match (once to check, once to
// collect the value), which is both wasteful and, for a stateful
// token stream, not guaranteed to observe the same match twice.
func Many[R any](p engine.Parser[R]) engine.Parser[[]R] {
	return func(scope *engine.Scope) []R {
		var out []R
		for {
			res := engine.TryParse(scope, p)
			if !res.IsSuccess() {
				return out
			}
			out = append(out, res.Value())
		}
	}
}

// AtLeast matches p min or more times. Fewer than min matches fails
// with NotEnoughRepetition.
func AtLeast[R any](p engine.Parser[R], min int) engine.Parser[[]R] {
	return func(scope *engine.Scope) []R {
		out := engine.Run(scope, Many(p))
		if len(out) < min {
			return engine.Fail[[]R](scope, &parseerr.NotEnoughRepetition{
				Expected: min,
				Actual:   len(out),
				At:       engine.CurrentOffset(scope),
			})
		}
		return out
	}
}

// Separated matches item one or more times, each pair separated by sep
// (sep's values are discarded). A lone item with no trailing separator
// is a valid, complete match: the loop's terminating TryParse(sep)
// rolls back cleanly and item parsing simply stops.
func Separated[R, S any](item engine.Parser[R], sep engine.Parser[S]) engine.Parser[[]R] {
	return func(scope *engine.Scope) []R {
		out := []R{engine.Run(scope, item)}
		for engine.TryParse(scope, sep).IsSuccess() {
			out = append(out, engine.Run(scope, item))
		}
		return out
	}
}

// LeftAssociative parses operand (op operand)* and folds the result
// left to right via combine, e.g. for a sum grammar:
//
//	LeftAssociative(number, plus, func(acc int, _ token.TokenMatch, next int) int { return acc + next })
func LeftAssociative[L, Op any](operand engine.Parser[L], op engine.Parser[Op], combine func(L, Op, L) L) engine.Parser[L] {
	return func(scope *engine.Scope) L {
		acc := engine.Run(scope, operand)
		for {
			opRes := engine.TryParse(scope, op)
			if !opRes.IsSuccess() {
				return acc
			}
			next := engine.Run(scope, operand)
			acc = combine(acc, opRes.Value(), next)
		}
	}
}
