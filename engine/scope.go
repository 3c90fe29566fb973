package engine

import (
	"github.com/deepnoodle-ai/parsus/parseerr"
	"github.com/deepnoodle-ai/parsus/token"
)

// Parser is the unit of composition (§4.C): given a Scope, it produces a
// value of type R, or abandons the current branch by calling Fail. A
// Parser value carries no observable state of its own and is reusable
// across sessions — it is an ordinary Go function, not a closure over
// any particular Context.
type Parser[R any] func(scope *Scope) R

// Run invokes a sub-parser (§4.E.1). On success it returns the value and
// leaves position advanced. On failure it does not return to its caller
// at all: it calls Fail, which transfers control to the nearest
// enclosing TryParse.
func Run[R any](scope *Scope, p Parser[R]) R {
	res := TryParse(scope, p)
	if !res.IsSuccess() {
		return Fail[R](scope, res.Error())
	}
	return res.Value()
}

// TryParse is the alternation-enabling primitive (§4.E.2, §4.F). It
// installs a fresh backtrack frame (O(1): one allocation, two saved
// fields), runs p, and catches any Fail raised while p (or anything it
// calls) was running:
//
//   - On success: the backtrack frame installed here is popped (restored
//     to what it was before this call) and position is left wherever p
//     advanced it to — successful consumption sticks.
//   - On failure: the backtrack frame is popped AND position is rolled
//     back to what it was at entry. Control returns to the caller with a
//     ParseError value; the failure does not propagate further on its
//     own (this is the only recovery boundary in the engine).
func TryParse[R any](scope *Scope, p Parser[R]) (result parseerr.ParseResult[R]) {
	ctx := scope.ctx
	ctx.checkAlive()

	ctx.depth++
	if ctx.depth > ctx.maxDepth {
		ctx.depth--
		return parseerr.Err[R](&parseerr.MaxDepthExceeded{Limit: ctx.maxDepth, At: ctx.position})
	}
	defer func() { ctx.depth-- }()

	savedPos := ctx.position
	prevBacktrack := ctx.backtrack
	ctx.backtrack = &backtrackFrame{prev: prevBacktrack, savedPos: savedPos}
	ctx.trace("enter", map[string]any{"offset": savedPos})

	defer func() {
		if r := recover(); r != nil {
			sig, ok := r.(failSignal)
			if !ok {
				panic(r)
			}
			ctx.backtrack = prevBacktrack
			ctx.position = savedPos
			ctx.trace("backtrack", map[string]any{"offset": savedPos, "error": sig.err.Error()})
			result = parseerr.Err[R](sig.err)
		}
	}()

	value := p(scope)
	ctx.backtrack = prevBacktrack
	ctx.trace("success", map[string]any{"offset": ctx.position})
	return parseerr.Ok(value)
}

// Fail abandons the current branch (§4.E.4), transferring control to
// the nearest installed backtrack point, which will restore position.
// It never returns to its caller; callers in generic parser bodies
// write `return Fail[R](scope, err)` to satisfy Go's terminating-
// statement rule (panic is itself a terminating statement, so the type
// parameter is only there for the call site's convenience).
func Fail[R any](scope *Scope, err parseerr.ParseError) R {
	scope.ctx.checkAlive()
	scope.ctx.trace("fail", map[string]any{"offset": scope.ctx.position, "error": err.Error()})
	panic(failSignal{err: err})
}

// Input returns the full input string the session is parsing. Not part
// of the spec's minimal scope capability set, but needed by any
// combinator that wants TokenMatch.Text without re-threading the input
// string through every parser body.
func Input(scope *Scope) string {
	scope.ctx.checkAlive()
	return scope.ctx.lx.Input()
}

// CurrentOffset is a read-only position query (§4.E.5). It never suspends.
func CurrentOffset(scope *Scope) int {
	scope.ctx.checkAlive()
	return scope.ctx.position
}

// CurrentToken peeks at lexer.FindMatch(position) without advancing
// (§4.E.6). It never suspends.
func CurrentToken(scope *Scope) *token.TokenMatch {
	scope.ctx.checkAlive()
	return scope.ctx.lx.FindMatch(scope.ctx.position)
}

// AnyToken requires some non-ignored token to match at the current
// position, without requesting any particular identity, advancing
// past it on success. It is the identity-less counterpart to Token:
// since no specific token was asked for, a failure here can never be
// "the wrong token was found" — there is no expectation to be wrong
// about — so it fails with NoMatchingToken rather than
// UnmatchedToken/MismatchedToken, which both presuppose a requested
// identity.
func AnyToken(scope *Scope) token.TokenMatch {
	ctx := scope.ctx
	ctx.checkAlive()
	m := ctx.lx.FindMatch(ctx.position)
	if m == nil {
		return Fail[token.TokenMatch](scope, &parseerr.NoMatchingToken{At: ctx.position})
	}
	ctx.position = m.End()
	return *m
}

// TryToken is the pure-lexer form of tryParse (§4.E.3): it checks
// whether tok specifically matches at the current position. On success
// it advances past the match. On failure position is left untouched.
// It never suspends and never fails the enclosing branch on its own —
// callers that want that behavior use Token instead.
func TryToken(scope *Scope, tok *token.Token) (token.TokenMatch, bool) {
	ctx := scope.ctx
	ctx.checkAlive()
	m := ctx.lx.FindMatch(ctx.position)
	if m != nil && m.Token == tok {
		ctx.position = m.End()
		return *m, true
	}
	return token.TokenMatch{}, false
}

// Token is the failing form of TryToken: it requires tok to match at the
// current position, advancing past it on success or abandoning the
// current branch with UnmatchedToken (nothing recognizable there) or
// MismatchedToken (something else matched) on failure.
func Token(scope *Scope, tok *token.Token) token.TokenMatch {
	if m, ok := TryToken(scope, tok); ok {
		return m
	}
	ctx := scope.ctx
	if actual := ctx.lx.FindMatch(ctx.position); actual != nil {
		return Fail[token.TokenMatch](scope, &parseerr.MismatchedToken{Expected: tok, Actual: actual, At: ctx.position})
	}
	return Fail[token.TokenMatch](scope, &parseerr.UnmatchedToken{Expected: tok, At: ctx.position})
}

// Skip runs p and discards its value (§4.E.7), a derived operation
// expressible purely in terms of Run.
func Skip[R any](scope *Scope, p Parser[R]) {
	Run(scope, p)
}

// CheckPresent reports whether p would succeed here, positioned
// equivalently to TryParse: advanced on success, unchanged on failure
// (§4.E.7), a derived operation expressible purely in terms of TryParse.
func CheckPresent[R any](scope *Scope, p Parser[R]) bool {
	return TryParse(scope, p).IsSuccess()
}
