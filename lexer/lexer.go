// Package lexer implements the longest/priority-match lookup (§4.B) that
// a ParsingContext drives while backtracking. A Lexer is stateless with
// respect to parsing position: position lives in the caller (the engine's
// ParsingContext), not here, so one Lexer can be safely shared by callers
// that each track their own offset.
package lexer

import "github.com/deepnoodle-ai/parsus/token"

// Lexer owns the input string and the ordered, frozen token set it was
// built from. FindMatch is deterministic: the same (input, offset) always
// yields the same result, so results are memoized per offset.
type Lexer struct {
	input  string
	tokens []*token.Token

	memo map[int]*memoEntry
}

type memoEntry struct {
	match     *token.TokenMatch
	postSkip  int
	hasResult bool
}

// New builds a Lexer over input using tokens in registration order. The
// slice is not copied; callers must not mutate it afterward (Grammar
// enforces this by freezing its token list before building a Lexer).
func New(input string, tokens []*token.Token) *Lexer {
	return &Lexer{input: input, tokens: tokens, memo: make(map[int]*memoEntry)}
}

// Input returns the full input string this lexer was built over.
func (l *Lexer) Input() string {
	return l.input
}

// Len returns len(input).
func (l *Lexer) Len() int {
	return len(l.input)
}

// FindMatch returns the single match the grammar should consume starting
// at offset, or nil if nothing matches there.
//
// It first greedily skips ignored tokens: while some ignored token
// matches at the current position, the position advances past the
// longest such match (ties broken by registration order). Ignored
// matches are never themselves returned. It then tries the remaining,
// non-ignored candidates in registration order and returns the first
// that matches — the spec deliberately leaves longest-match-across-
// distinct-tokens undefined, putting the grammar author in control of
// priority via registration order. Before invoking a candidate's full
// Match, it consults Token.CouldMatchAt: tokens with a first-byte hint
// (literals) are skipped outright when the byte at the offset rules
// them out, rather than paying for a Match call that cannot succeed.
func (l *Lexer) FindMatch(offset int) *token.TokenMatch {
	postSkip := l.skipIgnored(offset)
	if entry, ok := l.memo[postSkip]; ok {
		return entry.match
	}

	var found *token.TokenMatch
	for _, tok := range l.tokens {
		if tok.IsIgnored() {
			continue
		}
		if !tok.CouldMatchAt(l.input, postSkip) {
			continue
		}
		if length, ok := tok.Match(l.input, postSkip); ok {
			found = &token.TokenMatch{Token: tok, Offset: postSkip, Length: length}
			break
		}
	}
	l.memo[offset] = &memoEntry{match: found, postSkip: postSkip, hasResult: true}
	if postSkip != offset {
		l.memo[postSkip] = &memoEntry{match: found, postSkip: postSkip, hasResult: true}
	}
	return found
}

// skipIgnored advances past any run of ignored-token matches starting at
// offset and returns the resulting offset. It does not memoize the
// intermediate ignored matches themselves, only the final post-skip
// offset (via the caller, FindMatch).
func (l *Lexer) skipIgnored(offset int) int {
	pos := offset
	for {
		best := -1
		for _, tok := range l.tokens {
			if !tok.IsIgnored() {
				continue
			}
			if !tok.CouldMatchAt(l.input, pos) {
				continue
			}
			if length, ok := tok.Match(l.input, pos); ok && length > best {
				best = length
			}
		}
		if best <= 0 {
			return pos
		}
		pos += best
	}
}
