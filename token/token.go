// Package token defines the terminal recognizers (Token) and concrete
// matches (TokenMatch) that a Lexer produces. A Token carries stable
// identity: two textually identical literal tokens registered separately
// are distinct terminals.
package token

import (
	"regexp"
	"strings"
)

// Kind distinguishes how a Token recognizes input.
type Kind int

const (
	// KindLiteral matches an exact substring, optionally case-insensitively.
	KindLiteral Kind = iota
	// KindRegex matches a compiled regular expression anchored at an offset.
	KindRegex
	// KindEOF matches a zero-length occurrence at the end of input only.
	KindEOF
)

// Token is a registered terminal recognizer. Tokens are compared by
// pointer identity, never by the text of their matcher: two Literal("+")
// tokens registered separately are two different terminals.
type Token struct {
	// Name is a human-readable label used in error messages. It has no
	// effect on matching.
	Name string

	kind       Kind
	literal    string
	ci         bool // case-insensitive literal match
	re         *regexp.Regexp
	allowEmpty bool
	// ignored tokens are consumed by the Lexer but never surfaced to
	// a ParsingScope.
	ignored bool
	// firstChars, when non-empty, is a fast-rejection hint: the token
	// can only match if the byte at the candidate offset is one of
	// these. An empty hint means "no hint available, always try".
	firstChars string
}

// Literal registers a token that matches the exact substring s.
func Literal(name, s string) *Token {
	return &Token{Name: name, kind: KindLiteral, literal: s, firstChars: firstCharHint(s)}
}

// LiteralFold registers a token like Literal but matched case-insensitively.
func LiteralFold(name, s string) *Token {
	return &Token{Name: name, kind: KindLiteral, literal: s, ci: true}
}

// Regex registers a token whose matcher is a regular expression anchored
// at the candidate offset. The expression is wrapped so it is always
// anchored to the start of the remaining input; it must not match the
// empty string unless allowEmpty is true.
func Regex(name, pattern string, allowEmpty bool) *Token {
	re := regexp.MustCompile(`\A(?:` + pattern + `)`)
	return &Token{Name: name, kind: KindRegex, re: re, allowEmpty: allowEmpty}
}

// Ignored marks the token as skipped by the lexer: matches are consumed
// but never surfaced to a ParsingScope. Returns the receiver for chaining
// at registration time.
func (t *Token) Ignored() *Token {
	t.ignored = true
	return t
}

// IsIgnored reports whether matches of this token are skipped by the lexer.
func (t *Token) IsIgnored() bool {
	return t.ignored
}

// CouldMatchAt is the Lexer's fast-rejection check (§3): when it
// returns false, Match is guaranteed to fail too, letting the Lexer
// skip the cost of invoking it. It never produces false negatives — a
// token with no hint (regex tokens, LiteralFold) always answers true,
// deferring entirely to Match.
func (t *Token) CouldMatchAt(input string, offset int) bool {
	if t.firstChars == "" {
		return true
	}
	if offset >= len(input) {
		return false
	}
	return strings.IndexByte(t.firstChars, input[offset]) >= 0
}

func firstCharHint(literal string) string {
	if literal == "" {
		return ""
	}
	return literal[:1]
}

// EOF is the special token that matches a zero-length occurrence at
// len(input) only. It is implicitly part of every grammar's candidate
// set and need not be registered by the user.
var EOF = &Token{Name: "EOF", kind: KindEOF}

// match attempts to recognize the token at offset in input, returning the
// matched length, or -1 if it does not match.
func (t *Token) match(input string, offset int) int {
	switch t.kind {
	case KindEOF:
		if offset == len(input) {
			return 0
		}
		return -1
	case KindLiteral:
		return t.matchLiteral(input, offset)
	case KindRegex:
		return t.matchRegex(input, offset)
	default:
		return -1
	}
}

func (t *Token) matchLiteral(input string, offset int) int {
	n := len(t.literal)
	if offset+n > len(input) {
		return -1
	}
	candidate := input[offset : offset+n]
	if t.ci {
		if !equalFold(candidate, t.literal) {
			return -1
		}
	} else if candidate != t.literal {
		return -1
	}
	return n
}

func (t *Token) matchRegex(input string, offset int) int {
	loc := t.re.FindStringIndex(input[offset:])
	if loc == nil {
		return -1
	}
	length := loc[1] - loc[0]
	if length == 0 && !t.allowEmpty {
		return -1
	}
	return length
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// Match is the exported, read-only form of match, used by tests and by
// tooling that wants to probe a token without a full Lexer.
func (t *Token) Match(input string, offset int) (length int, ok bool) {
	l := t.match(input, offset)
	if l < 0 {
		return 0, false
	}
	return l, true
}

// TokenMatch is a concrete occurrence of a Token at a specific offset.
type TokenMatch struct {
	Token  *Token
	Offset int
	Length int
}

// Text returns the matched substring of input.
func (m TokenMatch) Text(input string) string {
	return input[m.Offset : m.Offset+m.Length]
}

// End returns the offset immediately after the match.
func (m TokenMatch) End() int {
	return m.Offset + m.Length
}
