package parseerr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deepnoodle-ai/parsus/token"
)

func TestParseResultSuccess(t *testing.T) {
	r := Ok(42)
	assert.True(t, r.IsSuccess())
	assert.Equal(t, 42, r.Value())
	assert.Equal(t, 42, r.GetOrThrow())
}

func TestParseResultFailure(t *testing.T) {
	err := &NoMatchingToken{At: 3}
	r := Err[int](err)
	assert.False(t, r.IsSuccess())
	assert.Equal(t, err, r.Error())
	assert.Panics(t, func() { r.GetOrThrow() })
}

func TestMismatchedTokenDescribesExpectedAndActual(t *testing.T) {
	plus := token.Literal("plus", "+")
	minus := token.Literal("minus", "-")
	actual := &token.TokenMatch{Token: minus, Offset: 2, Length: 1}
	err := &MismatchedToken{Expected: plus, Actual: actual, At: 2}
	assert.Contains(t, err.Error(), "plus")
	assert.Contains(t, err.Error(), "minus")
	assert.Equal(t, 2, err.Offset())
}

func TestMismatchedTokenWithNilActual(t *testing.T) {
	eof := token.EOF
	err := &MismatchedToken{Expected: eof, Actual: nil, At: 1}
	assert.Contains(t, err.Error(), "nothing recognizable")
}

func TestNoViableAlternativePicksFurthestOffsetAsPrincipal(t *testing.T) {
	a := &NoMatchingToken{At: 1}
	b := &NoMatchingToken{At: 5}
	c := &NoMatchingToken{At: 3}

	nva := NewNoViableAlternative([]ParseError{a, b, c})
	assert.Equal(t, 5, nva.Offset())
	assert.Len(t, nva.CauseList(), 3)
}

func TestNoViableAlternativeTiesGoToLastInstalled(t *testing.T) {
	a := &NoMatchingToken{At: 5}
	b := &NoMatchingToken{At: 5}

	nva := NewNoViableAlternative([]ParseError{a, b})
	assert.Equal(t, 5, nva.Offset())
	// last cause with the max offset wins; both are 5, so index 1 (b) is
	// the one selected as principal, which Error() renders from.
	assert.Contains(t, nva.Error(), "offset 5")
}

func TestNoViableAlternativeWithNoCauses(t *testing.T) {
	nva := NewNoViableAlternative(nil)
	assert.Equal(t, 0, nva.Offset())
	assert.Contains(t, nva.Error(), "no viable alternative")
}

func TestNamedFailureWrapsCauseOffsetAndMessage(t *testing.T) {
	cause := &NoMatchingToken{At: 4}
	named := &NamedFailure{Name: "identifier", Cause: cause}
	assert.Equal(t, 4, named.Offset())
	assert.Contains(t, named.Error(), "identifier")
	assert.Contains(t, named.Error(), cause.Error())
	assert.Equal(t, error(cause), named.Unwrap())
}

func TestPositionConvertsOffsetToLineAndColumn(t *testing.T) {
	input := "ab\ncd\nef"
	line, col := Position(input, 0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)

	line, col = Position(input, 4) // 'd' on the second line
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)

	line, col = Position(input, len(input))
	assert.Equal(t, 3, line)
	assert.Equal(t, 3, col)

	line, col = Position(input, 1000)
	assert.Equal(t, 3, line)
	assert.Equal(t, 3, col)
}
