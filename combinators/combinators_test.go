package combinators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deepnoodle-ai/parsus/engine"
	"github.com/deepnoodle-ai/parsus/parseerr"
	"github.com/deepnoodle-ai/parsus/token"
)

func sumTokens() (intTok, plusTok, wsTok *token.Token) {
	intTok = token.Regex("int", `\d+`, false)
	plusTok = token.Literal("plus", "+")
	wsTok = token.Regex("ws", `\s+`, false).Ignored()
	return
}

func parseInt(scope *engine.Scope, intTok *token.Token) int {
	m := engine.Token(scope, intTok)
	n := 0
	for _, c := range m.Text(engine.Input(scope)) {
		n = n*10 + int(c-'0')
	}
	return n
}

func TestMapTransformsSuccessValue(t *testing.T) {
	intTok, _, _ := sumTokens()
	ctx := engine.NewContext("42", []*token.Token{intTok, token.EOF})
	p := Map(Token(intTok), func(m token.TokenMatch) int { return len(m.Text("42")) })
	res := engine.RunParser[int](ctx, p)
	assert.True(t, res.IsSuccess())
	assert.Equal(t, 2, res.Value())
}

func TestTokenTextReturnsMatchedSubstring(t *testing.T) {
	intTok, _, _ := sumTokens()
	ctx := engine.NewContext("123", []*token.Token{intTok, token.EOF})
	res := engine.RunParser[string](ctx, TokenText(intTok))
	assert.True(t, res.IsSuccess())
	assert.Equal(t, "123", res.Value())
}

func TestAnyTokenMatchesWithoutRequestingIdentity(t *testing.T) {
	intTok, plusTok, _ := sumTokens()
	ctx := engine.NewContext("+", []*token.Token{intTok, plusTok, token.EOF})
	res := engine.RunParser[token.TokenMatch](ctx, AnyToken)
	assert.True(t, res.IsSuccess())
	assert.Same(t, plusTok, res.Value().Token)
}

func TestAnyTokenFailsWithNoMatchingTokenOnNothingRecognized(t *testing.T) {
	intTok, plusTok, _ := sumTokens()
	ctx := engine.NewContext("$", []*token.Token{intTok, plusTok, token.EOF})
	res := engine.RunParser[token.TokenMatch](ctx, AnyToken)
	assert.False(t, res.IsSuccess())
	_, ok := res.Error().(*parseerr.NoMatchingToken)
	assert.True(t, ok)
}

func TestOrCommitsToFirstSuccess(t *testing.T) {
	intTok, plusTok, _ := sumTokens()
	ctx := engine.NewContext("+", []*token.Token{intTok, plusTok, token.EOF})
	p := Or(
		Map(Token(intTok), func(m token.TokenMatch) string { return "int" }),
		Map(Token(plusTok), func(m token.TokenMatch) string { return "plus" }),
	)
	res := engine.RunParser[string](ctx, p)
	assert.True(t, res.IsSuccess())
	assert.Equal(t, "plus", res.Value())
}

func TestOrFailsWithNoViableAlternativeWhenAllBranchesFail(t *testing.T) {
	intTok, plusTok, _ := sumTokens()
	ctx := engine.NewContext("$", []*token.Token{intTok, plusTok, token.EOF})
	p := Or(Token(intTok), Token(plusTok))
	res := engine.RunParser[token.TokenMatch](ctx, p)
	assert.False(t, res.IsSuccess())
	nva, ok := res.Error().(*parseerr.NoViableAlternative)
	assert.True(t, ok)
	assert.Len(t, nva.CauseList(), 2)
}

func TestManyCollectsZeroOrMoreMatchesWithoutConsumingTrailingFailure(t *testing.T) {
	intTok, plusTok, wsTok := sumTokens()
	ctx := engine.NewContext("1 1 1+", []*token.Token{intTok, plusTok, wsTok, token.EOF})
	p := func(scope *engine.Scope) []int {
		return engine.Run(scope, Many(func(s *engine.Scope) int { return parseInt(s, intTok) }))
	}
	res := engine.RunParser[[]int](ctx, p)
	assert.True(t, res.IsSuccess())
	assert.Equal(t, []int{1, 1, 1}, res.Value())
	assert.Equal(t, 5, ctx.Position(), "trailing '+' must be left unconsumed for the caller")
}

func TestManyOnNeverMatchingParserReturnsEmptySlice(t *testing.T) {
	intTok, plusTok, _ := sumTokens()
	ctx := engine.NewContext("+", []*token.Token{intTok, plusTok, token.EOF})
	p := func(scope *engine.Scope) []token.TokenMatch {
		return engine.Run(scope, Many(Token(intTok)))
	}
	res := engine.RunParser[[]token.TokenMatch](ctx, p)
	assert.True(t, res.IsSuccess())
	assert.Empty(t, res.Value())
	assert.Equal(t, 0, ctx.Position())
}

func TestAtLeastFailsWithNotEnoughRepetition(t *testing.T) {
	intTok, plusTok, wsTok := sumTokens()
	ctx := engine.NewContext("1 +", []*token.Token{intTok, plusTok, wsTok, token.EOF})
	p := AtLeast(func(s *engine.Scope) int { return parseInt(s, intTok) }, 2)
	res := engine.RunParser[[]int](ctx, p)
	assert.False(t, res.IsSuccess())
	nr, ok := res.Error().(*parseerr.NotEnoughRepetition)
	assert.True(t, ok)
	assert.Equal(t, 2, nr.Expected)
	assert.Equal(t, 1, nr.Actual)
}

func TestSeparatedAllowsSingleItemWithNoSeparator(t *testing.T) {
	intTok, plusTok, _ := sumTokens()
	ctx := engine.NewContext("7", []*token.Token{intTok, plusTok, token.EOF})
	p := Separated(func(s *engine.Scope) int { return parseInt(s, intTok) }, Token(plusTok))
	res := engine.RunParser[[]int](ctx, p)
	assert.True(t, res.IsSuccess())
	assert.Equal(t, []int{7}, res.Value())
}

func TestSeparatedCollectsAllItems(t *testing.T) {
	intTok, plusTok, _ := sumTokens()
	ctx := engine.NewContext("1+2+3", []*token.Token{intTok, plusTok, token.EOF})
	p := Separated(func(s *engine.Scope) int { return parseInt(s, intTok) }, Token(plusTok))
	res := engine.RunParser[[]int](ctx, p)
	assert.True(t, res.IsSuccess())
	assert.Equal(t, []int{1, 2, 3}, res.Value())
}

func TestLeftAssociativeFoldsLeftToRight(t *testing.T) {
	intTok, plusTok, wsTok := sumTokens()
	combine := func(acc int, _ token.TokenMatch, next int) int { return acc + next }
	build := func() engine.Parser[int] {
		number := func(s *engine.Scope) int { return parseInt(s, intTok) }
		return LeftAssociative(number, Token(plusTok), combine)
	}

	ctx := engine.NewContext("1 + 4 + 2", []*token.Token{intTok, plusTok, wsTok, token.EOF})
	res := engine.RunParser[int](ctx, build())
	assert.True(t, res.IsSuccess())
	assert.Equal(t, 7, res.Value())

	ctx2 := engine.NewContext("1   +   2", []*token.Token{intTok, plusTok, wsTok, token.EOF})
	res2 := engine.RunParser[int](ctx2, build())
	assert.True(t, res2.IsSuccess())
	assert.Equal(t, 3, res2.Value())
}

func TestNamedPreservesValueOnSuccess(t *testing.T) {
	intTok, _, _ := sumTokens()
	ctx := engine.NewContext("42", []*token.Token{intTok, token.EOF})
	res := engine.RunParser[string](ctx, Named("integer", TokenText(intTok)))
	assert.True(t, res.IsSuccess())
	assert.Equal(t, "42", res.Value())
}

func TestNamedWrapsFailureWithoutChangingOffset(t *testing.T) {
	intTok, plusTok, _ := sumTokens()
	ctx := engine.NewContext("+", []*token.Token{intTok, plusTok, token.EOF})
	res := engine.RunParser[token.TokenMatch](ctx, Named("integer", Token(intTok)))
	assert.False(t, res.IsSuccess())
	named, ok := res.Error().(*parseerr.NamedFailure)
	assert.True(t, ok)
	assert.Equal(t, "integer", named.Name)
	assert.Equal(t, 0, named.Offset())
	_, ok = named.Cause.(*parseerr.MismatchedToken)
	assert.True(t, ok)
}

func TestLeftAssociativeWithSingleOperandAndNoOperator(t *testing.T) {
	intTok, plusTok, _ := sumTokens()
	number := func(s *engine.Scope) int { return parseInt(s, intTok) }
	p := LeftAssociative(number, Token(plusTok), func(acc int, _ token.TokenMatch, next int) int { return acc + next })
	ctx := engine.NewContext("9", []*token.Token{intTok, plusTok, token.EOF})
	res := engine.RunParser[int](ctx, p)
	assert.True(t, res.IsSuccess())
	assert.Equal(t, 9, res.Value())
}
