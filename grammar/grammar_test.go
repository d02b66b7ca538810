package grammar_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/nrivard/pvl/grammar"
)

func TestPVLGrammarTerminatesStatements(t *testing.T) {
	g := grammar.PVLGrammar()
	assert.True(t, g.EmitStatementTerminator)
	assert.True(t, g.DoubledQuoteEscape)
	assert.Equal(t, grammar.PVL, g.Dialect)
}

func TestODLGrammarDropsStatementTerminator(t *testing.T) {
	g := grammar.ODLGrammar()
	assert.False(t, g.EmitStatementTerminator)
	assert.False(t, g.DoubledQuoteEscape)
}

func TestPDS3GrammarLayersStricterRulesOnODL(t *testing.T) {
	g := grammar.PDS3Grammar()
	assert.True(t, g.UppercaseParameterNames)
	assert.True(t, g.SetScalarOnly)
	assert.True(t, g.ForceUTCOnEncode)
	assert.Equal(t, 80, g.LineWrapColumn)
	assert.Equal(t, grammar.PDS3, g.Dialect)
}

func TestISISGrammarAllowsUnquotedPlusAndDashContinuation(t *testing.T) {
	g := grammar.ISISGrammar()
	assert.True(t, g.UnquotedPlusAllowed)
	assert.True(t, g.DashContinuationAllowed)
	assert.False(t, g.IsReserved('+'))
	assert.True(t, g.IsReserved('&'))
}

func TestOmniGrammarAcceptsBasedIntegerSignOnEitherSide(t *testing.T) {
	g := grammar.OmniGrammar()
	assert.True(t, g.BasedInteger.SignBeforeRadix)
	assert.True(t, g.BasedInteger.SignAfterRadix)
}

func TestForDialectMatchesNamedConstructors(t *testing.T) {
	assert.Equal(t, grammar.PDS3, grammar.ForDialect(grammar.PDS3).Dialect)
	assert.Equal(t, grammar.ISIS, grammar.ForDialect(grammar.ISIS).Dialect)
	assert.Equal(t, grammar.PVL, grammar.ForDialect(grammar.PVL).Dialect)
}

func TestLookupAggregationIsCaseFoldedAtCallSite(t *testing.T) {
	g := grammar.PVLGrammar()
	end, ok := g.LookupAggregation("OBJECT")
	assert.True(t, ok)
	assert.Equal(t, "END_OBJECT", end)

	_, ok = g.LookupAggregation("object")
	assert.False(t, ok, "LookupAggregation expects an already-uppercased key")
}

func TestIsWhitespaceCoversSpacingAndFormatEffectors(t *testing.T) {
	g := grammar.PVLGrammar()
	assert.True(t, g.IsWhitespace(' '))
	assert.True(t, g.IsWhitespace('\t'))
	assert.True(t, g.IsWhitespace('\n'))
	assert.False(t, g.IsWhitespace('A'))
}

func TestDialectString(t *testing.T) {
	assert.Equal(t, "PDS3", grammar.PDS3.String())
	assert.Equal(t, "Omni", grammar.Omni.String())
}
