package parser_test

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/nrivard/pvl/decoder"
	"github.com/nrivard/pvl/grammar"
	"github.com/nrivard/pvl/label"
	"github.com/nrivard/pvl/parser"
	"github.com/nrivard/pvl/perrors"
)

func mustParse(t *testing.T, src string, g *grammar.Grammar, opts ...parser.Option) *label.Module {
	t.Helper()
	p := parser.New([]byte(src), "t.lbl", g, opts...)
	m, err := p.Parse(context.Background())
	assert.NoError(t, err)
	return m
}

func TestParseSimpleAssignment(t *testing.T) {
	m := mustParse(t, "TARGET_NAME = MARS\nEND\n", grammar.PVLGrammar())
	assert.Equal(t, 1, m.Len())
	v, ok := m.Get("TARGET_NAME")
	assert.True(t, ok)
	assert.Equal[label.Value](t, label.Symbol{Value: "MARS"}, v)
}

func TestParseStopsAfterTopLevelEnd(t *testing.T) {
	m := mustParse(t, "LINES = 1\nEND\nJUNK = 2\n", grammar.PVLGrammar())
	assert.Equal(t, 1, m.Len())
	_, ok := m.Get("JUNK")
	assert.False(t, ok)
}

func TestParsePreservesDuplicateKeyOrder(t *testing.T) {
	m := mustParse(t, "A = 1\nB = 2\nA = 3\nEND\n", grammar.PVLGrammar())
	assert.Equal(t, []string{"A", "B", "A"}, keysInOrder(m))
	all := m.GetAll("A")
	assert.Equal(t, 2, len(all))
}

func keysInOrder(m *label.Module) []string {
	out := make([]string, m.Len())
	for i := 0; i < m.Len(); i++ {
		it, _ := m.At(i)
		out[i] = it.Key
	}
	return out
}

func TestParseNestedGroupAndObject(t *testing.T) {
	src := "OBJECT = IMAGE\nGROUP = CALIBRATION\nGAIN = 2\nEND_GROUP = CALIBRATION\nEND_OBJECT = IMAGE\nEND\n"
	m := mustParse(t, src, grammar.PVLGrammar())
	v, ok := m.Get("IMAGE")
	assert.True(t, ok)
	obj, ok := v.(label.Block)
	assert.True(t, ok)
	assert.Equal(t, grammar.KindObject, obj.AggKind)

	gv, ok := obj.Get("CALIBRATION")
	assert.True(t, ok)
	group, ok := gv.(label.Block)
	assert.True(t, ok)
	assert.Equal(t, grammar.KindGroup, group.AggKind)
	gain, ok := group.Get("GAIN")
	assert.True(t, ok)
	assert.Equal[label.Value](t, label.Integer{Value: 2, Raw: "2"}, gain)
}

func TestParseMismatchedEndBlockNameIsError(t *testing.T) {
	src := "GROUP = A\nX = 1\nEND_GROUP = B\nEND\n"
	p := parser.New([]byte(src), "t.lbl", grammar.PVLGrammar())
	_, err := p.Parse(context.Background())
	assert.Error(t, err)
}

func TestParseSequenceAndSet(t *testing.T) {
	m := mustParse(t, "COORDS = (1, 2, 3)\nFLAGS = {A, B}\nEND\n", grammar.PVLGrammar())
	v, ok := m.Get("COORDS")
	assert.True(t, ok)
	seq, ok := v.(label.Sequence)
	assert.True(t, ok)
	assert.Equal(t, 3, len(seq.Elements))

	fv, ok := m.Get("FLAGS")
	assert.True(t, ok)
	set, ok := fv.(label.Set)
	assert.True(t, ok)
	assert.Equal(t, 2, len(set.Elements))
}

func TestParseQuantitySuffix(t *testing.T) {
	m := mustParse(t, "SPEED = 12.5 <m/s>\nEND\n", grammar.PVLGrammar())
	v, ok := m.Get("SPEED")
	assert.True(t, ok)
	q, ok := v.(label.Quantity)
	assert.True(t, ok)
	assert.Equal(t, "m/s", q.Units)
}

func TestParseQuantityFactoryUpgradesExternal(t *testing.T) {
	type upgraded struct{ Units string }
	m := mustParse(t, "SPEED = 12.5 <m/s>\nEND\n", grammar.PVLGrammar(),
		parser.WithQuantityFactory(func(v label.Value, units string) (any, error) {
			return upgraded{Units: units}, nil
		}))
	v, _ := m.Get("SPEED")
	q := v.(label.Quantity)
	ext, ok := q.External.(upgraded)
	assert.True(t, ok)
	assert.Equal(t, "m/s", ext.Units)
}

func TestParseStrictDialectFailsOnMissingEquals(t *testing.T) {
	p := parser.New([]byte("TARGET_NAME MARS\nEND\n"), "t.lbl", grammar.PVLGrammar())
	_, err := p.Parse(context.Background())
	assert.Error(t, err)
}

func TestParseOmniRecoversFromMissingEquals(t *testing.T) {
	p := parser.New([]byte("TARGET_NAME MARS\nORBIT = 4\nEND\n"), "t.lbl", grammar.OmniGrammar())
	m, err := p.Parse(context.Background())
	assert.NoError(t, err)
	_, ok := m.Get("ORBIT")
	assert.True(t, ok)
}

func TestWithStrictTightensOmni(t *testing.T) {
	p := parser.New([]byte("TARGET_NAME MARS\nEND\n"), "t.lbl", grammar.OmniGrammar(), parser.WithStrict(true))
	_, err := p.Parse(context.Background())
	assert.Error(t, err)
}

func TestParseEmptyAtLineToleratedOnlyInOmni(t *testing.T) {
	p := parser.New([]byte("NOTE =\nEND\n"), "t.lbl", grammar.OmniGrammar())
	m, err := p.Parse(context.Background())
	assert.NoError(t, err)
	v, ok := m.Get("NOTE")
	assert.True(t, ok)
	_, ok = v.(label.EmptyAtLine)
	assert.True(t, ok)

	strictP := parser.New([]byte("NOTE =\nEND\n"), "t.lbl", grammar.PVLGrammar())
	_, err = strictP.Parse(context.Background())
	assert.Error(t, err)
}

func TestParseEmptyAtLineFollowedByNextAssignment(t *testing.T) {
	m := mustParse(t, "A =\nB = 1\nEND\n", grammar.OmniGrammar())
	assert.Equal(t, []string{"A", "B"}, keysInOrder(m))

	av, ok := m.Get("A")
	assert.True(t, ok)
	_, ok = av.(label.EmptyAtLine)
	assert.True(t, ok)

	bv, ok := m.Get("B")
	assert.True(t, ok)
	assert.Equal[label.Value](t, label.Integer{Value: 1, Raw: "1"}, bv)
}

func TestParseEmptyValueErrorReportsAssignmentLine(t *testing.T) {
	p := parser.New([]byte("A =\nEnd\n"), "t.lbl", grammar.PDS3Grammar())
	_, err := p.Parse(context.Background())
	assert.Error(t, err)
	pe, ok := err.(*perrors.ParseError)
	assert.True(t, ok)
	assert.Equal(t, 1, pe.Pos.Line)
}

func TestWithDecoderSharesRealFactoryAcrossParses(t *testing.T) {
	type external struct{ Raw string }
	base := grammar.PVLGrammar()
	d := decoder.New(base)
	d.RealFactory = func(raw string) (any, error) {
		return external{Raw: raw}, nil
	}

	m := mustParse(t, "SPEED = 2.5\nEND\n", base, parser.WithDecoder(d))
	v, _ := m.Get("SPEED")
	assert.Equal(t, label.KindReal, v.Kind())
	ext, ok := v.(interface{ External() any })
	assert.True(t, ok)
	holder, ok := ext.External().(external)
	assert.True(t, ok)
	assert.Equal(t, "2.5", holder.Raw)
}
