package label_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/nrivard/pvl/grammar"
	"github.com/nrivard/pvl/label"
)

func TestAppendPreservesInsertionOrderWithDuplicates(t *testing.T) {
	m := label.NewModule()
	m.Append("NOTE", label.String{Value: "one"})
	m.Append("NOTE", label.String{Value: "two"})
	m.Append("LINES", label.Integer{Value: 10, Raw: "10"})

	assert.Equal(t, 3, m.Len())
	keys := m.Keys()
	assert.Equal(t, []string{"NOTE", "LINES"}, keys)

	v, ok := m.Get("NOTE")
	assert.True(t, ok)
	assert.Equal[label.Value](t, label.String{Value: "one"}, v)

	all := m.GetAll("NOTE")
	assert.Equal(t, 2, len(all))
	assert.Equal[label.Value](t, label.String{Value: "two"}, all[1])
}

func TestGetMissingKeyReportsNotFound(t *testing.T) {
	m := label.NewModule()
	_, ok := m.Get("MISSING")
	assert.False(t, ok)
	assert.Equal(t, 0, len(m.GetAll("MISSING")))
}

func TestDeleteRemovesFirstOccurrenceOnly(t *testing.T) {
	m := label.NewModule()
	m.Append("NOTE", label.String{Value: "one"})
	m.Append("NOTE", label.String{Value: "two"})

	removed := m.Delete("NOTE")
	assert.True(t, removed)
	assert.Equal(t, 1, m.Len())
	v, ok := m.Get("NOTE")
	assert.True(t, ok)
	assert.Equal[label.Value](t, label.String{Value: "two"}, v)
}

func TestDeleteAllRemovesEveryOccurrence(t *testing.T) {
	m := label.NewModule()
	m.Append("NOTE", label.String{Value: "one"})
	m.Append("NOTE", label.String{Value: "two"})
	m.Append("LINES", label.Integer{Value: 10, Raw: "10"})

	n := m.DeleteAll("NOTE")
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, m.Len())
	_, ok := m.Get("NOTE")
	assert.False(t, ok)
}

func TestDeleteMissingKeyReportsFalse(t *testing.T) {
	m := label.NewModule()
	assert.False(t, m.Delete("MISSING"))
	assert.Equal(t, 0, m.DeleteAll("MISSING"))
}

func TestInsertBeforeAndAfter(t *testing.T) {
	m := label.NewModule()
	m.Append("A", label.Integer{Value: 1, Raw: "1"})
	m.Append("C", label.Integer{Value: 3, Raw: "3"})

	assert.NoError(t, m.InsertBefore("C", "B", label.Integer{Value: 2, Raw: "2"}))
	assert.Equal(t, []string{"A", "B", "C"}, m.Keys())

	assert.NoError(t, m.InsertAfter("C", "D", label.Integer{Value: 4, Raw: "4"}))
	assert.Equal(t, []string{"A", "B", "C", "D"}, m.Keys())

	assert.Error(t, m.InsertBefore("MISSING", "X", label.Integer{Value: 0, Raw: "0"}))
}

func TestReplaceLeavesPositionUntouched(t *testing.T) {
	m := label.NewModule()
	m.Append("A", label.Integer{Value: 1, Raw: "1"})
	m.Append("B", label.Integer{Value: 2, Raw: "2"})
	m.Replace("A", label.Integer{Value: 100, Raw: "100"})

	assert.Equal(t, []string{"A", "B"}, m.Keys())
	v, _ := m.Get("A")
	assert.Equal[label.Value](t, label.Integer{Value: 100, Raw: "100"}, v)
}

func TestModuleEqualIsOrderSensitive(t *testing.T) {
	a := label.NewModule()
	a.Append("X", label.Integer{Value: 1, Raw: "1"})
	a.Append("Y", label.Integer{Value: 2, Raw: "2"})

	b := label.NewModule()
	b.Append("Y", label.Integer{Value: 2, Raw: "2"})
	b.Append("X", label.Integer{Value: 1, Raw: "1"})

	assert.False(t, a.Equal(b), "differently ordered modules must not be equal")

	c := label.NewModule()
	c.Append("X", label.Integer{Value: 1, Raw: "1"})
	c.Append("Y", label.Integer{Value: 2, Raw: "2"})
	assert.True(t, a.Equal(c))
}

func TestBlockNestsAsAValue(t *testing.T) {
	group := label.NewBlock(grammar.KindGroup, "IMAGE")
	group.Append("LINES", label.Integer{Value: 10, Raw: "10"})

	m := label.NewModule()
	m.Append("IMAGE", *group)

	v, ok := m.Get("IMAGE")
	assert.True(t, ok)
	block, ok := v.(label.Block)
	assert.True(t, ok)
	assert.Equal(t, label.KindBlock, block.Kind())
	inner, ok := block.Get("LINES")
	assert.True(t, ok)
	assert.Equal[label.Value](t, label.Integer{Value: 10, Raw: "10"}, inner)
}

func TestBlockEqualityComparesAggKindNameAndContents(t *testing.T) {
	a := label.NewModule()
	group := label.NewBlock(grammar.KindGroup, "IMAGE")
	group.Append("LINES", label.Integer{Value: 10, Raw: "10"})
	a.Append("IMAGE", *group)

	b := label.NewModule()
	obj := label.NewBlock(grammar.KindObject, "IMAGE")
	obj.Append("LINES", label.Integer{Value: 10, Raw: "10"})
	b.Append("IMAGE", *obj)

	assert.False(t, a.Equal(b), "GROUP and OBJECT of the same name must not compare equal")
}

func TestSortedSetOrdersByDebugTextWithoutMutatingOriginal(t *testing.T) {
	original := label.Set{Elements: []label.Value{
		label.Symbol{Value: "ZEBRA"},
		label.Symbol{Value: "APPLE"},
	}}
	sorted := label.SortedSet(original)

	assert.Equal(t, "ZEBRA", original.Elements[0].(label.Symbol).Value)
	assert.Equal(t, "APPLE", sorted.Elements[0].(label.Symbol).Value)
	assert.Equal(t, "ZEBRA", sorted.Elements[1].(label.Symbol).Value)
}

func TestQuantityGoStringIncludesUnits(t *testing.T) {
	q := label.Quantity{Value: label.Integer{Value: 5, Raw: "5"}, Units: "m/s"}
	assert.Equal(t, "Quantity(Integer(5) <m/s>)", q.GoString())
}

func TestValueKindStringCoversAllKinds(t *testing.T) {
	assert.Equal(t, "Block", label.KindBlock.String())
	assert.Equal(t, "Unknown", label.ValueKind(255).String())
}
