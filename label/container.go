package label

import (
	"fmt"

	"github.com/nrivard/pvl/grammar"
)

// Item is one (key, value) pair stored in a Container, in insertion order.
type Item struct {
	Key      string
	Value    Value
	Pos      Position
	Trailing *Comment // an optional same-line trailing comment; the parser leaves it nil
}

// Comment is a standalone or trailing comment attached to the tree by
// hand; the parser does not create these, even in trivia-preserving mode.
// It plays no role in structural equality or round-trip correctness.
type Comment struct {
	Text string
	Pos  Position
}

// BlankLine marks a blank line between items; the parser does not create
// these, even in trivia-preserving mode.
type BlankLine struct {
	Pos Position
}

// Container is the shared ordered-multimap implementation backing both
// Module (the root) and Block (a nested GROUP/OBJECT aggregate). Keys may
// repeat; insertion order is always observable, matching the "order
// preservation" testable property.
type Container struct {
	items []Item
	index map[string][]int
	// Trivia: comments and blank lines interleaved with items, keyed by the
	// index they precede. The parser never fills it.
	trivia map[int][]any // each element is *Comment or *BlankLine
}

func newContainer() Container {
	return Container{index: make(map[string][]int)}
}

// Len reports the number of items (duplicates counted individually).
func (c *Container) Len() int { return len(c.items) }

// At returns the item at position i in insertion order.
func (c *Container) At(i int) (Item, bool) {
	if i < 0 || i >= len(c.items) {
		return Item{}, false
	}
	return c.items[i], true
}

// Slice returns a copy of items [i:j) in insertion order.
func (c *Container) Slice(i, j int) []Item {
	if i < 0 {
		i = 0
	}
	if j > len(c.items) {
		j = len(c.items)
	}
	if i >= j {
		return nil
	}
	out := make([]Item, j-i)
	copy(out, c.items[i:j])
	return out
}

// Keys returns every key in the container in the order it was first seen,
// without duplicates.
func (c *Container) Keys() []string {
	seen := make(map[string]bool, len(c.index))
	out := make([]string, 0, len(c.index))
	for _, it := range c.items {
		if !seen[it.Key] {
			seen[it.Key] = true
			out = append(out, it.Key)
		}
	}
	return out
}

// Get returns the first value stored under key.
func (c *Container) Get(key string) (Value, bool) {
	positions := c.index[key]
	if len(positions) == 0 {
		return nil, false
	}
	return c.items[positions[0]].Value, true
}

// GetAll returns every value stored under key, in insertion order.
func (c *Container) GetAll(key string) []Value {
	positions := c.index[key]
	if len(positions) == 0 {
		return nil
	}
	out := make([]Value, len(positions))
	for i, p := range positions {
		out[i] = c.items[p].Value
	}
	return out
}

// Append adds a new (key, value) pair at the end, keeping any existing
// entries for the same key.
func (c *Container) Append(key string, v Value) {
	c.AppendItem(Item{Key: key, Value: v})
}

// AppendItem is Append with full control over the stored Item (position,
// trailing comment).
func (c *Container) AppendItem(it Item) {
	c.index[it.Key] = append(c.index[it.Key], len(c.items))
	c.items = append(c.items, it)
}

// InsertBefore inserts (key, value) immediately before the first
// occurrence of anchorKey. It returns an error if anchorKey is absent.
func (c *Container) InsertBefore(anchorKey, key string, v Value) error {
	positions := c.index[anchorKey]
	if len(positions) == 0 {
		return fmt.Errorf("label: no key %q to insert before", anchorKey)
	}
	c.insertAt(positions[0], Item{Key: key, Value: v})
	return nil
}

// InsertAfter inserts (key, value) immediately after the first occurrence
// of anchorKey. It returns an error if anchorKey is absent.
func (c *Container) InsertAfter(anchorKey, key string, v Value) error {
	positions := c.index[anchorKey]
	if len(positions) == 0 {
		return fmt.Errorf("label: no key %q to insert after", anchorKey)
	}
	c.insertAt(positions[0]+1, Item{Key: key, Value: v})
	return nil
}

func (c *Container) insertAt(i int, it Item) {
	c.items = append(c.items, Item{})
	copy(c.items[i+1:], c.items[i:])
	c.items[i] = it
	c.rebuildIndex()
}

// Replace replaces the value of every item currently stored under key,
// leaving their positions and any trailing trivia untouched.
func (c *Container) Replace(key string, v Value) {
	for _, p := range c.index[key] {
		c.items[p].Value = v
	}
}

// Delete removes the first occurrence of key. It reports whether anything
// was removed.
func (c *Container) Delete(key string) bool {
	positions := c.index[key]
	if len(positions) == 0 {
		return false
	}
	c.removeAt(positions[0])
	return true
}

// DeleteAll removes every occurrence of key. It reports how many items
// were removed.
func (c *Container) DeleteAll(key string) int {
	positions := append([]int(nil), c.index[key]...)
	if len(positions) == 0 {
		return 0
	}
	for i := len(positions) - 1; i >= 0; i-- {
		c.removeAt(positions[i])
	}
	return len(positions)
}

func (c *Container) removeAt(i int) {
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.rebuildIndex()
}

func (c *Container) rebuildIndex() {
	c.index = make(map[string][]int, len(c.index))
	for i, it := range c.items {
		c.index[it.Key] = append(c.index[it.Key], i)
	}
}

// Equal reports whether two containers hold structurally identical,
// order-sensitive contents.
func (c *Container) Equal(other *Container) bool {
	if c.Len() != other.Len() {
		return false
	}
	for i, it := range c.items {
		o := other.items[i]
		if it.Key != o.Key {
			return false
		}
		if !valuesEqual(it.Value, o.Value) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Block:
		bv := b.(Block)
		return av.AggKind == bv.AggKind && av.Name == bv.Name && av.Container.Equal(&bv.Container)
	case Sequence:
		bv := b.(Sequence)
		if len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !valuesEqual(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case Set:
		bv := b.(Set)
		if len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !valuesEqual(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case Quantity:
		bv := b.(Quantity)
		return av.Units == bv.Units && valuesEqual(av.Value, bv.Value)
	default:
		return a.GoString() == b.GoString()
	}
}

// Module is the top-level label tree: an ordered multi-mapping from
// parameter/block name to Value.
type Module struct {
	Container
	// TrailingComment is a comment placed after the terminating END
	// statement. The parser never sets it, in any mode (see the design note
	// on the open question of comments after END).
	TrailingComment *Comment
}

// NewModule creates an empty Module.
func NewModule() *Module {
	m := &Module{Container: newContainer()}
	return m
}

// Equal reports structural, order-sensitive equality between two modules.
func (m *Module) Equal(other *Module) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.Container.Equal(&other.Container)
}

// Block is a nested GROUP/OBJECT aggregate. It is itself a Value so it can
// nest inside a Module or another Block.
type Block struct {
	Container
	// AggKind distinguishes GROUP from OBJECT; named to avoid colliding
	// with the Value interface's Kind() method.
	AggKind grammar.AggregationKind
	Name    string
	EndName string // the identifier used on the end statement, "" if omitted
	Pos     Position
}

// NewBlock creates an empty Block of the given kind and name.
func NewBlock(kind grammar.AggregationKind, name string) *Block {
	return &Block{Container: newContainer(), AggKind: kind, Name: name}
}

// Kind implements the Value interface; use AggKind for GROUP vs OBJECT.
func (b Block) Kind() ValueKind { return KindBlock }

func (b Block) GoString() string {
	return fmt.Sprintf("%s(%s, %d items)", b.AggKind.String(), b.Name, b.Len())
}
