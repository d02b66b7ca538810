// Package encoder writes a label.Module back to PVL-family text under a
// chosen dialect, enforcing that dialect's validity constraints (case,
// delimiters, quoting, set contents, date precision) and its formatting
// rules (indentation, `=` alignment, 80-column wrap for PDS3).
package encoder

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"

	"github.com/nrivard/pvl/grammar"
	"github.com/nrivard/pvl/label"
	"github.com/nrivard/pvl/perrors"
	"github.com/nrivard/pvl/telemetry"
)

// QuantityAccessor extracts the underlying value and units string back out
// of an application's external quantity type, the dump-time counterpart to
// parser.QuantityFactory. It is consulted only for label.Quantity values
// whose External field is non-nil.
type QuantityAccessor func(external any) (value label.Value, units string, ok bool)

// Option configures an Encoder.
type Option func(*Encoder)

// WithSortSets causes Set values to be written in sorted order (by debug
// text) rather than insertion order. Off by default, matching Testable
// Property 2's order-sensitive equality.
func WithSortSets(v bool) Option {
	return func(e *Encoder) { e.sortSets = v }
}

// WithQuantityAccessor installs a callback used to recover (value, units)
// from a label.Quantity's External field when present.
func WithQuantityAccessor(f QuantityAccessor) Option {
	return func(e *Encoder) { e.quantityAccessor = f }
}

// Encoder serializes a label.Module under a fixed grammar.
type Encoder struct {
	grammar          *grammar.Grammar
	sortSets         bool
	quantityAccessor QuantityAccessor
}

// New creates an Encoder for the given grammar.
func New(g *grammar.Grammar, opts ...Option) *Encoder {
	e := &Encoder{grammar: g}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode writes m to w and returns the number of bytes written. When ctx
// carries a telemetry collector, Encode opens a child timer per block
// emitted, mirroring the parser's Lex/Decode spans.
func (e *Encoder) Encode(ctx context.Context, m *label.Module, w io.Writer) (int, error) {
	collector := telemetry.FromContext(ctx)
	timer := collector.Start("Encode")
	defer timer.End()

	var buf bytes.Buffer
	st := &state{enc: e, buf: &buf, timer: timer}
	if err := st.writeContainer(&m.Container, nil, 0); err != nil {
		return 0, err
	}

	end := e.grammar.EndStatement
	if e.grammar.EmitStatementTerminator {
		end += string(e.grammar.StatementEnd)
	}
	st.writeLine(end)
	if e.grammar.TrailingBlankAfterEnd {
		buf.WriteByte('\n')
	}

	n, err := w.Write(buf.Bytes())
	return n, err
}

// state carries what one Encode call needs while walking the tree: the
// encoder, the output buffer and the Encode timer.
type state struct {
	enc   *Encoder
	buf   *bytes.Buffer
	timer telemetry.Timer
}

func (s *state) writeLine(text string) {
	s.buf.WriteString(text)
	s.buf.WriteByte('\n')
}

func (s *state) indent(depth int) string {
	return spaces(depth * s.enc.grammar.IndentWidth)
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// writeContainer emits every item of c at the given nesting depth, aligning
// assignment `=` columns to the widest key among consecutive non-block
// items (a block interrupts alignment, since PVL-family tools realign per
// run of assignments).
func (s *state) writeContainer(c *label.Container, keyPath []string, depth int) error {
	items := c.Slice(0, c.Len())
	i := 0
	for i < len(items) {
		if blk, ok := items[i].Value.(label.Block); ok {
			if err := s.writeBlock(&blk, keyPath, depth); err != nil {
				return err
			}
			i++
			continue
		}

		j := i
		width := 0
		for j < len(items) {
			if _, ok := items[j].Value.(label.Block); ok {
				break
			}
			if w := runewidth.StringWidth(s.encodedKey(items[j].Key)); w > width {
				width = w
			}
			j++
		}

		for ; i < j; i++ {
			if err := s.writeAssignment(items[i], keyPath, depth, width); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *state) encodedKey(key string) string {
	if s.enc.grammar.UppercaseParameterNames {
		return toUpper(key)
	}
	return key
}

func (s *state) writeAssignment(it label.Item, keyPath []string, depth, keyWidth int) error {
	key := s.encodedKey(it.Key)
	path := append(append([]string(nil), keyPath...), it.Key)

	s.buf.WriteString(s.indent(depth))
	s.buf.WriteString(key)
	pad := keyWidth - runewidth.StringWidth(key)
	if pad < 0 {
		pad = 0
	}
	s.buf.WriteString(spaces(pad))
	s.buf.WriteString(" =")

	if _, empty := it.Value.(label.EmptyAtLine); !empty {
		valText, err := s.encodeValue(it.Value, path, depth)
		if err != nil {
			return err
		}
		s.buf.WriteByte(' ')
		s.buf.WriteString(valText)
	}

	if s.enc.grammar.EmitStatementTerminator {
		s.buf.WriteByte(';')
	}
	s.buf.WriteByte('\n')
	return nil
}

func (s *state) writeBlock(b *label.Block, keyPath []string, depth int) error {
	child := s.timer.Child(fmt.Sprintf("%s %s", b.AggKind, b.Name))
	defer child.End()

	g := s.enc.grammar
	begin := g.EncodeBeginKeyword[b.AggKind]
	end := g.EncodeEndKeyword[b.AggKind]

	s.buf.WriteString(s.indent(depth))
	s.buf.WriteString(begin)
	s.buf.WriteString(" = ")
	s.buf.WriteString(b.Name)
	if g.EmitStatementTerminator {
		s.buf.WriteByte(';')
	}
	s.buf.WriteByte('\n')

	path := append(append([]string(nil), keyPath...), b.Name)
	if err := s.writeContainer(&b.Container, path, depth+1); err != nil {
		return err
	}

	s.buf.WriteString(s.indent(depth))
	s.buf.WriteString(end)
	s.buf.WriteString(" = ")
	name := b.Name
	if b.EndName != "" {
		name = b.EndName
	}
	s.buf.WriteString(name)
	if g.EmitStatementTerminator {
		s.buf.WriteByte(';')
	}
	s.buf.WriteByte('\n')
	return nil
}

func toUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func encodeErr(path []string, dialect grammar.Dialect, rule, msg string) error {
	return &perrors.EncodeError{KeyPath: path, Dialect: dialect, Rule: rule, Message: msg}
}
