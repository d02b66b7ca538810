// Package pvl reads and writes NASA PDS/ISIS Parameter Value Language
// labels: PVL, ODL, PDS3 and ISIS, plus a permissive Omni dialect for
// best-effort ingestion of labels that don't cleanly fit any one of them.
//
// Load and its variants turn label bytes into a *label.Module, an
// order-preserving, possibly-duplicate-keyed tree of parameters and
// GROUP/OBJECT blocks. Dump and its variants write a Module back out under
// a chosen dialect's formatting and validity rules.
package pvl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/nrivard/pvl/decoder"
	"github.com/nrivard/pvl/encoder"
	"github.com/nrivard/pvl/grammar"
	"github.com/nrivard/pvl/label"
	"github.com/nrivard/pvl/parser"
	"github.com/nrivard/pvl/preamble"
)

// config accumulates the options passed to Load/Dump and their variants.
type config struct {
	grammar          *grammar.Grammar
	decoder          *decoder.Decoder
	encoder          *encoder.Encoder
	quantityFactory  parser.QuantityFactory
	quantityAccessor encoder.QuantityAccessor
	realFactory      decoder.RealFactory
	encodingName     string
	strict           *bool
	ctx              context.Context
}

func newConfig() *config {
	return &config{grammar: grammar.PVLGrammar(), ctx: context.Background()}
}

// Option configures a Load or Dump call.
type Option func(*config)

// WithGrammar selects a fully custom grammar in place of a named dialect.
func WithGrammar(g *grammar.Grammar) Option {
	return func(c *config) { c.grammar = g }
}

// WithDialect selects one of the built-in dialect grammars.
func WithDialect(d grammar.Dialect) Option {
	return func(c *config) { c.grammar = grammar.ForDialect(d) }
}

// WithDecoder installs a pre-built decoder, letting a caller share decode
// configuration (RealFactory and any future decode-time settings) across
// several Load calls instead of repeating WithRealFactory each time.
func WithDecoder(d *decoder.Decoder) Option {
	return func(c *config) { c.decoder = d }
}

// WithEncoder installs a pre-built encoder for Dump/Dumps, in place of one
// constructed from the configured grammar.
func WithEncoder(e *encoder.Encoder) Option {
	return func(c *config) { c.encoder = e }
}

// WithQuantityFactory installs a callback invoked for every quantity value
// decoded during Load, letting an application upgrade "value <units>" pairs
// into a richer external type. See parser.QuantityFactory.
func WithQuantityFactory(f func(value label.Value, units string) (any, error)) Option {
	return func(c *config) { c.quantityFactory = f }
}

// WithQuantityAccessor installs the Dump-side counterpart of
// WithQuantityFactory: a callback that recovers (value, units) back out of
// a label.Quantity's External field.
func WithQuantityAccessor(f func(external any) (value label.Value, units string, ok bool)) Option {
	return func(c *config) { c.quantityAccessor = f }
}

// WithRealFactory installs a factory that converts a real literal's raw
// text into an application-chosen numeric type in place of label.Real.
func WithRealFactory(f func(raw string) (any, error)) Option {
	return func(c *config) { c.realFactory = decoder.RealFactory(f) }
}

// WithEncoding names the source label's character encoding (an IANA/MIME
// name) for LoadBytes' preamble decode step. The default, "", assumes
// UTF-8/US-ASCII and falls back to a lossy ASCII decode on invalid bytes.
func WithEncoding(name string) Option {
	return func(c *config) { c.encodingName = name }
}

// WithStrict overrides the dialect-derived strictness that decides whether
// Load aborts on the first lexical or structural error. See
// parser.WithStrict.
func WithStrict(strict bool) Option {
	return func(c *config) { c.strict = &strict }
}

// WithTelemetry carries ctx's telemetry collector into Load/Dump's Parse
// and Encode spans, instead of the zero-overhead default.
func WithTelemetry(ctx context.Context) Option {
	return func(c *config) { c.ctx = ctx }
}

func (c *config) apply(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

func (c *config) parserOptions() []parser.Option {
	var popts []parser.Option
	if c.decoder != nil {
		popts = append(popts, parser.WithDecoder(c.decoder))
	} else if c.realFactory != nil {
		popts = append(popts, parser.WithRealFactory(c.realFactory))
	}
	if c.quantityFactory != nil {
		popts = append(popts, parser.WithQuantityFactory(c.quantityFactory))
	}
	if c.strict != nil {
		popts = append(popts, parser.WithStrict(*c.strict))
	}
	return popts
}

func (c *config) buildEncoder() *encoder.Encoder {
	if c.encoder != nil {
		return c.encoder
	}
	var eopts []encoder.Option
	if c.quantityAccessor != nil {
		eopts = append(eopts, encoder.WithQuantityAccessor(c.quantityAccessor))
	}
	return encoder.New(c.grammar, eopts...)
}

// Load reads and parses an entire label from r.
func Load(r io.Reader, opts ...Option) (*label.Module, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("pvl: read label: %w", err)
	}
	return LoadBytes(data, opts...)
}

// LoadFile reads and parses the label at path.
func LoadFile(path string, opts ...Option) (*label.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pvl: read %s: %w", path, err)
	}
	return loadBytesNamed(path, data, opts...)
}

// Loads parses a label already held as a string.
func Loads(text string, opts ...Option) (*label.Module, error) {
	return LoadBytes([]byte(text), opts...)
}

// LoadBytes decodes and parses a label held as raw bytes: it runs the
// preamble scan (character-encoding fallback, then trimming any trailing
// binary data past the label's top-level END statement) before handing the
// result to the parser.
func LoadBytes(b []byte, opts ...Option) (*label.Module, error) {
	return loadBytesNamed("<pvl>", b, opts...)
}

func loadBytesNamed(filename string, data []byte, opts ...Option) (*label.Module, error) {
	c := newConfig()
	c.apply(opts)

	text := preamble.DecodeText(data, c.encodingName)
	text = preamble.Extent(text, filename, c.grammar)

	p := parser.New(text, filename, c.grammar, c.parserOptions()...)
	return p.Parse(telemetryContext(c))
}

func telemetryContext(c *config) context.Context {
	return c.ctx
}

// Dump writes m to w and returns the number of bytes written.
func Dump(m *label.Module, w io.Writer, opts ...Option) (int, error) {
	c := newConfig()
	c.apply(opts)
	return c.buildEncoder().Encode(telemetryContext(c), m, w)
}

// Dumps renders m to a string.
func Dumps(m *label.Module, opts ...Option) (string, error) {
	var buf bytes.Buffer
	if _, err := Dump(m, &buf, opts...); err != nil {
		return "", err
	}
	return buf.String(), nil
}
