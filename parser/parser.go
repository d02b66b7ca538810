// Package parser turns a token stream into a label.Module, implementing
// the module/statement/value grammar: assignments, GROUP/OBJECT
// aggregation blocks, sequences, sets and quantities, with per-dialect
// structural validation and, in Omni mode, permissive recovery.
package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/nrivard/pvl/decoder"
	"github.com/nrivard/pvl/grammar"
	"github.com/nrivard/pvl/label"
	"github.com/nrivard/pvl/lexer"
	"github.com/nrivard/pvl/perrors"
	"github.com/nrivard/pvl/telemetry"
	"github.com/nrivard/pvl/token"
)

// QuantityFactory upgrades a decoded "value <units>" pair into a
// richer external type. Returning an error surfaces as a QuantityError.
type QuantityFactory func(value label.Value, units string) (any, error)

// Option configures a Parser.
type Option func(*Parser)

// WithQuantityFactory installs a factory invoked for every quantity value.
func WithQuantityFactory(f QuantityFactory) Option {
	return func(p *Parser) { p.quantityFactory = f }
}

// WithRealFactory installs a factory that converts real-literal raw text
// into an application-chosen numeric type.
func WithRealFactory(f decoder.RealFactory) Option {
	return func(p *Parser) { p.decoder.RealFactory = f }
}

// WithPreserveTrivia makes the lexer emit comment tokens, which Parse then
// keeps apart from the statement tokens. They are not turned into
// label.Comment values and are not attached to any item or to the Module,
// so the parse result is the same with or without this option.
func WithPreserveTrivia(v bool) Option {
	return func(p *Parser) { p.preserveTrivia = v }
}

// WithDecoder installs a pre-built decoder in place of the one New creates
// from g, letting a caller share decoder configuration (RealFactory, and
// any future decode-time options) across multiple parses.
func WithDecoder(d *decoder.Decoder) Option {
	return func(p *Parser) { p.decoder = d }
}

// WithStrict overrides the dialect-derived strictness used to decide
// whether the first lexical or structural error aborts Parse. By default
// only grammar.Omni tolerates errors; WithStrict(false) relaxes a named
// dialect to Omni's recovery behavior, and WithStrict(true) tightens Omni
// to fail fast.
func WithStrict(strict bool) Option {
	return func(p *Parser) { p.strictOverride = &strict }
}

// Parser consumes a token stream produced from source under grammar g and
// builds a label.Module.
type Parser struct {
	source   []byte
	filename string
	grammar  *grammar.Grammar
	decoder  *decoder.Decoder

	tokens   []token.Token
	comments []token.Token
	pos      int
	interner *lexer.Interner

	quantityFactory QuantityFactory
	preserveTrivia  bool
	strictOverride  *bool
	strict          bool

	errs []error
}

// New creates a Parser for source under g.
func New(source []byte, filename string, g *grammar.Grammar, opts ...Option) *Parser {
	p := &Parser{
		source:   source,
		filename: filename,
		grammar:  g,
		decoder:  decoder.New(g),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse lexes and parses the source into a Module. Strict dialects (all but
// Omni) fail on the first lexical or structural error; Omni recovers where
// the grammar admits and only fails on the errors it cannot make sense of.
// When ctx carries a telemetry collector, Parse opens Lex/Parse/Decode
// timing spans under it.
func (p *Parser) Parse(ctx context.Context) (*label.Module, error) {
	collector := telemetry.FromContext(ctx)
	timer := collector.Start("Parse")
	defer timer.End()

	lexTimer := timer.Child("Lex")
	lx := lexer.New(p.source, p.filename, p.grammar)
	lx.PreserveComments = p.preserveTrivia
	rawTokens, lexErrs := lx.ScanAll()
	lexTimer.End()
	p.interner = lx.Interner()

	p.strict = p.grammar.Dialect != grammar.Omni
	if p.strictOverride != nil {
		p.strict = *p.strictOverride
	}
	if len(lexErrs) > 0 && p.strict {
		return nil, lexErrs[0]
	}
	p.errs = append(p.errs, lexErrs...)

	for _, t := range rawTokens {
		if t.Type == token.COMMENT {
			p.comments = append(p.comments, t)
			continue
		}
		p.tokens = append(p.tokens, t)
	}

	module := label.NewModule()
	if err := p.parseBody(&module.Container, timer, 0, nil); err != nil {
		return module, err
	}
	if len(p.errs) > 0 && p.strict {
		return module, p.errs[0]
	}
	return module, nil
}

// parseBody parses statements until it sees a block-ending statement
// matching openBlock (nil at the top level), the top-level END statement,
// or EOF. It never requests a token after consuming a top-level END,
// satisfying the termination invariant.
func (p *Parser) parseBody(c *label.Container, timer telemetry.Timer, depth int, openBlock *label.Block) error {
	for {
		if p.check(token.EOF) {
			if openBlock != nil {
				return p.errorf("unexpected end of input, expected END_%s for %q", openBlock.AggKind, openBlock.Name)
			}
			return nil
		}

		tok := p.peek()
		if tok.Type != token.UNQUOTED {
			p.advance()
			p.recordError(p.errorf("expected identifier, found %s", tok.Type))
			if p.strict {
				return p.lastErr()
			}
			continue
		}

		word := tok.Text(p.source)
		upper := strings.ToUpper(word)

		if upper == p.grammar.EndStatement {
			p.advance()
			p.consumeOptional(token.ASSIGN)
			if p.check(token.UNQUOTED) {
				p.advance() // optional trailing identifier after END, ignored
			}
			p.consumeOptional(token.SEMICOLON)
			if openBlock != nil {
				return p.errorf("unexpected top-level END inside %s %q", openBlock.AggKind, openBlock.Name)
			}
			return nil
		}

		if end, ok := p.grammar.LookupAggregation(upper); ok {
			if err := p.parseBeginBlock(c, timer, depth, word, end); err != nil {
				return err
			}
			continue
		}

		if isEndAggregationKeyword(p.grammar, upper) {
			return p.parseEndBlock(openBlock)
		}

		if err := p.parseAssignment(c, timer); err != nil {
			p.recordError(err)
			if p.strict {
				return err
			}
		}
	}
}

func isEndAggregationKeyword(g *grammar.Grammar, upper string) bool {
	for _, end := range g.AggregationKeywords {
		if end == upper {
			return true
		}
	}
	return upper == "END_GROUP" || upper == "END_OBJECT"
}

// parseAssignment parses `identifier '=' value terminator?`. In Omni mode
// a missing '=' yields a ParseError reporting "expected `=`", and a
// missing value (assignment followed immediately by the next statement)
// yields an Empty-at-line sentinel; strict dialects reject both.
func (p *Parser) parseAssignment(c *label.Container, timer telemetry.Timer) error {
	nameTok := p.advance()
	name := p.interner.Intern(nameTok.Text(p.source))

	if !p.match(token.ASSIGN) {
		return &perrors.ParseError{
			Pos:      nameTok.Position(p.filename),
			Dialect:  p.grammar.Dialect,
			Expected: "`=`",
			Actual:   p.peek().Type.String(),
		}
	}

	if p.atValueBoundary() {
		if p.strict {
			return &perrors.ParseError{
				Pos:      nameTok.Position(p.filename),
				Dialect:  p.grammar.Dialect,
				Expected: "a value",
				Actual:   p.peek().Type.String(),
			}
		}
		c.Append(name, label.EmptyAtLine{Line: nameTok.Line})
		p.consumeOptional(token.SEMICOLON)
		return nil
	}

	decodeTimer := timer.Child("Decode")
	v, err := p.parseValue()
	decodeTimer.End()
	if err != nil {
		return err
	}
	c.AppendItem(label.Item{Key: name, Value: v, Pos: nameTok.Position(p.filename)})
	p.consumeOptional(token.SEMICOLON)
	return nil
}

// atValueBoundary reports whether the current token cannot start a value,
// meaning the assignment's right-hand side was left empty.
func (p *Parser) atValueBoundary() bool {
	t := p.peek()
	if t.Type == token.EOF || t.Type == token.SEMICOLON {
		return true
	}
	if t.Type != token.UNQUOTED {
		return false
	}
	if p.peekAhead(1).Type == token.ASSIGN {
		// t is the next statement's identifier, not a value for this one —
		// the empty-at-line case ("A =\nB = 1").
		return true
	}
	word := strings.ToUpper(t.Text(p.source))
	if word == p.grammar.EndStatement {
		return true
	}
	if _, ok := p.grammar.LookupAggregation(word); ok {
		return true
	}
	return isEndAggregationKeyword(p.grammar, word)
}

func (p *Parser) errorf(format string, args ...any) error {
	return &perrors.ParseError{
		Pos:      p.peek().Position(p.filename),
		Dialect:  p.grammar.Dialect,
		Expected: fmt.Sprintf(format, args...),
		Actual:   p.peek().Type.String(),
	}
}

func (p *Parser) recordError(err error) {
	p.errs = append(p.errs, err)
}

func (p *Parser) lastErr() error {
	if len(p.errs) == 0 {
		return nil
	}
	return p.errs[len(p.errs)-1]
}

// --- token navigation, in the style of a hand-rolled recursive-descent
// parser: peek/check/match/advance/consume/expect. ---

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAhead(n int) token.Token {
	i := p.pos + n
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) check(t token.Type) bool {
	return p.peek().Type == t
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) match(t token.Type) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consumeOptional(t token.Type) {
	p.match(t)
}

func (p *Parser) expect(t token.Type, what string) (token.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	tok := p.peek()
	return tok, &perrors.ParseError{
		Pos:      tok.Position(p.filename),
		Dialect:  p.grammar.Dialect,
		Expected: what,
		Actual:   tok.Type.String(),
	}
}
