package parser

import (
	"strings"

	"github.com/nrivard/pvl/label"
	"github.com/nrivard/pvl/perrors"
	"github.com/nrivard/pvl/token"
)

// parseValue implements `value := scalar | sequence | set | quantity |
// empty`. Quantity is handled as a suffix on whichever scalar precedes it.
func (p *Parser) parseValue() (label.Value, error) {
	tok := p.peek()
	switch tok.Type {
	case token.QUOTED_STRING:
		p.advance()
		text := tok.Text(p.source)
		quote := byte('"')
		inner := text
		if len(text) > 0 {
			quote = text[0]
			inner = text[1:]
			if len(inner) > 0 && inner[len(inner)-1] == quote {
				inner = inner[:len(inner)-1]
			}
		}
		v := p.decoder.DecodeQuoted(inner, quote)
		return p.parseQuantitySuffix(v, tok)

	case token.UNQUOTED:
		p.advance()
		text := p.interner.Intern(tok.Text(p.source))
		v, err := p.decoder.DecodeUnquoted(text, tok.Position(p.filename))
		if err != nil {
			return nil, err
		}
		return p.parseQuantitySuffix(v, tok)

	case token.LPAREN:
		return p.parseSequence()

	case token.LBRACE:
		return p.parseSet()

	default:
		return nil, &perrors.ParseError{
			Pos:      tok.Position(p.filename),
			Dialect:  p.grammar.Dialect,
			Expected: "a value",
			Actual:   tok.Type.String(),
		}
	}
}

// parseSequence implements `sequence := '(' value (',' value)* ')'`.
// Elements may themselves be nested sequences.
func (p *Parser) parseSequence() (label.Value, error) {
	p.advance() // '('
	var elements []label.Value
	if !p.check(token.RPAREN) {
		for {
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			elements = append(elements, v)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(token.RPAREN, "`)`"); err != nil {
		return nil, err
	}
	return label.Sequence{Elements: elements}, nil
}

// parseSet implements `set := '{' value (',' value)* '}'`.
func (p *Parser) parseSet() (label.Value, error) {
	p.advance() // '{'
	var elements []label.Value
	if !p.check(token.RBRACE) {
		for {
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			elements = append(elements, v)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(token.RBRACE, "`}`"); err != nil {
		return nil, err
	}
	return label.Set{Elements: elements}, nil
}

// parseQuantitySuffix implements `quantity := scalar '<' units '>'`. Units
// text is taken directly from the source bytes between the delimiters,
// since it is free text rather than a single lexical token.
func (p *Parser) parseQuantitySuffix(scalar label.Value, scalarTok token.Token) (label.Value, error) {
	if !p.check(token.LANGLE) {
		return scalar, nil
	}
	langle := p.advance()
	afterLangle := langle.End

	for !p.check(token.RANGLE) {
		if p.check(token.EOF) {
			return nil, &perrors.ParseError{
				Pos:      langle.Position(p.filename),
				Dialect:  p.grammar.Dialect,
				Expected: "`>` closing units",
				Actual:   "end of input",
			}
		}
		p.advance()
	}
	rangle := p.peek()
	units := p.interner.Intern(strings.TrimSpace(string(p.source[afterLangle:rangle.Start])))
	p.advance() // '>'

	if units == "" {
		return nil, &perrors.ParseError{
			Pos:      langle.Position(p.filename),
			Dialect:  p.grammar.Dialect,
			Expected: "a non-empty units string",
			Actual:   "`<>`",
		}
	}

	q := label.Quantity{Value: scalar, Units: units}
	if p.quantityFactory != nil {
		ext, err := p.quantityFactory(scalar, units)
		if err != nil {
			return nil, &perrors.QuantityError{Pos: scalarTok.Position(p.filename), Value: scalar, Units: units, Err: err}
		}
		q.External = ext
	}
	return q, nil
}
