package parser

import (
	"strings"

	"github.com/nrivard/pvl/grammar"
	"github.com/nrivard/pvl/label"
	"github.com/nrivard/pvl/perrors"
	"github.com/nrivard/pvl/telemetry"
	"github.com/nrivard/pvl/token"
)

// parseBeginBlock implements `begin_block := BEGIN_KW ('=')? identifier
// terminator?`, then recurses into the block's body until the matching end
// statement is consumed.
func (p *Parser) parseBeginBlock(c *label.Container, timer telemetry.Timer, depth int, beginWord, endWordUpper string) error {
	beginTok := p.advance()
	p.consumeOptional(token.ASSIGN)

	nameTok, err := p.expect(token.UNQUOTED, "a block name")
	if err != nil {
		return err
	}
	name := p.interner.Intern(nameTok.Text(p.source))
	p.consumeOptional(token.SEMICOLON)

	kind := aggKindFromWord(endWordUpper)
	block := label.NewBlock(kind, name)
	block.Pos = beginTok.Position(p.filename)

	if err := p.parseBody(&block.Container, timer, depth+1, block); err != nil {
		return err
	}

	c.AppendItem(label.Item{Key: name, Value: *block, Pos: block.Pos})
	return nil
}

// parseEndBlock implements `end_block := END_KW ('=')? identifier?
// terminator?`. A mismatch between the end statement's kind or name and
// the block currently open raises a structural ParseError rather than
// unwinding silently.
func (p *Parser) parseEndBlock(open *label.Block) error {
	endTok := p.advance()
	endWord := strings.ToUpper(endTok.Text(p.source))
	p.consumeOptional(token.ASSIGN)

	var endName string
	if p.check(token.UNQUOTED) {
		endName = p.advance().Text(p.source)
	}
	p.consumeOptional(token.SEMICOLON)

	if open == nil {
		return &perrors.ParseError{
			Pos:      endTok.Position(p.filename),
			Dialect:  p.grammar.Dialect,
			Expected: "an open block to close",
			Actual:   endWord,
		}
	}

	if aggKindFromWord(endWord) != open.AggKind {
		return &perrors.ParseError{
			Pos:      endTok.Position(p.filename),
			Dialect:  p.grammar.Dialect,
			Expected: "END_" + open.AggKind.String() + " to close " + open.Name,
			Actual:   endWord,
		}
	}

	if endName != "" && !strings.EqualFold(endName, open.Name) {
		return &perrors.ParseError{
			Pos:      endTok.Position(p.filename),
			Dialect:  p.grammar.Dialect,
			Expected: "end name " + open.Name,
			Actual:   endName,
		}
	}

	open.EndName = endName
	return nil
}

func aggKindFromWord(upperWord string) grammar.AggregationKind {
	if strings.Contains(upperWord, "GROUP") {
		return grammar.KindGroup
	}
	return grammar.KindObject
}
