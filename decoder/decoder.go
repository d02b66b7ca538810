// Package decoder converts lexed token text into typed label.Value scalars,
// following each dialect's numeric, boolean, date/time and quoting rules.
package decoder

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nrivard/pvl/grammar"
	"github.com/nrivard/pvl/label"
	"github.com/nrivard/pvl/perrors"
	"github.com/nrivard/pvl/token"
)

// RealFactory, when set, converts a normalized real literal's raw text into
// an application-chosen representation. The default keeps the
// decimal.Decimal-backed label.Real.
type RealFactory func(raw string) (any, error)

// Decoder decodes token text into label.Value scalars under a fixed
// grammar. It holds no per-call state and is safe to reuse.
type Decoder struct {
	Grammar     *grammar.Grammar
	RealFactory RealFactory
}

// New creates a Decoder for g.
func New(g *grammar.Grammar) *Decoder {
	return &Decoder{Grammar: g}
}

// DecodeUnquoted decodes the text of an UNQUOTED token: an integer,
// based-integer, real, boolean, null, date/time literal, or, failing all
// of those, a bare Symbol.
func (d *Decoder) DecodeUnquoted(text string, pos token.Position) (label.Value, error) {
	if text == "" {
		return nil, &perrors.DecodeError{Pos: pos, Dialect: d.Grammar.Dialect, TokenText: text, TargetType: "scalar", Reason: "empty token"}
	}

	upper := strings.ToUpper(text)
	switch upper {
	case d.Grammar.NoneKeyword:
		return label.Null{}, nil
	case d.Grammar.TrueKeyword:
		return label.Boolean{Value: true}, nil
	case d.Grammar.FalseKeyword:
		return label.Boolean{Value: false}, nil
	}

	if v, ok := d.tryBasedInteger(text); ok {
		return v, nil
	}
	if v, ok, err := d.tryInteger(text, pos); ok || err != nil {
		return v, err
	}
	if v, ok, err := d.tryDateTime(text, pos); ok || err != nil {
		return v, err
	}
	if v, ok := d.tryReal(text); ok {
		return v, nil
	}

	if d.Grammar.Dialect == grammar.ODL && !isODLIdentifier(text) {
		return nil, &perrors.DecodeError{
			Pos:        pos,
			Dialect:    d.Grammar.Dialect,
			TokenText:  text,
			TargetType: "Symbol",
			Reason:     "not a valid identifier: must start with a letter and contain only letters, digits and underscores",
		}
	}
	return label.Symbol{Value: text}, nil
}

// DecodeQuoted decodes the body of a QUOTED_STRING token (delimiters
// already stripped) into a label.String, unescaping per quote style.
func (d *Decoder) DecodeQuoted(inner string, quote byte) label.Value {
	style := label.DoubleQuoted
	if quote == '\'' {
		style = label.SingleQuoted
	}
	return label.String{Value: unescape(inner, quote), Quote: style}
}

func unescape(s string, quote byte) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == quote && i+1 < len(s) && s[i+1] == quote {
			b.WriteByte(quote)
			i++
			continue
		}
		if c == '\\' && i+1 < len(s) {
			next := s[i+1]
			switch next {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\', '"', '\'':
				b.WriteByte(next)
			default:
				b.WriteByte(next)
			}
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// isODLIdentifier reports whether text follows ODL's identifier rule:
// a letter followed by letters, digits or underscores.
func isODLIdentifier(text string) bool {
	c := text[0]
	if !((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
		return false
	}
	for i := 1; i < len(text); i++ {
		c := text[i]
		if !((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_') {
			return false
		}
	}
	return true
}

// tryInteger matches a plain decimal integer. A value that overflows a
// 64-bit integer is a DecodeError under every dialect except Omni, which
// falls through so tryReal can take it as an arbitrary-precision Real.
func (d *Decoder) tryInteger(text string, pos token.Position) (label.Value, bool, error) {
	v, err := strconv.ParseInt(text, 10, 64)
	if err == nil {
		return label.Integer{Value: v, Raw: text}, true, nil
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
		if d.Grammar.Dialect == grammar.Omni {
			return nil, false, nil
		}
		return nil, false, &perrors.DecodeError{
			Pos:        pos,
			Dialect:    d.Grammar.Dialect,
			TokenText:  text,
			TargetType: "Integer",
			Reason:     "value overflows a 64-bit integer",
		}
	}
	return nil, false, nil
}

// tryBasedInteger matches "[sign]radix#digits#" (sign-before form) or
// "radix#[sign]digits#" (sign-after form), per the active grammar's
// BasedInteger rule.
func (d *Decoder) tryBasedInteger(text string) (label.Value, bool) {
	form := d.Grammar.BasedInteger
	sign := 0
	rest := text

	if form.SignBeforeRadix && len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		if rest[0] == '-' {
			sign = -1
		} else {
			sign = 1
		}
		rest = rest[1:]
	}

	radixDigits := 0
	for radixDigits < len(rest) && rest[radixDigits] >= '0' && rest[radixDigits] <= '9' {
		radixDigits++
	}
	if radixDigits == 0 || radixDigits >= len(rest) || rest[radixDigits] != '#' {
		return nil, false
	}
	radix, err := strconv.Atoi(rest[:radixDigits])
	if err != nil || radix < form.MinRadix || radix > form.MaxRadix {
		return nil, false
	}
	rest = rest[radixDigits+1:]

	if form.SignAfterRadix && len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		if rest[0] == '-' {
			sign = -1
		} else {
			sign = 1
		}
		rest = rest[1:]
	}

	if len(rest) == 0 || rest[len(rest)-1] != '#' {
		return nil, false
	}
	digits := rest[:len(rest)-1]
	if digits == "" {
		return nil, false
	}
	value, err := strconv.ParseInt(digits, radix, 64)
	if err != nil {
		return nil, false
	}
	if sign < 0 {
		value = -value
	}
	return label.BasedInteger{Radix: radix, Digits: digits, Sign: sign, Value: value}, true
}

func (d *Decoder) tryReal(text string) (label.Value, bool) {
	dec, err := decimal.NewFromString(text)
	if err != nil {
		return nil, false
	}
	if d.RealFactory != nil {
		v, err := d.RealFactory(text)
		if err == nil {
			return realWrapper{external: v, raw: text}, true
		}
	}
	return label.Real{Decimal: dec, Raw: text}, true
}

// realWrapper adapts a RealFactory result to the label.Value interface
// without forcing every caller to type-switch on whatever type the factory
// returned.
type realWrapper struct {
	external any
	raw      string
}

func (realWrapper) Kind() label.ValueKind { return label.KindReal }
func (r realWrapper) GoString() string    { return "Real(" + r.raw + ")" }

// External returns the RealFactory's product, for callers that installed one.
func (r realWrapper) External() any { return r.external }
