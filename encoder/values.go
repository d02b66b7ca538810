package encoder

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/nrivard/pvl/grammar"
	"github.com/nrivard/pvl/label"
)

// encodeValue renders v's text form, or returns an EncodeError naming path
// and the violated dialect rule. depth is the current indentation level,
// used only to estimate remaining columns for the 80-column wrap rule.
func (s *state) encodeValue(v label.Value, path []string, depth int) (string, error) {
	g := s.enc.grammar

	switch val := v.(type) {
	case label.Integer:
		return val.Raw, nil

	case label.BasedInteger:
		return encodeBasedInteger(val, g), nil

	case label.Real:
		return val.Raw, nil

	case label.String:
		return s.encodeString(val), nil

	case label.Symbol:
		return s.encodeSymbol(val), nil

	case label.Boolean:
		if val.Value {
			return g.TrueKeyword, nil
		}
		return g.FalseKeyword, nil

	case label.Null:
		return g.NoneKeyword, nil

	case label.Date:
		return s.encodeDate(val, path)

	case label.Time:
		return s.encodeTime(val, path)

	case label.DateTime:
		return s.encodeDateTime(val, path)

	case label.Sequence:
		return s.encodeSequence(val, path, depth)

	case label.Set:
		return s.encodeSet(val, path, depth)

	case label.Quantity:
		return s.encodeQuantity(val, path, depth)

	default:
		return "", encodeErr(path, g.Dialect, "unsupported-value", fmt.Sprintf("cannot encode value of type %T", v))
	}
}

// encodeBasedInteger renders "radix#digits#", placing an optional sign
// before or after the radix according to g's BasedInteger form (dialects
// disagree on where the sign belongs, per grammar.BasedIntegerForm).
func encodeBasedInteger(v label.BasedInteger, g *grammar.Grammar) string {
	sign := ""
	if v.Sign < 0 {
		sign = "-"
	} else if v.Sign > 0 {
		sign = "+"
	}
	if sign != "" && g.BasedInteger.SignAfterRadix && !g.BasedInteger.SignBeforeRadix {
		return fmt.Sprintf("%d#%s%s#", v.Radix, sign, v.Digits)
	}
	return fmt.Sprintf("%s%d#%s#", sign, v.Radix, v.Digits)
}

func (s *state) encodeString(v label.String) string {
	quote := s.enc.grammar.Quotes[0]
	if v.Quote == label.SingleQuoted {
		quote = s.enc.grammar.Quotes[1]
	}
	if v.Quote == label.Unquoted && !needsQuoting(v.Value, s.enc.grammar) {
		return v.Value
	}
	return quoteText(v.Value, quote, s.enc.grammar.DoubledQuoteEscape)
}

func (s *state) encodeSymbol(v label.Symbol) string {
	if needsQuoting(v.Value, s.enc.grammar) {
		return quoteText(v.Value, s.enc.grammar.Quotes[0], s.enc.grammar.DoubledQuoteEscape)
	}
	return v.Value
}

// needsQuoting reports whether text cannot round-trip as an unquoted
// identifier under g: empty, containing whitespace, or containing a
// reserved character.
func needsQuoting(text string, g interface {
	IsWhitespace(byte) bool
	IsReserved(byte) bool
}) bool {
	if text == "" {
		return true
	}
	for i := 0; i < len(text); i++ {
		if g.IsWhitespace(text[i]) || g.IsReserved(text[i]) {
			return true
		}
	}
	return false
}

func quoteText(text string, quote byte, doubled bool) string {
	var b strings.Builder
	b.WriteByte(quote)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == quote {
			if doubled {
				b.WriteByte(quote)
				b.WriteByte(quote)
			} else {
				b.WriteByte('\\')
				b.WriteByte(quote)
			}
			continue
		}
		if c == '\\' && !doubled {
			b.WriteByte('\\')
			b.WriteByte('\\')
			continue
		}
		b.WriteByte(c)
	}
	b.WriteByte(quote)
	return b.String()
}

func (s *state) encodeDate(v label.Date, path []string) (string, error) {
	if s.enc.grammar.ForceUTCOnEncode && !v.HasZone {
		return "", encodeErr(path, s.enc.grammar.Dialect, "utc-only", "PDS labels should only have UTC dates")
	}
	if v.DayOfYear > 0 {
		return fmt.Sprintf("%04d-%03d", v.Year, v.DayOfYear), nil
	}
	return fmt.Sprintf("%04d-%02d-%02d", v.Year, v.Month, v.Day), nil
}

func (s *state) encodeTime(v label.Time, path []string) (string, error) {
	if s.enc.grammar.ForceUTCOnEncode && !v.HasZone {
		return "", encodeErr(path, s.enc.grammar.Dialect, "utc-only", "PDS labels should only have UTC times")
	}
	if s.enc.grammar.ForceUTCOnEncode && v.ZoneOffsetSeconds != 0 {
		return "", encodeErr(path, s.enc.grammar.Dialect, "utc-only", "PDS labels should only have UTC times")
	}
	if s.enc.grammar.MillisecondPrecisionMax && v.Nanosecond%int(1e6) != 0 {
		return "", encodeErr(path, s.enc.grammar.Dialect, "precision", "sub-millisecond precision is not permitted")
	}

	sec := v.Second
	base := fmt.Sprintf("%02d:%02d", v.Hour, v.Minute)
	if sec != 0 || v.Nanosecond != 0 || v.LeapSecond {
		base += fmt.Sprintf(":%02d", sec)
		if v.Nanosecond != 0 {
			ms := v.Nanosecond / int(1e6)
			base += fmt.Sprintf(".%03d", ms)
		}
	}
	if v.ZoneOffsetSeconds != 0 {
		sign := byte('+')
		off := v.ZoneOffsetSeconds
		if off < 0 {
			sign = '-'
			off = -off
		}
		base += fmt.Sprintf("%c%02d:%02d", sign, off/3600, (off%3600)/60)
	} else if v.HasZone {
		base += "Z"
	}
	return base, nil
}

func (s *state) encodeDateTime(v label.DateTime, path []string) (string, error) {
	d, err := s.encodeDate(v.Date, path)
	if err != nil {
		return "", err
	}
	t, err := s.encodeTime(v.Time, path)
	if err != nil {
		return "", err
	}
	return d + "T" + t, nil
}

func (s *state) encodeSequence(v label.Sequence, path []string, depth int) (string, error) {
	parts := make([]string, len(v.Elements))
	for i, el := range v.Elements {
		text, err := s.encodeValue(el, append(path, fmt.Sprintf("[%d]", i)), depth)
		if err != nil {
			return "", err
		}
		parts[i] = text
	}
	return "(" + s.wrapList(parts, depth) + ")", nil
}

func (s *state) encodeSet(v label.Set, path []string, depth int) (string, error) {
	elements := v.Elements
	if s.enc.sortSets {
		elements = label.SortedSet(v).Elements
	}

	parts := make([]string, len(elements))
	for i, el := range elements {
		if s.enc.grammar.SetScalarOnly {
			switch el.Kind() {
			case label.KindInteger, label.KindBasedInteger, label.KindSymbol:
			default:
				return "", encodeErr(path, s.enc.grammar.Dialect, "set-scalar-only", fmt.Sprintf("PDS3 sets permit only integers and symbols, found %s", el.Kind()))
			}
		}
		text, err := s.encodeValue(el, append(path, fmt.Sprintf("{%d}", i)), depth)
		if err != nil {
			return "", err
		}
		parts[i] = text
	}
	return "{" + s.wrapList(parts, depth) + "}", nil
}

// wrapList joins parts with ", ", breaking after a comma and indenting one
// level deeper than the current depth when the 80-column limit would otherwise be crossed.
func (s *state) wrapList(parts []string, depth int) string {
	limit := s.enc.grammar.LineWrapColumn
	joined := strings.Join(parts, ", ")
	if limit == 0 || runewidth.StringWidth(joined) <= limit {
		return joined
	}

	indent := s.indent(depth + 1)
	var b strings.Builder
	lineWidth := runewidth.StringWidth(indent)
	for i, p := range parts {
		sep := ", "
		if i == 0 {
			sep = ""
		}
		if i > 0 && lineWidth+runewidth.StringWidth(sep)+runewidth.StringWidth(p) > limit {
			b.WriteString(",\n")
			b.WriteString(indent)
			lineWidth = runewidth.StringWidth(indent)
			sep = ""
		}
		b.WriteString(sep)
		b.WriteString(p)
		lineWidth += runewidth.StringWidth(sep) + runewidth.StringWidth(p)
	}
	return b.String()
}

func (s *state) encodeQuantity(v label.Quantity, path []string, depth int) (string, error) {
	value := v.Value
	units := v.Units
	if v.External != nil && s.enc.quantityAccessor != nil {
		if ev, eu, ok := s.enc.quantityAccessor(v.External); ok {
			value, units = ev, eu
		}
	}
	if units == "" {
		return "", encodeErr(path, s.enc.grammar.Dialect, "quantity-units", "quantity units must be non-empty")
	}

	text, err := s.encodeValue(value, path, depth)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s <%s>", text, formatUnits(units)), nil
}

// formatUnits normalizes a units expression by spacing its '*'/'/'
// operators, so "m/s" and "m / s" both encode as "m / s".
func formatUnits(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch c {
		case '*', '/':
			b.WriteByte(' ')
			b.WriteByte(c)
			b.WriteByte(' ')
		case ' ', '\t':
			// collapsed; operator spacing above supplies the canonical form
		default:
			b.WriteByte(c)
		}
	}
	return strings.TrimSpace(b.String())
}
