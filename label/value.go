// Package label implements the in-memory label tree: an order-preserving,
// duplicate-key-tolerant multi-mapping of parameter names to typed values,
// plus the tagged union of scalar and aggregate value kinds a PVL-family
// label can hold.
package label

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nrivard/pvl/token"
)

// ValueKind discriminates the Value tagged union.
type ValueKind uint8

const (
	KindInteger ValueKind = iota
	KindBasedInteger
	KindReal
	KindString
	KindSymbol
	KindDate
	KindTime
	KindDateTime
	KindSet
	KindSequence
	KindQuantity
	KindEmptyAtLine
	KindBoolean
	KindNull
	KindBlock
)

func (k ValueKind) String() string {
	names := [...]string{
		"Integer", "BasedInteger", "Real", "String", "Symbol",
		"Date", "Time", "DateTime", "Set", "Sequence", "Quantity",
		"EmptyAtLine", "Boolean", "Null", "Block",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Value is the tagged union of everything a label parameter can hold, plus
// the Block aggregate type (a Block is itself a Value so it can nest).
type Value interface {
	Kind() ValueKind
	// GoString renders a debug form suitable for github.com/alecthomas/repr
	// style structural dumps and for equality-mismatch diagnostics.
	GoString() string
}

// Integer is a whole-number scalar. Overflow beyond int64 is not
// represented here: the decoder reports it as a DecodeError, except under
// Omni, which decodes such a literal as a Real.
type Integer struct {
	Value int64
	// Raw preserves the original digit text (including any leading sign
	// or zero-padding) for round-tripping.
	Raw string
}

func (Integer) Kind() ValueKind    { return KindInteger }
func (v Integer) GoString() string { return fmt.Sprintf("Integer(%s)", v.Raw) }

// BasedInteger is a `radix#digits#` literal. The raw digit string is kept
// verbatim (case, leading zeros) since it is meaningful to round-trip.
type BasedInteger struct {
	Radix  int
	Digits string
	Sign   int // -1, 0 (absent) or +1
	Value  int64
}

func (BasedInteger) Kind() ValueKind { return KindBasedInteger }
func (v BasedInteger) GoString() string {
	sign := ""
	if v.Sign < 0 {
		sign = "-"
	}
	return fmt.Sprintf("BasedInteger(%s%d#%s#)", sign, v.Radix, v.Digits)
}

// Real is an arbitrary-precision decimal scalar. Decimal is used instead
// of float64 so the mantissa/exponent survive round-tripping exactly, per
// the normalized (mantissa, exponent, raw_text) design the numeric layer
// is built around.
type Real struct {
	Decimal decimal.Decimal
	Raw     string
}

func (Real) Kind() ValueKind    { return KindReal }
func (v Real) GoString() string { return fmt.Sprintf("Real(%s)", v.Raw) }

// Mantissa and Exponent expose the normalized (mantissa, exponent) view of
// the decimal, for downstream conversion to another numeric type.
func (v Real) Mantissa() int64 { return v.Decimal.Coefficient().Int64() }
func (v Real) Exponent() int32 { return v.Decimal.Exponent() }

// QuoteStyle records how a String value was quoted in source, so the
// encoder can decide whether to preserve it.
type QuoteStyle uint8

const (
	Unquoted QuoteStyle = iota
	DoubleQuoted
	SingleQuoted
)

// String is a text scalar, quoted or not.
type String struct {
	Value string
	Quote QuoteStyle
}

func (String) Kind() ValueKind    { return KindString }
func (v String) GoString() string { return fmt.Sprintf("String(%q)", v.Value) }

// Symbol is an unquoted identifier-like literal, distinct from String only
// in that it was never quoted and is validated against the dialect's
// identifier rule where required (ODL).
type Symbol struct {
	Value string
}

func (Symbol) Kind() ValueKind    { return KindSymbol }
func (v Symbol) GoString() string { return fmt.Sprintf("Symbol(%s)", v.Value) }

// Boolean is TRUE/FALSE.
type Boolean struct {
	Value bool
}

func (Boolean) Kind() ValueKind    { return KindBoolean }
func (v Boolean) GoString() string { return fmt.Sprintf("Boolean(%t)", v.Value) }

// Null is the NULL literal, distinct from EmptyAtLine.
type Null struct{}

func (Null) Kind() ValueKind    { return KindNull }
func (Null) GoString() string   { return "Null" }

// EmptyAtLine marks a parameter assigned with '=' but no following value,
// as tolerated by the Omni grammar. It carries the source line for
// diagnostics.
type EmptyAtLine struct {
	Line int
}

func (EmptyAtLine) Kind() ValueKind    { return KindEmptyAtLine }
func (v EmptyAtLine) GoString() string { return fmt.Sprintf("EmptyAtLine(line=%d)", v.Line) }

// Date, Time and DateTime carry the parsed calendar fields directly rather
// than time.Time, because PVL dates permit day-of-year form and
// intentionally-naive (zoneless) values that time.Time cannot represent
// without inventing a zone.
type Date struct {
	Year, Month, Day int
	DayOfYear        int // 0 unless the source used YYYY-DDD form
	HasZone          bool
	Raw              string
}

func (Date) Kind() ValueKind    { return KindDate }
func (v Date) GoString() string { return fmt.Sprintf("Date(%s)", v.Raw) }

type Time struct {
	Hour, Minute, Second int
	Nanosecond           int
	LeapSecond           bool
	HasZone              bool
	ZoneOffsetSeconds    int
	Raw                  string
}

func (Time) Kind() ValueKind    { return KindTime }
func (v Time) GoString() string { return fmt.Sprintf("Time(%s)", v.Raw) }

type DateTime struct {
	Date Date
	Time Time
	Raw  string
}

func (DateTime) Kind() ValueKind    { return KindDateTime }
func (v DateTime) GoString() string { return fmt.Sprintf("DateTime(%s)", v.Raw) }

// Set is an unordered collection of scalars. Order is preserved from
// parsing (Set is "unordered" only in that dialects may re-sort it on
// encode); equality treats it as order-sensitive like everything else,
// matching Testable Property 2.
type Set struct {
	Elements []Value
}

func (Set) Kind() ValueKind    { return KindSet }
func (v Set) GoString() string { return fmt.Sprintf("Set(%d elements)", len(v.Elements)) }

// Sequence is an ordered collection; elements may themselves be sequences.
type Sequence struct {
	Elements []Value
}

func (Sequence) Kind() ValueKind    { return KindSequence }
func (v Sequence) GoString() string { return fmt.Sprintf("Sequence(%d elements)", len(v.Elements)) }

// Quantity pairs a scalar with a units string ("value <units>"). External,
// when non-nil, holds the result of an injected quantity factory.
type Quantity struct {
	Value    Value
	Units    string
	External any
}

func (Quantity) Kind() ValueKind { return KindQuantity }
func (v Quantity) GoString() string {
	return fmt.Sprintf("Quantity(%s <%s>)", v.Value.GoString(), v.Units)
}

// Position is the source location a value or item originated from. It is
// the zero value when the tree was built programmatically rather than
// parsed.
type Position = token.Position
