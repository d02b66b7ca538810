// Package grammar describes the lexical and syntactic rules that distinguish
// the PVL, ODL, PDS3 and ISIS label dialects, plus the permissive Omni
// superset used for best-effort ingestion.
//
// A Grammar is an immutable descriptor: it is built once by one of the
// dialect constructors below and shared freely by the lexer, decoder,
// parser and encoder. Nothing in this package mutates a Grammar after
// construction, mirroring the way the source material keeps its grammar
// objects read-only once initialized.
package grammar

import "time"

// Dialect identifies one of the label rule sets this module understands.
type Dialect uint8

const (
	// PVL is the permissive base dialect (CCSDS 641.0-B-2).
	PVL Dialect = iota
	// ODL is the stricter PDS3 Object Description Language dialect.
	ODL
	// PDS3 is the PDS3 Label Standard, layered on top of ODL's lexical rules.
	PDS3
	// ISIS is the de-facto dialect written by USGS ISIS cube labels.
	ISIS
	// Omni is a broadly permissive superset used only for ingestion.
	Omni
)

func (d Dialect) String() string {
	switch d {
	case PVL:
		return "PVL"
	case ODL:
		return "ODL"
	case PDS3:
		return "PDS3"
	case ISIS:
		return "ISIS"
	case Omni:
		return "Omni"
	default:
		return "unknown"
	}
}

// AggregationKind distinguishes GROUP from OBJECT aggregation blocks.
type AggregationKind uint8

const (
	// KindObject is an OBJECT/END_OBJECT aggregation block.
	KindObject AggregationKind = iota
	// KindGroup is a GROUP/END_GROUP aggregation block.
	KindGroup
)

func (k AggregationKind) String() string {
	if k == KindGroup {
		return "GROUP"
	}
	return "OBJECT"
}

// BasedIntegerForm describes where the optional sign of a based-integer
// literal ("radix#digits#") may appear for a given dialect.
type BasedIntegerForm struct {
	SignBeforeRadix bool
	SignAfterRadix  bool
	MinRadix        int
	MaxRadix        int
}

// Grammar is an immutable descriptor of one dialect's rules. Construct one
// with PVLGrammar, ODLGrammar, PDS3Grammar, ISISGrammar or OmniGrammar; do
// not build one by hand unless you are defining a new dialect variant.
type Grammar struct {
	Dialect Dialect

	SpacingChars     [2]byte // ' ', '\t'
	FormatEffectors  [4]byte // '\n', '\r', '\v', '\f'
	ReservedChars    map[byte]bool
	NumericStart     map[byte]bool // '+', '-'
	StatementEnd     byte          // ';'
	CommentPairs     [][2]string   // ordered open/close delimiter pairs
	LineComment      string        // "#" line-comment prefix, "" if unsupported

	NoneKeyword  string
	TrueKeyword  string
	FalseKeyword string

	// AggregationKeywords maps an upper-cased begin keyword to its
	// upper-cased end keyword, e.g. "GROUP" -> "END_GROUP". Comparison at
	// the lexer/parser boundary is always case-insensitive.
	AggregationKeywords map[string]string
	// EncodeBeginKeyword/EncodeEndKeyword name the spelling this dialect's
	// encoder writes for a given aggregation kind.
	EncodeBeginKeyword map[AggregationKind]string
	EncodeEndKeyword   map[AggregationKind]string

	EndStatement string // "END"

	Quotes       [2]byte // '"', '\''
	SetDelims    [2]byte // '{', '}'
	SeqDelims    [2]byte // '(', ')'
	UnitsDelims  [2]byte // '<', '>'

	BasedInteger BasedIntegerForm

	// LeapSecondAllowed permits a seconds field of 60 in Time/DateTime
	// literals (used to represent a positive leap second).
	LeapSecondAllowed bool
	// DefaultTimezone, when non-nil, is attached to date/time values parsed
	// without an explicit zone. Nil means the value stays "naive".
	DefaultTimezone *time.Location

	// UnquotedPlusAllowed permits a bare '+' inside unquoted symbols and
	// identifiers instead of treating it as reserved punctuation.
	UnquotedPlusAllowed bool
	// DashContinuationAllowed enables ISIS-style "-\n" line splicing inside
	// unquoted values and strings.
	DashContinuationAllowed bool
	// CharAllowed reports whether r is permitted in this dialect's
	// character set (used to validate quoted string contents).
	CharAllowed func(r rune) bool

	// Encoder-facing formatting/validity rules.
	UppercaseParameterNames bool
	SetScalarOnly           bool // PDS3: only integers and symbols in Set values
	TrailingBlankAfterEnd   bool
	LineWrapColumn          int // 0 means "no enforced wrap"
	ForceUTCOnEncode        bool
	MillisecondPrecisionMax bool // PDS3: reject sub-millisecond precision on encode
	IndentWidth             int
	// EmitStatementTerminator writes the StatementEnd byte after every
	// assignment and block begin/end line and after the closing END. Only
	// PVL does; ODL/PDS3/ISIS omit it.
	EmitStatementTerminator bool
	// DoubledQuoteEscape controls how an embedded quote character is escaped
	// on encode: true doubles it ("" inside "..."), false backslash-escapes
	// it (\"). PVL uses doubling; ODL, PDS3 and ISIS require backslashes.
	DoubledQuoteEscape bool
}

// IsReserved reports whether b is a reserved character for this grammar.
func (g *Grammar) IsReserved(b byte) bool {
	return g.ReservedChars[b]
}

// IsWhitespace reports whether b is inter-token whitespace.
func (g *Grammar) IsWhitespace(b byte) bool {
	switch b {
	case g.SpacingChars[0], g.SpacingChars[1]:
		return true
	}
	for _, fe := range g.FormatEffectors {
		if b == fe {
			return true
		}
	}
	return false
}

// LookupAggregation resolves a case-folded begin keyword to its end
// keyword and reports whether it was recognized.
func (g *Grammar) LookupAggregation(upperBegin string) (end string, ok bool) {
	end, ok = g.AggregationKeywords[upperBegin]
	return
}

func latin1Allowed(r rune) bool {
	o := int(r)
	if o > 255 {
		return false
	}
	if o >= 0 && o <= 8 {
		return false
	}
	if o >= 14 && o <= 31 {
		return false
	}
	if o >= 127 && o <= 159 {
		return false
	}
	return true
}

func asciiAllowed(r rune) bool {
	return r >= 0 && r <= 127
}

func baseReservedChars() map[byte]bool {
	chars := []byte{'&', '<', '>', '\'', '{', '}', ',', '[', ']', '=', '!',
		'#', '(', ')', '%', '+', '"', ';', '~', '|'}
	m := make(map[byte]bool, len(chars))
	for _, c := range chars {
		m[c] = true
	}
	return m
}

func baseAggregationKeywords() map[string]string {
	return map[string]string{
		"GROUP":       "END_GROUP",
		"BEGIN_GROUP": "END_GROUP",
		"OBJECT":      "END_OBJECT",
		"BEGIN_OBJECT": "END_OBJECT",
	}
}

func basePVL() *Grammar {
	g := &Grammar{
		SpacingChars:    [2]byte{' ', '\t'},
		FormatEffectors: [4]byte{'\n', '\r', '\v', '\f'},
		ReservedChars:   baseReservedChars(),
		NumericStart:    map[byte]bool{'+': true, '-': true},
		StatementEnd:    ';',
		CommentPairs:    [][2]string{{"/*", "*/"}},
		NoneKeyword:     "NULL",
		TrueKeyword:     "TRUE",
		FalseKeyword:    "FALSE",
		AggregationKeywords: baseAggregationKeywords(),
		EncodeBeginKeyword: map[AggregationKind]string{
			KindGroup:  "BEGIN_GROUP",
			KindObject: "BEGIN_OBJECT",
		},
		EncodeEndKeyword: map[AggregationKind]string{
			KindGroup:  "END_GROUP",
			KindObject: "END_OBJECT",
		},
		EndStatement: "END",
		Quotes:       [2]byte{'"', '\''},
		SetDelims:    [2]byte{'{', '}'},
		SeqDelims:    [2]byte{'(', ')'},
		UnitsDelims:  [2]byte{'<', '>'},
		BasedInteger: BasedIntegerForm{SignBeforeRadix: true, MinRadix: 2, MaxRadix: 16},
		LeapSecondAllowed: true,
		DefaultTimezone:   nil,
		CharAllowed:       latin1Allowed,
		IndentWidth:       2,
	}
	return g
}

// PVLGrammar builds the grammar for the base CCSDS 641.0-B-2 dialect.
func PVLGrammar() *Grammar {
	g := basePVL()
	g.Dialect = PVL
	g.EmitStatementTerminator = true
	g.DoubledQuoteEscape = true
	return g
}

// ODLGrammar builds the grammar for the PDS3 Object Description Language.
func ODLGrammar() *Grammar {
	g := basePVL()
	g.Dialect = ODL
	g.EncodeBeginKeyword = map[AggregationKind]string{
		KindGroup:  "GROUP",
		KindObject: "OBJECT",
	}
	g.EncodeEndKeyword = map[AggregationKind]string{
		KindGroup:  "END_GROUP",
		KindObject: "END_OBJECT",
	}
	g.BasedInteger = BasedIntegerForm{SignAfterRadix: true, MinRadix: 2, MaxRadix: 16}
	g.LeapSecondAllowed = false
	g.CharAllowed = asciiAllowed
	return g
}

// PDS3Grammar builds the grammar for the PDS3 Label Standard. Lexically it
// is identical to ODL; its extra strictness (uppercase parameter names, the
// 80-column wrap, UTC-only dates, set restrictions) is encoder/decoder
// validity policy layered on the same tokens.
func PDS3Grammar() *Grammar {
	g := ODLGrammar()
	g.Dialect = PDS3
	g.DefaultTimezone = time.UTC
	g.UppercaseParameterNames = true
	g.SetScalarOnly = true
	g.TrailingBlankAfterEnd = true
	g.LineWrapColumn = 80
	g.ForceUTCOnEncode = true
	g.MillisecondPrecisionMax = true
	return g
}

// ISISGrammar builds the grammar for the de-facto ISIS cube-label dialect.
func ISISGrammar() *Grammar {
	g := basePVL()
	g.Dialect = ISIS
	rc := baseReservedChars()
	delete(rc, '+')
	g.ReservedChars = rc
	g.CommentPairs = [][2]string{{"/*", "*/"}, {"#", "\n"}}
	g.LineComment = "#"
	g.AggregationKeywords = map[string]string{
		"GROUP":  "END_GROUP",
		"OBJECT": "END_OBJECT",
	}
	g.EncodeBeginKeyword = map[AggregationKind]string{
		KindGroup:  "Group",
		KindObject: "Object",
	}
	g.EncodeEndKeyword = map[AggregationKind]string{
		KindGroup:  "End_Group",
		KindObject: "End_Object",
	}
	g.UnquotedPlusAllowed = true
	g.DashContinuationAllowed = true
	return g
}

// OmniGrammar builds the maximally permissive superset grammar used only
// for ingestion; it should never be used to encode output.
func OmniGrammar() *Grammar {
	g := basePVL()
	g.Dialect = Omni
	rc := baseReservedChars()
	delete(rc, '+')
	g.ReservedChars = rc
	g.CommentPairs = [][2]string{{"/*", "*/"}, {"#", "\n"}}
	g.LineComment = "#"
	g.BasedInteger = BasedIntegerForm{SignBeforeRadix: true, SignAfterRadix: true, MinRadix: 2, MaxRadix: 16}
	g.UnquotedPlusAllowed = true
	g.DashContinuationAllowed = true
	return g
}

// ForDialect returns a freshly built Grammar for the named dialect.
func ForDialect(d Dialect) *Grammar {
	switch d {
	case ODL:
		return ODLGrammar()
	case PDS3:
		return PDS3Grammar()
	case ISIS:
		return ISISGrammar()
	case Omni:
		return OmniGrammar()
	default:
		return PVLGrammar()
	}
}
