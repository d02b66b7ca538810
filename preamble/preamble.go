// Package preamble implements the label-source preamble scan: locating
// and extracting the PVL text prefix of a file that may carry trailing
// binary data (a PDS3 label glued to the front of the image it
// describes). It never interprets the label itself; that is the lexer and
// parser's job once this package has handed them a clean text extent.
package preamble

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/nrivard/pvl/grammar"
	"github.com/nrivard/pvl/lexer"
	"github.com/nrivard/pvl/token"
)

// replacementByte substitutes non-text bytes during the ASCII fallback.
// '~' is reserved in every dialect's grammar and bound to no lexer case,
// so a run of these always yields a lexical dead end rather than being
// silently absorbed into a token.
const replacementByte = '~'

// DecodeText implements spec.md §4.6 steps 1-2: it tries decoding data as
// text under encodingName (IANA/MIME name; "" means UTF-8), and falls back
// to byte-wise ASCII decoding with non-ASCII bytes replaced when that
// fails. It never returns an error; a label that cannot be decoded any
// other way still becomes lexable ASCII text, and the lexer/parser report
// the resulting nonsense as their own errors.
func DecodeText(data []byte, encodingName string) []byte {
	if encodingName == "" || strings.EqualFold(encodingName, "utf-8") || strings.EqualFold(encodingName, "us-ascii") {
		if utf8.Valid(data) {
			return data
		}
		return asciiFallback(data)
	}

	enc, err := htmlindex.Get(encodingName)
	if err != nil {
		return asciiFallback(data)
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return asciiFallback(data)
	}
	return decoded
}

// asciiFallback replaces every byte outside the printable/whitespace ASCII
// range with replacementByte, leaving the label's own text untouched.
func asciiFallback(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		if b >= 0x20 && b < 0x7f || b == '\n' || b == '\r' || b == '\t' {
			out[i] = b
		} else {
			out[i] = replacementByte
		}
	}
	return out
}

// Locate scans text under grammar g for the first top-level END statement
// and returns the byte offset one past it, counting an optional ';' and
// the line break that ends the END line as part of it. found is false when no
// top-level END was ever reached (extent is then len(text), the whole
// buffer, for callers that want to attempt a parse anyway).
//
// It re-lexes text with the real lexer rather than hand-rolling a second
// scanner, since a preamble boundary is only meaningful in terms of the
// same token stream the parser will consume.
func Locate(text []byte, filename string, g *grammar.Grammar) (extent int, found bool) {
	lx := lexer.New(text, filename, g)
	tokens, _ := lx.ScanAll()

	depth := 0
	for i, tok := range tokens {
		if tok.Type == token.EOF {
			return len(text), false
		}
		if tok.Type != token.UNQUOTED {
			continue
		}

		word := strings.ToUpper(tok.Text(text))
		if _, ok := g.LookupAggregation(word); ok {
			depth++
			continue
		}
		if word == "END_OBJECT" || word == "END_GROUP" {
			if depth > 0 {
				depth--
			}
			continue
		}
		if word == g.EndStatement && depth == 0 {
			end := tok.End
			if i+1 < len(tokens) && tokens[i+1].Type == token.SEMICOLON {
				end = tokens[i+1].End
			}
			if end+1 < len(text) && text[end] == '\r' && text[end+1] == '\n' {
				end += 2
			} else if end < len(text) && text[end] == '\n' {
				end++
			}
			return end, true
		}
	}
	return len(text), false
}

// Extent trims text to the label's own extent under g, discarding anything
// after the top-level END statement (trailing binary image data, garbage
// appended by a legacy producer, or nothing at all).
func Extent(text []byte, filename string, g *grammar.Grammar) []byte {
	end, ok := Locate(text, filename, g)
	if !ok {
		return text
	}
	return text[:end]
}
