// Package perrors defines the structured error taxonomy raised by every
// stage of loading and dumping a label: lexing, decoding, parsing and
// encoding. Lexer, parse, decode and quantity errors carry a source
// position, encode errors carry the key path instead, and all but quantity
// errors carry the active dialect; presentation (plain text,
// source-context, JSON) is handled separately by TextFormatter and
// JSONFormatter in render.go so the error types themselves stay free of
// formatting concerns.
package perrors

import (
	"fmt"

	"github.com/nrivard/pvl/grammar"
	"github.com/nrivard/pvl/token"
)

// LexerError reports an unrecognized or malformed character sequence.
type LexerError struct {
	Pos      token.Position
	Dialect  grammar.Dialect
	Found    string
	Expected string
	Context  string
}

func (e *LexerError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("%s:%d:%d: lex error: found %q, expected %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Found, e.Expected)
	}
	return fmt.Sprintf("%s:%d:%d: lex error: unexpected %q", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Found)
}

// Position returns the error's source position.
func (e *LexerError) Position() token.Position { return e.Pos }

// ParseError reports a syntax error: an unexpected token where a specific
// production was expected.
type ParseError struct {
	Pos      token.Position
	Dialect  grammar.Dialect
	Expected string
	Actual   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: parse error: expected %s, found %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Expected, e.Actual)
}

func (e *ParseError) Position() token.Position { return e.Pos }

// DecodeError reports a token whose text could not be decoded into the
// requested scalar type.
type DecodeError struct {
	Pos        token.Position
	Dialect    grammar.Dialect
	TokenText  string
	TargetType string
	Reason     string
}

func (e *DecodeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s:%d:%d: cannot decode %q as %s: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.TokenText, e.TargetType, e.Reason)
	}
	return fmt.Sprintf("%s:%d:%d: cannot decode %q as %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.TokenText, e.TargetType)
}

func (e *DecodeError) Position() token.Position { return e.Pos }

// EncodeError reports a value that cannot be written under the requested
// dialect's validity rules.
type EncodeError struct {
	KeyPath []string
	Dialect grammar.Dialect
	Rule    string
	Message string
}

func (e *EncodeError) Error() string {
	path := "<root>"
	if len(e.KeyPath) > 0 {
		path = e.KeyPath[0]
		for _, k := range e.KeyPath[1:] {
			path += "." + k
		}
	}
	return fmt.Sprintf("encode error at %s (%s, rule %s): %s", path, e.Dialect, e.Rule, e.Message)
}

// QuantityError reports that a caller-supplied quantity factory rejected a
// value/units pair.
type QuantityError struct {
	Pos     token.Position
	Value   any
	Units   string
	Err     error
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("%s:%d:%d: quantity factory rejected %v<%s>: %v", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Value, e.Units, e.Err)
}

func (e *QuantityError) Position() token.Position { return e.Pos }

func (e *QuantityError) Unwrap() error { return e.Err }
