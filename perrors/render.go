package perrors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Formatter renders one or more errors from this package for display.
type Formatter interface {
	Format(err error) string
	FormatAll(errs []error) string
}

// TextFormatter renders errors as plain text, optionally with a snippet of
// source around the offending position.
type TextFormatter struct {
	Source []byte
}

// NewTextFormatter builds a TextFormatter. Passing source enables
// source-context rendering (message, two lines of context, caret).
func NewTextFormatter(source []byte) *TextFormatter {
	return &TextFormatter{Source: source}
}

func (f *TextFormatter) Format(err error) string {
	if f.Source == nil {
		return err.Error()
	}
	if line, col, ok := extractLineCol(err); ok {
		return f.renderWithSourceContext(line, col, err.Error())
	}
	return err.Error()
}

func (f *TextFormatter) FormatAll(errs []error) string {
	var b strings.Builder
	for i, e := range errs {
		b.WriteString(f.Format(e))
		if i < len(errs)-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func (f *TextFormatter) renderWithSourceContext(line, col int, message string) string {
	var b strings.Builder
	b.WriteString(message)
	b.WriteString("\n\n")

	lines := strings.Split(string(f.Source), "\n")
	start := line - 2
	end := line
	if start < 0 {
		start = 0
	}
	if end >= len(lines) {
		end = len(lines) - 1
	}
	for i := start; i <= end && i < len(lines); i++ {
		fmt.Fprintf(&b, "   %s\n", lines[i])
		if i == line-1 && col > 0 {
			b.WriteString("   ")
			for j := 0; j < col-1; j++ {
				b.WriteByte(' ')
			}
			b.WriteString("^\n")
		}
	}
	return b.String()
}

// extractLineCol pulls line/column out of any error in this package that
// carries a token.Position-shaped Pos field, by a type switch over those
// error types.
func extractLineCol(err error) (line, col int, ok bool) {
	switch e := err.(type) {
	case *LexerError:
		return e.Pos.Line, e.Pos.Column, true
	case *ParseError:
		return e.Pos.Line, e.Pos.Column, true
	case *DecodeError:
		return e.Pos.Line, e.Pos.Column, true
	case *QuantityError:
		return e.Pos.Line, e.Pos.Column, true
	default:
		return 0, 0, false
	}
}

// ErrorJSON is the wire shape produced by JSONFormatter.
type ErrorJSON struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// JSONFormatter renders errors as JSON objects, one per error.
type JSONFormatter struct{}

func (JSONFormatter) Format(err error) string {
	b, _ := json.Marshal(toErrorJSON(err))
	return string(b)
}

func (f JSONFormatter) FormatAll(errs []error) string {
	all := make([]ErrorJSON, 0, len(errs))
	for _, e := range errs {
		all = append(all, toErrorJSON(e))
	}
	b, _ := json.Marshal(all)
	return string(b)
}

func toErrorJSON(err error) ErrorJSON {
	line, col, _ := extractLineCol(err)
	return ErrorJSON{
		Type:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Line:    line,
		Column:  col,
	}
}
