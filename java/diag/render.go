package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dhamidi/docfront/java/parser"
)

// TabWidth is the tab stop used when lining up the caret under an excerpt.
const TabWidth = 4

// Renderer writes diagnostics as "file:line:col: message", followed by the
// offending source line and a caret under the problem when the source is
// known.
type Renderer struct {
	// Sources resolves a file name to its text. A nil func, or a nil
	// result, renders the message line alone.
	Sources func(file string) *parser.Source
}

func (r *Renderer) Render(w io.Writer, d parser.Diagnostic) error {
	if _, err := fmt.Fprintf(w, "%s: %s\n", d.Pos, d.Message); err != nil {
		return err
	}
	var src *parser.Source
	if r.Sources != nil {
		src = r.Sources(d.Pos.File)
	}
	if src == nil || d.Pos.Line < 1 || d.Pos.Line > src.LineCount() {
		return nil
	}

	line := src.Line(d.Pos.Line)
	text, marker := excerpt(line, d.Pos.Column, underlineLength(line, d))
	_, err := fmt.Fprintf(w, "    %s\n    %s\n", text, marker)
	return err
}

func (r *Renderer) RenderAll(w io.Writer, diags []parser.Diagnostic) error {
	for _, d := range diags {
		if err := r.Render(w, d); err != nil {
			return err
		}
	}
	return nil
}

// underlineLength is the number of bytes of line covered by d, at least one.
func underlineLength(line string, d parser.Diagnostic) int {
	start := d.Pos.Column - 1
	n := 1
	if d.End.Line == d.Pos.Line && d.End.Offset > d.Pos.Offset {
		n = d.End.Offset - d.Pos.Offset
	}
	if start+n > len(line) {
		n = len(line) - start
	}
	if n < 1 {
		n = 1
	}
	return n
}

// excerpt expands tabs in line and builds the marker line that puts a caret
// under the byte at column (1-based), followed by tildes up to length bytes.
// Widths are measured in terminal cells.
func excerpt(line string, column, length int) (string, string) {
	start := column - 1
	if start < 0 {
		start = 0
	}
	if start > len(line) {
		start = len(line)
	}
	end := start + length
	if end > len(line) {
		end = len(line)
	}

	var text strings.Builder
	before := expandTabs(&text, 0, line[:start])
	under := expandTabs(&text, before, line[start:end]) - before
	expandTabs(&text, before+under, line[end:])

	if under < 1 {
		under = 1
	}
	marker := strings.Repeat(" ", before) + "^" + strings.Repeat("~", under-1)
	return text.String(), marker
}

// expandTabs writes s to b, replacing tabs with spaces up to the next tab
// stop, and returns the display column reached when starting at column.
func expandTabs(b *strings.Builder, column int, s string) int {
	for s != "" {
		chunk := s
		tab := strings.IndexByte(s, '\t')
		if tab >= 0 {
			chunk, s = s[:tab], s[tab+1:]
		} else {
			s = ""
		}
		b.WriteString(chunk)
		column += uniseg.StringWidth(chunk)
		if tab >= 0 {
			pad := TabWidth - column%TabWidth
			b.WriteString(strings.Repeat(" ", pad))
			column += pad
		}
	}
	return column
}
