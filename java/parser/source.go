package parser

import (
	"io"
	"sort"
)

// Source is the immutable text of one compilation unit. Tokens and nodes
// refer back into it by byte offset.
type Source struct {
	file  string
	text  string
	lines []int // byte offset of the first byte of each line
}

func NewSource(file string, data []byte) *Source {
	return newSource(file, string(data))
}

func NewSourceString(file, text string) *Source {
	return newSource(file, text)
}

func ReadSource(file string, r io.Reader) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewSource(file, data), nil
}

func newSource(file, text string) *Source {
	s := &Source{file: file, text: text, lines: []int{0}}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			s.lines = append(s.lines, i+1)
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				continue
			}
			s.lines = append(s.lines, i+1)
		}
	}
	return s
}

func (s *Source) File() string { return s.file }

func (s *Source) Text() string { return s.text }

func (s *Source) Len() int { return len(s.text) }

// Slice returns the text covered by span, clamped to the buffer.
func (s *Source) Slice(span Span) string {
	start, end := span.Start.Offset, span.End.Offset
	if start < 0 {
		start = 0
	}
	if end > len(s.text) {
		end = len(s.text)
	}
	if start >= end {
		return ""
	}
	return s.text[start:end]
}

// Position converts a byte offset into a full Position.
func (s *Source) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.text) {
		offset = len(s.text)
	}
	line := sort.Search(len(s.lines), func(i int) bool { return s.lines[i] > offset }) - 1
	return Position{
		File:   s.file,
		Offset: offset,
		Line:   line + 1,
		Column: offset - s.lines[line] + 1,
	}
}

// Line returns the text of the 1-based line without its terminator.
func (s *Source) Line(n int) string {
	if n < 1 || n > len(s.lines) {
		return ""
	}
	start := s.lines[n-1]
	end := len(s.text)
	if n < len(s.lines) {
		end = s.lines[n]
	}
	for end > start && (s.text[end-1] == '\n' || s.text[end-1] == '\r') {
		end--
	}
	return s.text[start:end]
}

func (s *Source) LineCount() int { return len(s.lines) }
