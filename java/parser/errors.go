package parser

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrTooDeep  = errors.New("nesting too deep")
	ErrTooLarge = errors.New("input too large")
)

// Diagnostic describes one problem found while parsing a unit. Pos carries
// the file, line and column of the offending token.
type Diagnostic struct {
	Pos      Position
	End      Position
	Expected []string
	Found    string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Message)
}

func expectedMessage(expected []string, found Token) string {
	if len(expected) == 0 {
		return "unexpected " + found.String()
	}
	return fmt.Sprintf("expected %s, found %s", joinAlternatives(expected), found)
}

// joinAlternatives renders {a, b, c} as "a, b or c".
func joinAlternatives(items []string) string {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	switch len(sorted) {
	case 0:
		return ""
	case 1:
		return sorted[0]
	}
	return strings.Join(sorted[:len(sorted)-1], ", ") + " or " + sorted[len(sorted)-1]
}

func describe(kind TokenKind) string {
	switch kind {
	case TokenIdent:
		return "identifier"
	case TokenEOF:
		return "end of file"
	}
	return "'" + kind.String() + "'"
}
