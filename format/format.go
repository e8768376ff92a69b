// Package format encodes parsed syntax trees for people and tools.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/docfront/java/parser"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(node *parser.Node) error
}

// Names lists the formats accepted by NewEncoder.
var Names = []string{"json", "tree", "decls"}

// NewEncoder returns the encoder called name writing to w. positions
// selects spans in the tree format.
func NewEncoder(name string, w io.Writer, positions bool) (Encoder, error) {
	switch name {
	case "json":
		return NewASTJSONEncoder(w), nil
	case "tree":
		return NewTreeEncoder(w, positions), nil
	case "decls":
		return NewLineEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format %q", name)
}

func write(w io.Writer, m encoding.TextMarshaler) error {
	text, err := m.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}
