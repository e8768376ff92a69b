package format

import (
	"io"

	"github.com/dhamidi/docfront/java/parser"
)

// TreeEncoder writes the indented tree dump of parser.Node.String.
type TreeEncoder struct {
	w         io.Writer
	positions bool
	node      *parser.Node
}

func NewTreeEncoder(w io.Writer, positions bool) *TreeEncoder {
	return &TreeEncoder{w: w, positions: positions}
}

func (e *TreeEncoder) Encode(node *parser.Node) error {
	e.node = node
	return write(e.w, e)
}

func (e *TreeEncoder) MarshalText() ([]byte, error) {
	if e.node == nil {
		return nil, nil
	}
	if e.positions {
		return []byte(e.node.StringWithPositions()), nil
	}
	return []byte(e.node.String()), nil
}
