package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/docfront/java/parser"
)

type ASTJSONEncoder struct {
	w    io.Writer
	node *parser.Node
}

func NewASTJSONEncoder(w io.Writer) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w}
}

func (e *ASTJSONEncoder) Encode(node *parser.Node) error {
	e.node = node
	if err := write(e.w, e); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, "\n")
	return err
}

func (e *ASTJSONEncoder) MarshalText() ([]byte, error) {
	if e.node == nil {
		return []byte("null"), nil
	}
	return json.MarshalIndent(nodeToJSON(e.node), "", "  ")
}

type astJSONNode struct {
	Kind     string         `json:"kind"`
	Category string         `json:"category"`
	Span     astJSONSpan    `json:"span"`
	Token    string         `json:"token,omitempty"`
	Doc      string         `json:"doc,omitempty"`
	Error    *astJSONError  `json:"error,omitempty"`
	Children []*astJSONNode `json:"children,omitempty"`
}

type astJSONSpan struct {
	Start astJSONPosition `json:"start"`
	End   astJSONPosition `json:"end"`
}

type astJSONPosition struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

type astJSONError struct {
	Message  string   `json:"message"`
	Expected []string `json:"expected,omitempty"`
	Got      string   `json:"got,omitempty"`
}

func jsonPosition(p parser.Position) astJSONPosition {
	return astJSONPosition{Offset: p.Offset, Line: p.Line, Column: p.Column}
}

func nodeToJSON(n *parser.Node) *astJSONNode {
	jn := &astJSONNode{
		Kind:     n.Kind.String(),
		Category: n.Kind.Category().String(),
		Span: astJSONSpan{
			Start: jsonPosition(n.Span.Start),
			End:   jsonPosition(n.Span.End),
		},
		Token: n.TokenLiteral(),
		Doc:   n.DocText(),
	}

	if n.Error != nil {
		jn.Error = &astJSONError{
			Message:  n.Error.Message,
			Expected: n.Error.Expected,
		}
		if n.Error.Got != nil {
			jn.Error.Got = n.Error.Got.Literal
		}
	}

	if len(n.Children) > 0 {
		jn.Children = make([]*astJSONNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = nodeToJSON(child)
		}
	}

	return jn
}
