package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/docfront/java/parser"
)

// LineEncoder lists the declarations of a compilation unit, one per line:
//
//	kind<TAB>qualified name<TAB>line:column<TAB>modifiers<TAB>summary
//
// The summary is the first sentence of the declaration's documentation
// comment. Members of anonymous classes and local classes are not listed.
type LineEncoder struct {
	w    io.Writer
	node *parser.Node
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(node *parser.Node) error {
	e.node = node
	return write(e.w, e)
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	if e.node == nil {
		return nil, nil
	}

	prefix := ""
	if pkg := e.node.FirstChildOfKind(parser.KindPackageDecl); pkg != nil {
		prefix = qualifiedName(pkg.FirstChildOfKind(parser.KindQualifiedName))
		e.line(&sb, "package", prefix, pkg)
	}
	for _, child := range e.node.Children {
		if child.Kind.IsTypeDecl() {
			e.typeDecl(&sb, prefix, child)
		}
	}
	return []byte(sb.String()), nil
}

func (e *LineEncoder) typeDecl(sb *strings.Builder, owner string, n *parser.Node) {
	name := join(owner, n.Name())
	e.line(sb, declKind(n), name, n)
	e.members(sb, name, n)
}

func (e *LineEncoder) members(sb *strings.Builder, owner string, n *parser.Node) {
	for _, c := range n.Children {
		switch c.Kind {
		case parser.KindClassBody:
			e.members(sb, owner, c)
		case parser.KindClassDecl, parser.KindInterfaceDecl, parser.KindEnumDecl, parser.KindAnnotationDecl:
			e.typeDecl(sb, owner, c)
		case parser.KindMethodDecl:
			e.line(sb, declKind(c), join(owner, c.Name()), c)
		case parser.KindEnumConstant:
			e.line(sb, declKind(c), join(owner, c.Name()), c)
		case parser.KindFieldDecl:
			for _, v := range c.ChildrenOfKind(parser.KindVariableDeclarator) {
				e.line(sb, "field", join(owner, v.Name()), c)
			}
		}
	}
}

func (e *LineEncoder) line(sb *strings.Builder, kind, name string, n *parser.Node) {
	fmt.Fprintf(sb, "%s\t%s\t%d:%d\t%s\t%s\n",
		kind,
		name,
		n.Span.Start.Line,
		n.Span.Start.Column,
		modifiersStr(n),
		DocSummary(n.DocText()),
	)
}

func declKind(n *parser.Node) string {
	switch n.Kind {
	case parser.KindClassDecl:
		return "class"
	case parser.KindInterfaceDecl:
		return "interface"
	case parser.KindEnumDecl:
		return "enum"
	case parser.KindAnnotationDecl:
		return "annotation"
	case parser.KindEnumConstant:
		return "constant"
	case parser.KindMethodDecl:
		if isConstructor(n) {
			return "constructor"
		}
		return "method"
	}
	return strings.ToLower(n.Kind.String())
}

// isConstructor reports whether a method declaration has no result type.
func isConstructor(n *parser.Node) bool {
	for _, c := range n.Children {
		switch c.Kind {
		case parser.KindType, parser.KindPrimitiveType, parser.KindVoidType, parser.KindArrayType:
			return false
		case parser.KindIdentifier:
			return true
		}
	}
	return true
}

func modifiersStr(n *parser.Node) string {
	mods := n.FirstChildOfKind(parser.KindModifiers)
	if mods == nil {
		return ""
	}
	var parts []string
	for _, m := range mods.Children {
		switch m.Kind {
		case parser.KindModifier:
			parts = append(parts, m.TokenLiteral())
		case parser.KindAnnotation:
			if name := m.FirstChildOfKind(parser.KindQualifiedName); name != nil {
				parts = append(parts, "@"+qualifiedName(name))
			}
		}
	}
	return strings.Join(parts, " ")
}

func qualifiedName(n *parser.Node) string {
	if n == nil {
		return ""
	}
	var parts []string
	for _, id := range n.ChildrenOfKind(parser.KindIdentifier) {
		parts = append(parts, id.TokenLiteral())
	}
	return strings.Join(parts, ".")
}

func join(owner, name string) string {
	if owner == "" {
		return name
	}
	return owner + "." + name
}

// DocSummary returns the first sentence of a /** */ comment with the
// comment markers and leading asterisks removed.
func DocSummary(doc string) string {
	doc = strings.TrimPrefix(doc, "/**")
	doc = strings.TrimSuffix(doc, "*/")

	var words []string
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "*")
		if strings.HasPrefix(strings.TrimSpace(line), "@") {
			break
		}
		words = append(words, strings.Fields(line)...)
	}
	text := strings.Join(words, " ")
	if i := strings.Index(text, ". "); i >= 0 {
		return text[:i+1]
	}
	return text
}
