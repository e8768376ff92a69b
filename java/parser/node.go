package parser

import "strings"

type NodeKind int

const (
	KindError NodeKind = iota

	// Compilation unit level
	KindCompilationUnit
	KindPackageDecl
	KindImportDecl

	// Declarations
	KindClassDecl
	KindInterfaceDecl
	KindEnumDecl
	KindAnnotationDecl
	KindEnumConstant
	KindFieldDecl
	KindMethodDecl
	KindInitializer
	KindVariableDeclarator

	// Declaration parts
	KindModifiers
	KindModifier
	KindAnnotation
	KindAnnotationElement
	KindElementValueArray
	KindTypeParameters
	KindTypeParameter
	KindExtendsClause
	KindImplementsClause
	KindClassBody
	KindParameters
	KindParameter
	KindThrowsList
	KindDefaultValue
	KindDims

	// Types
	KindType
	KindPrimitiveType
	KindVoidType
	KindArrayType
	KindTypeArguments
	KindWildcard
	KindIntersectionType
	KindUnionType

	// Statements
	KindBlock
	KindEmptyStmt
	KindExprStmt
	KindLocalVarDecl
	KindLocalClassDecl
	KindIfStmt
	KindForStmt
	KindForInit
	KindForUpdate
	KindEnhancedForStmt
	KindWhileStmt
	KindDoStmt
	KindSwitchStmt
	KindSwitchGroup
	KindSwitchLabel
	KindReturnStmt
	KindBreakStmt
	KindContinueStmt
	KindThrowStmt
	KindTryStmt
	KindResources
	KindResource
	KindCatchClause
	KindFinallyClause
	KindSynchronizedStmt
	KindAssertStmt
	KindLabeledStmt

	// Expressions
	KindAssignExpr
	KindTernaryExpr
	KindBinaryExpr
	KindUnaryExpr
	KindPostfixExpr
	KindCastExpr
	KindInstanceofExpr
	KindCallExpr
	KindArguments
	KindMethodRef
	KindFieldAccess
	KindArrayAccess
	KindNewExpr
	KindNewArrayExpr
	KindArrayInit
	KindLambdaExpr
	KindLambdaParameters
	KindParenExpr
	KindLiteral
	KindIdentifier
	KindQualifiedName
	KindThis
	KindSuper
	KindClassLiteral
	KindOperator
)

var nodeKindNames = map[NodeKind]string{
	KindError:              "Error",
	KindCompilationUnit:    "CompilationUnit",
	KindPackageDecl:        "PackageDecl",
	KindImportDecl:         "ImportDecl",
	KindClassDecl:          "ClassDecl",
	KindInterfaceDecl:      "InterfaceDecl",
	KindEnumDecl:           "EnumDecl",
	KindAnnotationDecl:     "AnnotationDecl",
	KindEnumConstant:       "EnumConstant",
	KindFieldDecl:          "FieldDecl",
	KindMethodDecl:         "MethodDecl",
	KindInitializer:        "Initializer",
	KindVariableDeclarator: "VariableDeclarator",
	KindModifiers:          "Modifiers",
	KindModifier:           "Modifier",
	KindAnnotation:         "Annotation",
	KindAnnotationElement:  "AnnotationElement",
	KindElementValueArray:  "ElementValueArray",
	KindTypeParameters:     "TypeParameters",
	KindTypeParameter:      "TypeParameter",
	KindExtendsClause:      "ExtendsClause",
	KindImplementsClause:   "ImplementsClause",
	KindClassBody:          "ClassBody",
	KindParameters:         "Parameters",
	KindParameter:          "Parameter",
	KindThrowsList:         "ThrowsList",
	KindDefaultValue:       "DefaultValue",
	KindDims:               "Dims",
	KindType:               "Type",
	KindPrimitiveType:      "PrimitiveType",
	KindVoidType:           "VoidType",
	KindArrayType:          "ArrayType",
	KindTypeArguments:      "TypeArguments",
	KindWildcard:           "Wildcard",
	KindIntersectionType:   "IntersectionType",
	KindUnionType:          "UnionType",
	KindBlock:              "Block",
	KindEmptyStmt:          "EmptyStmt",
	KindExprStmt:           "ExprStmt",
	KindLocalVarDecl:       "LocalVarDecl",
	KindLocalClassDecl:     "LocalClassDecl",
	KindIfStmt:             "IfStmt",
	KindForStmt:            "ForStmt",
	KindForInit:            "ForInit",
	KindForUpdate:          "ForUpdate",
	KindEnhancedForStmt:    "EnhancedForStmt",
	KindWhileStmt:          "WhileStmt",
	KindDoStmt:             "DoStmt",
	KindSwitchStmt:         "SwitchStmt",
	KindSwitchGroup:        "SwitchGroup",
	KindSwitchLabel:        "SwitchLabel",
	KindReturnStmt:         "ReturnStmt",
	KindBreakStmt:          "BreakStmt",
	KindContinueStmt:       "ContinueStmt",
	KindThrowStmt:          "ThrowStmt",
	KindTryStmt:            "TryStmt",
	KindResources:          "Resources",
	KindResource:           "Resource",
	KindCatchClause:        "CatchClause",
	KindFinallyClause:      "FinallyClause",
	KindSynchronizedStmt:   "SynchronizedStmt",
	KindAssertStmt:         "AssertStmt",
	KindLabeledStmt:        "LabeledStmt",
	KindAssignExpr:         "AssignExpr",
	KindTernaryExpr:        "TernaryExpr",
	KindBinaryExpr:         "BinaryExpr",
	KindUnaryExpr:          "UnaryExpr",
	KindPostfixExpr:        "PostfixExpr",
	KindCastExpr:           "CastExpr",
	KindInstanceofExpr:     "InstanceofExpr",
	KindCallExpr:           "CallExpr",
	KindArguments:          "Arguments",
	KindMethodRef:          "MethodRef",
	KindFieldAccess:        "FieldAccess",
	KindArrayAccess:        "ArrayAccess",
	KindNewExpr:            "NewExpr",
	KindNewArrayExpr:       "NewArrayExpr",
	KindArrayInit:          "ArrayInit",
	KindLambdaExpr:         "LambdaExpr",
	KindLambdaParameters:   "LambdaParameters",
	KindParenExpr:          "ParenExpr",
	KindLiteral:            "Literal",
	KindIdentifier:         "Identifier",
	KindQualifiedName:      "QualifiedName",
	KindThis:               "This",
	KindSuper:              "Super",
	KindClassLiteral:       "ClassLiteral",
	KindOperator:           "Operator",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Category is the arm of the tree's tagged union a node kind belongs to.
type Category int

const (
	CategoryOther Category = iota
	CategoryDecl
	CategoryType
	CategoryStmt
	CategoryExpr
)

func (c Category) String() string {
	switch c {
	case CategoryDecl:
		return "decl"
	case CategoryType:
		return "type"
	case CategoryStmt:
		return "stmt"
	case CategoryExpr:
		return "expr"
	}
	return "other"
}

func (k NodeKind) Category() Category {
	switch {
	case k >= KindCompilationUnit && k <= KindVariableDeclarator:
		return CategoryDecl
	case k >= KindType && k <= KindUnionType:
		return CategoryType
	case k >= KindBlock && k <= KindLabeledStmt:
		return CategoryStmt
	case k >= KindAssignExpr && k <= KindClassLiteral:
		return CategoryExpr
	}
	return CategoryOther
}

// IsTypeDecl reports whether k declares a class, interface, enum or
// annotation type.
func (k NodeKind) IsTypeDecl() bool {
	switch k {
	case KindClassDecl, KindInterfaceDecl, KindEnumDecl, KindAnnotationDecl:
		return true
	}
	return false
}

type Error struct {
	Message  string
	Expected []string
	Got      *Token
}

// Node is a syntax tree node. Kind selects the variant; Children holds the
// variant's parts in source order. Leaves carry their Token. Declarations
// carry the documentation comment that precedes them in Doc.
//
// Nodes are built once by the parser and must not be modified afterwards.
type Node struct {
	Kind     NodeKind
	Span     Span
	Children []*Node
	Token    *Token
	Error    *Error
	Doc      *Token
}

func (n *Node) AddChild(child *Node) {
	if child != nil {
		n.Children = append(n.Children, child)
	}
}

func (n *Node) IsError() bool {
	return n.Kind == KindError
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

func (n *Node) TokenLiteral() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// Name returns the literal of the first Identifier child, which is the
// declared name for declarations.
func (n *Node) Name() string {
	if id := n.FirstChildOfKind(KindIdentifier); id != nil {
		return id.TokenLiteral()
	}
	return ""
}

// DocText returns the attached documentation comment, or "".
func (n *Node) DocText() string {
	if n.Doc != nil {
		return n.Doc.Literal
	}
	return ""
}

// Walk calls fn for n and its descendants in depth-first pre-order.
// Returning false from fn skips the children of that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Errors returns every error node in the tree.
func (n *Node) Errors() []*Node {
	var errs []*Node
	n.Walk(func(c *Node) bool {
		if c.IsError() {
			errs = append(errs, c)
		}
		return true
	})
	return errs
}

func (n *Node) String() string {
	var b strings.Builder
	n.writeIndent(&b, 0, false)
	return b.String()
}

func (n *Node) StringWithPositions() string {
	var b strings.Builder
	n.writeIndent(&b, 0, true)
	return b.String()
}

func (n *Node) writeIndent(b *strings.Builder, indent int, showPositions bool) {
	for i := 0; i < indent; i++ {
		b.WriteString("  ")
	}
	b.WriteString(n.Kind.String())
	if showPositions {
		b.WriteString(" [" + n.Span.Start.String() + "-" + n.Span.End.String() + "]")
	}
	if n.Token != nil {
		b.WriteString(" " + n.Token.Literal)
	}
	if n.Error != nil {
		b.WriteString(" ERROR: " + n.Error.Message)
	}
	b.WriteString("\n")

	for _, child := range n.Children {
		child.writeIndent(b, indent+1, showPositions)
	}
}
