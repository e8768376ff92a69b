package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeKindString(t *testing.T) {
	tests := []struct {
		kind NodeKind
		want string
	}{
		{KindError, "Error"},
		{KindCompilationUnit, "CompilationUnit"},
		{KindClassDecl, "ClassDecl"},
		{KindLocalVarDecl, "LocalVarDecl"},
		{KindMethodRef, "MethodRef"},
		{KindOperator, "Operator"},
		{NodeKind(-1), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestNodeKindCategory(t *testing.T) {
	tests := []struct {
		kind NodeKind
		want Category
	}{
		{KindCompilationUnit, CategoryDecl},
		{KindMethodDecl, CategoryDecl},
		{KindVariableDeclarator, CategoryDecl},
		{KindModifiers, CategoryOther},
		{KindType, CategoryType},
		{KindUnionType, CategoryType},
		{KindBlock, CategoryStmt},
		{KindLabeledStmt, CategoryStmt},
		{KindAssignExpr, CategoryExpr},
		{KindClassLiteral, CategoryExpr},
		{KindOperator, CategoryOther},
		{KindError, CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Category())
		})
	}
	assert.Equal(t, "expr", CategoryExpr.String())
	assert.True(t, KindEnumDecl.IsTypeDecl())
	assert.False(t, KindMethodDecl.IsTypeDecl())
}

func TestNodeHelpers(t *testing.T) {
	id := &Node{Kind: KindIdentifier, Token: &Token{Kind: TokenIdent, Literal: "Foo"}}
	body := &Node{Kind: KindClassBody}
	decl := &Node{Kind: KindClassDecl}
	decl.AddChild(&Node{Kind: KindModifiers})
	decl.AddChild(nil)
	decl.AddChild(id)
	decl.AddChild(body)

	require.Len(t, decl.Children, 3)
	assert.Equal(t, "Foo", decl.Name())
	assert.Same(t, body, decl.FirstChildOfKind(KindClassBody))
	assert.Nil(t, decl.FirstChildOfKind(KindBlock))
	assert.Len(t, decl.ChildrenOfKind(KindIdentifier), 1)
	assert.Equal(t, "", decl.TokenLiteral())
	assert.Equal(t, "", decl.DocText())
}

func TestNodeWalk(t *testing.T) {
	res := Parse(t.Context(), NewSourceString("W.java", "class W { void m() { } int x; }"))
	require.Empty(t, res.Diagnostics)

	var visited []NodeKind
	res.Unit.Walk(func(n *Node) bool {
		visited = append(visited, n.Kind)
		return n.Kind != KindMethodDecl
	})
	assert.Equal(t, []NodeKind{
		KindCompilationUnit,
		KindClassDecl,
		KindModifiers,
		KindIdentifier,
		KindClassBody,
		KindMethodDecl,
		KindFieldDecl,
		KindModifiers,
		KindPrimitiveType,
		KindVariableDeclarator,
		KindIdentifier,
	}, visited)
}

func TestNodeString(t *testing.T) {
	res := ParseExpression(t.Context(), NewSourceString("", "a + 1"))
	require.NotNil(t, res.Unit)

	want := "BinaryExpr\n" +
		"  Identifier a\n" +
		"  Operator +\n" +
		"  Literal 1\n"
	assert.Equal(t, want, res.Unit.String())

	want = "BinaryExpr [1:1-1:6]\n" +
		"  Identifier [1:1-1:2] a\n" +
		"  Operator [1:3-1:4] +\n" +
		"  Literal [1:5-1:6] 1\n"
	assert.Equal(t, want, res.Unit.StringWithPositions())
}
