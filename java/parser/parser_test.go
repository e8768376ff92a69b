package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sexpr renders a tree compactly: leaves print their token, inner nodes
// print as (Kind children...).
func sexpr(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	if len(n.Children) == 0 {
		if n.Token != nil {
			return n.Token.Literal
		}
		return "(" + n.Kind.String() + ")"
	}
	var b strings.Builder
	b.WriteString("(" + n.Kind.String())
	for _, child := range n.Children {
		b.WriteString(" " + sexpr(child))
	}
	b.WriteString(")")
	return b.String()
}

func parseExpr(t *testing.T, input string, opts ...Option) *Result {
	t.Helper()
	return ParseExpression(t.Context(), NewSourceString("Test.java", input), opts...)
}

func parseStmt(t *testing.T, input string, opts ...Option) *Result {
	t.Helper()
	return ParseStatement(t.Context(), NewSourceString("Test.java", input), opts...)
}

func parseUnit(t *testing.T, input string, opts ...Option) *Result {
	t.Helper()
	return Parse(t.Context(), NewSourceString("Test.java", input), opts...)
}

func TestParseExpression(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"precedence", "a + b * c", "(BinaryExpr a + (BinaryExpr b * c))"},
		{"left associative", "a - b - c", "(BinaryExpr (BinaryExpr a - b) - c)"},
		{"assignment right associative", "a = b = c", "(AssignExpr a = (AssignExpr b = c))"},
		{"compound assignment", "a += 1", "(AssignExpr a += 1)"},
		{"shift assignment", "a >>= 2", "(AssignExpr a >>= 2)"},
		{"unsigned shift assignment", "a >>>= 2", "(AssignExpr a >>>= 2)"},
		{"left shift assignment", "a <<= 2", "(AssignExpr a <<= 2)"},
		{"unsigned shift", "a >>> 2", "(BinaryExpr a >>> 2)"},
		{"left shift", "a << 2", "(BinaryExpr a << 2)"},
		{"shift binds tighter than relational", "a >> 2 > 1", "(BinaryExpr (BinaryExpr a >> 2) > 1)"},
		{"less or equal", "a <= b", "(BinaryExpr a <= b)"},
		{"greater or equal", "a >= b", "(BinaryExpr a >= b)"},
		{"logical", "i < n && j > m", "(BinaryExpr (BinaryExpr i < n) && (BinaryExpr j > m))"},
		{"conditional", "a ? b : c ? d : e", "(TernaryExpr a b (TernaryExpr c d e))"},
		{"instanceof", "x instanceof Foo", "(InstanceofExpr x (Type Foo))"},
		{"instanceof generic", "x instanceof List<?>", "(InstanceofExpr x (Type List (TypeArguments (Wildcard))))"},
		{"unary", "-~x", "(UnaryExpr - (UnaryExpr ~ x))"},
		{"postfix", "a[i]++", "(PostfixExpr (ArrayAccess a i) ++)"},
		{"paren", "(x)", "(ParenExpr x)"},
		{"primitive cast", "(int) x", "(CastExpr int x)"},
		{"primitive cast of negation", "(int) -1", "(CastExpr int (UnaryExpr - 1))"},
		{"reference cast", "(String) x", "(CastExpr (Type String) x)"},
		{"generic cast", "(List<String>) o", "(CastExpr (Type List (TypeArguments (Type String))) o)"},
		{"paren minus is subtraction", "(a) - b", "(BinaryExpr (ParenExpr a) - b)"},
		{"paren plus is addition", "(a) + b", "(BinaryExpr (ParenExpr a) + b)"},
		{"array cast", "(int[]) o", "(CastExpr (ArrayType int) o)"},
		{
			"intersection cast of lambda",
			"(Runnable & Serializable) () -> {}",
			"(CastExpr (IntersectionType (Type Runnable) (Type Serializable)) (LambdaExpr (LambdaParameters) (Block)))",
		},
		{"lambda single", "x -> x + 1", "(LambdaExpr (LambdaParameters x) (BinaryExpr x + 1))"},
		{"lambda inferred", "(a, b) -> a", "(LambdaExpr (LambdaParameters a b) a)"},
		{"lambda empty", "() -> 1", "(LambdaExpr (LambdaParameters) 1)"},
		{
			"lambda typed",
			"(int a, String b) -> a",
			"(LambdaExpr (LambdaParameters (Parameter (Modifiers) int a) (Parameter (Modifiers) (Type String) b)) a)",
		},
		{"lambda assigned", "x = y -> y", "(AssignExpr x = (LambdaExpr (LambdaParameters y) y))"},
		{"lambda in conditional", "c ? x -> 1 : x -> 2", "(TernaryExpr c (LambdaExpr (LambdaParameters x) 1) (LambdaExpr (LambdaParameters x) 2))"},
		{"call", "f()", "(CallExpr f (Arguments))"},
		{
			"comparisons as arguments",
			"f(a < b, c > d)",
			"(CallExpr f (Arguments (BinaryExpr a < b) (BinaryExpr c > d)))",
		},
		{"method call", "a.b(c)", "(CallExpr a b (Arguments c))"},
		{"field access", "a.b.c", "(FieldAccess (FieldAccess a b) c)"},
		{"explicit type arguments", "this.<T>m()", "(CallExpr this (TypeArguments (Type T)) m (Arguments))"},
		{"qualified this", "Outer.this.x", "(FieldAccess (This Outer) x)"},
		{"super call", "super.foo()", "(CallExpr super foo (Arguments))"},
		{"generic method ref", "List<String>::size", "(MethodRef (Type List (TypeArguments (Type String))) size)"},
		{"method ref", "System.out::println", "(MethodRef (FieldAccess System out) println)"},
		{"constructor ref", "ArrayList::new", "(MethodRef ArrayList new)"},
		{"array constructor ref", "String[]::new", "(MethodRef (ArrayType String) new)"},
		{"primitive array constructor ref", "int[]::new", "(MethodRef (ArrayType int) new)"},
		{"class literal", "Foo.class", "(ClassLiteral Foo)"},
		{"array class literal", "int[].class", "(ClassLiteral (ArrayType int))"},
		{"void class literal", "void.class", "(ClassLiteral void)"},
		{"new", "new Foo(1)", "(NewExpr (Type Foo) (Arguments 1))"},
		{"new diamond", "new Foo<>()", "(NewExpr (Type Foo (TypeArguments)) (Arguments))"},
		{"new anonymous", "new Object() { }", "(NewExpr (Type Object) (Arguments) (ClassBody))"},
		{"new inner", "outer.new Inner()", "(NewExpr outer (Type Inner) (Arguments))"},
		{"new array", "new int[3][]", "(NewArrayExpr int 3 (Dims))"},
		{"new array init", "new int[] {1, 2}", "(NewArrayExpr int (Dims) (ArrayInit 1 2))"},
		{"literals", `"s" + 'c' + 1L + 2.0f + true + null`, `(BinaryExpr (BinaryExpr (BinaryExpr (BinaryExpr (BinaryExpr "s" + 'c') + 1L) + 2.0f) + true) + null)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parseExpr(t, tt.input)
			require.Empty(t, res.Diagnostics)
			require.NoError(t, res.Err)
			assert.Equal(t, tt.want, sexpr(res.Unit))
		})
	}
}

func TestParseStatement(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"generic declaration",
			"a < b, c > d;",
			"(LocalVarDecl (Modifiers) (Type a (TypeArguments (Type b) (Type c))) (VariableDeclarator d))",
		},
		{
			"comparisons in call",
			"f(a < b, c > d);",
			"(ExprStmt (CallExpr f (Arguments (BinaryExpr a < b) (BinaryExpr c > d))))",
		},
		{
			"nested generics",
			"List<List<String>> x = y;",
			"(LocalVarDecl (Modifiers) (Type List (TypeArguments (Type List (TypeArguments (Type String))))) (VariableDeclarator x y))",
		},
		{
			"qualified generic",
			"Map.Entry<K, V> e = null;",
			"(LocalVarDecl (Modifiers) (Type Map Entry (TypeArguments (Type K) (Type V))) (VariableDeclarator e null))",
		},
		{
			"wildcards",
			"List<? extends Number> xs;",
			"(LocalVarDecl (Modifiers) (Type List (TypeArguments (Wildcard extends (Type Number)))) (VariableDeclarator xs))",
		},
		{"shift assignment", "x >>= 1;", "(ExprStmt (AssignExpr x >>= 1))"},
		{
			"array declaration",
			"int[] a = {1, 2}, b;",
			"(LocalVarDecl (Modifiers) (ArrayType int) (VariableDeclarator a (ArrayInit 1 2)) (VariableDeclarator b))",
		},
		{"final var", "final var x = 1;", "(LocalVarDecl (Modifiers final) (Type var) (VariableDeclarator x 1))"},
		{
			"annotated local",
			"@SuppressWarnings(\"x\") int y;",
			"(LocalVarDecl (Modifiers (Annotation (QualifiedName SuppressWarnings) \"x\")) int (VariableDeclarator y))",
		},
		{
			"for",
			"for (int i = 0; i < n; i++) {}",
			"(ForStmt (ForInit (LocalVarDecl (Modifiers) int (VariableDeclarator i 0))) (BinaryExpr i < n) (ForUpdate (PostfixExpr i ++)) (Block))",
		},
		{"for expressions", "for (i = 0, j = 1; ; i++, j--) ;", "(ForStmt (ForInit (AssignExpr i = 0) (AssignExpr j = 1)) (ForUpdate (PostfixExpr i ++) (PostfixExpr j --)) (EmptyStmt))"},
		{"for ever", "for (;;) ;", "(ForStmt (ForInit) (ForUpdate) (EmptyStmt))"},
		{"enhanced for", "for (String s : list) {}", "(EnhancedForStmt (Parameter (Modifiers) (Type String) s) list (Block))"},
		{"if else", "if (a) b(); else c();", "(IfStmt a (ExprStmt (CallExpr b (Arguments))) (ExprStmt (CallExpr c (Arguments))))"},
		{"while", "while (x) x--;", "(WhileStmt x (ExprStmt (PostfixExpr x --)))"},
		{"do while", "do x++; while (x < 10);", "(DoStmt (ExprStmt (PostfixExpr x ++)) (BinaryExpr x < 10))"},
		{
			"switch",
			"switch (x) { case 1: case 2: a(); break; default: b(); }",
			"(SwitchStmt x (SwitchGroup (SwitchLabel 1) (SwitchLabel 2) (ExprStmt (CallExpr a (Arguments))) (BreakStmt)) (SwitchGroup default (ExprStmt (CallExpr b (Arguments)))))",
		},
		{
			"try",
			"try (InputStream in = open()) { } catch (IOException | RuntimeException e) { } finally { }",
			"(TryStmt (Resources (Resource (Modifiers) (Type InputStream) in (CallExpr open (Arguments)))) (Block) (CatchClause (Parameter (Modifiers) (UnionType (Type IOException) (Type RuntimeException)) e) (Block)) (FinallyClause (Block)))",
		},
		{"try resource reference", "try (in) { }", "(TryStmt (Resources (Resource in)) (Block))"},
		{"labeled", "outer: while (true) { continue outer; }", "(LabeledStmt outer (WhileStmt true (Block (ContinueStmt outer))))"},
		{"synchronized", "synchronized (lock) { }", "(SynchronizedStmt lock (Block))"},
		{"assert", "assert x : \"msg\";", "(AssertStmt x \"msg\")"},
		{"return", "return;", "(ReturnStmt)"},
		{"return value", "return a.b;", "(ReturnStmt (FieldAccess a b))"},
		{"throw", "throw new E();", "(ThrowStmt (NewExpr (Type E) (Arguments)))"},
		{"break", "break;", "(BreakStmt)"},
		{"empty", ";", "(EmptyStmt)"},
		{"explicit constructor call", "this(1);", "(ExprStmt (CallExpr this (Arguments 1)))"},
		{"local class", "class Local { }", "(LocalClassDecl (ClassDecl (Modifiers) Local (ClassBody)))"},
		{"final local class", "final class Local { }", "(LocalClassDecl (ClassDecl (Modifiers final) Local (ClassBody)))"},
		{"cast statement", "String s = (String) o;", "(LocalVarDecl (Modifiers) (Type String) (VariableDeclarator s (CastExpr (Type String) o)))"},
		{"block", "{ int x; x = 1; }", "(Block (LocalVarDecl (Modifiers) int (VariableDeclarator x)) (ExprStmt (AssignExpr x = 1)))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parseStmt(t, tt.input)
			require.Empty(t, res.Diagnostics)
			require.NoError(t, res.Err)
			assert.Equal(t, tt.want, sexpr(res.Unit))
		})
	}
}

func TestParseDeclarations(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"interface",
			"interface I<T> extends A, B { void m(); default int n() { return 1; } }",
			"(InterfaceDecl (Modifiers) I (TypeParameters (TypeParameter T)) (ExtendsClause (Type A) (Type B)) (ClassBody (MethodDecl (Modifiers) void m (Parameters)) (MethodDecl (Modifiers default) int n (Parameters) (Block (ReturnStmt 1)))))",
		},
		{
			"enum",
			"enum E implements I { A, B(1) { }, C; int x; }",
			"(EnumDecl (Modifiers) E (ImplementsClause (Type I)) (ClassBody (EnumConstant A) (EnumConstant B (Arguments 1) (ClassBody)) (EnumConstant C) (FieldDecl (Modifiers) int (VariableDeclarator x))))",
		},
		{
			"enum trailing comma",
			"enum E { A, B, }",
			"(EnumDecl (Modifiers) E (ClassBody (EnumConstant A) (EnumConstant B)))",
		},
		{
			"annotation type",
			"@interface Ann { int value() default 0; String[] names() default {}; }",
			"(AnnotationDecl (Modifiers) Ann (ClassBody (MethodDecl (Modifiers) int value (Parameters) (DefaultValue 0)) (MethodDecl (Modifiers) (ArrayType (Type String)) names (Parameters) (DefaultValue (ElementValueArray)))))",
		},
		{
			"constructor",
			"class C { C(int x) throws E { super(x); } }",
			"(ClassDecl (Modifiers) C (ClassBody (MethodDecl (Modifiers) C (Parameters (Parameter (Modifiers) int x)) (ThrowsList (Type E)) (Block (ExprStmt (CallExpr super (Arguments x)))))))",
		},
		{
			"initializers",
			"class C { static { x = 1; } { y(); } }",
			"(ClassDecl (Modifiers) C (ClassBody (Initializer static (Block (ExprStmt (AssignExpr x = 1)))) (Initializer (Block (ExprStmt (CallExpr y (Arguments)))))))",
		},
		{
			"generic method",
			"class C { <T extends Comparable<T> & Serializable> T max(T... xs) { return null; } }",
			"(ClassDecl (Modifiers) C (ClassBody (MethodDecl (Modifiers) (TypeParameters (TypeParameter T (ExtendsClause (Type Comparable (TypeArguments (Type T))) (Type Serializable)))) (Type T) max (Parameters (Parameter (Modifiers) (Type T) ... xs)) (Block (ReturnStmt null)))))",
		},
		{
			"annotated class",
			"@Deprecated public final class C extends B<String> {}",
			"(ClassDecl (Modifiers (Annotation (QualifiedName Deprecated)) public final) C (ExtendsClause (Type B (TypeArguments (Type String)))) (ClassBody))",
		},
		{
			"annotation elements",
			"@SuppressWarnings(value = {\"a\", \"b\"}) class C {}",
			"(ClassDecl (Modifiers (Annotation (QualifiedName SuppressWarnings) (AnnotationElement value (ElementValueArray \"a\" \"b\")))) C (ClassBody))",
		},
		{
			"declarator dims",
			"class C { int[] a, b[]; }",
			"(ClassDecl (Modifiers) C (ClassBody (FieldDecl (Modifiers) (ArrayType int) (VariableDeclarator a) (VariableDeclarator b (Dims)))))",
		},
		{
			"nested types",
			"class Outer { static class Inner {} interface J {} }",
			"(ClassDecl (Modifiers) Outer (ClassBody (ClassDecl (Modifiers static) Inner (ClassBody)) (InterfaceDecl (Modifiers) J (ClassBody))))",
		},
		{
			"abstract method",
			"abstract class C { abstract void m() throws A, B; }",
			"(ClassDecl (Modifiers abstract) C (ClassBody (MethodDecl (Modifiers abstract) void m (Parameters) (ThrowsList (Type A) (Type B)))))",
		},
		{
			"parameter modifiers",
			"class C { void m(final @A int x, String... rest) {} }",
			"(ClassDecl (Modifiers) C (ClassBody (MethodDecl (Modifiers) void m (Parameters (Parameter (Modifiers final (Annotation (QualifiedName A))) int x) (Parameter (Modifiers) (Type String) ... rest)) (Block))))",
		},
		{
			"stray semicolons",
			"class A {}; ; class B { ; }",
			"(ClassDecl (Modifiers) A (ClassBody))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parseUnit(t, tt.input)
			require.Empty(t, res.Diagnostics)
			require.NoError(t, res.Err)
			require.NotEmpty(t, res.Unit.Children)
			assert.Equal(t, tt.want, sexpr(res.Unit.Children[0]))
		})
	}
}

func TestParseImports(t *testing.T) {
	res := parseUnit(t, "package a.b;\nimport java.util.List;\nimport static java.util.Collections.*;\nimport java.io.*;\n")
	require.Empty(t, res.Diagnostics)

	want := []string{
		"(PackageDecl (QualifiedName a b))",
		"(ImportDecl (QualifiedName java util List))",
		"(ImportDecl static (QualifiedName java util Collections) *)",
		"(ImportDecl (QualifiedName java io) *)",
	}
	require.Len(t, res.Unit.Children, len(want))
	for i, w := range want {
		assert.Equal(t, w, sexpr(res.Unit.Children[i]))
	}
}

func TestParseEndToEnd(t *testing.T) {
	input := "package p; import q.R; public class C<T> extends Object implements java.io.Serializable { private T t; public T get() { return t; } }"
	res := parseUnit(t, input)
	require.Empty(t, res.Diagnostics)
	require.NoError(t, res.Err)

	unit := res.Unit
	assert.Equal(t, KindCompilationUnit, unit.Kind)
	assert.Len(t, unit.ChildrenOfKind(KindPackageDecl), 1)
	assert.Len(t, unit.ChildrenOfKind(KindImportDecl), 1)
	classes := unit.ChildrenOfKind(KindClassDecl)
	require.Len(t, classes, 1)

	class := classes[0]
	assert.Equal(t, "C", class.Name())
	params := class.FirstChildOfKind(KindTypeParameters)
	require.NotNil(t, params)
	assert.Len(t, params.Children, 1)
	assert.Len(t, class.FirstChildOfKind(KindExtendsClause).Children, 1)
	assert.Len(t, class.FirstChildOfKind(KindImplementsClause).Children, 1)

	body := class.FirstChildOfKind(KindClassBody)
	require.NotNil(t, body)
	assert.Len(t, body.ChildrenOfKind(KindFieldDecl), 1)
	methods := body.ChildrenOfKind(KindMethodDecl)
	require.Len(t, methods, 1)
	assert.Equal(t, "get", methods[0].Name())
	block := methods[0].FirstChildOfKind(KindBlock)
	require.NotNil(t, block)
	require.Len(t, block.Children, 1)
	assert.Equal(t, KindReturnStmt, block.Children[0].Kind)

	want := `CompilationUnit
  PackageDecl
    QualifiedName
      Identifier p
  ImportDecl
    QualifiedName
      Identifier q
      Identifier R
  ClassDecl
    Modifiers
      Modifier public
    Identifier C
    TypeParameters
      TypeParameter
        Identifier T
    ExtendsClause
      Type
        Identifier Object
    ImplementsClause
      Type
        Identifier java
        Identifier io
        Identifier Serializable
    ClassBody
      FieldDecl
        Modifiers
          Modifier private
        Type
          Identifier T
        VariableDeclarator
          Identifier t
      MethodDecl
        Modifiers
          Modifier public
        Type
          Identifier T
        Identifier get
        Parameters
        Block
          ReturnStmt
            Identifier t
`
	if got := unit.String(); got != want {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(want),
			B:        difflib.SplitLines(got),
			FromFile: "want",
			ToFile:   "got",
			Context:  2,
		})
		t.Errorf("tree mismatch:\n%s", diff)
	}
}

// TestAmbiguousPrefix parses the same tokens in statement and argument
// position.
func TestAmbiguousPrefix(t *testing.T) {
	decl := parseStmt(t, "a < b, c > d;")
	require.Empty(t, decl.Diagnostics)
	assert.Equal(t, KindLocalVarDecl, decl.Unit.Kind)

	call := parseExpr(t, "f(a < b, c > d)")
	require.Empty(t, call.Diagnostics)
	args := call.Unit.FirstChildOfKind(KindArguments)
	require.NotNil(t, args)
	require.Len(t, args.Children, 2)
	for _, arg := range args.Children {
		assert.Equal(t, KindBinaryExpr, arg.Kind)
	}
}

func TestAmbiguousPrefixDiagnostic(t *testing.T) {
	res := parseExpr(t, "a < b, c > d")
	assert.Nil(t, res.Unit)
	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, 5, d.Pos.Offset)
	assert.Equal(t, "expected end of file, found ','", d.Message)
}

func TestCastOrParen(t *testing.T) {
	cast := parseExpr(t, "(Foo) bar")
	require.Empty(t, cast.Diagnostics)
	assert.Equal(t, "(CastExpr (Type Foo) bar)", sexpr(cast.Unit))

	// (a + b) is not a type, so what follows it cannot be an operand.
	paren := parseExpr(t, "(a + b) c")
	assert.Nil(t, paren.Unit)
	require.Len(t, paren.Diagnostics, 1)
	d := paren.Diagnostics[0]
	assert.Equal(t, 8, d.Pos.Offset)
	assert.Equal(t, []string{"end of file"}, d.Expected)
	assert.Equal(t, `expected end of file, found Identifier "c"`, d.Message)
}

func TestRecoveryInBlock(t *testing.T) {
	input := "class C {\n  void m() {\n    int x = ;\n    y();\n  }\n}\n"
	res := parseUnit(t, input)
	require.NoError(t, res.Err)
	require.Len(t, res.Diagnostics, 1)

	d := res.Diagnostics[0]
	assert.Equal(t, strings.Index(input, ";"), d.Pos.Offset)
	assert.Equal(t, 3, d.Pos.Line)
	assert.Equal(t, 13, d.Pos.Column)
	assert.Equal(t, "expected expression, found ';'", d.Message)

	block := res.Unit.Children[0].
		FirstChildOfKind(KindClassBody).
		FirstChildOfKind(KindMethodDecl).
		FirstChildOfKind(KindBlock)
	require.NotNil(t, block)
	require.Len(t, block.Children, 2)

	bad := block.Children[0]
	assert.True(t, bad.IsError())
	assert.Equal(t, "int x = ;", NewSourceString("", input).Slice(bad.Span))
	require.NotNil(t, bad.Error)
	assert.Equal(t, d.Message, bad.Error.Message)
	assert.Equal(t, "(ExprStmt (CallExpr y (Arguments)))", sexpr(block.Children[1]))
	assert.Len(t, res.Unit.Errors(), 1)
}

func TestRecovery(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		messages []string
		want     []string
	}{
		{
			name:     "member",
			input:    "class C { int x = ; void m() {} }",
			messages: []string{"expected expression, found ';'"},
			want:     []string{"(ClassDecl (Modifiers) C (ClassBody (Error) (MethodDecl (Modifiers) void m (Parameters) (Block))))"},
		},
		{
			name:     "type declaration",
			input:    "class A {} garbage here; class B {}",
			messages: []string{`expected '@interface', 'class', 'enum' or 'interface', found Identifier "garbage"`},
			want: []string{
				"(ClassDecl (Modifiers) A (ClassBody))",
				"(Error)",
				"(ClassDecl (Modifiers) B (ClassBody))",
			},
		},
		{
			name:     "stray closing brace",
			input:    "} class A {}",
			messages: []string{`expected '@interface', 'class', 'enum' or 'interface', found '}'`},
			want: []string{
				"(Error)",
				"(ClassDecl (Modifiers) A (ClassBody))",
			},
		},
		{
			name:     "skips balanced braces",
			input:    "class C { int x = y z { a; b; } void m() {} }",
			messages: []string{`expected ';', found Identifier "z"`},
			want:     []string{"(ClassDecl (Modifiers) C (ClassBody (Error) (MethodDecl (Modifiers) void m (Parameters) (Block))))"},
		},
		{
			name:     "unexpected end of file",
			input:    "class C { void m() {",
			messages: []string{"expected '}', found end of file", "expected '}', found end of file"},
			want:     []string{"(ClassDecl (Modifiers) C (ClassBody (MethodDecl (Modifiers) void m (Parameters) (Block (Error))) (Error)))"},
		},
		{
			name:     "lexical error reported once",
			input:    "class C { int x = 1 # 2; }",
			messages: []string{`unrecognized input "#"`},
			want:     []string{"(ClassDecl (Modifiers) C (ClassBody (Error)))"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parseUnit(t, tt.input)
			require.NoError(t, res.Err)
			var messages []string
			for _, d := range res.Diagnostics {
				messages = append(messages, d.Message)
			}
			assert.Equal(t, tt.messages, messages)

			var got []string
			for _, child := range res.Unit.Children {
				got = append(got, sexpr(child))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocComments(t *testing.T) {
	input := `/** Unit doc */
package p;

/** Class doc */
public class C {
    /** Field doc */
    int x;

    // not a doc comment
    void m() {}

    /** Method doc */
    @Override
    public String toString() { return ""; }

    /** Constants */
    enum E {
        /** First */
        A,
        B
    }
    /** dangling */
}
`
	res := parseUnit(t, input)
	require.Empty(t, res.Diagnostics)

	pkg := res.Unit.FirstChildOfKind(KindPackageDecl)
	require.NotNil(t, pkg)
	assert.Equal(t, "/** Unit doc */", pkg.DocText())

	class := res.Unit.FirstChildOfKind(KindClassDecl)
	require.NotNil(t, class)
	assert.Equal(t, "/** Class doc */", class.DocText())

	body := class.FirstChildOfKind(KindClassBody)
	require.Len(t, body.Children, 4)
	assert.Equal(t, "/** Field doc */", body.Children[0].DocText())
	assert.Equal(t, "", body.Children[1].DocText())
	assert.Equal(t, "/** Method doc */", body.Children[2].DocText())
	assert.Equal(t, "/** Constants */", body.Children[3].DocText())

	constants := body.Children[3].FirstChildOfKind(KindClassBody).ChildrenOfKind(KindEnumConstant)
	require.Len(t, constants, 2)
	assert.Equal(t, "/** First */", constants[0].DocText())
	assert.Nil(t, constants[1].Doc)
}

func TestComments(t *testing.T) {
	input := "// a\nclass A { /* b */ }"
	res := parseUnit(t, input, WithComments())
	require.Len(t, res.Comments, 2)
	assert.Equal(t, "// a", res.Comments[0].Literal)

	res = parseUnit(t, input)
	assert.Empty(t, res.Comments)
}

// TestSpanFidelity checks that every node spans exactly the tokens it was
// built from: re-lexing the node's text yields the tokens of the unit that
// lie inside the node.
func TestSpanFidelity(t *testing.T) {
	input := `package com.example;

import java.util.*;

/** A sample. */
public final class Sample<T extends Comparable<T>> implements Runnable {
    private static final int[] TABLE = {1, 2, 3};
    private final Map<String, List<T>> index = new HashMap<>();

    public Sample(int size) { super(); this.size = size >>> 1; }

    @Override
    public void run() {
        for (int i = 0; i < TABLE.length; i++) {
            if (i % 2 == 0) continue;
            index.computeIfAbsent("k" + i, k -> new ArrayList<>()).add(null);
        }
        Runnable r = () -> { System.out.println((String) "x"); };
        try (Reader in = open()) {
            in.read();
        } catch (IOException | RuntimeException e) {
            throw new IllegalStateException(e);
        }
        switch (size) {
            case 1: break;
            default: size <<= 2;
        }
        Function<String, Integer> f = String::length;
        int[][] grid = new int[3][4];
        label: while (size > 0) { size--; }
    }
}
`
	src := NewSourceString("Sample.java", input)
	res := Parse(t.Context(), src)
	require.Empty(t, res.Diagnostics)

	var unitTokens []Token
	for _, tok := range Tokenize(src) {
		if !tok.Kind.IsTrivia() && tok.Kind != TokenEOF {
			unitTokens = append(unitTokens, tok)
		}
	}

	res.Unit.Walk(func(n *Node) bool {
		for _, child := range n.Children {
			assert.True(t, n.Span.Contains(child.Span), "%s does not contain %s", n.Kind, child.Kind)
		}
		if n.Kind == KindCompilationUnit || n.Span.Len() == 0 {
			return true
		}

		var inside []Token
		for _, tok := range unitTokens {
			if n.Span.Contains(tok.Span) {
				inside = append(inside, tok)
			}
		}
		require.NotEmpty(t, inside, "%s at %s", n.Kind, n.Span.Start)
		assert.Equal(t, inside[0].Span.Start, n.Span.Start, "%s start", n.Kind)
		assert.Equal(t, inside[len(inside)-1].Span.End, n.Span.End, "%s end", n.Kind)

		relexed := significant(src.Slice(n.Span))
		require.Len(t, relexed, len(inside), "%s: %q", n.Kind, src.Slice(n.Span))
		for i := range relexed {
			assert.Equal(t, inside[i].Kind, relexed[i].Kind)
			assert.Equal(t, inside[i].Literal, relexed[i].Literal)
		}

		if n.Token != nil {
			assert.True(t, n.Span.Contains(n.Token.Span), "%s token outside node", n.Kind)
			assert.Equal(t, n.Token.Literal, src.Slice(n.Token.Span))
		}
		return true
	})
}

func TestMemoDoesNotChangeResult(t *testing.T) {
	inputs := []string{
		"class A { void m() { a < b, c > d; f(a < b, c > d); x = (int) y + (T) z - (q) - 1; } }",
		"class B { Object o = (Runnable & Serializable) () -> {}; List<List<String>> l = List.<String>of(); }",
		"class C { void m() { for (Map.Entry<K, V> e : map.entrySet()) { int[] a = {1}; } } }",
		"class D { int x = ; void m() { y(; } }",
	}

	for _, input := range inputs {
		with := parseUnit(t, input)
		without := parseUnit(t, input, WithoutMemo())
		assert.Equal(t, with.Unit.StringWithPositions(), without.Unit.StringWithPositions(), "input %q", input)
		assert.Equal(t, with.Diagnostics, without.Diagnostics, "input %q", input)
		assert.Zero(t, without.Stats.MemoEntries)
	}
}

func TestParseLimits(t *testing.T) {
	t.Run("depth", func(t *testing.T) {
		input := strings.Repeat("(", 200) + "1" + strings.Repeat(")", 200)
		res := parseExpr(t, input, WithMaxDepth(50))
		require.Error(t, res.Err)
		assert.True(t, errors.Is(res.Err, ErrTooDeep))
		assert.Nil(t, res.Unit)
		require.Len(t, res.Diagnostics, 1)
		assert.True(t, strings.HasPrefix(res.Diagnostics[0].Message, "parse abandoned: "))

		res = parseExpr(t, input)
		assert.NoError(t, res.Err)
	})

	t.Run("size", func(t *testing.T) {
		res := Parse(t.Context(), NewSourceString("Big.java", "class Big {}"), WithMaxSize(5))
		assert.ErrorIs(t, res.Err, ErrTooLarge)
		assert.Nil(t, res.Unit)
		require.Len(t, res.Diagnostics, 1)
		assert.Contains(t, res.Err.Error(), "Big.java")
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		input := "class C { void m() {" + strings.Repeat(" x = 1;", 300) + " } }"
		res := Parse(ctx, NewSourceString("C.java", input))
		assert.ErrorIs(t, res.Err, context.Canceled)
		assert.True(t, res.HasErrors())
		require.NotNil(t, res.Unit)
		assert.Len(t, res.Unit.ChildrenOfKind(KindClassDecl), 1)
	})
}

func TestAbandonedUnitKeepsPartialTree(t *testing.T) {
	deep := strings.Repeat("(", 100) + "1" + strings.Repeat(")", 100)
	input := "class A { void ok() { a(); } }\n" +
		"class B { int f; void ok() {} void bad() { int x = " + deep + "; } }\n" +
		"class C {}"

	res := parseUnit(t, input, WithMaxDepth(60))
	require.ErrorIs(t, res.Err, ErrTooDeep)
	require.NotNil(t, res.Unit)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "parse abandoned: nesting too deep: more than 60 levels", res.Diagnostics[0].Message)

	classes := res.Unit.ChildrenOfKind(KindClassDecl)
	require.Len(t, classes, 2)
	assert.Equal(t, "A", classes[0].Name())
	assert.Equal(t, "B", classes[1].Name())

	body := classes[1].FirstChildOfKind(KindClassBody)
	require.NotNil(t, body)
	require.Len(t, body.Children, 3)
	assert.Equal(t, KindFieldDecl, body.Children[0].Kind)
	assert.Equal(t, "f", body.Children[0].FirstChildOfKind(KindVariableDeclarator).Name())
	assert.Equal(t, "ok", body.Children[1].Name())
	assert.Equal(t, "bad", body.Children[2].Name())

	block := body.Children[2].FirstChildOfKind(KindBlock)
	require.NotNil(t, block)
	errs := res.Unit.Errors()
	require.Len(t, errs, 1)
	assert.Same(t, block.Children[len(block.Children)-1], errs[0])
	assert.Equal(t, res.Diagnostics[0].Message, errs[0].Error.Message)
}

func TestParseBytes(t *testing.T) {
	res := ParseBytes(t.Context(), []byte("class A { int x = ; }"), WithFile("A.java"))
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "A.java", res.Diagnostics[0].Pos.File)
	assert.Equal(t, "A.java:1:19: expected expression, found ';'", res.Diagnostics[0].String())
}
