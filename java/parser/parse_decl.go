package parser

func (p *Parser) parseCompilationUnit() *Node {
	node := &Node{
		Kind: KindCompilationUnit,
		Span: Span{Start: p.src.Position(0)},
	}

	if p.isPackageDecl() {
		node.AddChild(p.recoverable(p.parsePackageDecl))
	}

	for p.check(TokenImport) && p.fatal == nil {
		node.AddChild(p.recoverable(p.parseImportDecl))
	}

	for !p.check(TokenEOF) && p.fatal == nil {
		// Stray semicolons between type declarations are allowed.
		if p.accept(TokenSemicolon) {
			continue
		}
		node.AddChild(p.recoverable(p.parseTypeDecl))
	}

	node.Span.End = p.src.Position(p.src.Len())
	return node
}

func (p *Parser) isPackageDecl() bool {
	if p.check(TokenPackage) {
		return true
	}
	if !p.check(TokenAt) {
		return false
	}
	return p.speculate(func() *Node {
		if p.parseTypeAnnotations() == nil || !p.check(TokenPackage) {
			return nil
		}
		return &Node{}
	})
}

func (p *Parser) parsePackageDecl() *Node {
	start := p.ts.Pos()
	node := p.startNode(KindPackageDecl)
	annotations := p.parseTypeAnnotations()
	if annotations == nil {
		return nil
	}
	node.Children = annotations
	if p.expect(TokenPackage) == nil {
		return nil
	}
	name := p.parseQualifiedName()
	if name == nil {
		return nil
	}
	node.AddChild(name)
	if p.expect(TokenSemicolon) == nil {
		return nil
	}
	return p.withDoc(p.finishNode(node), start)
}

// parseImportDecl parses single-type, on-demand and static imports. A
// static import carries a Modifier child; an on-demand import ends with an
// Operator child holding the '*'.
func (p *Parser) parseImportDecl() *Node {
	node := p.startNode(KindImportDecl)
	if p.expect(TokenImport) == nil {
		return nil
	}
	if p.check(TokenStatic) {
		node.AddChild(leaf(KindModifier, p.advance()))
	}
	name := p.parseQualifiedName()
	if name == nil {
		return nil
	}
	node.AddChild(name)
	if p.accept(TokenDot) {
		star := p.expect(TokenStar)
		if star == nil {
			return nil
		}
		node.AddChild(leaf(KindOperator, *star))
	}
	if p.expect(TokenSemicolon) == nil {
		return nil
	}
	return p.finishNode(node)
}

func (p *Parser) parseTypeDecl() *Node {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	start := p.ts.Pos()
	modifiers := p.parseModifiers()
	if modifiers == nil {
		return nil
	}
	decl := p.parseTypeDeclRest(modifiers)
	return p.withDoc(decl, start)
}

// parseTypeDeclRest dispatches on the keyword that follows the modifiers
// of a type declaration.
func (p *Parser) parseTypeDeclRest(modifiers *Node) *Node {
	switch {
	case p.check(TokenClass):
		return p.parseClassDecl(modifiers)
	case p.check(TokenInterface):
		return p.parseInterfaceDecl(modifiers)
	case p.check(TokenEnum):
		return p.parseEnumDecl(modifiers)
	case p.check(TokenAt) && p.peekN(1).Kind == TokenInterface:
		return p.parseAnnotationDecl(modifiers)
	}
	p.fail("'class'")
	p.fail("'interface'")
	p.fail("'enum'")
	p.fail("'@interface'")
	return nil
}

func (p *Parser) isTypeDeclStart() bool {
	return p.match(TokenClass, TokenInterface, TokenEnum) ||
		(p.check(TokenAt) && p.peekN(1).Kind == TokenInterface)
}

func (p *Parser) parseClassDecl(modifiers *Node) *Node {
	node := wrap(KindClassDecl, modifiers)
	p.advance()

	id := p.ident()
	if id == nil {
		return nil
	}
	node.AddChild(id)

	if p.check(TokenLT) {
		params := p.parseTypeParameters()
		if params == nil {
			return nil
		}
		node.AddChild(params)
	}

	if p.check(TokenExtends) {
		ext := p.startNode(KindExtendsClause)
		p.advance()
		base := p.parseType()
		if base == nil {
			return nil
		}
		ext.AddChild(base)
		node.AddChild(p.finishNode(ext))
	}

	if p.check(TokenImplements) {
		impl := p.parseTypeList(KindImplementsClause)
		if impl == nil {
			return nil
		}
		node.AddChild(impl)
	}

	body := p.parseClassBody()
	if body == nil {
		return nil
	}
	node.AddChild(body)
	return p.finishNode(node)
}

func (p *Parser) parseInterfaceDecl(modifiers *Node) *Node {
	node := wrap(KindInterfaceDecl, modifiers)
	p.advance()

	id := p.ident()
	if id == nil {
		return nil
	}
	node.AddChild(id)

	if p.check(TokenLT) {
		params := p.parseTypeParameters()
		if params == nil {
			return nil
		}
		node.AddChild(params)
	}

	if p.check(TokenExtends) {
		ext := p.parseTypeList(KindExtendsClause)
		if ext == nil {
			return nil
		}
		node.AddChild(ext)
	}

	body := p.parseClassBody()
	if body == nil {
		return nil
	}
	node.AddChild(body)
	return p.finishNode(node)
}

func (p *Parser) parseEnumDecl(modifiers *Node) *Node {
	node := wrap(KindEnumDecl, modifiers)
	p.advance()

	id := p.ident()
	if id == nil {
		return nil
	}
	node.AddChild(id)

	if p.check(TokenImplements) {
		impl := p.parseTypeList(KindImplementsClause)
		if impl == nil {
			return nil
		}
		node.AddChild(impl)
	}

	body := p.parseEnumBody()
	if body == nil {
		return nil
	}
	node.AddChild(body)
	return p.finishNode(node)
}

func (p *Parser) parseAnnotationDecl(modifiers *Node) *Node {
	node := wrap(KindAnnotationDecl, modifiers)
	p.advance()
	p.advance()

	id := p.ident()
	if id == nil {
		return nil
	}
	node.AddChild(id)

	body := p.parseClassBody()
	if body == nil {
		return nil
	}
	node.AddChild(body)
	return p.finishNode(node)
}

func (p *Parser) parseClassBody() *Node {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	node := p.startNode(KindClassBody)
	if p.expect(TokenLBrace) == nil {
		return nil
	}
	if !p.parseMembers(node) {
		return p.partial(node)
	}
	if !p.closing(node, TokenRBrace) {
		return nil
	}
	return p.finishNode(node)
}

// parseMembers adds member declarations to body until the closing brace.
// It reports false when a member failed or the unit was abandoned.
func (p *Parser) parseMembers(body *Node) bool {
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		if p.accept(TokenSemicolon) {
			continue
		}
		member := p.recoverable(p.parseMember)
		if member == nil {
			return false
		}
		body.AddChild(member)
	}
	return p.fatal == nil
}

// parseEnumBody parses the constants of an enum followed by an optional
// ';' and ordinary members. Everything lands in one ClassBody.
func (p *Parser) parseEnumBody() *Node {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	node := p.startNode(KindClassBody)
	if p.expect(TokenLBrace) == nil {
		return nil
	}
	for !p.match(TokenSemicolon, TokenRBrace, TokenEOF) {
		constant := p.recoverable(p.parseEnumConstant)
		if constant == nil {
			return p.partial(node)
		}
		node.AddChild(constant)
		if !p.accept(TokenComma) {
			break
		}
	}
	if p.accept(TokenSemicolon) {
		if !p.parseMembers(node) {
			return p.partial(node)
		}
	}
	if p.fatal != nil {
		return p.partial(node)
	}
	if !p.closing(node, TokenRBrace) {
		return nil
	}
	return p.finishNode(node)
}

func (p *Parser) parseEnumConstant() *Node {
	start := p.ts.Pos()
	node := p.startNode(KindEnumConstant)
	annotations := p.parseTypeAnnotations()
	if annotations == nil {
		return nil
	}
	node.Children = annotations

	id := p.ident()
	if id == nil {
		return nil
	}
	node.AddChild(id)

	if p.check(TokenLParen) {
		args := p.parseArguments()
		if args == nil {
			return nil
		}
		node.AddChild(args)
	}
	if p.check(TokenLBrace) {
		body := p.parseClassBody()
		if body == nil {
			return nil
		}
		node.AddChild(body)
	}
	return p.withDoc(p.finishNode(node), start)
}

func (p *Parser) parseMember() *Node {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	start := p.ts.Pos()
	if p.check(TokenLBrace) || (p.check(TokenStatic) && p.peekN(1).Kind == TokenLBrace) {
		return p.withDoc(p.parseInitializer(), start)
	}

	modifiers := p.parseModifiers()
	if modifiers == nil {
		return nil
	}
	var decl *Node
	if p.isTypeDeclStart() {
		decl = p.parseTypeDeclRest(modifiers)
	} else {
		decl = p.parseMethodOrField(modifiers)
	}
	return p.withDoc(decl, start)
}

func (p *Parser) parseInitializer() *Node {
	node := p.startNode(KindInitializer)
	if p.check(TokenStatic) {
		node.AddChild(leaf(KindModifier, p.advance()))
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	node.AddChild(body)
	return p.finishNode(node)
}

// parseMethodOrField parses what follows the modifiers of a method,
// constructor or field. A constructor is a MethodDecl without a result
// type.
func (p *Parser) parseMethodOrField(modifiers *Node) *Node {
	var typeParams *Node
	if p.check(TokenLT) {
		typeParams = p.parseTypeParameters()
		if typeParams == nil {
			return nil
		}
	}

	if p.check(TokenIdent) && p.peekN(1).Kind == TokenLParen {
		return p.parseMethodRest(modifiers, typeParams, nil)
	}

	result := p.parseResultType()
	if result == nil {
		return nil
	}
	if typeParams == nil && result.Kind != KindVoidType &&
		p.check(TokenIdent) && p.peekN(1).Kind != TokenLParen {
		return p.parseFieldRest(modifiers, result)
	}
	return p.parseMethodRest(modifiers, typeParams, result)
}

func (p *Parser) parseMethodRest(modifiers, typeParams, result *Node) *Node {
	node := wrap(KindMethodDecl, modifiers)
	node.AddChild(typeParams)
	node.AddChild(result)

	id := p.ident()
	if id == nil {
		return nil
	}
	node.AddChild(id)

	params := p.parseParameters()
	if params == nil {
		return nil
	}
	node.AddChild(params)
	node.AddChild(p.parseDimsNode())

	if p.check(TokenThrows) {
		throws := p.parseTypeList(KindThrowsList)
		if throws == nil {
			return nil
		}
		node.AddChild(throws)
	}

	if p.check(TokenDefault) {
		def := p.startNode(KindDefaultValue)
		p.advance()
		value := p.parseElementValue()
		if value == nil {
			return nil
		}
		def.AddChild(value)
		node.AddChild(p.finishNode(def))
	}

	switch {
	case p.check(TokenLBrace):
		body := p.parseBlock()
		if body == nil {
			return nil
		}
		node.AddChild(body)
	case p.accept(TokenSemicolon):
	default:
		p.fail("'{'")
		p.fail("';'")
		return nil
	}
	return p.finishNode(node)
}

func (p *Parser) parseFieldRest(modifiers, typ *Node) *Node {
	node := wrap(KindFieldDecl, modifiers)
	node.AddChild(typ)
	if !p.parseDeclarators(node) {
		return nil
	}
	if p.expect(TokenSemicolon) == nil {
		return nil
	}
	return p.finishNode(node)
}

func (p *Parser) parseDeclarators(node *Node) bool {
	for {
		decl := p.parseVariableDeclarator()
		if decl == nil {
			return false
		}
		node.AddChild(decl)
		if !p.accept(TokenComma) {
			return true
		}
	}
}

// parseVariableDeclarator parses name, name[] and name = init.
func (p *Parser) parseVariableDeclarator() *Node {
	node := p.startNode(KindVariableDeclarator)
	id := p.ident()
	if id == nil {
		return nil
	}
	node.AddChild(id)
	node.AddChild(p.parseDimsNode())
	if p.accept(TokenAssign) {
		init := p.parseVariableInitializer()
		if init == nil {
			return nil
		}
		node.AddChild(init)
	}
	return p.finishNode(node)
}

func (p *Parser) parseVariableInitializer() *Node {
	if p.check(TokenLBrace) {
		return p.parseArrayInit()
	}
	return p.parseExpression()
}

func (p *Parser) parseArrayInit() *Node {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	node := p.startNode(KindArrayInit)
	if p.expect(TokenLBrace) == nil {
		return nil
	}
	for !p.check(TokenRBrace) {
		value := p.parseVariableInitializer()
		if value == nil {
			return nil
		}
		node.AddChild(value)
		if !p.accept(TokenComma) {
			break
		}
	}
	if p.expect(TokenRBrace) == nil {
		return nil
	}
	return p.finishNode(node)
}

// parseParameters parses a formal parameter list. Only the last parameter
// may be variadic.
func (p *Parser) parseParameters() *Node {
	node := p.startNode(KindParameters)
	if p.expect(TokenLParen) == nil {
		return nil
	}
	if !p.check(TokenRParen) {
		for {
			param := p.parseParameter()
			if param == nil {
				return nil
			}
			node.AddChild(param)
			if isVariadic(param) {
				break
			}
			if !p.accept(TokenComma) {
				break
			}
		}
	}
	if p.expect(TokenRParen) == nil {
		return nil
	}
	return p.finishNode(node)
}

func (p *Parser) parseParameter() *Node {
	node := p.startNode(KindParameter)
	modifiers := p.parseVariableModifiers()
	if modifiers == nil {
		return nil
	}
	node.AddChild(modifiers)

	typ := p.parseType()
	if typ == nil {
		return nil
	}
	node.AddChild(typ)
	if p.check(TokenEllipsis) {
		node.AddChild(leaf(KindOperator, p.advance()))
	}

	id := p.ident()
	if id == nil {
		return nil
	}
	node.AddChild(id)
	node.AddChild(p.parseDimsNode())
	return p.finishNode(node)
}

func isVariadic(param *Node) bool {
	for _, child := range param.Children {
		if child.Kind == KindOperator && child.Token.Kind == TokenEllipsis {
			return true
		}
	}
	return false
}

func isModifier(kind TokenKind) bool {
	switch kind {
	case TokenPublic, TokenProtected, TokenPrivate,
		TokenAbstract, TokenStatic, TokenFinal, TokenStrictfp,
		TokenNative, TokenSynchronized, TokenTransient, TokenVolatile,
		TokenDefault:
		return true
	}
	return false
}

// parseModifiers parses modifier keywords and annotations in any order.
// The result may be empty but is only nil on failure.
func (p *Parser) parseModifiers() *Node {
	node := p.startNode(KindModifiers)
	for {
		switch {
		case isModifier(p.peek().Kind):
			node.AddChild(leaf(KindModifier, p.advance()))
		case p.check(TokenAt) && p.peekN(1).Kind != TokenInterface:
			a := p.parseAnnotation()
			if a == nil {
				return nil
			}
			node.AddChild(a)
		default:
			return p.finishNode(node)
		}
	}
}

// parseVariableModifiers parses the modifiers allowed on parameters and
// local variables: final and annotations.
func (p *Parser) parseVariableModifiers() *Node {
	node := p.startNode(KindModifiers)
	for {
		switch {
		case p.check(TokenFinal):
			node.AddChild(leaf(KindModifier, p.advance()))
		case p.check(TokenAt) && p.peekN(1).Kind != TokenInterface:
			a := p.parseAnnotation()
			if a == nil {
				return nil
			}
			node.AddChild(a)
		default:
			return p.finishNode(node)
		}
	}
}

func (p *Parser) parseAnnotation() *Node {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	node := p.startNode(KindAnnotation)
	if p.expect(TokenAt) == nil {
		return nil
	}
	name := p.parseQualifiedName()
	if name == nil {
		return nil
	}
	node.AddChild(name)

	if !p.accept(TokenLParen) {
		return p.finishNode(node)
	}
	if !p.check(TokenRParen) {
		if p.check(TokenIdent) && p.peekN(1).Kind == TokenAssign {
			for {
				elem := p.parseAnnotationElement()
				if elem == nil {
					return nil
				}
				node.AddChild(elem)
				if !p.accept(TokenComma) {
					break
				}
			}
		} else {
			value := p.parseElementValue()
			if value == nil {
				return nil
			}
			node.AddChild(value)
		}
	}
	if p.expect(TokenRParen) == nil {
		return nil
	}
	return p.finishNode(node)
}

func (p *Parser) parseAnnotationElement() *Node {
	node := p.startNode(KindAnnotationElement)
	id := p.ident()
	if id == nil {
		return nil
	}
	node.AddChild(id)
	if p.expect(TokenAssign) == nil {
		return nil
	}
	value := p.parseElementValue()
	if value == nil {
		return nil
	}
	node.AddChild(value)
	return p.finishNode(node)
}

func (p *Parser) parseElementValue() *Node {
	switch {
	case p.check(TokenAt):
		return p.parseAnnotation()
	case p.check(TokenLBrace):
		return p.parseElementValueArray()
	}
	return p.parseConditional()
}

func (p *Parser) parseElementValueArray() *Node {
	node := p.startNode(KindElementValueArray)
	if p.expect(TokenLBrace) == nil {
		return nil
	}
	for !p.check(TokenRBrace) {
		value := p.parseElementValue()
		if value == nil {
			return nil
		}
		node.AddChild(value)
		if !p.accept(TokenComma) {
			break
		}
	}
	if p.expect(TokenRBrace) == nil {
		return nil
	}
	return p.finishNode(node)
}
