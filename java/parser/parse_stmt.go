package parser

func (p *Parser) parseBlock() *Node {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	node := p.startNode(KindBlock)
	if p.expect(TokenLBrace) == nil {
		return nil
	}
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		stmt := p.recoverable(p.parseBlockStatement)
		if stmt == nil {
			return p.partial(node)
		}
		node.AddChild(stmt)
	}
	if p.fatal != nil {
		return p.partial(node)
	}
	if !p.closing(node, TokenRBrace) {
		return nil
	}
	return p.finishNode(node)
}

// parseBlockStatement parses a local class, a local variable declaration
// or a statement, in that order of preference.
func (p *Parser) parseBlockStatement() *Node {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	switch p.peek().Kind {
	case TokenClass, TokenInterface, TokenEnum:
		return p.parseLocalClassDecl()
	case TokenAbstract, TokenFinal, TokenStatic, TokenStrictfp, TokenAt:
		if p.isLocalClassDecl() {
			return p.parseLocalClassDecl()
		}
	}
	if p.startsLocalVar() && p.speculate(p.localVarHead) {
		return p.parseLocalVarDecl()
	}
	return p.parseStatement()
}

func (p *Parser) isLocalClassDecl() bool {
	return p.speculate(func() *Node {
		modifiers := p.parseModifiers()
		if modifiers == nil || !p.match(TokenClass, TokenInterface, TokenEnum) {
			return nil
		}
		return modifiers
	})
}

func (p *Parser) parseLocalClassDecl() *Node {
	start := p.ts.Pos()
	modifiers := p.parseModifiers()
	if modifiers == nil {
		return nil
	}
	decl := p.withDoc(p.parseTypeDeclRest(modifiers), start)
	if decl == nil {
		return nil
	}
	node := wrap(KindLocalClassDecl, decl)
	return p.finishNode(node)
}

// startsLocalVar reports whether the current token can begin a local
// variable declaration.
func (p *Parser) startsLocalVar() bool {
	kind := p.peek().Kind
	return kind == TokenIdent || kind == TokenFinal || kind == TokenAt || kind.IsPrimitiveType()
}

func (p *Parser) localVarHead() *Node {
	return p.memoized(ruleLocalVarHead, p.localVarHeadUncached)
}

// localVarHeadUncached matches the modifiers and type of a local variable
// declaration, provided an identifier follows. The identifier is not
// consumed.
func (p *Parser) localVarHeadUncached() *Node {
	node := p.startNode(KindLocalVarDecl)
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
	if !p.check(TokenIdent) {
		p.fail(describe(TokenIdent))
		return nil
	}
	return p.finishNode(node)
}

// headNode starts a node of the given kind holding a copy of the children
// of a memoized head, which must not be modified.
func headNode(kind NodeKind, head *Node) *Node {
	return &Node{
		Kind:     kind,
		Span:     Span{Start: head.Span.Start},
		Children: append([]*Node(nil), head.Children...),
	}
}

func (p *Parser) parseLocalVarDecl() *Node {
	node := p.parseLocalVarNoSemi()
	if node == nil {
		return nil
	}
	if p.expect(TokenSemicolon) == nil {
		return nil
	}
	return p.finishNode(node)
}

func (p *Parser) parseLocalVarNoSemi() *Node {
	head := p.localVarHead()
	if head == nil {
		return nil
	}
	node := headNode(KindLocalVarDecl, head)
	if !p.parseDeclarators(node) {
		return nil
	}
	return p.finishNode(node)
}

func (p *Parser) parseStatement() *Node {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	switch p.peek().Kind {
	case TokenLBrace:
		return p.parseBlock()
	case TokenSemicolon:
		node := p.startNode(KindEmptyStmt)
		p.advance()
		return p.finishNode(node)
	case TokenIf:
		return p.parseIfStmt()
	case TokenFor:
		return p.parseForStmt()
	case TokenWhile:
		return p.parseWhileStmt()
	case TokenDo:
		return p.parseDoStmt()
	case TokenSwitch:
		return p.parseSwitchStmt()
	case TokenReturn:
		return p.parseReturnStmt()
	case TokenBreak:
		return p.parseJumpStmt(KindBreakStmt)
	case TokenContinue:
		return p.parseJumpStmt(KindContinueStmt)
	case TokenThrow:
		return p.parseThrowStmt()
	case TokenTry:
		return p.parseTryStmt()
	case TokenSynchronized:
		return p.parseSynchronizedStmt()
	case TokenAssert:
		return p.parseAssertStmt()
	case TokenIdent:
		if p.peekN(1).Kind == TokenColon {
			return p.parseLabeledStmt()
		}
	}
	return p.parseExprStmt()
}

func (p *Parser) parseExprStmt() *Node {
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	node := wrap(KindExprStmt, expr)
	if p.expect(TokenSemicolon) == nil {
		return nil
	}
	return p.finishNode(node)
}

// parseCondition parses a parenthesised expression as used by if, while,
// switch and synchronized. No ParenExpr node is built.
func (p *Parser) parseCondition() *Node {
	if p.expect(TokenLParen) == nil {
		return nil
	}
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	if p.expect(TokenRParen) == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseIfStmt() *Node {
	node := p.startNode(KindIfStmt)
	p.advance()
	cond := p.parseCondition()
	if cond == nil {
		return nil
	}
	node.AddChild(cond)
	then := p.parseStatement()
	if then == nil {
		return nil
	}
	node.AddChild(then)
	if p.accept(TokenElse) {
		els := p.parseStatement()
		if els == nil {
			return nil
		}
		node.AddChild(els)
	}
	return p.finishNode(node)
}

// parseForStmt parses both for forms. The enhanced form is recognised by
// the ':' after the loop variable.
func (p *Parser) parseForStmt() *Node {
	node := p.startNode(KindForStmt)
	p.advance()
	if p.expect(TokenLParen) == nil {
		return nil
	}
	if p.isEnhancedFor() {
		node.Kind = KindEnhancedForStmt
		return p.parseEnhancedForRest(node)
	}

	init := p.startNode(KindForInit)
	if !p.check(TokenSemicolon) {
		if p.startsLocalVar() && p.speculate(p.localVarHead) {
			decl := p.parseLocalVarNoSemi()
			if decl == nil {
				return nil
			}
			init.AddChild(decl)
		} else if !p.parseExpressionList(init) {
			return nil
		}
	}
	node.AddChild(p.finishNode(init))
	if p.expect(TokenSemicolon) == nil {
		return nil
	}

	if !p.check(TokenSemicolon) {
		cond := p.parseExpression()
		if cond == nil {
			return nil
		}
		node.AddChild(cond)
	}
	if p.expect(TokenSemicolon) == nil {
		return nil
	}

	update := p.startNode(KindForUpdate)
	if !p.check(TokenRParen) && !p.parseExpressionList(update) {
		return nil
	}
	node.AddChild(p.finishNode(update))
	if p.expect(TokenRParen) == nil {
		return nil
	}

	body := p.parseStatement()
	if body == nil {
		return nil
	}
	node.AddChild(body)
	return p.finishNode(node)
}

func (p *Parser) parseExpressionList(node *Node) bool {
	for {
		expr := p.parseExpression()
		if expr == nil {
			return false
		}
		node.AddChild(expr)
		if !p.accept(TokenComma) {
			return true
		}
	}
}

func (p *Parser) isEnhancedFor() bool {
	if !p.startsLocalVar() {
		return false
	}
	return p.speculate(func() *Node {
		head := p.localVarHead()
		if head == nil {
			return nil
		}
		p.advance()
		p.parseDimsNode()
		if !p.check(TokenColon) {
			return nil
		}
		return head
	})
}

func (p *Parser) parseEnhancedForRest(node *Node) *Node {
	head := p.localVarHead()
	if head == nil {
		return nil
	}
	param := headNode(KindParameter, head)
	id := p.ident()
	if id == nil {
		return nil
	}
	param.AddChild(id)
	param.AddChild(p.parseDimsNode())
	node.AddChild(p.finishNode(param))

	if p.expect(TokenColon) == nil {
		return nil
	}
	iterable := p.parseExpression()
	if iterable == nil {
		return nil
	}
	node.AddChild(iterable)
	if p.expect(TokenRParen) == nil {
		return nil
	}
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	node.AddChild(body)
	return p.finishNode(node)
}

func (p *Parser) parseWhileStmt() *Node {
	node := p.startNode(KindWhileStmt)
	p.advance()
	cond := p.parseCondition()
	if cond == nil {
		return nil
	}
	node.AddChild(cond)
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	node.AddChild(body)
	return p.finishNode(node)
}

func (p *Parser) parseDoStmt() *Node {
	node := p.startNode(KindDoStmt)
	p.advance()
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	node.AddChild(body)
	if p.expect(TokenWhile) == nil {
		return nil
	}
	cond := p.parseCondition()
	if cond == nil {
		return nil
	}
	node.AddChild(cond)
	if p.expect(TokenSemicolon) == nil {
		return nil
	}
	return p.finishNode(node)
}

// parseSwitchStmt parses a switch with case groups. Statements of a group
// run on into the next group; no implicit break is modelled.
func (p *Parser) parseSwitchStmt() *Node {
	node := p.startNode(KindSwitchStmt)
	p.advance()
	selector := p.parseCondition()
	if selector == nil {
		return nil
	}
	node.AddChild(selector)
	if p.expect(TokenLBrace) == nil {
		return nil
	}
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		group := p.parseSwitchGroup()
		if group == nil {
			return p.partial(node)
		}
		node.AddChild(group)
		if p.fatal != nil {
			return p.partial(node)
		}
	}
	if !p.closing(node, TokenRBrace) {
		return nil
	}
	return p.finishNode(node)
}

func (p *Parser) parseSwitchGroup() *Node {
	node := p.startNode(KindSwitchGroup)
	if !p.match(TokenCase, TokenDefault) {
		p.fail("'case'")
		p.fail("'default'")
		return nil
	}
	for p.match(TokenCase, TokenDefault) {
		label := p.parseSwitchLabel()
		if label == nil {
			return nil
		}
		node.AddChild(label)
	}
	for !p.match(TokenCase, TokenDefault, TokenRBrace, TokenEOF) {
		stmt := p.recoverable(p.parseBlockStatement)
		if stmt == nil {
			return p.partial(node)
		}
		node.AddChild(stmt)
	}
	return p.finishNode(node)
}

// parseSwitchLabel parses "case expr:" or "default:". A default label
// holds its keyword token.
func (p *Parser) parseSwitchLabel() *Node {
	node := p.startNode(KindSwitchLabel)
	if p.check(TokenDefault) {
		tok := p.advance()
		node.Token = &tok
	} else {
		p.advance()
		value := p.parseConditional()
		if value == nil {
			return nil
		}
		node.AddChild(value)
	}
	if p.expect(TokenColon) == nil {
		return nil
	}
	return p.finishNode(node)
}

func (p *Parser) parseReturnStmt() *Node {
	node := p.startNode(KindReturnStmt)
	p.advance()
	if !p.check(TokenSemicolon) {
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		node.AddChild(value)
	}
	if p.expect(TokenSemicolon) == nil {
		return nil
	}
	return p.finishNode(node)
}

// parseJumpStmt parses break and continue with an optional label.
func (p *Parser) parseJumpStmt(kind NodeKind) *Node {
	node := p.startNode(kind)
	p.advance()
	if p.check(TokenIdent) {
		node.AddChild(leaf(KindIdentifier, p.advance()))
	}
	if p.expect(TokenSemicolon) == nil {
		return nil
	}
	return p.finishNode(node)
}

func (p *Parser) parseThrowStmt() *Node {
	node := p.startNode(KindThrowStmt)
	p.advance()
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	node.AddChild(value)
	if p.expect(TokenSemicolon) == nil {
		return nil
	}
	return p.finishNode(node)
}

// parseTryStmt parses try with resources, catch clauses and finally. A try
// without resources needs at least one catch or a finally.
func (p *Parser) parseTryStmt() *Node {
	node := p.startNode(KindTryStmt)
	p.advance()

	hasResources := false
	if p.check(TokenLParen) {
		resources := p.parseResources()
		if resources == nil {
			return nil
		}
		node.AddChild(resources)
		hasResources = true
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}
	node.AddChild(body)

	handlers := 0
	for p.check(TokenCatch) {
		clause := p.parseCatchClause()
		if clause == nil {
			return nil
		}
		node.AddChild(clause)
		handlers++
	}
	if p.check(TokenFinally) {
		clause := p.startNode(KindFinallyClause)
		p.advance()
		block := p.parseBlock()
		if block == nil {
			return nil
		}
		clause.AddChild(block)
		node.AddChild(p.finishNode(clause))
		handlers++
	}
	if handlers == 0 && !hasResources {
		p.fail("'catch'")
		p.fail("'finally'")
		return nil
	}
	return p.finishNode(node)
}

func (p *Parser) parseResources() *Node {
	node := p.startNode(KindResources)
	p.advance()
	for {
		resource := p.parseResource()
		if resource == nil {
			return nil
		}
		node.AddChild(resource)
		if !p.accept(TokenSemicolon) || p.check(TokenRParen) {
			break
		}
	}
	if p.expect(TokenRParen) == nil {
		return nil
	}
	return p.finishNode(node)
}

// parseResource parses a resource declaration, or an expression naming an
// existing variable.
func (p *Parser) parseResource() *Node {
	if p.startsLocalVar() && p.speculate(p.localVarHead) {
		head := p.localVarHead()
		if head == nil {
			return nil
		}
		node := headNode(KindResource, head)
		id := p.ident()
		if id == nil {
			return nil
		}
		node.AddChild(id)
		if p.expect(TokenAssign) == nil {
			return nil
		}
		init := p.parseExpression()
		if init == nil {
			return nil
		}
		node.AddChild(init)
		return p.finishNode(node)
	}
	node := p.startNode(KindResource)
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	node.AddChild(expr)
	return p.finishNode(node)
}

// parseCatchClause parses catch (final A | B e) { ... }. Alternatives are
// collected in a UnionType.
func (p *Parser) parseCatchClause() *Node {
	node := p.startNode(KindCatchClause)
	p.advance()
	if p.expect(TokenLParen) == nil {
		return nil
	}

	param := p.startNode(KindParameter)
	modifiers := p.parseVariableModifiers()
	if modifiers == nil {
		return nil
	}
	param.AddChild(modifiers)
	typ := p.parseType()
	if typ == nil {
		return nil
	}
	if p.check(TokenBitOr) {
		union := wrap(KindUnionType, typ)
		for p.accept(TokenBitOr) {
			alt := p.parseType()
			if alt == nil {
				return nil
			}
			union.AddChild(alt)
		}
		typ = p.finishNode(union)
	}
	param.AddChild(typ)
	id := p.ident()
	if id == nil {
		return nil
	}
	param.AddChild(id)
	node.AddChild(p.finishNode(param))

	if p.expect(TokenRParen) == nil {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	node.AddChild(body)
	return p.finishNode(node)
}

func (p *Parser) parseSynchronizedStmt() *Node {
	node := p.startNode(KindSynchronizedStmt)
	p.advance()
	lock := p.parseCondition()
	if lock == nil {
		return nil
	}
	node.AddChild(lock)
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	node.AddChild(body)
	return p.finishNode(node)
}

func (p *Parser) parseAssertStmt() *Node {
	node := p.startNode(KindAssertStmt)
	p.advance()
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	node.AddChild(cond)
	if p.accept(TokenColon) {
		detail := p.parseExpression()
		if detail == nil {
			return nil
		}
		node.AddChild(detail)
	}
	if p.expect(TokenSemicolon) == nil {
		return nil
	}
	return p.finishNode(node)
}

func (p *Parser) parseLabeledStmt() *Node {
	node := p.startNode(KindLabeledStmt)
	node.AddChild(leaf(KindIdentifier, p.advance()))
	p.advance()
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	node.AddChild(body)
	return p.finishNode(node)
}
