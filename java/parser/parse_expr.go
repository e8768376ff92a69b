package parser

// parseExpression parses an assignment expression, trying a lambda first.
// Assignment is right associative.
func (p *Parser) parseExpression() *Node {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	if p.isLambda() {
		return p.parseLambda()
	}

	left := p.parseConditional()
	if left == nil {
		return nil
	}
	kind, n := p.operator()
	if !isAssignOp(kind) {
		return left
	}
	node := wrap(KindAssignExpr, left)
	node.AddChild(leaf(KindOperator, p.takeOperator(kind, n)))
	right := p.parseExpression()
	if right == nil {
		return nil
	}
	node.AddChild(right)
	return p.finishNode(node)
}

func isAssignOp(kind TokenKind) bool {
	switch kind {
	case TokenAssign, TokenPlusAssign, TokenMinusAssign,
		TokenStarAssign, TokenSlashAssign, TokenPercentAssign,
		TokenAndAssign, TokenOrAssign, TokenXorAssign,
		TokenShlAssign, TokenShrAssign, TokenUShrAssign:
		return true
	}
	return false
}

// isLambda decides whether a lambda starts at the cursor. x -> is settled
// by lookahead; a parenthesised head needs a speculative parse.
func (p *Parser) isLambda() bool {
	switch p.peek().Kind {
	case TokenIdent:
		return p.peekN(1).Kind == TokenArrow
	case TokenLParen:
		return p.speculate(p.lambdaHead)
	}
	return false
}

func (p *Parser) lambdaHead() *Node {
	return p.memoized(ruleLambda, p.lambdaHeadUncached)
}

// lambdaHeadUncached matches lambda parameters up to, but not including,
// the arrow: x, (), (a, b) or (final String a, int... b).
func (p *Parser) lambdaHeadUncached() *Node {
	node := p.startNode(KindLambdaParameters)
	if p.check(TokenIdent) {
		node.AddChild(leaf(KindIdentifier, p.advance()))
	} else {
		if p.expect(TokenLParen) == nil {
			return nil
		}
		if !p.check(TokenRParen) {
			inferred := p.check(TokenIdent) &&
				(p.peekN(1).Kind == TokenComma || p.peekN(1).Kind == TokenRParen)
			for {
				var param *Node
				if inferred {
					param = p.ident()
				} else {
					param = p.parseParameter()
				}
				if param == nil {
					return nil
				}
				node.AddChild(param)
				if !p.accept(TokenComma) {
					break
				}
			}
		}
		if p.expect(TokenRParen) == nil {
			return nil
		}
	}
	if !p.check(TokenArrow) {
		p.fail("'->'")
		return nil
	}
	return p.finishNode(node)
}

func (p *Parser) parseLambda() *Node {
	head := p.lambdaHead()
	if head == nil {
		return nil
	}
	node := wrap(KindLambdaExpr, head)
	if p.expect(TokenArrow) == nil {
		return nil
	}
	var body *Node
	if p.check(TokenLBrace) {
		body = p.parseBlock()
	} else {
		body = p.parseExpression()
	}
	if body == nil {
		return nil
	}
	node.AddChild(body)
	return p.finishNode(node)
}

// parseConditional parses cond ? a : b. The false branch may be a lambda.
func (p *Parser) parseConditional() *Node {
	cond := p.parseBinary(1)
	if cond == nil || !p.check(TokenQuestion) {
		return cond
	}
	node := wrap(KindTernaryExpr, cond)
	p.advance()
	then := p.parseExpression()
	if then == nil {
		return nil
	}
	node.AddChild(then)
	if p.expect(TokenColon) == nil {
		return nil
	}
	var els *Node
	if p.isLambda() {
		els = p.parseLambda()
	} else {
		els = p.parseConditional()
	}
	if els == nil {
		return nil
	}
	node.AddChild(els)
	return p.finishNode(node)
}

// binaryPrecedence orders the binary operators from || (loosest) to the
// multiplicative operators (tightest). instanceof binds like the
// relational operators.
var binaryPrecedence = map[TokenKind]int{
	TokenOr:         1,
	TokenAnd:        2,
	TokenBitOr:      3,
	TokenBitXor:     4,
	TokenBitAnd:     5,
	TokenEQ:         6,
	TokenNE:         6,
	TokenLT:         7,
	TokenGT:         7,
	TokenLE:         7,
	TokenGE:         7,
	TokenInstanceof: 7,
	TokenShl:        8,
	TokenShr:        8,
	TokenUShr:       8,
	TokenPlus:       9,
	TokenMinus:      9,
	TokenStar:       10,
	TokenSlash:      10,
	TokenPercent:    10,
}

// parseBinary parses a chain of left associative binary operators whose
// precedence is at least minPrec.
func (p *Parser) parseBinary(minPrec int) *Node {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for {
		kind, n := p.operator()
		prec, ok := binaryPrecedence[kind]
		if !ok || prec < minPrec {
			return left
		}

		if kind == TokenInstanceof {
			node := wrap(KindInstanceofExpr, left)
			p.advance()
			typ := p.parseType()
			if typ == nil {
				return nil
			}
			node.AddChild(typ)
			left = p.finishNode(node)
			continue
		}

		node := wrap(KindBinaryExpr, left)
		node.AddChild(leaf(KindOperator, p.takeOperator(kind, n)))
		right := p.parseBinary(prec + 1)
		if right == nil {
			return nil
		}
		node.AddChild(right)
		left = p.finishNode(node)
	}
}

func (p *Parser) parseUnary() *Node {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	switch p.peek().Kind {
	case TokenIncrement, TokenDecrement, TokenPlus, TokenMinus, TokenNot, TokenBitNot:
		node := p.startNode(KindUnaryExpr)
		node.AddChild(leaf(KindOperator, p.advance()))
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		node.AddChild(operand)
		return p.finishNode(node)
	case TokenLParen:
		if p.speculate(p.castHead) {
			return p.parseCast()
		}
	}
	return p.parsePostfix()
}

func (p *Parser) castHead() *Node {
	return p.memoized(ruleCast, p.castHeadUncached)
}

// castHeadUncached matches the parenthesised target type of a cast,
// including intersection casts. It only succeeds when the token after ')'
// can start the operand: any unary expression after a primitive type, and
// anything but '+' or '-' after a reference type.
func (p *Parser) castHeadUncached() *Node {
	if p.expect(TokenLParen) == nil {
		return nil
	}
	typ := p.parseType()
	if typ == nil {
		return nil
	}
	if p.check(TokenBitAnd) {
		inter := wrap(KindIntersectionType, typ)
		for p.accept(TokenBitAnd) {
			bound := p.parseType()
			if bound == nil {
				return nil
			}
			inter.AddChild(bound)
		}
		typ = p.finishNode(inter)
	}
	if p.expect(TokenRParen) == nil {
		return nil
	}

	next := p.peek().Kind
	switch {
	case typ.Kind == KindPrimitiveType:
		if !startsUnary(next) {
			return nil
		}
	case !startsUnaryNotPlusMinus(next):
		return nil
	}
	return typ
}

func startsUnary(kind TokenKind) bool {
	switch kind {
	case TokenPlus, TokenMinus, TokenIncrement, TokenDecrement:
		return true
	}
	return startsUnaryNotPlusMinus(kind)
}

func startsUnaryNotPlusMinus(kind TokenKind) bool {
	switch kind {
	case TokenIdent, TokenThis, TokenSuper, TokenNew, TokenLParen,
		TokenNot, TokenBitNot, TokenVoid:
		return true
	}
	return kind.IsLiteral() || kind.IsPrimitiveType()
}

func (p *Parser) parseCast() *Node {
	node := p.startNode(KindCastExpr)
	typ := p.castHead()
	if typ == nil {
		return nil
	}
	node.AddChild(typ)
	var operand *Node
	if p.isLambda() {
		operand = p.parseLambda()
	} else {
		operand = p.parseUnary()
	}
	if operand == nil {
		return nil
	}
	node.AddChild(operand)
	return p.finishNode(node)
}

// parsePostfix parses a primary followed by member accesses, calls, array
// accesses, method references and postfix increments.
func (p *Parser) parsePostfix() *Node {
	expr := p.parsePrimary()
	for expr != nil {
		switch p.peek().Kind {
		case TokenDot:
			expr = p.parseDotSuffix(expr)
		case TokenLBracket:
			if p.peekN(1).Kind == TokenRBracket {
				expr = p.parseArrayTypeSuffix(expr)
				continue
			}
			node := wrap(KindArrayAccess, expr)
			p.advance()
			index := p.parseExpression()
			if index == nil || p.expect(TokenRBracket) == nil {
				return nil
			}
			node.AddChild(index)
			expr = p.finishNode(node)
		case TokenColonColon:
			expr = p.parseMethodRef(expr)
		case TokenIncrement, TokenDecrement:
			node := wrap(KindPostfixExpr, expr)
			node.AddChild(leaf(KindOperator, p.advance()))
			expr = p.finishNode(node)
		default:
			return expr
		}
	}
	return nil
}

// parseDotSuffix parses what follows a '.' after an expression: a field,
// a call with optional explicit type arguments, an inner class creation,
// a class literal, or a qualified this or super.
func (p *Parser) parseDotSuffix(target *Node) *Node {
	p.advance()
	switch p.peek().Kind {
	case TokenIdent:
		name := leaf(KindIdentifier, p.advance())
		if p.check(TokenLParen) {
			return p.parseCallRest(wrap(KindCallExpr, target), name)
		}
		node := wrap(KindFieldAccess, target)
		node.AddChild(name)
		return p.finishNode(node)
	case TokenLT:
		call := wrap(KindCallExpr, target)
		args := p.parseTypeArguments()
		if args == nil {
			return nil
		}
		call.AddChild(args)
		name := p.ident()
		if name == nil {
			return nil
		}
		return p.parseCallRest(call, name)
	case TokenNew:
		return p.parseNew(target)
	case TokenClass:
		node := wrap(KindClassLiteral, target)
		p.advance()
		return p.finishNode(node)
	case TokenThis, TokenSuper:
		kind := KindThis
		if p.check(TokenSuper) {
			kind = KindSuper
		}
		node := wrap(kind, target)
		tok := p.advance()
		node.Token = &tok
		return p.finishNode(node)
	}
	p.fail(describe(TokenIdent))
	return nil
}

// parseCallRest finishes a call whose target, if any, is already the first
// child of node.
func (p *Parser) parseCallRest(node, name *Node) *Node {
	node.AddChild(name)
	args := p.parseArguments()
	if args == nil {
		return nil
	}
	node.AddChild(args)
	return p.finishNode(node)
}

// parseArrayTypeSuffix turns Name[] into an array type, which must be
// followed by .class or a method reference.
func (p *Parser) parseArrayTypeSuffix(elem *Node) *Node {
	typ := p.parseDims(elem)
	switch {
	case p.check(TokenDot) && p.peekN(1).Kind == TokenClass:
		node := wrap(KindClassLiteral, typ)
		p.advance()
		p.advance()
		return p.finishNode(node)
	case p.check(TokenColonColon):
		return p.parseMethodRef(typ)
	}
	p.fail("'.class'")
	p.fail("'::'")
	return nil
}

// parseMethodRef parses ::name, ::<T>name and ::new after target.
func (p *Parser) parseMethodRef(target *Node) *Node {
	node := wrap(KindMethodRef, target)
	p.advance()
	if p.check(TokenLT) {
		args := p.parseTypeArguments()
		if args == nil {
			return nil
		}
		node.AddChild(args)
	}
	if p.check(TokenNew) {
		node.AddChild(leaf(KindIdentifier, p.advance()))
		return p.finishNode(node)
	}
	name := p.ident()
	if name == nil {
		return nil
	}
	node.AddChild(name)
	return p.finishNode(node)
}

func (p *Parser) parseArguments() *Node {
	node := p.startNode(KindArguments)
	if p.expect(TokenLParen) == nil {
		return nil
	}
	if !p.check(TokenRParen) && !p.parseExpressionList(node) {
		return nil
	}
	if p.expect(TokenRParen) == nil {
		return nil
	}
	return p.finishNode(node)
}

func (p *Parser) parsePrimary() *Node {
	tok := p.peek()
	switch {
	case tok.Kind.IsLiteral():
		return leaf(KindLiteral, p.advance())
	case tok.Kind == TokenIdent:
		if p.genericRefAhead() && p.speculate(p.genericRefHead) {
			typ := p.genericRefHead()
			if typ == nil {
				return nil
			}
			return p.parseMethodRef(typ)
		}
		name := leaf(KindIdentifier, p.advance())
		if p.check(TokenLParen) {
			return p.parseCallRest(&Node{Kind: KindCallExpr, Span: name.Span}, name)
		}
		return name
	case tok.Kind == TokenThis:
		self := leaf(KindThis, p.advance())
		if p.check(TokenLParen) {
			return p.parseExplicitConstructorCall(self)
		}
		return self
	case tok.Kind == TokenSuper:
		base := leaf(KindSuper, p.advance())
		if p.check(TokenLParen) {
			return p.parseExplicitConstructorCall(base)
		}
		if !p.match(TokenDot, TokenColonColon) {
			p.fail("'.'")
			p.fail("'::'")
			return nil
		}
		return base
	case tok.Kind == TokenLParen:
		return p.parseParenExpr()
	case tok.Kind == TokenNew:
		return p.parseNew(nil)
	case tok.Kind.IsPrimitiveType() || tok.Kind == TokenVoid:
		return p.parsePrimitiveClassLiteral()
	}
	p.fail("expression")
	return nil
}

// parseExplicitConstructorCall parses this(...) and super(...).
func (p *Parser) parseExplicitConstructorCall(callee *Node) *Node {
	node := wrap(KindCallExpr, callee)
	args := p.parseArguments()
	if args == nil {
		return nil
	}
	node.AddChild(args)
	return p.finishNode(node)
}

// genericRefAhead reports whether a dotted name followed by '<' starts at
// the cursor, which may be the type of a method reference like
// List<String>::size.
func (p *Parser) genericRefAhead() bool {
	i := 0
	for {
		if p.peekN(i).Kind != TokenIdent {
			return false
		}
		switch p.peekN(i + 1).Kind {
		case TokenLT:
			return true
		case TokenDot:
			i += 2
		default:
			return false
		}
	}
}

func (p *Parser) genericRefHead() *Node {
	return p.memoized(ruleGenericRef, p.genericRefHeadUncached)
}

func (p *Parser) genericRefHeadUncached() *Node {
	typ := p.parseType()
	if typ == nil {
		return nil
	}
	if !p.check(TokenColonColon) {
		p.fail("'::'")
		return nil
	}
	return typ
}

// parsePrimitiveClassLiteral parses int.class, int[].class, void.class and
// int[]::new.
func (p *Parser) parsePrimitiveClassLiteral() *Node {
	var typ *Node
	if p.check(TokenVoid) {
		typ = leaf(KindVoidType, p.advance())
	} else {
		typ = p.parseDims(leaf(KindPrimitiveType, p.advance()))
	}
	switch {
	case p.check(TokenDot) && p.peekN(1).Kind == TokenClass:
		node := wrap(KindClassLiteral, typ)
		p.advance()
		p.advance()
		return p.finishNode(node)
	case p.check(TokenColonColon) && typ.Kind == KindArrayType:
		return p.parseMethodRef(typ)
	}
	p.fail("'.class'")
	return nil
}

func (p *Parser) parseParenExpr() *Node {
	node := p.startNode(KindParenExpr)
	p.advance()
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	node.AddChild(expr)
	if p.expect(TokenRParen) == nil {
		return nil
	}
	return p.finishNode(node)
}

// parseNew parses class instance creation, with an optional anonymous
// class body, and array creation. outer is the qualifying instance of
// outer.new Inner(), or nil.
func (p *Parser) parseNew(outer *Node) *Node {
	var node *Node
	if outer != nil {
		node = wrap(KindNewExpr, outer)
	} else {
		node = p.startNode(KindNewExpr)
	}
	if p.expect(TokenNew) == nil {
		return nil
	}
	if p.check(TokenLT) {
		args := p.parseTypeArguments()
		if args == nil {
			return nil
		}
		node.AddChild(args)
	}

	annotations := p.parseTypeAnnotations()
	if annotations == nil {
		return nil
	}
	var typ *Node
	switch {
	case p.peek().Kind.IsPrimitiveType():
		typ = leaf(KindPrimitiveType, p.advance())
	case p.check(TokenIdent):
		typ = p.parseClassType()
	default:
		p.fail("type")
		return nil
	}
	if typ == nil {
		return nil
	}
	if len(annotations) > 0 {
		typ.Children = append(annotations, typ.Children...)
		typ.Span.Start = annotations[0].Span.Start
	}
	node.AddChild(typ)

	if p.check(TokenLBracket) {
		node.Kind = KindNewArrayExpr
		return p.parseNewArrayRest(node)
	}
	if typ.Kind == KindPrimitiveType {
		p.fail("'['")
		return nil
	}

	args := p.parseArguments()
	if args == nil {
		return nil
	}
	node.AddChild(args)
	if p.check(TokenLBrace) {
		body := p.parseClassBody()
		if body == nil {
			return nil
		}
		node.AddChild(body)
	}
	return p.finishNode(node)
}

// parseNewArrayRest parses the dimensions of an array creation: sized
// dimensions followed by empty ones, or empty dimensions and an
// initializer.
func (p *Parser) parseNewArrayRest(node *Node) *Node {
	sized := 0
	for p.check(TokenLBracket) && p.peekN(1).Kind != TokenRBracket {
		p.advance()
		size := p.parseExpression()
		if size == nil || p.expect(TokenRBracket) == nil {
			return nil
		}
		node.AddChild(size)
		sized++
	}
	dims := p.parseDimsNode()
	node.AddChild(dims)
	if sized == 0 {
		if dims == nil {
			p.fail("'['")
			return nil
		}
		init := p.parseArrayInit()
		if init == nil {
			return nil
		}
		node.AddChild(init)
	}
	return p.finishNode(node)
}
