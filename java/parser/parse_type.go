package parser

// parseType parses a primitive or class type with optional leading type
// annotations and trailing array dimensions.
func (p *Parser) parseType() *Node {
	return p.memoized(ruleType, p.parseTypeUncached)
}

func (p *Parser) parseTypeUncached() *Node {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	annotations := p.parseTypeAnnotations()
	if annotations == nil {
		return nil
	}
	var t *Node
	switch {
	case p.peek().Kind.IsPrimitiveType():
		t = leaf(KindPrimitiveType, p.advance())
	case p.check(TokenIdent):
		t = p.parseClassType()
	default:
		p.fail("type")
		return nil
	}
	if t == nil {
		return nil
	}
	if len(annotations) > 0 {
		t.Children = append(annotations, t.Children...)
		t.Span.Start = annotations[0].Span.Start
	}
	return p.parseDims(t)
}

// parseTypeAnnotations returns the annotations in front of a type, an
// empty non-nil slice when there are none, and nil on failure.
func (p *Parser) parseTypeAnnotations() []*Node {
	annotations := []*Node{}
	for p.check(TokenAt) && p.peekN(1).Kind != TokenInterface {
		a := p.parseAnnotation()
		if a == nil {
			return nil
		}
		annotations = append(annotations, a)
	}
	return annotations
}

// parseClassType parses Outer<A>.Inner<B> as a Type whose children
// alternate between Identifier and TypeArguments segments.
func (p *Parser) parseClassType() *Node {
	node := p.startNode(KindType)
	for {
		id := p.ident()
		if id == nil {
			return nil
		}
		node.AddChild(id)
		if p.check(TokenLT) {
			args := p.parseTypeArguments()
			if args == nil {
				return nil
			}
			node.AddChild(args)
		}
		if !p.check(TokenDot) || p.peekN(1).Kind != TokenIdent {
			break
		}
		p.advance()
	}
	return p.finishNode(node)
}

// parseDims wraps elem in one ArrayType for every [] pair that follows.
func (p *Parser) parseDims(elem *Node) *Node {
	for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
		p.advance()
		p.advance()
		elem = p.finishNode(wrap(KindArrayType, elem))
	}
	return elem
}

// parseDimsNode parses the [] pairs that may follow a declarator name or a
// parameter list into a Dims node, or returns nil when there are none.
func (p *Parser) parseDimsNode() *Node {
	if !p.check(TokenLBracket) || p.peekN(1).Kind != TokenRBracket {
		return nil
	}
	node := p.startNode(KindDims)
	for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
		p.advance()
		p.advance()
	}
	return p.finishNode(node)
}

func (p *Parser) parseTypeArguments() *Node {
	return p.memoized(ruleTypeArguments, p.parseTypeArgumentsUncached)
}

// parseTypeArgumentsUncached parses <A, ? extends B>, or the empty <> of a
// diamond. Each '>' is its own token, so nested lists close one at a time.
func (p *Parser) parseTypeArgumentsUncached() *Node {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	node := p.startNode(KindTypeArguments)
	if p.expect(TokenLT) == nil {
		return nil
	}
	if p.accept(TokenGT) {
		return p.finishNode(node)
	}
	for {
		arg := p.parseTypeArgument()
		if arg == nil {
			return nil
		}
		node.AddChild(arg)
		if !p.accept(TokenComma) {
			break
		}
	}
	if p.expect(TokenGT) == nil {
		return nil
	}
	return p.finishNode(node)
}

func (p *Parser) parseTypeArgument() *Node {
	if p.check(TokenQuestion) || (p.check(TokenAt) && p.isAnnotatedWildcard()) {
		return p.parseWildcard()
	}
	return p.parseType()
}

func (p *Parser) isAnnotatedWildcard() bool {
	return p.speculate(func() *Node {
		if p.parseTypeAnnotations() == nil {
			return nil
		}
		if !p.check(TokenQuestion) {
			return nil
		}
		return &Node{}
	})
}

func (p *Parser) parseWildcard() *Node {
	node := p.startNode(KindWildcard)
	annotations := p.parseTypeAnnotations()
	if annotations == nil {
		return nil
	}
	node.Children = annotations
	if p.expect(TokenQuestion) == nil {
		return nil
	}
	if p.match(TokenExtends, TokenSuper) {
		node.AddChild(leaf(KindOperator, p.advance()))
		bound := p.parseType()
		if bound == nil {
			return nil
		}
		node.AddChild(bound)
	}
	return p.finishNode(node)
}

// parseResultType parses a method return type, which may be void.
func (p *Parser) parseResultType() *Node {
	if p.check(TokenVoid) {
		return leaf(KindVoidType, p.advance())
	}
	return p.parseType()
}

func (p *Parser) parseTypeParameters() *Node {
	node := p.startNode(KindTypeParameters)
	if p.expect(TokenLT) == nil {
		return nil
	}
	for {
		param := p.parseTypeParameter()
		if param == nil {
			return nil
		}
		node.AddChild(param)
		if !p.accept(TokenComma) {
			break
		}
	}
	if p.expect(TokenGT) == nil {
		return nil
	}
	return p.finishNode(node)
}

// parseTypeParameter parses T or T extends A & B. The bounds are collected
// in an ExtendsClause.
func (p *Parser) parseTypeParameter() *Node {
	node := p.startNode(KindTypeParameter)
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
	if p.check(TokenExtends) {
		bounds := p.startNode(KindExtendsClause)
		p.advance()
		for {
			t := p.parseType()
			if t == nil {
				return nil
			}
			bounds.AddChild(t)
			if !p.accept(TokenBitAnd) {
				break
			}
		}
		node.AddChild(p.finishNode(bounds))
	}
	return p.finishNode(node)
}

// parseTypeList parses comma separated types into a node of the given
// kind, as used by extends, implements and throws clauses.
func (p *Parser) parseTypeList(kind NodeKind) *Node {
	node := p.startNode(kind)
	p.advance()
	for {
		t := p.parseType()
		if t == nil {
			return nil
		}
		node.AddChild(t)
		if !p.accept(TokenComma) {
			break
		}
	}
	return p.finishNode(node)
}

func (p *Parser) parseQualifiedName() *Node {
	node := p.startNode(KindQualifiedName)
	id := p.ident()
	if id == nil {
		return nil
	}
	node.AddChild(id)
	for p.check(TokenDot) && p.peekN(1).Kind == TokenIdent {
		p.advance()
		node.AddChild(leaf(KindIdentifier, p.advance()))
	}
	return p.finishNode(node)
}
