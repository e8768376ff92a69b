package parser

import (
	"context"
	"fmt"
)

const (
	DefaultMaxDepth = 1000
	DefaultMaxSize  = 16 << 20
)

// contextCheckInterval is the number of rule entries between checks of the
// parse context.
const contextCheckInterval = 256

type Option func(*Parser)

// WithFile names the unit when the parser builds its own Source.
func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

// WithMaxDepth limits the nesting of guarded rules. Exceeding it abandons
// the unit with ErrTooDeep.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// WithMaxSize limits the input size in bytes. Larger units are rejected
// with ErrTooLarge before lexing.
func WithMaxSize(size int) Option {
	return func(p *Parser) {
		p.maxSize = size
	}
}

func WithComments() Option {
	return func(p *Parser) {
		p.includeComments = true
	}
}

// WithoutMemo disables the memo table. Every speculative decision is then
// parsed twice, which is useful to check that memoization does not change
// the result.
func WithoutMemo() Option {
	return func(p *Parser) {
		p.useMemo = false
	}
}

// Stats describes the work done on one unit. Steps counts guarded rule
// entries.
type Stats struct {
	Tokens       int
	Steps        int
	Speculations int
	MemoEntries  int
	MemoHits     int
	MemoMisses   int
}

type Result struct {
	Unit        *Node
	Diagnostics []Diagnostic
	Comments    []Token
	Stats       Stats
	// Err is set when the parse was abandoned: ErrTooDeep, ErrTooLarge or
	// the context's error. Unit then holds whatever was built before.
	Err error
}

func (r *Result) HasErrors() bool {
	return r.Err != nil || len(r.Diagnostics) > 0
}

// failure is the furthest position at which a rule failed, with everything
// that would have been accepted there.
type failure struct {
	pos      int
	expected []string
}

var noFailure = failure{pos: -1}

type parseFunc func(*Parser) *Node

// Parser is a backtracking recursive-descent parser for one unit. Rules
// return nil on failure and leave the stream where they failed; callers
// that try alternatives rewind with Mark and Rewind.
//
// Outside speculation, declarations, members and block statements are
// resynchronisation points: a failed rule there is reported and replaced
// by an error node covering the skipped input.
type Parser struct {
	file            string
	maxDepth        int
	maxSize         int
	includeComments bool
	useMemo         bool

	ctx  context.Context
	src  *Source
	ts   *TokenStream
	memo *memoTable

	speculating int
	depth       int
	steps       int
	fatal       error
	cut         bool
	furthest    failure
	diags       []Diagnostic
	stats       Stats
}

func newParser(ctx context.Context, opts []Option) *Parser {
	p := &Parser{
		maxDepth: DefaultMaxDepth,
		maxSize:  DefaultMaxSize,
		useMemo:  true,
		ctx:      ctx,
		furthest: noFailure,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.ctx == nil {
		p.ctx = context.Background()
	}
	return p
}

// Parse parses src as a compilation unit.
func Parse(ctx context.Context, src *Source, opts ...Option) *Result {
	p := newParser(ctx, opts)
	return p.run(src, (*Parser).parseCompilationUnit)
}

// ParseBytes parses data as a compilation unit named by WithFile.
func ParseBytes(ctx context.Context, data []byte, opts ...Option) *Result {
	p := newParser(ctx, opts)
	return p.run(NewSource(p.file, data), (*Parser).parseCompilationUnit)
}

// ParseExpression parses src as a single expression.
func ParseExpression(ctx context.Context, src *Source, opts ...Option) *Result {
	p := newParser(ctx, opts)
	return p.run(src, (*Parser).parseWholeExpression)
}

// ParseStatement parses src as a single block statement.
func ParseStatement(ctx context.Context, src *Source, opts ...Option) *Result {
	p := newParser(ctx, opts)
	return p.run(src, (*Parser).parseWholeStatement)
}

func (p *Parser) run(src *Source, entry parseFunc) *Result {
	p.src = src
	res := &Result{}
	if p.maxSize > 0 && src.Len() > p.maxSize {
		res.Err = fmt.Errorf("%s: %w: %d bytes exceeds limit of %d", src.File(), ErrTooLarge, src.Len(), p.maxSize)
		res.Diagnostics = []Diagnostic{{
			Pos:     src.Position(0),
			End:     src.Position(0),
			Message: "parse abandoned: " + res.Err.Error(),
		}}
		return res
	}

	p.reset(src)
	for _, tok := range p.ts.LexErrors() {
		p.diags = append(p.diags, Diagnostic{
			Pos:     tok.Span.Start,
			End:     tok.Span.End,
			Found:   tok.String(),
			Message: fmt.Sprintf("unrecognized input %q", tok.Literal),
		})
	}

	res.Unit = entry(p)
	res.Diagnostics = p.diags
	res.Err = p.fatal
	if p.includeComments {
		res.Comments = p.ts.Comments()
	}
	res.Stats = p.stats
	res.Stats.Tokens = p.ts.Len()
	res.Stats.Steps = p.steps
	if p.memo != nil {
		res.Stats.MemoEntries = p.memo.len()
		res.Stats.MemoHits = p.memo.hits
		res.Stats.MemoMisses = p.memo.misses
	}
	return res
}

// reset points the parser at src with a fresh token stream and memo table.
func (p *Parser) reset(src *Source) {
	p.src = src
	p.ts = NewTokenStream(src)
	p.memo = nil
	if p.useMemo {
		p.memo = newMemoTable()
	}
}

func (p *Parser) parseWholeExpression() *Node {
	return p.whole(p.parseExpression)
}

func (p *Parser) parseWholeStatement() *Node {
	return p.whole(p.parseBlockStatement)
}

// whole applies rule to the entire input. On failure the furthest failure
// is reported and nil returned. A partial result of an abandoned parse is
// kept.
func (p *Parser) whole(rule func() *Node) *Node {
	n := rule()
	if n != nil && p.fatal == nil && !p.check(TokenEOF) {
		p.fail(describe(TokenEOF))
		n = nil
	}
	if n == nil && p.fatal == nil {
		p.report(p.furthest)
	}
	return n
}

func (p *Parser) peek() Token {
	return p.ts.Peek(0)
}

func (p *Parser) peekN(n int) Token {
	return p.ts.Peek(n)
}

func (p *Parser) advance() Token {
	return p.ts.Advance()
}

func (p *Parser) check(kind TokenKind) bool {
	return p.ts.PeekKind(0) == kind
}

func (p *Parser) match(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			return true
		}
	}
	return false
}

func (p *Parser) accept(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of the given kind, or records the mismatch and
// returns nil.
func (p *Parser) expect(kind TokenKind) *Token {
	if p.check(kind) {
		tok := p.advance()
		return &tok
	}
	p.fail(describe(kind))
	return nil
}

// fail records that expected would have been accepted at the cursor.
func (p *Parser) fail(expected string) {
	pos := p.ts.Pos()
	switch {
	case pos > p.furthest.pos:
		p.furthest = failure{pos: pos, expected: []string{expected}}
	case pos == p.furthest.pos:
		for _, e := range p.furthest.expected {
			if e == expected {
				return
			}
		}
		p.furthest.expected = append(p.furthest.expected[:len(p.furthest.expected):len(p.furthest.expected)], expected)
	}
}

func mergeFailures(a, b failure) failure {
	switch {
	case a.pos > b.pos:
		return a
	case b.pos > a.pos:
		return b
	}
	merged := failure{pos: a.pos, expected: append([]string(nil), a.expected...)}
outer:
	for _, e := range b.expected {
		for _, have := range merged.expected {
			if have == e {
				continue outer
			}
		}
		merged.expected = append(merged.expected, e)
	}
	return merged
}

func leaf(kind NodeKind, tok Token) *Node {
	return &Node{Kind: kind, Span: tok.Span, Token: &tok}
}

func (p *Parser) ident() *Node {
	if tok := p.expect(TokenIdent); tok != nil {
		return leaf(KindIdentifier, *tok)
	}
	return nil
}

func (p *Parser) startNode(kind NodeKind) *Node {
	return &Node{
		Kind: kind,
		Span: Span{Start: p.peek().Span.Start},
	}
}

// wrap starts a node whose first child was parsed before it.
func wrap(kind NodeKind, first *Node) *Node {
	return &Node{
		Kind:     kind,
		Span:     Span{Start: first.Span.Start},
		Children: []*Node{first},
	}
}

// finishNode ends n at the last consumed token. A node that consumed
// nothing is empty at its start.
func (p *Parser) finishNode(n *Node) *Node {
	n.Span.End = n.Span.Start
	if i := p.ts.Pos(); i > 0 {
		if prev := p.ts.At(i - 1).Span.End; prev.Offset > n.Span.Start.Offset {
			n.Span.End = prev
		}
	}
	return n
}

// withDoc attaches the documentation comment preceding the token at index
// start.
func (p *Parser) withDoc(n *Node, start int) *Node {
	if n != nil {
		n.Doc = p.ts.DocComment(start)
	}
	return n
}

// operator returns the operator at the cursor and the number of tokens it
// spans. Runs of '<', '>' and '=' that touch in the source compose into
// shift and comparison operators.
func (p *Parser) operator() (TokenKind, int) {
	i := p.ts.Pos()
	follows := func(k int, kind TokenKind) bool {
		return p.ts.Adjacent(i+k-1) && p.ts.At(i+k).Kind == kind
	}
	switch kind := p.ts.At(i).Kind; kind {
	case TokenLT:
		if follows(1, TokenLT) {
			if follows(2, TokenAssign) {
				return TokenShlAssign, 3
			}
			return TokenShl, 2
		}
		if follows(1, TokenAssign) {
			return TokenLE, 2
		}
		return kind, 1
	case TokenGT:
		if follows(1, TokenGT) {
			if follows(2, TokenGT) {
				if follows(3, TokenAssign) {
					return TokenUShrAssign, 4
				}
				return TokenUShr, 3
			}
			if follows(2, TokenAssign) {
				return TokenShrAssign, 3
			}
			return TokenShr, 2
		}
		if follows(1, TokenAssign) {
			return TokenGE, 2
		}
		return kind, 1
	default:
		return kind, 1
	}
}

// takeOperator consumes the n tokens of a composed operator and returns it
// as one token.
func (p *Parser) takeOperator(kind TokenKind, n int) Token {
	first := p.advance()
	last := first
	for i := 1; i < n; i++ {
		last = p.advance()
	}
	span := Span{Start: first.Span.Start, End: last.Span.End}
	return Token{Kind: kind, Span: span, Literal: p.src.Slice(span)}
}

// enter guards recursion depth and polls the context. Every successful
// enter must be paired with leave.
func (p *Parser) enter() bool {
	if p.fatal != nil {
		return false
	}
	if p.depth >= p.maxDepth {
		p.abort(fmt.Errorf("%w: more than %d levels", ErrTooDeep, p.maxDepth))
		return false
	}
	p.steps++
	if p.steps%contextCheckInterval == 0 {
		if err := p.ctx.Err(); err != nil {
			p.abort(err)
			return false
		}
	}
	p.depth++
	return true
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) abort(err error) {
	if p.fatal != nil {
		return
	}
	p.fatal = err
	tok := p.peek()
	p.diags = append(p.diags, Diagnostic{
		Pos:     tok.Span.Start,
		End:     tok.Span.End,
		Found:   tok.String(),
		Message: "parse abandoned: " + err.Error(),
	})
}

// speculate runs rule without recovery and rewinds the stream. It reports
// whether the rule matched. Failures recorded by the trial are dropped:
// diagnostics describe the alternative the parser went on with.
func (p *Parser) speculate(rule func() *Node) bool {
	m := p.ts.Mark()
	outer := p.furthest
	p.speculating++
	n := rule()
	p.speculating--
	p.ts.Rewind(m)
	p.furthest = outer
	p.stats.Speculations++
	return n != nil
}

// memoized applies rule through the memo table. Successes are replayed in
// any mode. Failures are replayed only while speculating, because outside
// speculation the rule may recover where a speculative attempt failed.
func (p *Parser) memoized(id ruleID, rule func() *Node) *Node {
	if p.memo == nil {
		return rule()
	}
	start := p.ts.Pos()
	if o, ok := p.memo.get(id, start); ok {
		if o.ok() {
			p.furthest = mergeFailures(p.furthest, o.furthest)
			p.ts.Rewind(Mark(o.end))
			return o.node
		}
		if p.speculating > 0 {
			p.furthest = mergeFailures(p.furthest, o.furthest)
			return nil
		}
	}

	outer := p.furthest
	p.furthest = noFailure
	n := rule()
	inner := p.furthest
	p.furthest = mergeFailures(outer, inner)
	if p.fatal != nil {
		return n
	}
	if n == nil {
		p.memo.put(id, start, outcome{end: start, furthest: inner})
		return nil
	}
	p.memo.put(id, start, outcome{node: n, end: p.ts.Pos(), furthest: inner})
	return n
}

// recoverable runs rule at a resynchronisation point.
func (p *Parser) recoverable(rule func() *Node) *Node {
	start := p.ts.Mark()
	outer := p.furthest
	p.furthest = noFailure
	n := rule()
	if n != nil {
		p.furthest = outer
		return n
	}
	if p.speculating > 0 || p.fatal != nil {
		p.furthest = mergeFailures(outer, p.furthest)
		return nil
	}
	d := p.report(p.furthest)
	p.furthest = outer
	p.ts.Rewind(start)
	return p.skip(d)
}

// report turns a failure into a diagnostic. Failures on a lexical error
// token are not reported again.
func (p *Parser) report(f failure) Diagnostic {
	pos := f.pos
	if pos < 0 {
		pos = p.ts.Pos()
	}
	found := p.ts.At(pos)
	d := Diagnostic{
		Pos:      found.Span.Start,
		End:      found.Span.End,
		Expected: f.expected,
		Found:    found.String(),
		Message:  expectedMessage(f.expected, found),
	}
	if found.Kind != TokenError {
		p.diags = append(p.diags, d)
	}
	return d
}

// skip consumes input up to the next boundary: past a ';' or a balanced
// '{ }' group, or up to an unmatched '}'. At least one token is consumed
// unless the cursor is at end of file.
func (p *Parser) skip(d Diagnostic) *Node {
	node := p.startNode(KindError)
	got := p.peek()
	node.Error = &Error{Message: d.Message, Expected: d.Expected, Got: &got}
	start := p.ts.Pos()
	depth := 0
loop:
	for !p.check(TokenEOF) {
		switch p.peek().Kind {
		case TokenLBrace:
			depth++
		case TokenRBrace:
			if depth == 0 {
				if p.ts.Pos() == start {
					p.advance()
				}
				break loop
			}
			depth--
			if depth == 0 {
				p.advance()
				break loop
			}
		case TokenSemicolon:
			if depth == 0 {
				p.advance()
				break loop
			}
		}
		p.advance()
	}
	return p.finishNode(node)
}

// closing consumes the token that closes a body. Outside speculation a
// body cut off by the end of the file is reported and marked with an empty
// error node, so what was built so far is kept.
func (p *Parser) closing(node *Node, kind TokenKind) bool {
	if p.accept(kind) {
		return true
	}
	p.fail(describe(kind))
	if p.speculating > 0 || p.fatal != nil || !p.check(TokenEOF) {
		return false
	}
	d := p.report(p.furthest)
	p.furthest = noFailure
	got := p.peek()
	node.AddChild(&Node{
		Kind:  KindError,
		Span:  Span{Start: got.Span.Start, End: got.Span.Start},
		Error: &Error{Message: d.Message, Expected: d.Expected, Got: &got},
	})
	return true
}

// partial returns body as far as it was built once a guard has abandoned
// the unit, or nil while speculating or when nothing was abandoned. The
// innermost body gets an empty error node where parsing stopped.
func (p *Parser) partial(body *Node) *Node {
	if p.fatal == nil || p.speculating > 0 {
		return nil
	}
	if !p.cut {
		p.cut = true
		got := p.peek()
		body.AddChild(&Node{
			Kind:  KindError,
			Span:  Span{Start: got.Span.Start, End: got.Span.Start},
			Error: &Error{Message: "parse abandoned: " + p.fatal.Error(), Got: &got},
		})
	}
	return p.finishNode(body)
}
