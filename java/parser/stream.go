package parser

// Mark is a saved TokenStream position.
type Mark int

// TokenStream is a cursor over the significant tokens of one unit. All
// tokens are materialised up front so that Rewind is an index reset.
// Comments are kept aside and can be looked up by the significant token
// they precede.
type TokenStream struct {
	src      *Source
	tokens   []Token // significant tokens, always terminated by EOF
	comments []Token // comment tokens in source order
	// firstComment[i] is the number of comments that start before tokens[i].
	firstComment []int
	errors       []Token // lexical error tokens, in source order
	pos          int
}

func NewTokenStream(src *Source) *TokenStream {
	return newTokenStream(src, Tokenize(src))
}

func newTokenStream(src *Source, all []Token) *TokenStream {
	ts := &TokenStream{src: src}
	for _, tok := range all {
		switch tok.Kind {
		case TokenWhitespace:
			continue
		case TokenComment, TokenLineComment:
			ts.comments = append(ts.comments, tok)
			continue
		case TokenError:
			ts.errors = append(ts.errors, tok)
		}
		ts.tokens = append(ts.tokens, tok)
		ts.firstComment = append(ts.firstComment, len(ts.comments))
	}
	if len(ts.tokens) == 0 || ts.tokens[len(ts.tokens)-1].Kind != TokenEOF {
		end := src.Position(src.Len())
		ts.tokens = append(ts.tokens, Token{Kind: TokenEOF, Span: Span{Start: end, End: end}})
		ts.firstComment = append(ts.firstComment, len(ts.comments))
	}
	return ts
}

func (ts *TokenStream) Source() *Source { return ts.src }

// Len is the number of significant tokens including the final EOF.
func (ts *TokenStream) Len() int { return len(ts.tokens) }

func (ts *TokenStream) Pos() int { return ts.pos }

// Peek returns the token k positions ahead; Peek(0) is the current token.
// Positions past the end yield the EOF token.
func (ts *TokenStream) Peek(k int) Token {
	i := ts.pos + k
	if i < 0 {
		i = 0
	}
	if i >= len(ts.tokens) {
		i = len(ts.tokens) - 1
	}
	return ts.tokens[i]
}

func (ts *TokenStream) PeekKind(k int) TokenKind {
	return ts.Peek(k).Kind
}

// At returns the token at absolute index i.
func (ts *TokenStream) At(i int) Token {
	if i < 0 {
		i = 0
	}
	if i >= len(ts.tokens) {
		i = len(ts.tokens) - 1
	}
	return ts.tokens[i]
}

// Advance returns the current token and moves past it. The cursor never
// moves beyond EOF.
func (ts *TokenStream) Advance() Token {
	tok := ts.tokens[ts.pos]
	if ts.pos < len(ts.tokens)-1 {
		ts.pos++
	}
	return tok
}

func (ts *TokenStream) Mark() Mark { return Mark(ts.pos) }

func (ts *TokenStream) Rewind(m Mark) { ts.pos = int(m) }

// Adjacent reports whether the tokens at i and i+1 touch in the source,
// with nothing in between.
func (ts *TokenStream) Adjacent(i int) bool {
	if i < 0 || i+1 >= len(ts.tokens) {
		return false
	}
	return ts.tokens[i].Span.End.Offset == ts.tokens[i+1].Span.Start.Offset
}

// CommentsBefore returns the comments between token i-1 and token i.
func (ts *TokenStream) CommentsBefore(i int) []Token {
	if i < 0 || i >= len(ts.tokens) {
		return nil
	}
	lo := 0
	if i > 0 {
		lo = ts.firstComment[i-1]
	}
	return ts.comments[lo:ts.firstComment[i]]
}

// DocComment returns the last /** */ comment directly preceding token i.
func (ts *TokenStream) DocComment(i int) *Token {
	comments := ts.CommentsBefore(i)
	for j := len(comments) - 1; j >= 0; j-- {
		if comments[j].IsDocComment() {
			tok := comments[j]
			return &tok
		}
	}
	return nil
}

func (ts *TokenStream) Comments() []Token { return ts.comments }

// LexErrors returns the TokenError tokens of the unit.
func (ts *TokenStream) LexErrors() []Token { return ts.errors }
