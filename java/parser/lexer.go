package parser

import (
	"unicode"
	"unicode/utf8"
)

// Lexer scans a Source into tokens. It is total: any input produces a
// token sequence ending in TokenEOF, with TokenError for anything that
// matches no rule.
//
// '<' and '>' are always single tokens. Shift and comparison operators
// built from them are composed by the parser, which lets a '>' close a
// type argument list no matter how many others follow it.
type Lexer struct {
	src    *Source
	input  string
	pos    int
	line   int
	column int
}

func NewLexer(src *Source) *Lexer {
	return &Lexer{
		src:    src,
		input:  src.text,
		line:   1,
		column: 1,
	}
}

// ScanAt lexes the single token starting at offset and returns it together
// with the offset just past it.
func ScanAt(src *Source, offset int) (Token, int) {
	l := NewLexer(src)
	l.seek(offset)
	tok := l.NextToken()
	return tok, l.pos
}

// Tokenize returns every token of src, trivia included, ending with EOF.
func Tokenize(src *Source) []Token {
	l := NewLexer(src)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == TokenEOF {
			return toks
		}
	}
}

func (l *Lexer) seek(offset int) {
	p := l.src.Position(offset)
	l.pos = p.Offset
	l.line = p.Line
	l.column = p.Column
}

func (l *Lexer) Position() Position {
	return Position{
		File:   l.src.file,
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	switch {
	case ch == '\n':
		l.line++
		l.column = 1
	case ch == '\r' && l.peek() != '\n':
		l.line++
		l.column = 1
	default:
		l.column++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) peekRune() (rune, int) {
	if l.pos >= len(l.input) {
		return utf8.RuneError, 0
	}
	if c := l.input[l.pos]; c < utf8.RuneSelf {
		return rune(c), 1
	}
	return utf8.DecodeRuneInString(l.input[l.pos:])
}

func (l *Lexer) NextToken() Token {
	startPos := l.Position()

	if l.atEOF() {
		return Token{Kind: TokenEOF, Span: Span{Start: startPos, End: startPos}}
	}

	ch := l.peek()

	if ch == '/' && l.peekN(1) == '/' {
		return l.scanLineComment(startPos)
	}
	if ch == '/' && l.peekN(1) == '*' {
		return l.scanBlockComment(startPos)
	}

	if isWhitespace(ch) {
		return l.scanWhitespace(startPos)
	}

	if ch >= utf8.RuneSelf {
		r, size := l.peekRune()
		if r == utf8.RuneError && size <= 1 {
			l.advance()
			return l.token(TokenError, startPos)
		}
		if isIdentStart(r) {
			return l.scanIdentOrKeyword(startPos)
		}
		l.advanceN(size)
		return l.token(TokenError, startPos)
	}

	if isIdentStart(rune(ch)) {
		return l.scanIdentOrKeyword(startPos)
	}

	if isDigit(ch) || (ch == '.' && isDigit(l.peekN(1))) {
		return l.scanNumber(startPos)
	}

	if ch == '\'' {
		return l.scanCharLiteral(startPos)
	}

	if ch == '"' {
		if l.peekN(1) == '"' && l.peekN(2) == '"' {
			return l.scanTextBlock(startPos)
		}
		return l.scanStringLiteral(startPos)
	}

	return l.scanOperator(startPos)
}

func (l *Lexer) scanWhitespace(start Position) Token {
	for isWhitespace(l.peek()) {
		l.advance()
	}
	return l.token(TokenWhitespace, start)
}

func (l *Lexer) scanLineComment(start Position) Token {
	l.advanceN(2)
	for !l.atEOF() && l.peek() != '\n' && l.peek() != '\r' {
		l.advance()
	}
	return l.token(TokenLineComment, start)
}

func (l *Lexer) scanBlockComment(start Position) Token {
	l.advanceN(2)
	for !l.atEOF() {
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advanceN(2)
			return l.token(TokenComment, start)
		}
		l.advance()
	}
	return l.token(TokenError, start)
}

func (l *Lexer) scanIdentOrKeyword(start Position) Token {
	for !l.atEOF() {
		r, size := l.peekRune()
		if !isIdentPart(r) || (r == utf8.RuneError && size <= 1) {
			break
		}
		l.advanceN(size)
	}
	tok := l.token(TokenIdent, start)
	tok.Kind = LookupKeyword(tok.Literal)
	return tok
}

// scanNumber implements the numeric literal grammar. Where alternatives
// overlap the longest match wins, and a digit sequence without '.',
// exponent or suffix is always an int: "0x1f" is an int, "1f" is a float,
// "1d" and "1." are doubles.
func (l *Lexer) scanNumber(start Position) Token {
	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') {
		return l.scanHexNumber(start)
	}
	if l.peek() == '0' && (l.peekN(1) == 'b' || l.peekN(1) == 'B') {
		return l.scanBinaryNumber(start)
	}

	fractional := false
	l.skipDigits(isDigit)

	if l.peek() == '.' && l.peekN(1) != '.' && !isFractionStop(l.peekN(1)) {
		fractional = true
		l.advance()
		l.skipDigits(isDigit)
	}

	if l.peek() == 'e' || l.peek() == 'E' {
		fractional = true
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		if !isDigit(l.peek()) {
			return l.token(TokenError, start)
		}
		l.skipDigits(isDigit)
	}

	switch l.peek() {
	case 'f', 'F':
		l.advance()
		return l.token(TokenFloatLiteral, start)
	case 'd', 'D':
		l.advance()
		return l.token(TokenDoubleLiteral, start)
	case 'l', 'L':
		if !fractional {
			l.advance()
			return l.token(TokenLongLiteral, start)
		}
	}

	if fractional {
		return l.token(TokenDoubleLiteral, start)
	}
	return l.token(TokenIntLiteral, start)
}

// isFractionStop reports whether ch after "1." means the dot is not part of
// the number. Letters other than exponent and suffix characters start a
// member access, which is never valid on a literal but must still lex.
func isFractionStop(ch byte) bool {
	switch ch {
	case 'e', 'E', 'f', 'F', 'd', 'D':
		return false
	}
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch >= utf8.RuneSelf
}

// skipDigits consumes digits accepted by accept, with underscores among
// them, and returns the number of digits consumed.
func (l *Lexer) skipDigits(accept func(byte) bool) int {
	n := 0
	for {
		switch ch := l.peek(); {
		case accept(ch):
			n++
		case ch != '_':
			return n
		}
		l.advance()
	}
}

// scanHexNumber scans hexadecimal integers and floats. At least one hex
// digit is required before or after the point.
func (l *Lexer) scanHexNumber(start Position) Token {
	l.advanceN(2)
	digits := l.skipDigits(isHexDigit)
	floating := false
	if l.peek() == '.' {
		floating = true
		l.advance()
		digits += l.skipDigits(isHexDigit)
	}

	kind := TokenIntLiteral
	switch {
	case l.peek() == 'p' || l.peek() == 'P':
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		if !isDigit(l.peek()) {
			return l.token(TokenError, start)
		}
		l.skipDigits(isDigit)
		kind = TokenDoubleLiteral
		switch l.peek() {
		case 'f', 'F':
			l.advance()
			kind = TokenFloatLiteral
		case 'd', 'D':
			l.advance()
		}
	case floating:
		// A hexadecimal fraction needs a binary exponent.
		kind = TokenError
	case l.peek() == 'l' || l.peek() == 'L':
		l.advance()
		kind = TokenLongLiteral
	}
	if digits == 0 {
		kind = TokenError
	}
	return l.token(kind, start)
}

func (l *Lexer) scanBinaryNumber(start Position) Token {
	l.advanceN(2)
	digits := l.skipDigits(func(ch byte) bool { return ch == '0' || ch == '1' })
	kind := TokenIntLiteral
	if l.peek() == 'l' || l.peek() == 'L' {
		l.advance()
		kind = TokenLongLiteral
	}
	if digits == 0 {
		kind = TokenError
	}
	return l.token(kind, start)
}

// scanCharLiteral accepts exactly one character or escape sequence between
// the quotes. Anything else up to a closing quote on the same line becomes
// one error token.
func (l *Lexer) scanCharLiteral(start Position) Token {
	l.advance()
	ok := true
	switch l.peek() {
	case '\'', '\n', '\r':
		ok = false
	case '\\':
		ok = l.scanEscape()
	default:
		if l.atEOF() {
			return l.token(TokenError, start)
		}
		_, size := l.peekRune()
		l.advanceN(size)
	}
	if ok && l.peek() == '\'' {
		l.advance()
		return l.token(TokenCharLiteral, start)
	}
	for !l.atEOF() && l.peek() != '\'' && l.peek() != '\n' && l.peek() != '\r' {
		l.advance()
	}
	if l.peek() == '\'' {
		l.advance()
	}
	return l.token(TokenError, start)
}

// scanEscape consumes a backslash escape and reports whether it is one of
// the simple escapes, an octal escape or a unicode escape.
func (l *Lexer) scanEscape() bool {
	l.advance()
	switch ch := l.peek(); {
	case ch == 'b' || ch == 't' || ch == 'n' || ch == 'f' || ch == 'r' || ch == 's' ||
		ch == '"' || ch == '\'' || ch == '\\':
		l.advance()
		return true
	case ch == 'u':
		for l.peek() == 'u' {
			l.advance()
		}
		for i := 0; i < 4; i++ {
			if !isHexDigit(l.peek()) {
				return false
			}
			l.advance()
		}
		return true
	case ch >= '0' && ch <= '7':
		limit := 2
		if ch <= '3' {
			limit = 3
		}
		for i := 0; i < limit && l.peek() >= '0' && l.peek() <= '7'; i++ {
			l.advance()
		}
		return true
	}
	return false
}

func (l *Lexer) scanStringLiteral(start Position) Token {
	l.advance()
	for !l.atEOF() && l.peek() != '"' {
		if l.peek() == '\n' || l.peek() == '\r' {
			return l.token(TokenError, start)
		}
		if l.peek() == '\\' {
			l.advance()
		}
		l.advance()
	}
	if l.peek() != '"' {
		return l.token(TokenError, start)
	}
	l.advance()
	return l.token(TokenStringLiteral, start)
}

func (l *Lexer) scanTextBlock(start Position) Token {
	l.advanceN(3)
	for !l.atEOF() {
		if l.peek() == '"' && l.peekN(1) == '"' && l.peekN(2) == '"' {
			l.advanceN(3)
			return l.token(TokenStringLiteral, start)
		}
		if l.peek() == '\\' {
			l.advance()
		}
		l.advance()
	}
	return l.token(TokenError, start)
}

func (l *Lexer) scanOperator(start Position) Token {
	ch := l.peek()

	switch ch {
	case '(':
		l.advance()
		return l.token(TokenLParen, start)
	case ')':
		l.advance()
		return l.token(TokenRParen, start)
	case '{':
		l.advance()
		return l.token(TokenLBrace, start)
	case '}':
		l.advance()
		return l.token(TokenRBrace, start)
	case '[':
		l.advance()
		return l.token(TokenLBracket, start)
	case ']':
		l.advance()
		return l.token(TokenRBracket, start)
	case ';':
		l.advance()
		return l.token(TokenSemicolon, start)
	case ',':
		l.advance()
		return l.token(TokenComma, start)
	case '@':
		l.advance()
		return l.token(TokenAt, start)
	case '~':
		l.advance()
		return l.token(TokenBitNot, start)
	case '?':
		l.advance()
		return l.token(TokenQuestion, start)
	case '<':
		l.advance()
		return l.token(TokenLT, start)
	case '>':
		l.advance()
		return l.token(TokenGT, start)

	case '.':
		if l.peekN(1) == '.' && l.peekN(2) == '.' {
			l.advanceN(3)
			return l.token(TokenEllipsis, start)
		}
		l.advance()
		return l.token(TokenDot, start)

	case ':':
		if l.peekN(1) == ':' {
			l.advanceN(2)
			return l.token(TokenColonColon, start)
		}
		l.advance()
		return l.token(TokenColon, start)

	case '=':
		return l.oneOrTwo('=', TokenAssign, TokenEQ, start)
	case '!':
		return l.oneOrTwo('=', TokenNot, TokenNE, start)
	case '^':
		return l.oneOrTwo('=', TokenBitXor, TokenXorAssign, start)
	case '*':
		return l.oneOrTwo('=', TokenStar, TokenStarAssign, start)
	case '/':
		return l.oneOrTwo('=', TokenSlash, TokenSlashAssign, start)
	case '%':
		return l.oneOrTwo('=', TokenPercent, TokenPercentAssign, start)

	case '&':
		if l.peekN(1) == '&' {
			l.advanceN(2)
			return l.token(TokenAnd, start)
		}
		return l.oneOrTwo('=', TokenBitAnd, TokenAndAssign, start)

	case '|':
		if l.peekN(1) == '|' {
			l.advanceN(2)
			return l.token(TokenOr, start)
		}
		return l.oneOrTwo('=', TokenBitOr, TokenOrAssign, start)

	case '+':
		if l.peekN(1) == '+' {
			l.advanceN(2)
			return l.token(TokenIncrement, start)
		}
		return l.oneOrTwo('=', TokenPlus, TokenPlusAssign, start)

	case '-':
		if l.peekN(1) == '-' {
			l.advanceN(2)
			return l.token(TokenDecrement, start)
		}
		if l.peekN(1) == '>' {
			l.advanceN(2)
			return l.token(TokenArrow, start)
		}
		return l.oneOrTwo('=', TokenMinus, TokenMinusAssign, start)
	}

	l.advance()
	return l.token(TokenError, start)
}

func (l *Lexer) oneOrTwo(second byte, one, two TokenKind, start Position) Token {
	if l.peekN(1) == second {
		l.advanceN(2)
		return l.token(two, start)
	}
	l.advance()
	return l.token(one, start)
}

func (l *Lexer) token(kind TokenKind, start Position) Token {
	end := l.Position()
	return Token{
		Kind:    kind,
		Span:    Span{Start: start, End: end},
		Literal: l.input[start.Offset:end.Offset],
	}
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// isIdentStart follows Character.isJavaIdentifierStart. Characters outside
// the Basic Multilingual Plane arrive as a single decoded rune, so the
// surrogate-pair rule of the UTF-16 definition needs no special casing.
func isIdentStart(r rune) bool {
	if r < utf8.RuneSelf {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$'
	}
	return unicode.IsLetter(r) ||
		unicode.Is(unicode.Sc, r) ||
		unicode.Is(unicode.Pc, r) ||
		unicode.Is(unicode.Nl, r)
}

// isIdentPart follows Character.isJavaIdentifierPart.
func isIdentPart(r rune) bool {
	if r < utf8.RuneSelf {
		return isIdentStart(r) || (r >= '0' && r <= '9') || (r <= 0x08) || (r >= 0x0e && r <= 0x1b) || r == 0x7f
	}
	return isIdentStart(r) ||
		unicode.IsDigit(r) ||
		unicode.Is(unicode.Mn, r) ||
		unicode.Is(unicode.Mc, r) ||
		unicode.Is(unicode.Cf, r)
}
