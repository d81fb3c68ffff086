package grammar

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for quill source
// ---------------------------------------------------------------------------

// Lexer tokenizes quill source code.
type Lexer struct {
	input string
	pos   int  // offset of ch
	width int  // byte width of ch, 0 at end of input
	ch    rune // current character
	line  int  // line of ch (1-based)
	col   int  // column of ch (1-based, in runes)

	comments []Comment
}

// Comment is a # line comment. Text runs from the # to the end of the line,
// trailing whitespace removed.
type Comment struct {
	Text string
	Span Span
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   1,
	}
	l.decode()
	return l
}

func (l *Lexer) decode() {
	if l.pos >= len(l.input) {
		l.ch, l.width = 0, 0
		return
	}
	l.ch, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
}

// readChar advances past the current character.
func (l *Lexer) readChar() {
	if l.width == 0 {
		return
	}
	if l.ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos += l.width
	l.decode()
}

// peekChar returns the character after the current one without consuming it.
func (l *Lexer) peekChar() rune {
	next := l.pos + l.width
	if l.width == 0 || next >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[next:])
	return r
}

func (l *Lexer) atEOF() bool {
	return l.width == 0
}

// position returns the position of the current character.
func (l *Lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

// Comments returns the comments skipped so far, in source order.
func (l *Lexer) Comments() []Comment {
	return l.comments
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	pos := l.position()

	if l.atEOF() {
		return Token{Type: TokenEOF, Pos: pos, End: pos}
	}

	switch {
	case l.ch == '=':
		return l.single(TokenAssign, pos)
	case l.ch == ',':
		return l.single(TokenComma, pos)
	case l.ch == '|':
		return l.single(TokenBar, pos)
	case l.ch == '(':
		return l.single(TokenLParen, pos)
	case l.ch == ')':
		return l.single(TokenRParen, pos)
	case l.ch == '{':
		return l.single(TokenLBrace, pos)
	case l.ch == '}':
		return l.single(TokenRBrace, pos)

	case isDigit(l.ch):
		return l.readNumber(pos)

	case l.ch == '-' && isDigit(l.peekChar()):
		return l.readNumber(pos)

	case isLetter(l.ch) || l.ch == '_':
		return l.readIdentifier(pos)

	default:
		ch := l.ch
		l.readChar()
		return Token{Type: TokenError, Literal: fmt.Sprintf("unexpected character %q", ch), Pos: pos, End: l.position()}
	}
}

func (l *Lexer) single(t TokenType, pos Position) Token {
	start := l.pos
	l.readChar()
	return Token{Type: t, Literal: l.input[start:l.pos], Pos: pos, End: l.position()}
}

// skipWhitespaceAndComments skips whitespace and # line comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		if l.ch == '#' {
			start, begin := l.position(), l.pos
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
			text := strings.TrimRight(l.input[begin:l.pos], " \t\r")
			end := start
			end.Offset += len(text)
			end.Column += utf8.RuneCountInString(text)
			l.comments = append(l.comments, Comment{Text: text, Span: Span{Start: start, End: end}})
			continue
		}

		break
	}
}

// readNumber reads an optionally negative run of decimal digits. Range
// checking is left to whoever converts the literal.
func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	return Token{Type: TokenNumber, Literal: l.input[start:l.pos], Pos: pos, End: l.position()}
}

func (l *Lexer) readIdentifier(pos Position) Token {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return Token{Type: TokenIdentifier, Literal: l.input[start:l.pos], Pos: pos, End: l.position()}
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
