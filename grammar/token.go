package grammar

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the quill lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenNumber     // 42, -7
	TokenIdentifier // foo, _bar, x1

	// Delimiters
	TokenAssign // =
	TokenComma  // ,
	TokenBar    // |
	TokenLParen // (
	TokenRParen // )
	TokenLBrace // {
	TokenRBrace // }
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenError:      "ERROR",
	TokenNumber:     "NUMBER",
	TokenIdentifier: "IDENTIFIER",
	TokenAssign:     "=",
	TokenComma:      ",",
	TokenBar:        "|",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenLBrace:     "{",
	TokenRBrace:     "}",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // the raw text, or the message for TokenError
	Pos     Position // start position
	End     Position // position just past the last byte
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	if len(t.Literal) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Literal[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// describe renders a token for use in syntax error messages.
func (t Token) describe() string {
	switch t.Type {
	case TokenEOF:
		return "end of input"
	case TokenNumber, TokenIdentifier:
		return fmt.Sprintf("%s %q", t.Type, t.Literal)
	}
	return fmt.Sprintf("%q", t.Literal)
}
