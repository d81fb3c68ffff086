package grammar

import "fmt"

// SyntaxError reports source text the grammar cannot recognize. It is
// produced before any occurrence tree exists.
type SyntaxError struct {
	Pos Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Span returns a zero-width span at the error position.
func (e *SyntaxError) Span() Span {
	return Span{Start: e.Pos, End: e.Pos}
}
