// Package ast defines the typed abstract syntax tree for quill programs.
//
// Nodes are built bottom-up by package builder and never mutated afterwards.
// Every node records the span of source text it was derived from as a pair of
// byte offsets, so a tree stays valid independently of the buffer it was
// built from.
package ast

import "fmt"

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number, counted in runes
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span represents a half-open range in source code.
type Span struct {
	Start Position
	End   Position
}

// Text returns the substring of src covered by the span, or "" when the span
// does not fit inside src.
func (s Span) Text(src string) string {
	if s.Start.Offset < 0 || s.End.Offset > len(src) || s.Start.Offset > s.End.Offset {
		return ""
	}
	return src[s.Start.Offset:s.End.Offset]
}

// Contains reports whether offset falls within the span. The end offset is
// included so a cursor sitting right after a token still hits it.
func (s Span) Contains(offset int) bool {
	return s.Start.Offset <= offset && offset <= s.End.Offset
}

// Covers reports whether other lies entirely within s.
func (s Span) Covers(other Span) bool {
	return s.Start.Offset <= other.Start.Offset && other.End.Offset <= s.End.Offset
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start.Offset, s.End.Offset)
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Span() Span
	node() // marker method
}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Expr is the interface for expression nodes. The set of implementations is
// closed: Number, Identifier, FunctionCall, FunctionDefinition and Block.
type Expr interface {
	Node
	expr() // marker method
}

// Identifier represents a name.
type Identifier struct {
	SpanVal Span
	Name    string
}

func (n *Identifier) Span() Span { return n.SpanVal }
func (n *Identifier) node()      {}
func (n *Identifier) expr()      {}

// Number represents an integer literal.
type Number struct {
	SpanVal Span
	Value   int64
}

func (n *Number) Span() Span { return n.SpanVal }
func (n *Number) node()      {}
func (n *Number) expr()      {}

// FunctionCall represents name(arg, arg).
type FunctionCall struct {
	SpanVal      Span
	FunctionName *Identifier
	Arguments    []Expr
}

func (n *FunctionCall) Span() Span { return n.SpanVal }
func (n *FunctionCall) node()      {}
func (n *FunctionCall) expr()      {}

// FunctionDefinition represents |a, b| body.
type FunctionDefinition struct {
	SpanVal    Span
	Parameters []*Identifier
	Body       Expr
}

func (n *FunctionDefinition) Span() Span { return n.SpanVal }
func (n *FunctionDefinition) node()      {}
func (n *FunctionDefinition) expr()      {}

// Block represents local assignments followed by a single result expression.
type Block struct {
	SpanVal     Span
	Assignments []*Assignment
	Expression  Expr // tail
}

func (n *Block) Span() Span { return n.SpanVal }
func (n *Block) node()      {}
func (n *Block) expr()      {}

// ---------------------------------------------------------------------------
// Bindings and top-level structure
// ---------------------------------------------------------------------------

// Assignment binds one name to one expression.
type Assignment struct {
	SpanVal    Span
	Identifier *Identifier
	Expression Expr
}

func (n *Assignment) Span() Span { return n.SpanVal }
func (n *Assignment) node()      {}

// Program is the root of a tree; assignments appear in execution order.
type Program struct {
	SpanVal     Span
	Assignments []*Assignment
}

func (n *Program) Span() Span { return n.SpanVal }
func (n *Program) node()      {}

// KindOf returns a short lowercase name for n's node type.
func KindOf(n Node) string {
	switch n.(type) {
	case *Identifier:
		return "identifier"
	case *Number:
		return "number"
	case *FunctionCall:
		return "function_call"
	case *FunctionDefinition:
		return "function_definition"
	case *Block:
		return "block"
	case *Assignment:
		return "assignment"
	case *Program:
		return "program"
	}
	return fmt.Sprintf("%T", n)
}
