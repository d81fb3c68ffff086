// Package builder converts the tagged occurrence tree produced by package
// grammar into a typed AST.
//
// Each builder validates the tag of the occurrence it is handed, consumes
// that occurrence's children in a fixed order, and recursively invokes other
// builders. The first violation aborts construction; no partial tree is
// returned.
package builder

import (
	"github.com/chazu/quill/ast"
	"github.com/chazu/quill/grammar"
)

// Options configures a Builder.
type Options struct {
	// MaxDepth bounds expression nesting. Values <= 0 select DefaultMaxDepth.
	MaxDepth int
}

// DefaultMaxDepth matches the grammar's own nesting limit.
const DefaultMaxDepth = grammar.DefaultMaxDepth

// DefaultOptions returns the options used by the package-level functions.
func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth}
}

// Builder turns occurrence trees into ASTs. It holds no per-call state and is
// safe for concurrent use.
type Builder struct {
	opts Options
}

// New creates a Builder.
func New(opts Options) *Builder {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Builder{opts: opts}
}

// Options returns the effective options.
func (b *Builder) Options() Options {
	return b.opts
}

// Build recognizes src with the grammar engine and builds its AST. Grammar
// errors are returned unmodified.
func (b *Builder) Build(src string) (*ast.Program, error) {
	pairs, err := grammar.NewParser(src).WithMaxDepth(b.opts.MaxDepth).ParseProgram()
	if err != nil {
		return nil, err
	}
	return b.BuildProgram(pairs)
}

// BuildProgram builds the AST root from the grammar engine's top-level
// result, which must be exactly one program occurrence.
func (b *Builder) BuildProgram(pairs []*grammar.Pair) (*ast.Program, error) {
	if len(pairs) != 1 {
		return nil, &TopLevelArityError{Count: len(pairs)}
	}
	w := &walker{maxDepth: b.opts.MaxDepth}
	return w.program(pairs[0])
}

// Build runs Builder.Build with DefaultOptions.
func Build(src string) (*ast.Program, error) {
	return New(DefaultOptions()).Build(src)
}

// BuildProgram runs Builder.BuildProgram with DefaultOptions.
func BuildProgram(pairs []*grammar.Pair) (*ast.Program, error) {
	return New(DefaultOptions()).BuildProgram(pairs)
}

// walker carries the nesting depth of one BuildProgram call.
type walker struct {
	depth    int
	maxDepth int
}

func (w *walker) program(p *grammar.Pair) (*ast.Program, error) {
	if err := expectRule(p, grammar.RuleProgram); err != nil {
		return nil, err
	}

	assignments := make([]*ast.Assignment, 0, len(p.Children))
	for _, child := range p.Children {
		if child.Rule != grammar.RuleAssignment {
			return nil, structural(child, "program may only contain assignments")
		}
		a, err := w.assignment(child)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	return &ast.Program{SpanVal: convertSpan(p.Span), Assignments: assignments}, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// cursor walks a parent's children in order.
type cursor struct {
	parent *grammar.Pair
	i      int
}

func childrenOf(p *grammar.Pair) *cursor {
	return &cursor{parent: p}
}

// peek returns the next child without consuming it, or nil.
func (c *cursor) peek() *grammar.Pair {
	if c.i >= len(c.parent.Children) {
		return nil
	}
	return c.parent.Children[c.i]
}

// next consumes and returns the next child, or nil.
func (c *cursor) next() *grammar.Pair {
	p := c.peek()
	if p != nil {
		c.i++
	}
	return p
}

// require consumes the next child or reports it missing under context.
func (c *cursor) require(context string) (*grammar.Pair, error) {
	p := c.next()
	if p == nil {
		return nil, &MissingChildError{Context: context, SpanVal: convertSpan(c.parent.Span)}
	}
	return p, nil
}

// end reports leftover children as a structural error.
func (c *cursor) end(msg string) error {
	if extra := c.peek(); extra != nil {
		return structural(extra, msg)
	}
	return nil
}

func expectRule(p *grammar.Pair, rule grammar.Rule) error {
	if p.Rule != rule {
		return &RuleMismatchError{
			Expected: rule,
			Actual:   p.Rule,
			Text:     p.Text(),
			SpanVal:  convertSpan(p.Span),
		}
	}
	return nil
}

func structural(p *grammar.Pair, msg string) error {
	return &StructuralError{Msg: msg, Rule: p.Rule, Text: p.Text(), SpanVal: convertSpan(p.Span)}
}

func convertSpan(s grammar.Span) ast.Span {
	return ast.Span{Start: ast.Position(s.Start), End: ast.Position(s.End)}
}
