// Package format prints quill programs in canonical form.
package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/chazu/quill/ast"
	"github.com/chazu/quill/builder"
	"github.com/chazu/quill/grammar"
)

// ---------------------------------------------------------------------------
// quill fmt: canonical source formatter
// ---------------------------------------------------------------------------

const maxLineWidth = 80

// Source parses src and returns it canonically formatted. This is the
// library-level entry point; it does not touch the filesystem.
//
// Comments survive formatting. A comment between two assignments (or before
// a block's result) stays there; one that ends the line of an assignment
// stays at the end of that line. Comments from inside an expression that is
// joined onto one line move to just after it. Runs of blank lines between
// assignments collapse to one.
func Source(src string) (string, error) {
	p := grammar.NewParser(src)
	pairs, err := p.ParseProgram()
	if err != nil {
		return "", err
	}
	prog, err := builder.BuildProgram(pairs)
	if err != nil {
		return "", err
	}
	comments := p.Comments()
	f := &formatter{
		trivia:   true,
		comments: comments,
		done:     make([]bool, len(comments)),
	}
	return f.program(prog), nil
}

// Program renders prog as canonical source: one top-level assignment per
// line, terminated by a newline. An empty program renders as "". Spans are
// ignored, so prog may come from Decode.
func Program(prog *ast.Program) string {
	return (&formatter{}).program(prog)
}

func pad(indent int) string {
	return strings.Repeat("  ", indent)
}

// formatter renders one program. With trivia set it also places the source's
// comments and blank lines, using the spans of the nodes it prints.
type formatter struct {
	trivia   bool
	comments []grammar.Comment
	done     []bool // comments already written
	lastLine int    // source line of the last thing written
}

func (f *formatter) program(prog *ast.Program) string {
	body := f.newBody(0, 0)
	for i, a := range prog.Assignments {
		next := math.MaxInt
		if i+1 < len(prog.Assignments) {
			next = prog.Assignments[i+1].Span().Start.Offset
		}
		body.node(a.Span(), next, func() string { return f.assignment(a, 0) })
	}
	body.comments(math.MaxInt)
	return body.sb.String()
}

func (f *formatter) assignment(a *ast.Assignment, indent int) string {
	prefix := a.Identifier.Name + " = "
	return prefix + f.expr(a.Expression, indent, len(pad(indent))+len(prefix))
}

// expr renders e starting at column col of a line indented by indent.
func (f *formatter) expr(e ast.Expr, indent, col int) string {
	switch e := e.(type) {
	case *ast.Number:
		return strconv.FormatInt(e.Value, 10)
	case *ast.Identifier:
		return e.Name
	case *ast.FunctionCall:
		return f.call(e, indent, col)
	case *ast.FunctionDefinition:
		names := make([]string, len(e.Parameters))
		for i, p := range e.Parameters {
			names[i] = p.Name
		}
		head := "|" + strings.Join(names, ", ") + "| "
		return head + f.expr(e.Body, indent, col+len(head))
	case *ast.Block:
		return f.block(e, indent, col)
	}
	return ""
}

// call keeps arguments on one line when they fit, otherwise puts one
// argument per line with a trailing comma.
func (f *formatter) call(c *ast.FunctionCall, indent, col int) string {
	args := make([]string, len(c.Arguments))
	for i, arg := range c.Arguments {
		args[i] = f.expr(arg, indent+1, len(pad(indent+1)))
	}

	oneLine := c.FunctionName.Name + "(" + strings.Join(args, ", ") + ")"
	if !strings.Contains(oneLine, "\n") && col+len(oneLine) <= maxLineWidth {
		return oneLine
	}

	var sb strings.Builder
	sb.WriteString(c.FunctionName.Name)
	sb.WriteString("(\n")
	for _, arg := range args {
		sb.WriteString(pad(indent + 1))
		sb.WriteString(arg)
		sb.WriteString(",\n")
	}
	sb.WriteString(pad(indent))
	sb.WriteString(")")
	return sb.String()
}

func (f *formatter) block(b *ast.Block, indent, col int) string {
	span := b.Span()
	var tail string
	if len(b.Assignments) == 0 && !f.pending(span) {
		tail = f.expr(b.Expression, indent+1, len(pad(indent+1)))
		if !strings.Contains(tail, "\n") && col+len(tail)+4 <= maxLineWidth {
			return "{ " + tail + " }"
		}
	}

	body := f.newBody(indent+1, span.Start.Offset)
	for i, a := range b.Assignments {
		next := b.Expression.Span().Start.Offset
		if i+1 < len(b.Assignments) {
			next = b.Assignments[i+1].Span().Start.Offset
		}
		body.node(a.Span(), next, func() string { return f.assignment(a, indent+1) })
	}
	body.node(b.Expression.Span(), span.End.Offset, func() string {
		if tail != "" {
			return tail
		}
		return f.expr(b.Expression, indent+1, len(pad(indent+1)))
	})
	body.comments(span.End.Offset)

	return "{\n" + body.sb.String() + pad(indent) + "}"
}

// pending reports whether an unwritten comment starts inside span.
func (f *formatter) pending(span ast.Span) bool {
	for i, c := range f.comments {
		if !f.done[i] && c.Span.Start.Offset >= span.Start.Offset && c.Span.Start.Offset < span.End.Offset {
			return true
		}
	}
	return false
}

// trailing returns the index of the comment that ends the line of a node
// ending at end, or -1. The comment must start before limit.
func (f *formatter) trailing(end ast.Position, limit int) int {
	for i, c := range f.comments {
		if f.done[i] || c.Span.Start.Offset < end.Offset {
			continue
		}
		if c.Span.Start.Offset < limit && c.Span.Start.Line == end.Line {
			return i
		}
		return -1
	}
	return -1
}

// ---------------------------------------------------------------------------
// Line bodies
// ---------------------------------------------------------------------------

// body collects the lines of a program or of a multi-line block.
type body struct {
	f      *formatter
	sb     strings.Builder
	indent int
	start  int // offset where the body begins in the source
	first  bool
}

func (f *formatter) newBody(indent, start int) *body {
	return &body{f: f, indent: indent, start: start, first: true}
}

// open starts a line for something beginning on source line line, keeping
// one blank line where the source had any.
func (b *body) open(line int) {
	if b.f.trivia && !b.first && line > b.f.lastLine+1 {
		b.sb.WriteByte('\n')
	}
	b.first = false
	b.sb.WriteString(pad(b.indent))
}

// comments writes the unwritten comments that start inside the body before
// offset end, one per line.
func (b *body) comments(end int) {
	for i, c := range b.f.comments {
		if b.f.done[i] || c.Span.Start.Offset < b.start || c.Span.Start.Offset >= end {
			continue
		}
		b.f.done[i] = true
		b.open(c.Span.Start.Line)
		b.sb.WriteString(c.Text)
		b.sb.WriteByte('\n')
		// A comment moved out of a joined expression can sit above lastLine.
		b.f.lastLine = max(b.f.lastLine, c.Span.End.Line)
	}
}

// node writes the comments before span, then the line(s) render produces,
// then a comment that shares the node's last line and starts before limit.
func (b *body) node(span ast.Span, limit int, render func() string) {
	b.comments(span.Start.Offset)
	b.open(span.Start.Line)
	b.sb.WriteString(render())
	b.f.lastLine = span.End.Line
	if i := b.f.trailing(span.End, limit); i >= 0 {
		b.f.done[i] = true
		b.sb.WriteByte(' ')
		b.sb.WriteString(b.f.comments[i].Text)
	}
	b.sb.WriteByte('\n')
}
