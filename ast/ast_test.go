package ast

import (
	"strings"
	"testing"
)

func sp(start, end int) Span {
	return Span{Start: Position{Offset: start, Line: 1, Column: start + 1}, End: Position{Offset: end, Line: 1, Column: end + 1}}
}

// sample builds the tree for: f = |a| g(a, { b = 1 b })
func sample() *Program {
	a := &Identifier{SpanVal: sp(5, 6), Name: "a"}
	argA := &Identifier{SpanVal: sp(10, 11), Name: "a"}
	b := &Assignment{
		SpanVal:    sp(15, 20),
		Identifier: &Identifier{SpanVal: sp(15, 16), Name: "b"},
		Expression: &Number{SpanVal: sp(19, 20), Value: 1},
	}
	block := &Block{SpanVal: sp(13, 24), Assignments: []*Assignment{b}, Expression: &Identifier{SpanVal: sp(21, 22), Name: "b"}}
	call := &FunctionCall{
		SpanVal:      sp(8, 25),
		FunctionName: &Identifier{SpanVal: sp(8, 9), Name: "g"},
		Arguments:    []Expr{argA, block},
	}
	def := &FunctionDefinition{SpanVal: sp(4, 25), Parameters: []*Identifier{a}, Body: call}
	return &Program{
		SpanVal: sp(0, 25),
		Assignments: []*Assignment{{
			SpanVal:    sp(0, 25),
			Identifier: &Identifier{SpanVal: sp(0, 1), Name: "f"},
			Expression: def,
		}},
	}
}

func TestInspectSourceOrder(t *testing.T) {
	var kinds []string
	Inspect(sample(), func(n Node) bool {
		if n != nil {
			kinds = append(kinds, KindOf(n))
		}
		return true
	})

	want := []string{
		"program", "assignment", "identifier", "function_definition", "identifier",
		"function_call", "identifier", "identifier", "block", "assignment",
		"identifier", "number", "identifier",
	}
	if strings.Join(kinds, " ") != strings.Join(want, " ") {
		t.Errorf("visit order:\n got  %v\n want %v", kinds, want)
	}
}

func TestInspectSkipsChildren(t *testing.T) {
	count := 0
	Inspect(sample(), func(n Node) bool {
		if n == nil {
			return false
		}
		count++
		_, isCall := n.(*FunctionCall)
		return !isCall
	})
	// program, assignment, f, def, a, call
	if count != 6 {
		t.Errorf("visited %d nodes, want 6", count)
	}
}

func TestNodeAt(t *testing.T) {
	prog := sample()
	tests := []struct {
		offset int
		kind   string
	}{
		{0, "identifier"},
		{3, "assignment"},
		{4, "function_definition"},
		{12, "function_call"},
		{19, "number"},
		{23, "block"},
		{99, ""},
	}
	for _, tc := range tests {
		n := NodeAt(prog, tc.offset)
		got := ""
		if n != nil {
			got = KindOf(n)
		}
		if got != tc.kind {
			t.Errorf("NodeAt(%d) = %q, want %q", tc.offset, got, tc.kind)
		}
	}
}

func TestSpanText(t *testing.T) {
	src := "hello world"
	if got := sp(6, 11).Text(src); got != "world" {
		t.Errorf("Text = %q, want world", got)
	}
	if got := sp(6, 40).Text(src); got != "" {
		t.Errorf("out of range Text = %q, want empty", got)
	}
	if !sp(0, 11).Covers(sp(6, 11)) {
		t.Error("Covers = false, want true")
	}
	if sp(6, 11).Covers(sp(0, 11)) {
		t.Error("Covers = true, want false")
	}
	if sp(2, 5).String() != "2..5" {
		t.Errorf("String = %q", sp(2, 5).String())
	}
}
