package format

import (
	"strings"
	"testing"

	"github.com/chazu/quill/builder"
	"github.com/chazu/quill/hash"
)

func TestFormatCanonical(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"x=1", "x = 1\n"},
		{"x   =   foo( 1 ,2 )   y=bar()", "x = foo(1, 2)\ny = bar()\n"},
		{"f=|a,b|a", "f = |a, b| a\n"},
		{"f = ||   7", "f = || 7\n"},
		{"r = {5}", "r = { 5 }\n"},
		{"r = { a = 1 b = 2 a }", "r = {\n  a = 1\n  b = 2\n  a\n}\n"},
		{
			"main = |n| { m = { k = n k } twice(m) }",
			"main = |n| {\n  m = {\n    k = n\n    k\n  }\n  twice(m)\n}\n",
		},
		{"x = f(1,) # comment\n", "x = f(1) # comment\n"},
	}

	for _, tc := range tests {
		got, err := Source(tc.input)
		if err != nil {
			t.Errorf("format %q: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("format %q:\n got  %q\n want %q", tc.input, got, tc.want)
		}
	}
}

func TestFormatKeepsComments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"only comments", "# just a note\n", "# just a note\n"},
		{
			"leading and trailing",
			"# header\n\n\n# doc\nx=1\n\n\n\ny = 2   # two\n# end\n",
			"# header\n\n# doc\nx = 1\n\ny = 2 # two\n# end\n",
		},
		{
			"inside block",
			"r = {\n  # first\n  a = 1 # one\n\n  a\n  # last\n}\n",
			"r = {\n  # first\n  a = 1 # one\n\n  a\n  # last\n}\n",
		},
		{
			"block kept open for a comment",
			"r = { # why\n 5 }",
			"r = {\n  # why\n  5\n}\n",
		},
		{
			"inside a joined call",
			"x = f(1, # one\n  2)\ny = 3\n",
			"x = f(1, 2)\n# one\ny = 3\n",
		},
		{
			"same line as a later assignment",
			"a = 1 b = 2 # about b\n",
			"a = 1\nb = 2 # about b\n",
		},
		{"crlf", "x = 1 # note\r\n", "x = 1 # note\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Source(tc.input)
			if err != nil {
				t.Fatalf("format %q: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("format %q:\n got  %q\n want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestFormatCountsAssignmentPrefix(t *testing.T) {
	src := "some_long_binding_name = compute(alpha_argument, beta_argument, gamma_argument, delta_arg)"
	want := "some_long_binding_name = compute(\n" +
		"  alpha_argument,\n" +
		"  beta_argument,\n" +
		"  gamma_argument,\n" +
		"  delta_arg,\n" +
		")\n"

	got, err := Source(src)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	for _, line := range strings.Split(got, "\n") {
		if len(line) > maxLineWidth {
			t.Errorf("line exceeds %d columns: %q", maxLineWidth, line)
		}
	}

	// The same call fits once the prefix is short.
	short, err := Source("x = compute(alpha_argument, beta_argument, gamma_argument, delta_arg)")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(short, "\n") != 1 {
		t.Errorf("short binding should stay on one line:\n%s", short)
	}
}

func TestProgramDropsComments(t *testing.T) {
	prog, err := builder.Build("# gone\nx = 1 # also gone\n\n\ny = x")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := Program(prog), "x = 1\ny = x\n"; got != want {
		t.Errorf("Program = %q, want %q", got, want)
	}
}

func TestFormatLongCallBreaks(t *testing.T) {
	args := make([]string, 12)
	for i := range args {
		args[i] = "argument_number_" + string(rune('a'+i))
	}
	src := "x = call(" + strings.Join(args, ", ") + ")"

	got, err := Source(src)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != len(args)+2 {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(args)+2, got)
	}
	if lines[0] != "x = call(" || lines[len(lines)-1] != ")" {
		t.Errorf("unexpected framing:\n%s", got)
	}
	if lines[1] != "  argument_number_a," {
		t.Errorf("first argument line = %q", lines[1])
	}
}

func TestFormatPreservesTreeAndIsIdempotent(t *testing.T) {
	inputs := []string{
		"a = 1 b = a",
		"f = |x, y| g(x, { z = y z }, || 3)",
		"deep = { a = { b = { c = 1 c } b } h(a, -5) }",
		"x = call(" + strings.Repeat("{ q = 1 q }, ", 5) + "0)",
		"# head\n\nf = |a| { # open\n  b = g(a, # inner\n 1)\n\n  b # tail\n}\n# end",
		"x = f({ # c\n 1 }, 2) y = 1",
	}
	for _, input := range inputs {
		first, err := Source(input)
		if err != nil {
			t.Fatalf("format %q: %v", input, err)
		}
		second, err := Source(first)
		if err != nil {
			t.Fatalf("reformat %q: %v\n%s", input, err, first)
		}
		if first != second {
			t.Errorf("not idempotent for %q:\n%s\n---\n%s", input, first, second)
		}

		orig, err := builder.Build(input)
		if err != nil {
			t.Fatal(err)
		}
		formatted, err := builder.Build(first)
		if err != nil {
			t.Fatal(err)
		}
		h1, err := hash.Sum(orig)
		if err != nil {
			t.Fatal(err)
		}
		h2, err := hash.Sum(formatted)
		if err != nil {
			t.Fatal(err)
		}
		if h1 != h2 {
			t.Errorf("formatting changed the tree of %q:\n%s", input, first)
		}
	}
}

func TestFormatReportsErrors(t *testing.T) {
	if _, err := Source("x = "); err == nil {
		t.Error("expected error for incomplete assignment")
	}
}
