package grammar

import "testing"

func TestLexerTokens(t *testing.T) {
	input := `add = |a, b| { r = sum(a, -12) r } # trailing comment`
	want := []struct {
		typ     TokenType
		literal string
	}{
		{TokenIdentifier, "add"},
		{TokenAssign, "="},
		{TokenBar, "|"},
		{TokenIdentifier, "a"},
		{TokenComma, ","},
		{TokenIdentifier, "b"},
		{TokenBar, "|"},
		{TokenLBrace, "{"},
		{TokenIdentifier, "r"},
		{TokenAssign, "="},
		{TokenIdentifier, "sum"},
		{TokenLParen, "("},
		{TokenIdentifier, "a"},
		{TokenComma, ","},
		{TokenNumber, "-12"},
		{TokenRParen, ")"},
		{TokenIdentifier, "r"},
		{TokenRBrace, "}"},
		{TokenEOF, ""},
	}

	l := NewLexer(input)
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w.typ {
			t.Fatalf("token %d: type = %s, want %s", i, tok.Type, w.typ)
		}
		if tok.Literal != w.literal {
			t.Errorf("token %d: literal = %q, want %q", i, tok.Literal, w.literal)
		}
	}
}

func TestLexerPositions(t *testing.T) {
	input := "x = 1\n  yy = 22"
	l := NewLexer(input)

	tests := []struct {
		literal string
		pos     Position
		end     Position
	}{
		{"x", Position{0, 1, 1}, Position{1, 1, 2}},
		{"=", Position{2, 1, 3}, Position{3, 1, 4}},
		{"1", Position{4, 1, 5}, Position{5, 1, 6}},
		{"yy", Position{8, 2, 3}, Position{10, 2, 5}},
		{"=", Position{11, 2, 6}, Position{12, 2, 7}},
		{"22", Position{13, 2, 8}, Position{15, 2, 10}},
	}
	for _, tc := range tests {
		tok := l.NextToken()
		if tok.Literal != tc.literal {
			t.Fatalf("literal = %q, want %q", tok.Literal, tc.literal)
		}
		if tok.Pos != tc.pos {
			t.Errorf("%q pos = %+v, want %+v", tc.literal, tok.Pos, tc.pos)
		}
		if tok.End != tc.end {
			t.Errorf("%q end = %+v, want %+v", tc.literal, tok.End, tc.end)
		}
	}
	if eof := l.NextToken(); eof.Type != TokenEOF || eof.Pos.Offset != len(input) {
		t.Errorf("eof = %v at %d, want EOF at %d", eof.Type, eof.Pos.Offset, len(input))
	}
}

func TestLexerMinusWithoutDigitIsError(t *testing.T) {
	tok := NewLexer("- 1").NextToken()
	if tok.Type != TokenError {
		t.Fatalf("type = %s, want ERROR", tok.Type)
	}
}

func TestLexerUnicodeColumns(t *testing.T) {
	l := NewLexer("é = ü")
	l.NextToken() // é
	assign := l.NextToken()
	if assign.Pos.Column != 3 {
		t.Errorf("column = %d, want 3", assign.Pos.Column)
	}
	if assign.Pos.Offset != 3 {
		t.Errorf("offset = %d, want 3", assign.Pos.Offset)
	}
}

func TestLexerComments(t *testing.T) {
	input := "# head \r\nx = 1 # tail\n#\n"
	l := NewLexer(input)
	for l.NextToken().Type != TokenEOF {
	}

	got := l.Comments()
	want := []struct {
		text       string
		line, col  int
		start, end int
	}{
		{"# head", 1, 1, 0, 6},
		{"# tail", 2, 7, 15, 21},
		{"#", 3, 1, 22, 23},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d comments, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		c := got[i]
		if c.Text != w.text {
			t.Errorf("comment %d: text = %q, want %q", i, c.Text, w.text)
		}
		if c.Span.Start.Line != w.line || c.Span.Start.Column != w.col {
			t.Errorf("comment %d: start = %d:%d, want %d:%d", i, c.Span.Start.Line, c.Span.Start.Column, w.line, w.col)
		}
		if c.Span.Start.Offset != w.start || c.Span.End.Offset != w.end {
			t.Errorf("comment %d: offsets = %d-%d, want %d-%d", i, c.Span.Start.Offset, c.Span.End.Offset, w.start, w.end)
		}
		if text := input[c.Span.Start.Offset:c.Span.End.Offset]; text != w.text {
			t.Errorf("comment %d: span text = %q", i, text)
		}
	}
}
