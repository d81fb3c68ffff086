// Package grammar recognizes quill source text and produces a tree of tagged
// rule occurrences. It knows nothing about the typed AST; see package builder
// for the conversion.
package grammar

import (
	"fmt"
	"unicode/utf8"
)

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number, counted in runes
}

// Span represents a half-open byte range in source code.
type Span struct {
	Start Position
	End   Position
}

// SpanOf builds a Span over input[start:end], computing line and column
// information for both ends.
func SpanOf(input string, start, end int) Span {
	return Span{Start: positionAt(input, start), End: positionAt(input, end)}
}

func positionAt(input string, offset int) Position {
	if offset > len(input) {
		offset = len(input)
	}
	pos := Position{Offset: offset, Line: 1, Column: 1}
	for _, r := range input[:offset] {
		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	return pos
}

// Rule identifies which grammar rule produced an occurrence.
type Rule int

const (
	RuleProgram Rule = iota
	RuleAssignment
	RuleExpression
	RuleIdentifier
	RuleNumber
	RuleFunctionCall
	RuleFunctionArguments
	RuleFunctionDefinition
	RuleIdentList
	RuleBlock
)

var ruleNames = [...]string{
	RuleProgram:            "program",
	RuleAssignment:         "assignment",
	RuleExpression:         "expression",
	RuleIdentifier:         "identifier",
	RuleNumber:             "number",
	RuleFunctionCall:       "function_call",
	RuleFunctionArguments:  "function_arguments",
	RuleFunctionDefinition: "function_definition",
	RuleIdentList:          "ident_list",
	RuleBlock:              "block",
}

func (r Rule) String() string {
	if r >= 0 && int(r) < len(ruleNames) {
		return ruleNames[r]
	}
	return fmt.Sprintf("Rule(%d)", int(r))
}

// Pair is one matched occurrence of a grammar rule: its tag, the span of
// source it matched, and its child occurrences in source order.
type Pair struct {
	Rule     Rule
	Span     Span
	Children []*Pair

	input string
}

// NewPair assembles an occurrence by hand. input must be the full source text
// that span indexes into.
func NewPair(rule Rule, input string, span Span, children ...*Pair) *Pair {
	return &Pair{Rule: rule, Span: span, Children: children, input: input}
}

// Text returns the exact substring of the source this occurrence matched.
func (p *Pair) Text() string {
	start, end := p.Span.Start.Offset, p.Span.End.Offset
	if start < 0 || end > len(p.input) || start > end {
		return ""
	}
	return p.input[start:end]
}

func (p *Pair) String() string {
	text := p.Text()
	if utf8.RuneCountInString(text) > 20 {
		text = string([]rune(text)[:20]) + "..."
	}
	return fmt.Sprintf("%s(%q)", p.Rule, text)
}
