package builder

import (
	"strconv"
	"strings"

	"github.com/chazu/quill/ast"
	"github.com/chazu/quill/grammar"
)

func buildIdentifier(p *grammar.Pair) (*ast.Identifier, error) {
	if err := expectRule(p, grammar.RuleIdentifier); err != nil {
		return nil, err
	}
	// Clone so the name does not pin the whole source buffer.
	return &ast.Identifier{SpanVal: convertSpan(p.Span), Name: strings.Clone(p.Text())}, nil
}

func buildNumber(p *grammar.Pair) (*ast.Number, error) {
	if err := expectRule(p, grammar.RuleNumber); err != nil {
		return nil, err
	}
	text := p.Text()
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, &NumericConversionError{Text: text, Err: err, SpanVal: convertSpan(p.Span)}
	}
	return &ast.Number{SpanVal: convertSpan(p.Span), Value: v}, nil
}
