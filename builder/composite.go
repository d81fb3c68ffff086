package builder

import (
	"github.com/chazu/quill/ast"
	"github.com/chazu/quill/grammar"
)

// expression builds the variant selected by the single child's tag.
func (w *walker) expression(p *grammar.Pair) (ast.Expr, error) {
	if err := expectRule(p, grammar.RuleExpression); err != nil {
		return nil, err
	}

	w.depth++
	defer func() { w.depth-- }()
	if w.depth > w.maxDepth {
		return nil, &DepthError{Limit: w.maxDepth, SpanVal: convertSpan(p.Span)}
	}

	c := childrenOf(p)
	inner, err := c.require("expression: variant")
	if err != nil {
		return nil, err
	}
	if err := c.end("expression must have exactly one child"); err != nil {
		return nil, err
	}

	// A failed build must return a nil Expr, not a typed nil.
	switch inner.Rule {
	case grammar.RuleNumber:
		n, err := buildNumber(inner)
		if err != nil {
			return nil, err
		}
		return n, nil
	case grammar.RuleIdentifier:
		n, err := buildIdentifier(inner)
		if err != nil {
			return nil, err
		}
		return n, nil
	case grammar.RuleFunctionCall:
		n, err := w.functionCall(inner)
		if err != nil {
			return nil, err
		}
		return n, nil
	case grammar.RuleFunctionDefinition:
		n, err := w.functionDefinition(inner)
		if err != nil {
			return nil, err
		}
		return n, nil
	case grammar.RuleBlock:
		n, err := w.block(inner)
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, &UnexpectedRuleError{
			Context: "expression",
			Actual:  inner.Rule,
			Text:    inner.Text(),
			SpanVal: convertSpan(inner.Span),
		}
	}
}

func (w *walker) assignment(p *grammar.Pair) (*ast.Assignment, error) {
	if err := expectRule(p, grammar.RuleAssignment); err != nil {
		return nil, err
	}

	c := childrenOf(p)
	identPair, err := c.require("assignment: identifier")
	if err != nil {
		return nil, err
	}
	exprPair, err := c.require("assignment: expression")
	if err != nil {
		return nil, err
	}

	ident, err := buildIdentifier(identPair)
	if err != nil {
		return nil, err
	}
	expr, err := w.expression(exprPair)
	if err != nil {
		return nil, err
	}
	if err := c.end("assignment takes an identifier and one expression"); err != nil {
		return nil, err
	}

	return &ast.Assignment{SpanVal: convertSpan(p.Span), Identifier: ident, Expression: expr}, nil
}

func (w *walker) functionCall(p *grammar.Pair) (*ast.FunctionCall, error) {
	if err := expectRule(p, grammar.RuleFunctionCall); err != nil {
		return nil, err
	}

	c := childrenOf(p)
	namePair, err := c.require("function_call: function name")
	if err != nil {
		return nil, err
	}
	name, err := buildIdentifier(namePair)
	if err != nil {
		return nil, err
	}

	args := []ast.Expr{}
	if argsPair := c.next(); argsPair != nil {
		if err := expectRule(argsPair, grammar.RuleFunctionArguments); err != nil {
			return nil, err
		}
		args = make([]ast.Expr, 0, len(argsPair.Children))
		for _, argPair := range argsPair.Children {
			arg, err := w.expression(argPair)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
	}
	if err := c.end("function call takes a name and one argument list"); err != nil {
		return nil, err
	}

	return &ast.FunctionCall{SpanVal: convertSpan(p.Span), FunctionName: name, Arguments: args}, nil
}

// functionDefinition peeks at the first child to tell a parameter list from
// a bare body: an ident_list is consumed as the parameters and the body must
// follow; anything else is the body itself and the parameters are empty.
func (w *walker) functionDefinition(p *grammar.Pair) (*ast.FunctionDefinition, error) {
	if err := expectRule(p, grammar.RuleFunctionDefinition); err != nil {
		return nil, err
	}

	c := childrenOf(p)
	params := []*ast.Identifier{}
	if first := c.peek(); first != nil && first.Rule == grammar.RuleIdentList {
		c.next()
		params = make([]*ast.Identifier, 0, len(first.Children))
		for _, identPair := range first.Children {
			ident, err := buildIdentifier(identPair)
			if err != nil {
				return nil, err
			}
			params = append(params, ident)
		}
	}

	bodyPair, err := c.require("function_definition: body")
	if err != nil {
		return nil, err
	}
	body, err := w.expression(bodyPair)
	if err != nil {
		return nil, err
	}
	if err := c.end("function definition takes parameters and one body"); err != nil {
		return nil, err
	}

	return &ast.FunctionDefinition{SpanVal: convertSpan(p.Span), Parameters: params, Body: body}, nil
}

// block consumes a greedy prefix of assignments, then exactly one tail.
func (w *walker) block(p *grammar.Pair) (*ast.Block, error) {
	if err := expectRule(p, grammar.RuleBlock); err != nil {
		return nil, err
	}

	c := childrenOf(p)
	assignments := []*ast.Assignment{}
	for next := c.peek(); next != nil && next.Rule == grammar.RuleAssignment; next = c.peek() {
		c.next()
		a, err := w.assignment(next)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	tailPair, err := c.require("block: expression")
	if err != nil {
		return nil, err
	}
	tail, err := w.expression(tailPair)
	if err != nil {
		return nil, err
	}
	if err := c.end("unexpected extra content after block's trailing expression"); err != nil {
		return nil, err
	}

	return &ast.Block{SpanVal: convertSpan(p.Span), Assignments: assignments, Expression: tail}, nil
}
