package grammar

import "fmt"

// ---------------------------------------------------------------------------
// Parser: Recursive descent recognizer producing tagged occurrences
// ---------------------------------------------------------------------------
//
//   program             = assignment* EOF
//   assignment          = identifier "=" expression
//   expression          = function_definition | block | function_call | number | identifier
//   function_definition = "|" ident_list? "|" expression
//   ident_list          = identifier ("," identifier)* ","?
//   function_call       = identifier "(" function_arguments? ")"
//   function_arguments  = expression ("," expression)* ","?
//   block               = "{" assignment* expression "}"
//
// Optional rules only produce an occurrence when they match at least one
// element.

// DefaultMaxDepth bounds expression nesting.
const DefaultMaxDepth = 512

// Parser recognizes quill source and builds occurrence trees.
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
	input     string

	depth    int
	maxDepth int
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{
		lexer:    NewLexer(input),
		input:    input,
		maxDepth: DefaultMaxDepth,
	}
	// Read two tokens to fill curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// WithMaxDepth overrides the expression nesting limit. Values <= 0 keep the
// default.
func (p *Parser) WithMaxDepth(n int) *Parser {
	if n > 0 {
		p.maxDepth = n
	}
	return p
}

// Comments returns the comments the lexer has skipped. After ParseProgram
// succeeds this is every comment in the input.
func (p *Parser) Comments() []Comment {
	return p.lexer.Comments()
}

// Parse recognizes input as a program and returns the top-level result: a
// single program occurrence.
func Parse(input string) ([]*Pair, error) {
	return NewParser(input).ParseProgram()
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	if p.curTokenIs(TokenError) {
		return &SyntaxError{Pos: p.curToken.Pos, Msg: p.curToken.Literal}
	}
	return &SyntaxError{Pos: p.curToken.Pos, Msg: fmt.Sprintf(format, args...)}
}

// expect consumes the current token if it matches and returns it.
func (p *Parser) expect(t TokenType, context string) (Token, error) {
	if !p.curTokenIs(t) {
		return Token{}, p.errorf("expected %s %s, found %s", t, context, p.curToken.describe())
	}
	tok := p.curToken
	p.nextToken()
	return tok, nil
}

func (p *Parser) pair(rule Rule, start, end Position, children ...*Pair) *Pair {
	return &Pair{Rule: rule, Span: Span{Start: start, End: end}, Children: children, input: p.input}
}

// ---------------------------------------------------------------------------
// Rules
// ---------------------------------------------------------------------------

// ParseProgram recognizes the whole input. The program occurrence always
// spans the entire input, leading and trailing trivia included.
func (p *Parser) ParseProgram() ([]*Pair, error) {
	var assignments []*Pair
	for !p.curTokenIs(TokenEOF) {
		if !p.curTokenIs(TokenIdentifier) {
			return nil, p.errorf("expected assignment, found %s", p.curToken.describe())
		}
		a, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	start := Position{Offset: 0, Line: 1, Column: 1}
	program := p.pair(RuleProgram, start, p.curToken.Pos, assignments...)
	return []*Pair{program}, nil
}

func (p *Parser) parseAssignment() (*Pair, error) {
	ident := p.parseIdentifier()
	if _, err := p.expect(TokenAssign, "after assignment target"); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return p.pair(RuleAssignment, ident.Span.Start, expr.Span.End, ident, expr), nil
}

func (p *Parser) parseExpression() (*Pair, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		return nil, p.errorf("expressions nested deeper than %d levels", p.maxDepth)
	}

	var (
		inner *Pair
		err   error
	)
	switch p.curToken.Type {
	case TokenBar:
		inner, err = p.parseFunctionDefinition()
	case TokenLBrace:
		inner, err = p.parseBlock()
	case TokenNumber:
		inner = p.parseNumber()
	case TokenIdentifier:
		if p.peekTokenIs(TokenLParen) {
			inner, err = p.parseFunctionCall()
		} else {
			inner = p.parseIdentifier()
		}
	default:
		return nil, p.errorf("expected expression, found %s", p.curToken.describe())
	}
	if err != nil {
		return nil, err
	}
	return p.pair(RuleExpression, inner.Span.Start, inner.Span.End, inner), nil
}

func (p *Parser) parseIdentifier() *Pair {
	tok := p.curToken
	p.nextToken()
	return p.pair(RuleIdentifier, tok.Pos, tok.End)
}

func (p *Parser) parseNumber() *Pair {
	tok := p.curToken
	p.nextToken()
	return p.pair(RuleNumber, tok.Pos, tok.End)
}

// parseFunctionDefinition parses |a, b| body
func (p *Parser) parseFunctionDefinition() (*Pair, error) {
	open := p.curToken
	p.nextToken() // consume |

	var children []*Pair
	if p.curTokenIs(TokenIdentifier) {
		var params []*Pair
		for p.curTokenIs(TokenIdentifier) {
			params = append(params, p.parseIdentifier())
			if !p.curTokenIs(TokenComma) {
				break
			}
			p.nextToken()
		}
		first, last := params[0], params[len(params)-1]
		children = append(children, p.pair(RuleIdentList, first.Span.Start, last.Span.End, params...))
	}

	if _, err := p.expect(TokenBar, "to close parameter list"); err != nil {
		return nil, err
	}

	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	children = append(children, body)
	return p.pair(RuleFunctionDefinition, open.Pos, body.Span.End, children...), nil
}

// parseFunctionCall parses name(arg, arg)
func (p *Parser) parseFunctionCall() (*Pair, error) {
	name := p.parseIdentifier()
	p.nextToken() // consume (

	children := []*Pair{name}
	if !p.curTokenIs(TokenRParen) {
		var args []*Pair
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.curTokenIs(TokenComma) {
				break
			}
			p.nextToken()
			if p.curTokenIs(TokenRParen) {
				break
			}
		}
		first, last := args[0], args[len(args)-1]
		children = append(children, p.pair(RuleFunctionArguments, first.Span.Start, last.Span.End, args...))
	}

	closing, err := p.expect(TokenRParen, "to close argument list")
	if err != nil {
		return nil, err
	}
	return p.pair(RuleFunctionCall, name.Span.Start, closing.End, children...), nil
}

// parseBlock parses { a = 1 b = 2 a }
func (p *Parser) parseBlock() (*Pair, error) {
	open := p.curToken
	p.nextToken() // consume {

	var children []*Pair
	for p.curTokenIs(TokenIdentifier) && p.peekTokenIs(TokenAssign) {
		a, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		children = append(children, a)
	}

	tail, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	children = append(children, tail)

	closing, err := p.expect(TokenRBrace, "after block result")
	if err != nil {
		return nil, err
	}
	return p.pair(RuleBlock, open.Pos, closing.End, children...), nil
}
