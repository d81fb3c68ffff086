package builder

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/chazu/quill/ast"
	"github.com/chazu/quill/grammar"
)

// Sentinels for errors.Is. Each concrete error type below matches exactly one.
var (
	ErrRuleMismatch      = errors.New("rule mismatch")
	ErrUnexpectedRule    = errors.New("unexpected rule")
	ErrMissingChild      = errors.New("missing child")
	ErrStructural        = errors.New("structural error")
	ErrNumericConversion = errors.New("numeric conversion error")
	ErrTopLevelArity     = errors.New("top-level arity error")
	ErrTooDeep           = errors.New("nesting too deep")
)

// RuleMismatchError reports an occurrence handed to a builder that requires
// a different tag.
type RuleMismatchError struct {
	Expected grammar.Rule
	Actual   grammar.Rule
	Text     string
	SpanVal  ast.Span
}

func (e *RuleMismatchError) Error() string {
	return fmt.Sprintf("%s: %v: expected %s, found %s %q", e.SpanVal.Start, ErrRuleMismatch, e.Expected, e.Actual, excerpt(e.Text))
}

func (e *RuleMismatchError) Is(target error) bool { return target == ErrRuleMismatch }
func (e *RuleMismatchError) Span() ast.Span        { return e.SpanVal }

// UnexpectedRuleError reports a child whose tag is not among the variants a
// builder dispatches on.
type UnexpectedRuleError struct {
	Context string
	Actual  grammar.Rule
	Text    string
	SpanVal ast.Span
}

func (e *UnexpectedRuleError) Error() string {
	return fmt.Sprintf("%s: %v in %s: %s %q", e.SpanVal.Start, ErrUnexpectedRule, e.Context, e.Actual, excerpt(e.Text))
}

func (e *UnexpectedRuleError) Is(target error) bool { return target == ErrUnexpectedRule }
func (e *UnexpectedRuleError) Span() ast.Span        { return e.SpanVal }

// MissingChildError reports a required child occurrence that is absent.
// Context names the builder and the slot, e.g. "assignment: expression".
// The span is the parent's.
type MissingChildError struct {
	Context string
	SpanVal ast.Span
}

func (e *MissingChildError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.SpanVal.Start, ErrMissingChild, e.Context)
}

func (e *MissingChildError) Is(target error) bool { return target == ErrMissingChild }
func (e *MissingChildError) Span() ast.Span        { return e.SpanVal }

// StructuralError reports children that exist but break positional or arity
// expectations. Rule and Text describe the offending child.
type StructuralError struct {
	Msg     string
	Rule    grammar.Rule
	Text    string
	SpanVal ast.Span
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %v: %s (found %s %q)", e.SpanVal.Start, ErrStructural, e.Msg, e.Rule, excerpt(e.Text))
}

func (e *StructuralError) Is(target error) bool { return target == ErrStructural }
func (e *StructuralError) Span() ast.Span        { return e.SpanVal }

// NumericConversionError reports literal text that does not fit an int64.
type NumericConversionError struct {
	Text    string
	Err     error
	SpanVal ast.Span
}

func (e *NumericConversionError) Error() string {
	return fmt.Sprintf("%s: %v: %q: %v", e.SpanVal.Start, ErrNumericConversion, excerpt(e.Text), e.Err)
}

func (e *NumericConversionError) Is(target error) bool { return target == ErrNumericConversion }
func (e *NumericConversionError) Unwrap() error        { return e.Err }
func (e *NumericConversionError) Span() ast.Span       { return e.SpanVal }

// TopLevelArityError reports a grammar result that is not exactly one
// program occurrence. It indicates a broken engine, not bad user input.
type TopLevelArityError struct {
	Count int
}

func (e *TopLevelArityError) Error() string {
	return fmt.Sprintf("%v: grammar produced %d top-level occurrences, want exactly 1", ErrTopLevelArity, e.Count)
}

func (e *TopLevelArityError) Is(target error) bool { return target == ErrTopLevelArity }

// DepthError reports expression nesting beyond the configured limit.
type DepthError struct {
	Limit   int
	SpanVal ast.Span
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("%s: %v: expressions nested deeper than %d levels", e.SpanVal.Start, ErrTooDeep, e.Limit)
}

func (e *DepthError) Is(target error) bool { return target == ErrTooDeep }
func (e *DepthError) Span() ast.Span        { return e.SpanVal }

// SpanOf returns the source span an error from Build points at. It
// understands both builder errors and grammar syntax errors.
func SpanOf(err error) (ast.Span, bool) {
	var spanned interface{ Span() ast.Span }
	if errors.As(err, &spanned) {
		return spanned.Span(), true
	}
	var syntaxErr *grammar.SyntaxError
	if errors.As(err, &syntaxErr) {
		return convertSpan(syntaxErr.Span()), true
	}
	return ast.Span{}, false
}

const maxExcerpt = 32

func excerpt(text string) string {
	if utf8.RuneCountInString(text) <= maxExcerpt {
		return text
	}
	return string([]rune(text)[:maxExcerpt]) + "..."
}
