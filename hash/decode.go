package hash

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/quill/ast"
)

// ErrMalformed is wrapped by every structural decode failure.
var ErrMalformed = errors.New("malformed program encoding")

// Decode rebuilds a Program from Encode's output. The result carries no
// spans.
func Decode(data []byte) (*ast.Program, error) {
	var raw any
	if err := cborDecMode.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("hash: unmarshal program: %w", err)
	}

	top, err := asArray(raw, 2)
	if err != nil {
		return nil, err
	}
	version, err := asUint(top[0])
	if err != nil {
		return nil, err
	}
	if version != uint64(Version) {
		return nil, fmt.Errorf("hash: unsupported encoding version %d", version)
	}
	return decodeProgram(top[1])
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("hash: %w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

func asArray(v any, n int) ([]any, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, malformed("expected array, got %T", v)
	}
	if n >= 0 && len(arr) != n {
		return nil, malformed("expected %d elements, got %d", n, len(arr))
	}
	return arr, nil
}

func asUint(v any) (uint64, error) {
	u, ok := v.(uint64)
	if !ok {
		return 0, malformed("expected unsigned integer, got %T", v)
	}
	return u, nil
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", malformed("expected string, got %T", v)
	}
	return s, nil
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, malformed("integer %d overflows int64", n)
		}
		return int64(n), nil
	}
	return 0, malformed("expected integer, got %T", v)
}

// node splits a tagged array into its tag and fields, checking arity.
func node(v any, want uint8, fields int) ([]any, error) {
	arr, err := asArray(v, fields+1)
	if err != nil {
		return nil, err
	}
	tag, err := asUint(arr[0])
	if err != nil {
		return nil, err
	}
	if tag != uint64(want) {
		return nil, malformed("expected tag 0x%02X, got 0x%02X", want, tag)
	}
	return arr[1:], nil
}

func decodeProgram(v any) (*ast.Program, error) {
	fields, err := node(v, TagProgram, 1)
	if err != nil {
		return nil, err
	}
	as, err := decodeAssignments(fields[0])
	if err != nil {
		return nil, err
	}
	return &ast.Program{Assignments: as}, nil
}

func decodeAssignments(v any) ([]*ast.Assignment, error) {
	arr, err := asArray(v, -1)
	if err != nil {
		return nil, err
	}
	out := make([]*ast.Assignment, 0, len(arr))
	for _, item := range arr {
		fields, err := node(item, TagAssignment, 2)
		if err != nil {
			return nil, err
		}
		name, err := asString(fields[0])
		if err != nil {
			return nil, err
		}
		e, err := decodeExpr(fields[1])
		if err != nil {
			return nil, err
		}
		out = append(out, &ast.Assignment{Identifier: &ast.Identifier{Name: name}, Expression: e})
	}
	return out, nil
}

func decodeExpr(v any) (ast.Expr, error) {
	arr, err := asArray(v, -1)
	if err != nil {
		return nil, err
	}
	if len(arr) == 0 {
		return nil, malformed("empty expression")
	}
	tag, err := asUint(arr[0])
	if err != nil {
		return nil, err
	}

	switch uint8(tag) {
	case TagNumber:
		fields, err := node(v, TagNumber, 1)
		if err != nil {
			return nil, err
		}
		n, err := asInt64(fields[0])
		if err != nil {
			return nil, err
		}
		return &ast.Number{Value: n}, nil

	case TagIdentifier:
		fields, err := node(v, TagIdentifier, 1)
		if err != nil {
			return nil, err
		}
		name, err := asString(fields[0])
		if err != nil {
			return nil, err
		}
		return &ast.Identifier{Name: name}, nil

	case TagFunctionCall:
		fields, err := node(v, TagFunctionCall, 2)
		if err != nil {
			return nil, err
		}
		name, err := asString(fields[0])
		if err != nil {
			return nil, err
		}
		rawArgs, err := asArray(fields[1], -1)
		if err != nil {
			return nil, err
		}
		args := make([]ast.Expr, 0, len(rawArgs))
		for _, ra := range rawArgs {
			arg, err := decodeExpr(ra)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return &ast.FunctionCall{FunctionName: &ast.Identifier{Name: name}, Arguments: args}, nil

	case TagFunctionDefinition:
		fields, err := node(v, TagFunctionDefinition, 2)
		if err != nil {
			return nil, err
		}
		rawParams, err := asArray(fields[0], -1)
		if err != nil {
			return nil, err
		}
		params := make([]*ast.Identifier, 0, len(rawParams))
		for _, rp := range rawParams {
			name, err := asString(rp)
			if err != nil {
				return nil, err
			}
			params = append(params, &ast.Identifier{Name: name})
		}
		body, err := decodeExpr(fields[1])
		if err != nil {
			return nil, err
		}
		return &ast.FunctionDefinition{Parameters: params, Body: body}, nil

	case TagBlock:
		fields, err := node(v, TagBlock, 2)
		if err != nil {
			return nil, err
		}
		as, err := decodeAssignments(fields[0])
		if err != nil {
			return nil, err
		}
		tail, err := decodeExpr(fields[1])
		if err != nil {
			return nil, err
		}
		return &ast.Block{Assignments: as, Expression: tail}, nil
	}
	return nil, malformed("unknown expression tag 0x%02X", tag)
}
