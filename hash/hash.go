// Package hash computes content hashes of quill programs.
//
// A program is encoded as canonical CBOR over a span-free, tagged-array form:
//
//	[Version, [TagProgram, [assignment...]]]
//	assignment          = [TagAssignment, name, expr]
//	number              = [TagNumber, value]
//	identifier          = [TagIdentifier, name]
//	function call       = [TagFunctionCall, name, [expr...]]
//	function definition = [TagFunctionDefinition, [name...], expr]
//	block               = [TagBlock, [assignment...], expr]
//
// Two programs with the same structure hash the same regardless of layout,
// comments, or where in a file they were parsed from.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/quill/ast"
	"github.com/chazu/quill/builder"
)

// maxNestedLevels bounds CBOR array nesting on decode. A block adds three
// levels per expression level (assignment list, assignment, expression), a
// call adds two, and the envelope adds four more.
const maxNestedLevels = 3*builder.DefaultMaxDepth + 16

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("hash: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em

	dm, err := cbor.DecOptions{MaxNestedLevels: maxNestedLevels}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("hash: failed to create CBOR dec mode: %v", err))
	}
	cborDecMode = dm
}

// Encode returns the canonical CBOR encoding of prog.
func Encode(prog *ast.Program) ([]byte, error) {
	data, err := cborEncMode.Marshal([]any{Version, encodeProgram(prog)})
	if err != nil {
		return nil, fmt.Errorf("hash: encode program: %w", err)
	}
	return data, nil
}

// Sum returns the SHA-256 of Encode(prog).
func Sum(prog *ast.Program) ([32]byte, error) {
	data, err := Encode(prog)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}

// SumHex returns Sum(prog) as lowercase hex.
func SumHex(prog *ast.Program) (string, error) {
	sum, err := Sum(prog)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum[:]), nil
}

func encodeProgram(p *ast.Program) []any {
	return []any{TagProgram, encodeAssignments(p.Assignments)}
}

func encodeAssignments(as []*ast.Assignment) []any {
	out := make([]any, len(as))
	for i, a := range as {
		out[i] = []any{TagAssignment, a.Identifier.Name, encodeExpr(a.Expression)}
	}
	return out
}

func encodeExpr(e ast.Expr) []any {
	switch e := e.(type) {
	case *ast.Number:
		return []any{TagNumber, e.Value}
	case *ast.Identifier:
		return []any{TagIdentifier, e.Name}
	case *ast.FunctionCall:
		args := make([]any, len(e.Arguments))
		for i, arg := range e.Arguments {
			args[i] = encodeExpr(arg)
		}
		return []any{TagFunctionCall, e.FunctionName.Name, args}
	case *ast.FunctionDefinition:
		params := make([]any, len(e.Parameters))
		for i, p := range e.Parameters {
			params[i] = p.Name
		}
		return []any{TagFunctionDefinition, params, encodeExpr(e.Body)}
	case *ast.Block:
		return []any{TagBlock, encodeAssignments(e.Assignments), encodeExpr(e.Expression)}
	}
	panic(fmt.Sprintf("hash: unknown expression type %T", e))
}
