// Package printer renders a built Program for humans and tools.
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chazu/quill/ast"
)

// Format selects an output rendering.
type Format int

const (
	FormatTree Format = iota
	FormatJSON
	FormatYAML
)

var formatNames = map[Format]string{
	FormatTree: "tree",
	FormatJSON: "json",
	FormatYAML: "yaml",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat maps a format name to a Format.
func ParseFormat(name string) (Format, error) {
	for f, n := range formatNames {
		if strings.EqualFold(n, name) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown output format %q (want tree, json or yaml)", name)
}

// Write renders prog to w in the given format.
func Write(w io.Writer, prog *ast.Program, format Format) error {
	switch format {
	case FormatTree:
		_, err := io.WriteString(w, Tree(prog))
		return err
	case FormatJSON:
		return JSON(w, prog)
	case FormatYAML:
		return YAML(w, prog)
	}
	return fmt.Errorf("unsupported format %s", format)
}

// ---------------------------------------------------------------------------
// Tree dump
// ---------------------------------------------------------------------------

// Tree returns an indented listing with one node per line:
//
//	Program 0..5
//	  Assignment 0..5
//	    Identifier "x" 0..1
//	    Number 1 4..5
func Tree(prog *ast.Program) string {
	var sb strings.Builder
	writeTree(&sb, prog, 0, "")
	return sb.String()
}

func writeTree(sb *strings.Builder, n ast.Node, depth int, label string) {
	sb.WriteString(strings.Repeat("  ", depth))
	if label != "" {
		sb.WriteString(label + ": ")
	}

	switch n := n.(type) {
	case *ast.Program:
		fmt.Fprintf(sb, "Program %s\n", n.Span())
		for _, a := range n.Assignments {
			writeTree(sb, a, depth+1, "")
		}

	case *ast.Assignment:
		fmt.Fprintf(sb, "Assignment %s\n", n.Span())
		writeTree(sb, n.Identifier, depth+1, "")
		writeTree(sb, n.Expression, depth+1, "")

	case *ast.Identifier:
		fmt.Fprintf(sb, "Identifier %q %s\n", n.Name, n.Span())

	case *ast.Number:
		fmt.Fprintf(sb, "Number %d %s\n", n.Value, n.Span())

	case *ast.FunctionCall:
		fmt.Fprintf(sb, "FunctionCall %s\n", n.Span())
		writeTree(sb, n.FunctionName, depth+1, "name")
		for _, arg := range n.Arguments {
			writeTree(sb, arg, depth+1, "arg")
		}

	case *ast.FunctionDefinition:
		fmt.Fprintf(sb, "FunctionDefinition %s\n", n.Span())
		for _, p := range n.Parameters {
			writeTree(sb, p, depth+1, "param")
		}
		writeTree(sb, n.Body, depth+1, "body")

	case *ast.Block:
		fmt.Fprintf(sb, "Block %s\n", n.Span())
		for _, a := range n.Assignments {
			writeTree(sb, a, depth+1, "")
		}
		writeTree(sb, n.Expression, depth+1, "result")

	default:
		fmt.Fprintf(sb, "%T\n", n)
	}
}

// ---------------------------------------------------------------------------
// Structured documents
// ---------------------------------------------------------------------------

// Document converts a node into nested maps keyed by field name, with a
// "kind" discriminator on every node. Sequence fields are always present,
// even when empty.
func Document(n ast.Node) map[string]any {
	doc := map[string]any{
		"kind": ast.KindOf(n),
		"span": spanDoc(n.Span()),
	}

	switch n := n.(type) {
	case *ast.Program:
		doc["assignments"] = assignmentDocs(n.Assignments)

	case *ast.Assignment:
		doc["identifier"] = Document(n.Identifier)
		doc["expression"] = Document(n.Expression)

	case *ast.Identifier:
		doc["name"] = n.Name

	case *ast.Number:
		doc["value"] = n.Value

	case *ast.FunctionCall:
		doc["function_name"] = Document(n.FunctionName)
		args := make([]any, 0, len(n.Arguments))
		for _, arg := range n.Arguments {
			args = append(args, Document(arg))
		}
		doc["arguments"] = args

	case *ast.FunctionDefinition:
		params := make([]any, 0, len(n.Parameters))
		for _, p := range n.Parameters {
			params = append(params, Document(p))
		}
		doc["parameters"] = params
		doc["body"] = Document(n.Body)

	case *ast.Block:
		doc["assignments"] = assignmentDocs(n.Assignments)
		doc["expression"] = Document(n.Expression)
	}
	return doc
}

func assignmentDocs(as []*ast.Assignment) []any {
	docs := make([]any, 0, len(as))
	for _, a := range as {
		docs = append(docs, Document(a))
	}
	return docs
}

func spanDoc(s ast.Span) map[string]any {
	return map[string]any{
		"start": s.Start.Offset,
		"end":   s.End.Offset,
		"line":  s.Start.Line,
		"col":   s.Start.Column,
	}
}

// JSON writes prog as indented JSON.
func JSON(w io.Writer, prog *ast.Program) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document(prog))
}

// YAML writes prog as a YAML document.
func YAML(w io.Writer, prog *ast.Program) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Document(prog)); err != nil {
		return err
	}
	return enc.Close()
}
