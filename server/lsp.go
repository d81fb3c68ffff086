// Package server implements the quill language server.
package server

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/quill/ast"
	"github.com/chazu/quill/builder"
	"github.com/chazu/quill/format"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "quill-lsp"

var log = commonlog.GetLogger("quill.lsp")

// document is an open editor buffer and the result of building it.
type document struct {
	text string
	prog *ast.Program
	err  error
}

// LspServer serves editor features for quill source files.
type LspServer struct {
	builder *builder.Builder

	mu   sync.Mutex
	docs map[string]*document // URI → latest analysis

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server that builds documents with b.
func NewLSP(b *builder.Builder, version string) *LspServer {
	s := &LspServer{
		builder: b,
		docs:    make(map[string]*document),
		version: version,
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentHover:          s.textDocumentHover,
		TextDocumentDefinition:     s.textDocumentDefinition,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
		TextDocumentFormatting:     s.textDocumentFormatting,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("quill LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true
	capabilities.DocumentSymbolProvider = true
	capabilities.DocumentFormattingProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	doc := s.update(uri, params.TextDocument.Text)
	s.publishDiagnostics(ctx, uri, doc)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			doc := s.update(uri, whole.Text)
			s.publishDiagnostics(ctx, uri, doc)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// update rebuilds text and records it as the current state of uri.
func (s *LspServer) update(uri protocol.DocumentUri, text string) *document {
	prog, err := s.builder.Build(text)
	doc := &document{text: text, prog: prog, err: err}
	if err != nil {
		log.Debugf("%s: %v", uri, err)
	}

	s.mu.Lock()
	s.docs[string(uri)] = doc
	s.mu.Unlock()
	return doc
}

func (s *LspServer) lookup(uri protocol.DocumentUri) *document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[string(uri)]
}

// --- Language features ---

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.lookup(params.TextDocument.URI)
	if doc == nil || doc.prog == nil {
		return nil, nil
	}
	return hover(doc, params.Position), nil
}

func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := s.lookup(params.TextDocument.URI)
	if doc == nil || doc.prog == nil {
		return nil, nil
	}
	binding := definition(doc.prog, offsetAt(doc.text, params.Position))
	if binding == nil {
		return nil, nil
	}
	return protocol.Location{
		URI:   params.TextDocument.URI,
		Range: toRange(doc.text, binding.Span()),
	}, nil
}

func (s *LspServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := s.lookup(params.TextDocument.URI)
	if doc == nil || doc.prog == nil {
		return nil, nil
	}
	return documentSymbols(doc), nil
}

func (s *LspServer) textDocumentFormatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	doc := s.lookup(params.TextDocument.URI)
	if doc == nil || doc.prog == nil {
		return nil, nil
	}
	return formatting(doc), nil
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, doc *document) {
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics(doc),
	})
}

// diagnostics reports the document's first error, if any.
func diagnostics(doc *document) []protocol.Diagnostic {
	if doc.err == nil {
		return []protocol.Diagnostic{}
	}

	span, ok := builder.SpanOf(doc.err)
	if !ok {
		span = ast.Span{}
	}
	severity := protocol.DiagnosticSeverityError
	source := lspName
	return []protocol.Diagnostic{{
		Range:    toRange(doc.text, span),
		Severity: &severity,
		Source:   &source,
		Message:  doc.err.Error(),
	}}
}

// --- AST-backed logic ---

func hover(doc *document, pos protocol.Position) *protocol.Hover {
	n := ast.NodeAt(doc.prog, offsetAt(doc.text, pos))
	if n == nil {
		return nil
	}
	if _, isProgram := n.(*ast.Program); isProgram {
		return nil
	}

	r := toRange(doc.text, n.Span())
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: describe(n),
		},
		Range: &r,
	}
}

// describe renders a one-paragraph markdown summary of n.
func describe(n ast.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**", ast.KindOf(n))
	switch n := n.(type) {
	case *ast.Identifier:
		fmt.Fprintf(&b, " `%s`", n.Name)
	case *ast.Number:
		fmt.Fprintf(&b, " `%d`", n.Value)
	case *ast.FunctionCall:
		fmt.Fprintf(&b, " `%s` with %d argument%s", n.FunctionName.Name, len(n.Arguments), plural(len(n.Arguments)))
	case *ast.FunctionDefinition:
		names := make([]string, len(n.Parameters))
		for i, p := range n.Parameters {
			names[i] = p.Name
		}
		fmt.Fprintf(&b, " `|%s|`", strings.Join(names, ", "))
	case *ast.Block:
		fmt.Fprintf(&b, " with %d assignment%s", len(n.Assignments), plural(len(n.Assignments)))
	case *ast.Assignment:
		fmt.Fprintf(&b, " to `%s`", n.Identifier.Name)
	}
	return b.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// definition finds the binding of the identifier at offset: the nearest
// enclosing parameter, block assignment, or top-level assignment with the
// same name. It returns nil when offset is not on an identifier or the name
// is unbound.
func definition(prog *ast.Program, offset int) *ast.Identifier {
	// path holds the ancestors of the node NodeAt would return.
	var stack, path []ast.Node
	ast.Inspect(prog, func(n ast.Node) bool {
		if n == nil {
			stack = stack[:len(stack)-1]
			return false
		}
		if !n.Span().Contains(offset) {
			return false
		}
		stack = append(stack, n)
		path = append([]ast.Node(nil), stack...)
		return true
	})
	if len(path) == 0 {
		return nil
	}
	target, ok := path[len(path)-1].(*ast.Identifier)
	if !ok {
		return nil
	}

	for i := len(path) - 2; i >= 0; i-- {
		switch scope := path[i].(type) {
		case *ast.FunctionDefinition:
			for _, p := range scope.Parameters {
				if p.Name == target.Name {
					return p
				}
			}
		case *ast.Block:
			if id := findAssignment(scope.Assignments, target.Name); id != nil {
				return id
			}
		case *ast.Program:
			if id := findAssignment(scope.Assignments, target.Name); id != nil {
				return id
			}
		}
	}
	return nil
}

func findAssignment(as []*ast.Assignment, name string) *ast.Identifier {
	for _, a := range as {
		if a.Identifier.Name == name {
			return a.Identifier
		}
	}
	return nil
}

// formatting replaces the whole document with its canonical form, comments
// included. It returns no edits when the text is already canonical.
func formatting(doc *document) []protocol.TextEdit {
	formatted, err := format.Source(doc.text)
	if err != nil {
		log.Debugf("format: %v", err)
		return nil
	}
	if formatted == doc.text {
		return []protocol.TextEdit{}
	}
	whole := ast.Span{End: endPosition(doc.text)}
	return []protocol.TextEdit{{
		Range:   toRange(doc.text, whole),
		NewText: formatted,
	}}
}

// documentSymbols lists the top-level assignments.
func documentSymbols(doc *document) []protocol.DocumentSymbol {
	symbols := make([]protocol.DocumentSymbol, 0, len(doc.prog.Assignments))
	for _, a := range doc.prog.Assignments {
		kind := protocol.SymbolKindVariable
		detail := ast.KindOf(a.Expression)
		if _, ok := a.Expression.(*ast.FunctionDefinition); ok {
			kind = protocol.SymbolKindFunction
		}
		symbols = append(symbols, protocol.DocumentSymbol{
			Name:           a.Identifier.Name,
			Detail:         &detail,
			Kind:           kind,
			Range:          toRange(doc.text, a.Span()),
			SelectionRange: toRange(doc.text, a.Identifier.Span()),
		})
	}
	return symbols
}

func boolPtr(b bool) *bool {
	return &b
}
