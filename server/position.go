package server

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/chazu/quill/ast"
)

// LSP positions are 0-based lines and UTF-16 code unit columns; ast
// positions are byte offsets plus 1-based lines and rune columns.

// toPosition converts a byte offset in text to an LSP position.
func toPosition(text string, offset int) protocol.Position {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	line := strings.Count(text[:lineStart], "\n")
	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(utf16Len(text[lineStart:offset])),
	}
}

func toRange(text string, span ast.Span) protocol.Range {
	return protocol.Range{
		Start: toPosition(text, span.Start.Offset),
		End:   toPosition(text, span.End.Offset),
	}
}

// offsetAt converts an LSP position to a byte offset in text, clamping to
// the end of the line or document.
func offsetAt(text string, pos protocol.Position) int {
	offset := 0
	for line := protocol.UInteger(0); line < pos.Line; line++ {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return len(text)
		}
		offset += nl + 1
	}

	units := 0
	for offset < len(text) && units < int(pos.Character) {
		r, size := utf8.DecodeRuneInString(text[offset:])
		if r == '\n' {
			break
		}
		units += utf16.RuneLen(r)
		offset += size
	}
	return offset
}

// endPosition returns the ast position just past the last byte of text.
func endPosition(text string) ast.Position {
	lineStart := strings.LastIndexByte(text, '\n') + 1
	return ast.Position{
		Offset: len(text),
		Line:   strings.Count(text, "\n") + 1,
		Column: utf8.RuneCountInString(text[lineStart:]) + 1,
	}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
