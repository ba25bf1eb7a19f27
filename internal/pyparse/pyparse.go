// Package pyparse wraps the tree-sitter Python grammar behind the small
// surface the formatter needs: parse a snippet, reject it with a positional
// diagnostic, or hand back a read-only tree plus the original source bytes
// for verbatim slicing.
package pyparse

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// SyntaxError reports why a snippet could not be parsed. Line and Column are
// 1-based and 0-based respectively, matching the positions tree-sitter
// reports.
type SyntaxError struct {
	Line   int
	Column int
	Near   string
}

func (e *SyntaxError) Error() string {
	if e.Near != "" {
		return fmt.Sprintf("invalid syntax at line %d, column %d (near %q)", e.Line, e.Column, e.Near)
	}
	return fmt.Sprintf("invalid syntax at line %d, column %d", e.Line, e.Column)
}

// Tree owns a parsed module and the source it was parsed from. Close releases
// the underlying tree-sitter tree; the zero value is not usable.
type Tree struct {
	tree   *sitter.Tree
	Source []byte
}

// Root returns the module node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Close releases the parse tree.
func (t *Tree) Close() {
	t.tree.Close()
}

// Parse parses source as a Python module. A fresh parser is created per call
// so concurrent parses never share state. Returns *SyntaxError when the
// grammar rejects the input.
func Parse(ctx context.Context, source []byte) (*Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		serr := locateError(root, source)
		tree.Close()
		return nil, serr
	}
	return &Tree{tree: tree, Source: source}, nil
}

// locateError finds the first ERROR or missing node and turns its position
// into a SyntaxError.
func locateError(root *sitter.Node, source []byte) *SyntaxError {
	if bad := firstBadNode(root); bad != nil {
		point := bad.StartPoint()
		return &SyntaxError{
			Line:   int(point.Row) + 1,
			Column: int(point.Column),
			Near:   nearText(bad, source),
		}
	}
	return &SyntaxError{Line: 1, Column: 0}
}

func firstBadNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if !child.HasError() {
			continue
		}
		if bad := firstBadNode(child); bad != nil {
			return bad
		}
	}
	return nil
}

// nearText extracts a short, single-line excerpt around the offending node.
// Missing nodes are zero width, so an empty node slice widens to the rest of
// the line at that position.
func nearText(n *sitter.Node, source []byte) string {
	start, end := int(n.StartByte()), int(n.EndByte())
	if start >= len(source) {
		return ""
	}
	if end > len(source) {
		end = len(source)
	}
	if start == end {
		end = len(source)
	}
	text := string(source[start:end])
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	const limit = 24
	if len(text) > limit {
		text = text[:limit]
	}
	return strings.TrimSpace(text)
}
