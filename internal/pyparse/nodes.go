package pyparse

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Extra node kinds the grammar may interleave anywhere. They carry no program
// semantics and every traversal skips them.
var extraKinds = map[string]bool{
	"comment":           true,
	"line_continuation": true,
}

// IsExtra reports whether n is a comment or an explicit line continuation.
func IsExtra(n *sitter.Node) bool {
	return extraKinds[n.Type()]
}

// Text returns the verbatim source slice covered by n.
func Text(n *sitter.Node, source []byte) string {
	return n.Content(source)
}

// Children returns every child of n in document order, extras excluded.
func Children(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.ChildCount())
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if IsExtra(child) {
			continue
		}
		out = append(out, child)
	}
	return out
}

// NamedChildren returns the named children of n in document order, extras
// excluded.
func NamedChildren(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if IsExtra(child) {
			continue
		}
		out = append(out, child)
	}
	return out
}

// FieldChildren returns every child stored under the given field name.
// Some grammar rules (comparison operators, subscripts) repeat a field.
func FieldChildren(n *sitter.Node, field string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) != field {
			continue
		}
		child := n.Child(i)
		if IsExtra(child) {
			continue
		}
		out = append(out, child)
	}
	return out
}
