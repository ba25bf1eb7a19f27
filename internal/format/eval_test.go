package format

import (
	"context"
	"strconv"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/python-discord/blurple/internal/pyparse"
)

// A tiny arithmetic evaluator over parse trees, enough to prove that
// formatting preserves the value of operator-heavy expressions without
// shelling out to an interpreter. Booleans are their integer values, the way
// the language itself treats them.

func evalSource(t *testing.T, source string) int64 {
	t.Helper()
	tree, err := pyparse.Parse(context.Background(), []byte(source))
	if err != nil {
		t.Fatalf("parse %q: %v", source, err)
	}
	defer tree.Close()
	for _, stmt := range pyparse.NamedChildren(tree.Root()) {
		if stmt.Type() != "expression_statement" {
			continue
		}
		return evalNode(t, pyparse.NamedChildren(stmt)[0], []byte(source))
	}
	t.Fatalf("no expression statement in %q", source)
	return 0
}

func evalNode(t *testing.T, n *sitter.Node, src []byte) int64 {
	t.Helper()
	switch n.Type() {
	case "integer":
		v, err := strconv.ParseInt(pyparse.Text(n, src), 10, 64)
		if err != nil {
			t.Fatalf("bad integer %q: %v", pyparse.Text(n, src), err)
		}
		return v
	case "true":
		return 1
	case "false":
		return 0
	case "parenthesized_expression":
		return evalNode(t, pyparse.NamedChildren(n)[0], src)
	case "not_operator":
		if evalNode(t, n.ChildByFieldName("argument"), src) == 0 {
			return 1
		}
		return 0
	case "unary_operator":
		v := evalNode(t, n.ChildByFieldName("argument"), src)
		switch pyparse.Text(n.ChildByFieldName("operator"), src) {
		case "-":
			return -v
		case "+":
			return v
		case "~":
			return ^v
		}
	case "binary_operator":
		// Regroup the run the way the interpreter would; the grammar's own
		// grouping inverts ^ against &.
		operands, ops, ok := (&renderer{source: src}).flattenBinary(n)
		if !ok {
			t.Fatalf("lopsided binary run %q", pyparse.Text(n, src))
		}
		g, _ := groupOperands(operands, ops, 0, 0)
		return evalGroup(t, g, src)
	case "boolean_operator":
		l := evalNode(t, n.ChildByFieldName("left"), src)
		switch pyparse.Text(n.ChildByFieldName("operator"), src) {
		case "and":
			if l == 0 {
				return l
			}
			return evalNode(t, n.ChildByFieldName("right"), src)
		case "or":
			if l != 0 {
				return l
			}
			return evalNode(t, n.ChildByFieldName("right"), src)
		}
	case "comparison_operator":
		operands := pyparse.NamedChildren(n)
		ops := comparisonOps(n, src)
		if len(operands) != len(ops)+1 {
			t.Fatalf("lopsided comparison %q", pyparse.Text(n, src))
		}
		prev := evalNode(t, operands[0], src)
		for i, op := range ops {
			next := evalNode(t, operands[i+1], src)
			if !compare(t, op, prev, next) {
				return 0
			}
			prev = next
		}
		return 1
	case "conditional_expression":
		kids := pyparse.NamedChildren(n)
		if evalNode(t, kids[1], src) != 0 {
			return evalNode(t, kids[0], src)
		}
		return evalNode(t, kids[2], src)
	}
	t.Fatalf("evaluator does not handle %s (%q)", n.Type(), pyparse.Text(n, src))
	return 0
}

func evalGroup(t *testing.T, g *binGroup, src []byte) int64 {
	t.Helper()
	if g.leaf != nil {
		return evalNode(t, g.leaf, src)
	}
	l := evalGroup(t, g.left, src)
	r := evalGroup(t, g.right, src)
	switch g.op {
	case "+":
		return l + r
	case "-":
		return l - r
	case "*":
		return l * r
	case "//":
		return floorDiv(l, r)
	case "%":
		return floorMod(l, r)
	case "**":
		return intPow(l, r)
	case "<<":
		return l << uint(r)
	case ">>":
		return l >> uint(r)
	case "|":
		return l | r
	case "^":
		return l ^ r
	case "&":
		return l & r
	}
	t.Fatalf("evaluator does not handle binary operator %q", g.op)
	return 0
}

func comparisonOps(n *sitter.Node, src []byte) []string {
	var ops []string
	for _, op := range pyparse.FieldChildren(n, "operators") {
		ops = append(ops, pyparse.Text(op, src))
	}
	if len(ops) > 0 {
		return ops
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if !child.IsNamed() && comparisonTokens[normalizeOp(pyparse.Text(child, src))] {
			ops = append(ops, pyparse.Text(child, src))
		}
	}
	return ops
}

func compare(t *testing.T, op string, l, r int64) bool {
	switch op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	case "==":
		return l == r
	case "!=":
		return l != r
	}
	t.Fatalf("evaluator does not handle comparison %q", op)
	return false
}

// floorDiv and floorMod round toward negative infinity, matching // and %.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func intPow(base, exp int64) int64 {
	v := int64(1)
	for ; exp > 0; exp-- {
		v *= base
	}
	return v
}
