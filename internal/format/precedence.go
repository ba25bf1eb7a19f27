package format

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/python-discord/blurple/internal/pyparse"
)

// rankClasses lists precedence classes from loosest to tightest binding.
// A class is keyed either by an operator lexeme (binary, boolean and
// comparison operators) or by a node kind, for constructs whose binding
// strength is positional rather than lexical. All unary operators share one
// class, so the node kind stands in for the lexeme. Ranks are class indexes:
// tighter binding means a higher number.
var rankClasses = [][]string{
	{"named_expression"},
	{"lambda"},
	{"conditional_expression"},
	{"or"},
	{"and"},
	{"not_operator"},
	{"in", "not in", "is", "is not", "<", "<=", ">", ">=", "!=", "==", "<>"},
	{"|"},
	{"^"},
	{"&"},
	{"<<", ">>"},
	{"+", "-"},
	{"*", "@", "/", "//", "%"},
	{"unary_operator"},
	{"**"},
	{"await"},
	{"call", "subscript", "attribute"},
	{
		"identifier", "keyword_identifier", "integer", "float",
		"true", "false", "none", "ellipsis",
		"string", "concatenated_string",
		"list", "set", "tuple", "dictionary",
		"list_comprehension", "set_comprehension", "dictionary_comprehension",
		"generator_expression", "parenthesized_expression",
	},
}

var ranks = buildRanks()

func buildRanks() map[string]int {
	m := make(map[string]int)
	for rank, class := range rankClasses {
		for _, key := range class {
			m[key] = rank
		}
	}
	return m
}

// rightAssoc holds the operators that group right to left.
var rightAssoc = map[string]bool{
	"**": true,
}

// breakBefore holds the operators that take their line break before rather
// than after the operator.
var breakBefore = map[string]bool{
	"+": true,
	"*": true,
}

// normalizeOp collapses interior whitespace in multi-word operator lexemes
// ("not  in" reads back from the source with whatever spacing it was written
// with).
func normalizeOp(lexeme string) string {
	return strings.Join(strings.Fields(lexeme), " ")
}

// rankOf returns the binding rank of a node. Operator applications resolve to
// the rank of their operator lexeme; everything else uses the node kind's own
// table entry. Unknown kinds rank loosest, which routes them through the
// conservative always-parenthesize paths.
func rankOf(n *sitter.Node, source []byte) int {
	switch n.Type() {
	case "binary_operator", "boolean_operator":
		if op := n.ChildByFieldName("operator"); op != nil {
			return ranks[normalizeOp(pyparse.Text(op, source))]
		}
	case "comparison_operator":
		if ops := pyparse.FieldChildren(n, "operators"); len(ops) > 0 {
			return ranks[normalizeOp(pyparse.Text(ops[0], source))]
		}
	}
	return ranks[n.Type()]
}
