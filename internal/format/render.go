package format

import (
	"math/rand"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/python-discord/blurple/internal/pyparse"
)

// renderer holds the per-call state for one formatting pass: the source
// bytes for verbatim slicing, the random source for whitespace jitter, and
// the knobs. Nothing here survives the call.
type renderer struct {
	source    []byte
	rng       *rand.Rand
	log       *zap.Logger
	budget    int
	indentMin int
	indentMax int
}

// space returns a run of 1-2 spaces. Every token boundary gets one.
func (r *renderer) space() string {
	return spaces[1+r.rng.Intn(2)]
}

var spaces = []string{"", " ", "  "}

// indentStep picks the indent width for one suite.
func (r *renderer) indentStep() int {
	return r.indentMin + r.rng.Intn(r.indentMax-r.indentMin+1)
}

func (r *renderer) text(n *sitter.Node) string {
	return pyparse.Text(n, r.source)
}

// module renders the whole tree. The emitted text is the indentation mirror
// of a conventionally indented rendering: inversion is an involution and a
// top-level line always has zero leading spaces, so the inversion stage maps
// this text onto the conventional form where every suite sits deeper than
// its header.
func (r *renderer) module(root *sitter.Node) string {
	lines := r.packStatements(pyparse.NamedChildren(root), 0)
	return InvertIndents(strings.Join(lines, "\n"))
}

func kindSet(kinds ...string) map[string]bool {
	set := make(map[string]bool, len(kinds))
	for _, kind := range kinds {
		set[kind] = true
	}
	return set
}

// Statement kinds that may be terminated with a semicolon and packed onto a
// shared physical line.
var simpleStatements = kindSet(
	"expression_statement", "import_statement", "import_from_statement",
	"future_import_statement", "assert_statement", "return_statement",
	"delete_statement", "raise_statement", "pass_statement",
	"break_statement", "continue_statement", "global_statement",
	"nonlocal_statement", "exec_statement", "print_statement",
	"type_alias_statement",
)

// Clause kinds that belong to an enclosing compound statement and render at
// the same depth as its header.
var clauseKinds = kindSet(
	"elif_clause", "else_clause", "except_clause", "except_group_clause",
	"finally_clause", "case_clause",
)

// simpleStatement renders one semicolon-able statement, terminator included.
func (r *renderer) simpleStatement(n *sitter.Node) string {
	return r.reassemble(n) + r.space() + ";"
}

// compoundLines renders a block-introducing statement as a sequence of
// lines: header text accumulates inline until the suite starts, the suite is
// packed one indent step deeper, and trailing clauses repeat the cycle at
// the same depth.
func (r *renderer) compoundLines(n *sitter.Node) []string {
	if n.Type() == "decorated_definition" {
		return r.decoratedLines(n)
	}

	var lines []string
	var header []string
	flush := func() {
		if len(header) == 0 {
			return
		}
		joined := r.joinSpaced(header)
		lines = append(lines, strings.Split(joined, "\n")...)
		header = nil
	}

	for _, child := range pyparse.Children(n) {
		switch {
		case child.Type() == "block":
			flush()
			lines = append(lines, r.packBlock(child)...)
		case clauseKinds[child.Type()]:
			flush()
			lines = append(lines, r.compoundLines(child)...)
		case child.IsNamed():
			header = append(header, r.expr(child))
		default:
			header = append(header, r.text(child))
		}
	}
	flush()
	return lines
}

func (r *renderer) decoratedLines(n *sitter.Node) []string {
	var lines []string
	for _, child := range pyparse.Children(n) {
		if child.Type() != "decorator" {
			lines = append(lines, r.compoundLines(child)...)
			continue
		}
		inner := pyparse.NamedChildren(child)
		if len(inner) == 0 {
			lines = append(lines, r.text(child))
			continue
		}
		lines = append(lines, "@"+r.space()+r.expr(inner[0]))
	}
	return lines
}

// joinSpaced joins parts with an independent random space run per boundary.
func (r *renderer) joinSpaced(parts []string) string {
	var b strings.Builder
	for i, part := range parts {
		if i > 0 {
			b.WriteString(r.space())
		}
		b.WriteString(part)
	}
	return b.String()
}

// Kinds rendered by reassembly: emit the node's own tokens verbatim and
// recurse into named children, a random space run at each boundary. Python's
// grammar is whitespace-insensitive between tokens on one logical line, so
// this is correct for every structural kind that carries no precedence
// decisions of its own. Simple statements reassemble the same way;
// simpleStatement adds the terminator.
var reassembleKinds = kindSet(
	"assignment", "augmented_assignment", "expression_list", "pattern_list",
	"tuple_pattern", "list_pattern", "list", "set", "tuple", "dictionary",
	"pair", "slice", "type", "member_type", "union_type", "generic_type",
	"constrained_type", "splat_type", "type_parameter",
	"list_comprehension", "set_comprehension", "dictionary_comprehension",
	"generator_expression", "for_in_clause", "if_clause",
	"with_clause", "with_item", "as_pattern", "as_pattern_target",
	"parameters", "lambda_parameters", "default_parameter",
	"typed_parameter", "typed_default_parameter", "list_splat_pattern",
	"dictionary_splat_pattern", "positional_separator", "keyword_separator",
	"keyword_argument", "argument_list", "dotted_name", "aliased_import",
	"relative_import", "import_prefix", "wildcard_import",
	"parenthesized_expression", "yield", "chevron",
	"case_pattern", "union_pattern", "dict_pattern", "class_pattern",
	"splat_pattern", "keyword_pattern", "complex_pattern", "guard",
	"expression_statement", "import_statement", "import_from_statement",
	"future_import_statement", "assert_statement", "return_statement",
	"delete_statement", "raise_statement", "pass_statement",
	"break_statement", "continue_statement", "global_statement",
	"nonlocal_statement", "exec_statement", "print_statement",
	"type_alias_statement",
)

func (r *renderer) reassemble(n *sitter.Node) string {
	children := pyparse.Children(n)
	if len(children) == 0 {
		return r.text(n)
	}
	parts := make([]string, 0, len(children))
	for _, child := range children {
		if child.IsNamed() {
			parts = append(parts, r.expr(child))
		} else {
			parts = append(parts, r.text(child))
		}
	}
	return r.joinSpaced(parts)
}

// expr renders one expression node.
func (r *renderer) expr(n *sitter.Node) string {
	switch n.Type() {
	case "identifier", "keyword_identifier", "integer", "float",
		"true", "false", "none", "ellipsis":
		return r.text(n)
	case "string":
		return r.stringLiteral(n)
	case "concatenated_string":
		parts := pyparse.NamedChildren(n)
		rendered := make([]string, 0, len(parts))
		for _, part := range parts {
			rendered = append(rendered, r.expr(part))
		}
		return r.joinSpaced(rendered)
	case "binary_operator":
		return r.binary(n)
	case "boolean_operator":
		return r.boolChain(n)
	case "comparison_operator":
		return r.comparison(n)
	case "not_operator", "unary_operator":
		return r.unary(n)
	case "conditional_expression":
		return r.conditional(n)
	case "named_expression":
		return r.namedExpr(n)
	case "lambda":
		return r.lambdaExpr(n)
	case "await":
		return r.awaitExpr(n)
	case "call":
		return r.callExpr(n)
	case "attribute":
		return r.attribute(n)
	case "subscript":
		return r.subscriptExpr(n)
	case "list_splat":
		return r.listSplat(n)
	case "dictionary_splat":
		return r.reassemble(n)
	}
	if reassembleKinds[n.Type()] {
		return r.reassemble(n)
	}
	return r.fallback(n)
}

// fallback emits the verbatim source slice for a kind the renderer does not
// handle. The slice is correct by construction; the gap is logged so it can
// be closed.
func (r *renderer) fallback(n *sitter.Node) string {
	r.log.Debug("unhandled node kind, emitting source verbatim",
		zap.String("kind", n.Type()),
		zap.Uint32("row", n.StartPoint().Row),
		zap.Uint32("column", n.StartPoint().Column))
	return r.text(n)
}

// operand strips redundant parentheses so parenthesization decisions are
// re-derived from ranks alone. Yield expressions keep their wrapper: they
// are only legal inside one.
func operand(n *sitter.Node) *sitter.Node {
	for n.Type() == "parenthesized_expression" {
		inner := pyparse.NamedChildren(n)
		if len(inner) != 1 || inner[0].Type() == "yield" {
			break
		}
		n = inner[0]
	}
	return n
}

func (r *renderer) parenthesize(n *sitter.Node) string {
	return "(" + r.space() + r.expr(n) + r.space() + ")"
}

func (r *renderer) maybeParen(n *sitter.Node, wrap bool) string {
	if wrap {
		return r.parenthesize(n)
	}
	return r.expr(n)
}

func (r *renderer) rank(n *sitter.Node) int {
	return rankOf(n, r.source)
}

// binGroup is one operand in a regrouped binary run: either a leaf subtree
// from the parse, or an application of op rebuilt from the rank table.
type binGroup struct {
	op          string
	left, right *binGroup
	leaf        *sitter.Node
}

// binary renders a run of binary operators. The grammar binds ^ tighter
// than &, the reverse of how the interpreter evaluates them, so the tree's
// grouping of a bare operator run cannot be trusted as-is; the run is
// flattened in source order and regrouped from the rank table before any
// parentheses are decided. Explicit parentheses survive as their own node
// kind, which ends the run, so programmer grouping is never second-guessed.
func (r *renderer) binary(n *sitter.Node) string {
	operands, ops, ok := r.flattenBinary(n)
	if !ok {
		return r.fallback(n)
	}
	g, _ := groupOperands(operands, ops, 0, 0)
	return r.renderBinary(g)
}

// flattenBinary walks a maximal run of bare binary_operator nodes and
// returns its operands and operator lexemes in source order.
func (r *renderer) flattenBinary(n *sitter.Node) (operands []*binGroup, ops []string, ok bool) {
	var walk func(n *sitter.Node) bool
	walk = func(n *sitter.Node) bool {
		if n.Type() == "binary_operator" {
			opNode := n.ChildByFieldName("operator")
			left := n.ChildByFieldName("left")
			right := n.ChildByFieldName("right")
			if opNode == nil || left == nil || right == nil {
				return false
			}
			if !walk(left) {
				return false
			}
			ops = append(ops, normalizeOp(r.text(opNode)))
			return walk(right)
		}
		operands = append(operands, &binGroup{leaf: operand(n)})
		return true
	}
	if !walk(n) || len(ops) == 0 {
		return nil, nil, false
	}
	return operands, ops, true
}

// groupOperands regroups a source-order operand run by rank, via precedence
// climbing: left-associative except for the operators in rightAssoc. i is
// the index of the leftmost operand still unconsumed; the returned index is
// the first one this call did not consume.
func groupOperands(operands []*binGroup, ops []string, i, min int) (*binGroup, int) {
	left := operands[i]
	for i < len(ops) && ranks[ops[i]] >= min {
		op := ops[i]
		next := ranks[op] + 1
		if rightAssoc[op] {
			next = ranks[op]
		}
		var right *binGroup
		right, i = groupOperands(operands, ops, i+1, next)
		left = &binGroup{op: op, left: left, right: right}
	}
	return left, i
}

func (r *renderer) groupRank(g *binGroup) int {
	if g.leaf != nil {
		return r.rank(g.leaf)
	}
	return ranks[g.op]
}

func (r *renderer) groupOperand(g *binGroup, wrap bool) string {
	if wrap {
		return "(" + r.space() + r.renderBinary(g) + r.space() + ")"
	}
	return r.renderBinary(g)
}

// renderBinary emits one regrouped application. It always wraps itself in
// parentheses, which is what makes the adjacent line break legal anywhere
// the expression can appear.
func (r *renderer) renderBinary(g *binGroup) string {
	if g.leaf != nil {
		return r.expr(g.leaf)
	}
	p := ranks[g.op]
	var parLeft, parRight bool
	if rightAssoc[g.op] {
		parLeft = r.groupRank(g.left) <= p
		parRight = r.groupRank(g.right) < p
	} else {
		parLeft = r.groupRank(g.left) < p
		parRight = r.groupRank(g.right) <= p
	}

	nlBefore, nlAfter := "", "\n"
	if breakBefore[g.op] {
		nlBefore, nlAfter = "\n", ""
	}

	var b strings.Builder
	b.WriteString("(")
	b.WriteString(r.space())
	b.WriteString(r.groupOperand(g.left, parLeft))
	b.WriteString(r.space())
	b.WriteString(nlBefore)
	b.WriteString(g.op)
	b.WriteString(r.space())
	b.WriteString(nlAfter)
	b.WriteString(r.groupOperand(g.right, parRight))
	b.WriteString(r.space())
	b.WriteString(")")
	return b.String()
}

// boolChain renders a run of one boolean operator as a flat chain, the way
// the language groups it. Parenthesized sub-chains stay nested because the
// parenthesized node interrupts the run.
func (r *renderer) boolChain(n *sitter.Node) string {
	opNode := n.ChildByFieldName("operator")
	if opNode == nil {
		return r.fallback(n)
	}
	op := normalizeOp(r.text(opNode))
	p := ranks[op]

	var values []*sitter.Node
	r.flattenBool(n, op, &values)

	parts := make([]string, 0, len(values))
	for _, v := range values {
		v = operand(v)
		parts = append(parts, r.maybeParen(v, r.rank(v) <= p))
	}

	var b strings.Builder
	for i, part := range parts {
		if i > 0 {
			b.WriteString(r.space())
			b.WriteString(op)
			b.WriteString(r.space())
		}
		b.WriteString(part)
	}
	return b.String()
}

func (r *renderer) flattenBool(n *sitter.Node, op string, out *[]*sitter.Node) {
	for _, side := range []*sitter.Node{n.ChildByFieldName("left"), n.ChildByFieldName("right")} {
		if side == nil {
			continue
		}
		if side.Type() == "boolean_operator" {
			if sideOp := side.ChildByFieldName("operator"); sideOp != nil && normalizeOp(r.text(sideOp)) == op {
				r.flattenBool(side, op, out)
				continue
			}
		}
		*out = append(*out, side)
	}
}

// comparisonTokens recognizes comparison operator lexemes when the grammar
// does not expose them under a field.
var comparisonTokens = map[string]bool{
	"<": true, "<=": true, ">": true, ">=": true, "==": true, "!=": true,
	"<>": true, "in": true, "not in": true, "is": true, "is not": true,
}

// comparison renders a flat comparison chain. Every operand is tested by its
// own rank against the chain operator rank; equal rank parenthesizes.
func (r *renderer) comparison(n *sitter.Node) string {
	operands := pyparse.NamedChildren(n)
	ops := pyparse.FieldChildren(n, "operators")
	if len(ops) == 0 {
		for _, child := range pyparse.Children(n) {
			if !child.IsNamed() && comparisonTokens[normalizeOp(r.text(child))] {
				ops = append(ops, child)
			}
		}
	}
	if len(operands) != len(ops)+1 || len(ops) == 0 {
		return r.fallback(n)
	}
	p := ranks[normalizeOp(r.text(ops[0]))]

	render := func(n *sitter.Node) string {
		n = operand(n)
		return r.maybeParen(n, r.rank(n) <= p)
	}

	var b strings.Builder
	b.WriteString(render(operands[0]))
	for i, opNode := range ops {
		b.WriteString(r.space())
		b.WriteString(normalizeOp(r.text(opNode)))
		b.WriteString(r.space())
		b.WriteString(render(operands[i+1]))
	}
	return b.String()
}

// unary renders not/unary operator applications. All unary operators share a
// rank class, so the node kind keys the table.
func (r *renderer) unary(n *sitter.Node) string {
	var op string
	if n.Type() == "not_operator" {
		op = "not"
	} else if opNode := n.ChildByFieldName("operator"); opNode != nil {
		op = r.text(opNode)
	} else {
		return r.fallback(n)
	}
	argNode := n.ChildByFieldName("argument")
	if argNode == nil {
		return r.fallback(n)
	}
	p := ranks[n.Type()]
	arg := operand(argNode)
	return op + r.space() + r.maybeParen(arg, r.rank(arg) < p)
}

// conditional renders a ternary. The value and condition positions require a
// rank strictly above the conditional's own (the grammar wants or_test
// there); the else branch chains right-associatively, so strict comparison
// is enough.
func (r *renderer) conditional(n *sitter.Node) string {
	kids := pyparse.NamedChildren(n)
	if len(kids) != 3 {
		return r.fallback(n)
	}
	p := ranks["conditional_expression"]
	value := operand(kids[0])
	cond := operand(kids[1])
	alt := operand(kids[2])

	var b strings.Builder
	b.WriteString(r.maybeParen(value, r.rank(value) <= p))
	b.WriteString(r.space())
	b.WriteString("if")
	b.WriteString(r.space())
	b.WriteString(r.maybeParen(cond, r.rank(cond) <= p))
	b.WriteString(r.space())
	b.WriteString("else")
	b.WriteString(r.space())
	b.WriteString(r.maybeParen(alt, r.rank(alt) < p))
	return b.String()
}

// namedExpr always parenthesizes itself; an assignment expression is illegal
// bare in most of the positions the renderer can put it.
func (r *renderer) namedExpr(n *sitter.Node) string {
	name := n.ChildByFieldName("name")
	value := n.ChildByFieldName("value")
	if name == nil || value == nil {
		return r.fallback(n)
	}
	return "(" + r.expr(name) + r.space() + ":=" + r.space() + r.expr(value) + ")"
}

func (r *renderer) lambdaExpr(n *sitter.Node) string {
	body := n.ChildByFieldName("body")
	if body == nil {
		return r.fallback(n)
	}
	var b strings.Builder
	b.WriteString("lambda")
	b.WriteString(r.space())
	if params := n.ChildByFieldName("parameters"); params != nil {
		b.WriteString(r.reassemble(params))
		b.WriteString(r.space())
	}
	b.WriteString(":")
	b.WriteString(r.space())
	b.WriteString(r.expr(body))
	return b.String()
}

func (r *renderer) awaitExpr(n *sitter.Node) string {
	kids := pyparse.NamedChildren(n)
	if len(kids) != 1 {
		return r.fallback(n)
	}
	p := ranks["await"]
	arg := operand(kids[0])
	return "await" + r.space() + r.maybeParen(arg, r.rank(arg) <= p)
}

func (r *renderer) callExpr(n *sitter.Node) string {
	fnNode := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	if fnNode == nil || args == nil {
		return r.fallback(n)
	}
	fn := operand(fnNode)
	wrapped := r.maybeParen(fn, r.rank(fn) < ranks["call"])
	if args.Type() == "argument_list" {
		return wrapped + r.space() + r.reassemble(args)
	}
	// generator expression argument carries its own parentheses
	return wrapped + r.space() + r.expr(args)
}

func (r *renderer) attribute(n *sitter.Node) string {
	objNode := n.ChildByFieldName("object")
	attr := n.ChildByFieldName("attribute")
	if objNode == nil || attr == nil {
		return r.fallback(n)
	}
	obj := operand(objNode)
	wrapped := r.maybeParen(obj, r.rank(obj) < ranks["attribute"])
	return wrapped + r.space() + "." + r.space() + r.text(attr)
}

func (r *renderer) subscriptExpr(n *sitter.Node) string {
	valueNode := n.ChildByFieldName("value")
	if valueNode == nil {
		return r.fallback(n)
	}
	value := operand(valueNode)
	parts := []string{r.maybeParen(value, r.rank(value) < ranks["subscript"])}
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) == "value" {
			continue
		}
		child := n.Child(i)
		if pyparse.IsExtra(child) {
			continue
		}
		if child.IsNamed() {
			parts = append(parts, r.expr(child))
		} else {
			parts = append(parts, r.text(child))
		}
	}
	return r.joinSpaced(parts)
}

// listSplat parenthesizes its value unconditionally, the cheapest way to
// keep any operand legal after a star.
func (r *renderer) listSplat(n *sitter.Node) string {
	kids := pyparse.NamedChildren(n)
	if len(kids) != 1 {
		return r.reassemble(n)
	}
	return "*" + r.space() + r.parenthesize(kids[0])
}
