package format

import (
	"bytes"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/python-discord/blurple/internal/pyparse"
)

// packStatements renders a suite and packs its simple statements onto shared
// physical lines. A statement joins the pending line only while the result
// stays within the budget; appending one that would push past it flushes
// first, so an oversize statement sits alone on its own line. Compound
// statements always flush the pending line and are never packed.
//
// pad is this suite's depth relative to its parent; nested suites accumulate
// it through recursion. Every line of a statement gets the full prefix,
// continuation lines of a multi-line rendering included.
func (r *renderer) packStatements(stmts []*sitter.Node, pad int) []string {
	prefix := strings.Repeat(" ", pad)
	var out []string
	current := ""

	flush := func() {
		if current == "" {
			return
		}
		out = append(out, prefix+current)
		current = ""
	}
	emit := func(lines []string) {
		for _, line := range lines {
			out = append(out, prefix+line)
		}
	}

	for _, stmt := range stmts {
		if !simpleStatements[stmt.Type()] {
			flush()
			emit(r.compoundLines(stmt))
			continue
		}
		if r.spansSuite(stmt) {
			// No legal simple statement spans a newline between tokens at
			// bracket depth zero; a lenient parse that swallowed a suite
			// into an annotation does. Joining its lines would emit text
			// the interpreter rejects, so the slice goes out untouched.
			r.log.Debug("statement cannot be joined onto one line, emitting source verbatim",
				zap.String("kind", stmt.Type()),
				zap.Uint32("row", stmt.StartPoint().Row))
			flush()
			emit(strings.Split(r.text(stmt), "\n"))
			continue
		}
		text := r.simpleStatement(stmt)
		if strings.Contains(text, "\n") {
			flush()
			emit(strings.Split(text, "\n"))
			continue
		}
		if current == "" {
			current = text
			continue
		}
		joined := current + r.space() + text
		if pad+utf8.RuneCountInString(joined) > r.budget {
			flush()
			current = text
		} else {
			current = joined
		}
	}
	flush()
	return out
}

// spansSuite reports whether a statement's source crosses a physical line
// boundary anywhere the grammar of a simple statement does not allow one:
// between tokens, outside brackets, with no line continuation. String
// subtrees stay opaque because their interior newlines are token content.
func (r *renderer) spansSuite(n *sitter.Node) bool {
	if n.StartPoint().Row == n.EndPoint().Row {
		return false
	}
	var leaves []*sitter.Node
	var collect func(n *sitter.Node)
	collect = func(n *sitter.Node) {
		if n.ChildCount() == 0 || n.Type() == "string" {
			leaves = append(leaves, n)
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			collect(n.Child(i))
		}
	}
	collect(n)

	depth := 0
	for i, leaf := range leaves {
		if i > 0 && depth == 0 {
			gap := r.source[leaves[i-1].EndByte():leaf.StartByte()]
			if bytes.ContainsRune(gap, '\n') {
				return true
			}
		}
		switch leaf.Type() {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		}
	}
	return false
}

// packBlock packs a suite one indent step deep. A block must not come out
// empty; a lenient parse of a comment-only suite would otherwise drop the
// whole clause body.
func (r *renderer) packBlock(block *sitter.Node) []string {
	step := r.indentStep()
	lines := r.packStatements(pyparse.NamedChildren(block), step)
	if len(lines) == 0 {
		return []string{strings.Repeat(" ", step) + "pass" + r.space() + ";"}
	}
	return lines
}
