package format

import "strings"

// InvertIndents mirrors the indentation of every line around the deepest
// one: a line indented by n spaces comes out indented by max-n. Applying it
// twice restores the input whenever some line starts at column zero, which
// the renderer guarantees, so the same transform maps the renderer's
// mirrored output back onto a conventional layout.
func InvertIndents(text string) string {
	if text == "" {
		return text
	}
	lines := strings.Split(text, "\n")
	max := 0
	for _, line := range lines {
		if n := leadingSpaces(line); n > max {
			max = n
		}
	}
	var b strings.Builder
	b.Grow(len(text) + max*len(lines))
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Repeat(" ", max-leadingSpaces(line)))
		b.WriteString(strings.TrimLeft(line, " "))
	}
	return b.String()
}

func leadingSpaces(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}
