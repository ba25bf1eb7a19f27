package main

import "strings"

// stripFences unwraps a pasted snippet from a Markdown code fence or inline
// code span. The optional language tag on the opening fence line is dropped.
// Text without a complete fence passes through untouched.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	for _, delim := range []string{"```", "``", "`"} {
		if len(trimmed) < 2*len(delim) {
			continue
		}
		if !strings.HasPrefix(trimmed, delim) || !strings.HasSuffix(trimmed, delim) {
			continue
		}
		body := trimmed[len(delim) : len(trimmed)-len(delim)]
		if delim == "```" {
			if first, rest, ok := strings.Cut(body, "\n"); ok && isLangTag(first) {
				body = rest
			}
		}
		return strings.TrimSpace(body)
	}
	return s
}

// isLangTag reports whether line looks like a fence language tag.
func isLangTag(line string) bool {
	if line == "" {
		return false
	}
	for _, r := range line {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
