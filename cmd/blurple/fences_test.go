package main

import "testing"

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "x = 1\n", "x = 1\n"},
		{"block with language", "```python\nx = 1\n```", "x = 1"},
		{"block without language", "```\nx = 1\n```", "x = 1"},
		{"language tag casing", "```PY\nx = 1\n```", "x = 1"},
		{"first line is code", "```x = 1\ny = 2\n```", "x = 1\ny = 2"},
		{"tag without newline is code", "```python```", "python"},
		{"inline span", "`x = 1`", "x = 1"},
		{"double backticks", "``x = 1``", "x = 1"},
		{"unterminated fence", "```python\nx = 1", "```python\nx = 1"},
		{"surrounding whitespace", "  ```\nx = 1\n```  \n", "x = 1"},
		{"empty span", "``", ""},
	}
	for _, tc := range cases {
		if got := stripFences(tc.in); got != tc.want {
			t.Errorf("%s: stripFences(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestIsLangTag(t *testing.T) {
	for tag, want := range map[string]bool{
		"python": true,
		"py":     true,
		"Python": true,
		"":       false,
		"x = 1":  false,
		"c++":    false,
	} {
		if got := isLangTag(tag); got != want {
			t.Errorf("isLangTag(%q) = %v, want %v", tag, got, want)
		}
	}
}
