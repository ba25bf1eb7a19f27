package format

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"
)

// stringLiteral re-encodes one string literal: decode the source spelling to
// its value, then re-spell it with freshly chosen quotes and escapes. The
// value never changes; the delimiters and escape forms usually do. Anything
// the decoder cannot take apart safely is passed through verbatim.
//
// Format strings stay verbatim: their replacement fields are expressions,
// not text, and reflowing them is a job this pass does not attempt.
func (r *renderer) stringLiteral(n *sitter.Node) string {
	text := r.text(n)
	lit, ok := splitLiteral(text)
	if !ok {
		r.log.Debug("unrecognized string literal shape, emitting verbatim",
			zap.Uint32("row", n.StartPoint().Row))
		return concealNewlines(text)
	}
	if lit.isFormat {
		return concealNewlines(text)
	}
	if lit.isBytes {
		value, ok := decodeBytes(lit.content, lit.raw)
		if !ok {
			return concealNewlines(text)
		}
		return "b" + encodeBytes(value)
	}
	value, ok := decodeStr(lit.content, lit.raw)
	if !ok {
		return concealNewlines(text)
	}
	return encodeStr(value)
}

// literalNL stands in for a raw newline inside a literal emitted verbatim.
// Hiding the newline keeps the packer and the indentation passes from
// padding or re-indenting string content; Format swaps real newlines back
// in after the last pass. U+FFFF is a noncharacter, so real source text
// essentially never carries it.
const literalNL = '￿'

func concealNewlines(text string) string {
	if !strings.Contains(text, "\n") || strings.ContainsRune(text, literalNL) {
		return text
	}
	return strings.ReplaceAll(text, "\n", string(literalNL))
}

type literal struct {
	raw      bool
	isBytes  bool
	isFormat bool
	content  string
}

// splitLiteral takes a literal's source spelling apart into prefix flags and
// the text between the delimiters.
func splitLiteral(text string) (literal, bool) {
	var lit literal
	i := 0
scan:
	for ; i < len(text); i++ {
		switch text[i] {
		case 'r', 'R':
			lit.raw = true
		case 'b', 'B':
			lit.isBytes = true
		case 'f', 'F':
			lit.isFormat = true
		case 'u', 'U':
			// legal but meaningless, dropped on re-encode
		case '\'', '"':
			break scan
		default:
			return lit, false
		}
	}
	rest := text[i:]
	quote := ""
	switch {
	case strings.HasPrefix(rest, `"""`):
		quote = `"""`
	case strings.HasPrefix(rest, "'''"):
		quote = "'''"
	case strings.HasPrefix(rest, `"`):
		quote = `"`
	case strings.HasPrefix(rest, "'"):
		quote = "'"
	default:
		return lit, false
	}
	if len(rest) < 2*len(quote) || !strings.HasSuffix(rest, quote) {
		return lit, false
	}
	lit.content = rest[len(quote) : len(rest)-len(quote)]
	return lit, true
}

// decodeStr resolves a text literal's escapes to the string value. It
// reports false for spellings it will not touch: named escapes, malformed
// or surrogate code points, and source bytes that are not valid UTF-8.
func decodeStr(content string, raw bool) (string, bool) {
	if !utf8.ValidString(content) {
		return "", false
	}
	if raw {
		return content, true
	}
	var b strings.Builder
	for i := 0; i < len(content); {
		c := content[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(content) {
			return "", false
		}
		e := content[i+1]
		switch e {
		case '\n':
			i += 2
		case '\r':
			if i+2 < len(content) && content[i+2] == '\n' {
				i += 3
			} else {
				i += 2
			}
		case '\\', '\'', '"':
			b.WriteByte(e)
			i += 2
		case 'a':
			b.WriteByte('\a')
			i += 2
		case 'b':
			b.WriteByte('\b')
			i += 2
		case 'f':
			b.WriteByte('\f')
			i += 2
		case 'n':
			b.WriteByte('\n')
			i += 2
		case 'r':
			b.WriteByte('\r')
			i += 2
		case 't':
			b.WriteByte('\t')
			i += 2
		case 'v':
			b.WriteByte('\v')
			i += 2
		case 'x':
			v, n := hexValue(content[i+2:], 2)
			if n != 2 {
				return "", false
			}
			b.WriteRune(rune(v))
			i += 4
		case 'u':
			v, n := hexValue(content[i+2:], 4)
			if n != 4 || isSurrogate(v) {
				return "", false
			}
			b.WriteRune(rune(v))
			i += 6
		case 'U':
			v, n := hexValue(content[i+2:], 8)
			if n != 8 || v > 0x10FFFF || isSurrogate(v) {
				return "", false
			}
			b.WriteRune(rune(v))
			i += 10
		case 'N':
			return "", false
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v, n := octalValue(content[i+1:])
			b.WriteRune(rune(v))
			i += 1 + n
		default:
			b.WriteByte('\\')
			b.WriteByte(e)
			i += 2
		}
	}
	return b.String(), true
}

// decodeBytes resolves a bytes literal's escapes to the byte value. Bytes
// literals must be ASCII in source, and \u, \U and \N carry no meaning in
// them.
func decodeBytes(content string, raw bool) ([]byte, bool) {
	for i := 0; i < len(content); i++ {
		if content[i] >= 0x80 {
			return nil, false
		}
	}
	if raw {
		return []byte(content), true
	}
	out := []byte{}
	for i := 0; i < len(content); {
		c := content[i]
		if c != '\\' {
			out = append(out, c)
			i++
			continue
		}
		if i+1 >= len(content) {
			return nil, false
		}
		e := content[i+1]
		switch e {
		case '\n':
			i += 2
		case '\r':
			if i+2 < len(content) && content[i+2] == '\n' {
				i += 3
			} else {
				i += 2
			}
		case '\\', '\'', '"':
			out = append(out, e)
			i += 2
		case 'a':
			out = append(out, '\a')
			i += 2
		case 'b':
			out = append(out, '\b')
			i += 2
		case 'f':
			out = append(out, '\f')
			i += 2
		case 'n':
			out = append(out, '\n')
			i += 2
		case 'r':
			out = append(out, '\r')
			i += 2
		case 't':
			out = append(out, '\t')
			i += 2
		case 'v':
			out = append(out, '\v')
			i += 2
		case 'x':
			v, n := hexValue(content[i+2:], 2)
			if n != 2 {
				return nil, false
			}
			out = append(out, byte(v))
			i += 4
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v, n := octalValue(content[i+1:])
			if v > 0xFF {
				return nil, false
			}
			out = append(out, byte(v))
			i += 1 + n
		default:
			out = append(out, '\\', e)
			i += 2
		}
	}
	return out, true
}

func hexValue(s string, want int) (int, int) {
	v := 0
	for i := 0; i < want; i++ {
		if i >= len(s) {
			return 0, i
		}
		d := hexDigit(s[i])
		if d < 0 {
			return 0, i
		}
		v = v<<4 | d
	}
	return v, want
}

func hexDigit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

func octalValue(s string) (int, int) {
	v, n := 0, 0
	for n < 3 && n < len(s) && s[n] >= '0' && s[n] <= '7' {
		v = v<<3 | int(s[n]-'0')
		n++
	}
	return v, n
}

func isSurrogate(v int) bool {
	return v >= 0xD800 && v <= 0xDFFF
}

// encodeStr spells a string value as a literal. Backslashes, newlines,
// carriage returns, tabs and anything unprintable come out as escapes, so
// the spelling always fits on one physical line.
func encodeStr(value string) string {
	var b strings.Builder
	for _, c := range value {
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if unicode.IsPrint(c) {
				b.WriteRune(c)
			} else {
				b.WriteString(escapePoint(c))
			}
		}
	}
	quote, body := chooseQuote(b.String())
	return quote + body + quote
}

func escapePoint(c rune) string {
	switch {
	case c < 0x100:
		return fmt.Sprintf(`\x%02x`, c)
	case c < 0x10000:
		return fmt.Sprintf(`\u%04x`, c)
	default:
		return fmt.Sprintf(`\U%08x`, c)
	}
}

// encodeBytes spells a byte value as an unprefixed literal; the caller adds
// the b.
func encodeBytes(value []byte) string {
	var b strings.Builder
	for _, c := range value {
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c >= 0x20 && c < 0x7F {
				b.WriteByte(c)
			} else {
				fmt.Fprintf(&b, `\x%02x`, c)
			}
		}
	}
	quote, body := chooseQuote(b.String())
	return quote + body + quote
}

var quoteOrder = []string{"'", `"`, `"""`, "'''"}

// chooseQuote picks delimiters for an escaped literal body. Candidates are
// the quotings that do not occur in the body, kept in preference order
// except that one starting with the body's final character sorts last; if
// the winner still ends with that character, the body's last character gets
// escaped so the delimiter stays unambiguous. With every quoting occluded,
// single quotes win and every single quote in the body is escaped.
func chooseQuote(body string) (quote, escaped string) {
	candidates := make([]string, 0, len(quoteOrder))
	for _, q := range quoteOrder {
		if !strings.Contains(body, q) {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return "'", strings.ReplaceAll(body, "'", `\'`)
	}
	if body != "" {
		last := body[len(body)-1]
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i][0] != last && candidates[j][0] == last
		})
		q := candidates[0]
		if q[len(q)-1] == last {
			body = body[:len(body)-1] + `\` + string(last)
		}
	}
	return candidates[0], body
}
