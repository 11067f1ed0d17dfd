// Package textutil holds the small text helpers shared by the normalizer,
// the title synthesizer and the brand registry.
package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// Fold maps full-width ASCII to half-width and half-width katakana to full-width.
func Fold(s string) string {
	return width.Fold.String(s)
}

// FoldUpper folds s and upper-cases its ASCII letters.
func FoldUpper(s string) string {
	return strings.ToUpper(Fold(s))
}

// RuneLen counts characters, not bytes.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate cuts s to at most n characters.
func Truncate(s string, n int) string {
	if RuneLen(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// ContainsKeyword reports whether text contains kw after folding both sides.
// ASCII keywords are matched case-insensitively on word boundaries so that
// "MEN" does not fire inside "WOMEN". Other keywords are plain substrings.
func ContainsKeyword(text, kw string) bool {
	if kw == "" {
		return false
	}
	t := FoldUpper(text)
	k := FoldUpper(kw)
	if !isASCII(k) {
		return strings.Contains(t, k)
	}

	for offset := 0; ; {
		i := strings.Index(t[offset:], k)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(k)
		if boundaryBefore(t, start) && boundaryAfter(t, end) {
			return true
		}
		offset = start + 1
	}
}

// ContainsAny reports whether text contains any of the keywords.
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if ContainsKeyword(text, kw) {
			return true
		}
	}
	return false
}

// CollapseBlankLines trims every line, collapses runs of blank lines to a
// single blank line and trims blank lines at both ends.
func CollapseBlankLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var out []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(out) > 0 && !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// CollapseSpaces replaces every whitespace run with a single space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}
