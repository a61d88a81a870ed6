package completion

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// lineAt returns the 1-based line n of text without its terminator, or ""
// when text has fewer lines.
func lineAt(text string, n int) string {
	if n < 1 {
		return ""
	}
	for i := 1; i < n; i++ {
		j := strings.IndexByte(text, '\n')
		if j < 0 {
			return ""
		}
		text = text[j+1:]
	}
	if j := strings.IndexByte(text, '\n'); j >= 0 {
		text = text[:j]
	}
	return strings.TrimSuffix(text, "\r")
}

// linePrefix returns the text on pos's line before the cursor.
func linePrefix(text string, pos Position) string {
	line := lineAt(text, pos.Line)
	return line[:runeOffset(line, pos.Column-1)]
}

// runeOffset returns the byte offset of the n-th rune of s, clamped to s.
func runeOffset(s string, n int) int {
	if n <= 0 {
		return 0
	}
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}

// offsetAt converts a 1-based position to a byte offset into text. Positions
// past the end of a line clamp to the line end; past the last line, to the
// end of text.
func offsetAt(text string, pos Position) int {
	offset := 0
	for i := 1; i < pos.Line; i++ {
		j := strings.IndexByte(text[offset:], '\n')
		if j < 0 {
			return len(text)
		}
		offset += j + 1
	}
	rest := text[offset:]
	if j := strings.IndexByte(rest, '\n'); j >= 0 {
		rest = rest[:j]
	}
	return offset + runeOffset(rest, pos.Column-1)
}

func isWordRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// WordRange returns the range of the partial word that ends at the cursor on
// its line. With no word before the cursor the range is empty and starts at
// the cursor.
func WordRange(text string, pos Position) Range {
	prefix := linePrefix(text, pos)
	end := utf8.RuneCountInString(prefix)
	start := end
	for len(prefix) > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix)
		if !isWordRune(r) {
			break
		}
		prefix = prefix[:len(prefix)-size]
		start--
	}
	return Range{
		Start: Position{Line: pos.Line, Column: start + 1},
		End:   Position{Line: pos.Line, Column: end + 1},
	}
}
