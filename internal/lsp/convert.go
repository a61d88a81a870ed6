package lsp

import (
	"strings"
	"unicode/utf8"

	"github.com/damoonrashidi/peek/internal/completion"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// LSP positions are zero-based and count UTF-16 code units; engine positions
// are one-based and count code points.

// lineAt returns the zero-based line n of text and the byte offset it starts
// at. Past the last line it returns "" and len(text).
func lineAt(text string, n int) (string, int) {
	offset := 0
	for i := 0; i < n; i++ {
		j := strings.IndexByte(text[offset:], '\n')
		if j < 0 {
			return "", len(text)
		}
		offset += j + 1
	}
	line := text[offset:]
	if j := strings.IndexByte(line, '\n'); j >= 0 {
		line = line[:j]
	}
	return strings.TrimSuffix(line, "\r"), offset
}

// utf16ToRunes converts a UTF-16 offset on line to a code point offset,
// clamped to the line.
func utf16ToRunes(line string, units int) int {
	runes := 0
	for _, r := range line {
		if units <= 0 {
			break
		}
		units -= utf16Len(r)
		runes++
	}
	return runes
}

// runesToUTF16 converts a code point offset on line to a UTF-16 offset.
// Offsets past the end of line count one unit per missing rune.
func runesToUTF16(line string, runes int) int {
	units := 0
	for _, r := range line {
		if runes <= 0 {
			return units
		}
		units += utf16Len(r)
		runes--
	}
	return units + runes
}

func utf16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

// byteOffset converts an LSP position to a byte offset into text.
func byteOffset(text string, pos protocol.Position) int {
	line, offset := lineAt(text, int(pos.Line))
	runes := utf16ToRunes(line, int(pos.Character))
	for i := range line {
		if runes == 0 {
			return offset + i
		}
		runes--
	}
	return offset + len(line)
}

func toEnginePosition(text string, pos protocol.Position) completion.Position {
	line, _ := lineAt(text, int(pos.Line))
	return completion.Position{
		Line:   int(pos.Line) + 1,
		Column: utf16ToRunes(line, int(pos.Character)) + 1,
	}
}

func toLSPPosition(text string, pos completion.Position) protocol.Position {
	line, _ := lineAt(text, pos.Line-1)
	return protocol.Position{
		Line:      protocol.UInteger(pos.Line - 1),
		Character: protocol.UInteger(runesToUTF16(line, pos.Column-1)),
	}
}

func toLSPRange(text string, rng completion.Range) protocol.Range {
	return protocol.Range{
		Start: toLSPPosition(text, rng.Start),
		End:   toLSPPosition(text, rng.End),
	}
}

// toCompletionList converts candidates to LSP items. Each item edits the
// word under the cursor.
func toCompletionList(text string, items []completion.Candidate, incomplete bool) protocol.CompletionList {
	out := make([]protocol.CompletionItem, len(items))
	for i, c := range items {
		kind := protocol.CompletionItemKind(c.Kind)
		detail := c.Documentation
		out[i] = protocol.CompletionItem{
			Label:         c.Label,
			Kind:          &kind,
			Detail:        &detail,
			Documentation: c.Documentation,
			TextEdit: protocol.TextEdit{
				Range:   toLSPRange(text, c.Range),
				NewText: c.InsertText,
			},
		}
	}
	return protocol.CompletionList{
		IsIncomplete: incomplete,
		Items:        out,
	}
}

// wordAt returns the text of rng, which lies on a single line.
func wordAt(text string, rng completion.Range) string {
	line, _ := lineAt(text, rng.Start.Line-1)
	start := runeByte(line, rng.Start.Column-1)
	end := runeByte(line, rng.End.Column-1)
	if end < start {
		return ""
	}
	return line[start:end]
}

func runeByte(s string, n int) int {
	if n <= 0 {
		return 0
	}
	if n >= utf8.RuneCountInString(s) {
		return len(s)
	}
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}
