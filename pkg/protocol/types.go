package protocol

// Core completion types shared between the engine and editor hosts.
// Positions here are zero-based, as on the LSP wire.

// Position represents a position in a text document
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range represents a range in a text document
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// TextEdit represents a text edit
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// CompletionItemKind represents the kind of completion item.
// Values match the LSP CompletionItemKind enumeration so hosts can forward them unchanged.
type CompletionItemKind int

const (
	CompletionItemKindField    CompletionItemKind = 5
	CompletionItemKindVariable CompletionItemKind = 6
	CompletionItemKindClass    CompletionItemKind = 7
	CompletionItemKindKeyword  CompletionItemKind = 14
	CompletionItemKindFolder   CompletionItemKind = 19
)

func (k CompletionItemKind) String() string {
	switch k {
	case CompletionItemKindField:
		return "field"
	case CompletionItemKindVariable:
		return "variable"
	case CompletionItemKindClass:
		return "class"
	case CompletionItemKindKeyword:
		return "keyword"
	case CompletionItemKindFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// CompletionItem represents a completion item
type CompletionItem struct {
	Label         string             `json:"label"`
	Kind          CompletionItemKind `json:"kind"`
	Detail        string             `json:"detail,omitempty"`
	Documentation string             `json:"documentation,omitempty"`
	InsertText    string             `json:"insertText,omitempty"`
	TextEdit      *TextEdit          `json:"textEdit,omitempty"`
	SortText      string             `json:"sortText,omitempty"`
	FilterText    string             `json:"filterText,omitempty"`
}

// CompletionList is the response to a completion request.
type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}
