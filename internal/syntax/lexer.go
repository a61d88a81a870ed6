package syntax

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// The rule set never fails on arbitrary input: Unknown swallows any character
// the other rules reject, and the string/comment rules accept unterminated
// literals so a half-typed statement still lexes.
var sqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `--[^\n]*|/\*(?:[^*]|\*+[^*/])*(?:\*+/)?`},
	{Name: "String", Pattern: `'(?:[^']|'')*'?`},
	{Name: "QuotedIdent", Pattern: `"(?:[^"]|"")*"?|` + "`[^`]*`?"},
	{Name: "Number", Pattern: `\d+(?:\.\d*)?(?:[eE][+-]?\d+)?|\.\d+`},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_$]*`},
	{Name: "Operator", Pattern: `<>|!=|<=|>=|::|\|\||[-+*/%=<>]`},
	{Name: "Punct", Pattern: `[(),.;\[\]]`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Unknown", Pattern: `.`},
})

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokQuotedIdent
	tokKeyword
	tokString
	tokNumber
	tokOperator
	tokPunct
	tokUnknown
)

type token struct {
	kind      tokenKind
	text      string
	upper     string
	start     Point
	end       Point
	startByte int
	endByte   int
}

// reserved words become keyword_<word> leaves and are never read as identifiers.
var reserved = map[string]bool{
	"ALL": true, "AND": true, "AS": true, "ASC": true, "BETWEEN": true, "BY": true,
	"CASE": true, "CROSS": true, "DELETE": true, "DESC": true, "DISTINCT": true,
	"ELSE": true, "END": true, "EXCEPT": true, "EXISTS": true, "FALSE": true,
	"FROM": true, "FULL": true, "GROUP": true, "HAVING": true, "ILIKE": true,
	"IN": true, "INNER": true, "INTERSECT": true, "IS": true, "JOIN": true,
	"LEFT": true, "LIKE": true, "LIMIT": true, "NOT": true, "NULL": true,
	"OFFSET": true, "ON": true, "OR": true, "ORDER": true, "OUTER": true,
	"RIGHT": true, "SELECT": true, "THEN": true, "TRUE": true, "UNION": true,
	"USING": true, "WHEN": true, "WHERE": true,
}

// tokenize lexes text into significant tokens; whitespace and comments are
// dropped but still advance the position.
func tokenize(text string) ([]token, error) {
	lex, err := sqlLexer.LexString("", text)
	if err != nil {
		return nil, err
	}

	symbols := sqlLexer.Symbols()
	kinds := map[lexer.TokenType]tokenKind{
		symbols["String"]:      tokString,
		symbols["QuotedIdent"]: tokQuotedIdent,
		symbols["Number"]:      tokNumber,
		symbols["Ident"]:       tokIdent,
		symbols["Operator"]:    tokOperator,
		symbols["Punct"]:       tokPunct,
		symbols["Unknown"]:     tokUnknown,
	}
	skip := map[lexer.TokenType]bool{
		symbols["Whitespace"]: true,
		symbols["Comment"]:    true,
	}

	var (
		tokens []token
		pos    Point
		offset int
	)
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, fmt.Errorf("lex at offset %d: %w", offset, err)
		}
		if tok.EOF() {
			break
		}

		end := advance(pos, tok.Value)
		if !skip[tok.Type] {
			t := token{
				kind:      kinds[tok.Type],
				text:      tok.Value,
				start:     pos,
				end:       end,
				startByte: offset,
				endByte:   offset + len(tok.Value),
			}
			if t.kind == tokIdent {
				t.upper = strings.ToUpper(tok.Value)
				if reserved[t.upper] {
					t.kind = tokKeyword
				}
			}
			tokens = append(tokens, t)
		}
		pos = end
		offset += len(tok.Value)
	}
	return tokens, nil
}

// advance moves p past s. Columns count code points.
func advance(p Point, s string) Point {
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			p.Column += utf8.RuneCountInString(s)
			return p
		}
		p.Row++
		p.Column = 0
		s = s[i+1:]
	}
}
