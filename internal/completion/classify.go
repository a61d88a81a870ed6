package completion

import (
	"regexp"
	"strings"

	"github.com/damoonrashidi/peek/internal/syntax"
)

// ClassifyInput is everything the classifier looks at for one request.
type ClassifyInput struct {
	Text    string
	Pos     Position
	Tree    *syntax.Tree // nil when the text could not be parsed
	Node    syntax.NodeID
	Aliases map[string]string
}

// Classify decides what the cursor expects. It tries, in order: the text on
// the cursor's line, the syntax tree around the cursor, and keyword patterns
// over the whole text before the cursor. It always returns a context.
func Classify(in ClassifyInput) Context {
	ctx, _ := classify(in)
	return ctx
}

// classify is Classify that also names the layer and rule that decided.
func classify(in ClassifyInput) (Context, string) {
	if ctx, name, ok := classifyLine(in.Text, in.Pos, in.Aliases); ok {
		return ctx, "line:" + name
	}
	if in.Tree != nil && in.Node != syntax.NoNode {
		s := &cursorState{
			tree:    in.Tree,
			point:   syntax.Point{Row: in.Pos.Line - 1, Column: in.Pos.Column - 1},
			aliases: in.Aliases,
		}
		if ctx, name, ok := classifyTree(s, in.Node); ok {
			return ctx, "tree:" + name
		}
	}
	ctx, name := classifyText(in.Text, in.Pos)
	return ctx, "text:" + name
}

var (
	trailingQualifier = regexp.MustCompile(`("[^"]+"|\b[A-Za-z_]\w*)\.$`)
	trailingFrom      = regexp.MustCompile(`(?i)\bFROM$`)
	trailingJoin      = regexp.MustCompile(`(?i)\b(?:(?:INNER|LEFT|RIGHT|FULL|CROSS)\s+(?:OUTER\s+)?)?JOIN$`)
	trailingWhere     = regexp.MustCompile(`(?i)\bWHERE$`)
)

// classifyLine looks only at the cursor's line up to the cursor.
func classifyLine(text string, pos Position, aliases map[string]string) (Context, string, bool) {
	before := linePrefix(text, pos)
	if m := trailingQualifier.FindStringSubmatch(before); m != nil {
		name := syntax.Unquote(m[1])
		table, ok := lookupAlias(aliases, name)
		if !ok {
			table = name
		}
		return Context{Kind: KindColumn, Table: table}, "qualifier", true
	}

	trimmed := strings.TrimSpace(before)
	switch {
	case trailingFrom.MatchString(trimmed):
		return Context{Kind: KindTable}, "from", true
	case trailingJoin.MatchString(trimmed):
		return Context{Kind: KindTableForJoin}, "join", true
	case trailingWhere.MatchString(trimmed):
		return Context{Kind: KindWhereOperand}, "where", true
	}
	return Context{}, "", false
}

// keywordScope is a keyword that opens a clause and the keywords that close
// it again.
type keywordScope struct {
	name    string
	opener  *regexp.Regexp
	closers *regexp.Regexp
	ctx     Context
}

var textScopes = []keywordScope{
	{
		name:    "where",
		opener:  regexp.MustCompile(`(?i)\bWHERE\b`),
		closers: regexp.MustCompile(`(?i)\b(?:ORDER|GROUP|HAVING)\b`),
		ctx:     Context{Kind: KindWhereOperand},
	},
	{
		name:    "select",
		opener:  regexp.MustCompile(`(?i)\bSELECT\b`),
		closers: regexp.MustCompile(`(?i)\bFROM\b`),
		ctx:     Context{Kind: KindColumn},
	},
	{
		name:    "from",
		opener:  regexp.MustCompile(`(?i)\bFROM\b`),
		closers: regexp.MustCompile(`(?i)\b(?:WHERE|ORDER|GROUP)\b`),
		ctx:     Context{Kind: KindTable},
	},
}

// classifyText scans all text before the cursor for a clause that was opened
// and not yet closed. Only the last opener matters: if it is closed, every
// earlier one is too.
func classifyText(text string, pos Position) (Context, string) {
	before := text[:offsetAt(text, pos)]
	for _, scope := range textScopes {
		locs := scope.opener.FindAllStringIndex(before, -1)
		if len(locs) == 0 {
			continue
		}
		if !scope.closers.MatchString(before[locs[len(locs)-1][1]:]) {
			return scope.ctx, scope.name
		}
	}
	return Context{Kind: KindGeneral}, "general"
}
