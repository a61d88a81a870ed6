package syntax

import (
	"errors"
	"strings"
)

// maxDepth bounds expression and parenthesis nesting.
const maxDepth = 256

var errTooDeep = errors.New("syntax: nesting too deep")

// Parser produces a syntax tree for a source text. A nil tree means the
// text could not be parsed at all.
type Parser interface {
	Parse(text string) *Tree
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(text string) *Tree

// Parse calls f(text).
func (f ParserFunc) Parse(text string) *Tree {
	return f(text)
}

// Default is the built-in error-tolerant SQL parser.
var Default Parser = ParserFunc(Parse)

// Parse builds a best-effort tree for text. Incomplete or malformed input is
// wrapped in ERROR nodes rather than rejected; the result is nil only when
// the input cannot be tokenized or nests beyond maxDepth.
func Parse(text string) (tree *Tree) {
	defer func() {
		if r := recover(); r != nil {
			tree = nil
		}
	}()

	tokens, err := tokenize(text)
	if err != nil {
		return nil
	}
	p := &parser{
		tokens: tokens,
		tree:   &Tree{source: text, nodes: make([]Node, 0, len(tokens)*2)},
	}
	p.tree.root = p.parseProgram()
	return p.tree
}

type parser struct {
	tokens []token
	pos    int
	depth  int
	parens int
	tree   *Tree
}

var comparisonOps = map[string]bool{
	"=": true, "<>": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
}

// token helpers

func (p *parser) peek() token {
	return p.peekAt(0)
}

func (p *parser) peekAt(n int) token {
	if i := p.pos + n; i < len(p.tokens) {
		return p.tokens[i]
	}
	return token{kind: tokEOF}
}

func (p *parser) atEOF() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) isKeyword(tok token, words ...string) bool {
	if tok.kind != tokKeyword {
		return false
	}
	for _, w := range words {
		if tok.upper == w {
			return true
		}
	}
	return false
}

func (p *parser) peekKeyword(words ...string) bool {
	return p.isKeyword(p.peek(), words...)
}

func (p *parser) peekPunct(s string) bool {
	tok := p.peek()
	return (tok.kind == tokPunct || tok.kind == tokOperator) && tok.text == s
}

func isIdent(tok token) bool {
	return tok.kind == tokIdent || tok.kind == tokQuotedIdent
}

func (p *parser) atStatementBoundary(tok token) bool {
	if tok.kind == tokPunct {
		switch tok.text {
		case ";":
			return true
		case ")":
			return p.parens > 0
		}
	}
	return p.isKeyword(tok, "SELECT", "FROM", "DELETE", "UNION", "INTERSECT", "EXCEPT")
}

func (p *parser) enter() {
	p.depth++
	if p.depth > maxDepth {
		panic(errTooDeep)
	}
}

func (p *parser) leave() {
	p.depth--
}

// tree construction

func leafType(tok token) string {
	switch tok.kind {
	case tokKeyword:
		return "keyword_" + strings.ToLower(tok.upper)
	case tokIdent, tokQuotedIdent:
		return TypeIdentifier
	case tokString, tokNumber:
		return TypeLiteral
	default:
		return tok.text
	}
}

func (p *parser) add(n Node) NodeID {
	id := NodeID(len(p.tree.nodes))
	p.tree.nodes = append(p.tree.nodes, n)
	return id
}

// next consumes the current token as a leaf.
func (p *parser) next() NodeID {
	tok := p.tokens[p.pos]
	p.pos++
	return p.add(Node{
		Type:      leafType(tok),
		Start:     tok.start,
		End:       tok.end,
		StartByte: tok.startByte,
		EndByte:   tok.endByte,
		Parent:    NoNode,
	})
}

// node wraps children into a new node spanning them. Absent children are
// dropped; with no children left the result is NoNode.
func (p *parser) node(typ string, children ...NodeID) NodeID {
	kids := make([]NodeID, 0, len(children))
	for _, c := range children {
		if c != NoNode {
			kids = append(kids, c)
		}
	}
	if len(kids) == 0 {
		return NoNode
	}
	first, last := p.tree.nodes[kids[0]], p.tree.nodes[kids[len(kids)-1]]
	id := p.add(Node{
		Type:      typ,
		Start:     first.Start,
		End:       last.End,
		StartByte: first.StartByte,
		EndByte:   last.EndByte,
		Parent:    NoNode,
		Children:  kids,
	})
	for _, c := range kids {
		p.tree.nodes[c].Parent = id
	}
	return id
}

func (p *parser) field(id NodeID, name string) NodeID {
	if id != NoNode {
		p.tree.nodes[id].Field = name
	}
	return id
}

// skipTo consumes at least one token, then everything up to the next token
// matching stop, into an ERROR node.
func (p *parser) skipTo(stop func(token) bool) NodeID {
	var kids []NodeID
	for !p.atEOF() {
		if len(kids) > 0 && stop(p.peek()) {
			break
		}
		kids = append(kids, p.next())
	}
	return p.node(TypeError, kids...)
}

// statements

func (p *parser) parseProgram() NodeID {
	var kids []NodeID
	for !p.atEOF() {
		if p.peekPunct(";") {
			kids = append(kids, p.next())
			continue
		}
		if stmt := p.parseStatement(); stmt != NoNode {
			kids = append(kids, stmt)
		}
	}

	id := p.add(Node{
		Type:     TypeProgram,
		End:      advance(Point{}, p.tree.source),
		EndByte:  len(p.tree.source),
		Parent:   NoNode,
		Children: kids,
	})
	for _, c := range kids {
		p.tree.nodes[c].Parent = id
	}
	return id
}

// parseStatement parses one query. A statement may open with SELECT, FROM or
// DELETE; a second SELECT or FROM that is not joined by a set operator starts
// the next statement.
func (p *parser) parseStatement() NodeID {
	var (
		kids               []NodeID
		sawSelect, sawFrom bool
	)
	if p.peekKeyword("DELETE") {
		del := []NodeID{p.next()}
		if p.peekKeyword("FROM") {
			del = append(del, p.parseFrom())
		}
		kids = append(kids, p.node(TypeDelete, del...))
		sawSelect, sawFrom = true, true
	}

	for !p.atEOF() {
		tok := p.peek()
		switch {
		case tok.kind == tokPunct && tok.text == ";":
			return p.node(TypeStatement, kids...)
		case tok.kind == tokPunct && tok.text == ")" && p.parens > 0:
			return p.node(TypeStatement, kids...)
		case p.isKeyword(tok, "SELECT"):
			if sawSelect || sawFrom {
				return p.node(TypeStatement, kids...)
			}
			sawSelect = true
			kids = append(kids, p.parseSelect())
		case p.isKeyword(tok, "FROM"):
			if sawFrom {
				return p.node(TypeStatement, kids...)
			}
			sawFrom = true
			kids = append(kids, p.parseFrom())
		case p.isKeyword(tok, "UNION", "INTERSECT", "EXCEPT"):
			sawSelect, sawFrom = false, false
			kids = append(kids, p.next())
			if p.peekKeyword("ALL", "DISTINCT") {
				kids = append(kids, p.next())
			}
		default:
			kids = append(kids, p.skipTo(p.atStatementBoundary))
		}
	}
	return p.node(TypeStatement, kids...)
}

func (p *parser) parseSelect() NodeID {
	kids := []NodeID{p.next()}
	if p.peekKeyword("DISTINCT", "ALL") {
		kids = append(kids, p.next())
	}
	kids = append(kids, p.parseSelectExpression())
	return p.node(TypeSelect, kids...)
}

func (p *parser) parseSelectExpression() NodeID {
	var kids []NodeID
	for {
		term := p.parseTerm()
		if term == NoNode {
			break
		}
		kids = append(kids, term)
		if !p.peekPunct(",") {
			break
		}
		kids = append(kids, p.next())
	}
	return p.node(TypeSelectExpr, kids...)
}

func (p *parser) parseTerm() NodeID {
	expr := p.parseExpression()
	if expr == NoNode {
		return NoNode
	}
	kids := []NodeID{p.field(expr, FieldValue)}
	kids = append(kids, p.parseAlias()...)
	return p.node(TypeTerm, kids...)
}

func (p *parser) parseAlias() []NodeID {
	var kids []NodeID
	if p.peekKeyword("AS") {
		kids = append(kids, p.next())
	}
	if isIdent(p.peek()) {
		kids = append(kids, p.field(p.next(), FieldAlias))
	}
	return kids
}

// clauses

func (p *parser) parseFrom() NodeID {
	kids := []NodeID{p.next()}
	kids = append(kids, p.parseRelations()...)
	for {
		switch {
		case p.peekKeyword("JOIN", "INNER", "LEFT", "RIGHT", "FULL", "CROSS"):
			kids = append(kids, p.parseJoin())
		case p.peekKeyword("WHERE"):
			kids = append(kids, p.parseWhere())
		case p.peekKeyword("GROUP"):
			kids = append(kids, p.parseGroupBy())
		case p.peekKeyword("HAVING"):
			kids = append(kids, p.parseHaving())
		case p.peekKeyword("ORDER"):
			kids = append(kids, p.parseOrderBy())
		case p.peekKeyword("LIMIT", "OFFSET"):
			kids = append(kids, p.parseLimit())
		case p.peekPunct(","):
			kids = append(kids, p.next())
			kids = append(kids, p.parseRelations()...)
		default:
			return p.node(TypeFrom, kids...)
		}
	}
}

func (p *parser) startsRelation() bool {
	return isIdent(p.peek()) || p.peekPunct("(")
}

func (p *parser) parseRelations() []NodeID {
	var kids []NodeID
	for p.startsRelation() {
		kids = append(kids, p.parseRelation())
		if !p.peekPunct(",") {
			break
		}
		kids = append(kids, p.next())
	}
	return kids
}

func (p *parser) parseRelation() NodeID {
	var kids []NodeID
	if p.peekPunct("(") {
		kids = append(kids, p.parseParenthesized())
	} else {
		kids = append(kids, p.parseObjectReference())
	}
	kids = append(kids, p.parseAlias()...)
	return p.node(TypeRelation, kids...)
}

// parseObjectReference parses [database.][schema.]name. A trailing dot leaves
// the name absent.
func (p *parser) parseObjectReference() NodeID {
	var parts, kids []NodeID
	for isIdent(p.peek()) {
		id := p.next()
		parts = append(parts, id)
		kids = append(kids, id)
		if !p.peekPunct(".") {
			break
		}
		kids = append(kids, p.next())
	}
	p.nameParts(parts, kids, FieldName, FieldSchema, FieldDatabase)
	return p.node(TypeObjectReference, kids...)
}

// nameParts assigns fields to dotted identifiers from the right.
func (p *parser) nameParts(parts, kids []NodeID, fields ...string) {
	if len(kids) == 0 {
		return
	}
	offset := 0
	if p.tree.nodes[kids[len(kids)-1]].Type == "." {
		offset = 1
	}
	for i, id := range parts {
		if k := len(parts) - 1 - i + offset; k < len(fields) {
			p.field(id, fields[k])
		}
	}
}

func (p *parser) parseJoin() NodeID {
	var kids []NodeID
	for p.peekKeyword("INNER", "LEFT", "RIGHT", "FULL", "CROSS", "OUTER") {
		kids = append(kids, p.next())
	}
	if !p.peekKeyword("JOIN") {
		return p.node(TypeJoin, kids...)
	}
	kids = append(kids, p.next())
	if p.startsRelation() {
		kids = append(kids, p.parseRelation())
	}
	switch {
	case p.peekKeyword("ON"):
		kids = append(kids, p.next())
		kids = append(kids, p.field(p.parseExpression(), FieldPredicate))
	case p.peekKeyword("USING"):
		kids = append(kids, p.next())
		if p.peekPunct("(") {
			kids = append(kids, p.parseParenthesized())
		}
	}
	return p.node(TypeJoin, kids...)
}

func (p *parser) parseWhere() NodeID {
	return p.node(TypeWhere, p.next(), p.field(p.parseExpression(), FieldPredicate))
}

func (p *parser) parseHaving() NodeID {
	return p.node(TypeHaving, p.next(), p.field(p.parseExpression(), FieldPredicate))
}

func (p *parser) parseGroupBy() NodeID {
	kids := []NodeID{p.next()}
	if p.peekKeyword("BY") {
		kids = append(kids, p.next())
	}
	kids = append(kids, p.parseExpressionList()...)
	return p.node(TypeGroupBy, kids...)
}

func (p *parser) parseOrderBy() NodeID {
	kids := []NodeID{p.next()}
	if p.peekKeyword("BY") {
		kids = append(kids, p.next())
	}
	for {
		expr := p.parseExpression()
		if expr == NoNode {
			break
		}
		target := []NodeID{expr}
		if p.peekKeyword("ASC", "DESC") {
			target = append(target, p.next())
		}
		kids = append(kids, p.node(TypeOrderTarget, target...))
		if !p.peekPunct(",") {
			break
		}
		kids = append(kids, p.next())
	}
	return p.node(TypeOrderBy, kids...)
}

func (p *parser) parseLimit() NodeID {
	var kids []NodeID
	if p.peekKeyword("LIMIT") {
		kids = append(kids, p.next(), p.parseExpression())
	}
	if p.peekKeyword("OFFSET") {
		kids = append(kids, p.next(), p.parseExpression())
	}
	return p.node(TypeLimit, kids...)
}

// expressions, lowest precedence first

func (p *parser) parseExpression() NodeID {
	p.enter()
	defer p.leave()
	return p.parseBinaryChain(p.parseAnd, "OR")
}

func (p *parser) parseExpressionList() []NodeID {
	var kids []NodeID
	for {
		expr := p.parseExpression()
		if expr == NoNode {
			break
		}
		kids = append(kids, expr)
		if !p.peekPunct(",") {
			break
		}
		kids = append(kids, p.next())
	}
	return kids
}

func (p *parser) parseAnd() NodeID {
	return p.parseBinaryChain(p.parseNot, "AND")
}

func (p *parser) parseBinaryChain(operand func() NodeID, word string) NodeID {
	left := operand()
	for left != NoNode && p.peekKeyword(word) {
		op := p.field(p.next(), FieldOperator)
		right := operand()
		left = p.binary(left, op, right)
		if right == NoNode {
			break
		}
	}
	return left
}

func (p *parser) binary(left, op, right NodeID) NodeID {
	return p.node(TypeBinaryExpr, p.field(left, FieldLeft), op, p.field(right, FieldRight))
}

func (p *parser) parseNot() NodeID {
	if !p.peekKeyword("NOT") {
		return p.parseComparison()
	}
	p.enter()
	defer p.leave()
	return p.node(TypeUnaryExpr, p.field(p.next(), FieldOperator), p.parseNot())
}

func (p *parser) parseComparison() NodeID {
	left := p.parseArithmetic(p.parseTermOperand, "+", "-", "||")
	for left != NoNode {
		tok := p.peek()
		switch {
		case tok.kind == tokOperator && comparisonOps[tok.text]:
			op := p.field(p.next(), FieldOperator)
			right := p.parseArithmetic(p.parseTermOperand, "+", "-", "||")
			left = p.binary(left, op, right)
			if right == NoNode {
				return left
			}
		case p.isKeyword(tok, "IS"):
			kids := []NodeID{p.field(left, FieldLeft), p.field(p.next(), FieldOperator)}
			if p.peekKeyword("NOT") {
				kids = append(kids, p.next())
			}
			right := p.parseUnary()
			kids = append(kids, p.field(right, FieldRight))
			left = p.node(TypeBinaryExpr, kids...)
			if right == NoNode {
				return left
			}
		case p.isKeyword(tok, "IN", "LIKE", "ILIKE", "BETWEEN"),
			p.isKeyword(tok, "NOT") && p.isKeyword(p.peekAt(1), "IN", "LIKE", "ILIKE", "BETWEEN"):
			left = p.parsePredicate(left)
		default:
			return left
		}
	}
	return left
}

func (p *parser) parsePredicate(left NodeID) NodeID {
	kids := []NodeID{p.field(left, FieldLeft)}
	if p.peekKeyword("NOT") {
		kids = append(kids, p.next())
	}
	between := p.peekKeyword("BETWEEN")
	kids = append(kids, p.field(p.next(), FieldOperator))
	kids = append(kids, p.field(p.parseArithmetic(p.parseTermOperand, "+", "-", "||"), FieldRight))
	if between && p.peekKeyword("AND") {
		kids = append(kids, p.next(), p.parseArithmetic(p.parseTermOperand, "+", "-", "||"))
	}
	return p.node(TypeBinaryExpr, kids...)
}

func (p *parser) parseTermOperand() NodeID {
	return p.parseArithmetic(p.parseUnary, "*", "/", "%", "::")
}

func (p *parser) parseArithmetic(operand func() NodeID, ops ...string) NodeID {
	left := operand()
	for left != NoNode {
		tok := p.peek()
		if tok.kind != tokOperator || !contains(ops, tok.text) {
			return left
		}
		op := p.field(p.next(), FieldOperator)
		right := operand()
		left = p.binary(left, op, right)
		if right == NoNode {
			return left
		}
	}
	return left
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (p *parser) parseUnary() NodeID {
	tok := p.peek()
	if tok.kind == tokOperator && (tok.text == "-" || tok.text == "+") {
		p.enter()
		defer p.leave()
		return p.node(TypeUnaryExpr, p.field(p.next(), FieldOperator), p.parseUnary())
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() NodeID {
	tok := p.peek()
	switch {
	case isIdent(tok):
		if after := p.peekAt(1); after.kind == tokPunct && after.text == "(" {
			return p.parseInvocation()
		}
		return p.parseField()
	case tok.kind == tokString, tok.kind == tokNumber:
		return p.next()
	case p.isKeyword(tok, "NULL", "TRUE", "FALSE"):
		return p.node(TypeLiteral, p.next())
	case tok.kind == tokOperator && tok.text == "*":
		return p.node(TypeAllFields, p.next())
	case tok.kind == tokPunct && tok.text == "(":
		return p.parseParenthesized()
	case p.isKeyword(tok, "CASE"):
		return p.parseCase()
	case p.isKeyword(tok, "EXISTS"):
		kids := []NodeID{p.field(p.next(), FieldOperator)}
		if p.peekPunct("(") {
			kids = append(kids, p.parseParenthesized())
		}
		return p.node(TypeUnaryExpr, kids...)
	}
	return NoNode
}

// parseField parses [schema.][object.]name, object.* and the incomplete
// form object. with the name still to be typed.
func (p *parser) parseField() NodeID {
	var parts, kids []NodeID
	for isIdent(p.peek()) {
		id := p.next()
		parts = append(parts, id)
		kids = append(kids, id)
		if !p.peekPunct(".") {
			break
		}
		kids = append(kids, p.next())
	}
	if p.tree.nodes[kids[len(kids)-1]].Type == "." && p.peekPunct("*") {
		p.nameParts(parts, kids, FieldName, FieldObject, FieldSchema)
		kids = append(kids, p.next())
		return p.node(TypeAllFields, kids...)
	}
	p.nameParts(parts, kids, FieldName, FieldObject, FieldSchema)
	return p.node(TypeField, kids...)
}

func (p *parser) parseInvocation() NodeID {
	name := p.node(TypeObjectReference, p.field(p.next(), FieldName))
	return p.node(TypeInvocation, name, p.parseParenthesized())
}

// parseParenthesized parses a parenthesised subquery, expression list or
// single expression. The closing parenthesis is optional.
func (p *parser) parseParenthesized() NodeID {
	p.enter()
	defer p.leave()

	kids := []NodeID{p.next()}
	p.parens++
	typ := TypeParenthesized
	if p.peekKeyword("SELECT") {
		typ = TypeSubquery
		kids = append(kids, p.parseStatement())
	} else {
		if p.peekKeyword("DISTINCT") {
			kids = append(kids, p.next())
		}
		items := p.parseExpressionList()
		if len(items) != 1 {
			typ = TypeList
		}
		kids = append(kids, items...)
	}
	if !p.atEOF() && !p.atStatementBoundary(p.peek()) {
		kids = append(kids, p.skipTo(p.atStatementBoundary))
	}
	p.parens--
	if p.peekPunct(")") {
		kids = append(kids, p.next())
	}
	return p.node(typ, kids...)
}

func (p *parser) parseCase() NodeID {
	kids := []NodeID{p.next()}
	if !p.peekKeyword("WHEN") {
		kids = append(kids, p.parseExpression())
	}
	for p.peekKeyword("WHEN", "THEN", "ELSE") {
		kids = append(kids, p.next(), p.parseExpression())
	}
	if p.peekKeyword("END") {
		kids = append(kids, p.next())
	}
	return p.node(TypeCase, kids...)
}
