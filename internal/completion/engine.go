package completion

import (
	"github.com/damoonrashidi/peek/internal/schema"
	"github.com/damoonrashidi/peek/internal/syntax"
	"go.uber.org/zap"
)

// TriggerCharacters are the characters after which an editor should ask for
// completions without an explicit request.
var TriggerCharacters = []string{" ", ".", ",", "\n", "\t"}

// Engine answers completion requests against one schema snapshot. It holds
// no per-request state: every call reparses the text from scratch, so an
// Engine is safe for concurrent use.
type Engine struct {
	snapshot *schema.Snapshot
	parser   syntax.Parser
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithParser replaces the built-in SQL parser.
func WithParser(p syntax.Parser) Option {
	return func(e *Engine) {
		e.parser = p
	}
}

// NewEngine creates an engine bound to snap. A nil snapshot behaves as an
// empty schema.
func NewEngine(snap *schema.Snapshot, logger *zap.Logger, opts ...Option) *Engine {
	if snap == nil {
		snap = schema.Empty()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		snapshot: snap,
		parser:   syntax.Default,
		logger:   logger.With(zap.String("component", "completion")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns the schema the engine completes against.
func (e *Engine) Snapshot() *schema.Snapshot {
	return e.snapshot
}

// Fingerprint identifies the engine's schema content.
func (e *Engine) Fingerprint() string {
	return e.snapshot.Fingerprint()
}

// Result is a completion list together with how it was decided.
type Result struct {
	Context  Context
	Rule     string
	Degraded bool
	List     *List
}

// Complete classifies pos in text and assembles the candidates for it.
// Degraded is set when no syntax tree could be built.
func (e *Engine) Complete(text string, pos Position) Result {
	tree := e.parser.Parse(text)
	aliases := ResolveStatementAliases(tree, syntax.Point{Row: pos.Line - 1, Column: pos.Column - 1})

	ctx, rule := classify(ClassifyInput{
		Text:    text,
		Pos:     pos,
		Tree:    tree,
		Node:    syntax.FindNodeAt(tree, pos.Line, pos.Column),
		Aliases: aliases,
	})

	items := Assemble(ctx, aliases, e.snapshot, WordRange(text, pos), tree == nil)
	if items == nil {
		items = []Candidate{}
	}

	e.logger.Debug("Completion",
		zap.Int("line", pos.Line),
		zap.Int("column", pos.Column),
		zap.Stringer("context", ctx),
		zap.String("rule", rule),
		zap.Bool("degraded", tree == nil),
		zap.Int("items", len(items)),
	)

	return Result{
		Context:  ctx,
		Rule:     rule,
		Degraded: tree == nil,
		List:     &List{Items: items},
	}
}

// ProvideCompletionItems is the editor-facing entry point. It never fails:
// any internal fault yields an empty list.
func (e *Engine) ProvideCompletionItems(text string, pos Position) (list *List) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Completion failed",
				zap.Any("panic", r),
				zap.Int("line", pos.Line),
				zap.Int("column", pos.Column),
			)
			list = &List{Items: []Candidate{}}
		}
	}()
	return e.Complete(text, pos).List
}
