// Package lsp serves completions from the provider registry over the
// Language Server Protocol.
package lsp

import (
	"context"
	"errors"
	"fmt"

	"github.com/damoonrashidi/peek/internal/completion"
	"github.com/damoonrashidi/peek/internal/config"
	"github.com/damoonrashidi/peek/internal/provider"
	"github.com/damoonrashidi/peek/internal/schema"
	"github.com/damoonrashidi/peek/internal/workspace"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
	"go.uber.org/zap"
)

const serverName = "peek"

// Commands accepted by workspace/executeCommand. The connection commands
// are only available with a workspace.
const (
	CommandConnect     = "peek.connect"
	CommandReload      = "peek.reload"
	CommandConnections = "peek.connections"
	CommandReferences  = "peek.references"
)

// References is the result of CommandReferences.
type References struct {
	Outbound []schema.CellReference `json:"outbound"`
	Inbound  []schema.CellReference `json:"inbound"`
}

type Server struct {
	cfg       *config.ServerConfig
	registry  *provider.Registry
	workspace *workspace.Manager
	docs      *documentStore
	handler   protocol.Handler
	version   string
	logger    *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithWorkspace enables the connection commands backed by m.
func WithWorkspace(m *workspace.Manager) Option {
	return func(s *Server) {
		s.workspace = m
	}
}

// WithVersion sets the version reported to clients.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

func NewServer(ctx context.Context, cfg *config.ServerConfig, registry *provider.Registry, logger *zap.Logger, opts ...Option) (*Server, error) {
	if cfg == nil || registry == nil {
		return nil, fmt.Errorf("lsp server requires a config and a provider registry")
	}

	s := &Server{
		cfg:      cfg,
		registry: registry,
		docs:     newDocumentStore(),
		version:  "dev",
		logger:   logger.With(zap.String("component", "lsp")),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.handler = protocol.Handler{
		Initialize:              s.initialize,
		Initialized:             s.initialized,
		Shutdown:                s.shutdown,
		SetTrace:                s.setTrace,
		TextDocumentDidOpen:     s.textDocumentDidOpen,
		TextDocumentDidChange:   s.textDocumentDidChange,
		TextDocumentDidClose:    s.textDocumentDidClose,
		TextDocumentCompletion:  s.textDocumentCompletion,
		WorkspaceExecuteCommand: s.workspaceExecuteCommand,
	}

	s.logger.Info("LSP server initialized",
		zap.String("language_id", cfg.LSP.LanguageID),
		zap.Bool("fuzzy_filter", cfg.Completion.FuzzyFilter),
		zap.Int("max_items", cfg.Completion.MaxItems),
	)

	return s, nil
}

// Close gracefully shuts down the server.
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down LSP server", zap.Int("open_documents", s.docs.len()))

	if s.workspace != nil {
		s.workspace.Close()
	}

	s.logger.Info("LSP server shutdown complete")
	return nil
}

// ServeStdio serves one client over stdin/stdout until the client exits or
// ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := glspserver.NewServer(&s.handler, serverName, false)
	return s.serve(ctx, srv.RunStdio)
}

// ServeTCP serves clients on localhost:port until ctx is cancelled.
func (s *Server) ServeTCP(ctx context.Context, port int) error {
	srv := glspserver.NewServer(&s.handler, serverName, false)
	address := fmt.Sprintf("localhost:%d", port)
	s.logger.Info("Listening", zap.String("address", address))
	return s.serve(ctx, func() error {
		return srv.RunTCP(address)
	})
}

func (s *Server) serve(ctx context.Context, run func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- run()
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) capabilities() protocol.ServerCapabilities {
	openClose := true
	syncKind := protocol.TextDocumentSyncKindFull

	caps := protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: &openClose,
			Change:    &syncKind,
		},
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: completion.TriggerCharacters,
		},
	}
	commands := []string{CommandReferences}
	if s.workspace != nil {
		commands = append(commands, CommandConnect, CommandReload, CommandConnections)
	}
	caps.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{Commands: commands}
	return caps
}

func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if params.ClientInfo != nil {
		s.logger.Info("Client connected", zap.String("client", params.ClientInfo.Name))
	}

	return protocol.InitializeResult{
		Capabilities: s.capabilities(),
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(_ *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(_ *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	doc := params.TextDocument
	s.docs.open(doc.URI, doc.Version, doc.Text)
	s.logger.Debug("Document opened",
		zap.String("uri", string(doc.URI)),
		zap.Int32("version", doc.Version),
	)
	return nil
}

func (s *Server) textDocumentDidChange(_ *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	if !s.docs.change(uri, params.TextDocument.Version, params.ContentChanges) {
		s.logger.Warn("Change for unknown document", zap.String("uri", string(uri)))
	}
	return nil
}

func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.docs.close(params.TextDocument.URI)
	s.logger.Debug("Document closed", zap.String("uri", string(params.TextDocument.URI)))
	return nil
}

func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	uri := params.TextDocument.URI
	text, ok := s.docs.get(uri)
	if !ok {
		s.logger.Debug("Completion for unknown document", zap.String("uri", string(uri)))
		return protocol.CompletionList{Items: []protocol.CompletionItem{}}, nil
	}

	pos := toEnginePosition(text, params.Position)
	list, err := s.registry.Provide(s.cfg.LSP.LanguageID, text, pos)
	if err != nil {
		var notFound *provider.ProviderNotFoundError
		if errors.As(err, &notFound) {
			s.logger.Debug("No completion provider", zap.String("language", notFound.Language))
			return protocol.CompletionList{Items: []protocol.CompletionItem{}}, nil
		}
		return nil, err
	}

	items := list.Items
	if s.cfg.Completion.FuzzyFilter {
		items = fuzzyFilter(wordAt(text, completion.WordRange(text, pos)), items)
	}
	items, truncated := limit(items, s.cfg.Completion.MaxItems)

	return toCompletionList(text, items, truncated), nil
}

func (s *Server) workspaceExecuteCommand(_ *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	if params.Command == CommandReferences {
		return s.references(params.Arguments)
	}
	if s.workspace == nil {
		return nil, fmt.Errorf("%s requires a workspace", params.Command)
	}

	ctx := context.Background()
	switch params.Command {
	case CommandConnect:
		if len(params.Arguments) != 1 {
			return nil, fmt.Errorf("%s expects a connection name", CommandConnect)
		}
		name, ok := params.Arguments[0].(string)
		if !ok {
			return nil, fmt.Errorf("%s expects a connection name, got %T", CommandConnect, params.Arguments[0])
		}
		if err := s.workspace.Connect(ctx, name); err != nil {
			return nil, err
		}
		return s.workspace.Active(), nil
	case CommandReload:
		if err := s.workspace.Reload(ctx); err != nil {
			return nil, err
		}
		return s.workspace.Active(), nil
	case CommandConnections:
		return s.workspace.Manifest().Names(), nil
	default:
		return nil, fmt.Errorf("unknown command: %s", params.Command)
	}
}

type snapshotter interface {
	Snapshot() *schema.Snapshot
}

// snapshot returns the schema completions are currently drawn from.
func (s *Server) snapshot() *schema.Snapshot {
	if s.workspace != nil {
		return s.workspace.Snapshot()
	}
	if p, ok := s.registry.Lookup(s.cfg.LSP.LanguageID); ok {
		if sp, ok := p.(snapshotter); ok {
			return sp.Snapshot()
		}
	}
	return schema.Empty()
}

// references resolves the cells linked to a column. Arguments are the column
// followed by the tables it may belong to.
func (s *Server) references(args []any) (References, error) {
	if len(args) < 2 {
		return References{}, fmt.Errorf("%s expects a column and at least one table", CommandReferences)
	}

	names := make([]string, len(args))
	for i, arg := range args {
		name, ok := arg.(string)
		if !ok {
			return References{}, fmt.Errorf("%s argument %d: expected a string, got %T", CommandReferences, i, arg)
		}
		names[i] = name
	}

	snap := s.snapshot()
	column, tables := names[0], names[1:]
	return References{
		Outbound: snap.OutboundReferences(tables, column),
		Inbound:  snap.InboundReferences(tables, column),
	}, nil
}
