package workspace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/damoonrashidi/peek/internal/completion"
	"github.com/damoonrashidi/peek/internal/introspect"
	"github.com/damoonrashidi/peek/internal/provider"
	"github.com/damoonrashidi/peek/internal/schema"
	"go.uber.org/zap"
)

// SnapshotLoader produces the schema for a connection.
type SnapshotLoader func(ctx context.Context, m *Manifest, conn *Connection) (*schema.Snapshot, error)

// Manager switches the active connection and keeps the provider registry
// pointed at its schema.
type Manager struct {
	manifest *Manifest
	registry *provider.Registry
	language string
	load     SnapshotLoader
	logger   *zap.Logger

	store *schema.Store

	mu     sync.RWMutex
	active string
	reg    *provider.Registration
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLanguage sets the language id providers are registered under.
func WithLanguage(language string) ManagerOption {
	return func(m *Manager) {
		m.language = language
	}
}

// WithLoader replaces how schemas are loaded.
func WithLoader(load SnapshotLoader) ManagerOption {
	return func(m *Manager) {
		m.load = load
	}
}

// NewManager creates a manager over manifest that registers providers in
// registry. By default schemas are loaded with DefaultLoader(10*time.Second)
// under the "sql" language.
func NewManager(manifest *Manifest, registry *provider.Registry, logger *zap.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		manifest: manifest,
		registry: registry,
		language: "sql",
		load:     DefaultLoader(10 * time.Second),
		store:    schema.NewStore(nil),
		logger:   logger.With(zap.String("component", "workspace-manager")),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultLoader reads a connection's schema file, or introspects its
// database with the given connect timeout. defaults apply before the
// connection's own schemas and excluded tables.
func DefaultLoader(timeout time.Duration, defaults ...introspect.Option) SnapshotLoader {
	return func(ctx context.Context, m *Manifest, conn *Connection) (*schema.Snapshot, error) {
		if conn.SchemaFile != "" {
			return schema.Load(m.SchemaPath(conn))
		}

		db, err := introspect.Open(ctx, conn.URL, timeout)
		if err != nil {
			return nil, err
		}
		defer db.Close()

		opts := append(append([]introspect.Option(nil), defaults...),
			introspect.WithSchemas(conn.Schemas...),
			introspect.WithExcludeTables(conn.ExcludeTables...),
		)
		return introspect.Snapshot(ctx, db, opts...)
	}
}

// Connect loads the schema of the named connection and makes a completion
// engine over it the active provider. On failure the previous provider stays
// in place.
func (m *Manager) Connect(ctx context.Context, name string) error {
	conn, key, ok := m.manifest.Find(name)
	if !ok {
		return &ConnectionNotFoundError{Name: name}
	}

	m.logger.Info("Connecting", zap.String("connection", key))

	start := time.Now()
	snap, err := m.load(ctx, m.manifest, conn)
	if err != nil {
		m.logger.Error("Failed to load schema",
			zap.String("connection", key),
			zap.Error(err),
		)
		return &ConnectError{Name: key, Err: err}
	}

	engine := completion.NewEngine(snap, m.logger)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.reg = m.registry.Register(m.language, engine)
	m.store.Swap(snap)
	m.active = key

	m.logger.Info("Connected",
		zap.String("connection", key),
		zap.Int("tables", len(snap.TableNames())),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Reload reloads the schema of the active connection.
func (m *Manager) Reload(ctx context.Context) error {
	active := m.Active()
	if active == "" {
		return fmt.Errorf("no active connection")
	}
	return m.Connect(ctx, active)
}

// Active returns the qualified name of the active connection, or "".
func (m *Manager) Active() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Snapshot returns the schema of the active connection, or an empty schema
// when none is active.
func (m *Manager) Snapshot() *schema.Snapshot {
	return m.store.Load()
}

// Manifest returns the workspace file the manager was built from.
func (m *Manager) Manifest() *Manifest {
	return m.manifest
}

// Close disposes of the active provider.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.reg != nil {
		m.reg.Dispose()
		m.reg = nil
	}
	m.store.Swap(nil)
	m.active = ""
	m.logger.Info("Workspace manager closed")
}
