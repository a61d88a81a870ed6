// Package provider keeps at most one completion provider registered per
// language and swaps it when the schema behind it changes.
package provider

import (
	"sort"
	"sync"

	"github.com/damoonrashidi/peek/internal/completion"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompletionProvider answers completion requests for one language.
type CompletionProvider interface {
	ProvideCompletionItems(text string, pos completion.Position) *completion.List
	// Fingerprint identifies the data the provider completes against.
	Fingerprint() string
}

// Registration is the handle returned by Register.
type Registration struct {
	ID       string
	Language string
	Provider CompletionProvider

	registry *Registry
}

// Dispose unregisters the provider if it is still the active one for its
// language. Disposing twice is a no-op.
func (reg *Registration) Dispose() {
	reg.registry.unregister(reg)
}

// Registry maps a language to its active registration.
type Registry struct {
	sync.RWMutex
	active map[string]*Registration // language -> registration
	logger *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		active: make(map[string]*Registration),
		logger: logger.With(zap.String("component", "provider-registry")),
	}
}

// Register makes p the provider for language. Any previous registration for
// the language is disposed before p becomes active, and both steps happen
// under one lock, so lookups never see two providers or none in between. If
// the active provider already has p's fingerprint, nothing changes and the
// existing registration is returned.
func (r *Registry) Register(language string, p CompletionProvider) *Registration {
	r.Lock()
	defer r.Unlock()

	if prev, ok := r.active[language]; ok {
		if prev.Provider.Fingerprint() == p.Fingerprint() {
			r.logger.Debug("Provider unchanged, keeping registration",
				zap.String("language", language),
				zap.String("id", prev.ID),
			)
			return prev
		}
		delete(r.active, language)
		r.logger.Info("Provider disposed",
			zap.String("language", language),
			zap.String("id", prev.ID),
		)
	}

	reg := &Registration{
		ID:       uuid.NewString(),
		Language: language,
		Provider: p,
		registry: r,
	}
	r.active[language] = reg

	r.logger.Info("Provider registered",
		zap.String("language", language),
		zap.String("id", reg.ID),
		zap.String("fingerprint", p.Fingerprint()),
	)
	return reg
}

func (r *Registry) unregister(reg *Registration) {
	r.Lock()
	defer r.Unlock()

	current, ok := r.active[reg.Language]
	if !ok || current != reg {
		return
	}
	delete(r.active, reg.Language)

	r.logger.Info("Provider disposed",
		zap.String("language", reg.Language),
		zap.String("id", reg.ID),
	)
}

// Lookup returns the active provider for language.
func (r *Registry) Lookup(language string) (CompletionProvider, bool) {
	r.RLock()
	defer r.RUnlock()

	reg, ok := r.active[language]
	if !ok {
		return nil, false
	}
	return reg.Provider, true
}

// Provide runs a completion request against the active provider for
// language. The provider is captured under the lock and called outside it,
// so a concurrent swap never tears a request.
func (r *Registry) Provide(language, text string, pos completion.Position) (*completion.List, error) {
	p, ok := r.Lookup(language)
	if !ok {
		return nil, &ProviderNotFoundError{Language: language}
	}
	return p.ProvideCompletionItems(text, pos), nil
}

// Languages returns the languages with an active provider, sorted.
func (r *Registry) Languages() []string {
	r.RLock()
	defer r.RUnlock()

	result := make([]string, 0, len(r.active))
	for language := range r.active {
		result = append(result, language)
	}
	sort.Strings(result)
	return result
}

// Count returns the number of active registrations.
func (r *Registry) Count() int {
	r.RLock()
	defer r.RUnlock()

	return len(r.active)
}

// Close disposes of every registration.
func (r *Registry) Close() {
	r.Lock()
	defer r.Unlock()

	for language, reg := range r.active {
		delete(r.active, language)
		r.logger.Info("Provider disposed",
			zap.String("language", language),
			zap.String("id", reg.ID),
		)
	}
}
