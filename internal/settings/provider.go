package settings

import (
	"context"
	"sync"

	"github.com/cristianoliveira/area-links/internal/history"
	"github.com/cristianoliveira/area-links/internal/logging"
)

// HistoryLoader reads a persisted history list.
type HistoryLoader interface {
	Load(ctx context.Context, kind history.Kind) ([]string, error)
}

// Provider resolves snapshots from the configuration and the history store.
// Any failure yields Defaults.
type Provider struct {
	mu      sync.Mutex
	store   HistoryLoader
	load    func() Settings
	logger  logging.Logger
	current *Settings
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithLogger sets the provider logger.
func WithLogger(l logging.Logger) ProviderOption {
	return func(p *Provider) { p.logger = l }
}

// WithSource replaces the configuration source, FromConfig by default.
func WithSource(load func() Settings) ProviderOption {
	return func(p *Provider) { p.load = load }
}

// NewProvider returns a provider reading histories from store. A nil store
// means no history.
func NewProvider(store HistoryLoader, opts ...ProviderOption) *Provider {
	p := &Provider{
		store:  store,
		load:   FromConfig,
		logger: logging.NewNoop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load returns a fresh snapshot. Histories are read on every call so a
// session always starts from what is persisted.
func (p *Provider) Load(ctx context.Context) (s Settings, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("settings: source panicked, using defaults", "panic", r)
			s, err = Defaults(), nil
		}
	}()

	s = p.load()
	if err := Validate(&s); err != nil {
		p.logger.Warn("settings: invalid configuration, using defaults", "error", err)
		s = Defaults()
	}

	if p.store != nil {
		links, err := p.store.Load(ctx, history.KindLinks)
		if err != nil {
			p.logger.Warn("settings: load link history failed, using defaults", "error", err)
			return Defaults(), nil
		}
		copies, err := p.store.Load(ctx, history.KindCopies)
		if err != nil {
			p.logger.Warn("settings: load copy history failed, using defaults", "error", err)
			return Defaults(), nil
		}
		s.LinkHistory = links
		s.CopyHistory = copies
	}

	p.mu.Lock()
	cached := s.Clone()
	p.current = &cached
	p.mu.Unlock()
	return s, nil
}

// Cached returns the last loaded snapshot, or Defaults before the first Load.
func (p *Provider) Cached() Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Defaults()
	}
	return p.current.Clone()
}
