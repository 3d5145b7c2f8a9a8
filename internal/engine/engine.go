// Package engine resolves reads and applies writes against a types.Store.
//
// The engine holds no entity state. Every operation receives the store (the
// context) explicitly, so one Engine can serve any number of contexts. Reads
// never write; writes never join.
package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Engine carries the collaborators shared by all operations.
type Engine struct {
	logger           *zap.Logger
	metrics          *Metrics
	strictReferences bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics registers the engine counters on reg. Without this option the
// counters exist but are not registered anywhere.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.metrics = NewMetrics(reg)
	}
}

// WithStrictReferences makes animal inserts fail with types.ErrZooNotFound
// when the owning zoo does not exist. The default accepts dangling keys.
func WithStrictReferences(strict bool) Option {
	return func(e *Engine) {
		e.strictReferences = strict
	}
}

// New returns an Engine configured by opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = NewMetrics(nil)
	}
	return e
}

// Metrics returns the engine counters.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}
