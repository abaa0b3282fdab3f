// Package pipeline wires the data preparation, training and inference stages
// of the lead-conversion model.
//
// Each stage reads its inputs from and writes its outputs to a storage.Store,
// so stages can run in separate processes:
//
//	prepare: raw file -> impute -> dummy-encode -> processed CSV
//	train:   processed CSV -> split -> gbdt -> model + X_test / y_test
//	predict: model + X_test / y_test -> rendered predictions and labels
package pipeline

import (
	"github.com/YuminosukeSato/leadconv/config"
	"github.com/YuminosukeSato/leadconv/pkg/log"
	"github.com/YuminosukeSato/leadconv/storage"
	"github.com/google/uuid"
)

// Pipeline runs the stages against one configuration.
type Pipeline struct {
	cfg    config.Config
	store  *storage.Store
	logger log.Logger
	runID  string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStore replaces the store built from the configuration.
func WithStore(s *storage.Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithLogger sets the base logger. The run ID is attached to it.
func WithLogger(l log.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(p *Pipeline) { p.runID = id }
}

// New は設定からパイプラインを作成する
//
// 実行 ID (UUID) が生成され、このパイプラインが出力するすべてのログに
// run.id として付与される。
func New(cfg config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	if p.runID == "" {
		p.runID = uuid.NewString()
	}
	if p.logger == nil {
		p.logger = log.GetLoggerWithName("pipeline")
	}
	p.logger = p.logger.With(log.RunIDKey, p.runID)
	if p.store == nil {
		p.store = storage.New(cfg.Storage(), storage.WithLogger(p.logger.With(log.ComponentKey, "storage")))
	}
	return p
}

// RunID returns the identifier attached to this pipeline's logs.
func (p *Pipeline) RunID() string { return p.runID }

// Store returns the store the stages read from and write to.
func (p *Pipeline) Store() *storage.Store { return p.store }
