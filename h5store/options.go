package h5store

import (
	"io/fs"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultThreshold is the byte threshold a new store starts with.
const DefaultThreshold = 1024

// OverwritePolicy decides what a write does when the dataset already exists.
type OverwritePolicy int

const (
	// OverwriteReplace replaces the existing dataset.
	OverwriteReplace OverwritePolicy = iota
	// OverwriteFail rejects the write with ErrExists.
	OverwriteFail
)

// Option configures a Store.
type Option func(*options)

type options struct {
	threshold  uint64
	overwrite  OverwritePolicy
	logger     *zap.Logger
	registerer prometheus.Registerer
	fileMode   fs.FileMode
	sync       bool
}

func defaultOptions() *options {
	return &options{
		threshold: DefaultThreshold,
		overwrite: OverwriteReplace,
		logger:    zap.NewNop(),
		fileMode:  0o644,
		sync:      true,
	}
}

// WithThreshold sets the initial byte threshold of the store's policy.
func WithThreshold(bytes uint64) Option {
	return func(o *options) {
		o.threshold = bytes
	}
}

// WithOverwritePolicy sets how writes treat an existing dataset.
func WithOverwritePolicy(p OverwritePolicy) Option {
	return func(o *options) {
		o.overwrite = p
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics registers the store's collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithFileMode sets the permission bits of container files the store creates.
func WithFileMode(mode fs.FileMode) Option {
	return func(o *options) {
		o.fileMode = mode
	}
}

// WithSync controls whether flush fsyncs the container before renaming it
// into place. Enabled by default.
func WithSync(enabled bool) Option {
	return func(o *options) {
		o.sync = enabled
	}
}
