package raftlens

import "go.uber.org/zap"

type options struct {
	outputDir     string
	baseDate      string
	windowSeconds int
	logger        *zap.Logger
}

// Option configures a Run.
type Option func(*options)

// WithOutputDir sets where the CSV tables are written. Defaults to the
// input root.
func WithOutputDir(dir string) Option {
	return func(o *options) { o.outputDir = dir }
}

// WithBaseDate anchors time-only logs to the given date ("YYYY-MM-DD").
// Without it, dateless logs are anchored to the epoch day.
func WithBaseDate(date string) Option {
	return func(o *options) { o.baseDate = date }
}

// WithWindowSeconds sets the rollup window size. Must be positive.
// Default: 60.
func WithWindowSeconds(seconds int) Option {
	return func(o *options) { o.windowSeconds = seconds }
}

// WithLogger sets the logger for progress and summary output. Default: none.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.logger = log }
}

func defaultOptions() options {
	return options{windowSeconds: 60}
}
