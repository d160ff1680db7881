package raftlens

import (
	"context"
	"fmt"
	"time"

	csvsink "github.com/crimson-sun/raftlens/internal/output/csv"
	"github.com/crimson-sun/raftlens/internal/pipeline"
)

// Summary describes one completed extraction run.
type Summary struct {
	RunID        string
	Files        int
	Events       int
	Intervals    int
	GroupRollups int
	NodeRollups  int
	LastSeen     time.Time
}

// Run extracts events, leader intervals, and rollups from every worker log
// under root and writes the four CSV tables. It blocks until the run
// completes or ctx is cancelled.
func Run(ctx context.Context, root string, opts ...Option) (Summary, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.windowSeconds <= 0 {
		return Summary{}, fmt.Errorf("raftlens: window seconds must be positive, got %d", o.windowSeconds)
	}

	outDir := o.outputDir
	if outDir == "" {
		outDir = root
	}
	sink, err := csvsink.New(outDir)
	if err != nil {
		return Summary{}, fmt.Errorf("raftlens: %w", err)
	}

	p := pipeline.New(pipeline.Config{
		Root:          root,
		BaseDate:      o.baseDate,
		WindowSeconds: o.windowSeconds,
	}, sink, o.logger)

	sum, err := p.Run(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("raftlens: %w", err)
	}
	return Summary{
		RunID:        sum.RunID,
		Files:        sum.Files,
		Events:       sum.Events,
		Intervals:    sum.Intervals,
		GroupRollups: sum.GroupRollups,
		NodeRollups:  sum.NodeRollups,
		LastSeen:     sum.LastSeen,
	}, nil
}
