package output

import (
	"context"
	"errors"

	"github.com/crimson-sun/raftlens/internal/model"
)

// ErrMissingOutput reports that a required output file is absent or empty
// after a run. It is the only failure finer than "pipeline completed".
var ErrMissingOutput = errors.New("required output missing or empty")

// Tables is the full result of one extraction run, materialized before any
// sink sees it.
type Tables struct {
	Events    []model.Event
	Intervals []model.LeaderInterval
	Groups    []model.GroupRollup
	Nodes     []model.NodeRollup
}

// Sink persists the four tables. Implementations must write atomically: a
// failed run leaves no partial outputs behind.
type Sink interface {
	Write(ctx context.Context, t Tables) error
}
