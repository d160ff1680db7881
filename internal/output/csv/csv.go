// Package csv writes the four extraction tables as CSV files.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/crimson-sun/raftlens/internal/model"
	"github.com/crimson-sun/raftlens/internal/output"
)

// Output file names, fixed by the downstream report contract.
const (
	EventsFile      = "cp_events.csv"
	IntervalsFile   = "cp_intervals.csv"
	GroupRollupFile = "cp_rollups_group.csv"
	NodeRollupFile  = "cp_rollups_node.csv"
)

// Sink writes the four tables into a directory. Each file is written to a
// temp path and renamed into place, so readers never observe a half-written
// table.
type Sink struct {
	dir string
}

// New creates a Sink writing into dir, creating it if needed.
func New(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Sink{dir: dir}, nil
}

// Write persists all four tables, then verifies each output file exists and
// is non-empty. Missing or empty required output is a hard failure.
func (s *Sink) Write(ctx context.Context, t output.Tables) error {
	files := []struct {
		name    string
		header  []string
		records func() [][]string
	}{
		{EventsFile, model.EventColumns, func() [][]string {
			rows := make([][]string, len(t.Events))
			for i, e := range t.Events {
				rows[i] = e.Record()
			}
			return rows
		}},
		{IntervalsFile, model.IntervalColumns, func() [][]string {
			rows := make([][]string, len(t.Intervals))
			for i, iv := range t.Intervals {
				rows[i] = iv.Record()
			}
			return rows
		}},
		{GroupRollupFile, model.GroupRollupColumns, func() [][]string {
			rows := make([][]string, len(t.Groups))
			for i, r := range t.Groups {
				rows[i] = r.Record()
			}
			return rows
		}},
		{NodeRollupFile, model.NodeRollupColumns, func() [][]string {
			rows := make([][]string, len(t.Nodes))
			for i, r := range t.Nodes {
				rows[i] = r.Record()
			}
			return rows
		}},
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.writeFile(f.name, f.header, f.records()); err != nil {
			return err
		}
	}
	return s.verify()
}

func (s *Sink) writeFile(name string, header []string, records [][]string) (err error) {
	final := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp*")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(tmp.Name()))
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(header); err != nil {
		err = multierr.Append(fmt.Errorf("write %s: %w", name, err), tmp.Close())
		return err
	}
	if err = w.WriteAll(records); err != nil {
		err = multierr.Append(fmt.Errorf("write %s: %w", name, err), tmp.Close())
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err = os.Rename(tmp.Name(), final); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// verify checks the required-output contract: all four files present and
// non-empty.
func (s *Sink) verify() error {
	var err error
	for _, name := range []string{EventsFile, IntervalsFile, GroupRollupFile, NodeRollupFile} {
		info, statErr := os.Stat(filepath.Join(s.dir, name))
		switch {
		case statErr != nil:
			err = multierr.Append(err, fmt.Errorf("%w: %s", output.ErrMissingOutput, name))
		case info.Size() == 0:
			err = multierr.Append(err, fmt.Errorf("%w: %s", output.ErrMissingOutput, name))
		}
	}
	return err
}
