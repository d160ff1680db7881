package csv

import (
	"context"
	stdcsv "encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/raftlens/internal/model"
	"github.com/crimson-sun/raftlens/internal/output"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := stdcsv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func sampleTables() output.Tables {
	ts := time.Date(2026, 1, 30, 15, 10, 0, 0, time.UTC)
	return output.Tables{
		Events: []model.Event{{
			EventID:   "abc123",
			Timestamp: ts,
			TSSource:  model.TSSourceLogLine,
			EventType: model.TypeLeaderSet,
			GroupKey:  "METADATA",
			PeerUUID:  "aaaa-1111",
			Message:   "Setting leader: RaftEndpoint{uuid='aaaa-1111'}",
		}},
		Intervals: []model.LeaderInterval{{
			IntervalID: "iv1",
			GroupKey:   "METADATA",
			LeaderUUID: "aaaa-1111",
			Start:      ts,
			End:        ts.Add(30 * time.Second),
			DurationMS: 30_000,
		}},
		Groups: []model.GroupRollup{{
			WindowStart: ts.Truncate(time.Minute),
			WindowEnd:   ts.Truncate(time.Minute).Add(time.Minute),
			GroupKey:    "METADATA",
			Elections:   1,
		}},
		Nodes: []model.NodeRollup{{
			WindowStart:      ts.Truncate(time.Minute),
			WindowEnd:        ts.Truncate(time.Minute).Add(time.Minute),
			NodeUUID:         "aaaa-1111",
			NodeAddr:         "10.0.0.1:5701",
			LeadershipTimeMS: 30_000,
		}},
	}
}

func TestWriteAllTables(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, s.Write(context.Background(), sampleTables()))

	events := readCSV(t, filepath.Join(dir, EventsFile))
	require.Len(t, events, 2)
	assert.Equal(t, model.EventColumns, events[0])
	assert.Equal(t, "abc123", events[1][0])
	assert.Equal(t, "2026-01-30 15:10:00.000000", events[1][1])

	intervals := readCSV(t, filepath.Join(dir, IntervalsFile))
	require.Len(t, intervals, 2)
	assert.Equal(t, model.IntervalColumns, intervals[0])
	assert.Equal(t, "30000", intervals[1][8])

	groups := readCSV(t, filepath.Join(dir, GroupRollupFile))
	require.Len(t, groups, 2)
	assert.Equal(t, model.GroupRollupColumns, groups[0])

	nodes := readCSV(t, filepath.Join(dir, NodeRollupFile))
	require.Len(t, nodes, 2)
	assert.Equal(t, model.NodeRollupColumns, nodes[0])

	// No stray temp files after a clean write.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestWriteEmptyTablesStillSatisfiesContract(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, s.Write(context.Background(), output.Tables{}))

	for _, name := range []string{EventsFile, IntervalsFile, GroupRollupFile, NodeRollupFile} {
		rows := readCSV(t, filepath.Join(dir, name))
		assert.Len(t, rows, 1, "%s carries its header even with no data", name)
	}
}

func TestWriteRerunIsByteIdentical(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), sampleTables()))
	first, err := os.ReadFile(filepath.Join(dir, EventsFile))
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), sampleTables()))
	second, err := os.ReadFile(filepath.Join(dir, EventsFile))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWriteCancelledContext(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Write(ctx, sampleTables()), context.Canceled)
}

func TestVerifyReportsMissingOutput(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, s.Write(context.Background(), output.Tables{}))

	require.NoError(t, os.Remove(filepath.Join(dir, IntervalsFile)))
	require.NoError(t, os.Truncate(filepath.Join(dir, NodeRollupFile), 0))

	err = s.verify()
	require.Error(t, err)
	assert.ErrorIs(t, err, output.ErrMissingOutput)
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	_, err := New(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
