package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/raftlens/internal/model"
	"github.com/crimson-sun/raftlens/internal/output"
	csvsink "github.com/crimson-sun/raftlens/internal/output/csv"
)

const workerLog1 = `2026-01-30 15:10:00.000 [hz.cp] INFO impl.CPGroupAvailabilityListener - [10.0.0.1]:5701 CP Group Members {groupId: METADATA(7), size:2, term:3, logIndex:10} [
	CPMember{uuid=aaaa-1111, address=[10.0.0.1]:5701} - LEADER this
	CPMember{uuid=bbbb-2222, address=[10.0.0.2]:5701} - FOLLOWER
]
2026-01-30 15:10:05.000 [hz.cp] INFO raft.RaftNode(METADATA) - [10.0.0.1]:5701 We are the LEADER!
`

const workerLog2 = `2026-01-30 15:10:30.000 [hz.cp] INFO raft.RaftNode(METADATA) - [10.0.0.2]:5701 Setting leader: RaftEndpoint{uuid='bbbb-2222'}
2026-01-30 15:11:00.000 [hz.main] WARN c.h.ClusterHeartbeatManager - [10.0.0.2]:5701 Member [10.0.0.1]:5701 - aaaa-1111 is suspected to be dead for reason: No heartbeat
`

func writeRunTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for dir, content := range map[string]string{
		"A1_W1-10.0.0.1-member": workerLog1,
		"A1_W2-10.0.0.2-member": workerLog2,
	} {
		full := filepath.Join(root, dir)
		require.NoError(t, os.MkdirAll(full, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(full, "worker.log"), []byte(content), 0o644))
	}
	return root
}

type memSink struct {
	tables output.Tables
}

func (m *memSink) Write(_ context.Context, t output.Tables) error {
	m.tables = t
	return nil
}

func TestRunEndToEnd(t *testing.T) {
	root := writeRunTree(t)
	sink := &memSink{}
	p := New(Config{Root: root, WindowSeconds: 60}, sink, nil)

	sum, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, 2, sum.Files)
	assert.Equal(t, 6, sum.Events, "3 from the membership block, 1 leader claim, 1 leader set, 1 suspicion")
	assert.Equal(t, 2, sum.Intervals)
	assert.Equal(t, 1, sum.GroupRollups)
	assert.Equal(t, 4, sum.NodeRollups)
	assert.Equal(t, 2, sum.IdentitiesResolved)
	assert.Equal(t, 1, sum.MissingGroupKey, "the suspicion line carries no group context")
	assert.Equal(t, 0, sum.MissingActorUUID)
	assert.Equal(t, time.Date(2026, 1, 30, 15, 11, 0, 0, time.UTC), sum.LastSeen)

	require.Len(t, sink.tables.Intervals, 2)
	first, second := sink.tables.Intervals[0], sink.tables.Intervals[1]
	assert.Equal(t, "aaaa-1111", first.LeaderUUID)
	assert.Equal(t, "bbbb-2222", second.LeaderUUID)
	assert.Equal(t, first.End, second.Start, "leadership handover leaves no gap")
	assert.Equal(t, sum.LastSeen, second.End)
	assert.Equal(t, "10.0.0.2:5701", second.LeaderAddr, "address backfilled from membership")

	require.Len(t, sink.tables.Groups, 1)
	g := sink.tables.Groups[0]
	assert.Equal(t, "METADATA", g.GroupKey)
	assert.Equal(t, 1, g.Elections)
	assert.Equal(t, 1, g.WeAreLeader)
	assert.Equal(t, 2, g.LeaderIntervalsStarted)
}

func TestRunCrossFileIdentity(t *testing.T) {
	// The membership block in the first file resolves the actor of the second
	// file's leader-set line.
	root := writeRunTree(t)
	sink := &memSink{}
	_, err := New(Config{Root: root, WindowSeconds: 60}, sink, nil).Run(context.Background())
	require.NoError(t, err)

	var leaderSet *model.Event
	for i := range sink.tables.Events {
		if sink.tables.Events[i].EventType == model.TypeLeaderSet {
			leaderSet = &sink.tables.Events[i]
		}
	}
	require.NotNil(t, leaderSet)
	assert.Equal(t, "bbbb-2222", leaderSet.NodeUUID)
	assert.Equal(t, "10.0.0.2:5701", leaderSet.NodeAddr)
}

func TestRunSeatFromDirectory(t *testing.T) {
	root := writeRunTree(t)
	sink := &memSink{}
	_, err := New(Config{Root: root, WindowSeconds: 60}, sink, nil).Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, sink.tables.Events)
	e := sink.tables.Events[0]
	assert.Equal(t, "A1_W1", e.ObserverLabel)
	assert.Equal(t, "10.0.0.1", e.ObserverPublicAddr)
}

func TestRunRerunByteIdentical(t *testing.T) {
	root := writeRunTree(t)

	runInto := func(dir string) {
		s, err := csvsink.New(dir)
		require.NoError(t, err)
		_, err = New(Config{Root: root, WindowSeconds: 60}, s, nil).Run(context.Background())
		require.NoError(t, err)
	}

	dirA, dirB := t.TempDir(), t.TempDir()
	runInto(dirA)
	runInto(dirB)

	for _, name := range []string{
		csvsink.EventsFile, csvsink.IntervalsFile, csvsink.GroupRollupFile, csvsink.NodeRollupFile,
	} {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dirB, name))
		require.NoError(t, err)
		assert.Equal(t, a, b, "%s must be byte-identical across reruns", name)
	}
}

func TestRunEmptyTree(t *testing.T) {
	sink := &memSink{}
	sum, err := New(Config{Root: t.TempDir(), WindowSeconds: 60}, sink, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, sum.Files)
	assert.Equal(t, 0, sum.Events)
	assert.Empty(t, sink.tables.Events)
}

func TestRunMissingRoot(t *testing.T) {
	_, err := New(Config{Root: filepath.Join(t.TempDir(), "nope"), WindowSeconds: 60}, &memSink{}, nil).Run(context.Background())
	assert.Error(t, err)
}

func TestRunCancelledContext(t *testing.T) {
	root := writeRunTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{Root: root, WindowSeconds: 60}, &memSink{}, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
