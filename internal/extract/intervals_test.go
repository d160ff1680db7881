package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/raftlens/internal/model"
)

func at(sec int) time.Time {
	return time.Date(2026, 1, 30, 15, 0, 0, 0, time.UTC).Add(time.Duration(sec) * time.Second)
}

func leaderSet(t time.Time, gk, uuid string) model.Event {
	return model.Event{EventType: model.TypeLeaderSet, Timestamp: t, GroupKey: gk, PeerUUID: uuid}
}

func TestBuildIntervalsContiguous(t *testing.T) {
	events := []model.Event{
		leaderSet(at(0), "METADATA", "aaaa-1111"),
		leaderSet(at(30), "METADATA", "bbbb-2222"),
		leaderSet(at(90), "METADATA", "cccc-3333"),
	}
	end := at(120)

	ivs := BuildIntervals(events, end)
	require.Len(t, ivs, 3)

	assert.Equal(t, "aaaa-1111", ivs[0].LeaderUUID)
	assert.Equal(t, at(0), ivs[0].Start)
	assert.Equal(t, at(30), ivs[0].End)
	assert.Equal(t, int64(30_000), ivs[0].DurationMS)

	assert.Equal(t, "bbbb-2222", ivs[1].LeaderUUID)
	assert.Equal(t, "cccc-3333", ivs[2].LeaderUUID)
	assert.Equal(t, end, ivs[2].End, "final interval runs to the last observed instant")

	// Every interval's end is the next interval's start: no gaps, no overlap.
	for i := 0; i+1 < len(ivs); i++ {
		assert.Equal(t, ivs[i].End, ivs[i+1].Start)
	}
}

func TestBuildIntervalsCollapsesRepeatedLeader(t *testing.T) {
	events := []model.Event{
		leaderSet(at(0), "METADATA", "aaaa-1111"),
		leaderSet(at(10), "METADATA", "aaaa-1111"),
		leaderSet(at(20), "METADATA", "aaaa-1111"),
	}
	ivs := BuildIntervals(events, at(60))

	require.Len(t, ivs, 1, "re-announcements of the same leader are not a change")
	assert.Equal(t, at(0), ivs[0].Start)
	assert.Equal(t, at(60), ivs[0].End)
}

func TestBuildIntervalsDropsNonPositive(t *testing.T) {
	events := []model.Event{
		leaderSet(at(0), "METADATA", "aaaa-1111"),
		leaderSet(at(60), "METADATA", "bbbb-2222"),
	}
	// Run ends exactly at the second point: its interval would be empty.
	ivs := BuildIntervals(events, at(60))

	require.Len(t, ivs, 1)
	assert.Equal(t, "aaaa-1111", ivs[0].LeaderUUID)
}

func TestBuildIntervalsPerGroupSorted(t *testing.T) {
	events := []model.Event{
		leaderSet(at(0), "cpgroup-2", "aaaa-1111"),
		leaderSet(at(0), "METADATA", "bbbb-2222"),
	}
	ivs := BuildIntervals(events, at(60))

	require.Len(t, ivs, 2)
	assert.Equal(t, "METADATA", ivs[0].GroupKey, "groups emit in sorted key order")
	assert.Equal(t, "cpgroup-2", ivs[1].GroupKey)
}

func TestBuildIntervalsSnapshotMetadata(t *testing.T) {
	events := []model.Event{
		{EventType: model.TypeCPSnapshot, Timestamp: at(5), GroupKey: "METADATA",
			GroupID: "METADATA(7)", GroupName: "METADATA", Term: "3", LogIndex: "10", PeerUUID: "aaaa-1111", PeerAddr: "10.0.0.1:5701"},
		{EventType: model.TypeCPSnapshot, Timestamp: at(100), GroupKey: "METADATA",
			GroupID: "METADATA(7)", GroupName: "METADATA", Term: "4", LogIndex: "42", PeerUUID: "bbbb-2222", PeerAddr: "10.0.0.2:5701"},
	}
	ivs := BuildIntervals(events, at(120))

	require.Len(t, ivs, 2)
	assert.Equal(t, "3", ivs[0].TermStart, "first interval takes the nearby snapshot's term")
	assert.Equal(t, "10", ivs[0].StartLogIndex)
	assert.Equal(t, "METADATA(7)", ivs[0].GroupID)
	assert.Equal(t, "4", ivs[1].TermStart)
	assert.Equal(t, "42", ivs[1].StartLogIndex)
}

func TestBuildIntervalsAddrBackfill(t *testing.T) {
	events := []model.Event{
		{EventType: model.TypeRoleObserved, Timestamp: at(0), GroupKey: "METADATA",
			NodeUUID: "aaaa-1111", NodeAddr: "10.0.0.1:5701", Message: "LEADER"},
		leaderSet(at(10), "METADATA", "aaaa-1111"),
	}
	ivs := BuildIntervals(events, at(60))

	require.Len(t, ivs, 1)
	assert.Equal(t, "10.0.0.1:5701", ivs[0].LeaderAddr,
		"leader-set carries no address; it is backfilled from membership")
}

func TestBuildIntervalsWeAreLeaderFallback(t *testing.T) {
	events := []model.Event{
		{EventType: model.TypeWeAreLeader, Timestamp: at(0), GroupKey: "METADATA",
			NodeUUID: "aaaa-1111", NodeAddr: "10.0.0.1:5701"},
	}
	ivs := BuildIntervals(events, at(60))

	require.Len(t, ivs, 1)
	assert.Equal(t, "aaaa-1111", ivs[0].LeaderUUID)
	assert.Equal(t, "10.0.0.1:5701", ivs[0].LeaderAddr)
}

func TestBuildIntervalsDeterministicIDs(t *testing.T) {
	events := []model.Event{
		leaderSet(at(0), "METADATA", "aaaa-1111"),
		leaderSet(at(30), "METADATA", "bbbb-2222"),
	}
	first := BuildIntervals(events, at(60))
	second := BuildIntervals(events, at(60))

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].IntervalID, second[i].IntervalID)
	}
}

func TestNearestSnapshotTieKeepsEarlier(t *testing.T) {
	snaps := []model.Event{
		{Timestamp: at(0), Term: "1"},
		{Timestamp: at(20), Term: "2"},
	}
	got := nearestSnapshot(snaps, at(10))
	require.NotNil(t, got)
	assert.Equal(t, "1", got.Term)
}
