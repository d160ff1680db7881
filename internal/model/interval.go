package model

import "time"

// LeaderInterval is a half-open time range [Start, End) during which one node
// was leader of a consensus group. For a fixed GroupKey, intervals are
// contiguous, non-overlapping, and ordered by start time.
type LeaderInterval struct {
	IntervalID string
	GroupKey   string
	GroupID    string
	GroupName  string
	LeaderUUID string
	LeaderAddr string
	Start      time.Time
	End        time.Time
	DurationMS int64

	// Snapshot of CP metadata nearest the interval start.
	TermStart     string
	StartLogIndex string
}

// IntervalColumns is the authoritative column order of the intervals table.
var IntervalColumns = []string{
	"interval_id",
	"group_key",
	"group_id",
	"group_name",
	"leader_uuid",
	"leader_addr",
	"start_ts",
	"end_ts",
	"duration_ms",
	"term_start",
	"start_log_index",
}

// Record renders the interval as a CSV record in IntervalColumns order.
func (iv LeaderInterval) Record() []string {
	return []string{
		iv.IntervalID,
		iv.GroupKey,
		iv.GroupID,
		iv.GroupName,
		iv.LeaderUUID,
		iv.LeaderAddr,
		iv.Start.Format(TSLayout),
		iv.End.Format(TSLayout),
		formatInt(iv.DurationMS),
		iv.TermStart,
		iv.StartLogIndex,
	}
}
