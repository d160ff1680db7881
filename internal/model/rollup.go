package model

import (
	"strconv"
	"time"
)

// GroupRollup aggregates per-group counters over one fixed rollup window
// [WindowStart, WindowEnd). Rows are immutable once the aggregation pass
// completes.
type GroupRollup struct {
	WindowStart time.Time
	WindowEnd   time.Time
	GroupKey    string

	Elections              int
	LeaderIntervalsStarted int
	WeAreLeader            int

	// Leader tenure statistics over intervals starting in this window.
	// HasTenure distinguishes "no intervals" (blank output) from zero.
	HasTenure        bool
	MeanLeaderTenure int64 // ms
	P95LeaderTenure  int64 // ms

	AppendFailures         int
	VoteRejections         int
	VoteTimeouts           int
	InvocationRetries      int
	InvocationTimeouts     int
	MembershipChanges      int
	ClusterSuspicions      int
	CPAutoRemoveScheduled  int
	CPAutoRemoveSecondsSum int
	PreVoteRequests        int
	PreVoteRejections      int
	PreVoteIgnored         int
	TermMoves              int
	SnapshotsInstalled     int
	TCPDisconnects         int
	TCPConnectAttempts     int
	TCPConnectTimeouts     int

	NetworkInstabilityIndex int
	CPStabilityIndex        float64
}

// GroupRollupColumns is the authoritative column order of the group table.
var GroupRollupColumns = []string{
	"window_start",
	"window_end",
	"group_key",
	"elections",
	"leader_intervals_started",
	"we_are_leader",
	"mean_leader_tenure_ms",
	"p95_leader_tenure_ms",
	"append_failures",
	"vote_rejections",
	"vote_timeouts",
	"invocation_retries",
	"invocation_timeouts",
	"membership_changes",
	"cluster_suspicions",
	"cp_autoremove_scheduled",
	"cp_autoremove_seconds_sum",
	"pre_vote_requests",
	"pre_vote_rejections",
	"pre_vote_ignored",
	"term_moves",
	"snapshots_installed",
	"tcp_disconnects",
	"tcp_connect_attempts",
	"tcp_connect_timeouts",
	"network_instability_index",
	"cp_stability_index",
}

// Record renders the row as a CSV record in GroupRollupColumns order.
func (r GroupRollup) Record() []string {
	meanTenure, p95Tenure := "", ""
	if r.HasTenure {
		meanTenure = formatInt(r.MeanLeaderTenure)
		p95Tenure = formatInt(r.P95LeaderTenure)
	}
	return []string{
		r.WindowStart.Format(TSLayout),
		r.WindowEnd.Format(TSLayout),
		r.GroupKey,
		strconv.Itoa(r.Elections),
		strconv.Itoa(r.LeaderIntervalsStarted),
		strconv.Itoa(r.WeAreLeader),
		meanTenure,
		p95Tenure,
		strconv.Itoa(r.AppendFailures),
		strconv.Itoa(r.VoteRejections),
		strconv.Itoa(r.VoteTimeouts),
		strconv.Itoa(r.InvocationRetries),
		strconv.Itoa(r.InvocationTimeouts),
		strconv.Itoa(r.MembershipChanges),
		strconv.Itoa(r.ClusterSuspicions),
		strconv.Itoa(r.CPAutoRemoveScheduled),
		strconv.Itoa(r.CPAutoRemoveSecondsSum),
		strconv.Itoa(r.PreVoteRequests),
		strconv.Itoa(r.PreVoteRejections),
		strconv.Itoa(r.PreVoteIgnored),
		strconv.Itoa(r.TermMoves),
		strconv.Itoa(r.SnapshotsInstalled),
		strconv.Itoa(r.TCPDisconnects),
		strconv.Itoa(r.TCPConnectAttempts),
		strconv.Itoa(r.TCPConnectTimeouts),
		strconv.Itoa(r.NetworkInstabilityIndex),
		strconv.FormatFloat(r.CPStabilityIndex, 'f', 6, 64),
	}
}

// NodeRollup aggregates per-node counters over one fixed rollup window,
// keyed by (window, node identifier, node address).
type NodeRollup struct {
	WindowStart time.Time
	WindowEnd   time.Time
	NodeUUID    string
	NodeAddr    string

	LeadershipTimeMS     int64
	VotesGranted         int
	VotesRejected        int
	PreVoteRejections    int
	FollowerBehindEvents int
	SnapshotsInstalled   int
	InvocationRetries    int
	InvocationTimeouts   int
	SuspectingOthers     int
	WasSuspected         int
	TCPDisconnects       int
	TCPConnectTimeouts   int

	NodeRiskScore  int
	AsymmetryScore float64
}

// NodeRollupColumns is the authoritative column order of the node table.
var NodeRollupColumns = []string{
	"window_start",
	"window_end",
	"node_uuid",
	"node_addr",
	"leadership_time_ms",
	"votes_granted",
	"votes_rejected",
	"pre_vote_rejections",
	"follower_behind_events",
	"snapshots_installed",
	"invocation_retries",
	"invocation_timeouts",
	"suspecting_others",
	"was_suspected",
	"tcp_disconnects",
	"tcp_connect_timeouts",
	"node_risk_score",
	"asymmetry_score",
}

// Record renders the row as a CSV record in NodeRollupColumns order.
func (r NodeRollup) Record() []string {
	return []string{
		r.WindowStart.Format(TSLayout),
		r.WindowEnd.Format(TSLayout),
		r.NodeUUID,
		r.NodeAddr,
		formatInt(r.LeadershipTimeMS),
		strconv.Itoa(r.VotesGranted),
		strconv.Itoa(r.VotesRejected),
		strconv.Itoa(r.PreVoteRejections),
		strconv.Itoa(r.FollowerBehindEvents),
		strconv.Itoa(r.SnapshotsInstalled),
		strconv.Itoa(r.InvocationRetries),
		strconv.Itoa(r.InvocationTimeouts),
		strconv.Itoa(r.SuspectingOthers),
		strconv.Itoa(r.WasSuspected),
		strconv.Itoa(r.TCPDisconnects),
		strconv.Itoa(r.TCPConnectTimeouts),
		strconv.Itoa(r.NodeRiskScore),
		strconv.FormatFloat(r.AsymmetryScore, 'f', 3, 64),
	}
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
