package model

import "time"

// Timestamp layouts used across the four output tables and event IDs.
const (
	// TSLayout is the on-disk form: space-separated, microsecond precision.
	TSLayout = "2006-01-02 15:04:05.000000"
	// TSKeyLayout is the T-separated form fed into content hashes.
	TSKeyLayout = "2006-01-02T15:04:05.000000"
)

// Timestamp sources, in decreasing order of confidence.
const (
	TSSourceLogLine  = "log_line"           // full date+time on the line
	TSSourceBaseDate = "base_date"          // time-only, anchored to --base-date
	TSSourceAnchored = "anchored_time_only" // time-only, anchored to the epoch day
)

// Event is one observed fact extracted from a worker log. It is the row type
// of the events table; every field is already in serialized form except the
// timestamp. Events are immutable once emitted.
type Event struct {
	EventID   string
	Timestamp time.Time
	TSSource  string
	EventType string

	// Consensus-group identity. GroupKey is the canonical (seed-stripped)
	// form; GroupID is the raw "name(seed)" identifier when one was seen.
	GroupKey  string
	GroupID   string
	GroupName string
	GroupSeed string

	// CP metadata captured alongside the fact.
	Term          string
	LogIndex      string
	CPMemberCount string

	// Identity of the log file being parsed ("from my seat").
	ObserverLabel       string
	ObserverPrivateAddr string
	ObserverPublicAddr  string
	ObserverCPPriority  string

	// Actor / peer roles.
	NodeUUID      string
	NodeAddr      string
	PeerUUID      string
	PeerAddr      string
	CandidateUUID string
	CandidateAddr string
	VoterUUID     string
	VoterAddr     string

	VoteGranted string
	Reason      string

	TimeoutMS     string
	SnapshotBytes string
	Extra1        string
	Extra2        string

	// Provenance.
	SourceFile string
	SourceLine string

	// Raw log context from the nearest header line.
	Thread  string
	Level   string
	Logger  string
	Message string
}

// EventColumns is the authoritative column order of the events table.
var EventColumns = []string{
	"event_id",
	"ts",
	"ts_source",
	"event_type",
	"group_key",
	"group_id",
	"group_name",
	"group_seed",
	"term",
	"log_index",
	"cp_member_count",
	"observer_label",
	"observer_private_addr",
	"observer_public_addr",
	"observer_cp_priority",
	"node_uuid",
	"node_addr",
	"peer_uuid",
	"peer_addr",
	"candidate_uuid",
	"candidate_addr",
	"voter_uuid",
	"voter_addr",
	"vote_granted",
	"reason",
	"timeout_ms",
	"snapshot_bytes",
	"extra_1",
	"extra_2",
	"source_file",
	"source_line",
	"thread",
	"level",
	"logger",
	"message",
}

// Record renders the event as a CSV record in EventColumns order.
func (e Event) Record() []string {
	return []string{
		e.EventID,
		e.Timestamp.Format(TSLayout),
		e.TSSource,
		e.EventType,
		e.GroupKey,
		e.GroupID,
		e.GroupName,
		e.GroupSeed,
		e.Term,
		e.LogIndex,
		e.CPMemberCount,
		e.ObserverLabel,
		e.ObserverPrivateAddr,
		e.ObserverPublicAddr,
		e.ObserverCPPriority,
		e.NodeUUID,
		e.NodeAddr,
		e.PeerUUID,
		e.PeerAddr,
		e.CandidateUUID,
		e.CandidateAddr,
		e.VoterUUID,
		e.VoterAddr,
		e.VoteGranted,
		e.Reason,
		e.TimeoutMS,
		e.SnapshotBytes,
		e.Extra1,
		e.Extra2,
		e.SourceFile,
		e.SourceLine,
		e.Thread,
		e.Level,
		e.Logger,
		e.Message,
	}
}
