package model

// Event type tags. Grouped by subsystem; the parser's rule chain decides
// which tag a line gets, these constants just name them.
const (
	// CP membership snapshots (multi-line blocks).
	TypeRoleObserved = "role_observed"
	TypeCPSnapshot   = "cp_snapshot"

	// Leadership.
	TypeLeaderSet                  = "leader_set"
	TypeWeAreLeader                = "we_are_leader"
	TypeLeadershipRebalanceSkipped = "leadership_rebalance_skipped"

	// Voting and pre-voting.
	TypeVoteGranted     = "vote_granted"
	TypeVoteRejected    = "vote_rejected"
	TypePreVoteRequest  = "pre_vote_request"
	TypePreVoteRejected = "pre_vote_rejected"
	TypePreVoteIgnored  = "pre_vote_ignored"
	TypeTermMoved       = "term_moved"
	TypeElectionTimeout = "election_timeout"

	// Replication.
	TypeAppendRejected     = "append_rejected"
	TypeAppendTimeout      = "append_timeout"
	TypeFollowerBehind     = "follower_behind"
	TypeSnapshotInstalling = "snapshot_installing"
	TypeSnapshotSending    = "snapshot_sending"

	// Invocation manager.
	TypeInvocationRetry    = "invocation_retry"
	TypeInvocationTimeout  = "invocation_timeout"
	TypeInvocationReplaced = "invocation_replaced"

	// Membership.
	TypeMembersContainerReplaced = "members_container_replaced"
	TypeMemberSuspectedCluster   = "member_suspected_cluster"
	TypeCPMemberAutoRemove       = "cp_member_missing_autoremove"

	// TCP transport.
	TypeTCPConnClosed     = "tcp_conn_closed"
	TypeTCPConnecting     = "tcp_connecting"
	TypeTCPConnectTimeout = "tcp_connect_timeout"
	TypeTCPConnectFailed  = "tcp_connect_failed"
	TypeTCPConnRemoved    = "tcp_conn_removed"
)
