package extract

import (
	"math"
	"sort"
	"time"

	"github.com/crimson-sun/raftlens/internal/model"
)

// floorWindow maps an instant to the start of its fixed-size, left-closed
// window. Windows tile from the Unix epoch: window_start is t minus
// epoch-seconds-of-t mod the window size, whatever the window size.
func floorWindow(t time.Time, windowSeconds int) time.Time {
	w := int64(windowSeconds)
	m := t.Unix() % w
	if m < 0 {
		m += w
	}
	return time.Unix(t.Unix()-m, 0).UTC()
}

type groupWindowKey struct {
	start int64 // unix seconds of window start
	gk    string
}

type nodeWindowKey struct {
	start int64
	uuid  string
	addr  string
}

// ComputeRollups buckets events and intervals into fixed-size windows and
// produces the group and node rollup tables, sorted by window then key.
func ComputeRollups(events []model.Event, intervals []model.LeaderInterval, windowSeconds int) ([]model.GroupRollup, []model.NodeRollup) {
	// A non-positive window cannot tile the timeline; fall back to the
	// finest grid rather than looping forever on a zero-width window.
	if windowSeconds <= 0 {
		windowSeconds = 1
	}
	window := time.Duration(windowSeconds) * time.Second

	groups := make(map[groupWindowKey]*model.GroupRollup)
	tenures := make(map[groupWindowKey][]int64)

	groupRow := func(t time.Time, gk string) *model.GroupRollup {
		ws := floorWindow(t, windowSeconds)
		key := groupWindowKey{ws.Unix(), gk}
		r, ok := groups[key]
		if !ok {
			r = &model.GroupRollup{WindowStart: ws, WindowEnd: ws.Add(window), GroupKey: gk}
			groups[key] = r
		}
		return r
	}

	for _, e := range events {
		if e.GroupKey == "" {
			continue
		}
		r := groupRow(e.Timestamp, e.GroupKey)
		switch e.EventType {
		case model.TypeLeaderSet:
			r.Elections++
		case model.TypeWeAreLeader:
			r.WeAreLeader++
		case model.TypeVoteRejected:
			r.VoteRejections++
		case model.TypeElectionTimeout:
			r.VoteTimeouts++
		case model.TypeAppendRejected, model.TypeAppendTimeout:
			r.AppendFailures++
		case model.TypeInvocationRetry:
			r.InvocationRetries++
		case model.TypeInvocationTimeout:
			r.InvocationTimeouts++
		case model.TypeMembersContainerReplaced:
			r.MembershipChanges++
		case model.TypeMemberSuspectedCluster:
			r.ClusterSuspicions++
		case model.TypeCPMemberAutoRemove:
			r.CPAutoRemoveScheduled++
			if sec, ok := atoiStrict(e.Extra1); ok {
				r.CPAutoRemoveSecondsSum += sec
			}
		case model.TypePreVoteRequest:
			r.PreVoteRequests++
		case model.TypePreVoteRejected:
			r.PreVoteRejections++
		case model.TypePreVoteIgnored:
			r.PreVoteIgnored++
		case model.TypeTermMoved:
			r.TermMoves++
		case model.TypeSnapshotInstalling:
			r.SnapshotsInstalled++
		case model.TypeTCPConnClosed:
			r.TCPDisconnects++
		case model.TypeTCPConnecting:
			r.TCPConnectAttempts++
		case model.TypeTCPConnectTimeout:
			r.TCPConnectTimeouts++
		}
	}

	// Leader churn: credit the window an interval *starts* in.
	for _, iv := range intervals {
		r := groupRow(iv.Start, iv.GroupKey)
		r.LeaderIntervalsStarted++
		key := groupWindowKey{r.WindowStart.Unix(), iv.GroupKey}
		tenures[key] = append(tenures[key], iv.DurationMS)
	}

	groupRows := make([]model.GroupRollup, 0, len(groups))
	for key, r := range groups {
		if ten := tenures[key]; len(ten) > 0 {
			sort.Slice(ten, func(i, j int) bool { return ten[i] < ten[j] })
			var sum int64
			for _, d := range ten {
				sum += d
			}
			r.HasTenure = true
			r.MeanLeaderTenure = sum / int64(len(ten))
			idx := int(math.Ceil(0.95*float64(len(ten)))) - 1
			if idx < 0 {
				idx = 0
			}
			r.P95LeaderTenure = ten[idx]
		}

		r.NetworkInstabilityIndex = r.AppendFailures + r.VoteTimeouts + r.InvocationRetries +
			r.ClusterSuspicions + r.TCPDisconnects + r.TCPConnectTimeouts + r.PreVoteRejections

		denom := 1 + r.Elections + r.MembershipChanges + r.VoteRejections
		r.CPStabilityIndex = (float64(r.MeanLeaderTenure) / 1000.0) / float64(denom)

		groupRows = append(groupRows, *r)
	}
	sort.Slice(groupRows, func(i, j int) bool {
		if !groupRows[i].WindowStart.Equal(groupRows[j].WindowStart) {
			return groupRows[i].WindowStart.Before(groupRows[j].WindowStart)
		}
		return groupRows[i].GroupKey < groupRows[j].GroupKey
	})

	nodes := make(map[nodeWindowKey]*model.NodeRollup)
	nodeRow := func(ws time.Time, uuid, addr string) *model.NodeRollup {
		key := nodeWindowKey{ws.Unix(), uuid, addr}
		r, ok := nodes[key]
		if !ok {
			r = &model.NodeRollup{WindowStart: ws, WindowEnd: ws.Add(window), NodeUUID: uuid, NodeAddr: addr}
			nodes[key] = r
		}
		return r
	}

	// Leadership time: split each interval across window boundaries and
	// credit each window the exact overlapping duration.
	for _, iv := range intervals {
		cur := iv.Start
		for cur.Before(iv.End) {
			ws := floorWindow(cur, windowSeconds)
			segEnd := ws.Add(window)
			if iv.End.Before(segEnd) {
				segEnd = iv.End
			}
			nodeRow(ws, iv.LeaderUUID, iv.LeaderAddr).LeadershipTimeMS += segEnd.Sub(cur).Milliseconds()
			cur = segEnd
		}
	}

	for _, e := range events {
		ws := floorWindow(e.Timestamp, windowSeconds)

		uuid := e.NodeUUID
		if uuid == "" {
			uuid = e.VoterUUID
		}
		addr := e.NodeAddr
		if addr == "" {
			addr = e.VoterAddr
		}
		if uuid == "" && addr == "" {
			continue
		}
		r := nodeRow(ws, uuid, addr)
		switch e.EventType {
		case model.TypeVoteGranted:
			r.VotesGranted++
		case model.TypeVoteRejected:
			r.VotesRejected++
		case model.TypePreVoteRejected:
			r.PreVoteRejections++
		case model.TypeInvocationRetry:
			r.InvocationRetries++
		case model.TypeInvocationTimeout:
			r.InvocationTimeouts++
		case model.TypeFollowerBehind:
			r.FollowerBehindEvents++
		case model.TypeSnapshotInstalling:
			r.SnapshotsInstalled++
		case model.TypeMemberSuspectedCluster:
			r.SuspectingOthers++
		case model.TypeTCPConnClosed:
			r.TCPDisconnects++
		case model.TypeTCPConnectTimeout:
			r.TCPConnectTimeouts++
		}

		// The suspicion's target gets the strike under its own key, not the
		// suspecting node's.
		if e.EventType == model.TypeMemberSuspectedCluster && (e.PeerUUID != "" || e.PeerAddr != "") {
			nodeRow(ws, e.PeerUUID, e.PeerAddr).WasSuspected++
		}
	}

	nodeRows := make([]model.NodeRollup, 0, len(nodes))
	for _, r := range nodes {
		r.NodeRiskScore = r.VotesRejected + r.PreVoteRejections + r.FollowerBehindEvents +
			r.InvocationTimeouts + r.TCPConnectTimeouts + r.WasSuspected
		r.AsymmetryScore = float64(r.FollowerBehindEvents+r.VotesRejected+r.TCPDisconnects+r.WasSuspected) -
			float64(r.LeadershipTimeMS)/60000.0
		nodeRows = append(nodeRows, *r)
	}
	sort.Slice(nodeRows, func(i, j int) bool {
		if !nodeRows[i].WindowStart.Equal(nodeRows[j].WindowStart) {
			return nodeRows[i].WindowStart.Before(nodeRows[j].WindowStart)
		}
		if nodeRows[i].NodeUUID != nodeRows[j].NodeUUID {
			return nodeRows[i].NodeUUID < nodeRows[j].NodeUUID
		}
		return nodeRows[i].NodeAddr < nodeRows[j].NodeAddr
	})

	return groupRows, nodeRows
}

// atoiStrict parses a non-negative decimal and rejects anything else.
func atoiStrict(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
