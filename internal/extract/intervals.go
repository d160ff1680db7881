package extract

import (
	"sort"
	"time"

	"github.com/crimson-sun/raftlens/internal/model"
)

// timelinePoint is one leadership signal: at time t, uuid was leader.
type timelinePoint struct {
	t    time.Time
	uuid string
	addr string
}

// buildLeaderTimeline collects per-group leadership points from three signal
// kinds: a snapshot naming an explicit leader, a node's own "we are leader"
// declaration, and a leader-set signal (identifier only). Points are sorted
// by time and collapsed so that only a change of leader survives — a
// last-writer-per-instant dedup, not a majority vote.
func buildLeaderTimeline(events []model.Event) map[string][]timelinePoint {
	byGroup := make(map[string][]timelinePoint)

	for _, e := range events {
		if e.GroupKey == "" {
			continue
		}
		switch e.EventType {
		case model.TypeCPSnapshot:
			if e.PeerUUID != "" {
				byGroup[e.GroupKey] = append(byGroup[e.GroupKey], timelinePoint{e.Timestamp, e.PeerUUID, e.PeerAddr})
			}
		case model.TypeWeAreLeader:
			uuid, addr := e.PeerUUID, e.PeerAddr
			if uuid == "" {
				uuid = e.NodeUUID
			}
			if addr == "" {
				addr = e.NodeAddr
			}
			if uuid != "" || addr != "" {
				byGroup[e.GroupKey] = append(byGroup[e.GroupKey], timelinePoint{e.Timestamp, uuid, addr})
			}
		case model.TypeLeaderSet:
			if e.PeerUUID != "" {
				byGroup[e.GroupKey] = append(byGroup[e.GroupKey], timelinePoint{e.Timestamp, e.PeerUUID, ""})
			}
		}
	}

	for gk, pts := range byGroup {
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].t.Before(pts[j].t) })
		collapsed := pts[:0]
		lastUUID := ""
		for _, pt := range pts {
			if pt.uuid != "" && pt.uuid != lastUUID {
				collapsed = append(collapsed, pt)
				lastUUID = pt.uuid
			}
		}
		byGroup[gk] = collapsed
	}

	return byGroup
}

// BuildIntervals reconstructs non-overlapping leader intervals per group from
// the event stream. Each timeline point opens an interval ending at the next
// point (or at endTS, the run's last observed timestamp, for the final one).
// Non-positive intervals — timestamp disorder — are dropped. Snapshot
// metadata is attached from whichever cp_snapshot of the group is nearest the
// interval start by absolute time distance, and a missing leader address is
// backfilled from role_observed identities.
func BuildIntervals(events []model.Event, endTS time.Time) []model.LeaderInterval {
	timeline := buildLeaderTimeline(events)

	snapsByGroup := make(map[string][]model.Event)
	for _, e := range events {
		if e.EventType == model.TypeCPSnapshot && e.GroupKey != "" {
			snapsByGroup[e.GroupKey] = append(snapsByGroup[e.GroupKey], e)
		}
	}
	for _, snaps := range snapsByGroup {
		sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].Timestamp.Before(snaps[j].Timestamp) })
	}

	// First-seen address per identifier, from membership snapshots.
	addrByUUID := make(map[string]string)
	for _, e := range events {
		if e.EventType == model.TypeRoleObserved && e.NodeUUID != "" && e.NodeAddr != "" {
			if _, ok := addrByUUID[e.NodeUUID]; !ok {
				addrByUUID[e.NodeUUID] = e.NodeAddr
			}
		}
	}

	groupKeys := make([]string, 0, len(timeline))
	for gk := range timeline {
		groupKeys = append(groupKeys, gk)
	}
	sort.Strings(groupKeys)

	var intervals []model.LeaderInterval
	for _, gk := range groupKeys {
		pts := timeline[gk]
		for i, pt := range pts {
			end := endTS
			if i+1 < len(pts) {
				end = pts[i+1].t
			}
			if !end.After(pt.t) {
				continue
			}

			iv := model.LeaderInterval{
				IntervalID: contentID(gk, pt.uuid, pt.t.Format(model.TSKeyLayout)),
				GroupKey:   gk,
				GroupName:  gk,
				LeaderUUID: pt.uuid,
				LeaderAddr: pt.addr,
				Start:      pt.t,
				End:        end,
				DurationMS: end.Sub(pt.t).Milliseconds(),
			}

			if snap := nearestSnapshot(snapsByGroup[gk], pt.t); snap != nil {
				iv.GroupID = snap.GroupID
				iv.GroupName = snap.GroupName
				iv.TermStart = snap.Term
				iv.StartLogIndex = snap.LogIndex
			}
			if iv.LeaderAddr == "" && iv.LeaderUUID != "" {
				iv.LeaderAddr = addrByUUID[iv.LeaderUUID]
			}

			intervals = append(intervals, iv)
		}
	}
	return intervals
}

// nearestSnapshot picks the snapshot with the smallest absolute distance to
// t. Ties keep the earlier snapshot. Note this deliberately considers
// snapshots after t as well; a later snapshot's term can end up attached to
// an earlier interval when it is the closest observation available.
func nearestSnapshot(snaps []model.Event, t time.Time) *model.Event {
	var best *model.Event
	var bestDist time.Duration
	for i := range snaps {
		d := snaps[i].Timestamp.Sub(t)
		if d < 0 {
			d = -d
		}
		if best == nil || d < bestDist {
			best = &snaps[i]
			bestDist = d
		}
	}
	return best
}
