package extract

import (
	"bufio"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/crimson-sun/raftlens/internal/model"
)

// Lines in worker logs are occasionally huge (stack traces, member dumps).
const maxLineBytes = 1 << 20

// Parser turns worker.log files into typed events. It is line-oriented and
// strictly sequential within a file; the identity accumulator is shared
// across files.
type Parser struct {
	baseDate string
	ids      *Identities
	log      *zap.Logger
}

// NewParser creates a Parser. baseDate ("YYYY-MM-DD") anchors time-only logs
// and may be empty; ids must not be nil.
func NewParser(baseDate string, ids *Identities, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{baseDate: baseDate, ids: ids, log: log}
}

// blockState is an open CP membership block: header metadata captured on the
// opening line plus the member lines accumulated so far.
type blockState struct {
	gid      string
	size     string
	term     string
	logIndex string

	ts       time.Time
	tsSource string
	line     int

	thread    string
	level     string
	logger    string
	actorAddr string

	lines []string
}

// fileState is the per-file parser state: the seat identity, the clock, the
// last-seen header fields, and the open block, if any. It is private to one
// ParseFile call.
type fileState struct {
	path string
	seat model.ObserverSeat
	clk  clock

	thread    string
	level     string
	logger    string
	actorAddr string
	groupName string

	block *blockState

	events   []model.Event
	lastSeen time.Time
	hasSeen  bool
}

// ParseFile consumes one file's lines and returns the events it yielded plus
// the file's last observed timestamp (ok=false when no line resolved a
// timestamp). seat seeds the observer identity; banner lines inside the file
// overwrite it.
func (p *Parser) ParseFile(path string, r io.Reader, seat model.ObserverSeat) ([]model.Event, time.Time, bool) {
	st := &fileState{
		path: path,
		seat: seat,
		clk:  clock{baseDate: p.baseDate},
	}

	br := bufio.NewReaderSize(r, 64*1024)
	lineno := 0
	for {
		line, err := readLine(br)
		if err != nil && err != io.EOF {
			// A torn tail is a local anomaly: keep what was parsed.
			p.log.Warn("stopped reading mid-file", zap.String("file", path), zap.Error(err))
			break
		}
		if err == io.EOF && line == "" {
			break
		}
		lineno++
		p.step(st, lineno, line)
		if err == io.EOF {
			break
		}
	}

	// A block left open at EOF still commits; the closing bracket was lost,
	// not the members.
	p.commitBlock(st)

	return st.events, st.lastSeen, st.hasSeen
}

// readLine returns the next line without its terminator. A line longer than
// maxLineBytes is truncated to that length and the remainder discarded, so
// an oversized line costs itself, not the rest of the file.
func readLine(br *bufio.Reader) (string, error) {
	var buf []byte
	for {
		frag, isPrefix, err := br.ReadLine()
		if len(frag) > 0 && len(buf) < maxLineBytes {
			if room := maxLineBytes - len(buf); len(frag) > room {
				frag = frag[:room]
			}
			buf = append(buf, frag...)
		}
		if err != nil {
			return string(buf), err
		}
		if !isPrefix {
			return string(buf), nil
		}
	}
}

// step advances the state machine by one physical line.
func (p *Parser) step(st *fileState, lineno int, line string) {
	// A new timestamped line before the closing bracket means the block was
	// truncated; commit what we have.
	if st.block != nil && tsRe.MatchString(line) {
		p.commitBlock(st)
	}

	// Seat banners update identity but never emit and never block other
	// rules on the same line.
	if m := seatPublicAddrRe.FindStringSubmatch(line); m != nil {
		st.seat.PublicAddr = m[1]
	}
	if m := seatLabelRe.FindStringSubmatch(line); m != nil {
		st.seat.Label = m[1]
	}
	if m := seatPriorityRe.FindStringSubmatch(line); m != nil {
		st.seat.CPPriority = m[1]
		st.seat.PrivateAddr = m[2]
	}

	if hm := headerRe.FindStringSubmatch(line); hm != nil {
		st.clk.observe(line)
		h := match{re: headerRe, subs: hm}
		st.thread = h.group("thread")
		st.level = h.group("level")
		st.logger = h.group("logger")
		st.actorAddr = h.group("actorIP") + ":" + h.group("actorPort")
		st.groupName = groupFromLogger(st.logger)
	} else {
		st.clk.observe(line)
	}
	if t, _, ok := st.clk.now(); ok {
		if !st.hasSeen || t.After(st.lastSeen) {
			st.lastSeen = t
			st.hasSeen = true
		}
	}

	if st.block != nil {
		st.block.lines = append(st.block.lines, line)
		if endBracketRe.MatchString(line) {
			p.commitBlock(st)
		}
		return
	}

	// Nothing can be attributed to an instant yet.
	if _, _, ok := st.clk.now(); !ok {
		return
	}

	if mg := cpGroupRe.FindStringSubmatch(line); mg != nil {
		b := match{re: cpGroupRe, subs: mg}
		ts, tsSource, _ := st.clk.now()
		st.block = &blockState{
			gid:       b.group("gid"),
			size:      b.group("size"),
			term:      b.group("term"),
			logIndex:  b.group("logIndex"),
			ts:        ts,
			tsSource:  tsSource,
			line:      lineno,
			thread:    st.thread,
			level:     st.level,
			logger:    st.logger,
			actorAddr: st.actorAddr,
		}
		return
	}

	rule, m := matchRule(line)
	if rule == nil {
		return
	}
	if rule.learn != nil {
		p.ids.Learn(rule.learn(m))
	}
	ctx := ruleContext{actorUUID: p.ids.Lookup(st.actorAddr), actorAddr: st.actorAddr}
	p.emit(st, rule.eventType, line, lineno, rule.extract(m, ctx))
}

// emit appends one event built from the current file state and the rule's
// extracted fields. Callers guarantee a resolved timestamp is in scope.
func (p *Parser) emit(st *fileState, eventType, msg string, lineno int, f fields) {
	ts, tsSource, ok := st.clk.now()
	if !ok {
		return
	}

	groupKey := CanonicalGroupKey(st.groupName)

	st.events = append(st.events, model.Event{
		EventID:   contentID(st.path, strconv.Itoa(lineno), eventType, msg, ts.Format(model.TSKeyLayout)),
		Timestamp: ts,
		TSSource:  tsSource,
		EventType: eventType,

		GroupKey:  groupKey,
		GroupName: groupKey,

		Term:     f.term,
		LogIndex: f.logIndex,

		ObserverLabel:       st.seat.Label,
		ObserverPrivateAddr: st.seat.PrivateAddr,
		ObserverPublicAddr:  st.seat.PublicAddr,
		ObserverCPPriority:  st.seat.CPPriority,

		NodeUUID:      f.nodeUUID,
		NodeAddr:      f.nodeAddr,
		PeerUUID:      f.peerUUID,
		PeerAddr:      f.peerAddr,
		CandidateUUID: f.candidateUUID,
		VoterUUID:     f.voterUUID,
		VoterAddr:     f.voterAddr,

		VoteGranted: f.voteGranted,
		Reason:      f.reason,
		TimeoutMS:   f.timeoutMS,
		Extra1:      f.extra1,
		Extra2:      f.extra2,

		SourceFile: st.path,
		SourceLine: strconv.Itoa(lineno),
		Thread:     st.thread,
		Level:      st.level,
		Logger:     st.logger,
		Message:    msg,
	})
}

// commitBlock closes an open CP membership block: one role_observed event per
// recognized member line, then exactly one cp_snapshot summarizing the block,
// with the LEADER member (if any) as the snapshot's peer. No-op when no block
// is open.
func (p *Parser) commitBlock(st *fileState) {
	b := st.block
	st.block = nil
	if b == nil {
		return
	}

	gname, gseed := splitGroupID(b.gid)
	groupKey := CanonicalGroupKey(b.gid)
	tsKey := b.ts.Format(model.TSKeyLayout)
	srcLine := strconv.Itoa(b.line)

	leaderUUID, leaderAddr := "", ""
	for _, l := range b.lines {
		mm := cpMemberRe.FindStringSubmatch(trimSpace(l))
		if mm == nil {
			continue
		}
		m := match{re: cpMemberRe, subs: mm}
		uuid := m.group("uuid")
		addr := m.group("ip") + ":" + m.group("port")
		role := m.group("role")

		p.ids.Learn(addr, uuid)

		st.events = append(st.events, model.Event{
			EventID:   contentID(st.path, srcLine, b.gid, uuid, role, tsKey),
			Timestamp: b.ts,
			TSSource:  b.tsSource,
			EventType: model.TypeRoleObserved,

			GroupKey:  groupKey,
			GroupID:   b.gid,
			GroupName: gname,
			GroupSeed: gseed,

			Term:          b.term,
			LogIndex:      b.logIndex,
			CPMemberCount: b.size,

			ObserverLabel:       st.seat.Label,
			ObserverPrivateAddr: st.seat.PrivateAddr,
			ObserverPublicAddr:  st.seat.PublicAddr,
			ObserverCPPriority:  st.seat.CPPriority,

			NodeUUID: uuid,
			NodeAddr: addr,

			SourceFile: st.path,
			SourceLine: srcLine,
			Thread:     b.thread,
			Level:      b.level,
			Logger:     b.logger,
			Message:    role,
		})

		if role == "LEADER" {
			leaderUUID, leaderAddr = uuid, addr
		}
	}

	st.events = append(st.events, model.Event{
		EventID:   contentID(st.path, srcLine, b.gid, model.TypeCPSnapshot, tsKey),
		Timestamp: b.ts,
		TSSource:  b.tsSource,
		EventType: model.TypeCPSnapshot,

		GroupKey:  groupKey,
		GroupID:   b.gid,
		GroupName: gname,
		GroupSeed: gseed,

		Term:          b.term,
		LogIndex:      b.logIndex,
		CPMemberCount: b.size,

		ObserverLabel:       st.seat.Label,
		ObserverPrivateAddr: st.seat.PrivateAddr,
		ObserverPublicAddr:  st.seat.PublicAddr,
		ObserverCPPriority:  st.seat.CPPriority,

		NodeUUID: p.ids.Lookup(b.actorAddr),
		NodeAddr: b.actorAddr,
		PeerUUID: leaderUUID,
		PeerAddr: leaderAddr,

		SourceFile: st.path,
		SourceLine: srcLine,
		Thread:     b.thread,
		Level:      b.level,
		Logger:     b.logger,
		Message:    "CP Group Members snapshot",
	})
}
