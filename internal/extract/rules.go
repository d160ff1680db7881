package extract

import (
	"regexp"

	"github.com/crimson-sun/raftlens/internal/model"
)

// Structural patterns: timestamps, the standard log header, and the
// multi-line CP membership block. These are handled by the parser itself,
// before the semantic rule chain runs.
var (
	// Leading timestamp: optional date, then HH:MM:SS.mmm.
	tsRe = regexp.MustCompile(`^(?:(\d{4}-\d{2}-\d{2})[ T])?(\d{2}:\d{2}:\d{2}\.\d{3})`)

	// Standard header: TIMESTAMP [THREAD] LEVEL LOGGER - [ACTOR_IP]:ACTOR_PORT REST
	headerRe = regexp.MustCompile(
		`^(?:(?:\d{4}-\d{2}-\d{2})[ T])?\d{2}:\d{2}:\d{2}\.\d{3}\s+` +
			`\[(?P<thread>[^\]]+)\]\s+` +
			`(?P<level>[A-Z]+)\s+` +
			`(?P<logger>\S+)\s+-\s+` +
			`\[(?P<actorIP>\d+\.\d+\.\d+\.\d+)\]:(?P<actorPort>\d+)\s+` +
			`(?P<rest>.*)$`)

	loggerGroupSuffixRe = regexp.MustCompile(`\((?P<gname>METADATA|cpgroup-\d+)\)`)
	endBracketRe        = regexp.MustCompile(`^\s*\]\s*$`)

	// CP membership snapshot block header.
	cpGroupRe = regexp.MustCompile(
		`CP Group Members\s*\{groupId:\s*(?P<gid>[A-Za-z0-9_.-]+\(\d+\))\s*,\s*` +
			`size:(?P<size>\d+)\s*,\s*term:(?P<term>\d+)\s*,\s*logIndex:(?P<logIndex>\d+)\}`)

	cpGroupIDRe = regexp.MustCompile(`^(?P<name>[A-Za-z0-9_.-]+)\((?P<seed>\d+)\)$`)

	// Member line inside a CP block; the role suffix is optional.
	cpMemberRe = regexp.MustCompile(
		`CPMember\{uuid=(?P<uuid>[0-9a-fA-F-]+),\s*address=\[(?P<ip>[^\]]+)\]:(?P<port>\d+)\}` +
			`(?:\s*-\s*(?P<role>LEADER|FOLLOWER).*)?$`)
)

// Seat banner patterns. These update per-file observer identity and never
// emit events.
var (
	seatPriorityRe = regexp.MustCompile(
		`Setting CP member priority to\s*(?P<priority>\d+)\s*for agent\s*(?P<private>\d{1,3}(?:\.\d{1,3}){3})\b`)
	seatPublicAddrRe = regexp.MustCompile(`Worker\s*-\s*Public address:\s*(?P<public>\d{1,3}(?:\.\d{1,3}){3})\b`)
	seatLabelRe      = regexp.MustCompile(`Server\s*-\s*Successfully started server for\s*(?P<label>A\d+_W\d+)\b`)
)

// ruleContext carries the per-line parser context a rule may draw on: the
// actor address from the most recent header line and its resolved identifier.
type ruleContext struct {
	actorUUID string
	actorAddr string
}

// fields is everything a semantic rule may contribute to the event it emits.
type fields struct {
	term          string
	logIndex      string
	nodeUUID      string
	nodeAddr      string
	peerUUID      string
	peerAddr      string
	candidateUUID string
	voterUUID     string
	voterAddr     string
	voteGranted   string
	reason        string
	timeoutMS     string
	extra1        string
	extra2        string
}

// semanticRule is one entry of the ordered rule chain: a pattern, the event
// type it emits, and an extractor that fills event fields from the match.
// A rule that reveals an identifier/address pair also has a learn hook; the
// parser records that mapping (first-write-wins) before extract runs, so the
// lookup-dependent actor fields see it.
type semanticRule struct {
	eventType string
	re        *regexp.Regexp
	learn     func(m match) (addr, uuid string)
	extract   func(m match, ctx ruleContext) fields
}

// match wraps a regexp submatch with by-name access.
type match struct {
	re   *regexp.Regexp
	subs []string
}

func (m match) group(name string) string {
	for i, n := range m.re.SubexpNames() {
		if n == name && i < len(m.subs) {
			return m.subs[i]
		}
	}
	return ""
}

// actor fills the default node fields from the line's actor context.
func actor(ctx ruleContext) fields {
	return fields{nodeUUID: ctx.actorUUID, nodeAddr: ctx.actorAddr}
}

// semanticRules is the ordered rule chain. Evaluation stops at the first
// match, so more specific patterns must precede generic ones; new event
// types are appended, not spliced, to keep existing classifications stable.
var semanticRules = []semanticRule{
	{
		eventType: model.TypeMemberSuspectedCluster,
		re: regexp.MustCompile(`(?i)Member\s+\[(?P<ip>\d+\.\d+\.\d+\.\d+)\]:(?P<port>\d+)\s+-\s+` +
			`(?P<uuid>[0-9a-fA-F-]+)\s+is suspected to be dead for reason:\s*(?P<reason>.*)$`),
		learn: func(m match) (string, string) {
			return m.group("ip") + ":" + m.group("port"), m.group("uuid")
		},
		extract: func(m match, ctx ruleContext) fields {
			f := actor(ctx)
			f.peerUUID = m.group("uuid")
			f.peerAddr = m.group("ip") + ":" + m.group("port")
			f.reason = trimSpace(m.group("reason"))
			return f
		},
	},
	{
		eventType: model.TypeCPMemberAutoRemove,
		re: regexp.MustCompile(`(?i)CPMember\{uuid=(?P<uuid>[0-9a-fA-F-]+),\s*address=\[(?P<ip>[^\]]+)\]:(?P<port>\d+)\}` +
			`.*auto-removed.*after\s+(?P<sec>\d+)\s+seconds`),
		learn: func(m match) (string, string) {
			return m.group("ip") + ":" + m.group("port"), m.group("uuid")
		},
		extract: func(m match, ctx ruleContext) fields {
			f := actor(ctx)
			f.peerUUID = m.group("uuid")
			f.peerAddr = m.group("ip") + ":" + m.group("port")
			f.extra1 = m.group("sec")
			return f
		},
	},
	{
		eventType: model.TypeLeadershipRebalanceSkipped,
		re:        regexp.MustCompile(`(?i)leadership rebalancing.*skipped.*MemberLeftException`),
		extract:   func(_ match, ctx ruleContext) fields { return actor(ctx) },
	},
	{
		eventType: model.TypeTCPConnClosed,
		re: regexp.MustCompile(`(?i)TcpServerConnection\{.*?localAddress=(?P<local>[^,}]+).*?` +
			`remoteAddress=(?P<remote>[^,}]+).*?remoteUuid=(?P<ruuid>[0-9a-fA-F-]+).*?\} closed\. Reason:\s*(?P<reason>.*)$`),
		extract: func(m match, ctx ruleContext) fields {
			f := actor(ctx)
			f.peerUUID = m.group("ruuid")
			f.peerAddr = m.group("remote")
			f.reason = trimSpace(m.group("reason"))
			f.extra1 = m.group("local")
			return f
		},
	},
	{
		eventType: model.TypeTCPConnecting,
		re:        regexp.MustCompile(`(?i)Connecting to\s+(?P<remote>/\d+\.\d+\.\d+\.\d+:\d+),\s*timeout:\s*(?P<timeout>\d+)`),
		extract: func(m match, ctx ruleContext) fields {
			f := actor(ctx)
			f.peerAddr = trimSpace(m.group("remote"))
			f.timeoutMS = m.group("timeout")
			return f
		},
	},
	{
		eventType: model.TypeTCPConnectTimeout,
		re:        regexp.MustCompile(`(?i)Connect timed out`),
		extract:   func(_ match, ctx ruleContext) fields { return actor(ctx) },
	},
	{
		eventType: model.TypeLeaderSet,
		re:        regexp.MustCompile(`Setting leader:\s*RaftEndpoint\{uuid='(?P<uuid>[0-9a-fA-F-]+)'\}`),
		extract: func(m match, ctx ruleContext) fields {
			f := actor(ctx)
			f.peerUUID = m.group("uuid")
			return f
		},
	},
	{
		eventType: model.TypeWeAreLeader,
		re:        regexp.MustCompile(`(?i)We are the LEADER!`),
		extract: func(_ match, ctx ruleContext) fields {
			f := actor(ctx)
			f.peerUUID = ctx.actorUUID
			f.peerAddr = ctx.actorAddr
			return f
		},
	},
	{
		eventType: model.TypeVoteGranted,
		re:        regexp.MustCompile(`Granted vote for VoteRequest\{candidate=RaftEndpoint\{uuid='(?P<uuid>[0-9a-fA-F-]+)'\}.*term=(?P<term>\d+)`),
		extract: func(m match, ctx ruleContext) fields {
			return fields{
				term:          m.group("term"),
				candidateUUID: m.group("uuid"),
				voterUUID:     ctx.actorUUID,
				voterAddr:     ctx.actorAddr,
				voteGranted:   "true",
			}
		},
	},
	{
		eventType: model.TypeVoteRejected,
		re:        regexp.MustCompile(`Rejected vote for VoteRequest\{candidate=RaftEndpoint\{uuid='(?P<uuid>[0-9a-fA-F-]+)'\}.*term=(?P<term>\d+)`),
		extract: func(m match, ctx ruleContext) fields {
			return fields{
				term:          m.group("term"),
				candidateUUID: m.group("uuid"),
				voterUUID:     ctx.actorUUID,
				voterAddr:     ctx.actorAddr,
				voteGranted:   "false",
			}
		},
	},
	{
		eventType: model.TypePreVoteRejected,
		re: regexp.MustCompile(`Rejecting PreVoteResponse for PreVoteRequest\{candidate=RaftEndpoint\{uuid='(?P<uuid>[0-9a-fA-F-]+)'\}` +
			`.*term=(?P<term>\d+).*?\}\s*since\s*(?P<reason>.*)$`),
		extract: func(m match, ctx ruleContext) fields {
			return fields{
				term:          m.group("term"),
				candidateUUID: m.group("uuid"),
				voterUUID:     ctx.actorUUID,
				voterAddr:     ctx.actorAddr,
				voteGranted:   "false",
				reason:        trimSpace(m.group("reason")),
			}
		},
	},
	{
		eventType: model.TypePreVoteRequest,
		re:        regexp.MustCompile(`PreVoteRequest\{candidate=RaftEndpoint\{uuid='(?P<uuid>[0-9a-fA-F-]+)'\}.*term=(?P<term>\d+).*lastLogIndex=(?P<lli>\d+)`),
		extract: func(m match, ctx ruleContext) fields {
			f := actor(ctx)
			f.term = m.group("term")
			f.candidateUUID = m.group("uuid")
			f.extra1 = m.group("lli")
			return f
		},
	},
	{
		eventType: model.TypePreVoteIgnored,
		re:        regexp.MustCompile(`(?i)Ignoring PreVoteResponse.*not follower anymore`),
		extract:   func(_ match, ctx ruleContext) fields { return actor(ctx) },
	},
	{
		eventType: model.TypeTermMoved,
		re: regexp.MustCompile(`Moving to new term:\s*(?P<new>\d+)\s*from current term:\s*(?P<old>\d+)` +
			`.*candidate=RaftEndpoint\{uuid='(?P<cand>[0-9a-fA-F-]+)'\}.*lastLogIndex=(?P<lli>\d+)`),
		extract: func(m match, ctx ruleContext) fields {
			f := actor(ctx)
			f.term = m.group("new")
			f.candidateUUID = m.group("cand")
			f.extra1 = "old=" + m.group("old")
			f.extra2 = "lastLogIndex=" + m.group("lli")
			return f
		},
	},
	{
		eventType: model.TypeElectionTimeout,
		re:        regexp.MustCompile(`(?i)(Election timed out|Not enough votes|Retrying election)`),
		extract:   func(_ match, ctx ruleContext) fields { return actor(ctx) },
	},
	{
		eventType: model.TypeAppendRejected,
		re:        regexp.MustCompile(`(?i)Append.*rejected`),
		extract:   func(_ match, ctx ruleContext) fields { return actor(ctx) },
	},
	{
		eventType: model.TypeAppendTimeout,
		re:        regexp.MustCompile(`(?i)Append.*timeout`),
		extract:   func(_ match, ctx ruleContext) fields { return actor(ctx) },
	},
	{
		eventType: model.TypeFollowerBehind,
		re:        regexp.MustCompile(`(?i)(Follower is behind|is behind)`),
		extract:   func(_ match, ctx ruleContext) fields { return actor(ctx) },
	},
	{
		eventType: model.TypeSnapshotInstalling,
		re:        regexp.MustCompile(`(?i)Installing snapshot`),
		extract:   func(_ match, ctx ruleContext) fields { return actor(ctx) },
	},
	{
		eventType: model.TypeSnapshotSending,
		re:        regexp.MustCompile(`(?i)Sending snapshot`),
		extract:   func(_ match, ctx ruleContext) fields { return actor(ctx) },
	},
	{
		eventType: model.TypeInvocationRetry,
		re:        regexp.MustCompile(`(?i)Retry(ing)? .*Raft invocation`),
		extract:   func(_ match, ctx ruleContext) fields { return actor(ctx) },
	},
	{
		eventType: model.TypeInvocationTimeout,
		re:        regexp.MustCompile(`(?i)(Raft invocation.*timed out|Invocation timed out)`),
		extract:   func(_ match, ctx ruleContext) fields { return actor(ctx) },
	},
	{
		eventType: model.TypeInvocationReplaced,
		re:        regexp.MustCompile(`(?i)Replaced .*RaftInvocation`),
		extract:   func(_ match, ctx ruleContext) fields { return actor(ctx) },
	},
	{
		eventType: model.TypeMembersContainerReplaced,
		re:        regexp.MustCompile(`(?i)Replaced\s+CPMembersContainer`),
		extract:   func(_ match, ctx ruleContext) fields { return actor(ctx) },
	},
	{
		eventType: model.TypeTCPConnectFailed,
		re:        regexp.MustCompile(`(?i)Could not connect to:\s*(?P<remote>/\d+\.\d+\.\d+\.\d+:\d+)\.\s*Reason:\s*(?P<reason>.*)$`),
		extract: func(m match, ctx ruleContext) fields {
			f := actor(ctx)
			f.peerAddr = trimSpace(m.group("remote"))
			f.reason = trimSpace(m.group("reason"))
			return f
		},
	},
	{
		eventType: model.TypeTCPConnRemoved,
		re: regexp.MustCompile(`(?i)Removing connection to endpoint\s+\[(?P<remote>\d+\.\d+\.\d+\.\d+)\]:(?P<port>\d+)` +
			`\s+Cause\s*=>\s*(?P<cause>.*),\s*Error-Count:\s*(?P<count>\d+)`),
		extract: func(m match, ctx ruleContext) fields {
			f := actor(ctx)
			f.peerAddr = m.group("remote") + ":" + m.group("port")
			f.reason = trimSpace(m.group("cause"))
			f.extra1 = m.group("count")
			return f
		},
	},
}

// matchRule runs the semantic rule chain against one line, returning the
// first matching rule and its match, or nil.
func matchRule(line string) (*semanticRule, match) {
	for i := range semanticRules {
		r := &semanticRules[i]
		if subs := r.re.FindStringSubmatch(line); subs != nil {
			return r, match{re: r.re, subs: subs}
		}
	}
	return nil, match{}
}
