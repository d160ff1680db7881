package extract

import (
	"time"

	"github.com/crimson-sun/raftlens/internal/model"
)

// Timestamp layouts accepted on a log line, tried in order.
var fullTSLayouts = []string{
	"2006-01-02 15:04:05.000",
	"2006-01-02T15:04:05.000",
}

const timeOnlyLayout = "15:04:05.000"

// epochDay anchors time-only logs that have no operator-supplied base date.
var epochDay = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// resolveTimestamp converts a line's leading timestamp token into an absolute
// instant. Three cases, tried in order: a full date+time parses directly; a
// bare time concatenates with the base date when one was supplied; otherwise
// the time is anchored to the epoch day. Returns ok=false when the line has
// no timestamp token or the token does not parse (base-date case included:
// a malformed base date drops the line from clock advancement).
func resolveTimestamp(line, baseDate string) (time.Time, string, bool) {
	m := tsRe.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, "", false
	}
	datePart, timePart := m[1], m[2]

	if datePart != "" {
		for _, layout := range fullTSLayouts {
			if t, err := time.Parse(layout, m[0]); err == nil {
				return t, model.TSSourceLogLine, true
			}
		}
		return time.Time{}, "", false
	}

	if baseDate != "" {
		t, err := time.Parse("2006-01-02 15:04:05.000", baseDate+" "+timePart)
		if err != nil {
			return time.Time{}, "", false
		}
		return t, model.TSSourceBaseDate, true
	}

	t, err := time.Parse(timeOnlyLayout, timePart)
	if err != nil {
		return time.Time{}, "", false
	}
	return epochDay.Add(t.Sub(time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC))), model.TSSourceAnchored, true
}

// clock tracks per-file timestamp state: the last resolved instant, its
// source, and the rollover-day counter for time-only logs. A time-of-day
// strictly below the previous one means midnight passed; each rollover adds
// a day to every subsequent resolved instant. Rollovers larger than 24h
// between consecutive lines go undetected, an accepted approximation.
type clock struct {
	baseDate string

	last       time.Time
	lastSource string
	has        bool

	rolloverDays int
	prevRaw      time.Time
	hasPrevRaw   bool
}

// observe tries to advance the clock from the line's leading timestamp.
// Returns true when the clock advanced.
func (c *clock) observe(line string) bool {
	t, source, ok := resolveTimestamp(line, c.baseDate)
	if !ok {
		return false
	}
	if source == model.TSSourceAnchored {
		if c.hasPrevRaw && t.Before(c.prevRaw) {
			c.rolloverDays++
		}
		c.prevRaw = t
		c.hasPrevRaw = true
		t = t.AddDate(0, 0, c.rolloverDays)
	}
	c.last = t
	c.lastSource = source
	c.has = true
	return true
}

// now returns the last resolved instant and its source. ok is false until
// the file has yielded at least one resolvable timestamp.
func (c *clock) now() (time.Time, string, bool) {
	return c.last, c.lastSource, c.has
}
