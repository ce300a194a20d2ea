// Package deadline converts classifier detections into absolute deadlines.
// Like the classifier it is a pure leaf: stateless, deterministic for a given
// reference instant, free of I/O and logging.
//
// Resolution walks an ordered rule list over the raw timeframe hint:
// explicit numeric counts first, then named offsets, then calendar phrases
// ("tomorrow morning"), then the catch-all windows. Anything unparseable
// degrades to the action-type default window instead of failing; Resolve
// never returns an error.
//
// Calendar phrases ("morning", "tomorrow morning") are computed in a business
// time zone supplied by the caller. The zone is an explicit input, never a
// hard-coded offset.
package deadline

import (
	"strings"
	"time"

	"github.com/tbourn/go-commitment-engine/internal/detect"
)

// Default policy windows. All are overridable per Resolver.
const (
	// DefaultVagueWindow is applied to vague deferrals: "one moment" is
	// assumed to mean very soon and escalates quickly if not honored.
	DefaultVagueWindow = 30 * time.Minute
	// DefaultActionWindow is applied to action promises with no timeframe,
	// and to time expressions that fail to parse.
	DefaultActionWindow = 4 * time.Hour

	morningHour = 9  // "tomorrow morning" resolves to 09:00 local
	middayHour  = 12 // bare "morning" during the day resolves to 12:00
	eveningCut  = 18 // past this local hour, bare "morning" means tomorrow
)

// Result is the outcome of deadline resolution.
type Result struct {
	// Deadline is the absolute instant by which the commitment is expected
	// to be honored. Always strictly later than the reference instant.
	Deadline time.Time
	// Explicit is true when the deadline came from a recognized concrete
	// time expression, false for policy-default fallbacks.
	Explicit bool
}

// Resolver derives deadlines from detections. The zero value is not usable;
// construct with New.
type Resolver struct {
	loc          *time.Location
	vagueWindow  time.Duration
	actionWindow time.Duration
}

// New returns a Resolver computing calendar phrases in loc. A nil loc falls
// back to UTC.
func New(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{
		loc:          loc,
		vagueWindow:  DefaultVagueWindow,
		actionWindow: DefaultActionWindow,
	}
}

// WithWindows overrides the vague and action default windows. Non-positive
// values keep the current setting.
func (r *Resolver) WithWindows(vague, action time.Duration) *Resolver {
	if vague > 0 {
		r.vagueWindow = vague
	}
	if action > 0 {
		r.actionWindow = action
	}
	return r
}

// Location returns the business time zone this resolver computes in.
func (r *Resolver) Location() *time.Location { return r.loc }

// Resolve derives the absolute deadline for a detection relative to ref.
// It never fails; unparseable timeframes yield the action default window
// with Explicit == false.
func (r *Resolver) Resolve(d detect.Detection, ref time.Time) Result {
	switch {
	case !d.HasCommitment:
		// Callers should not resolve non-detections, but degrade safely.
		return Result{Deadline: ref.Add(r.actionWindow)}
	case d.Type == detect.TypeVague:
		return Result{Deadline: ref.Add(r.vagueWindow)}
	case d.Type == detect.TypeAction:
		return Result{Deadline: ref.Add(r.actionWindow)}
	}
	return r.resolveTimeframe(d.TimeframeHint, ref)
}

// offsetRule maps a set of phrase literals to a fixed offset from ref.
type offsetRule struct {
	phrases []string
	offset  time.Duration
}

// fixedOffsets holds the named-offset and catch-all phrase rules, in
// evaluation order. Longer phrases appear before their sub-phrases; the
// calendar rules (tomorrow morning, tomorrow, morning) are handled
// separately because they need the business time zone.
var fixedOffsets = []offsetRule{
	{[]string{"полчаса", "yarim soat", "ярим соат", "half an hour", "half-hour"}, 30 * time.Minute},
	{[]string{"через час", "в течение часа", "bir soat", "бир соат", "an hour", "within the hour"}, time.Hour},
	{[]string{"до конца дня", "к концу дня", "kun oxirigacha", "кун охиригача", "end of the day", "end of day"}, 8 * time.Hour},
	{[]string{"к вечеру", "до вечера", "kechqurungacha", "кечқурунгача", "by evening"}, 6 * time.Hour},
	{[]string{"к обеду", "до обеда", "tushlikkacha", "тушликкача", "by lunch"}, 4 * time.Hour},
	{[]string{"сегодня", "bugun", "бугун", "today"}, 4 * time.Hour},
	{[]string{"в ближайшее время", "скоро", "tez orada", "yaqin orada", "тез орада", "яқин орада", "in the near future", "soon"}, 2 * time.Hour},
}

// Words adjacent to a number that select the offset unit. Matching is by
// substring so declensions are covered ("минуты", "daqiqadan", "hours").
var (
	minuteUnits = []string{"минут", "мин", "daqiqa", "дақиқа", "minut", "minute"}
	hourUnits   = []string{"час", "soat", "соат", "hour"}
)

// resolveTimeframe parses hint with the ordered rule set described in the
// package comment.
func (r *Resolver) resolveTimeframe(hint string, ref time.Time) Result {
	h := strings.ToLower(strings.TrimSpace(hint))
	if h == "" {
		return Result{Deadline: ref.Add(r.actionWindow)}
	}

	// 1) Explicit numeric counts: "через 10 минут", "2 soat". The unit is
	// always taken from the literal unit word next to the number, never
	// inferred from magnitude.
	if n, unit, ok := numberWithUnit(h); ok {
		return Result{Deadline: ref.Add(time.Duration(n) * unit), Explicit: true}
	}

	// 2) Calendar phrases, most specific first.
	if containsAny(h, "послезавтра") {
		return Result{Deadline: ref.Add(48 * time.Hour), Explicit: true}
	}
	if containsAny(h, "завтра утром", "завтра с утра", "ertaga ertalab", "эртага эрталаб", "tomorrow morning") {
		return Result{Deadline: nextMorning(ref.In(r.loc)), Explicit: true}
	}
	if containsAny(h, "завтра", "ertaga", "эртага", "tomorrow") {
		return Result{Deadline: ref.Add(24 * time.Hour), Explicit: true}
	}

	// 3) Named offsets and catch-alls.
	for _, rule := range fixedOffsets {
		if containsAny(h, rule.phrases...) {
			return Result{Deadline: ref.Add(rule.offset), Explicit: true}
		}
	}

	// 4) Bare "morning": schedule within the day when it is still plausibly
	// ahead, otherwise the next morning. Never produce a past deadline.
	if containsAny(h, "утром", "с утра", "ertalab", "эрталаб", "morning") {
		local := ref.In(r.loc)
		if local.Hour() >= eveningCut {
			return Result{Deadline: nextMorning(local), Explicit: true}
		}
		midday := time.Date(local.Year(), local.Month(), local.Day(), middayHour, 0, 0, 0, r.loc)
		if !midday.After(ref) {
			return Result{Deadline: nextMorning(local), Explicit: true}
		}
		return Result{Deadline: midday, Explicit: true}
	}

	// 5) Unparseable: fall back to the action default.
	return Result{Deadline: ref.Add(r.actionWindow)}
}

// numberWithUnit extracts the first digit run in s and resolves the unit from
// the word that follows it (or, failing that, the word before it).
func numberWithUnit(s string) (int, time.Duration, bool) {
	fields := strings.Fields(s)
	for i, f := range fields {
		n, ok := atoiStrict(f)
		if !ok || n == 0 {
			continue
		}
		if i+1 < len(fields) {
			if u, ok := unitOf(fields[i+1]); ok {
				return n, u, true
			}
		}
		if i > 0 {
			if u, ok := unitOf(fields[i-1]); ok {
				return n, u, true
			}
		}
	}
	return 0, 0, false
}

// unitOf maps a token to a duration unit by substring, minutes before hours
// so that "минут" is not shadowed by the shorter "час"-style stems.
func unitOf(tok string) (time.Duration, bool) {
	for _, u := range minuteUnits {
		if strings.Contains(tok, u) {
			return time.Minute, true
		}
	}
	for _, u := range hourUnits {
		if strings.Contains(tok, u) {
			return time.Hour, true
		}
	}
	return 0, false
}

// nextMorning returns 09:00 on the calendar day after local, in its zone.
func nextMorning(local time.Time) time.Time {
	next := local.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), morningHour, 0, 0, 0, local.Location())
}

func containsAny(s string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func atoiStrict(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
		if n > 1<<20 {
			return 0, false
		}
	}
	return n, true
}
