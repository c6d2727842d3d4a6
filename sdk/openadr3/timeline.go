package openadr3

import (
	"fmt"
	"sort"
	"time"

	"openadr/internal/shared/logger"
	"openadr/internal/wire"
)

// endOfTime caps open-ended intervals so they still form a range.
var endOfTime = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// internalInterval is the value stored per timeline range. The source
// index distinguishes split fragments of the same event so a randomized
// start is applied once, not per fragment.
type internalInterval struct {
	source         int
	priority       wire.Priority
	randomizeStart *time.Duration
	payloads       []wire.ValuesMap
}

// Timeline is a sequence of ordered, non-overlapping intervals derived
// from the events of one program. At any instant the interval of the
// highest-priority event applies; lower-priority intervals are trimmed
// or split around it. Gaps are possible.
type Timeline struct {
	data rangeMap[internalInterval]
}

// Interval is one resolved slice of the timeline.
type Interval struct {
	Start time.Time
	End   time.Time
	// RandomizeStart is the randomization window a client may apply to
	// the start. Only the first fragment of a split interval carries it.
	RandomizeStart *time.Duration
	Payloads       []wire.ValuesMap
}

// NewTimeline composes the events of a program into a timeline. Events
// belonging to a different program are skipped with a warning, as are
// overlapping events of equal priority (the later one wins). An interval
// without a period, on itself or inherited from its event, is an error.
func NewTimeline(program *wire.Program, events []wire.Event, log logger.Interface) (*Timeline, error) {
	// Ascending by priority so the most important event is written last
	// and overwrites the rest.
	sorted := make([]wire.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority.Cmp(sorted[j].Priority) < 0
	})

	tl := &Timeline{}
	for source, event := range sorted {
		if event.ProgramID != program.ID {
			log.Warnw("skipping event from another program",
				"event_id", event.ID, "event_program_id", event.ProgramID, "program_id", program.ID)
			continue
		}

		defaultPeriod := event.IntervalPeriod

		// Without per-interval periods the intervals run back to back
		// from the event-level start.
		var currentStart *time.Time
		if defaultPeriod != nil {
			start := defaultPeriod.Start
			currentStart = &start
		}

		for _, eventInterval := range event.Intervals {
			var start time.Time
			var duration *wire.Duration
			var randomize *wire.Duration
			if p := eventInterval.IntervalPeriod; p != nil {
				start, duration, randomize = p.Start, p.Duration, p.RandomizeStart
			} else {
				if currentStart == nil || defaultPeriod == nil {
					return nil, fmt.Errorf("event %s interval %d has no interval period", event.ID, eventInterval.ID)
				}
				start, duration, randomize = *currentStart, defaultPeriod.Duration, defaultPeriod.RandomizeStart
			}

			end := endOfTime
			if duration != nil && !duration.IsMax() {
				end = start.Add(duration.ToTimeDurationAt(start))
			}
			next := end
			currentStart = &next

			interval := internalInterval{
				source:   source,
				priority: event.Priority,
				payloads: eventInterval.Payloads,
			}
			if randomize != nil {
				d := randomize.ToTimeDurationAt(start)
				interval.randomizeStart = &d
			}

			for _, existing := range tl.data.overlapping(start, end) {
				if existing.value.priority.Cmp(event.Priority) == 0 {
					log.Warnw("overlapping intervals with equal priority, the later event wins",
						"event_id", event.ID, "priority", event.Priority.String())
				}
			}

			tl.data.insert(start, end, interval)
		}
	}
	return tl, nil
}

// Intervals returns the resolved intervals in timeline order.
func (t *Timeline) Intervals() []Interval {
	seen := make(map[int]bool)
	out := make([]Interval, 0, len(t.data.spans))
	for _, s := range t.data.spans {
		interval := Interval{
			Start:    s.start,
			End:      s.end,
			Payloads: s.value.payloads,
		}
		if !seen[s.value.source] {
			seen[s.value.source] = true
			interval.RandomizeStart = s.value.randomizeStart
		}
		out = append(out, interval)
	}
	return out
}

// AtTime returns the interval applicable at the given instant.
func (t *Timeline) AtTime(at time.Time) (Interval, bool) {
	s, ok := t.data.get(at)
	if !ok {
		return Interval{}, false
	}
	return Interval{
		Start:          s.start,
		End:            s.end,
		RandomizeStart: s.value.randomizeStart,
		Payloads:       s.value.payloads,
	}, true
}

// NextUpdate returns when the timeline next changes after the given
// instant: the end of the current interval, or the start of the next one
// during a gap. ok is false once nothing changes anymore.
func (t *Timeline) NextUpdate(at time.Time) (time.Time, bool) {
	if s, ok := t.data.get(at); ok {
		return s.end, true
	}
	last, ok := t.data.last()
	if !ok {
		return time.Time{}, false
	}
	for _, s := range t.data.overlapping(at, last.end) {
		return s.start, true
	}
	return time.Time{}, false
}
