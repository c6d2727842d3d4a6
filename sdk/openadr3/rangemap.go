package openadr3

import (
	"sort"
	"time"
)

// span is one half-open [start, end) range with its value.
type span[V any] struct {
	start time.Time
	end   time.Time
	value V
}

// rangeMap stores non-overlapping half-open time ranges in order.
// Inserting a range overwrites whatever part of existing ranges it
// covers; partially covered ranges are trimmed or split.
type rangeMap[V any] struct {
	spans []span[V]
}

func (m *rangeMap[V]) insert(start, end time.Time, value V) {
	if !start.Before(end) {
		return
	}

	var kept []span[V]
	for _, s := range m.spans {
		if !s.end.After(start) || !s.start.Before(end) {
			kept = append(kept, s)
			continue
		}
		// Overlap: keep the pieces outside [start, end).
		if s.start.Before(start) {
			kept = append(kept, span[V]{start: s.start, end: start, value: s.value})
		}
		if s.end.After(end) {
			kept = append(kept, span[V]{start: end, end: s.end, value: s.value})
		}
	}
	kept = append(kept, span[V]{start: start, end: end, value: value})
	sort.Slice(kept, func(i, j int) bool { return kept[i].start.Before(kept[j].start) })
	m.spans = kept
}

// overlapping returns the spans intersecting [start, end) in order.
func (m *rangeMap[V]) overlapping(start, end time.Time) []span[V] {
	var out []span[V]
	for _, s := range m.spans {
		if s.end.After(start) && s.start.Before(end) {
			out = append(out, s)
		}
	}
	return out
}

// get returns the span covering t.
func (m *rangeMap[V]) get(t time.Time) (span[V], bool) {
	for _, s := range m.spans {
		if !s.start.After(t) && s.end.After(t) {
			return s, true
		}
	}
	return span[V]{}, false
}

// last returns the final span.
func (m *rangeMap[V]) last() (span[V], bool) {
	if len(m.spans) == 0 {
		return span[V]{}, false
	}
	return m.spans[len(m.spans)-1], true
}
