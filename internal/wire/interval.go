package wire

import (
	"fmt"
	"time"
)

// IntervalPeriod places a duration on the timeline: a start instant, an
// optional length, and an optional randomization window clients may apply
// to the start. A missing duration means the interval is open-ended.
type IntervalPeriod struct {
	Start          time.Time `json:"start"`
	Duration       *Duration `json:"duration,omitempty"`
	RandomizeStart *Duration `json:"randomizeStart,omitempty"`
}

// EndAt returns the exclusive end of the period. Open-ended periods and
// the forever sentinel report ok=false.
func (p IntervalPeriod) EndAt() (time.Time, bool) {
	if p.Duration == nil || p.Duration.IsMax() {
		return time.Time{}, false
	}
	return p.Start.Add(p.Duration.ToTimeDurationAt(p.Start)), true
}

// EventInterval is one slice of an event: payload values applying over a
// period. The period may be given per interval or inherited from the
// event level.
type EventInterval struct {
	ID             int32            `json:"id"`
	IntervalPeriod *IntervalPeriod  `json:"intervalPeriod,omitempty"`
	Payloads       []ValuesMap      `json:"payloads"`
}

// Validate checks the interval payloads.
func (i EventInterval) Validate() error {
	if len(i.Payloads) == 0 {
		return fmt.Errorf("interval %d: payloads must not be empty", i.ID)
	}
	return ValidateValuesMaps("payloads", i.Payloads)
}
