package openadr3

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openadr/internal/shared/logger"
	"openadr/internal/wire"
)

var epoch = time.Unix(0, 0).UTC()

func hoursAt(h int) time.Time {
	return epoch.Add(time.Duration(h) * time.Hour)
}

func testProgram() *wire.Program {
	return &wire.Program{
		ID: "test-program-id",
		ProgramRequest: wire.ProgramRequest{
			ProgramName: "p",
		},
	}
}

func priceInterval(startHour, endHour int, value int64) wire.EventInterval {
	d := wire.Hours(endHour - startHour)
	return wire.EventInterval{
		ID: int32(startHour),
		IntervalPeriod: &wire.IntervalPeriod{
			Start:    hoursAt(startHour),
			Duration: &d,
		},
		Payloads: []wire.ValuesMap{{
			Type:   wire.ValueTypePrice,
			Values: []wire.Value{wire.IntegerValue(value)},
		}},
	}
}

func priceEvent(startHour, endHour int, value int64, priority wire.Priority) wire.Event {
	return wire.Event{
		ID: wire.Identifier("event"),
		EventRequest: wire.EventRequest{
			ProgramID: "test-program-id",
			Priority:  priority,
			Intervals: []wire.EventInterval{priceInterval(startHour, endHour, value)},
		},
	}
}

func intervalValue(t *testing.T, iv Interval) int64 {
	t.Helper()
	require.Len(t, iv.Payloads, 1)
	require.Len(t, iv.Payloads[0].Values, 1)
	v, ok := iv.Payloads[0].Values[0].AsInteger()
	require.True(t, ok)
	return v
}

func assertInterval(t *testing.T, iv Interval, startHour, endHour int, value int64) {
	t.Helper()
	assert.Equal(t, hoursAt(startHour), iv.Start)
	assert.Equal(t, hoursAt(endHour), iv.End)
	assert.Equal(t, value, intervalValue(t, iv))
}

// The protocol leaves overlapping equal-priority events unspecified.
// Here the event supplied later wins the contested range.
func TestTimelineOverlapSamePriority(t *testing.T) {
	program := testProgram()
	log := logger.NewLogger()

	event1 := priceEvent(0, 10, 42, wire.UnspecifiedPriority)
	event2 := priceEvent(5, 15, 43, wire.UnspecifiedPriority)

	tl, err := NewTimeline(program, []wire.Event{event1, event2}, log)
	require.NoError(t, err)
	intervals := tl.Intervals()
	require.Len(t, intervals, 2)
	assertInterval(t, intervals[0], 0, 5, 42)
	assertInterval(t, intervals[1], 5, 15, 43)

	tl, err = NewTimeline(program, []wire.Event{event2, event1}, log)
	require.NoError(t, err)
	intervals = tl.Intervals()
	require.Len(t, intervals, 2)
	assertInterval(t, intervals[0], 0, 10, 42)
	assertInterval(t, intervals[1], 10, 15, 43)
}

func TestTimelineOverlapLowerPriority(t *testing.T) {
	program := testProgram()
	log := logger.NewLogger()

	high := priceEvent(0, 10, 42, wire.NewPriority(1))
	low := priceEvent(5, 15, 43, wire.NewPriority(2))

	for _, order := range [][]wire.Event{{high, low}, {low, high}} {
		tl, err := NewTimeline(program, order, log)
		require.NoError(t, err)
		intervals := tl.Intervals()
		require.Len(t, intervals, 2)
		assertInterval(t, intervals[0], 0, 10, 42)
		assertInterval(t, intervals[1], 10, 15, 43)
	}
}

func TestTimelineOverlapHigherPriority(t *testing.T) {
	program := testProgram()
	log := logger.NewLogger()

	low := priceEvent(0, 10, 42, wire.NewPriority(2))
	high := priceEvent(5, 15, 43, wire.NewPriority(1))

	for _, order := range [][]wire.Event{{low, high}, {high, low}} {
		tl, err := NewTimeline(program, order, log)
		require.NoError(t, err)
		intervals := tl.Intervals()
		require.Len(t, intervals, 2)
		assertInterval(t, intervals[0], 0, 5, 42)
		assertInterval(t, intervals[1], 5, 15, 43)
	}
}

// Intervals without their own period inherit the event-level period and
// run back to back.
func TestTimelineDefaultIntervalPeriod(t *testing.T) {
	program := testProgram()
	log := logger.NewLogger()

	d := wire.Hours(5)
	event := wire.Event{
		ID: "event-1",
		EventRequest: wire.EventRequest{
			ProgramID: "test-program-id",
			IntervalPeriod: &wire.IntervalPeriod{
				Start:    epoch,
				Duration: &d,
			},
			Intervals: []wire.EventInterval{
				{ID: 0, Payloads: []wire.ValuesMap{{Type: wire.ValueTypePrice, Values: []wire.Value{wire.NumberValue(1.23)}}}},
				{ID: 1, Payloads: []wire.ValuesMap{{Type: wire.ValueTypeSimple, Values: []wire.Value{wire.NumberValue(2.34)}}}},
			},
		},
	}

	tl, err := NewTimeline(program, []wire.Event{event}, log)
	require.NoError(t, err)

	iv, ok := tl.AtTime(hoursAt(2))
	require.True(t, ok)
	assert.Equal(t, wire.ValueTypePrice, iv.Payloads[0].Type)

	iv, ok = tl.AtTime(hoursAt(8))
	require.True(t, ok)
	assert.Equal(t, wire.ValueTypeSimple, iv.Payloads[0].Type)

	_, ok = tl.AtTime(hoursAt(11))
	assert.False(t, ok)
}

func TestTimelineMissingPeriodIsError(t *testing.T) {
	program := testProgram()
	event := wire.Event{
		ID: "event-1",
		EventRequest: wire.EventRequest{
			ProgramID: "test-program-id",
			Intervals: []wire.EventInterval{
				{ID: 0, Payloads: []wire.ValuesMap{{Type: wire.ValueTypeSimple, Values: []wire.Value{wire.IntegerValue(1)}}}},
			},
		},
	}

	_, err := NewTimeline(program, []wire.Event{event}, logger.NewLogger())
	assert.Error(t, err)
}

func TestTimelineSkipsForeignEvents(t *testing.T) {
	program := testProgram()
	event := priceEvent(0, 5, 42, wire.UnspecifiedPriority)
	event.ProgramID = "another-program"

	tl, err := NewTimeline(program, []wire.Event{event}, logger.NewLogger())
	require.NoError(t, err)
	assert.Empty(t, tl.Intervals())
}

// When a split interval is iterated, only its first fragment keeps the
// randomization window.
func TestTimelineRandomizeStartNotDuplicated(t *testing.T) {
	program := testProgram()
	log := logger.NewLogger()

	interrupting := priceEvent(5, 10, 42, wire.MaxPriority)

	d := wire.Hours(15)
	randomize := wire.Hours(5)
	background := wire.Event{
		ID: "background",
		EventRequest: wire.EventRequest{
			ProgramID: "test-program-id",
			Intervals: []wire.EventInterval{{
				ID: 0,
				IntervalPeriod: &wire.IntervalPeriod{
					Start:          epoch,
					Duration:       &d,
					RandomizeStart: &randomize,
				},
				Payloads: []wire.ValuesMap{{Type: wire.ValueTypePrice, Values: []wire.Value{wire.IntegerValue(43)}}},
			}},
		},
	}

	tl, err := NewTimeline(program, []wire.Event{interrupting, background}, log)
	require.NoError(t, err)

	intervals := tl.Intervals()
	require.Len(t, intervals, 3)

	assertInterval(t, intervals[0], 0, 5, 43)
	require.NotNil(t, intervals[0].RandomizeStart)
	assert.Equal(t, 5*time.Hour, *intervals[0].RandomizeStart)

	assertInterval(t, intervals[1], 5, 10, 42)
	assert.Nil(t, intervals[1].RandomizeStart)

	assertInterval(t, intervals[2], 10, 15, 43)
	assert.Nil(t, intervals[2].RandomizeStart)
}

func TestTimelineNextUpdate(t *testing.T) {
	program := testProgram()
	log := logger.NewLogger()

	tl, err := NewTimeline(program, []wire.Event{
		priceEvent(8, 10, 1, wire.UnspecifiedPriority),
		priceEvent(10, 11, 2, wire.UnspecifiedPriority),
		priceEvent(12, 14, 3, wire.UnspecifiedPriority),
	}, log)
	require.NoError(t, err)

	next, ok := tl.NextUpdate(hoursAt(9))
	require.True(t, ok)
	assert.Equal(t, hoursAt(10), next)

	// In the gap the next change is the start of the following interval.
	next, ok = tl.NextUpdate(hoursAt(11))
	require.True(t, ok)
	assert.Equal(t, hoursAt(12), next)

	_, ok = tl.NextUpdate(hoursAt(14))
	assert.False(t, ok)

	_, ok = tl.NextUpdate(hoursAt(15))
	assert.False(t, ok)
}
