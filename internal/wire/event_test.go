package wire

import (
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityOrder(t *testing.T) {
	// 0 is the most important, unspecified ranks below everything.
	assert.Equal(t, 1, MaxPriority.Cmp(NewPriority(1)))
	assert.Equal(t, -1, NewPriority(5).Cmp(NewPriority(2)))
	assert.Equal(t, 0, NewPriority(7).Cmp(NewPriority(7)))
	assert.Equal(t, -1, UnspecifiedPriority.Cmp(NewPriority(4294967295)))
	assert.Equal(t, 1, NewPriority(4294967295).Cmp(UnspecifiedPriority))
	assert.Equal(t, 0, UnspecifiedPriority.Cmp(UnspecifiedPriority))
}

func TestPrioritySortAscending(t *testing.T) {
	ps := []Priority{NewPriority(1), UnspecifiedPriority, MaxPriority, NewPriority(10)}
	sort.Slice(ps, func(i, j int) bool { return ps[i].Cmp(ps[j]) < 0 })

	assert.True(t, ps[0].IsUnspecified())
	v, _ := ps[1].Value()
	assert.Equal(t, uint32(10), v)
	v, _ = ps[2].Value()
	assert.Equal(t, uint32(1), v)
	assert.Equal(t, MaxPriority, ps[3])
}

func TestPriorityJSON(t *testing.T) {
	raw, err := json.Marshal(NewPriority(3))
	require.NoError(t, err)
	assert.Equal(t, "3", string(raw))

	raw, err = json.Marshal(UnspecifiedPriority)
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))

	var p Priority
	require.NoError(t, json.Unmarshal([]byte("null"), &p))
	assert.True(t, p.IsUnspecified())

	require.NoError(t, json.Unmarshal([]byte("0"), &p))
	assert.Equal(t, MaxPriority, p)

	assert.Error(t, json.Unmarshal([]byte("-1"), &p))
}

func TestEventRequestValidate(t *testing.T) {
	valid := EventRequest{
		ProgramID: "program-1",
		Intervals: []EventInterval{
			{ID: 0, Payloads: []ValuesMap{{Type: ValueTypeSimple, Values: []Value{IntegerValue(1)}}}},
		},
	}
	assert.NoError(t, valid.Validate())

	noIntervals := valid
	noIntervals.Intervals = nil
	assert.Error(t, noIntervals.Validate())

	emptyPayloads := valid
	emptyPayloads.Intervals = []EventInterval{{ID: 0}}
	assert.Error(t, emptyPayloads.Validate())

	badName := valid
	name := ""
	badName.EventName = &name
	assert.Error(t, badName.Validate())

	wrongTag := valid
	wrongTag.ObjectType = "PROGRAM"
	assert.Error(t, wrongTag.Validate())
}

func TestEventJSONShape(t *testing.T) {
	e := Event{
		ID:                   "event-1",
		CreatedDateTime:      time.Date(2023, 6, 15, 9, 30, 0, 0, time.UTC),
		ModificationDateTime: time.Date(2023, 6, 15, 9, 30, 0, 0, time.UTC),
		EventRequest: EventRequest{
			ProgramID: "program-1",
			Priority:  NewPriority(1),
			Intervals: []EventInterval{
				{ID: 0, Payloads: []ValuesMap{{Type: ValueTypePrice, Values: []Value{NumberValue(0.17)}}}},
			},
		},
	}.WithObjectType()

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "EVENT", m["objectType"])
	assert.Equal(t, "event-1", m["id"])
	assert.Equal(t, "2023-06-15T09:30:00Z", m["createdDateTime"])
	assert.Equal(t, float64(1), m["priority"])
	assert.NotContains(t, m, "eventName")
}
