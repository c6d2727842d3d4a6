package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueUnmarshalKinds(t *testing.T) {
	var v Value

	require.NoError(t, json.Unmarshal([]byte("42"), &v))
	i, ok := v.AsInteger()
	require.True(t, ok)
	assert.Equal(t, int64(42), i)

	require.NoError(t, json.Unmarshal([]byte("0.17"), &v))
	f, ok := v.AsNumber()
	require.True(t, ok)
	assert.Equal(t, 0.17, f)

	require.NoError(t, json.Unmarshal([]byte("1e3"), &v))
	_, isInt := v.AsInteger()
	assert.False(t, isInt)

	require.NoError(t, json.Unmarshal([]byte("true"), &v))
	b, ok := v.AsBool()
	require.True(t, ok)
	assert.True(t, b)

	require.NoError(t, json.Unmarshal([]byte(`"peak"`), &v))
	s, ok := v.AsString()
	require.True(t, ok)
	assert.Equal(t, "peak", s)

	require.NoError(t, json.Unmarshal([]byte(`{"x":1,"y":2.5}`), &v))
	p, ok := v.AsPoint()
	require.True(t, ok)
	assert.Equal(t, Point{X: 1, Y: 2.5}, p)

	assert.Error(t, json.Unmarshal([]byte(`{"x":1,"z":2}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &v))
}

func TestValueMarshalRoundTrip(t *testing.T) {
	values := []Value{
		IntegerValue(7),
		NumberValue(1.5),
		BoolValue(false),
		StringValue("x"),
		PointValue(0, -1),
	}
	raw, err := json.Marshal(values)
	require.NoError(t, err)
	assert.JSONEq(t, `[7,1.5,false,"x",{"x":0,"y":-1}]`, string(raw))

	var back []Value
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, values, back)
}

func TestValuesMapValidate(t *testing.T) {
	ok := []ValuesMap{
		{Type: ValueTypeSimple, Values: []Value{IntegerValue(1), IntegerValue(2)}},
		{Type: ValueTypePrice, Values: []Value{NumberValue(0.17), IntegerValue(1)}},
		{Type: ValueTypeCurve, Values: []Value{PointValue(0, 0), PointValue(1, 2)}},
		{Type: "X-CUSTOM", Values: []Value{StringValue("anything"), BoolValue(true)}},
	}
	for _, m := range ok {
		assert.NoError(t, m.Validate(), string(m.Type))
	}

	bad := []ValuesMap{
		{Type: ValueTypeSimple, Values: []Value{NumberValue(1.5)}},
		{Type: ValueTypePrice, Values: []Value{StringValue("cheap")}},
		{Type: ValueTypeCurve, Values: []Value{NumberValue(1)}},
		{Type: "", Values: nil},
	}
	for _, m := range bad {
		assert.Error(t, m.Validate(), string(m.Type))
	}
}

func TestFindValues(t *testing.T) {
	maps := []ValuesMap{
		{Type: ValueTypeSimple, Values: []Value{IntegerValue(1)}},
		{Type: ValueTypePrice, Values: []Value{NumberValue(0.3)}},
	}
	vals, ok := FindValues(maps, ValueTypePrice)
	require.True(t, ok)
	assert.Len(t, vals, 1)

	_, ok = FindValues(maps, ValueTypeCurve)
	assert.False(t, ok)
}
