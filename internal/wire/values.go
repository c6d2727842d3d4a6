package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ValueType names the semantics of the values in a ValuesMap. A handful
// of types are defined by the protocol; anything else is treated as a
// private extension and passes validation unchecked.
type ValueType string

const (
	ValueTypeSimple        ValueType = "SIMPLE"
	ValueTypePrice         ValueType = "PRICE"
	ValueTypeCurve         ValueType = "CURVE"
	ValueTypeGreenhouseGas ValueType = "GHG"
	ValueTypeImportCap     ValueType = "IMPORT_CAPACITY_SUBSCRIPTION"
	ValueTypeUsage         ValueType = "USAGE"
)

type valueKind int

const (
	valueInteger valueKind = iota
	valueNumber
	valueBoolean
	valuePoint
	valueString
)

// Point is an x/y coordinate used by CURVE payloads.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Value is one element of a ValuesMap. On the wire it is an untagged
// union: a JSON integer, number, boolean, point object, or string.
type Value struct {
	kind    valueKind
	integer int64
	number  float64
	boolean bool
	point   Point
	str     string
}

// IntegerValue returns a Value holding a whole number.
func IntegerValue(v int64) Value {
	return Value{kind: valueInteger, integer: v}
}

// NumberValue returns a Value holding a floating point number.
func NumberValue(v float64) Value {
	return Value{kind: valueNumber, number: v}
}

// BoolValue returns a Value holding a boolean.
func BoolValue(v bool) Value {
	return Value{kind: valueBoolean, boolean: v}
}

// PointValue returns a Value holding an x/y point.
func PointValue(x, y float64) Value {
	return Value{kind: valuePoint, point: Point{X: x, Y: y}}
}

// StringValue returns a Value holding a string.
func StringValue(v string) Value {
	return Value{kind: valueString, str: v}
}

// AsInteger returns the integer payload, if the value holds one.
func (v Value) AsInteger() (int64, bool) {
	return v.integer, v.kind == valueInteger
}

// AsNumber returns the value as a float64. Integer values convert.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case valueNumber:
		return v.number, true
	case valueInteger:
		return float64(v.integer), true
	default:
		return 0, false
	}
}

// AsBool returns the boolean payload, if the value holds one.
func (v Value) AsBool() (bool, bool) {
	return v.boolean, v.kind == valueBoolean
}

// AsPoint returns the point payload, if the value holds one.
func (v Value) AsPoint() (Point, bool) {
	return v.point, v.kind == valuePoint
}

// AsString returns the string payload, if the value holds one.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == valueString
}

// Equal reports whether two values hold the same kind and payload.
func (v Value) Equal(o Value) bool {
	return v == o
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case valueInteger:
		return json.Marshal(v.integer)
	case valueNumber:
		return json.Marshal(v.number)
	case valueBoolean:
		return json.Marshal(v.boolean)
	case valuePoint:
		return json.Marshal(v.point)
	case valueString:
		return json.Marshal(v.str)
	}
	return nil, fmt.Errorf("unknown value kind %d", v.kind)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty value")
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
		return nil
	case '{':
		var p Point
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("value object must be a point with x and y: %w", err)
		}
		*v = PointValue(p.X, p.Y)
		return nil
	default:
		// Numbers without a fraction or exponent are kept as integers so
		// SIMPLE payload validation can distinguish 1 from 1.5.
		if !bytes.ContainsAny(trimmed, ".eE") {
			var i int64
			if err := json.Unmarshal(trimmed, &i); err == nil {
				*v = IntegerValue(i)
				return nil
			}
		}
		var f float64
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return fmt.Errorf("invalid value %s", string(trimmed))
		}
		*v = NumberValue(f)
		return nil
	}
}

// ValuesMap is a typed list of values, the building block of payloads,
// attributes and report data across all OpenADR objects.
type ValuesMap struct {
	Type   ValueType `json:"type"`
	Values []Value   `json:"values"`
}

// Validate enforces the per-type value constraints: SIMPLE values are
// integers, PRICE values are numbers, CURVE values are points. Types not
// defined by the protocol accept any values.
func (m ValuesMap) Validate() error {
	if len(m.Type) < 1 || len(m.Type) > 128 {
		return fmt.Errorf("values map type must be 1-128 characters, got %d", len(m.Type))
	}
	switch m.Type {
	case ValueTypeSimple:
		for _, v := range m.Values {
			if _, ok := v.AsInteger(); !ok {
				return fmt.Errorf("SIMPLE payload values must be integers")
			}
		}
	case ValueTypePrice:
		for _, v := range m.Values {
			if _, ok := v.AsNumber(); !ok {
				return fmt.Errorf("PRICE payload values must be numbers")
			}
		}
	case ValueTypeCurve:
		for _, v := range m.Values {
			if _, ok := v.AsPoint(); !ok {
				return fmt.Errorf("CURVE payload values must be points")
			}
		}
	}
	return nil
}

// ValidateValuesMaps validates each entry of a values map list.
func ValidateValuesMaps(field string, maps []ValuesMap) error {
	for i, m := range maps {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("%s[%d]: %w", field, i, err)
		}
	}
	return nil
}

// FindValues returns the values of the first map with the given type.
func FindValues(maps []ValuesMap, t ValueType) ([]Value, bool) {
	for _, m := range maps {
		if strings.EqualFold(string(m.Type), string(t)) {
			return m.Values, true
		}
	}
	return nil, false
}
