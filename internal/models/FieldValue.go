package models

import (
	"errors"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

type FieldKind uint8

const (
	KindString FieldKind = iota + 1
	KindNumber
	KindBool
)

var ErrUnsupportedValue = errors.New("unsupported field value")

// FieldValue is one scalar form answer: a string, a number or a boolean.
type FieldValue struct {
	kind FieldKind
	str  string
	num  float64
	b    bool
}

func StringValue(s string) FieldValue  { return FieldValue{kind: KindString, str: s} }
func NumberValue(n float64) FieldValue { return FieldValue{kind: KindNumber, num: n} }
func BoolValue(b bool) FieldValue      { return FieldValue{kind: KindBool, b: b} }

// FieldValueOf converts a decoded JSON scalar.
func FieldValueOf(v any) (FieldValue, error) {
	switch t := v.(type) {
	case string:
		return StringValue(t), nil
	case float64:
		return NumberValue(t), nil
	case float32:
		return NumberValue(float64(t)), nil
	case int:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return FieldValue{}, fmt.Errorf("%w: %q", ErrUnsupportedValue, t.String())
		}
		return NumberValue(f), nil
	case bool:
		return BoolValue(t), nil
	default:
		return FieldValue{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

func (v FieldValue) Kind() FieldKind { return v.kind }

func (v FieldValue) IsZero() bool { return v.kind == 0 }

// Blank reports an unset value, an empty string, zero or false.
func (v FieldValue) Blank() bool {
	switch v.kind {
	case KindString:
		return v.str == ""
	case KindNumber:
		return v.num == 0
	case KindBool:
		return !v.b
	}
	return true
}

// String renders the value the way it appears in CSV exports.
func (v FieldValue) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Interface returns the plain Go value stored in documents.
func (v FieldValue) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	default:
		return nil
	}
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fv, err := FieldValueOf(raw)
	if err != nil {
		return err
	}
	*v = fv
	return nil
}
