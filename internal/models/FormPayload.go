package models

import (
	"fmt"
	"sort"
)

const SubmissionTimestampField = "submissionTimestamp"

// FormPayload is the open set of answers one scout gave on one form.
type FormPayload map[string]FieldValue

// DecodeForm turns a decoded JSON object into a payload. Nested objects are
// flattened into dotted keys and nulls are dropped. Arrays are rejected.
func DecodeForm(raw map[string]any) (FormPayload, error) {
	out := make(FormPayload, len(raw))
	if err := flattenInto(out, "", raw); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenInto(out FormPayload, prefix string, raw map[string]any) error {
	for k, v := range raw {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch t := v.(type) {
		case nil:
			continue
		case map[string]any:
			if err := flattenInto(out, key, t); err != nil {
				return err
			}
		default:
			fv, err := FieldValueOf(t)
			if err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			out[key] = fv
		}
	}
	return nil
}

// PayloadFromMap reads a stored payload. Non-scalar entries are skipped.
func PayloadFromMap(m map[string]any) FormPayload {
	out := make(FormPayload, len(m))
	for k, v := range m {
		fv, err := FieldValueOf(v)
		if err != nil {
			continue
		}
		out[k] = fv
	}
	return out
}

// With returns a copy of p with key set to v.
func (p FormPayload) With(key string, v FieldValue) FormPayload {
	out := make(FormPayload, len(p)+1)
	for k, val := range p {
		out[k] = val
	}
	out[key] = v
	return out
}

// WithTimestamp returns a copy of p with submissionTimestamp set to ts.
func (p FormPayload) WithTimestamp(ts string) FormPayload {
	return p.With(SubmissionTimestampField, StringValue(ts))
}

func (p FormPayload) ToMap() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v.Interface()
	}
	return out
}

func (p FormPayload) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p FormPayload) Get(key string) (FieldValue, bool) {
	v, ok := p[key]
	return v, ok
}
