package models

import (
	"bytes"

	json "github.com/goccy/go-json"
)

const (
	ScoutTypeMatch = "matchscout"
	ScoutTypePit   = "pitscout"
)

// ScoutRecord is one flattened submission: a single (team, match or slot,
// submitter) triple with its answers spread at the top level when encoded.
type ScoutRecord struct {
	TeamNumber    string
	MatchNumber   string
	SubmissionKey string
	Username      string
	ScoutType     string
	Fields        FormPayload
}

var reservedRecordKeys = map[string]struct{}{
	"teamNumber":    {},
	"matchNumber":   {},
	"submissionKey": {},
	"username":      {},
	"scoutType":     {},
}

// Tagged returns a copy of r carrying scoutType.
func (r ScoutRecord) Tagged(scoutType string) ScoutRecord {
	r.ScoutType = scoutType
	return r
}

// Value resolves a column name against identifiers first, then fields.
func (r ScoutRecord) Value(column string) (FieldValue, bool) {
	switch column {
	case "teamNumber":
		return StringValue(r.TeamNumber), true
	case "matchNumber":
		return StringValue(r.MatchNumber), r.MatchNumber != ""
	case "submissionKey":
		return StringValue(r.SubmissionKey), r.SubmissionKey != ""
	case "username":
		return StringValue(r.Username), true
	case "scoutType":
		return StringValue(r.ScoutType), r.ScoutType != ""
	}
	return r.Fields.Get(column)
}

// MarshalJSON writes identifiers first, then form fields in key order.
// A form field never shadows an identifier.
func (r ScoutRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string, value any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	if err := write("teamNumber", r.TeamNumber); err != nil {
		return nil, err
	}
	if r.MatchNumber != "" {
		if err := write("matchNumber", r.MatchNumber); err != nil {
			return nil, err
		}
	}
	if r.SubmissionKey != "" {
		if err := write("submissionKey", r.SubmissionKey); err != nil {
			return nil, err
		}
	}
	if err := write("username", r.Username); err != nil {
		return nil, err
	}
	if r.ScoutType != "" {
		if err := write("scoutType", r.ScoutType); err != nil {
			return nil, err
		}
	}
	for _, key := range r.Fields.Keys() {
		if _, reserved := reservedRecordKeys[key]; reserved {
			continue
		}
		if err := write(key, r.Fields[key]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Instances is the combined pit + match view.
type Instances struct {
	PitScoutInstances   []ScoutRecord `json:"pitScoutInstances"`
	MatchScoutInstances []ScoutRecord `json:"matchScoutInstances"`
}
