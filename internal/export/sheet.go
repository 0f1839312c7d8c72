// Package export renders flattened scouting records as CSV sheets with a
// fixed column layout.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"scoutd/internal/models"
)

var ErrNoRecords = errors.New("no records to export")

// Column is one CSV column. Field is looked up on the record (identifiers
// first, then form fields); Default is written when the value is missing
// or empty, zero or false.
type Column struct {
	Header  string
	Field   string
	Default string
}

type Sheet struct {
	Kind     string
	Filename string
	Columns  []Column
}

func col(name, def string) Column {
	return Column{Header: name, Field: name, Default: def}
}

func nested(header, field, def string) Column {
	return Column{Header: header, Field: field, Default: def}
}

var MatchSheet = Sheet{
	Kind:     models.ScoutTypeMatch,
	Filename: "matchscout_data.csv",
	Columns: []Column{
		col("teamNumber", ""),
		col("matchNumber", ""),
		col("username", ""),
		col(models.SubmissionTimestampField, ""),
		col("autoL1Scores", "0"),
		col("autoL2Scores", "0"),
		col("autoL3Scores", "0"),
		col("autoL4Scores", "0"),
		col("autoL1Attempts", "0"),
		col("autoL2Attempts", "0"),
		col("autoL3Attempts", "0"),
		col("autoL4Attempts", "0"),
		col("autoProcessorAlgaeScores", "0"),
		col("autoProcessorAlgaeAttempts", "0"),
		col("autoNetAlgaeScores", "0"),
		col("autoNetAlgaeAttempts", "0"),
		col("leftStartingZone", "No"),
		col("teleopL1Scores", "0"),
		col("teleopL2Scores", "0"),
		col("teleopL3Scores", "0"),
		col("teleopL4Scores", "0"),
		col("teleopL1Attempts", "0"),
		col("teleopL2Attempts", "0"),
		col("teleopL3Attempts", "0"),
		col("teleopL4Attempts", "0"),
		col("teleopProcessorAlgaeScores", "0"),
		col("teleopProcessorAlgaeAttempts", "0"),
		col("teleopNetAlgaeScores", "0"),
		col("teleopNetAlgaeAttempts", "0"),
		col("climbLevel", "None"),
		col("climbSuccess", "No"),
		col("climbAttemptTime", "None"),
		col("climbComments", ""),
		col("robotSpeed", "None"),
		col("generalComments", ""),
	},
}

var PitSheet = Sheet{
	Kind:     models.ScoutTypePit,
	Filename: "pitscout_data.csv",
	Columns: []Column{
		col("teamNumber", ""),
		col("username", ""),
		col(models.SubmissionTimestampField, ""),
		col("robotWeight", ""),
		col("frameSize", ""),
		col("drivetrain", ""),
		col("auto", ""),
		nested("autoProcessor", "scoringPositions.processor", "false"),
		nested("autoNet", "scoringPositions.net", "false"),
		nested("autoL1", "scoringPositions.l1", "false"),
		nested("autoL2", "scoringPositions.l2", "false"),
		nested("autoL3", "scoringPositions.l3", "false"),
		nested("autoL4", "scoringPositions.l4", "false"),
		col("autoNotesScored", ""),
		nested("teleopProcessor", "scoringPositionsTeleop.processorTeleop", "false"),
		nested("teleopNet", "scoringPositionsTeleop.netTeleop", "false"),
		nested("teleopL1", "scoringPositionsTeleop.l1Teleop", "false"),
		nested("teleopL2", "scoringPositionsTeleop.l2Teleop", "false"),
		nested("teleopL3", "scoringPositionsTeleop.l3Teleop", "false"),
		nested("teleopL4", "scoringPositionsTeleop.l4Teleop", "false"),
		col("estimatedCycleTime", ""),
		col("pickupFromFloor", ""),
		col("climb", ""),
		col("climbTime", ""),
		col("additionalComments", ""),
	},
}

// SheetFor resolves "matchscout" or "pitscout".
func SheetFor(kind string) (Sheet, bool) {
	switch kind {
	case MatchSheet.Kind:
		return MatchSheet, true
	case PitSheet.Kind:
		return PitSheet, true
	}
	return Sheet{}, false
}

func (s Sheet) Headers() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Header
	}
	return out
}

func (s Sheet) row(r models.ScoutRecord) []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		v, ok := r.Value(c.Field)
		if !ok || v.Blank() {
			out[i] = c.Default
			continue
		}
		out[i] = v.String()
	}
	return out
}

// Write emits a header row followed by one row per record, in the order
// given. ErrNoRecords is returned, and nothing written, when records is
// empty.
func (s Sheet) Write(w io.Writer, records []models.ScoutRecord) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Headers()); err != nil {
		return fmt.Errorf("write %s header: %w", s.Kind, err)
	}
	for _, r := range records {
		if err := cw.Write(s.row(r)); err != nil {
			return fmt.Errorf("write %s row team=%s: %w", s.Kind, r.TeamNumber, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s Sheet) Encode(records []models.ScoutRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Write(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
