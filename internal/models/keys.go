package models

import (
	"strconv"
	"strings"
)

const (
	matchLabelPrefix = "match"
	slotKeyPrefix    = "submission"

	// PitSubmissionsField holds the slot map inside a pit document.
	PitSubmissionsField = "pitscout"
)

func MatchLabel(matchNumber string) string {
	return matchLabelPrefix + matchNumber
}

// ParseMatchLabel extracts N from "match{N}".
func ParseMatchLabel(label string) (string, bool) {
	n, ok := strings.CutPrefix(label, matchLabelPrefix)
	if !ok || n == "" {
		return "", false
	}
	return n, true
}

func SlotKey(unixMillis int64) string {
	return slotKeyPrefix + strconv.FormatInt(unixMillis, 10)
}

// SlotTime returns the creation time encoded in a slot key.
func SlotTime(slot string) (int64, bool) {
	n, ok := strings.CutPrefix(slot, slotKeyPrefix)
	if !ok {
		return 0, false
	}
	ms, err := strconv.ParseInt(n, 10, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}

const leaseKeySeparator = "_"

var (
	leaseKeyEscaper   = strings.NewReplacer("%", "%25", leaseKeySeparator, "%5F")
	leaseKeyUnescaper = strings.NewReplacer("%5F", leaseKeySeparator, "%25", "%")
)

// LeaseKey is the document key of the claim for (team, match). Each part
// has '%' and '_' escaped, so the single separator splits it back apart.
func LeaseKey(team, match string) string {
	return leaseKeyEscaper.Replace(team) + leaseKeySeparator + leaseKeyEscaper.Replace(match)
}

// ParseLeaseKey reverses LeaseKey.
func ParseLeaseKey(key string) (team, match string, ok bool) {
	rawTeam, rawMatch, ok := strings.Cut(key, leaseKeySeparator)
	if !ok || strings.Contains(rawMatch, leaseKeySeparator) {
		return "", "", false
	}
	return leaseKeyUnescaper.Replace(rawTeam), leaseKeyUnescaper.Replace(rawMatch), true
}

// CompareNumeric orders numeric strings by value, numeric before
// non-numeric, and falls back to lexicographic order.
func CompareNumeric(a, b string) int {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
	case aerr == nil:
		return -1
	case berr == nil:
		return 1
	}
	return strings.Compare(a, b)
}
