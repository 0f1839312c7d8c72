package models

import "time"

type ClaimStatus string

const (
	StatusUnclaimed ClaimStatus = "unclaimed"
	StatusClaimed   ClaimStatus = "claimed"
)

// ClaimLease marks which scout, if any, is scouting a team in a match.
// Holder and ClaimedAt are set if and only if Status is claimed.
type ClaimLease struct {
	TeamNumber  string      `json:"teamNumber"`
	MatchNumber string      `json:"matchNumber"`
	Status      ClaimStatus `json:"status"`
	Holder      string      `json:"holder,omitempty"`
	ClaimedAt   *time.Time  `json:"claimedAt,omitempty"`
}

func UnclaimedLease(team, match string) ClaimLease {
	return ClaimLease{TeamNumber: team, MatchNumber: match, Status: StatusUnclaimed}
}

func (l ClaimLease) IsClaimed() bool {
	return l.Status == StatusClaimed
}

// Claim returns the lease held by holder since at.
func (l ClaimLease) Claim(holder string, at time.Time) ClaimLease {
	at = at.UTC()
	l.Status = StatusClaimed
	l.Holder = holder
	l.ClaimedAt = &at
	return l
}

// Release returns the lease back in the unclaimed state.
func (l ClaimLease) Release() ClaimLease {
	l.Status = StatusUnclaimed
	l.Holder = ""
	l.ClaimedAt = nil
	return l
}

func (l ClaimLease) ToMap() map[string]any {
	m := map[string]any{
		"teamNumber":  l.TeamNumber,
		"matchNumber": l.MatchNumber,
		"status":      string(l.Status),
	}
	if l.IsClaimed() {
		m["holder"] = l.Holder
		if l.ClaimedAt != nil {
			m["claimedAt"] = l.ClaimedAt.Format(time.RFC3339Nano)
		}
	}
	return m
}

// LeaseFromMap reads a stored lease. Anything other than a claimed lease
// with a holder is treated as unclaimed.
func LeaseFromMap(team, match string, m map[string]any) ClaimLease {
	lease := UnclaimedLease(team, match)
	status, _ := m["status"].(string)
	holder, _ := m["holder"].(string)
	if ClaimStatus(status) != StatusClaimed || holder == "" {
		return lease
	}
	lease.Status = StatusClaimed
	lease.Holder = holder
	if raw, ok := m["claimedAt"].(string); ok {
		if at, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			lease.ClaimedAt = &at
		}
	}
	return lease
}
