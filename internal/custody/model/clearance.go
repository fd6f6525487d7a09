package model

import "strings"

// Clearance is the ordinal security classification attached to a component.
// It is informational; the registry does not enforce access control with it.
type Clearance string

const (
	ClearanceConfidential Clearance = "CONFIDENTIAL"
	ClearanceSecret       Clearance = "SECRET"
	ClearanceTopSecret    Clearance = "TOP_SECRET"

	// ClearanceOther is the report bucket for any level outside the known set.
	ClearanceOther Clearance = "OTHER"
)

// KnownClearances lists the recognised levels from lowest to highest.
var KnownClearances = []Clearance{ClearanceConfidential, ClearanceSecret, ClearanceTopSecret}

// ParseClearance normalises s and reports whether it names a known level.
func ParseClearance(s string) (Clearance, bool) {
	c := Clearance(strings.ToUpper(strings.TrimSpace(s)))
	return c, c.Rank() > 0
}

// Rank returns the ordinal of the level (1 = CONFIDENTIAL … 3 = TOP_SECRET),
// or 0 for an unknown level.
func (c Clearance) Rank() int {
	switch c {
	case ClearanceConfidential:
		return 1
	case ClearanceSecret:
		return 2
	case ClearanceTopSecret:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether c is known and ranks at or above min.
func (c Clearance) AtLeast(min Clearance) bool {
	return c.Rank() > 0 && c.Rank() >= min.Rank()
}
