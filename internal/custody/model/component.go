package model

import (
	"time"
)

// Stage names the custody stage a component is in when an event is recorded.
// Any non-empty value is accepted; the constants below are the well-known stages.
type Stage string

const (
	StageManufacturing  Stage = "MANUFACTURING"
	StageQualityControl Stage = "QUALITY_CONTROL"
	StageDistribution   Stage = "DISTRIBUTION"
	StageInstallation   Stage = "INSTALLATION"
	StageOperational    Stage = "OPERATIONAL"
)

// Actions and verifiers recorded on the synthetic registration event.
const (
	ActionComponentCreated = "COMPONENT_CREATED"
	VerifierQAAutomated    = "QA_SYSTEM_AUTOMATED"
	VerifierDefault        = "SYSTEM_AUTOMATED"
)

// ManufacturingDateLayout is the accepted format of Component.ManufacturingDate.
const ManufacturingDateLayout = "2006-01-02"

// CustodyEvent is a single handling record in a component's custody chain.
// Events are immutable once appended.
type CustodyEvent struct {
	Stage      Stage     `json:"stage"`
	Handler    string    `json:"handler"`
	Timestamp  time.Time `json:"timestamp"`
	Location   string    `json:"location"`
	Action     string    `json:"action"`
	VerifiedBy string    `json:"verified_by"`
	Signature  string    `json:"signature"`
}

// Component is a registered hardware component and its custody chain.
type Component struct {
	ID                  string         `json:"component_id"`
	Name                string         `json:"component_name"`
	ManufacturerKey     string         `json:"manufacturer"`
	ManufacturingDate   string         `json:"manufacturing_date"`
	BatchID             string         `json:"batch_id"`
	VerificationHash    string         `json:"verification_hash"`
	DigitalSignature    string         `json:"digital_signature"`
	RegisteredAt        time.Time      `json:"registered_at"`
	CustodyChain        []CustodyEvent `json:"custody_chain"`
	IndigenousCertified bool           `json:"indigenous_certification"`
	SecurityClearance   Clearance      `json:"security_clearance"`
}

// Clone returns a deep copy of the component. The custody chain is copied so
// that the caller can never alias registry-owned storage.
func (c *Component) Clone() *Component {
	cp := *c
	cp.CustodyChain = make([]CustodyEvent, len(c.CustodyChain))
	copy(cp.CustodyChain, c.CustodyChain)
	return &cp
}

// LastEvent returns the most recent custody event, if any.
func (c *Component) LastEvent() (CustodyEvent, bool) {
	if len(c.CustodyChain) == 0 {
		return CustodyEvent{}, false
	}
	return c.CustodyChain[len(c.CustodyChain)-1], true
}

// RegisterRequest is the payload for registering a new component.
type RegisterRequest struct {
	ID                  string    `json:"component_id"`
	Name                string    `json:"component_name"`
	ManufacturerKey     string    `json:"manufacturer"`
	ManufacturingDate   string    `json:"manufacturing_date"`
	BatchID             string    `json:"batch_id"`
	IndigenousCertified bool      `json:"indigenous_certification"`
	SecurityClearance   Clearance `json:"security_clearance"`
}

// EventRequest is the payload for appending a custody event.
// A nil Timestamp means "now" according to the registry clock.
type EventRequest struct {
	Stage      Stage      `json:"stage"`
	Handler    string     `json:"handler"`
	Location   string     `json:"location"`
	Action     string     `json:"action"`
	VerifiedBy string     `json:"verified_by"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}
