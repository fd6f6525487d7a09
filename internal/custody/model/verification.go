package model

import "time"

// VerificationStatus summarises a single component verification.
type VerificationStatus string

const (
	StatusVerified           VerificationStatus = "VERIFIED"
	StatusVerificationFailed VerificationStatus = "VERIFICATION_FAILED"
	StatusNotFound           VerificationStatus = "COMPONENT_NOT_FOUND"
)

// Names of the sub-checks reported in VerificationResult.FailedChecks.
const (
	CheckHash         = "hash"
	CheckManufacturer = "manufacturer"
	CheckChain        = "chain"
)

// LastUpdateNone is reported as LastUpdate when a component has no events.
const LastUpdateNone = "N/A"

// VerificationResult is the verdict for one component.
type VerificationResult struct {
	ComponentID          string             `json:"component_id"`
	ComponentName        string             `json:"component_name,omitempty"`
	Manufacturer         string             `json:"manufacturer,omitempty"`
	ManufacturerLocation string             `json:"manufacturer_location,omitempty"`
	Status               VerificationStatus `json:"verification_status"`
	Authentic            bool               `json:"authentic"`
	Indigenous           bool               `json:"indigenous"`
	ChainIntegrity       bool               `json:"chain_integrity"`
	HashValid            bool               `json:"hash_verification"`
	ManufacturerValid    bool               `json:"manufacturer_verified"`
	FailedChecks         []string           `json:"failed_checks,omitempty"`
	SecurityClearance    Clearance          `json:"security_clearance,omitempty"`
	CustodyEvents        int                `json:"custody_events"`
	ManufacturingDate    string             `json:"manufacturing_date,omitempty"`
	BatchID              string             `json:"batch_id,omitempty"`
	LastUpdate           string             `json:"last_update,omitempty"`
	HashPreview          string             `json:"verification_hash,omitempty"`
	Error                string             `json:"error,omitempty"`
}

// Aggregate labels on a ReportSummary.
const (
	IntegritySecure   = "SECURE"
	IntegrityDegraded = "DEGRADED"

	ComplianceFull    = "FULLY_COMPLIANT"
	CompliancePartial = "PARTIALLY_COMPLIANT"
	ComplianceNone    = "NON_COMPLIANT"
)

// ReportCounts holds the headline numbers of a fleet report.
type ReportCounts struct {
	TotalComponents      int    `json:"total_components"`
	VerifiedComponents   int    `json:"verified_components"`
	IndigenousComponents int    `json:"indigenous_components"`
	VerificationRate     string `json:"verification_rate"`
	IndigenousRate       string `json:"indigenous_rate"`
}

// ReportSummary is a fleet-wide aggregation computed from a registry snapshot.
type ReportSummary struct {
	ReportID                      string            `json:"report_id"`
	GeneratedAt                   time.Time         `json:"generated_at"`
	Summary                       ReportCounts      `json:"summary"`
	ManufacturerBreakdown         map[string]int    `json:"manufacturer_breakdown"`
	SecurityClearanceDistribution map[Clearance]int `json:"security_clearance_distribution"`
	ChainIntegrity                string            `json:"chain_integrity"`
	ComplianceStatus              string            `json:"compliance_status"`
}
