package verify_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/custody/directory"
	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/custody/model"
	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/custody/registry"
	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/custody/verify"
)

// stubSource serves fixed component records so tests can corrupt them.
type stubSource struct {
	components []*model.Component
}

func (s *stubSource) Lookup(id string) (*model.Component, error) {
	for _, c := range s.components {
		if c.ID == id {
			return c.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", model.ErrNotFound, id)
}

func (s *stubSource) Snapshot() []*model.Component {
	out := make([]*model.Component, 0, len(s.components))
	for _, c := range s.components {
		out = append(out, c.Clone())
	}
	return out
}

func setup(t *testing.T) (*registry.Registry, *verify.Engine) {
	t.Helper()
	dir := directory.Default()
	reg := registry.New(dir)
	return reg, verify.New(reg, dir)
}

func register(t *testing.T, reg *registry.Registry, id, mfg string, indigenous bool, clearance model.Clearance) *model.Component {
	t.Helper()
	c, err := reg.Register(&model.RegisterRequest{
		ID:                  id,
		Name:                id + " part",
		ManufacturerKey:     mfg,
		ManufacturingDate:   "2024-08-15",
		BatchID:             "BATCH_Q3_001",
		IndigenousCertified: indigenous,
		SecurityClearance:   clearance,
	})
	require.NoError(t, err)
	return c
}

func event(stage model.Stage, ts time.Time) *model.EventRequest {
	return &model.EventRequest{
		Stage:     stage,
		Handler:   "HANDLER",
		Location:  "Somewhere",
		Action:    "MOVED",
		Timestamp: &ts,
	}
}

func TestVerify_freshRegistrationIsAuthentic(t *testing.T) {
	reg, eng := setup(t)
	register(t, reg, "SHAKTI-C-001", "IIT_MADRAS", true, model.ClearanceTopSecret)

	res := eng.Verify("SHAKTI-C-001")
	assert.True(t, res.Authentic)
	assert.True(t, res.Indigenous)
	assert.True(t, res.HashValid)
	assert.True(t, res.ManufacturerValid)
	assert.True(t, res.ChainIntegrity)
	assert.Equal(t, model.StatusVerified, res.Status)
	assert.Empty(t, res.FailedChecks)
	assert.Equal(t, 1, res.CustodyEvents)
	assert.Equal(t, "IIT Madras", res.Manufacturer)
	assert.Equal(t, "Chennai, Tamil Nadu", res.ManufacturerLocation)
	assert.Equal(t, model.ClearanceTopSecret, res.SecurityClearance)
	assert.True(t, strings.HasSuffix(res.HashPreview, "..."))
	assert.Len(t, res.HashPreview, 19)
}

func TestVerify_eventsCountAndLastUpdate(t *testing.T) {
	reg, eng := setup(t)
	register(t, reg, "SHAKTI-C-001", "IIT_MADRAS", true, model.ClearanceTopSecret)

	base := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	for i, stage := range []model.Stage{model.StageQualityControl, model.StageDistribution, model.StageOperational} {
		_, _, err := reg.AppendEvent("SHAKTI-C-001", event(stage, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	res := eng.Verify("SHAKTI-C-001")
	assert.Equal(t, 4, res.CustodyEvents)
	assert.Equal(t, base.Add(2*time.Hour).Format(time.RFC3339Nano), res.LastUpdate)
	assert.True(t, res.Authentic)
}

func TestVerify_unknownComponent(t *testing.T) {
	_, eng := setup(t)

	res := eng.Verify("UNKNOWN-ID")
	assert.False(t, res.Authentic)
	assert.False(t, res.Indigenous)
	assert.False(t, res.ChainIntegrity)
	assert.Equal(t, model.StatusNotFound, res.Status)
	assert.Equal(t, "UNKNOWN-ID", res.ComponentID)
	assert.NotEmpty(t, res.Error)
}

func TestVerify_failedAppendLeavesCountUnchanged(t *testing.T) {
	reg, eng := setup(t)
	register(t, reg, "HSM-SEC-001", "C_DAC", true, model.ClearanceSecret)

	_, _, err := reg.AppendEvent("MISSING", event(model.StageDistribution, time.Now()))
	require.Error(t, err)
	_, _, err = reg.AppendEvent("HSM-SEC-001", &model.EventRequest{Stage: model.StageDistribution})
	require.Error(t, err)
	_, _, err = reg.AppendEvent("HSM-SEC-001", event(model.StageDistribution, time.Now()))
	require.NoError(t, err)

	assert.Equal(t, 2, eng.Verify("HSM-SEC-001").CustodyEvents)
	assert.Equal(t, 1, reg.Len())
}

func tamperedFixture(t *testing.T) *model.Component {
	t.Helper()
	reg, _ := setup(t)
	return register(t, reg, "ENC-CASE-001", "DRDO_LABS", true, model.ClearanceTopSecret)
}

func TestVerify_detectsTampering(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *model.Component)
		failed []string
	}{
		{"stored hash", func(c *model.Component) { c.VerificationHash = strings.Repeat("0", 64) }, []string{model.CheckHash}},
		{"batch id", func(c *model.Component) { c.BatchID = "BATCH_FORGED" }, []string{model.CheckHash}},
		{"manufacturer key", func(c *model.Component) { c.ManufacturerKey = "GHOST_FAB" }, []string{model.CheckHash, model.CheckManufacturer}},
		{"unsigned event", func(c *model.Component) { c.CustodyChain[0].Signature = "" }, []string{model.CheckChain}},
		{"empty chain", func(c *model.Component) { c.CustodyChain = nil }, []string{model.CheckChain}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := tamperedFixture(t)
			tc.mutate(c)
			eng := verify.New(&stubSource{components: []*model.Component{c}}, directory.Default())

			res := eng.Verify("ENC-CASE-001")
			assert.False(t, res.Authentic)
			assert.Equal(t, model.StatusVerificationFailed, res.Status)
			assert.Equal(t, tc.failed, res.FailedChecks)
		})
	}
}

func TestVerify_emptyChainReportsNoLastUpdate(t *testing.T) {
	c := tamperedFixture(t)
	c.CustodyChain = nil
	eng := verify.New(&stubSource{components: []*model.Component{c}}, directory.Default())

	res := eng.Verify("ENC-CASE-001")
	assert.Equal(t, model.LastUpdateNone, res.LastUpdate)
	assert.Equal(t, 0, res.CustodyEvents)
}

func TestVerify_authenticButNotIndigenous(t *testing.T) {
	reg, eng := setup(t)
	register(t, reg, "PCB-IND-001", "COSMIC_CIRCUITS", false, model.ClearanceConfidential)

	res := eng.Verify("PCB-IND-001")
	assert.True(t, res.Authentic)
	assert.False(t, res.Indigenous)
}

func TestReport_emptyFleet(t *testing.T) {
	_, eng := setup(t)

	rep := eng.Report(time.Now())
	assert.Equal(t, 0, rep.Summary.TotalComponents)
	assert.Equal(t, "0%", rep.Summary.VerificationRate)
	assert.Equal(t, "0%", rep.Summary.IndigenousRate)
	assert.Empty(t, rep.ManufacturerBreakdown)
	assert.Equal(t, map[model.Clearance]int{
		model.ClearanceTopSecret:    0,
		model.ClearanceSecret:       0,
		model.ClearanceConfidential: 0,
	}, rep.SecurityClearanceDistribution)
}

func TestReport_manufacturerBreakdown(t *testing.T) {
	reg, eng := setup(t)
	for i := 0; i < 2; i++ {
		register(t, reg, fmt.Sprintf("A-%d", i), "C_DAC", true, model.ClearanceSecret)
	}
	for i := 0; i < 3; i++ {
		register(t, reg, fmt.Sprintf("B-%d", i), "BEL_INDIA", i == 0, model.ClearanceTopSecret)
	}

	asOf := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	rep := eng.Report(asOf)

	assert.Equal(t, 5, rep.Summary.TotalComponents)
	assert.Equal(t, 5, rep.Summary.VerifiedComponents)
	assert.Equal(t, 3, rep.Summary.IndigenousComponents)
	assert.Equal(t, "100.0%", rep.Summary.VerificationRate)
	assert.Equal(t, "60.0%", rep.Summary.IndigenousRate)
	assert.Equal(t, map[string]int{
		"Centre for Development of Advanced Computing": 2,
		"Bharat Electronics Limited":                   3,
	}, rep.ManufacturerBreakdown)
	assert.Equal(t, 3, rep.SecurityClearanceDistribution[model.ClearanceTopSecret])
	assert.Equal(t, 2, rep.SecurityClearanceDistribution[model.ClearanceSecret])
	assert.Equal(t, 0, rep.SecurityClearanceDistribution[model.ClearanceConfidential])
	_, hasOther := rep.SecurityClearanceDistribution[model.ClearanceOther]
	assert.False(t, hasOther)

	assert.Equal(t, model.IntegritySecure, rep.ChainIntegrity)
	assert.Equal(t, model.ComplianceFull, rep.ComplianceStatus)
	assert.True(t, strings.HasPrefix(rep.ReportID, fmt.Sprintf("SCR_%d_", asOf.Unix())))
	assert.Equal(t, asOf, rep.GeneratedAt)
}

func TestReport_unknownClearanceAndManufacturerBuckets(t *testing.T) {
	good := tamperedFixture(t)
	odd := good.Clone()
	odd.ID = "ODD-1"
	odd.SecurityClearance = "RESTRICTED"
	odd.ManufacturerKey = "GHOST_FAB"

	eng := verify.New(&stubSource{components: []*model.Component{good, odd}}, directory.Default())
	rep := eng.Report(time.Now())

	assert.Equal(t, 1, rep.SecurityClearanceDistribution[model.ClearanceOther])
	assert.Equal(t, 1, rep.ManufacturerBreakdown[model.UnknownManufacturer])
	assert.Equal(t, 1, rep.Summary.VerifiedComponents)
	assert.Equal(t, "50.0%", rep.Summary.VerificationRate)
	assert.Equal(t, model.IntegrityDegraded, rep.ChainIntegrity)
	assert.Equal(t, model.CompliancePartial, rep.ComplianceStatus)
}

func TestReport_noneVerified(t *testing.T) {
	c := tamperedFixture(t)
	c.VerificationHash = "bad"
	eng := verify.New(&stubSource{components: []*model.Component{c}}, directory.Default())

	rep := eng.Report(time.Now())
	assert.Equal(t, "0.0%", rep.Summary.VerificationRate)
	assert.Equal(t, model.ComplianceNone, rep.ComplianceStatus)
}

func TestReport_idempotentCounts(t *testing.T) {
	reg, eng := setup(t)
	register(t, reg, "SHAKTI-C-001", "IIT_MADRAS", true, model.ClearanceTopSecret)
	register(t, reg, "NET-MOD-001", "TEJAS_NETWORKS", false, model.ClearanceSecret)

	first := eng.Report(time.Now())
	second := eng.Report(time.Now())

	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.ManufacturerBreakdown, second.ManufacturerBreakdown)
	assert.Equal(t, first.SecurityClearanceDistribution, second.SecurityClearanceDistribution)
	assert.NotEqual(t, first.ReportID, second.ReportID)
}
