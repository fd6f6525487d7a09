package fingerprint_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/custody/fingerprint"
)

func hexSum(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

func TestVerificationHash_matchesUnderscoreJoinedInput(t *testing.T) {
	got := fingerprint.VerificationHash("SHAKTI-C-001", "IIT_MADRAS", "BATCH_Q3_001")
	assert.Equal(t, hexSum("SHAKTI-C-001_IIT_MADRAS_BATCH_Q3_001"), got)
	assert.Len(t, got, 64)
}

func TestVerificationHash_sensitiveToEachField(t *testing.T) {
	base := fingerprint.VerificationHash("A", "B", "C")
	assert.NotEqual(t, base, fingerprint.VerificationHash("A2", "B", "C"))
	assert.NotEqual(t, base, fingerprint.VerificationHash("A", "B2", "C"))
	assert.NotEqual(t, base, fingerprint.VerificationHash("A", "B", "C2"))
}

func TestDigitalSignature_truncatedAndTimeBound(t *testing.T) {
	t1 := time.Date(2024, 8, 15, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Nanosecond)

	s1 := fingerprint.DigitalSignature("X", "M", t1)
	require.Len(t, s1, fingerprint.SignatureLen)
	assert.Equal(t, s1, fingerprint.DigitalSignature("X", "M", t1))
	assert.NotEqual(t, s1, fingerprint.DigitalSignature("X", "M", t2))
}

func TestGenesisEventSignature(t *testing.T) {
	got := fingerprint.GenesisEventSignature("SHAKTI-C-001")
	assert.Equal(t, hexSum("MFG_SHAKTI-C-001")[:16], got)
}

func TestEventSignature_deterministic(t *testing.T) {
	ts := time.Date(2024, 9, 1, 12, 30, 0, 0, time.UTC)
	a := fingerprint.EventSignature("ID", "QUALITY_CONTROL", ts)
	b := fingerprint.EventSignature("ID", "QUALITY_CONTROL", ts.In(time.FixedZone("IST", 5*3600+1800)))
	assert.Equal(t, a, b, "signature must not depend on the timestamp's location")
	assert.Len(t, a, fingerprint.EventSignatureLen)
	assert.NotEqual(t, a, fingerprint.EventSignature("ID", "DISTRIBUTION", ts))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "0123456789abcdef...", fingerprint.Preview("0123456789abcdef0123"))
	assert.Equal(t, "short", fingerprint.Preview("short"))
}
