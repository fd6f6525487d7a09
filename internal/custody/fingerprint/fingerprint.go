// Package fingerprint derives the deterministic SHA-256 fingerprints stored on
// components and custody events.
//
// These are integrity fingerprints only. Anyone who knows the inputs can
// recompute them, so they detect corruption or tampering of stored fields but
// prove nothing about who produced a record.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	// SignatureLen is the hex length of a component's digital signature.
	SignatureLen = 32
	// EventSignatureLen is the hex length of a custody event signature.
	EventSignatureLen = 16
	// PreviewLen is the number of hash characters shown in a verification preview.
	PreviewLen = 16
)

// TimestampLayout is the canonical timestamp encoding fed into signatures.
const TimestampLayout = time.RFC3339Nano

// VerificationHash returns the full hex SHA-256 over id, manufacturer key and batch id.
func VerificationHash(id, manufacturerKey, batchID string) string {
	return sum(id + "_" + manufacturerKey + "_" + batchID)
}

// DigitalSignature returns the truncated fingerprint over id, manufacturer key
// and the registration time.
func DigitalSignature(id, manufacturerKey string, registeredAt time.Time) string {
	return sum(id + "_" + manufacturerKey + "_" + registeredAt.UTC().Format(TimestampLayout))[:SignatureLen]
}

// GenesisEventSignature returns the signature of a component's synthetic
// MANUFACTURING event.
func GenesisEventSignature(id string) string {
	return sum("MFG_" + id)[:EventSignatureLen]
}

// EventSignature returns the signature of a custody event appended to id.
func EventSignature(id, stage string, ts time.Time) string {
	return sum(id + "_" + stage + "_" + ts.UTC().Format(TimestampLayout))[:EventSignatureLen]
}

// Preview truncates a hash for display, e.g. "a1b2c3d4e5f60718...".
func Preview(hash string) string {
	if len(hash) <= PreviewLen {
		return hash
	}
	return hash[:PreviewLen] + "..."
}

func sum(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
