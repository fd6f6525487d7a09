package trustledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// GenesisHash is the fixed hash of the genesis entry and the anchor of the chain.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Ledger actions.
const (
	ActionGenesis      = "genesis"
	ActionRegister     = "register"
	ActionCustodyEvent = "custody_event"
)

// SystemActor is recorded when a mutation has no authenticated operator.
const SystemActor = "custody-system"

// Entry is one audit record.
type Entry struct {
	Index       int       `json:"index"`
	Timestamp   time.Time `json:"timestamp"`
	ComponentID string    `json:"component_id"`
	Action      string    `json:"action"`
	Actor       string    `json:"actor"`
	DataHash    string    `json:"data_hash"` // SHA-256 of the JSON payload
	PrevHash    string    `json:"prev_hash"`
	Hash        string    `json:"hash"`
}

// hashEntry must never be called on the genesis entry.
func hashEntry(e *Entry) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%s|%s|%s|%s|%s",
		e.Index, e.Timestamp.UTC().Format(time.RFC3339Nano),
		e.ComponentID, e.Action, e.Actor, e.DataHash, e.PrevHash,
	)
	return hex.EncodeToString(h.Sum(nil))
}

func sha256Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// checkLink validates curr against its predecessor. prev is nil for the genesis entry.
func checkLink(prev, curr *Entry) error {
	if prev == nil {
		if curr.Hash != GenesisHash {
			return fmt.Errorf("genesis entry has wrong hash: got %q", curr.Hash)
		}
		return nil
	}
	if curr.Index != prev.Index+1 {
		return fmt.Errorf("index gap between %d and %d", prev.Index, curr.Index)
	}
	if curr.PrevHash != prev.Hash {
		return fmt.Errorf("hash chain broken at index %d", curr.Index)
	}
	if curr.Hash != hashEntry(curr) {
		return fmt.Errorf("entry %d has invalid hash", curr.Index)
	}
	return nil
}
