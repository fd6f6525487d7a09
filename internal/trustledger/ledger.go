package trustledger

import "context"

// Ledger is an append-only, hash-chained audit log.
type Ledger interface {
	// Append chains a new entry onto the tip. payload is JSON-marshalled and
	// only its SHA-256 is stored.
	Append(ctx context.Context, componentID, action, actor string, payload any) (*Entry, error)

	// Get returns the entry at a zero-based index.
	Get(ctx context.Context, index int) (*Entry, error)

	// Len counts entries including genesis.
	Len(ctx context.Context) (int, error)

	// Verify walks the chain and returns the first inconsistency found.
	Verify(ctx context.Context) error

	// Root returns the hash of the chain tip.
	Root(ctx context.Context) (string, error)
}
