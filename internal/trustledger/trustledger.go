// Package trustledger keeps a hash-chained audit log of custody registry
// mutations.
//
// The chain opens with a genesis entry whose Hash is GenesisHash (64 hex
// zeros). Each later entry commits to its predecessor's hash and to the
// SHA-256 of its JSON payload, so rewriting any stored record breaks Verify.
//
// MemoryLedger serves tests and single-process deployments; PostgresLedger
// persists the chain in the custody_ledger table.
package trustledger
