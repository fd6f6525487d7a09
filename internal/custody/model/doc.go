// Package model defines the custody ledger's domain types: components, their
// append-only custody chains, manufacturer directory entries, and the
// verification and report shapes returned to callers.
//
// The "digital signature" and event signatures carried by these types are
// truncated SHA-256 fingerprints. They detect accidental or post-registration
// modification; they are not asymmetric-key signatures and provide no
// non-repudiation.
package model
