// Package service contains the custody application service. It owns no state
// itself: component records live in the registry, verdicts come from the
// verification engine, and every successful mutation is mirrored to the trust
// ledger and the notification publisher on a best-effort basis.
package service
