// Package notify broadcasts custody registry changes to downstream consumers.
package notify

import "context"

// Subjects published by the custody service, relative to the configured prefix.
const (
	SubjectComponentRegistered = "component.registered"
	SubjectEventAppended       = "event.appended"
)

// Publisher delivers a JSON-encodable notification on a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close() error
}

// ComponentRegistered is the payload for SubjectComponentRegistered.
type ComponentRegistered struct {
	ComponentID       string `json:"component_id"`
	Manufacturer      string `json:"manufacturer"`
	BatchID           string `json:"batch_id"`
	SecurityClearance string `json:"security_clearance"`
	Actor             string `json:"actor"`
}

// EventAppended is the payload for SubjectEventAppended.
type EventAppended struct {
	ComponentID   string `json:"component_id"`
	Stage         string `json:"stage"`
	Handler       string `json:"handler"`
	Location      string `json:"location"`
	Signature     string `json:"signature"`
	CustodyEvents int    `json:"custody_events"`
	Actor         string `json:"actor"`
}
