// Package registry owns component records and their append-only custody chains.
//
// A single RWMutex guards the whole registry. Writers (registration and event
// appends) hold the write lock for the full mutation, and readers receive deep
// copies, so no caller ever observes a half-written component or event.
package registry

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/custody/directory"
	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/custody/fingerprint"
	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/custody/model"
)

// Registry is an in-memory, thread-safe component store.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]*model.Component
	order []string

	dir directory.Directory
	now func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the clock used for registration times and default
// event timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// New creates an empty Registry that resolves manufacturers through dir.
func New(dir directory.Directory, opts ...Option) *Registry {
	r := &Registry{
		byID: make(map[string]*model.Component),
		dir:  dir,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register validates req, derives the component's fingerprints and its
// initial MANUFACTURING event, and stores it. Registering an id that already
// exists returns model.ErrDuplicate and leaves the stored record untouched.
func (r *Registry) Register(req *model.RegisterRequest) (*model.Component, error) {
	if req == nil {
		return nil, &model.ErrValidation{Msg: "request body is required"}
	}
	id := strings.TrimSpace(req.ID)
	mfgKey := strings.TrimSpace(req.ManufacturerKey)
	batch := strings.TrimSpace(req.BatchID)
	name := strings.TrimSpace(req.Name)

	switch {
	case id == "":
		return nil, &model.ErrValidation{Msg: "component_id is required"}
	case name == "":
		return nil, &model.ErrValidation{Msg: "component_name is required"}
	case mfgKey == "":
		return nil, &model.ErrValidation{Msg: "manufacturer is required"}
	case batch == "":
		return nil, &model.ErrValidation{Msg: "batch_id is required"}
	}

	mfgDate, err := time.Parse(model.ManufacturingDateLayout, strings.TrimSpace(req.ManufacturingDate))
	if err != nil {
		return nil, &model.ErrValidation{Msg: "manufacturing_date must be YYYY-MM-DD"}
	}
	clearance, ok := model.ParseClearance(string(req.SecurityClearance))
	if !ok {
		return nil, &model.ErrValidation{Msg: fmt.Sprintf("security_clearance %q is not one of CONFIDENTIAL, SECRET, TOP_SECRET", req.SecurityClearance)}
	}

	mfg, ok := r.dir.Resolve(mfgKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidReference, mfgKey)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; exists {
		return nil, fmt.Errorf("%w: %q", model.ErrDuplicate, id)
	}

	registeredAt := r.now().UTC()
	c := &model.Component{
		ID:                  id,
		Name:                name,
		ManufacturerKey:     mfgKey,
		ManufacturingDate:   mfgDate.Format(model.ManufacturingDateLayout),
		BatchID:             batch,
		VerificationHash:    fingerprint.VerificationHash(id, mfgKey, batch),
		DigitalSignature:    fingerprint.DigitalSignature(id, mfgKey, registeredAt),
		RegisteredAt:        registeredAt,
		IndigenousCertified: req.IndigenousCertified,
		SecurityClearance:   clearance,
		CustodyChain: []model.CustodyEvent{{
			Stage:      model.StageManufacturing,
			Handler:    mfgKey,
			Timestamp:  mfgDate.UTC(),
			Location:   mfg.Location,
			Action:     model.ActionComponentCreated,
			VerifiedBy: model.VerifierQAAutomated,
			Signature:  fingerprint.GenesisEventSignature(id),
		}},
	}

	r.byID[id] = c
	r.order = append(r.order, id)
	return c.Clone(), nil
}

// AppendEvent appends a custody event to component id and returns the stored
// event together with the new chain length. Stages are not ordered; any
// non-empty stage is accepted at any point.
func (r *Registry) AppendEvent(id string, req *model.EventRequest) (model.CustodyEvent, int, error) {
	if req == nil {
		return model.CustodyEvent{}, 0, fmt.Errorf("%w: empty event", model.ErrMalformedEvent)
	}
	ev := model.CustodyEvent{
		Stage:      model.Stage(strings.TrimSpace(string(req.Stage))),
		Handler:    strings.TrimSpace(req.Handler),
		Location:   strings.TrimSpace(req.Location),
		Action:     strings.TrimSpace(req.Action),
		VerifiedBy: strings.TrimSpace(req.VerifiedBy),
	}
	required := []struct{ field, value string }{
		{"stage", string(ev.Stage)},
		{"handler", ev.Handler},
		{"location", ev.Location},
		{"action", ev.Action},
	}
	for _, f := range required {
		if f.value == "" {
			return model.CustodyEvent{}, 0, fmt.Errorf("%w: %s is required", model.ErrMalformedEvent, f.field)
		}
	}
	if ev.VerifiedBy == "" {
		ev.VerifiedBy = model.VerifierDefault
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return model.CustodyEvent{}, 0, fmt.Errorf("%w: %q", model.ErrNotFound, id)
	}

	if req.Timestamp != nil {
		ev.Timestamp = req.Timestamp.UTC()
	} else {
		ev.Timestamp = r.now().UTC()
	}
	ev.Signature = fingerprint.EventSignature(id, string(ev.Stage), ev.Timestamp)

	c.CustodyChain = append(c.CustodyChain, ev)
	return ev, len(c.CustodyChain), nil
}

// Lookup returns a copy of the component registered under id.
func (r *Registry) Lookup(id string) (*model.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrNotFound, id)
	}
	return c.Clone(), nil
}

// Snapshot returns copies of every component in registration order.
func (r *Registry) Snapshot() []*model.Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Component, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Clone())
	}
	return out
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
