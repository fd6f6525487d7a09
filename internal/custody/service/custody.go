package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/custody/model"
	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/notify"
	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/trustledger"
	"go.uber.org/zap"
)

// componentStore is the registry surface used by the service.
// *registry.Registry satisfies this interface.
type componentStore interface {
	Register(req *model.RegisterRequest) (*model.Component, error)
	AppendEvent(id string, req *model.EventRequest) (model.CustodyEvent, int, error)
	Lookup(id string) (*model.Component, error)
	Snapshot() []*model.Component
	Len() int
}

// verifier computes verdicts and reports. *verify.Engine satisfies this interface.
type verifier interface {
	Verify(id string) *model.VerificationResult
	Report(asOf time.Time) *model.ReportSummary
}

// CustodyService coordinates the registry, the verification engine and the
// side channels (trust ledger, notifications) that observe registry changes.
type CustodyService struct {
	store     componentStore
	engine    verifier
	ledger    trustledger.Ledger // nil = no ledger writes
	publisher notify.Publisher   // nil = no notifications
	locations LocationSequence
	now       func() time.Time
	logger    *zap.Logger
}

// NewCustodyService creates a CustodyService. ledger may be nil.
func NewCustodyService(store componentStore, engine verifier, ledger trustledger.Ledger, logger *zap.Logger) *CustodyService {
	return &CustodyService{
		store:     store,
		engine:    engine,
		ledger:    ledger,
		locations: NewRoundRobin(DefaultDeploymentLocations),
		now:       time.Now,
		logger:    logger,
	}
}

// SetPublisher configures where registry changes are announced.
func (s *CustodyService) SetPublisher(p notify.Publisher) {
	s.publisher = p
}

// SetLocationSequence replaces the source of installation sites used by
// SimulateDeployment.
func (s *CustodyService) SetLocationSequence(seq LocationSequence) {
	s.locations = seq
}

// SetClock overrides the clock used for report timestamps.
func (s *CustodyService) SetClock(now func() time.Time) {
	s.now = now
}

// appendLedger records a mutation in the trust ledger without failing the caller.
func (s *CustodyService) appendLedger(ctx context.Context, componentID, action, actor string, payload any) {
	if s.ledger == nil {
		return
	}
	if _, err := s.ledger.Append(ctx, componentID, action, actor, payload); err != nil {
		s.logger.Error("ledger append failed (non-fatal)",
			zap.String("action", action),
			zap.String("component_id", componentID),
			zap.Error(err),
		)
	}
}

// publish announces a change without failing the caller.
func (s *CustodyService) publish(ctx context.Context, subject string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, subject, payload); err != nil {
		s.logger.Warn("notification publish failed (non-fatal)",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

func actorOrSystem(actor string) string {
	if actor == "" {
		return trustledger.SystemActor
	}
	return actor
}

// Register stores a new component. actor is the authenticated operator, or
// "" when authentication is disabled.
func (s *CustodyService) Register(ctx context.Context, req *model.RegisterRequest, actor string) (*model.Component, error) {
	c, err := s.store.Register(req)
	if err != nil {
		return nil, err
	}
	actor = actorOrSystem(actor)

	s.logger.Info("component registered",
		zap.String("component_id", c.ID),
		zap.String("manufacturer", c.ManufacturerKey),
		zap.String("batch_id", c.BatchID),
		zap.String("actor", actor),
	)

	s.appendLedger(ctx, c.ID, trustledger.ActionRegister, actor, map[string]any{
		"component_id":      c.ID,
		"manufacturer":      c.ManufacturerKey,
		"batch_id":          c.BatchID,
		"verification_hash": c.VerificationHash,
		"digital_signature": c.DigitalSignature,
		"registered_at":     c.RegisteredAt,
	})
	s.publish(ctx, notify.SubjectComponentRegistered, notify.ComponentRegistered{
		ComponentID:       c.ID,
		Manufacturer:      c.ManufacturerKey,
		BatchID:           c.BatchID,
		SecurityClearance: string(c.SecurityClearance),
		Actor:             actor,
	})
	return c, nil
}

// AppendEvent adds a custody event to component id and returns it with the
// new chain length. When the caller omits verified_by, the authenticated
// operator is recorded in its place.
func (s *CustodyService) AppendEvent(ctx context.Context, id string, req *model.EventRequest, actor string) (model.CustodyEvent, int, error) {
	if req != nil && req.VerifiedBy == "" && actor != "" {
		cp := *req
		cp.VerifiedBy = actor
		req = &cp
	}

	ev, n, err := s.store.AppendEvent(id, req)
	if err != nil {
		return model.CustodyEvent{}, 0, err
	}
	actor = actorOrSystem(actor)

	s.logger.Debug("custody event appended",
		zap.String("component_id", id),
		zap.String("stage", string(ev.Stage)),
		zap.Int("custody_events", n),
	)

	s.appendLedger(ctx, id, trustledger.ActionCustodyEvent, actor, ev)
	s.publish(ctx, notify.SubjectEventAppended, notify.EventAppended{
		ComponentID:   id,
		Stage:         string(ev.Stage),
		Handler:       ev.Handler,
		Location:      ev.Location,
		Signature:     ev.Signature,
		CustodyEvents: n,
		Actor:         actor,
	})
	return ev, n, nil
}

// Get returns the full record for id, including its custody chain.
func (s *CustodyService) Get(_ context.Context, id string) (*model.Component, error) {
	return s.store.Lookup(id)
}

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	Manufacturer string
	MinClearance string
}

// List returns components in registration order that match f.
func (s *CustodyService) List(_ context.Context, f ListFilter) ([]*model.Component, error) {
	var floor model.Clearance
	if f.MinClearance != "" {
		var ok bool
		if floor, ok = model.ParseClearance(f.MinClearance); !ok {
			return nil, &model.ErrValidation{Msg: fmt.Sprintf("min_clearance %q is not a known level", f.MinClearance)}
		}
	}

	all := s.store.Snapshot()
	out := make([]*model.Component, 0, len(all))
	for _, c := range all {
		if f.Manufacturer != "" && c.ManufacturerKey != f.Manufacturer {
			continue
		}
		if floor != "" && !c.SecurityClearance.AtLeast(floor) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Count returns the number of registered components.
func (s *CustodyService) Count() int { return s.store.Len() }

// Verify returns the authenticity verdict for id.
func (s *CustodyService) Verify(_ context.Context, id string) *model.VerificationResult {
	res := s.engine.Verify(id)
	if res.Status == model.StatusVerificationFailed {
		s.logger.Warn("component failed verification",
			zap.String("component_id", id),
			zap.Strings("failed_checks", res.FailedChecks),
		)
	}
	return res
}

// Report aggregates the current fleet.
func (s *CustodyService) Report(_ context.Context) *model.ReportSummary {
	return s.engine.Report(s.now())
}

// VerifyAll verifies every registered component in registration order.
func (s *CustodyService) VerifyAll(_ context.Context) []*model.VerificationResult {
	snap := s.store.Snapshot()
	out := make([]*model.VerificationResult, 0, len(snap))
	for _, c := range snap {
		out = append(out, s.engine.Verify(c.ID))
	}
	return out
}
