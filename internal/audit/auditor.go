// Package audit runs a periodic integrity sweep over the custody fleet and
// the trust ledger.
package audit

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/custody/model"
	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/trustledger"
	"go.uber.org/zap"
)

// Config holds audit configuration.
type Config struct {
	Interval      time.Duration
	FailThreshold int // consecutive failed sweeps before a component is reported degraded
}

// FleetVerifier verifies every registered component.
// *service.CustodyService satisfies this interface.
type FleetVerifier interface {
	VerifyAll(ctx context.Context) []*model.VerificationResult
}

// Result summarises one sweep.
type Result struct {
	At          time.Time `json:"at"`
	Components  int       `json:"components"`
	Failed      int       `json:"failed"`
	Degraded    []string  `json:"degraded,omitempty"`
	LedgerValid bool      `json:"ledger_valid"`
	LedgerError string    `json:"ledger_error,omitempty"`
}

// MetricsRecordFunc is an optional callback invoked after every sweep.
type MetricsRecordFunc func(r Result)

// Auditor re-verifies the fleet on a fixed interval.
type Auditor struct {
	fleet      FleetVerifier
	ledger     trustledger.Ledger // nil = skip ledger verification
	cfg        Config
	failCounts map[string]int
	last       *Result
	mu         sync.Mutex
	onMetrics  MetricsRecordFunc
	logger     *zap.Logger
}

// New creates an Auditor. ledger may be nil.
func New(fleet FleetVerifier, ledger trustledger.Ledger, cfg Config, logger *zap.Logger) *Auditor {
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.FailThreshold == 0 {
		cfg.FailThreshold = 1
	}
	return &Auditor{
		fleet:      fleet,
		ledger:     ledger,
		cfg:        cfg,
		failCounts: make(map[string]int),
		logger:     logger,
	}
}

// SetMetricsRecord configures the metrics recording callback.
func (a *Auditor) SetMetricsRecord(fn MetricsRecordFunc) {
	a.onMetrics = fn
}

// Start runs the sweep loop until quit is signalled.
func (a *Auditor) Start(quit <-chan os.Signal) {
	ticker := time.NewTicker(a.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Interval)
			a.RunOnce(ctx)
			cancel()
		case <-quit:
			return
		}
	}
}

// RunOnce performs a single sweep and returns its result.
func (a *Auditor) RunOnce(ctx context.Context) Result {
	results := a.fleet.VerifyAll(ctx)
	res := Result{At: time.Now().UTC(), Components: len(results), LedgerValid: true}

	a.mu.Lock()
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		seen[r.ComponentID] = true
		if r.Authentic {
			if a.failCounts[r.ComponentID] >= a.cfg.FailThreshold {
				a.logger.Info("audit: component recovered", zap.String("component_id", r.ComponentID))
			}
			delete(a.failCounts, r.ComponentID)
			continue
		}

		res.Failed++
		a.failCounts[r.ComponentID]++
		count := a.failCounts[r.ComponentID]
		if count >= a.cfg.FailThreshold {
			res.Degraded = append(res.Degraded, r.ComponentID)
		}
		if count == a.cfg.FailThreshold {
			a.logger.Warn("audit: component degraded",
				zap.String("component_id", r.ComponentID),
				zap.Strings("failed_checks", r.FailedChecks),
				zap.Int("fail_count", count),
			)
		}
	}
	for id := range a.failCounts {
		if !seen[id] {
			delete(a.failCounts, id)
		}
	}
	a.mu.Unlock()

	if a.ledger != nil {
		if err := a.ledger.Verify(ctx); err != nil {
			res.LedgerValid = false
			res.LedgerError = err.Error()
			a.logger.Error("audit: trust ledger verification failed", zap.Error(err))
		}
	}

	a.mu.Lock()
	a.last = &res
	a.mu.Unlock()

	if a.onMetrics != nil {
		a.onMetrics(res)
	}
	a.logger.Debug("audit sweep complete",
		zap.Int("components", res.Components),
		zap.Int("failed", res.Failed),
		zap.Bool("ledger_valid", res.LedgerValid),
	)
	return res
}

// Last returns the most recent sweep result, if any sweep has run.
func (a *Auditor) Last() (Result, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.last == nil {
		return Result{}, false
	}
	return *a.last, true
}
