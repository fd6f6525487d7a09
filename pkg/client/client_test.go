package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/pkg/client"
)

// ── Stub server ─────────────────────────────────────────────────────────

type stubState struct {
	verifyCalls atomic.Int32
	lastAuth    atomic.Value
}

func stubRegistryServer(t *testing.T) (*httptest.Server, *stubState) {
	t.Helper()
	st := &stubState{}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/components", func(w http.ResponseWriter, r *http.Request) {
		st.lastAuth.Store(r.Header.Get("Authorization"))
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["component_id"] == "DUP-1" {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]any{"error": "component already registered"})
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"component": map[string]any{
				"component_id":      req["component_id"],
				"manufacturer":      req["manufacturer"],
				"verification_hash": "ab12",
				"custody_chain":     []map[string]any{{"stage": "MANUFACTURING", "signature": "0f0f"}},
			},
		})
	})

	mux.HandleFunc("GET /api/v1/components", func(w http.ResponseWriter, r *http.Request) {
		comps := []map[string]any{{"component_id": "A"}, {"component_id": "B"}}
		if r.URL.Query().Get("manufacturer") == "C_DAC" {
			comps = comps[:1]
		}
		json.NewEncoder(w).Encode(map[string]any{"components": comps, "count": len(comps)})
	})

	mux.HandleFunc("GET /api/v1/components/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "A" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"error": "component not found"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"component": map[string]any{"component_id": "A"}})
	})

	mux.HandleFunc("POST /api/v1/components/{id}/events", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"custody_events": 2})
	})

	mux.HandleFunc("GET /api/v1/components/{id}/verify", func(w http.ResponseWriter, r *http.Request) {
		st.verifyCalls.Add(1)
		id := r.PathValue("id")
		if id == "BOOM" {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]any{"error": "verify failed"})
			return
		}
		if id != "A" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{
				"component_id": id, "verification_status": "COMPONENT_NOT_FOUND", "authentic": false,
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"component_id": "A", "verification_status": "VERIFIED", "authentic": true, "custody_events": 1,
		})
	})

	mux.HandleFunc("GET /api/v1/report", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"report_id": "SCR_1_abcdef12",
			"summary":   map[string]any{"total_components": 0, "verification_rate": "0%"},
		})
	})

	mux.HandleFunc("POST /api/v1/simulate/deployment", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"processed": 2, "events_appended": 8})
	})

	mux.HandleFunc("GET /api/v1/ledger", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"entries": 3, "root": "cafe"})
	})

	mux.HandleFunc("GET /api/v1/ledger/verify", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"valid": false, "error": "entry 2: invalid hash"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, st
}

// ── Tests ───────────────────────────────────────────────────────────────

func TestNew_requiresBase(t *testing.T) {
	if _, err := client.New(""); err == nil {
		t.Fatal("expected error for empty base URL")
	}
	if _, err := client.New("http://x", client.WithCacheTTL(0)); err == nil {
		t.Fatal("expected error for zero cache TTL")
	}
}

func TestRegister(t *testing.T) {
	srv, st := stubRegistryServer(t)
	c := client.MustNew(srv.URL, client.WithBearerToken("tok-123"))

	comp, err := c.Register(context.Background(), client.RegisterRequest{
		ID: "SHAKTI-C-001", Manufacturer: "IIT_MADRAS",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if comp.ID != "SHAKTI-C-001" || len(comp.CustodyChain) != 1 {
		t.Errorf("unexpected component: %+v", comp)
	}
	if got := st.lastAuth.Load(); got != "Bearer tok-123" {
		t.Errorf("Authorization header: got %v", got)
	}
}

func TestRegister_conflict(t *testing.T) {
	srv, _ := stubRegistryServer(t)
	c := client.MustNew(srv.URL)

	_, err := c.Register(context.Background(), client.RegisterRequest{ID: "DUP-1"})
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusConflict || apiErr.Message != "component already registered" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
}

func TestGet_notFound(t *testing.T) {
	srv, _ := stubRegistryServer(t)
	c := client.MustNew(srv.URL)

	if _, err := c.Get(context.Background(), "A"); err != nil {
		t.Fatalf("Get A: %v", err)
	}
	_, err := c.Get(context.Background(), "ZZZ")
	if !errors.Is(err, client.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList_filter(t *testing.T) {
	srv, _ := stubRegistryServer(t)
	c := client.MustNew(srv.URL)

	all, err := c.List(context.Background(), client.ListFilter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("List all: %v, %d", err, len(all))
	}
	some, err := c.List(context.Background(), client.ListFilter{Manufacturer: "C_DAC"})
	if err != nil || len(some) != 1 {
		t.Fatalf("List filtered: %v, %d", err, len(some))
	}
}

func TestVerify_notFoundIsAResult(t *testing.T) {
	srv, _ := stubRegistryServer(t)
	c := client.MustNew(srv.URL)

	res, err := c.Verify(context.Background(), "UNKNOWN-ID")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Status != "COMPONENT_NOT_FOUND" || res.Authentic {
		t.Errorf("unexpected result: %+v", res)
	}

	if _, err := c.Verify(context.Background(), "BOOM"); err == nil {
		t.Error("expected error on 500")
	}
}

func TestVerify_cacheInvalidatedByAppend(t *testing.T) {
	srv, st := stubRegistryServer(t)
	c := client.MustNew(srv.URL, client.WithCacheTTL(time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.Verify(ctx, "A"); err != nil {
			t.Fatal(err)
		}
	}
	if n := st.verifyCalls.Load(); n != 1 {
		t.Fatalf("expected 1 upstream verify, got %d", n)
	}

	n, err := c.AppendEvent(ctx, "A", client.EventRequest{Stage: "DISTRIBUTION", Handler: "h", Location: "l", Action: "a"})
	if err != nil || n != 2 {
		t.Fatalf("AppendEvent: %v, %d", err, n)
	}
	c.Verify(ctx, "A")
	if n := st.verifyCalls.Load(); n != 2 {
		t.Errorf("expected cache miss after append, got %d upstream calls", n)
	}
}

func TestReportSimulateLedger(t *testing.T) {
	srv, _ := stubRegistryServer(t)
	c := client.MustNew(srv.URL)
	ctx := context.Background()

	rep, err := c.Report(ctx)
	if err != nil || rep.Summary.VerificationRate != "0%" {
		t.Fatalf("Report: %v %+v", err, rep)
	}

	sim, err := c.Simulate(ctx)
	if err != nil || sim.EventsAppended != 8 {
		t.Fatalf("Simulate: %v %+v", err, sim)
	}

	ov, err := c.Ledger(ctx)
	if err != nil || ov.Entries != 3 || ov.Root != "cafe" {
		t.Fatalf("Ledger: %v %+v", err, ov)
	}

	valid, reason, err := c.LedgerVerify(ctx)
	if err != nil || valid || reason == "" {
		t.Fatalf("LedgerVerify: %v %v %q", err, valid, reason)
	}
}

func TestNewFromTokenFile(t *testing.T) {
	srv, st := stubRegistryServer(t)
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  file-token\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := client.NewFromTokenFile(srv.URL, path)
	if err != nil {
		t.Fatal(err)
	}
	c.Register(context.Background(), client.RegisterRequest{ID: "X"})
	if got := st.lastAuth.Load(); got != "Bearer file-token" {
		t.Errorf("Authorization header: got %v", got)
	}

	empty := filepath.Join(t.TempDir(), "empty")
	os.WriteFile(empty, nil, 0o600)
	if _, err := client.NewFromTokenFile(srv.URL, empty); err == nil {
		t.Error("expected error for empty token file")
	}
}
