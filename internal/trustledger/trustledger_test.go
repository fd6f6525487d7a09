package trustledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/trustledger"
)

var ctx = context.Background()

func TestNew_genesisEntry(t *testing.T) {
	l := trustledger.New()

	n, err := l.Len(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 genesis entry, got %d", n)
	}

	entry, err := l.Get(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Action != trustledger.ActionGenesis {
		t.Errorf("expected action %q, got %q", trustledger.ActionGenesis, entry.Action)
	}
	if entry.Hash != trustledger.GenesisHash {
		t.Errorf("genesis hash: got %q, want GenesisHash", entry.Hash)
	}
}

func TestAppend_chainsCorrectly(t *testing.T) {
	l := trustledger.New()

	e1, err := l.Append(ctx, "SHAKTI-C-001", trustledger.ActionRegister, "operator-1", map[string]string{"batch_id": "BATCH_Q3_001"})
	if err != nil {
		t.Fatal(err)
	}
	e2, err := l.Append(ctx, "SHAKTI-C-001", trustledger.ActionCustodyEvent, trustledger.SystemActor, nil)
	if err != nil {
		t.Fatal(err)
	}

	if e2.PrevHash != e1.Hash {
		t.Errorf("chain broken: e2.PrevHash=%q, want e1.Hash=%q", e2.PrevHash, e1.Hash)
	}
	if e1.ComponentID != "SHAKTI-C-001" {
		t.Errorf("component id: got %q", e1.ComponentID)
	}

	n, _ := l.Len(ctx)
	if n != 3 {
		t.Errorf("expected 3 entries, got %d", n)
	}
}

func TestAppend_unmarshalablePayload(t *testing.T) {
	l := trustledger.New()
	if _, err := l.Append(ctx, "X", trustledger.ActionRegister, "a", make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}
	if n, _ := l.Len(ctx); n != 1 {
		t.Errorf("failed append must not grow the ledger, got %d entries", n)
	}
}

func TestVerify_valid(t *testing.T) {
	l := trustledger.New()
	_, _ = l.Append(ctx, "HSM-SEC-001", trustledger.ActionRegister, "op", nil)
	_, _ = l.Append(ctx, "HSM-SEC-001", trustledger.ActionCustodyEvent, "op", nil)

	if err := l.Verify(ctx); err != nil {
		t.Errorf("Verify() failed on valid chain: %v", err)
	}
}

func TestVerify_genesisOnlyChain(t *testing.T) {
	if err := trustledger.New().Verify(ctx); err != nil {
		t.Errorf("Verify() on genesis-only chain should pass: %v", err)
	}
}

func TestRoot_returnsLastHash(t *testing.T) {
	l := trustledger.New()
	root, _ := l.Root(ctx)
	if root != trustledger.GenesisHash {
		t.Errorf("Root() on genesis-only: got %q, want GenesisHash", root)
	}

	e, _ := l.Append(ctx, "PWR-UPS-001", trustledger.ActionRegister, "op", nil)
	root, err := l.Root(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if root != e.Hash {
		t.Errorf("Root(): got %q, want %q", root, e.Hash)
	}
}

func TestGet_returnsCopy(t *testing.T) {
	l := trustledger.New()
	e, _ := l.Append(ctx, "NET-MOD-001", trustledger.ActionRegister, "op", nil)
	e.Hash = "mutated"

	if err := l.Verify(ctx); err != nil {
		t.Fatalf("mutating a returned entry must not affect the ledger: %v", err)
	}
}

func TestAppend_concurrent(t *testing.T) {
	l := trustledger.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Append(ctx, "PCB-IND-001", trustledger.ActionCustodyEvent, "op", nil)
		}()
	}
	wg.Wait()

	if n, _ := l.Len(ctx); n != 51 {
		t.Errorf("expected 51 entries, got %d", n)
	}
	if err := l.Verify(ctx); err != nil {
		t.Errorf("Verify() after concurrent appends: %v", err)
	}
}
