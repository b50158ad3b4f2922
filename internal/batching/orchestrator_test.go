package batching

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/agustinustheo/soltoolkit-sdk/internal/ledger"
)

// fakeLedger satisfies the Ledger interface with the real pure builders and
// a canned lookup, counting lookup calls so tests can assert which entry
// points touch the network.
type fakeLedger struct {
	*ledger.Builder

	existing    map[ledger.Address]bool
	lookupErr   error
	lookupCalls int64
}

func newFakeLedger(existing map[ledger.Address]bool) *fakeLedger {
	return &fakeLedger{
		Builder:  ledger.NewBuilder(""),
		existing: existing,
	}
}

func (f *fakeLedger) LookupAccount(ctx context.Context, owner, mint ledger.Address) (bool, error) {
	atomic.AddInt64(&f.lookupCalls, 1)
	if f.lookupErr != nil {
		return false, f.lookupErr
	}
	return f.existing[owner], nil
}

// TestOrchestrator_TwoPhasePlan tests the full pipeline: provisioning bundles
// built only from recipients whose accounts are missing, transfer bundles
// built from every request, memo trailing each transfer bundle
func TestOrchestrator_TwoPhasePlan(t *testing.T) {
	client := newFakeLedger(map[ledger.Address]bool{"A": true})

	orchestrator, err := NewOrchestrator(client, DefaultConfig())
	if err != nil {
		t.Fatalf("NewOrchestrator returned unexpected error: %v", err)
	}

	result, err := orchestrator.Orchestrate(context.Background(), DispersalRequest{
		Sender: "sender",
		Spec: SpecFromTransfers([]TransferRequest{
			{Recipient: "A", Amount: 10},
			{Recipient: "B", Amount: 20},
			{Recipient: "C", Amount: 30},
		}),
	})
	if err != nil {
		t.Fatalf("Orchestrate returned unexpected error: %v", err)
	}

	// A exists, so provisioning covers only B and C
	if len(result.ProvisioningBundles) != 1 {
		t.Fatalf("Expected 1 provisioning bundle, got %d", len(result.ProvisioningBundles))
	}
	provisioning := result.ProvisioningBundles[0]
	if provisioning.Size() != 2 {
		t.Errorf("Expected 2 provisioning operations, got %d", provisioning.Size())
	}
	for i, owner := range []ledger.Address{"B", "C"} {
		op := provisioning.Operations[i]
		if op.ProgramID != ledger.AssociatedTokenProgramID {
			t.Errorf("Provisioning op %d: unexpected program %s", i, op.ProgramID)
		}
		if op.Accounts[1] != owner {
			t.Errorf("Provisioning op %d: expected owner %s, got %s", i, owner, op.Accounts[1])
		}
	}

	// Transfers cover all three recipients plus the trailing memo
	if len(result.TransferBundles) != 1 {
		t.Fatalf("Expected 1 transfer bundle, got %d", len(result.TransferBundles))
	}
	transfer := result.TransferBundles[0]
	if transfer.Size() != 4 {
		t.Fatalf("Expected 3 transfers plus memo, got %d operations", transfer.Size())
	}

	last := transfer.Operations[transfer.Size()-1]
	if last.ProgramID != ledger.MemoProgramID {
		t.Errorf("Expected trailing memo operation, got program %s", last.ProgramID)
	}
	if string(last.Data) != DefaultAnnotationText {
		t.Errorf("Expected memo text %q, got %q", DefaultAnnotationText, string(last.Data))
	}

	if calls := atomic.LoadInt64(&client.lookupCalls); calls != 3 {
		t.Errorf("Expected one lookup per recipient (3), got %d", calls)
	}
}

// TestOrchestrator_BundleCountsAtDefaults tests dispersal shapes at the
// default capacities: 100 shared-amount recipients, all unprovisioned
func TestOrchestrator_BundleCountsAtDefaults(t *testing.T) {
	client := newFakeLedger(nil)

	orchestrator, err := NewOrchestrator(client, nil)
	if err != nil {
		t.Fatalf("NewOrchestrator returned unexpected error: %v", err)
	}

	recipients := make([]ledger.Address, 100)
	for i := range recipients {
		recipients[i] = ledger.Address(fmt.Sprintf("recipient-%d", i))
	}

	result, err := orchestrator.Orchestrate(context.Background(), DispersalRequest{
		Sender: "sender",
		Spec:   SpecFromRecipients(recipients, 5),
	})
	if err != nil {
		t.Fatalf("Orchestrate returned unexpected error: %v", err)
	}

	// 100 provisioning ops at capacity 12: 9 bundles of 12 plus one of 4
	if len(result.ProvisioningBundles) != 9 {
		t.Errorf("Expected 9 provisioning bundles, got %d", len(result.ProvisioningBundles))
	}

	// 100 transfers at capacity 18: 6 bundles, full ones holding 19 with memo
	if len(result.TransferBundles) != 6 {
		t.Fatalf("Expected 6 transfer bundles, got %d", len(result.TransferBundles))
	}
	for i, bundle := range result.TransferBundles[:5] {
		if bundle.Size() != 19 {
			t.Errorf("Transfer bundle %d: expected 19 operations, got %d", i, bundle.Size())
		}
	}
	if last := result.TransferBundles[5]; last.Size() != 11 {
		t.Errorf("Last transfer bundle: expected 11 operations, got %d", last.Size())
	}
}

// TestOrchestrator_TransferBundlesSkipsLookups tests the transfer-only entry
// point never issues an existence lookup
func TestOrchestrator_TransferBundlesSkipsLookups(t *testing.T) {
	client := newFakeLedger(nil)
	client.lookupErr = errors.New("no lookups expected")

	orchestrator, err := NewOrchestrator(client, DefaultConfig())
	if err != nil {
		t.Fatalf("NewOrchestrator returned unexpected error: %v", err)
	}

	bundles, err := orchestrator.TransferBundles(DispersalRequest{
		Sender: "sender",
		Spec:   SpecFromRecipients([]ledger.Address{"A", "B"}, 7),
	})
	if err != nil {
		t.Fatalf("TransferBundles returned unexpected error: %v", err)
	}

	if len(bundles) != 1 {
		t.Fatalf("Expected 1 bundle, got %d", len(bundles))
	}
	if calls := atomic.LoadInt64(&client.lookupCalls); calls != 0 {
		t.Errorf("Expected no lookups, got %d", calls)
	}
}

// TestOrchestrator_ProvisioningBundlesOnly tests the provisioning-only entry
// point returns just the account-creation phase
func TestOrchestrator_ProvisioningBundlesOnly(t *testing.T) {
	client := newFakeLedger(map[ledger.Address]bool{"A": true, "C": true})

	orchestrator, err := NewOrchestrator(client, DefaultConfig())
	if err != nil {
		t.Fatalf("NewOrchestrator returned unexpected error: %v", err)
	}

	bundles, err := orchestrator.ProvisioningBundles(context.Background(), DispersalRequest{
		Sender: "sender",
		Spec:   SpecFromRecipients([]ledger.Address{"A", "B", "C"}, 1),
	})
	if err != nil {
		t.Fatalf("ProvisioningBundles returned unexpected error: %v", err)
	}

	if len(bundles) != 1 || bundles[0].Size() != 1 {
		t.Fatalf("Expected 1 bundle with 1 operation, got %v", bundles)
	}
	if bundles[0].Operations[0].Accounts[1] != "B" {
		t.Errorf("Expected provisioning for B, got %s", bundles[0].Operations[0].Accounts[1])
	}
}

// TestOrchestrator_LookupFailureFailsCall tests that a lookup failure fails
// the whole orchestration call with no partial result
func TestOrchestrator_LookupFailureFailsCall(t *testing.T) {
	client := newFakeLedger(nil)
	client.lookupErr = errors.New("rpc timeout")

	orchestrator, err := NewOrchestrator(client, DefaultConfig())
	if err != nil {
		t.Fatalf("NewOrchestrator returned unexpected error: %v", err)
	}

	result, err := orchestrator.Orchestrate(context.Background(), DispersalRequest{
		Sender: "sender",
		Spec:   SpecFromRecipients([]ledger.Address{"A"}, 1),
	})
	if err == nil {
		t.Fatal("Expected orchestration to fail, got no error")
	}
	if result != nil {
		t.Errorf("Expected no partial result, got %+v", result)
	}

	var lookupErr *LookupError
	if !errors.As(err, &lookupErr) {
		t.Errorf("Expected LookupError, got %T: %v", err, err)
	}
}

// TestOrchestrator_ConfigErrorPropagates tests that a spec carrying no input
// family fails orchestration before any lookup
func TestOrchestrator_ConfigErrorPropagates(t *testing.T) {
	client := newFakeLedger(nil)

	orchestrator, err := NewOrchestrator(client, DefaultConfig())
	if err != nil {
		t.Fatalf("NewOrchestrator returned unexpected error: %v", err)
	}

	_, err = orchestrator.Orchestrate(context.Background(), DispersalRequest{Sender: "sender"})
	if err == nil {
		t.Fatal("Expected orchestration to fail for empty spec")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("Expected ConfigError, got %T: %v", err, err)
	}
	if calls := atomic.LoadInt64(&client.lookupCalls); calls != 0 {
		t.Errorf("Expected no lookups for invalid config, got %d", calls)
	}
}

// TestOrchestrator_CapacityFailsFast tests that a broken capacity fails at
// call entry before any lookup is issued
func TestOrchestrator_CapacityFailsFast(t *testing.T) {
	client := newFakeLedger(nil)
	config := DefaultConfig()

	orchestrator, err := NewOrchestrator(client, config)
	if err != nil {
		t.Fatalf("NewOrchestrator returned unexpected error: %v", err)
	}

	// Mutating the config after construction must still fail fast
	config.TransferCapacity = 0

	_, err = orchestrator.Orchestrate(context.Background(), DispersalRequest{
		Sender: "sender",
		Spec:   SpecFromRecipients([]ledger.Address{"A"}, 1),
	})
	if err == nil {
		t.Fatal("Expected orchestration to fail for zero capacity")
	}

	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Errorf("Expected CapacityError, got %T: %v", err, err)
	}
	if calls := atomic.LoadInt64(&client.lookupCalls); calls != 0 {
		t.Errorf("Expected no lookups after capacity failure, got %d", calls)
	}
}

// TestNewOrchestrator_InvalidInputs tests constructor validation
func TestNewOrchestrator_InvalidInputs(t *testing.T) {
	if _, err := NewOrchestrator(nil, DefaultConfig()); err == nil {
		t.Error("Expected error for nil ledger client")
	}

	config := DefaultConfig()
	config.ProvisioningCapacity = -3
	if _, err := NewOrchestrator(newFakeLedger(nil), config); err == nil {
		t.Error("Expected error for negative provisioning capacity")
	}
}
