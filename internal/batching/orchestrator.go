package batching

import (
	"context"
	"fmt"

	"github.com/agustinustheo/soltoolkit-sdk/internal/ledger"
	"github.com/agustinustheo/soltoolkit-sdk/internal/logging"
)

// DispersalRequest is the unified input for one orchestration call: who pays
// and signs, which mint is being dispersed (empty for the native token), and
// the validated transfer input union.
type DispersalRequest struct {
	Sender ledger.Address // Fee payer, transfer source, and memo signer
	Mint   ledger.Address // Resource being dispersed; empty means native
	Spec   TransferSpec   // Validated input-mode union
}

// OrchestrationResult carries the two independent ordered bundle lists one
// dispersal plan produces. The caller's obligation is to execute and confirm
// every provisioning bundle before submitting any transfer bundle; a
// transfer targeting an unprovisioned recipient is expected to be rejected
// by the ledger. The engine does not enforce that ordering.
type OrchestrationResult struct {
	ProvisioningBundles []ledger.Bundle `json:"provisioningBundles"`
	TransferBundles     []ledger.Bundle `json:"transferBundles"`
}

// Orchestrator composes the existence filter and the bundle packer into the
// two-phase dispersal pipeline: provisioning bundles for recipients whose
// accounts are missing, then transfer bundles for every request. Each call
// is a pure pipeline from input to result with one external side-effecting
// step (the account lookups); the orchestrator holds no state across calls.
type Orchestrator struct {
	ledger Ledger
	config *Config
}

// NewOrchestrator creates an orchestrator over the given ledger collaborator.
// A nil config uses defaults. The config is validated again at every call
// entry, so a caller mutating it between calls still fails fast rather than
// packing with a broken capacity.
func NewOrchestrator(client Ledger, config *Config) (*Orchestrator, error) {
	if client == nil {
		return nil, fmt.Errorf("ledger client cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Orchestrator{ledger: client, config: config}, nil
}

// Orchestrate produces the full two-phase plan for a dispersal request.
//
// Pipeline, per call:
//  1. Derive the canonical recipient list from the request's input family.
//  2. Filter recipients through per-account existence lookups and pack the
//     unprovisioned subset into provisioning bundles, one account-creation
//     operation per recipient, no trailing marker.
//  3. Normalize the transfer input and pack it into transfer bundles, one
//     transfer operation per request plus a trailing memo built from the
//     configured annotation text and the sender.
//  4. Return both lists.
//
// Either the whole call succeeds or it fails with one typed error; there is
// no partial result. Capacity problems fail before any lookup is issued.
func (o *Orchestrator) Orchestrate(ctx context.Context, req DispersalRequest) (*OrchestrationResult, error) {
	if err := o.config.Validate(); err != nil {
		return nil, err
	}

	recipients, err := req.Spec.RecipientList()
	if err != nil {
		return nil, err
	}

	logging.Debug("Orchestrator: planning dispersal from %s to %d recipients", req.Sender, len(recipients))

	provisioning, err := o.provisioningBundles(ctx, req, recipients)
	if err != nil {
		return nil, err
	}

	transfers, err := o.transferBundles(req)
	if err != nil {
		return nil, err
	}

	logging.Info("Orchestrator: planned %d provisioning and %d transfer bundles",
		len(provisioning), len(transfers))

	return &OrchestrationResult{
		ProvisioningBundles: provisioning,
		TransferBundles:     transfers,
	}, nil
}

// TransferBundles is the narrow entry point for callers that already know
// every recipient account exists: it skips the existence filter entirely and
// returns only the transfer bundle list.
func (o *Orchestrator) TransferBundles(req DispersalRequest) ([]ledger.Bundle, error) {
	if err := o.config.Validate(); err != nil {
		return nil, err
	}
	return o.transferBundles(req)
}

// ProvisioningBundles is the narrow entry point for callers that only want
// the prerequisite account-creation phase, for example to provision ahead of
// a dispersal scheduled later.
func (o *Orchestrator) ProvisioningBundles(ctx context.Context, req DispersalRequest) ([]ledger.Bundle, error) {
	if err := o.config.Validate(); err != nil {
		return nil, err
	}

	recipients, err := req.Spec.RecipientList()
	if err != nil {
		return nil, err
	}

	return o.provisioningBundles(ctx, req, recipients)
}

// provisioningBundles runs the existence filter over the recipient list and
// packs one account-creation operation per unprovisioned recipient.
// Provisioning bundles carry no memo.
func (o *Orchestrator) provisioningBundles(ctx context.Context, req DispersalRequest, recipients []ledger.Address) ([]ledger.Bundle, error) {
	filter := NewFilter(o.ledger, o.config.LookupConcurrency)

	unprovisioned, err := filter.Unprovisioned(ctx, recipients, req.Mint)
	if err != nil {
		return nil, err
	}

	ops := make([]ledger.Operation, len(unprovisioned))
	for i, owner := range unprovisioned {
		ops[i] = o.ledger.BuildProvision(req.Sender, owner, req.Mint)
	}

	return Pack(ops, PackConfig{Capacity: o.config.ProvisioningCapacity}, o.ledger)
}

// transferBundles normalizes the request's input union and packs one
// transfer operation per request, with the annotation memo trailing each
// bundle.
func (o *Orchestrator) transferBundles(req DispersalRequest) ([]ledger.Bundle, error) {
	requests, err := req.Spec.Requests()
	if err != nil {
		return nil, err
	}

	ops := make([]ledger.Operation, len(requests))
	for i, request := range requests {
		ops[i] = o.ledger.BuildTransfer(req.Sender, request.Recipient, request.Amount)
	}

	marker := o.ledger.BuildAnnotation(o.config.AnnotationText, req.Sender)

	return Pack(ops, PackConfig{
		Capacity:       o.config.TransferCapacity,
		TrailingMarker: &marker,
	}, o.ledger)
}
