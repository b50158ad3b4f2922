// Package batching implements the core dispersal engine for soltoolkit-sdk:
// it converts a list of logical transfer requests into a minimal ordered
// sequence of fixed-capacity transaction bundles, determines which recipients
// need a prerequisite account-provisioning operation, and sequences
// provisioning bundles strictly before transfer bundles.
//
// This package owns the real design decisions of the repository: the
// capacity-driven packing cut points, the two-phase dependency ordering, and
// the input-mode dispatch between an explicit transfer list and a recipient
// list with one shared amount. Everything ledger-specific (instruction
// encoding, account lookup transport) is injected through the narrow
// interfaces defined in this file.
package batching

import (
	"context"

	"github.com/agustinustheo/soltoolkit-sdk/internal/ledger"
)

// Assembler groups an ordered operation list into one bundle. Defined here
// so the packer stays decoupled from any concrete instruction encoding and
// the same packing code path serves both the provisioning and transfer
// phases.
type Assembler interface {
	Assemble(ops []ledger.Operation) ledger.Bundle // Group operations into a bundle
}

// AccountLookup answers per-recipient account existence questions for the
// existence filter. One call per recipient; calls carry no ordering
// dependency between each other and may run concurrently.
type AccountLookup interface {
	LookupAccount(ctx context.Context, owner, mint ledger.Address) (bool, error)
}

// Ledger is the full collaborator surface the orchestrator composes: the
// lookup read plus pure operation builders and bundle assembly. The engine
// treats every builder as pure, synchronous, and side-effect-free; the only
// network traffic behind this interface is LookupAccount.
//
// Satisfied by ledger.Client implementations such as ledger.RPCClient, and
// by in-memory fakes in tests.
type Ledger interface {
	AccountLookup
	Assembler

	BuildTransfer(from, to ledger.Address, amount uint64) ledger.Operation
	BuildProvision(payer, owner, mint ledger.Address) ledger.Operation
	BuildAnnotation(text string, signer ledger.Address) ledger.Operation
}
