package ledger

import "context"

// Operation is one opaque instruction inside a bundle. The batching engine
// never inspects its contents; it only counts operations against a bundle
// capacity. Builders in this package produce them and an assembler groups
// them into bundles.
type Operation struct {
	ProgramID Address   `json:"programId"` // Program the instruction targets
	Accounts  []Address `json:"accounts"`  // Accounts referenced, in instruction order
	Data      []byte    `json:"data"`      // Raw instruction payload
}

// Bundle is an ordered, non-empty group of operations sized to fit one
// ledger transaction. Bundles are transient planning artifacts: callers sign
// and submit them externally, and nothing in this repository persists them.
type Bundle struct {
	Operations []Operation `json:"operations"`
}

// Size returns the number of operations in the bundle, including any
// trailing annotation operation.
func (b Bundle) Size() int {
	return len(b.Operations)
}

// AccountLookup answers whether a recipient already has the account a
// transfer would land in. For a native dispersal this is the recipient's
// system account; for an SPL mint it is the recipient's associated token
// account for that mint.
//
// The batching engine issues one lookup per recipient and treats any error
// as fatal to the whole orchestration call, so implementations should wrap
// transient transport failures with enough context to retry the call.
type AccountLookup interface {
	// LookupAccount reports whether owner already holds the account needed to
	// receive value for mint. An empty mint means the native token.
	LookupAccount(ctx context.Context, owner Address, mint Address) (bool, error)
}

// OperationBuilder constructs the opaque operations the batching engine
// packs. All builders are pure, synchronous, and side-effect-free: they
// encode instruction payloads in memory and never touch the network.
//
// Modeled as an injected capability so the packing algorithm stays decoupled
// from instruction encoding and can serve both the provisioning and the
// transfer phases with the same code path.
type OperationBuilder interface {
	// BuildTransfer returns a value-transfer operation moving amount (in the
	// smallest indivisible unit) from sender to recipient.
	BuildTransfer(from, to Address, amount uint64) Operation

	// BuildProvision returns an operation creating the recipient-side account
	// required before owner can receive value for mint, funded by payer.
	BuildProvision(payer, owner, mint Address) Operation

	// BuildAnnotation returns a memo operation recording text, signed by signer.
	BuildAnnotation(text string, signer Address) Operation

	// Assemble groups an ordered operation list into a bundle.
	Assemble(ops []Operation) Bundle
}

// Client is the full ledger collaborator surface consumed by the batching
// engine: one network read plus the pure builders.
type Client interface {
	AccountLookup
	OperationBuilder
}
