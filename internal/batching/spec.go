package batching

import (
	"github.com/agustinustheo/soltoolkit-sdk/internal/ledger"
)

// TransferRequest is one logical value transfer: a recipient and an amount
// in the smallest indivisible unit. Immutable once constructed; no decimal
// scaling happens at this layer.
type TransferRequest struct {
	Recipient ledger.Address `json:"recipient"`
	Amount    uint64         `json:"amount"`
}

// specMode discriminates the two input families a dispersal accepts.
type specMode int

const (
	specUnset        specMode = iota // Zero value: no valid input family
	specTransferList                 // Explicit {recipient, amount} pairs
	specFixedAmount                  // Recipient list sharing one amount
)

// TransferSpec is the validated input-mode union for a dispersal: either an
// explicit transfer list or a recipient list with one shared amount. Exactly
// one family is selected at construction time through SpecFromTransfers or
// SpecFromRecipients, which replaces runtime presence-checking of optional
// fields with a tagged variant.
//
// The zero value carries no family and fails normalization with a
// ConfigError.
type TransferSpec struct {
	mode        specMode
	transfers   []TransferRequest
	recipients  []ledger.Address
	fixedAmount uint64
}

// SpecFromTransfers selects the explicit transfer list family. Order of the
// given list is preserved through normalization; no deduplication and no
// address-format validation happens here (addresses are validated by the
// ledger collaborator when parsed).
func SpecFromTransfers(transfers []TransferRequest) TransferSpec {
	return TransferSpec{mode: specTransferList, transfers: transfers}
}

// SpecFromRecipients selects the shared-amount family: every recipient in
// the list receives fixedAmount. An empty list and a zero amount are both
// valid; the family is present either way.
func SpecFromRecipients(recipients []ledger.Address, fixedAmount uint64) TransferSpec {
	return TransferSpec{mode: specFixedAmount, recipients: recipients, fixedAmount: fixedAmount}
}

// SpecFromParts dispatches raw decoded input (JSON body or CLI flags) onto
// one of the two families. A non-empty transfer list wins; otherwise both
// recipients and fixedAmount must be present together. Anything else fails
// with a ConfigError, matching how half-specified input should be rejected
// before any planning work starts.
func SpecFromParts(transfers []TransferRequest, recipients []ledger.Address, fixedAmount *uint64) (TransferSpec, error) {
	if len(transfers) > 0 {
		return SpecFromTransfers(transfers), nil
	}
	if recipients != nil && fixedAmount != nil {
		return SpecFromRecipients(recipients, *fixedAmount), nil
	}
	return TransferSpec{}, &ConfigError{Reason: "no valid transfer specification"}
}

// Requests normalizes the spec into its canonical ordered transfer sequence.
// The explicit family passes through unchanged; the shared-amount family
// expands each recipient to a request carrying the fixed amount. Output
// order equals input order.
func (s TransferSpec) Requests() ([]TransferRequest, error) {
	switch s.mode {
	case specTransferList:
		return s.transfers, nil
	case specFixedAmount:
		requests := make([]TransferRequest, len(s.recipients))
		for i, recipient := range s.recipients {
			requests[i] = TransferRequest{Recipient: recipient, Amount: s.fixedAmount}
		}
		return requests, nil
	default:
		return nil, &ConfigError{Reason: "no valid transfer specification"}
	}
}

// RecipientList derives the canonical ordered recipient list for the
// provisioning phase, from whichever family the spec carries.
func (s TransferSpec) RecipientList() ([]ledger.Address, error) {
	switch s.mode {
	case specTransferList:
		recipients := make([]ledger.Address, len(s.transfers))
		for i, transfer := range s.transfers {
			recipients[i] = transfer.Recipient
		}
		return recipients, nil
	case specFixedAmount:
		return s.recipients, nil
	default:
		return nil, &ConfigError{Reason: "no valid transfer specification"}
	}
}
