// Package ledger provides the external ledger collaborator for soltoolkit-sdk
// batch dispersal: address handling, opaque instruction building, bundle
// assembly, and the one network read the batching engine depends on (account
// existence lookup against a Solana JSON-RPC endpoint).
//
// The batching engine treats everything in this package as a thin
// collaborator: operations are opaque units it only counts, and builders are
// pure synchronous functions. Signing and submission live outside this
// repository entirely.
package ledger

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// AddressLength is the byte length of a decoded ledger public key.
const AddressLength = 32

// Address is a base58-encoded 32-byte public key identifying an account on
// the ledger. The zero value is not a valid address; use ParseAddress to
// construct validated addresses from user input.
type Address string

// ParseAddress decodes and validates a base58 address string. Returns an
// error if the string is not valid base58 or does not decode to exactly
// 32 bytes.
//
// Essential for rejecting malformed recipient and sender addresses at config
// time rather than letting them surface later as RPC failures mid-dispersal.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return "", fmt.Errorf("address cannot be empty")
	}

	raw, err := base58.Decode(s)
	if err != nil {
		return "", fmt.Errorf("invalid base58 address '%s': %w", s, err)
	}

	if len(raw) != AddressLength {
		return "", fmt.Errorf("address '%s' decodes to %d bytes, want %d", s, len(raw), AddressLength)
	}

	return Address(s), nil
}

// Bytes returns the decoded public key bytes for the address. Panics if the
// address was not produced by ParseAddress or one of the known program ID
// constants; callers holding an Address are expected to hold a valid one.
func (a Address) Bytes() []byte {
	raw, err := base58.Decode(string(a))
	if err != nil {
		panic(fmt.Sprintf("ledger: corrupt address %q: %v", string(a), err))
	}
	return raw
}

// String returns the base58 form of the address.
func (a Address) String() string {
	return string(a)
}

// Well-known program addresses referenced by the instruction builders.
const (
	// SystemProgramID executes native value transfers between accounts.
	SystemProgramID = Address("11111111111111111111111111111111")

	// TokenProgramID executes SPL token operations including token transfers.
	TokenProgramID = Address("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

	// AssociatedTokenProgramID creates associated token accounts that hold a
	// recipient's balance for a given mint. Provisioning bundles target it.
	AssociatedTokenProgramID = Address("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")

	// MemoProgramID records an arbitrary annotation string alongside a
	// transaction. Transfer bundles carry one memo operation each.
	MemoProgramID = Address("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")
)
