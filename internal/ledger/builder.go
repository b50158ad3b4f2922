package ledger

import (
	"encoding/binary"
)

// System program instruction indices, little-endian u32 discriminants.
const sysInstructionTransfer uint32 = 2

// Token program instruction tags, single-byte discriminants.
const tokenInstructionTransfer byte = 3

// Builder implements OperationBuilder with in-memory instruction encoding.
// A zero-mint Builder encodes native system transfers; a Builder carrying a
// mint encodes SPL token transfers against that mint.
//
// Encodings here go only as far as real payload layouts require for
// planning purposes; final wire correctness is the submitting ledger
// client's concern, not this repository's.
type Builder struct {
	Mint Address // Empty for native dispersals
}

// NewBuilder returns a builder for the given mint. Pass an empty address for
// native dispersals.
func NewBuilder(mint Address) *Builder {
	return &Builder{Mint: mint}
}

// BuildTransfer encodes a value-transfer operation. Native transfers carry
// the system program's u32 transfer discriminant followed by the amount as a
// little-endian u64. Token transfers carry the token program's single-byte
// transfer tag followed by the same u64 amount, with the mint appended to
// the account list so downstream assembly can resolve token accounts.
func (b *Builder) BuildTransfer(from, to Address, amount uint64) Operation {
	if b.Mint == "" {
		data := make([]byte, 12)
		binary.LittleEndian.PutUint32(data[0:4], sysInstructionTransfer)
		binary.LittleEndian.PutUint64(data[4:12], amount)

		return Operation{
			ProgramID: SystemProgramID,
			Accounts:  []Address{from, to},
			Data:      data,
		}
	}

	data := make([]byte, 9)
	data[0] = tokenInstructionTransfer
	binary.LittleEndian.PutUint64(data[1:9], amount)

	return Operation{
		ProgramID: TokenProgramID,
		Accounts:  []Address{from, to, b.Mint},
		Data:      data,
	}
}

// BuildProvision encodes an associated-token-account creation operation for
// owner and the builder's mint, funded by payer. The create instruction
// carries no payload; the account list alone drives it.
func (b *Builder) BuildProvision(payer, owner, mint Address) Operation {
	return Operation{
		ProgramID: AssociatedTokenProgramID,
		Accounts:  []Address{payer, owner, mint, SystemProgramID, TokenProgramID},
		Data:      nil,
	}
}

// BuildAnnotation encodes a memo operation carrying text, signed by signer.
func (b *Builder) BuildAnnotation(text string, signer Address) Operation {
	return Operation{
		ProgramID: MemoProgramID,
		Accounts:  []Address{signer},
		Data:      []byte(text),
	}
}

// Assemble groups an ordered operation list into a bundle. Operations keep
// their input order; the caller owns capacity decisions.
func (b *Builder) Assemble(ops []Operation) Bundle {
	return Bundle{Operations: ops}
}
