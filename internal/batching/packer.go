package batching

import (
	"github.com/agustinustheo/soltoolkit-sdk/internal/ledger"
)

// PackConfig controls one packing call: the content capacity per bundle and
// an optional trailing marker appended to every finalized bundle.
//
// Capacity bounds content operations only. When a marker is configured it is
// one additional operation beyond capacity, so a full bundle holds
// capacity+1 operations.
type PackConfig struct {
	Capacity       int               // Max content operations per bundle, must be >= 1
	TrailingMarker *ledger.Operation // Optional marker appended to each bundle
}

// Pack partitions an ordered operation sequence into bundles of at most
// Capacity content operations each, walking the input left to right and
// cutting a new bundle exactly when the current one reaches capacity or the
// input is exhausted. All operations are unit-weight, so this is a greedy
// fixed-capacity partition producing exactly ceil(N/Capacity) bundles.
//
// An empty input yields no bundles: a bundle is only finalized (and only
// receives its marker) when it holds at least one content operation, so a
// marker-only bundle can never be emitted. A non-positive capacity is
// rejected with a CapacityError before any assembly happens.
func Pack(ops []ledger.Operation, config PackConfig, assembler Assembler) ([]ledger.Bundle, error) {
	if config.Capacity < 1 {
		return nil, &CapacityError{Name: "bundle capacity", Capacity: config.Capacity}
	}

	if len(ops) == 0 {
		return nil, nil
	}

	bundles := make([]ledger.Bundle, 0, (len(ops)+config.Capacity-1)/config.Capacity)

	for start := 0; start < len(ops); start += config.Capacity {
		end := min(start+config.Capacity, len(ops))

		content := make([]ledger.Operation, end-start, end-start+1)
		copy(content, ops[start:end])

		if config.TrailingMarker != nil {
			content = append(content, *config.TrailingMarker)
		}

		bundles = append(bundles, assembler.Assemble(content))
	}

	return bundles, nil
}
