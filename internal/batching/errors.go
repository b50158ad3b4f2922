package batching

import (
	"fmt"

	"github.com/agustinustheo/soltoolkit-sdk/internal/ledger"
)

// ConfigError represents a dispersal configuration that names no usable
// transfer input: neither an explicit transfer list nor a recipient list
// with a shared amount. Fatal and surfaced immediately; retrying without
// changing the input cannot succeed.
type ConfigError struct {
	Reason string // Human-readable description of what is missing
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid dispersal config: %s", e.Reason)
}

// CapacityError represents a non-positive bundle capacity. Detected at call
// entry, before any account lookup is issued or operation is built.
type CapacityError struct {
	Name     string // Which capacity setting was rejected
	Capacity int    // The offending value
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s must be positive, got %d", e.Name, e.Capacity)
}

// LookupError represents a failed account existence check. One failed lookup
// fails the whole orchestration call: no partial bundle lists are returned,
// and the caller retries the entire plan.
type LookupError struct {
	Recipient ledger.Address // Recipient whose lookup failed
	Err       error          // Underlying collaborator error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("account lookup failed for %s: %v", e.Recipient, e.Err)
}

// Unwrap exposes the underlying collaborator error for errors.Is/As chains.
func (e *LookupError) Unwrap() error {
	return e.Err
}
