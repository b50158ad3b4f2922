// Package batching implements the core dispersal engine for soltoolkit-sdk.
package batching

import (
	"fmt"

	"github.com/agustinustheo/soltoolkit-sdk/internal/validate"
)

const (
	// DefaultProvisioningCapacity is the default number of account-creation
	// operations packed into one provisioning bundle. Account creation is
	// heavier than a transfer, so provisioning bundles pack fewer operations.
	DefaultProvisioningCapacity = 12

	// DefaultTransferCapacity is the default number of transfer operations
	// packed into one transfer bundle, before the trailing memo is appended.
	DefaultTransferCapacity = 18

	// DefaultAnnotationText is the memo recorded on each transfer bundle when
	// the caller does not configure one.
	DefaultAnnotationText = "dispersed via soltoolkit"

	// DefaultLookupConcurrency bounds how many account existence lookups run
	// in flight at once during the provisioning phase.
	DefaultLookupConcurrency = 8
)

// Config holds the tuning knobs for dispersal planning. Capacities bound
// content operations per bundle; any positive value is correct, smaller
// values just produce more bundles. AnnotationText is stamped on every
// transfer bundle as a trailing memo operation.
type Config struct {
	ProvisioningCapacity int    `json:"provisioning_capacity"` // Max account creations per provisioning bundle
	TransferCapacity     int    `json:"transfer_capacity"`     // Max transfers per transfer bundle
	AnnotationText       string `json:"annotation_text"`       // Memo text for transfer bundles
	LookupConcurrency    int    `json:"lookup_concurrency"`    // Max in-flight existence lookups
}

// DefaultConfig returns a Config with capacities sized to keep each bundle
// within typical transaction size limits while minimizing bundle count.
// These are pure tuning values with no correctness dependency.
func DefaultConfig() *Config {
	return &Config{
		ProvisioningCapacity: DefaultProvisioningCapacity,
		TransferCapacity:     DefaultTransferCapacity,
		AnnotationText:       DefaultAnnotationText,
		LookupConcurrency:    DefaultLookupConcurrency,
	}
}

// Validate checks all planning parameters before any lookup is issued.
// Non-positive capacities are rejected as typed capacity errors so callers
// can fail fast at call entry.
func (c *Config) Validate() error {
	if err := validate.ValidatePositiveCapacity(c.ProvisioningCapacity, "provisioning capacity"); err != nil {
		return &CapacityError{Name: "provisioning capacity", Capacity: c.ProvisioningCapacity}
	}
	if err := validate.ValidatePositiveCapacity(c.TransferCapacity, "transfer capacity"); err != nil {
		return &CapacityError{Name: "transfer capacity", Capacity: c.TransferCapacity}
	}
	if c.LookupConcurrency <= 0 {
		return fmt.Errorf("lookup concurrency must be positive, got %d", c.LookupConcurrency)
	}
	return nil
}
