// Package validate provides configuration validation utilities for
// soltoolkit-sdk components.
//
// This file implements common validation patterns used across the batching
// and API config packages to ensure consistency and reduce duplication. All
// functions leverage the go-playground/validator library for standardized
// validation behavior.
package validate

import (
	"fmt"
)

// ValidatePositiveCapacity validates that a bundle capacity is a positive
// integer. Uses the validator library for consistent error handling and
// messaging.
//
// Critical for packing configuration: a non-positive capacity cannot cut
// bundles and must be rejected at call entry, before any account lookup or
// operation building takes place.
func ValidatePositiveCapacity(capacity int, name string) error {
	if err := ValidateField(capacity, "required,min=1"); err != nil {
		return fmt.Errorf("%s must be positive, got: %d", name, capacity)
	}
	return nil
}

// ValidateRequiredString validates that a string field is not empty.
// Uses the validator library for consistent error handling across config validation.
//
// Critical for ensuring required configuration fields like sender addresses
// and RPC endpoints are properly specified before dispersal planning begins.
// Prevents runtime failures from missing essential configuration parameters.
func ValidateRequiredString(value, fieldName string) error {
	if err := ValidateField(value, "required"); err != nil {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidateRecipientCount validates that a recipient list is within a sane
// planning bound. Rejects absurdly large inputs that would otherwise fan out
// an unbounded number of account lookups in a single orchestration call.
func ValidateRecipientCount(count int) error {
	if count < 0 {
		return fmt.Errorf("recipient count cannot be negative, got: %d", count)
	}
	if count > 100000 {
		return fmt.Errorf("recipient count too large (max 100000), got: %d", count)
	}
	return nil
}
