// Package validate provides configuration validation utilities for
// soltoolkit-sdk components, ensuring dispersal and API configuration is
// well-formed before any RPC traffic is issued.
//
// Implements field, capacity, and network address validation using the
// go-playground/validator library. Prevents configuration errors that would
// otherwise surface mid-run as rejected bundles or failed lookups.
//
// VALIDATION FEATURES:
//   - Field: tag-driven validation for single values without struct definitions
//   - Capacity: positive bundle capacity checking for packing configuration
//   - Address: "host:port" parsing and validation for the planning API bind
//
// Used for validating batching configuration, CLI arguments, and API binds
// throughout dispersal planning.
package validate

import (
	"fmt"
	"net"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var (
	// Global validator instance using built-in validations
	validate *validator.Validate
)

func init() {
	validate = validator.New()
	// Using built-in validators: ip, min, max - no custom registration needed
}

// NetworkAddress represents a validated network address with host and port
// components for the planning API bind endpoint. Uses struct tags for
// automatic validation via the go-playground/validator library.
type NetworkAddress struct {
	Host string `validate:"required,ip"`              // Built-in IP validator
	Port int    `validate:"required,min=0,max=65535"` // Built-in range validator
}

// String returns the network address in standard "host:port" format suitable
// for listener binding, configuration display, and logging.
func (na NetworkAddress) String() string {
	return fmt.Sprintf("%s:%d", na.Host, na.Port)
}

// ParseBindAddress parses and validates a "host:port" address string for the
// planning API bind endpoint. Provides format checking, IP address validation,
// and port range verification.
//
// Essential for processing user-provided bind addresses from CLI arguments
// before attempting to listen, preventing runtime failures and providing
// clear error messages for troubleshooting.
func ParseBindAddress(addr string) (*NetworkAddress, error) {
	if addr == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address format '%s': %w", addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port '%s': %w", portStr, err)
	}

	netAddr := &NetworkAddress{
		Host: host,
		Port: port,
	}

	// Validate using struct tags
	if err := validate.Struct(netAddr); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return netAddr, nil
}

// ValidateField validates individual values against specified validation rules
// using the go-playground/validator library. Provides flexible validation for
// single fields without requiring struct definitions.
//
// Supports all built-in validation tags including numeric ranges, string
// patterns, and required field validation.
//
// Example: ValidateField(capacity, "required,min=1")
func ValidateField(value interface{}, tag string) error {
	return validate.Var(value, tag)
}
