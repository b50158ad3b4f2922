package api

import (
	"fmt"

	"github.com/agustinustheo/soltoolkit-sdk/internal/batching"
	"github.com/agustinustheo/soltoolkit-sdk/internal/validate"
)

// Config holds configuration for the dispersal planning API server.
// Carries the ledger collaborator and batching configuration the server
// plans against, plus the HTTP bind endpoint.
type Config struct {
	BindAddr string           // IP address to bind the HTTP server to
	BindPort int              // Port for the HTTP server
	Ledger   batching.Ledger  // Ledger collaborator used for lookups and building
	Batch    *batching.Config // Planning configuration; nil uses defaults
}

// Validate checks the API server configuration before startup.
func (c *Config) Validate() error {
	if err := validate.ValidateRequiredString(c.BindAddr, "bind address"); err != nil {
		return err
	}
	if err := validate.ValidateField(c.BindPort, "required,min=1,max=65535"); err != nil {
		return fmt.Errorf("invalid bind port %d: %w", c.BindPort, err)
	}
	if c.Ledger == nil {
		return fmt.Errorf("ledger collaborator cannot be nil")
	}
	if c.Batch != nil {
		if err := c.Batch.Validate(); err != nil {
			return err
		}
	}
	return nil
}
