// Package version provides centralized version information for soltoolkit-sdk.
// This package supports independent versioning for the library core and the
// solbatch CLI as separate deliverables within the repository, allowing them
// to evolve independently while staying consistent within each component.
// All versions follow semantic versioning (semver) conventions.

package version

// SDKVersion holds the current soltoolkit-sdk library version.
// Format: major.minor.patch[-prerelease][+build]
const SDKVersion = "0.1.0-dev"

// SolbatchVersion holds the current solbatch CLI version.
// This is used by the CLI binary and allows independent evolution
// of the command-line tool separate from the library core.
// Format: major.minor.patch[-prerelease][+build]
const SolbatchVersion = "0.1.0-dev"
