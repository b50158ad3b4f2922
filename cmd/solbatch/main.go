// Package main implements the solbatch CLI.
// solbatch plans batched ledger dispersals: it groups transfer and account
// provisioning operations into capacity-bounded bundles, either printing the
// plan as JSON or serving it over the planning HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/agustinustheo/soltoolkit-sdk/internal/api"
	"github.com/agustinustheo/soltoolkit-sdk/internal/batching"
	"github.com/agustinustheo/soltoolkit-sdk/internal/ledger"
	"github.com/agustinustheo/soltoolkit-sdk/internal/logging"
	"github.com/agustinustheo/soltoolkit-sdk/internal/validate"
	"github.com/agustinustheo/soltoolkit-sdk/internal/version"
	"github.com/spf13/cobra"
)

const (
	DefaultRPCURL = "https://api.devnet.solana.com" // Default RPC endpoint
	DefaultBind   = "127.0.0.1:8090"                // Default planning API bind address
)

// Global configuration
var config struct {
	RPCURL   string // JSON-RPC endpoint for account lookups
	LogLevel string // Log level: DEBUG, INFO, WARN, ERROR

	// Dispersal input (plan command)
	Sender        string   // Sender address (base58)
	Mint          string   // Token mint address; empty means native transfers
	Recipients    []string // Recipient addresses for fixed-amount dispersal
	Amount        uint64   // Fixed amount sent to every recipient
	TransfersFile string   // JSON file with explicit per-recipient transfers
	TransferOnly  bool     // Skip account lookups and emit transfer bundles only
	Verbose       bool     // Show planning logs alongside the JSON output

	// Batching overrides
	ProvisioningCapacity int    // Operations per provisioning bundle
	TransferCapacity     int    // Operations per transfer bundle
	Annotation           string // Annotation text appended to each transfer bundle
	Concurrency          int    // Parallel account lookups

	// Serve command
	BindAddr string // Planning API bind address
	BindPort int    // Planning API bind port
	LogFile  string // Optional log file; empty keeps stdout/stderr logging
}

// Root command
var rootCmd = &cobra.Command{
	Use:   "solbatch",
	Short: "Batch dispersal planner for ledger transfers",
	Long: `solbatch plans batched dispersals of native and token transfers.

Given a sender and a set of recipients it builds two bundle sets: account
provisioning bundles for recipients whose token accounts do not exist yet,
and transfer bundles carrying the payments themselves, each bundle bounded
by a configurable operation capacity.`,
	Version:      version.SolbatchVersion,
	SilenceUsage: true,
}

// Plan command (one-shot dispersal plan printed as JSON)
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build a dispersal plan and print it as JSON",
	Long: `Build a two-phase dispersal plan and print it to stdout as JSON.

The plan contains provisioning bundles for recipients whose accounts are
missing, followed by transfer bundles carrying the payments. Recipients can
be given either as a list with a fixed --amount, or as an explicit transfers
file with per-recipient amounts.`,
	Example: `  # Disperse 1000 units of a token to three recipients
  solbatch plan --sender=<addr> --mint=<mint> --amount=1000 \
    --recipients=<addr1>,<addr2>,<addr3>

  # Native transfers with explicit per-recipient amounts
  solbatch plan --sender=<addr> --transfers-file=transfers.json

  # Skip account lookups and emit transfer bundles only
  solbatch plan --sender=<addr> --mint=<mint> --amount=1000 \
    --recipients=<addr1>,<addr2> --transfer-only`,
	Args:    cobra.NoArgs,
	PreRunE: validatePlanConfig,
	RunE:    runPlan,
}

// Serve command (planning HTTP API)
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dispersal planning HTTP API",
	Long: `Run the planning HTTP API server.

Exposes the dispersal planner over HTTP: POST /v1/plan for full two-phase
plans, POST /v1/plan/transfers and POST /v1/plan/provisioning for the
individual phases, and GET /health for liveness checks.`,
	Example: `  # Serve on the default bind address
  solbatch serve --rpc-url=https://api.mainnet-beta.solana.com --mint=<mint>

  # Serve on all interfaces
  solbatch serve --bind=0.0.0.0:8090 --mint=<mint>`,
	Args:    cobra.NoArgs,
	PreRunE: validateServeConfig,
	RunE:    runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&config.RPCURL, "rpc-url", DefaultRPCURL,
		"JSON-RPC endpoint used for account existence lookups")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level", "INFO",
		"Log level: DEBUG, INFO, WARN, ERROR")
	rootCmd.PersistentFlags().StringVar(&config.Mint, "mint", "",
		"Token mint address; omit for native transfers")

	// Batching flags shared by plan and serve
	rootCmd.PersistentFlags().IntVar(&config.ProvisioningCapacity, "provisioning-capacity",
		batching.DefaultProvisioningCapacity, "Operations per provisioning bundle")
	rootCmd.PersistentFlags().IntVar(&config.TransferCapacity, "transfer-capacity",
		batching.DefaultTransferCapacity, "Operations per transfer bundle")
	rootCmd.PersistentFlags().StringVar(&config.Annotation, "memo",
		batching.DefaultAnnotationText, "Annotation text appended to each transfer bundle")
	rootCmd.PersistentFlags().IntVar(&config.Concurrency, "concurrency",
		batching.DefaultLookupConcurrency, "Parallel account existence lookups")

	// Plan flags
	planCmd.Flags().StringVar(&config.Sender, "sender", "",
		"Sender address funding the dispersal (base58)")
	planCmd.Flags().StringSliceVar(&config.Recipients, "recipients", nil,
		"Comma-separated recipient addresses, paired with --amount")
	planCmd.Flags().Uint64Var(&config.Amount, "amount", 0,
		"Fixed amount sent to every recipient in --recipients")
	planCmd.Flags().StringVar(&config.TransfersFile, "transfers-file", "",
		"JSON file with explicit transfers: [{\"recipient\":..., \"amount\":...}]")
	planCmd.Flags().BoolVar(&config.TransferOnly, "transfer-only", false,
		"Skip account lookups and emit transfer bundles only")
	planCmd.Flags().BoolVarP(&config.Verbose, "verbose", "v", false,
		"Show planning logs alongside the JSON output")
	planCmd.MarkFlagRequired("sender")

	// Serve flags
	serveCmd.Flags().StringVar(&config.BindAddr, "bind", DefaultBind,
		"Address and port to bind the planning API to (e.g., 0.0.0.0:8090)")
	serveCmd.Flags().StringVar(&config.LogFile, "log-file", "",
		"Write logs to this file instead of stdout/stderr")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(serveCmd)
}

// Validates shared flags before running any command
func validateCommonConfig() error {
	if err := validate.ValidateRequiredString(config.RPCURL, "rpc-url"); err != nil {
		return err
	}

	validLogLevels := map[string]bool{
		"DEBUG": true,
		"INFO":  true,
		"WARN":  true,
		"ERROR": true,
	}
	if !validLogLevels[config.LogLevel] {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}
	logging.SetLevel(config.LogLevel)

	return nil
}

// Validates plan command configuration
func validatePlanConfig(cmd *cobra.Command, args []string) error {
	if err := validateCommonConfig(); err != nil {
		return err
	}

	if len(config.Recipients) == 0 && config.TransfersFile == "" {
		return fmt.Errorf("either --recipients with --amount or --transfers-file is required")
	}
	if len(config.Recipients) > 0 && !cmd.Flags().Changed("amount") {
		return fmt.Errorf("--recipients requires --amount")
	}
	if err := validate.ValidateRecipientCount(len(config.Recipients)); err != nil {
		return err
	}

	return nil
}

// Validates serve command configuration
func validateServeConfig(cmd *cobra.Command, args []string) error {
	if err := validateCommonConfig(); err != nil {
		return err
	}

	// Parse and validate bind address using centralized validation
	netAddr, err := validate.ParseBindAddress(config.BindAddr)
	if err != nil {
		return fmt.Errorf("invalid bind address: %w", err)
	}

	// Server requires non-zero ports (port 0 would let OS choose)
	if err := validate.ValidateField(netAddr.Port, "required,min=1,max=65535"); err != nil {
		return fmt.Errorf("server requires specific port (not 0): %w", err)
	}

	config.BindAddr = netAddr.Host
	config.BindPort = netAddr.Port

	// Setup log file redirection if --log-file was specified
	if config.LogFile != "" {
		logDir := filepath.Dir(config.LogFile)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}

		handle, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", config.LogFile, err)
		}

		// Redirect all logging to the file
		logging.SetOutput(handle)
	}

	return nil
}

// Converts CLI flags to a batching config
func buildBatchConfig() *batching.Config {
	batchConfig := batching.DefaultConfig()

	batchConfig.ProvisioningCapacity = config.ProvisioningCapacity
	batchConfig.TransferCapacity = config.TransferCapacity
	batchConfig.AnnotationText = config.Annotation
	batchConfig.LookupConcurrency = config.Concurrency

	return batchConfig
}

// Builds the RPC-backed ledger client from CLI flags
func buildLedgerClient() (*ledger.RPCClient, ledger.Address, error) {
	var mint ledger.Address
	if config.Mint != "" {
		parsed, err := ledger.ParseAddress(config.Mint)
		if err != nil {
			return nil, "", fmt.Errorf("invalid mint: %w", err)
		}
		mint = parsed
	}

	client, err := ledger.NewRPCClient(config.RPCURL, mint, ledger.DefaultRPCConfig())
	if err != nil {
		return nil, "", fmt.Errorf("failed to create RPC client: %w", err)
	}

	return client, mint, nil
}

// Reads an explicit transfers file: a JSON array of recipient/amount pairs
func readTransfersFile(path string) ([]batching.TransferRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transfers file: %w", err)
	}

	var entries []struct {
		Recipient string `json:"recipient"`
		Amount    uint64 `json:"amount"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid transfers file: %w", err)
	}

	transfers := make([]batching.TransferRequest, 0, len(entries))
	for i, entry := range entries {
		recipient, err := ledger.ParseAddress(entry.Recipient)
		if err != nil {
			return nil, fmt.Errorf("invalid recipient at index %d: %w", i, err)
		}
		transfers = append(transfers, batching.TransferRequest{
			Recipient: recipient,
			Amount:    entry.Amount,
		})
	}

	return transfers, nil
}

// Builds the dispersal request from CLI flags
func buildDispersalRequest(cmd *cobra.Command, mint ledger.Address) (batching.DispersalRequest, error) {
	sender, err := ledger.ParseAddress(config.Sender)
	if err != nil {
		return batching.DispersalRequest{}, fmt.Errorf("invalid sender: %w", err)
	}

	var transfers []batching.TransferRequest
	if config.TransfersFile != "" {
		if transfers, err = readTransfersFile(config.TransfersFile); err != nil {
			return batching.DispersalRequest{}, err
		}
	}

	var recipients []ledger.Address
	for i, raw := range config.Recipients {
		recipient, err := ledger.ParseAddress(raw)
		if err != nil {
			return batching.DispersalRequest{}, fmt.Errorf("invalid recipient at index %d: %w", i, err)
		}
		recipients = append(recipients, recipient)
	}

	var fixedAmount *uint64
	if cmd.Flags().Changed("amount") {
		fixedAmount = &config.Amount
	}

	spec, err := batching.SpecFromParts(transfers, recipients, fixedAmount)
	if err != nil {
		return batching.DispersalRequest{}, err
	}

	return batching.DispersalRequest{Sender: sender, Mint: mint, Spec: spec}, nil
}

// Runs the plan command: builds the plan and prints it as JSON
func runPlan(cmd *cobra.Command, args []string) error {
	// Keep stdout clean for the JSON plan unless verbose output is requested
	if config.Verbose {
		logging.RestoreOutput()
		logging.SetLevel("DEBUG")
	} else {
		logging.SuppressOutput()
	}

	client, mint, err := buildLedgerClient()
	if err != nil {
		return err
	}

	orchestrator, err := batching.NewOrchestrator(client, buildBatchConfig())
	if err != nil {
		return err
	}

	req, err := buildDispersalRequest(cmd, mint)
	if err != nil {
		return err
	}

	var result *batching.OrchestrationResult
	if config.TransferOnly {
		bundles, err := orchestrator.TransferBundles(req)
		if err != nil {
			return err
		}
		result = &batching.OrchestrationResult{TransferBundles: bundles}
	} else {
		if result, err = orchestrator.Orchestrate(cmd.Context(), req); err != nil {
			return err
		}
	}

	logging.Info("Planned %d provisioning and %d transfer bundles",
		len(result.ProvisioningBundles), len(result.TransferBundles))

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	fmt.Println(string(output))

	return nil
}

// Runs the planning API server with graceful shutdown handling
func runServe(cmd *cobra.Command, args []string) error {
	logging.Info("Starting solbatch planning API v%s", version.SolbatchVersion)
	logging.Info("RPC endpoint: %s", config.RPCURL)
	logging.Info("Binding to %s:%d", config.BindAddr, config.BindPort)

	client, _, err := buildLedgerClient()
	if err != nil {
		return err
	}

	server, err := api.NewServer(&api.Config{
		BindAddr: config.BindAddr,
		BindPort: config.BindPort,
		Ledger:   client,
		Batch:    buildBatchConfig(),
	})
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logging.Info("Server running... Press Ctrl+C to shutdown")

	sig := <-sigCh
	logging.Info("Received signal: %v", sig)

	// Graceful shutdown
	logging.Info("Initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("Error shutting down API server: %v", err)
	}

	logging.Success("solbatch shutdown completed")
	return nil
}

// Main entry point
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
