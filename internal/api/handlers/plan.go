// Package handlers implements HTTP handlers for the dispersal planning API.
//
// PLAN ENDPOINTS:
//   - POST /v1/plan: full two-phase plan (provisioning + transfer bundles)
//   - POST /v1/plan/transfers: transfer bundles only, no lookups issued
//   - POST /v1/plan/provisioning: provisioning bundles only
//
// Handlers parse and validate the unified dispersal request, delegate to the
// batching engine, and map typed engine errors onto HTTP status codes:
// configuration problems are client errors, lookup failures are upstream
// (bad gateway) errors.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/agustinustheo/soltoolkit-sdk/internal/batching"
	"github.com/agustinustheo/soltoolkit-sdk/internal/ledger"
	"github.com/gin-gonic/gin"
)

// Planner is the slice of the batching engine the plan handlers consume.
// Satisfied by *batching.Orchestrator; narrow so handler tests can stub it.
type Planner interface {
	Orchestrate(ctx context.Context, req batching.DispersalRequest) (*batching.OrchestrationResult, error)
	TransferBundles(req batching.DispersalRequest) ([]ledger.Bundle, error)
	ProvisioningBundles(ctx context.Context, req batching.DispersalRequest) ([]ledger.Bundle, error)
}

// TransferInput is one explicit transfer in a plan request body.
type TransferInput struct {
	Recipient string `json:"recipient" binding:"required"`
	Amount    uint64 `json:"amount"`
}

// PlanRequest is the unified request body for all plan endpoints. Exactly
// one input family must be usable: a non-empty transfers list, or
// recipients together with fixedAmount.
type PlanRequest struct {
	Sender      string          `json:"sender" binding:"required"`
	Mint        string          `json:"mint"`
	Transfers   []TransferInput `json:"transfers"`
	Recipients  []string        `json:"recipients"`
	FixedAmount *uint64         `json:"fixedAmount"`
}

// PlanResponse wraps a plan result with counts for quick inspection.
type PlanResponse struct {
	Status                  string                        `json:"status"`
	ProvisioningBundleCount int                           `json:"provisioningBundleCount"`
	TransferBundleCount     int                           `json:"transferBundleCount"`
	Data                    *batching.OrchestrationResult `json:"data"`
}

// parseDispersalRequest validates the request body and converts it into the
// engine's typed dispersal request. Addresses are parsed strictly so
// malformed input fails here with a client error instead of surfacing later
// as RPC failures.
func parseDispersalRequest(c *gin.Context) (batching.DispersalRequest, bool) {
	var body PlanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return batching.DispersalRequest{}, false
	}

	sender, err := ledger.ParseAddress(body.Sender)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid sender: " + err.Error()})
		return batching.DispersalRequest{}, false
	}

	var mint ledger.Address
	if body.Mint != "" {
		if mint, err = ledger.ParseAddress(body.Mint); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid mint: " + err.Error()})
			return batching.DispersalRequest{}, false
		}
	}

	transfers := make([]batching.TransferRequest, 0, len(body.Transfers))
	for i, transfer := range body.Transfers {
		recipient, err := ledger.ParseAddress(transfer.Recipient)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"status": "error",
				"error":  "invalid recipient at index " + strconv.Itoa(i) + ": " + err.Error(),
			})
			return batching.DispersalRequest{}, false
		}
		transfers = append(transfers, batching.TransferRequest{Recipient: recipient, Amount: transfer.Amount})
	}

	var recipients []ledger.Address
	if body.Recipients != nil {
		recipients = make([]ledger.Address, 0, len(body.Recipients))
		for i, raw := range body.Recipients {
			recipient, err := ledger.ParseAddress(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"status": "error",
					"error":  "invalid recipient at index " + strconv.Itoa(i) + ": " + err.Error(),
				})
				return batching.DispersalRequest{}, false
			}
			recipients = append(recipients, recipient)
		}
	}

	spec, err := batching.SpecFromParts(transfers, recipients, body.FixedAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return batching.DispersalRequest{}, false
	}

	return batching.DispersalRequest{Sender: sender, Mint: mint, Spec: spec}, true
}

// writePlanError maps typed engine errors onto HTTP status codes.
func writePlanError(c *gin.Context, err error) {
	var cfgErr *batching.ConfigError
	var capErr *batching.CapacityError
	var lookupErr *batching.LookupError

	switch {
	case errors.As(err, &cfgErr), errors.As(err, &capErr):
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
	case errors.As(err, &lookupErr):
		c.JSON(http.StatusBadGateway, gin.H{"status": "error", "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
	}
}

// HandlePlan returns the full two-phase dispersal plan
func HandlePlan(planner Planner) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := parseDispersalRequest(c)
		if !ok {
			return
		}

		result, err := planner.Orchestrate(c.Request.Context(), req)
		if err != nil {
			writePlanError(c, err)
			return
		}

		c.JSON(http.StatusOK, PlanResponse{
			Status:                  "ok",
			ProvisioningBundleCount: len(result.ProvisioningBundles),
			TransferBundleCount:     len(result.TransferBundles),
			Data:                    result,
		})
	}
}

// HandleTransferPlan returns transfer bundles only, skipping the existence
// filter for callers that already know every recipient account exists
func HandleTransferPlan(planner Planner) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := parseDispersalRequest(c)
		if !ok {
			return
		}

		bundles, err := planner.TransferBundles(req)
		if err != nil {
			writePlanError(c, err)
			return
		}

		c.JSON(http.StatusOK, PlanResponse{
			Status:              "ok",
			TransferBundleCount: len(bundles),
			Data:                &batching.OrchestrationResult{TransferBundles: bundles},
		})
	}
}

// HandleProvisioningPlan returns provisioning bundles only
func HandleProvisioningPlan(planner Planner) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := parseDispersalRequest(c)
		if !ok {
			return
		}

		bundles, err := planner.ProvisioningBundles(c.Request.Context(), req)
		if err != nil {
			writePlanError(c, err)
			return
		}

		c.JSON(http.StatusOK, PlanResponse{
			Status:                  "ok",
			ProvisioningBundleCount: len(bundles),
			Data:                    &batching.OrchestrationResult{ProvisioningBundles: bundles},
		})
	}
}
