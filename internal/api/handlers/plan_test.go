package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agustinustheo/soltoolkit-sdk/internal/batching"
	"github.com/agustinustheo/soltoolkit-sdk/internal/ledger"
	"github.com/gin-gonic/gin"
)

// Valid 32-byte base58 addresses for request bodies.
const (
	testSender    = "11111111111111111111111111111111"
	testRecipient = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	testMint      = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
)

// stubPlanner returns canned results so handler tests stay independent of
// the real engine.
type stubPlanner struct {
	result *batching.OrchestrationResult
	err    error
}

func (s *stubPlanner) Orchestrate(ctx context.Context, req batching.DispersalRequest) (*batching.OrchestrationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubPlanner) TransferBundles(req batching.DispersalRequest) ([]ledger.Bundle, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result.TransferBundles, nil
}

func (s *stubPlanner) ProvisioningBundles(ctx context.Context, req batching.DispersalRequest) ([]ledger.Bundle, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result.ProvisioningBundles, nil
}

// postPlan runs one request through a handler and returns the recorder.
func postPlan(handler gin.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST(path, handler)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)

	return recorder
}

// TestHandlePlan_Success tests the full plan endpoint happy path
func TestHandlePlan_Success(t *testing.T) {
	planner := &stubPlanner{result: &batching.OrchestrationResult{
		ProvisioningBundles: []ledger.Bundle{{Operations: []ledger.Operation{{}}}},
		TransferBundles: []ledger.Bundle{
			{Operations: []ledger.Operation{{}, {}}},
			{Operations: []ledger.Operation{{}}},
		},
	}}

	body := fmt.Sprintf(`{"sender":%q,"mint":%q,"recipients":[%q],"fixedAmount":5}`,
		testSender, testMint, testRecipient)

	recorder := postPlan(HandlePlan(planner), "/v1/plan", body)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response PlanResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response.Status != "ok" {
		t.Errorf("Expected status ok, got %s", response.Status)
	}
	if response.ProvisioningBundleCount != 1 {
		t.Errorf("Expected 1 provisioning bundle, got %d", response.ProvisioningBundleCount)
	}
	if response.TransferBundleCount != 2 {
		t.Errorf("Expected 2 transfer bundles, got %d", response.TransferBundleCount)
	}
}

// TestHandlePlan_BadRequests tests request validation failures
func TestHandlePlan_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Malformed JSON", `{"sender":`},
		{"Missing sender", fmt.Sprintf(`{"recipients":[%q],"fixedAmount":5}`, testRecipient)},
		{"Invalid sender address", fmt.Sprintf(`{"sender":"not-base58!","recipients":[%q],"fixedAmount":5}`, testRecipient)},
		{"Invalid recipient address", fmt.Sprintf(`{"sender":%q,"recipients":["abc"],"fixedAmount":5}`, testSender)},
		{"Invalid mint address", fmt.Sprintf(`{"sender":%q,"mint":"abc","recipients":[%q],"fixedAmount":5}`, testSender, testRecipient)},
		{"Neither input family", fmt.Sprintf(`{"sender":%q}`, testSender)},
		{"Recipients without amount", fmt.Sprintf(`{"sender":%q,"recipients":[%q]}`, testSender, testRecipient)},
	}

	planner := &stubPlanner{result: &batching.OrchestrationResult{}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := postPlan(HandlePlan(planner), "/v1/plan", tt.body)

			if recorder.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d: %s", recorder.Code, recorder.Body.String())
			}
		})
	}
}

// TestHandlePlan_EngineErrors tests mapping of typed engine errors onto
// HTTP status codes
func TestHandlePlan_EngineErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "Lookup failure maps to bad gateway",
			err:        &batching.LookupError{Recipient: "A", Err: fmt.Errorf("rpc down")},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "Capacity error maps to bad request",
			err:        &batching.CapacityError{Name: "transfer capacity", Capacity: 0},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Config error maps to bad request",
			err:        &batching.ConfigError{Reason: "no valid transfer specification"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Unknown error maps to internal error",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	body := fmt.Sprintf(`{"sender":%q,"recipients":[%q],"fixedAmount":5}`, testSender, testRecipient)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := postPlan(HandlePlan(&stubPlanner{err: tt.err}), "/v1/plan", body)

			if recorder.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.wantStatus, recorder.Code, recorder.Body.String())
			}
		})
	}
}

// TestHandleTransferPlan tests the transfer-only endpoint
func TestHandleTransferPlan(t *testing.T) {
	planner := &stubPlanner{result: &batching.OrchestrationResult{
		TransferBundles: []ledger.Bundle{{Operations: []ledger.Operation{{}}}},
	}}

	body := fmt.Sprintf(`{"sender":%q,"transfers":[{"recipient":%q,"amount":10}]}`,
		testSender, testRecipient)

	recorder := postPlan(HandleTransferPlan(planner), "/v1/plan/transfers", body)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response PlanResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.TransferBundleCount != 1 {
		t.Errorf("Expected 1 transfer bundle, got %d", response.TransferBundleCount)
	}
	if response.ProvisioningBundleCount != 0 {
		t.Errorf("Expected no provisioning bundles, got %d", response.ProvisioningBundleCount)
	}
}

// TestHandleProvisioningPlan tests the provisioning-only endpoint
func TestHandleProvisioningPlan(t *testing.T) {
	planner := &stubPlanner{result: &batching.OrchestrationResult{
		ProvisioningBundles: []ledger.Bundle{{Operations: []ledger.Operation{{}}}},
	}}

	body := fmt.Sprintf(`{"sender":%q,"recipients":[%q],"fixedAmount":1}`, testSender, testRecipient)

	recorder := postPlan(HandleProvisioningPlan(planner), "/v1/plan/provisioning", body)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response PlanResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.ProvisioningBundleCount != 1 {
		t.Errorf("Expected 1 provisioning bundle, got %d", response.ProvisioningBundleCount)
	}
}
