package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/commercelink/reseller_backend/apperrors"
	"github.com/commercelink/reseller_backend/config"
	"github.com/commercelink/reseller_backend/models"
)

// PaymentGateway disburses commission funds to resellers. Implementations
// are selected at construction time and injected; call sites never branch on
// environment state.
type PaymentGateway interface {
	Disburse(ctx context.Context, resellerID string, amount float64, referenceID, description string) (*models.DisbursementResult, error)
	// Mode reports "mock" or "live". Callers must not assume a mock-mode
	// success means the reseller was actually paid.
	Mode() string
}

// NewGateway selects the gateway implementation from configuration. Without
// an API key the mock gateway is used, with a loud warning so a production
// deployment never silently fabricates payouts.
func NewGateway(cfg *config.Config) PaymentGateway {
	if cfg.GatewayAPIKey == "" {
		log.Warn("GATEWAY_API_KEY not configured: using mock payment gateway, no real funds will move")
		return &MockGateway{}
	}

	log.WithFields(log.Fields{
		"baseURL":     cfg.GatewayBaseURL,
		"environment": cfg.GatewayEnv,
	}).Info("Payment gateway configured")

	return &LiveGateway{
		baseURL: cfg.GatewayBaseURL,
		apiKey:  cfg.GatewayAPIKey,
		channel: cfg.GatewayChannel,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// MockGateway reports success synchronously without contacting any
// processor. Used in development and tests.
type MockGateway struct{}

func (g *MockGateway) Mode() string { return "mock" }

func (g *MockGateway) Disburse(ctx context.Context, resellerID string, amount float64, referenceID, description string) (*models.DisbursementResult, error) {
	log.WithFields(log.Fields{
		"resellerId": resellerID,
		"amount":     amount,
		"reference":  referenceID,
	}).Info("Mock disbursement completed")

	return &models.DisbursementResult{
		Success:       true,
		TransactionID: "mock_" + uuid.NewString(),
		Status:        "completed",
	}, nil
}

// LiveGateway calls the external payment processor over HTTP. Every request
// has a bounded timeout; a timeout after the request was sent is reported as
// an unknown-outcome GatewayError, never as success.
type LiveGateway struct {
	baseURL string
	apiKey  string
	channel string
	client  *http.Client
}

func (g *LiveGateway) Mode() string { return "live" }

func (g *LiveGateway) Disburse(ctx context.Context, resellerID string, amount float64, referenceID, description string) (*models.DisbursementResult, error) {
	payload := models.GatewayRequest{
		ResellerID:  resellerID,
		Amount:      amount,
		Currency:    "USD",
		ReferenceID: referenceID,
		Description: description,
	}

	resp, err := g.makeRequest(ctx, http.MethodPost, "payouts", payload)
	if err != nil {
		return nil, err
	}

	result := &models.DisbursementResult{Success: true}
	if txID, ok := resp.Data["transactionId"].(string); ok {
		result.TransactionID = txID
	}
	if status, ok := resp.Data["status"].(string); ok {
		result.Status = status
	}
	if result.TransactionID == "" {
		return nil, &apperrors.GatewayError{Message: "missing transactionId in processor response"}
	}

	return result, nil
}

// makeRequest performs an HTTP request to the processor API
func (g *LiveGateway) makeRequest(ctx context.Context, method, endpoint string, payload interface{}) (*models.GatewayResponse, error) {
	url := g.baseURL + endpoint

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	if g.channel != "" {
		req.Header.Set("channel", g.channel)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		// The request may have reached the processor before the timeout;
		// the outcome is unknown and must not be treated as failure-safe.
		unknown := errors.Is(err, context.DeadlineExceeded) || isTimeout(err)
		return nil, &apperrors.GatewayError{Message: "request failed", Unknown: unknown, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.GatewayError{Message: "failed to read response", Err: err}
	}

	var gwResp models.GatewayResponse
	if err := json.Unmarshal(respBody, &gwResp); err != nil {
		return nil, &apperrors.GatewayError{Message: fmt.Sprintf("failed to parse response: %s", string(respBody)), Err: err}
	}

	if resp.StatusCode >= 400 || !gwResp.Status {
		code := "unknown"
		if gwResp.Code != nil {
			code = fmt.Sprintf("%v", gwResp.Code)
		}
		log.WithFields(log.Fields{
			"httpStatus": resp.StatusCode,
			"code":       code,
		}).Error("Processor rejected request")
		return nil, &apperrors.GatewayError{Message: "processor error: " + code}
	}

	return &gwResp, nil
}

func isTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
