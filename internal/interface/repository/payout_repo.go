package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"flightsurety-service/internal/domain/repository"
	"flightsurety-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HTTPPayoutGateway sends passenger payouts to an external transfer service
type HTTPPayoutGateway struct {
	logger  logger.Logger
	baseURL string
	client  *http.Client
}

// NewHTTPPayoutGateway creates a gateway posting to baseURL. The client carries
// authentication, see oauth.NewClientCredentialsClient.
func NewHTTPPayoutGateway(baseURL string, client *http.Client, logger logger.Logger) repository.PayoutGateway {
	return &HTTPPayoutGateway{
		logger:  logger,
		baseURL: baseURL,
		client:  client,
	}
}

type transferRequest struct {
	IdempotencyKey string          `json:"idempotencyKey"`
	Beneficiary    string          `json:"beneficiary"`
	Amount         decimal.Decimal `json:"amount"`
}

// Transfer posts one transfer and returns the service's reference. The withdrawal ID is
// the idempotency key, so a retried or timed-out transfer can be matched to its record.
func (g *HTTPPayoutGateway) Transfer(ctx context.Context, withdrawalID, passenger string, amount decimal.Decimal) (string, error) {
	if withdrawalID == "" {
		return "", fmt.Errorf("withdrawal id is required")
	}
	body := transferRequest{
		IdempotencyKey: withdrawalID,
		Beneficiary:    passenger,
		Amount:         amount,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal transfer: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/transfers", g.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", body.IdempotencyKey)

	g.logger.Info("Sending payout transfer",
		"beneficiary", passenger,
		"amount", amount.String(),
		"idempotencyKey", body.IdempotencyKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errorBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return "", fmt.Errorf("payout service returned status %d: %v", resp.StatusCode, errorBody)
	}

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			Reference string `json:"reference"`
			Status    string `json:"status"`
		} `json:"data"`
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if !response.Success {
		return "", fmt.Errorf("transfer rejected: %s (code: %s)", response.Error.Message, response.Error.Code)
	}

	g.logger.Info("Payout transfer accepted",
		"reference", response.Data.Reference,
		"status", response.Data.Status,
		"beneficiary", passenger)

	return response.Data.Reference, nil
}

// LoggingPayoutGateway accepts every transfer without moving value. Used when no payout
// service is configured.
type LoggingPayoutGateway struct {
	logger logger.Logger
}

// NewLoggingPayoutGateway creates a dry-run gateway
func NewLoggingPayoutGateway(logger logger.Logger) repository.PayoutGateway {
	return &LoggingPayoutGateway{logger: logger}
}

func (g *LoggingPayoutGateway) Transfer(ctx context.Context, withdrawalID, passenger string, amount decimal.Decimal) (string, error) {
	reference := "dry-run-" + uuid.NewString()
	g.logger.Warn("Payout service not configured, transfer not executed",
		"withdrawal", withdrawalID,
		"beneficiary", passenger,
		"amount", amount.String(),
		"reference", reference)
	return reference, nil
}
