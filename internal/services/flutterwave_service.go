package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FlutterwaveService verifies payment transactions against the
// Flutterwave API. The browser widget collects the card payment; the
// server must never trust the client-reported outcome, so every
// registration re-verifies the transaction id before the tenant advances.
type FlutterwaveService interface {
	VerifyTransaction(ctx context.Context, transactionID int64) (*FlutterwaveTransaction, error)
}

type flutterwaveService struct {
	secretKey string
	baseURL   string
	http      *http.Client
}

// FlutterwaveTransaction is the subset of the verify response the
// onboarding flow cares about.
type FlutterwaveTransaction struct {
	ID            int64   `json:"id"`
	TxRef         string  `json:"tx_ref"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	PaymentType   string  `json:"payment_type"`
	ProcessorCode string  `json:"processor_response"`
}

type flutterwaveVerifyResponse struct {
	Status  string                  `json:"status"`
	Message string                  `json:"message"`
	Data    *FlutterwaveTransaction `json:"data"`
}

// NewFlutterwaveService creates a Flutterwave client using the account
// secret key.
func NewFlutterwaveService(secretKey string) FlutterwaveService {
	return newFlutterwaveService(secretKey, "https://api.flutterwave.com/v3")
}

func newFlutterwaveService(secretKey, baseURL string) FlutterwaveService {
	return &flutterwaveService{
		secretKey: secretKey,
		baseURL:   baseURL,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// VerifyTransaction fetches the authoritative state of a transaction.
// A non-"successful" transaction status is returned to the caller as
// data, not an error; deciding whether to accept it is the onboarding
// service's job.
func (s *flutterwaveService) VerifyTransaction(ctx context.Context, transactionID int64) (*FlutterwaveTransaction, error) {
	url := fmt.Sprintf("%s/transactions/%d/verify", s.baseURL, transactionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flutterwave request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flutterwave verify returned %d: %s", resp.StatusCode, string(body))
	}

	var verifyResp flutterwaveVerifyResponse
	if err := json.Unmarshal(body, &verifyResp); err != nil {
		return nil, fmt.Errorf("failed to parse flutterwave response: %w", err)
	}
	if verifyResp.Status != "success" || verifyResp.Data == nil {
		return nil, fmt.Errorf("flutterwave verify failed: %s", verifyResp.Message)
	}

	return verifyResp.Data, nil
}
