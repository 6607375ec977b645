package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultLoopsURL is the transactional send endpoint.
const DefaultLoopsURL = "https://app.loops.so/api/v1/transactional"

// LoopsSender sends codes through the Loops transactional API.
type LoopsSender struct {
	apiKey          string
	transactionalID string
	url             string
	httpClient      *http.Client
}

// NewLoopsSender builds a sender for the given template.
func NewLoopsSender(apiKey, transactionalID string) *LoopsSender {
	return &LoopsSender{
		apiKey:          apiKey,
		transactionalID: transactionalID,
		url:             DefaultLoopsURL,
		httpClient:      &http.Client{Timeout: 10 * time.Second},
	}
}

// SendOTP posts the code to the template. The code is passed under three
// variable names because deployed templates have referenced all three at
// different times.
func (s *LoopsSender) SendOTP(ctx context.Context, to, code string) error {
	payload := map[string]any{
		"transactionalId": s.transactionalID,
		"email":           to,
		"dataVariables": map[string]string{
			"otp":  code,
			"OTP":  code,
			"code": code,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("email service responded %d: %s", resp.StatusCode, raw)
	}
	return nil
}
