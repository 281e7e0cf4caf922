// Package http implements the Store API gateway over HTTP.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bft-labs/hubstore/internal/domain"
	"github.com/bft-labs/hubstore/internal/ports"
)

const processedAgentDataEndpoint = "/processed_agent_data/"

// maxErrorBody caps how much of an error response is kept for logging.
const maxErrorBody = 4 << 10

// StoreAPIAdapter implements ports.StoreGateway using HTTP.
type StoreAPIAdapter struct {
	baseURL string
	client  ports.HTTPClient
	logger  ports.Logger
}

// NewStoreAPIAdapter creates a gateway posting to {baseURL}/processed_agent_data/.
// The base URL is used exactly as given.
func NewStoreAPIAdapter(baseURL string, client ports.HTTPClient, logger ports.Logger) *StoreAPIAdapter {
	return &StoreAPIAdapter{
		baseURL: baseURL,
		client:  client,
		logger:  logger,
	}
}

// URL returns the endpoint batches are posted to.
func (a *StoreAPIAdapter) URL() string {
	return a.baseURL + processedAgentDataEndpoint
}

// SaveData submits the batch in a single POST and reports whether the store
// answered 200 OK. Unsupported input is rejected before any request is made.
func (a *StoreAPIAdapter) SaveData(ctx context.Context, batch any) bool {
	payload, err := domain.BuildPayload(batch)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedInput) {
			a.logger.Error("unsupported data type", ports.String("type", fmt.Sprintf("%T", batch)))
		} else {
			a.logger.Error("failed to serialize batch", ports.Err(err))
		}
		return false
	}

	status, err := a.post(ctx, payload)
	if err != nil {
		a.logger.Error("error while saving data to store API", ports.Err(err), ports.Any("data", payload))
		return false
	}

	if status != http.StatusOK {
		a.logger.Debug("store API answered without 200 OK", ports.Int("status", status))
		return false
	}
	return true
}

// post sends the payload and returns the response status code. Transport
// failures and statuses of 400 and above are returned as errors.
func (a *StoreAPIAdapter) post(ctx context.Context, payload any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.URL(), bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			a.logger.Debug("failed to read error response body", ports.Err(err))
		}
		return resp.StatusCode, &domain.StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
