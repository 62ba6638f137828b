package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aerodesk/flightbooking/internal/domain"
)

// InventoryClient talks to a remotely deployed seat inventory ledger over
// its internal HTTP endpoints. It implements the same interface as the
// in-process ledger, so the booking orchestrator does not care which
// deployment it is wired to.
//
// Conflict responses are terminal business outcomes and are never retried
// here; only the transport may apply timeouts.
type InventoryClient struct {
	baseURL string
	http    *http.Client
}

func NewInventoryClient(baseURL string, timeout time.Duration) *InventoryClient {
	return &InventoryClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *InventoryClient) LockSeats(ctx context.Context, scheduleID string, seatNumbers []string) error {
	url := fmt.Sprintf("%s/internal/schedules/%s/lock-seats", c.baseURL, scheduleID)
	_, err := c.post(ctx, url, scheduleID, seatNumbers)
	return err
}

func (c *InventoryClient) ReleaseSeats(ctx context.Context, scheduleID string, seatNumbers []string) (int, error) {
	url := fmt.Sprintf("%s/internal/schedules/%s/release-seats", c.baseURL, scheduleID)
	body, err := c.post(ctx, url, scheduleID, seatNumbers)
	if err != nil {
		return 0, err
	}

	var resp struct {
		Released int `json:"released"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, domain.Internal("decode release response", err)
	}
	return resp.Released, nil
}

func (c *InventoryClient) post(ctx context.Context, url, scheduleID string, seatNumbers []string) ([]byte, error) {
	payload, err := json.Marshal(seatNumbers)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, domain.UpstreamUnavailable("inventory service unreachable", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, domain.UpstreamUnavailable("read inventory response", err)
	}

	switch {
	case res.StatusCode == http.StatusOK:
		return body, nil
	case res.StatusCode == http.StatusNotFound:
		return nil, domain.NotFound("%s", errorMessage(body, "flight schedule not found: "+scheduleID))
	case res.StatusCode == http.StatusConflict:
		return nil, domain.Conflict("%s", errorMessage(body, "seats unavailable"))
	case res.StatusCode == http.StatusBadRequest:
		return nil, domain.BadRequest("%s", errorMessage(body, "invalid seat request"))
	default:
		return nil, domain.Internal(fmt.Sprintf("inventory service returned %d", res.StatusCode), nil)
	}
}

func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return fallback
}
