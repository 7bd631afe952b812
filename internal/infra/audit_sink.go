package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AuditSinkClient posts ledger audit events to the external audit-log
// service. The engine only produces events; retention, querying, and
// compliance live entirely on the sink's side.
type AuditSinkClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAuditSinkClient(baseURL string) *AuditSinkClient {
	return &AuditSinkClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Deliver sends one audit event. Any non-2xx status is an error so the
// caller's retry/DLQ policy kicks in.
func (c *AuditSinkClient) Deliver(ctx context.Context, event json.RawMessage) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/events", bytes.NewReader(event))
	if err != nil {
		return fmt.Errorf("audit sink: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("audit sink: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little of the body for the log line, then discard.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("audit sink: returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
