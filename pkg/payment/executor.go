package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Executor performs a value transfer against the external payment service
// and reports the definitive outcome. An error means the outcome is unknown
// and the transfer will be redispatched under the same ref.
type Executor interface {
	Execute(ctx context.Context, req TransferRequest) (Result, error)
}

type transferResponse struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// HTTPExecutor posts transfers to the payment service endpoint.
type HTTPExecutor struct {
	endpoint string
	client   *http.Client
}

func NewHTTPExecutor(endpoint string, timeout time.Duration) *HTTPExecutor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPExecutor{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (e *HTTPExecutor) Execute(ctx context.Context, req TransferRequest) (Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode transfer %s: %w", req.Ref, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("failed to execute transfer %s: %w", req.Ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("payment service returned %d for transfer %s", resp.StatusCode, req.Ref)
	}

	var out transferResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("failed to decode response for transfer %s: %w", req.Ref, err)
	}

	return Result{
		OrderID: req.OrderID,
		Ref:     req.Ref,
		Success: out.Success,
		Reason:  out.Reason,
	}, nil
}
