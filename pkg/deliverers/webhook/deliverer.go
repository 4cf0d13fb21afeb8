// Package webhook performs the outbound call for webhook actions.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lumera-app/lumera/pkg/models"
)

const defaultTimeout = 30 * time.Second

var ErrMissingURL = errors.New("webhook action requires url")

type Deliverer struct {
	client  *http.Client
	timeout time.Duration
}

func NewDeliverer(config map[string]any) *Deliverer {
	timeout := defaultTimeout
	if secs, ok := config["timeout_seconds"].(float64); ok && secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}

	return &Deliverer{
		client:  &http.Client{},
		timeout: timeout,
	}
}

// Deliver posts a JSON payload derived from the client and firing context to
// the configured URL. A non-2xx response is a delivery failure; the
// dispatcher owns retries.
func (d *Deliverer) Deliver(ctx context.Context, action models.Action, client *models.Client, firing models.FiringContext, logger *slog.Logger) (map[string]any, error) {
	url, _ := action.Config["url"].(string)
	if url == "" {
		return nil, ErrMissingURL
	}

	payload := map[string]any{
		"workflow_id":   firing.WorkflowID,
		"workflow_name": firing.WorkflowName,
		"execution_id":  firing.ExecutionID,
		"branch_id":     firing.BranchID,
		"client": map[string]any{
			"id":          client.ID,
			"name":        client.Name,
			"client_type": client.ClientType,
			"total_spent": client.TotalSpent,
			"visit_count": client.VisitCount,
			"tags":        client.Tags,
		},
	}

	if extra, ok := action.Config["payload"].(map[string]any); ok {
		for k, v := range extra {
			payload[k] = v
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	logger.Info("Calling webhook", "action_id", action.ID, "url", url)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return map[string]any{
		"status_code": resp.StatusCode,
		"body_length": len(respBody),
	}, nil
}
