package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumera-app/lumera/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAction(url string) models.Action {
	return models.Action{
		ID:     "a1",
		Type:   models.ActionWebhook,
		Config: map[string]any{"url": url},
	}
}

func testClient() *models.Client {
	return &models.Client{
		ID:         "c1",
		Name:       "Ana Costa",
		ClientType: "vip",
		TotalSpent: 1200,
		VisitCount: 14,
		Tags:       []string{"vip"},
	}
}

func TestDeliver_PostsClientPayload(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	firing := models.FiringContext{
		ExecutionID:  "e1",
		WorkflowID:   "wf-1",
		WorkflowName: "Reactivation",
		BranchID:     "b1",
	}

	result, err := NewDeliverer(nil).Deliver(context.Background(), testAction(server.URL), testClient(), firing, testLogger())

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result["status_code"])

	assert.Equal(t, "wf-1", received["workflow_id"])
	assert.Equal(t, "e1", received["execution_id"])
	assert.Equal(t, "b1", received["branch_id"])

	clientPayload, ok := received["client"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "c1", clientPayload["id"])
	assert.Equal(t, "vip", clientPayload["client_type"])
}

func TestDeliver_MergesExtraPayload(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	action := testAction(server.URL)
	action.Config["payload"] = map[string]any{"source": "lumera"}

	_, err := NewDeliverer(nil).Deliver(context.Background(), action, testClient(), models.FiringContext{}, testLogger())

	require.NoError(t, err)
	assert.Equal(t, "lumera", received["source"])
}

func TestDeliver_NonSuccessStatusFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewDeliverer(nil).Deliver(context.Background(), testAction(server.URL), testClient(), models.FiringContext{}, testLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestDeliver_MissingURL(t *testing.T) {
	action := models.Action{ID: "a1", Type: models.ActionWebhook, Config: map[string]any{}}

	_, err := NewDeliverer(nil).Deliver(context.Background(), action, testClient(), models.FiringContext{}, testLogger())

	assert.ErrorIs(t, err, ErrMissingURL)
}

func TestFactory(t *testing.T) {
	factory := NewFactory()

	assert.Equal(t, "webhook", factory.ID())

	deliverer, err := factory.Create(map[string]any{"timeout_seconds": float64(5)})
	require.NoError(t, err)
	assert.NotNil(t, deliverer)
}
