package tag

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumera-app/lumera/pkg/directory"
	"github.com/lumera-app/lumera/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDeliver_AddsTag(t *testing.T) {
	dir := directory.NewMemoryDirectory(&models.Client{ID: "c1"})
	ctx := context.Background()

	action := models.Action{
		ID:     "a1",
		Type:   models.ActionTag,
		Config: map[string]any{"tag_name": "reactivated"},
	}

	result, err := NewDeliverer(dir).Deliver(ctx, action, &models.Client{ID: "c1"}, models.FiringContext{}, testLogger())

	require.NoError(t, err)
	assert.Equal(t, "reactivated", result["tag"])
	assert.Equal(t, false, result["removed"])

	client, err := dir.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, client.HasTag("reactivated"))
}

func TestDeliver_RemovesTag(t *testing.T) {
	dir := directory.NewMemoryDirectory(&models.Client{ID: "c1", Tags: []string{"dormant"}})
	ctx := context.Background()

	action := models.Action{
		ID:     "a1",
		Type:   models.ActionTag,
		Config: map[string]any{"tag_name": "dormant", "remove": true},
	}

	result, err := NewDeliverer(dir).Deliver(ctx, action, &models.Client{ID: "c1"}, models.FiringContext{}, testLogger())

	require.NoError(t, err)
	assert.Equal(t, true, result["removed"])

	client, err := dir.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, client.HasTag("dormant"))
}

func TestDeliver_MissingTagName(t *testing.T) {
	dir := directory.NewMemoryDirectory()

	action := models.Action{ID: "a1", Type: models.ActionTag, Config: map[string]any{}}

	_, err := NewDeliverer(dir).Deliver(context.Background(), action, &models.Client{ID: "c1"}, models.FiringContext{}, testLogger())

	assert.ErrorIs(t, err, ErrMissingTagName)
}

func TestDeliver_UnknownClient(t *testing.T) {
	dir := directory.NewMemoryDirectory()

	action := models.Action{
		ID:     "a1",
		Type:   models.ActionTag,
		Config: map[string]any{"tag_name": "vip"},
	}

	_, err := NewDeliverer(dir).Deliver(context.Background(), action, &models.Client{ID: "ghost"}, models.FiringContext{}, testLogger())

	require.Error(t, err)
	assert.ErrorIs(t, err, directory.ErrClientNotFound)
}

func TestFactory(t *testing.T) {
	factory := NewFactory(directory.NewMemoryDirectory())

	assert.Equal(t, "tag", factory.ID())

	deliverer, err := factory.Create(nil)
	require.NoError(t, err)
	assert.NotNil(t, deliverer)
}
