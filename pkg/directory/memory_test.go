package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumera-app/lumera/pkg/models"
)

func birthday(month time.Month, day int) *time.Time {
	t := time.Date(1990, month, day, 0, 0, 0, 0, time.UTC)

	return &t
}

func TestMemoryDirectory_GetByID(t *testing.T) {
	dir := NewMemoryDirectory(&models.Client{ID: "c1", Name: "Ana Costa"})

	client, err := dir.GetByID(context.Background(), "c1")

	require.NoError(t, err)
	assert.Equal(t, "Ana Costa", client.Name)

	_, err = dir.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestMemoryDirectory_BirthdaysOn(t *testing.T) {
	dir := NewMemoryDirectory(
		&models.Client{ID: "c1", Birthday: birthday(time.March, 14)},
		&models.Client{ID: "c2", Birthday: birthday(time.March, 15)},
		&models.Client{ID: "c3", Birthday: birthday(time.June, 14)},
		&models.Client{ID: "c4"},
	)

	clients, err := dir.BirthdaysOn(context.Background(), 3, 14)

	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "c1", clients[0].ID)
}

func TestMemoryDirectory_Tags(t *testing.T) {
	dir := NewMemoryDirectory(&models.Client{ID: "c1", Tags: []string{"vip"}})
	ctx := context.Background()

	require.NoError(t, dir.AddTag(ctx, "c1", "reactivated"))
	// Adding the same tag twice does not duplicate it.
	require.NoError(t, dir.AddTag(ctx, "c1", "reactivated"))

	client, err := dir.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"vip", "reactivated"}, client.Tags)

	require.NoError(t, dir.RemoveTag(ctx, "c1", "vip"))

	client, err = dir.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"reactivated"}, client.Tags)

	assert.ErrorIs(t, dir.AddTag(ctx, "ghost", "vip"), ErrClientNotFound)
	assert.ErrorIs(t, dir.RemoveTag(ctx, "ghost", "vip"), ErrClientNotFound)
}

func TestMemoryDirectory_ReturnsCopies(t *testing.T) {
	dir := NewMemoryDirectory(&models.Client{ID: "c1", Tags: []string{"vip"}, Custom: map[string]string{"referral": "friend"}})
	ctx := context.Background()

	client, err := dir.GetByID(ctx, "c1")
	require.NoError(t, err)

	client.Tags[0] = "mutated"
	client.Custom["referral"] = "mutated"

	fresh, err := dir.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"vip"}, fresh.Tags)
	assert.Equal(t, "friend", fresh.Custom["referral"])
}

func TestMemoryDirectory_List(t *testing.T) {
	dir := NewMemoryDirectory(
		&models.Client{ID: "c1"},
		&models.Client{ID: "c2"},
	)

	clients, err := dir.List(context.Background())

	require.NoError(t, err)
	assert.Len(t, clients, 2)
}
