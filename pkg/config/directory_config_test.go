package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "clients.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadDirectoryConfig(t *testing.T) {
	path := writeSeed(t, `
clients:
  - id: c1
    name: Ana Costa
    email: ana@example.com
    phone: "+5511999999999"
    client_type: vip
    total_spent: 1250.50
    visit_count: 14
    last_visit_at: "2025-05-01T10:00:00Z"
    last_service: haircut
    tags: [vip, regular]
    birthday: "1990-03-14"
    loyalty_points: 320
    custom:
      referral: friend
  - id: c2
    name: Bruno Lima
`)

	clients, err := LoadDirectoryConfig(path)

	require.NoError(t, err)
	require.Len(t, clients, 2)

	ana := clients[0]
	assert.Equal(t, "c1", ana.ID)
	assert.Equal(t, "Ana Costa", ana.Name)
	assert.Equal(t, "vip", ana.ClientType)
	assert.InDelta(t, 1250.50, ana.TotalSpent, 0.001)
	assert.Equal(t, 14, ana.VisitCount)
	assert.Equal(t, []string{"vip", "regular"}, ana.Tags)
	assert.Equal(t, "friend", ana.Custom["referral"])

	require.NotNil(t, ana.LastVisitAt)
	assert.Equal(t, time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC), *ana.LastVisitAt)

	require.NotNil(t, ana.Birthday)
	assert.Equal(t, time.March, ana.Birthday.Month())
	assert.Equal(t, 14, ana.Birthday.Day())

	bruno := clients[1]
	assert.Nil(t, bruno.LastVisitAt)
	assert.Nil(t, bruno.Birthday)
}

func TestLoadDirectoryConfig_MissingFile(t *testing.T) {
	_, err := LoadDirectoryConfig(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}

func TestLoadDirectoryConfig_InvalidYAML(t *testing.T) {
	path := writeSeed(t, "clients: [whoops")

	_, err := LoadDirectoryConfig(path)

	assert.Error(t, err)
}

func TestLoadDirectoryConfig_EntryValidation(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{
			name: "missing id",
			yaml: "clients:\n  - name: Ana\n",
		},
		{
			name: "bad last_visit_at",
			yaml: "clients:\n  - id: c1\n    last_visit_at: yesterday\n",
		},
		{
			name: "bad birthday",
			yaml: "clients:\n  - id: c1\n    birthday: March 14\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadDirectoryConfig(writeSeed(t, tc.yaml))

			assert.Error(t, err)
		})
	}
}
