package worker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSeedFile(t *testing.T) {
	t.Run("loads a valid seed file", func(t *testing.T) {
		path := writeSeed(t, `
feeds:
  - name: Example Status
    url: https://status.example.com/history.atom
    hookUrl: https://discord.com/api/webhooks/123/token
    imageUrl: https://example.com/icon.png
  - name: Releases
    url: https://example.com/releases.atom
    hookUrl: https://discord.com/api/webhooks/456/token
`)

		feeds, err := LoadSeedFile(path)

		require.NoError(t, err)
		require.Len(t, feeds, 2)
		assert.Equal(t, "Example Status", feeds[0].Name)
		assert.Equal(t, "https://status.example.com/history.atom", feeds[0].SourceURL)
		assert.Equal(t, "https://example.com/icon.png", feeds[0].ImageURL)
		assert.Nil(t, feeds[0].Watermark, "seeded feeds start unbaselined")
		assert.Empty(t, feeds[1].ImageURL)
	})

	t.Run("rejects an invalid feed entry", func(t *testing.T) {
		path := writeSeed(t, `
feeds:
  - name: Broken
    url: not-a-url
    hookUrl: https://discord.com/api/webhooks/123/token
`)

		_, err := LoadSeedFile(path)

		assert.Error(t, err)
	})

	t.Run("rejects malformed YAML", func(t *testing.T) {
		path := writeSeed(t, "feeds: [not: {closed")

		_, err := LoadSeedFile(path)

		assert.Error(t, err)
	})

	t.Run("errors on a missing file", func(t *testing.T) {
		_, err := LoadSeedFile(filepath.Join(t.TempDir(), "absent.yaml"))

		assert.Error(t, err)
	})

	t.Run("empty list is allowed", func(t *testing.T) {
		path := writeSeed(t, "feeds: []")

		feeds, err := LoadSeedFile(path)

		require.NoError(t, err)
		assert.Empty(t, feeds)
	})
}
