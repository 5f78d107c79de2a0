package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConnection(t *testing.T) {
	compiled := ContentConnection{Backend: BackendSurreal, Endpoint: "ws://db.internal:8000/rpc", Namespace: "hkm", Database: "site"}
	override := &ContentConnection{Backend: BackendRedis, Endpoint: "localhost:6379"}

	tests := []struct {
		name       string
		configured ContentConnection
		override   *ContentConnection
		want       *ContentConnection
	}{
		{name: "override wins", configured: compiled, override: override, want: override},
		{name: "compiled used without override", configured: compiled, want: &compiled},
		{name: "placeholder ignored", configured: ContentConnection{Backend: BackendSurreal, Endpoint: PlaceholderEndpoint}},
		{name: "empty endpoint ignored", configured: ContentConnection{Backend: BackendSurreal}},
		{name: "memory needs no endpoint", configured: ContentConnection{Backend: BackendMemory}, want: &ContentConnection{Backend: BackendMemory}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveConnection(tt.configured, tt.override))
		})
	}
}

func TestLoadOverride(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		got, err := LoadOverride(filepath.Join(dir, "nope.yaml"))
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("empty path", func(t *testing.T) {
		got, err := LoadOverride("")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("blank file", func(t *testing.T) {
		path := filepath.Join(dir, "blank.yaml")
		require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

		got, err := LoadOverride(path)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("defaults backend to surreal", func(t *testing.T) {
		path := filepath.Join(dir, "override.yaml")
		body := "endpoint: ws://localhost:8000/rpc\nnamespace: test\ndatabase: dev\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		got, err := LoadOverride(path)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, BackendSurreal, got.Backend)
		assert.Equal(t, "ws://localhost:8000/rpc", got.Endpoint)
		assert.Equal(t, "test", got.Namespace)
		assert.Equal(t, "dev", got.Database)
	})

	t.Run("broken yaml", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("endpoint: [unclosed"), 0o600))

		_, err := LoadOverride(path)
		assert.Error(t, err)
	})
}
