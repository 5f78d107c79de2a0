package cli

import (
	"os"
	"path/filepath"
	"testing"

	"hkm-site/internal/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"serve", "sync-events", "import-blog", "put"} {
		assert.True(t, names[want], want)
	}

	assert.NotNil(t, root.PersistentFlags().Lookup("config"))

	syncCmd, _, err := root.Find([]string{"sync-events"})
	require.NoError(t, err)
	assert.NotNil(t, syncCmd.Flags().Lookup("every"))
}

func TestReadDocument(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		body    string
		wantErr error
		want    map[string]any
	}{
		{name: "object", body: `{"hero":{"title":"Hei"}}`, want: map[string]any{"hero": map[string]any{"title": "Hei"}}},
		{name: "array", body: `[1,2]`, wantErr: errNotObject},
		{name: "null", body: `null`, wantErr: errNotObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			got, err := readDocument(path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := readDocument(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestPutRejectsInvalidKey(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"put", "../etc", "doc.json"})
	root.SetOut(os.Stderr)
	root.SetErr(os.Stderr)

	err := root.Execute()
	assert.ErrorIs(t, err, content.ErrInvalidKey)
}
