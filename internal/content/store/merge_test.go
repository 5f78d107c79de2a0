package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDocument(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		partial  map[string]any
		want     string
	}{
		{
			name:    "new document",
			partial: map[string]any{"hero": map[string]any{"title": "Velkommen"}},
			want:    `{"hero":{"title":"Velkommen"}}`,
		},
		{
			name:     "nested fields kept",
			existing: `{"hero":{"title":"Gammel","subtitle":"Beholdes"},"about":{"text":"x"}}`,
			partial:  map[string]any{"hero": map[string]any{"title": "Ny"}},
			want:     `{"about":{"text":"x"},"hero":{"subtitle":"Beholdes","title":"Ny"}}`,
		},
		{
			name:     "arrays replaced",
			existing: `{"items":[{"title":"a"},{"title":"b"}]}`,
			partial:  map[string]any{"items": []map[string]string{{"title": "c"}}},
			want:     `{"items":[{"title":"c"}]}`,
		},
		{
			name:     "scalar replaces object",
			existing: `{"hero":{"title":"x"}}`,
			partial:  map[string]any{"hero": "flat"},
			want:     `{"hero":"flat"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MergeDocument([]byte(tt.existing), tt.partial)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestMergeDocumentRejectsArrays(t *testing.T) {
	_, err := MergeDocument([]byte(`[1,2]`), map[string]any{"a": 1})
	assert.Error(t, err)

	_, err = MergeDocument([]byte(`null`), map[string]any{"a": 1})
	assert.ErrorIs(t, err, ErrNotObject)
}
