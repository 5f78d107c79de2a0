package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

func TestEncodeRecordUnwrapsData(t *testing.T) {
	record := map[string]any{
		"id": models.NewRecordID(surrealTable, "collection_blog"),
		"data": map[string]any{
			"id":    "blogg",
			"items": []any{map[any]any{"id": "a", "title": "Påske"}},
		},
	}

	raw, err := encodeRecord(record)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"blogg","items":[{"id":"a","title":"Påske"}]}`, string(raw))
}

func TestEncodeRecordWithoutData(t *testing.T) {
	_, err := encodeRecord(map[string]any{"id": "content:index", "hero": map[string]any{"title": "x"}})
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = encodeRecord(map[string]any{"data": []any{"bare array"}})
	assert.ErrorIs(t, err, ErrNotObject)
}

func TestRecordHasKey(t *testing.T) {
	assert.True(t, recordHasKey(map[string]any{"id": models.NewRecordID(surrealTable, "index")}, "index"))
	assert.True(t, recordHasKey(map[string]any{"id": "content:index"}, "index"))
	assert.False(t, recordHasKey(map[string]any{"id": "content:om-oss"}, "index"))
	assert.False(t, recordHasKey(map[string]any{}, "index"))
}
