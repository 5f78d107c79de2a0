package content

import (
	"testing"

	"hkm-site/internal/domain/data"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchemaEnumerable(t *testing.T) {
	s := DefaultSchema()

	pages := s.Pages()
	assert.Contains(t, pages, data.PageIndex)
	assert.Contains(t, pages, data.PageEvents)
	assert.IsIncreasing(t, pages)

	keys := s.Keys(data.PageIndex)
	assert.Contains(t, keys, "hero.title")
	assert.True(t, s.Known(data.PageIndex, "hero.title"))
	assert.False(t, s.Known(data.PageIndex, "footer.text"))
	assert.Empty(t, s.Keys("does-not-exist"))
}

func TestSchemaValidate(t *testing.T) {
	s := DefaultSchema()

	page, err := NewDocument(data.PageIndex, []byte(`{"hero":{"title":"x"},"legacy":{"a":1}}`))
	require.NoError(t, err)

	unknown, mismatched := s.Validate(page)
	assert.Equal(t, []string{"legacy"}, unknown)
	assert.Empty(t, mismatched)

	good, err := NewDocument(data.KeySettingsDesign, []byte(`{"siteTitle":"HKM","fontSizeBase":16}`))
	require.NoError(t, err)
	_, mismatched = s.Validate(good)
	assert.Empty(t, mismatched)

	bad, err := NewDocument(data.KeySettingsDesign, []byte(`{"siteTitle":{"nested":true},"logoUrl":"/logo.png","fontSizeBase":""}`))
	require.NoError(t, err)
	_, mismatched = s.Validate(bad)
	assert.Equal(t, []string{"fontSizeBase", "siteTitle"}, mismatched)
}

func TestValidKey(t *testing.T) {
	assert.True(t, ValidKey("collection_blog"))
	assert.True(t, ValidKey("blogg-post"))
	assert.False(t, ValidKey(""))
	assert.False(t, ValidKey("../etc"))
	assert.False(t, ValidKey("Index"))
}
