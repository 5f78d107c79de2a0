package pages

import (
	"context"
	"strings"
	"testing"
	"time"

	"hkm-site/internal/domain/data"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSaverWritesToGraph(t *testing.T) {
	graph := NewMemoryRepo()
	saver := NewSaver(zap.NewNop().Sugar(), graph)
	saver.StartSaverWorkers(2)

	first := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	saver.Record(&data.SitePage{URL: "https://hkm.no/index.html", Status: 200, FoundAt: first, Links: []string{"https://hkm.no/blogg.html"}})
	saver.Record(&data.SitePage{URL: "https://hkm.no/missing.html", Status: 404, FoundAt: first})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, saver.Stop(ctx))
	require.NoError(t, saver.Stop(ctx))

	got, err := graph.ListPages(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://hkm.no/index.html", got[0].URL)
	assert.Equal(t, []string{"https://hkm.no/blogg.html"}, got[0].Links)
}

func TestMemoryRepoKeepsFoundAt(t *testing.T) {
	graph := NewMemoryRepo()
	ctx := context.Background()

	first := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	require.NoError(t, graph.SavePage(ctx, &data.SitePage{URL: "https://hkm.no/", Status: 200, FoundAt: first}))
	require.NoError(t, graph.SavePage(ctx, &data.SitePage{URL: "https://hkm.no/", Status: 200, FoundAt: later, LastRenderedAt: later}))

	got, err := graph.ListPages(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, first, got[0].FoundAt)
	assert.Equal(t, later, got[0].LastRenderedAt)
}

func TestBuildSitemap(t *testing.T) {
	out, err := BuildSitemap("https://hkm.no", []data.SitePage{
		{URL: "https://hkm.no/index.html", LastRenderedAt: time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)},
		{URL: "https://hkm.no/blogg.html"},
		{URL: "https://elsewhere.example/x.html"},
	})
	require.NoError(t, err)

	xml := string(out)
	assert.True(t, strings.HasPrefix(xml, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, xml, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, xml, "<loc>https://hkm.no/index.html</loc>")
	assert.Contains(t, xml, "<lastmod>2024-03-05</lastmod>")
	assert.Contains(t, xml, "<loc>https://hkm.no/blogg.html</loc>")
	assert.NotContains(t, xml, "elsewhere")
	assert.Equal(t, 1, strings.Count(xml, "<lastmod>"))
}
