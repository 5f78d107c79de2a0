package pagesync

import (
	"hkm-site/internal/dom"
	"hkm-site/internal/domain/data"

	"golang.org/x/net/html"
)

// ItemSEO is the override carried by a single blog or teaching item.
type ItemSEO struct {
	Title       string
	Description string
	GeoPosition string
}

// ItemOverride returns the item's SEO fields when it sets at least one of them.
func ItemOverride(item data.CollectionItem) *ItemSEO {
	if !item.HasSEO() {
		return nil
	}

	return &ItemSEO{
		Title:       item.SeoTitle,
		Description: item.SeoDescription,
		GeoPosition: item.GeoPosition,
	}
}

type SEO struct {
	Title        string
	Description  string
	Keywords     string
	GeoPosition  string
	GeoPlacename string
	GeoRegion    string
	OGImage      string
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ResolveSEO picks each field from the most specific source that sets it:
// item, then page, then global. The title finally falls back to domTitle.
func ResolveSEO(s data.SEOSettings, pageID string, item *ItemSEO, domTitle string) SEO {
	page := s.Pages[pageID]

	var it ItemSEO
	if item != nil {
		it = *item
	}

	return SEO{
		Title:        first(it.Title, page.Title, s.GlobalTitle, domTitle),
		Description:  first(it.Description, page.Description, s.GlobalDescription),
		Keywords:     s.GlobalKeywords,
		GeoPosition:  first(it.GeoPosition, page.GeoPosition, s.GeoPosition),
		GeoPlacename: first(page.GeoPlacename, s.GeoPlacename),
		GeoRegion:    s.GeoRegion,
		OGImage:      s.OGImage,
	}
}

type metaTag struct {
	attr  string
	name  string
	value string
}

func (seo SEO) tags() []metaTag {
	return []metaTag{
		{"name", "description", seo.Description},
		{"name", "keywords", seo.Keywords},
		{"name", "geo.position", seo.GeoPosition},
		{"name", "geo.placename", seo.GeoPlacename},
		{"name", "geo.region", seo.GeoRegion},
		{"name", "ICBM", seo.GeoPosition},
		{"property", "og:title", seo.Title},
		{"property", "og:description", seo.Description},
		{"property", "og:image", seo.OGImage},
		{"name", "twitter:card", "summary_large_image"},
		{"name", "twitter:title", seo.Title},
		{"name", "twitter:description", seo.Description},
		{"name", "twitter:image", seo.OGImage},
	}
}

// ApplySEO sets the title and upserts the meta tags. Empty values leave the
// existing tag alone.
func ApplySEO(doc *dom.Document, seo SEO) {
	if seo.Title != "" {
		doc.SetTitle(seo.Title)
	}

	for _, tag := range seo.tags() {
		if tag.value == "" {
			continue
		}

		n := doc.EnsureHeadElement(`meta[`+tag.attr+`="`+tag.name+`"]`, "meta",
			html.Attribute{Key: tag.attr, Val: tag.name})
		dom.SetAttr(n, "content", tag.value)
	}
}
