package pages

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/url"
	"time"

	"hkm-site/internal/domain/data"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// BuildSitemap renders the pages that live on baseURL's host as a sitemap.
func BuildSitemap(baseURL string, pages []data.SitePage) ([]byte, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}

	set := urlSet{XMLNS: sitemapNS}
	for _, p := range pages {
		u, err := url.Parse(p.URL)
		if err != nil || u.Host != base.Host {
			continue
		}

		entry := sitemapURL{Loc: u.String()}
		if !p.LastRenderedAt.IsZero() {
			entry.LastMod = p.LastRenderedAt.UTC().Format(time.DateOnly)
		}
		set.URLs = append(set.URLs, entry)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("failed to encode sitemap: %w", err)
	}

	return buf.Bytes(), nil
}
