package data

import (
	"encoding/json"
	"time"
)

// SitePage is one rendered page in the site link graph.
type SitePage struct {
	URL            string    `json:"url"`
	PageID         string    `json:"pageID"`
	Title          string    `json:"title"`
	Status         int       `json:"status"`
	Links          []string  `json:"links"`
	LastRenderedAt time.Time `json:"lastRenderedAt"`
	FoundAt        time.Time `json:"foundAt"`
}

func (p *SitePage) MarshalBinary() ([]byte, error) {
	return json.Marshal(p)
}

func (p *SitePage) ToParams() map[string]any {
	links := p.Links
	if links == nil {
		links = []string{}
	}

	return map[string]any{
		"url":            p.URL,
		"pageID":         p.PageID,
		"title":          p.Title,
		"status":         p.Status,
		"links":          links,
		"lastRenderedAt": p.LastRenderedAt.UTC().Format(time.RFC3339),
		"foundAt":        p.FoundAt.UTC().Format(time.RFC3339),
	}
}
