package pagesync

import (
	"hkm-site/internal/dom"
	"hkm-site/internal/domain/data"
)

const mediaLinkAttr = "data-media-link"

// ApplyMediaLinks points every [data-media-link=<platform>] element at the
// configured platform URL.
func ApplyMediaLinks(doc *dom.Document, media data.MediaSettings) {
	links := media.Links()

	for _, n := range doc.WithAttr(mediaLinkAttr) {
		if href, ok := links[dom.Attr(n, mediaLinkAttr)]; ok {
			dom.SetAttr(n, "href", href)
		}
	}
}
