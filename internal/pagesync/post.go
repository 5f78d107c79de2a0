package pagesync

import (
	"context"

	"hkm-site/internal/calendar"
	"hkm-site/internal/content"
	"hkm-site/internal/dom"
	"hkm-site/internal/domain/data"

	"golang.org/x/net/html"
)

const (
	postMissingID  = "<p>Fant ikke innlegget.</p>"
	postNotFound   = "<p>Innlegget ble ikke funnet.</p>"
	postNoContent  = "<p>Dette innlegget har foreløpig ikke noe innhold.</p>"
	postTitleBlank = "Blogginnlegg"
)

func (s *Synchronizer) loadPost(ctx context.Context, doc *dom.Document, ref string) {
	body := doc.ByID("single-post-content")
	if body == nil {
		return
	}

	if ref == "" {
		s.setHTML(body, postMissingID)
		return
	}

	item, ok := data.FindItem(ref, content.ReadItems[data.CollectionItem](ctx, s.Logger, s.Store, data.KeyCollectionBlog))
	if !ok {
		s.setHTML(body, postNotFound)
		return
	}

	title := item.Title
	if title == "" {
		title = postTitleBlank
	}

	if n := doc.ByID("single-post-title"); n != nil {
		dom.SetText(n, title)
	}
	if n := doc.ByID("single-post-breadcrumb"); n != nil {
		dom.SetText(n, title)
	}

	if n := doc.ByID("single-post-date"); n != nil {
		date := calendar.FormatDate(item.Date, s.Renderer.Location())
		s.setHTML(n, `<i class="far fa-calendar"></i> `+html.EscapeString(date))
	}

	if n := doc.ByID("single-post-category"); n != nil {
		markup := ""
		if item.Category != "" {
			markup = `<i class="fas fa-tag"></i> ` + html.EscapeString(item.Category)
		}
		s.setHTML(n, markup)
	}

	if n := doc.ByID("blog-hero"); n != nil && item.ImageURL != "" {
		dom.SetStyle(n, "background-image", "linear-gradient(rgba(0,0,0,0.5), rgba(0,0,0,0.5)), url('"+item.ImageURL+"')")
	}

	if item.Content == "" {
		s.setHTML(body, postNoContent)
		return
	}
	s.setHTML(body, item.Content)
}

func (s *Synchronizer) setHTML(n *html.Node, markup string) {
	if err := dom.SetInnerHTML(n, markup); err != nil {
		s.Logger.Errorw("Failed to set post markup", "error", err)
	}
}
