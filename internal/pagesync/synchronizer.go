package pagesync

import (
	"context"
	"net/url"
	"time"

	"hkm-site/internal/content"
	"hkm-site/internal/dom"
	"hkm-site/internal/domain/data"
	"hkm-site/internal/render"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type EventSource interface {
	Resolve(ctx context.Context) []data.Event
}

type Synchronizer struct {
	Logger   *zap.SugaredLogger
	Store    content.Store
	Events   EventSource
	Renderer *render.Renderer

	tracer trace.Tracer
	now    func() time.Time
}

func NewSynchronizer(logger *zap.SugaredLogger, store content.Store, events EventSource, renderer *render.Renderer) *Synchronizer {
	return &Synchronizer{
		Logger:   logger,
		Store:    store,
		Events:   events,
		Renderer: renderer,
		tracer:   otel.Tracer("pagesync"),
		now:      time.Now,
	}
}

type Result struct {
	PageID string
	Synced bool
	Events []data.Event
}

// Run brings one parsed page in line with the stored content. The page keeps
// its static markup wherever content is missing or unreadable.
func (s *Synchronizer) Run(ctx context.Context, doc *dom.Document, page *url.URL) Result {
	pageID := DetectPageID(page.Path)

	ctx, span := s.tracer.Start(ctx, "pagesync.run", trace.WithAttributes(attribute.String("page.id", pageID)))
	defer span.End()

	res := Result{PageID: pageID}

	if !s.Store.Ready() {
		s.Logger.Debugw("Content store not ready, serving static page", "page", pageID)
		return res
	}
	res.Synced = true

	pageDoc := s.Store.Read(ctx, pageID)

	if design, ok := content.ReadAs[data.DesignSettings](ctx, s.Logger, s.Store, data.KeySettingsDesign); ok {
		ApplyDesign(doc, pageID, design)
	}

	if pageDoc != nil {
		applied := ApplyBindings(doc, pageDoc)
		span.SetAttributes(attribute.Int("page.bindings", applied))
	}

	itemRef := page.Query().Get("id")

	if seo, ok := content.ReadAs[data.SEOSettings](ctx, s.Logger, s.Store, data.KeySettingsSEO); ok {
		var override *ItemSEO
		if itemRef != "" {
			item, found := data.FindItem(itemRef,
				content.ReadItems[data.CollectionItem](ctx, s.Logger, s.Store, data.KeyCollectionBlog),
				content.ReadItems[data.CollectionItem](ctx, s.Logger, s.Store, data.KeyCollectionTeaching),
			)
			if found {
				override = ItemOverride(item)
			}
		}

		ApplySEO(doc, ResolveSEO(seo, pageID, override, doc.Title()))
	}

	res.Events = s.load(ctx, doc, pageID, itemRef)

	return res
}

func (s *Synchronizer) load(ctx context.Context, doc *dom.Document, pageID, itemRef string) []data.Event {
	switch pageID {
	case data.PageIndex:
		s.loadIndex(ctx, doc)
	case data.PageBlog:
		s.fillItems(doc, ".blog-page .blog-grid", content.ReadItems[data.CollectionItem](ctx, s.Logger, s.Store, data.KeyCollectionBlog), s.Renderer.BlogCards)
	case data.PageBlogPost:
		s.loadPost(ctx, doc, itemRef)
	case data.PageEvents:
		events := s.Events.Resolve(ctx)
		s.ApplyCalendar(doc, events, s.firstOfMonth())
		if len(events) > 0 {
			s.fill(doc, ".events-grid", func() (string, error) { return s.Renderer.EventCards(events) })
		}
		return events
	case data.PageCalendar:
		events := s.Events.Resolve(ctx)
		s.ApplyCalendar(doc, events, s.firstOfMonth())
		return events
	case data.PageTeachingSeries:
		s.loadTeaching(ctx, doc)
	case data.PageMedia:
		s.loadTeaching(ctx, doc)
		if media, ok := content.ReadAs[data.MediaSettings](ctx, s.Logger, s.Store, data.KeySettingsMedia); ok {
			ApplyMediaLinks(doc, media)
		}
	}

	return nil
}

func (s *Synchronizer) firstOfMonth() time.Time {
	y, m, _ := s.now().In(s.Renderer.Location()).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, s.Renderer.Location())
}

func (s *Synchronizer) loadIndex(ctx context.Context, doc *dom.Document) {
	body := doc.Body()

	if hero, ok := content.ReadAs[data.HeroSlides](ctx, s.Logger, s.Store, data.KeyHeroSlides); ok && len(hero.Slides) > 0 {
		if body != nil {
			dom.RemoveClass(body, "hero-animate")
		}
		s.fill(doc, ".slider-container", func() (string, error) { return s.Renderer.HeroSlides(hero.Slides) })
	}

	s.fillItems(doc, "#blogg .blog-grid", content.ReadItems[data.CollectionItem](ctx, s.Logger, s.Store, data.KeyCollectionBlog), s.Renderer.BlogCards)

	if body != nil {
		dom.AddClass(body, "hero-animate")
	}
}

func (s *Synchronizer) loadTeaching(ctx context.Context, doc *dom.Document) {
	s.fillItems(doc, ".media-grid", content.ReadItems[data.CollectionItem](ctx, s.Logger, s.Store, data.KeyCollectionTeaching), s.Renderer.TeachingCards)
}

func (s *Synchronizer) fillItems(doc *dom.Document, selector string, items []data.CollectionItem, render func([]data.CollectionItem) (string, error)) {
	if len(items) == 0 {
		return
	}

	s.fill(doc, selector, func() (string, error) { return render(items) })
}

// fill replaces the children of the first element matching selector.
func (s *Synchronizer) fill(doc *dom.Document, selector string, render func() (string, error)) {
	target := doc.Query(selector)
	if target == nil {
		return
	}

	fragment, err := render()
	if err != nil {
		s.Logger.Errorw("Failed to render fragment", "selector", selector, "error", err)
		return
	}

	if err := dom.SetInnerHTML(target, fragment); err != nil {
		s.Logger.Errorw("Failed to insert fragment", "selector", selector, "error", err)
	}
}
