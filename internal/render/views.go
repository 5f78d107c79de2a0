package render

import (
	"time"
	"unicode/utf8"

	"hkm-site/internal/calendar"
	"hkm-site/internal/dom"
	"hkm-site/internal/domain/data"
)

const (
	eventImage       = "https://images.unsplash.com/photo-1511795409834-ef04bbd61622?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"
	placeholderImage = "https://via.placeholder.com/600x400?text=Ingen+bilde"

	defaultEventLocation = "Stavanger"
	defaultBlogAuthor    = "Admin"
	defaultTeacher       = "His Kingdom"

	eventExcerptLen    = 120
	blogExcerptLen     = 120
	teachingExcerptLen = 100
)

type eventCard struct {
	Title    string
	Day      int
	Month    string
	Time     string
	Location string
	Excerpt  string
	Href     string
	Image    string
}

type itemCard struct {
	Title    string
	Image    string
	Category string
	Date     string
	Author   string
	Excerpt  string
	Href     string
}

type heroSlide struct {
	data.HeroSlide
	Active bool
}

func eventCards(events []data.Event, loc *time.Location) []eventCard {
	cards := make([]eventCard, 0, len(events))

	for _, e := range events {
		card := eventCard{
			Title:    e.Title,
			Location: e.Location,
			Href:     e.Link,
			Image:    eventImage,
		}

		if start, ok := calendar.ParseTime(e.Start, loc); ok {
			card.Day = start.Day()
			card.Month = calendar.ShortMonthTitle(start.Month())
			card.Time = calendar.Clock(start)
		}
		if card.Location == "" {
			card.Location = defaultEventLocation
		}
		if card.Href == "" {
			card.Href = "arrangement-detaljer.html"
		}

		text := dom.StripHTML(e.Description)
		card.Excerpt = dom.Truncate(text, eventExcerptLen)
		if utf8.RuneCountInString(text) > eventExcerptLen {
			card.Excerpt += "..."
		}

		cards = append(cards, card)
	}

	return cards
}

func blogCards(items []data.CollectionItem, loc *time.Location) []itemCard {
	cards := make([]itemCard, 0, len(items))

	for _, item := range items {
		card := itemCard{
			Title:    item.Title,
			Image:    orDefault(item.ImageURL, placeholderImage),
			Category: item.Category,
			Date:     calendar.FormatDate(item.Date, loc),
			Author:   orDefault(item.Author, defaultBlogAuthor),
			Excerpt:  dom.Excerpt(item.Content, blogExcerptLen) + "...",
			Href:     BlogPostHref(item),
		}
		cards = append(cards, card)
	}

	return cards
}

func teachingCards(items []data.CollectionItem, loc *time.Location) []itemCard {
	cards := make([]itemCard, 0, len(items))

	for _, item := range items {
		cards = append(cards, itemCard{
			Title:    item.Title,
			Image:    orDefault(item.ImageURL, placeholderImage),
			Category: item.Category,
			Date:     calendar.FormatDate(item.Date, loc),
			Author:   orDefault(item.Author, defaultTeacher),
			Excerpt:  dom.Excerpt(item.Content, teachingExcerptLen) + "...",
		})
	}

	return cards
}

func heroSlides(slides []data.HeroSlide) []heroSlide {
	out := make([]heroSlide, len(slides))
	for i, s := range slides {
		out[i] = heroSlide{HeroSlide: s, Active: i == 0}
	}
	return out
}

// BlogPostHref links a blog card to the single post page by title.
func BlogPostHref(item data.CollectionItem) string {
	return "blogg-post.html?id=" + calendar.EncodeURIComponent(item.Title)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
