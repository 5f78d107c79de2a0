package content

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"hkm-site/internal/domain/data"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// Schema enumerates the content keys each page binds and the typed shape of
// every settings and collection document.
type Schema struct {
	pages map[string][]string
	typed map[string]func() any
}

func NewSchema(pages map[string][]string, typed map[string]func() any) *Schema {
	s := &Schema{
		pages: make(map[string][]string, len(pages)),
		typed: typed,
	}

	for page, keys := range pages {
		sorted := append([]string(nil), keys...)
		sort.Strings(sorted)
		s.pages[page] = sorted
	}

	return s
}

func DefaultSchema() *Schema {
	header := []string{"header.title", "header.subtitle"}

	return NewSchema(map[string][]string{
		data.PageIndex: {
			"hero.title", "hero.subtitle", "hero.buttonText",
			"about.title", "about.text", "about.image",
			"mission.title", "mission.text",
			"cta.title", "cta.text",
		},
		data.PageAbout: {
			"intro.title", "intro.text", "intro.image",
			"vision.title", "vision.text",
			"team.title", "team.text",
		},
		data.PageContact: {
			"header.title", "contact.email", "contact.phone", "contact.address", "contact.hours",
		},
		data.PageDonations: {
			"header.title", "intro.text", "account.number", "vipps.number",
		},
		data.PageBlog:           header,
		data.PageEvents:         header,
		data.PageCalendar:       header,
		data.PageTeachingSeries: header,
		data.PageMedia: {
			"header.title", "header.subtitle", "youtube.title", "podcast.title",
		},
		data.PageBlogPost:     {},
		data.PageEventDetails: header,
	}, map[string]func() any{
		data.KeySettingsDesign:       func() any { return &data.DesignSettings{} },
		data.KeySettingsSEO:          func() any { return &data.SEOSettings{} },
		data.KeySettingsIntegrations: func() any { return &data.IntegrationSettings{} },
		data.KeySettingsMedia:        func() any { return &data.MediaSettings{} },
		data.KeyHeroSlides:           func() any { return &data.HeroSlides{} },
		data.KeyCollectionBlog:       func() any { return &data.Collection[data.CollectionItem]{} },
		data.KeyCollectionTeaching:   func() any { return &data.Collection[data.CollectionItem]{} },
		data.KeyCollectionEvents:     func() any { return &data.Collection[data.Event]{} },
	})
}

func (s *Schema) Pages() []string {
	pages := make([]string, 0, len(s.pages))
	for p := range s.pages {
		pages = append(pages, p)
	}
	sort.Strings(pages)
	return pages
}

func (s *Schema) Keys(page string) []string {
	return append([]string(nil), s.pages[page]...)
}

func (s *Schema) Known(page, contentKey string) bool {
	for _, k := range s.pages[page] {
		if k == contentKey {
			return true
		}
	}
	return false
}

// Validate checks a document at the access boundary. Typed documents report
// the top-level fields that do not fit their struct; page documents report
// top-level fields no declared key starts with. Neither rejects the document.
func (s *Schema) Validate(doc *Document) (unknown, mismatched []string) {
	if newTyped, ok := s.typed[doc.Key()]; ok {
		for _, err := range doc.DecodeFields(newTyped()) {
			var fe *FieldError
			if errors.As(err, &fe) {
				mismatched = append(mismatched, fe.Field)
			}
		}
		return nil, mismatched
	}

	keys, ok := s.pages[doc.Key()]
	if !ok {
		return nil, nil
	}

	roots := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		roots[strings.SplitN(k, ".", 2)[0]] = struct{}{}
	}

	for _, field := range doc.Fields() {
		if _, ok := roots[field]; !ok {
			unknown = append(unknown, field)
		}
	}

	return unknown, nil
}
