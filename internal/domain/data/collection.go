package data

// Collection is the canonical shape of every collection_* document.
type Collection[T any] struct {
	Items []T `json:"items"`
}

// CollectionItem is a blog post or a teaching series entry.
type CollectionItem struct {
	ID             string `json:"id,omitempty"`
	Title          string `json:"title"`
	Content        string `json:"content,omitempty"`
	ImageURL       string `json:"imageUrl,omitempty"`
	Date           string `json:"date,omitempty"`
	Category       string `json:"category,omitempty"`
	Author         string `json:"author,omitempty"`
	SeoTitle       string `json:"seoTitle,omitempty"`
	SeoDescription string `json:"seoDescription,omitempty"`
	GeoPosition    string `json:"geoPosition,omitempty"`
}

func (i CollectionItem) Matches(ref string) bool {
	return ref != "" && (i.ID == ref || i.Title == ref)
}

func (i CollectionItem) HasSEO() bool {
	return i.SeoTitle != "" || i.SeoDescription != "" || i.GeoPosition != ""
}

func FindItem(ref string, collections ...[]CollectionItem) (CollectionItem, bool) {
	for _, items := range collections {
		for _, item := range items {
			if item.Matches(ref) {
				return item, true
			}
		}
	}

	return CollectionItem{}, false
}

type HeroSlides struct {
	Slides []HeroSlide `json:"slides"`
}

type HeroSlide struct {
	ImageURL string `json:"imageUrl"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	BtnText  string `json:"btnText,omitempty"`
	BtnLink  string `json:"btnLink,omitempty"`
}
