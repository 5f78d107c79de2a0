package data

// Event is a calendar occurrence. Start is ISO datetime or date-only and is the
// only ordering and grouping key.
type Event struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Start       string `json:"start"`
	End         string `json:"end,omitempty"`
	Link        string `json:"link,omitempty"`
}

// DetailRef is the value used in arrangement-detaljer.html?id=...
func (e Event) DetailRef() string {
	if e.ID != "" {
		return e.ID
	}

	return e.Title
}
