package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"path/filepath"
	"sync"
	"time"

	"hkm-site/internal/calendar"
	"hkm-site/internal/domain/data"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var embedded embed.FS

const templatePattern = "*.html"

// Renderer produces the HTML fragments that page loaders swap into containers.
// Every method is a pure function of its input.
type Renderer struct {
	Logger *zap.SugaredLogger

	mu   sync.RWMutex
	tmpl *template.Template
	loc  *time.Location
}

func NewRenderer(logger *zap.SugaredLogger, loc *time.Location) (*Renderer, error) {
	tmpl, err := template.ParseFS(embedded, "templates/"+templatePattern)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded templates: %w", err)
	}

	if loc == nil {
		loc = time.Local
	}

	return &Renderer{
		Logger: logger,
		tmpl:   tmpl,
		loc:    loc,
	}, nil
}

func (r *Renderer) Location() *time.Location {
	return r.loc
}

// Reload re-parses the embedded templates and then any *.html files in dir,
// so files in dir override fragments by name. On failure the previous set stays active.
func (r *Renderer) Reload(dir string) error {
	tmpl, err := template.ParseFS(embedded, "templates/"+templatePattern)
	if err != nil {
		return fmt.Errorf("failed to parse embedded templates: %w", err)
	}

	if dir != "" {
		matches, err := filepath.Glob(filepath.Join(dir, templatePattern))
		if err != nil {
			return fmt.Errorf("failed to list templates in %s: %w", dir, err)
		}

		if len(matches) > 0 {
			tmpl, err = tmpl.ParseFiles(matches...)
			if err != nil {
				return fmt.Errorf("failed to parse templates in %s: %w", dir, err)
			}
		}
	}

	r.mu.Lock()
	r.tmpl = tmpl
	r.mu.Unlock()

	r.Logger.Infow("templates reloaded", "dir", dir)

	return nil
}

func (r *Renderer) execute(name string, v any) (string, error) {
	r.mu.RLock()
	tmpl := r.tmpl
	r.mu.RUnlock()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, v); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}

	return buf.String(), nil
}

func (r *Renderer) CalendarGrid(month calendar.Month) (string, error) {
	return r.execute("calendar-grid", month)
}

func (r *Renderer) Agenda(entries []calendar.AgendaEntry) (string, error) {
	return r.execute("agenda", entries)
}

func (r *Renderer) EventCards(events []data.Event) (string, error) {
	return r.execute("event-cards", eventCards(events, r.loc))
}

func (r *Renderer) BlogCards(items []data.CollectionItem) (string, error) {
	return r.execute("blog-cards", blogCards(items, r.loc))
}

func (r *Renderer) TeachingCards(items []data.CollectionItem) (string, error) {
	return r.execute("teaching-cards", teachingCards(items, r.loc))
}

func (r *Renderer) HeroSlides(slides []data.HeroSlide) (string, error) {
	return r.execute("hero-slides", heroSlides(slides))
}
