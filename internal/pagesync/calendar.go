package pagesync

import (
	"time"

	"hkm-site/internal/calendar"
	"hkm-site/internal/dom"
	"hkm-site/internal/domain/data"

	"golang.org/x/net/html"
)

const (
	calendarGridID = "calendar-grid"
	monthTitleID   = "current-month-year"
	agendaSelector = "#calendar-agenda-list"
	dayHeaderClass = "cal-day-header"
)

// CalendarView is a rendered month, ready to swap into the calendar page.
type CalendarView struct {
	Title string `json:"title"`
	Grid  string `json:"grid"`
}

func (s *Synchronizer) RenderCalendar(events []data.Event, displayed time.Time) (CalendarView, error) {
	month := calendar.BuildMonth(events, displayed, s.now())

	grid, err := s.Renderer.CalendarGrid(month)
	if err != nil {
		return CalendarView{}, err
	}

	return CalendarView{Title: month.Title, Grid: grid}, nil
}

// ApplyCalendar renders the month grid and the agenda. Both are drawn even
// when there are no events.
func (s *Synchronizer) ApplyCalendar(doc *dom.Document, events []data.Event, displayed time.Time) {
	grid := doc.ByID(calendarGridID)
	title := doc.ByID(monthTitleID)

	if grid != nil && title != nil {
		view, err := s.RenderCalendar(events, displayed)
		if err != nil {
			s.Logger.Errorw("Failed to render calendar", "error", err)
		} else {
			dom.SetText(title, view.Title)
			if err := dom.ReplaceChildren(grid, view.Grid, isDayHeader); err != nil {
				s.Logger.Errorw("Failed to insert calendar grid", "error", err)
			}
		}
	}

	s.fill(doc, agendaSelector, func() (string, error) {
		return s.Renderer.Agenda(calendar.BuildAgenda(events, s.Renderer.Location()))
	})
}

func isDayHeader(n *html.Node) bool {
	return n.Type == html.ElementNode && dom.HasClass(n, dayHeaderClass)
}
