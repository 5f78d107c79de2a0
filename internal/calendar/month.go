package calendar

import (
	"strings"
	"time"

	"hkm-site/internal/domain/data"
)

const detailPage = "arrangement-detaljer.html"

type EventTag struct {
	Title   string
	Href    string
	Tooltip string
}

type Cell struct {
	Date           time.Time
	Day            int
	IsCurrentMonth bool
	IsToday        bool
	Events         []EventTag
}

func (c Cell) Class() string {
	classes := []string{"cal-cell"}
	if !c.IsCurrentMonth {
		classes = append(classes, "other-month")
	}
	if c.IsToday {
		classes = append(classes, "today")
	}
	return strings.Join(classes, " ")
}

type Month struct {
	Year  int
	Month time.Month
	Title string
	Cells []Cell
}

func DetailHref(e data.Event) string {
	ref := e.ID
	if ref == "" {
		ref = EncodeURIComponent(e.Title)
	}
	return detailPage + "?id=" + ref
}

// BuildMonth lays out the month containing displayed as Monday-first weeks.
// Leading and trailing cells come from the neighbouring months. today is
// compared by calendar day in displayed's location.
func BuildMonth(events []data.Event, displayed, today time.Time) Month {
	loc := displayed.Location()
	year, month, _ := displayed.Date()
	today = today.In(loc)

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(first.Weekday()) + 6) % 7
	days := first.AddDate(0, 1, -1).Day()
	total := (offset + days + 6) / 7 * 7

	byDay := groupByDay(events, loc)

	cells := make([]Cell, total)
	for i := range cells {
		date := first.AddDate(0, 0, i-offset)
		current := date.Month() == month

		cells[i] = Cell{
			Date:           date,
			Day:            date.Day(),
			IsCurrentMonth: current,
			IsToday:        current && sameDay(date, today),
			Events:         byDay[dayKey(date)],
		}
	}

	return Month{
		Year:  year,
		Month: month,
		Title: MonthTitle(first),
		Cells: cells,
	}
}

func groupByDay(events []data.Event, loc *time.Location) map[string][]EventTag {
	byDay := make(map[string][]EventTag)

	for _, e := range events {
		start, ok := ParseTime(e.Start, loc)
		if !ok {
			continue
		}

		byDay[dayKey(start)] = append(byDay[dayKey(start)], EventTag{
			Title:   e.Title,
			Href:    DetailHref(e),
			Tooltip: e.Title + "\nKl: " + Clock(start) + "\n" + e.Location,
		})
	}

	return byDay
}
