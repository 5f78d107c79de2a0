package calendar

import (
	"sort"
	"time"

	"hkm-site/internal/domain/data"
)

const (
	AgendaLimit     = 10
	DefaultLocation = "Sted ikke satt"
)

type AgendaEntry struct {
	Start    time.Time
	Date     string
	Time     string
	Title    string
	Location string
	Href     string
	External bool
}

// BuildAgenda returns the first AgendaLimit events in ascending start order.
// Events without a readable start sort last.
func BuildAgenda(events []data.Event, loc *time.Location) []AgendaEntry {
	type parsed struct {
		event data.Event
		start time.Time
		ok    bool
	}

	all := make([]parsed, 0, len(events))
	for _, e := range events {
		start, ok := ParseTime(e.Start, loc)
		all = append(all, parsed{event: e, start: start, ok: ok})
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].ok != all[j].ok {
			return all[i].ok
		}
		return all[i].start.Before(all[j].start)
	})

	if len(all) > AgendaLimit {
		all = all[:AgendaLimit]
	}

	entries := make([]AgendaEntry, 0, len(all))
	for _, p := range all {
		entry := AgendaEntry{
			Start:    p.start,
			Title:    p.event.Title,
			Location: p.event.Location,
			Href:     detailPage,
		}

		if p.ok {
			entry.Date = ShortDate(p.start)
			entry.Time = Clock(p.start)
		}
		if entry.Location == "" {
			entry.Location = DefaultLocation
		}
		if p.event.Link != "" {
			entry.Href = p.event.Link
			entry.External = true
		}

		entries = append(entries, entry)
	}

	return entries
}
