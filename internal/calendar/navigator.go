package calendar

import (
	"sync"
	"time"
)

// Navigator owns the month shown by one calendar view. It only moves the
// displayed month; callers re-render from events they already hold.
type Navigator struct {
	mu        sync.Mutex
	now       func() time.Time
	loc       *time.Location
	displayed time.Time
}

func NewNavigator(now func() time.Time, loc *time.Location) *Navigator {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}

	n := &Navigator{now: now, loc: loc}
	n.displayed = n.firstOfCurrentMonth()

	return n
}

func (n *Navigator) firstOfCurrentMonth() time.Time {
	y, m, _ := n.now().In(n.loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, n.loc)
}

func (n *Navigator) Displayed() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.displayed
}

func (n *Navigator) Now() time.Time {
	return n.now().In(n.loc)
}

func (n *Navigator) Prev() time.Time {
	return n.shift(-1)
}

func (n *Navigator) Next() time.Time {
	return n.shift(1)
}

func (n *Navigator) Today() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.displayed = n.firstOfCurrentMonth()
	return n.displayed
}

// Apply runs a named navigation action: "prev", "next" or "today".
func (n *Navigator) Apply(action string) (time.Time, bool) {
	switch action {
	case "prev":
		return n.Prev(), true
	case "next":
		return n.Next(), true
	case "today":
		return n.Today(), true
	default:
		return n.Displayed(), false
	}
}

func (n *Navigator) shift(months int) time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.displayed = n.displayed.AddDate(0, months, 0)
	return n.displayed
}
