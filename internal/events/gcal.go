package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hkm-site/internal/calendar"
	"hkm-site/internal/domain/data"
	"hkm-site/internal/networker"

	"go.uber.org/zap"
)

const (
	DefaultCalendarAPIBase = "https://www.googleapis.com/calendar/v3"
	upcomingLimit          = 20
)

var ErrCalendarAPI = errors.New("google calendar api error")

type GoogleCalendarClient struct {
	Logger  *zap.SugaredLogger
	Fetcher networker.Networker
	BaseURL string

	now func() time.Time
}

func NewGoogleCalendarClient(logger *zap.SugaredLogger, fetcher networker.Networker, baseURL string) *GoogleCalendarClient {
	if baseURL == "" {
		baseURL = DefaultCalendarAPIBase
	}

	return &GoogleCalendarClient{
		Logger:  logger,
		Fetcher: fetcher,
		BaseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

type calendarResponse struct {
	Items []calendarItem `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type calendarItem struct {
	ID          string       `json:"id"`
	Summary     string       `json:"summary"`
	Description string       `json:"description"`
	Location    string       `json:"location"`
	HTMLLink    string       `json:"htmlLink"`
	Start       calendarTime `json:"start"`
	End         calendarTime `json:"end"`
}

type calendarTime struct {
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
}

func (t calendarTime) value() string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

func (c *GoogleCalendarClient) eventsURL(apiKey, calendarID string) string {
	q := url.Values{}
	q.Set("key", apiKey)
	q.Set("timeMin", c.now().UTC().Format(time.RFC3339))
	q.Set("orderBy", "startTime")
	q.Set("singleEvents", "true")
	q.Set("maxResults", strconv.Itoa(upcomingLimit))

	return c.BaseURL + "/calendars/" + calendar.EncodeURIComponent(calendarID) + "/events?" + q.Encode()
}

// Upcoming lists the next events of a public calendar, expanded to single
// occurrences and ordered by start.
func (c *GoogleCalendarClient) Upcoming(ctx context.Context, apiKey, calendarID string) ([]data.Event, error) {
	res, err := c.Fetcher.Fetch(ctx, c.eventsURL(apiKey, calendarID))
	if err != nil {
		return nil, err
	}

	var payload calendarResponse
	if err := json.Unmarshal(res.Body, &payload); err != nil {
		if statusErr := res.Err(); statusErr != nil {
			return nil, statusErr
		}
		return nil, fmt.Errorf("failed to decode calendar response: %w", err)
	}

	if payload.Error != nil {
		return nil, fmt.Errorf("%w %d: %s", ErrCalendarAPI, payload.Error.Code, payload.Error.Message)
	}

	if err := res.Err(); err != nil {
		return nil, err
	}

	events := make([]data.Event, 0, len(payload.Items))
	for _, item := range payload.Items {
		events = append(events, data.Event{
			ID:          item.ID,
			Title:       item.Summary,
			Description: item.Description,
			Location:    item.Location,
			Start:       item.Start.value(),
			End:         item.End.value(),
			Link:        item.HTMLLink,
		})
	}

	c.Logger.Debugw("Fetched calendar events", "calendarID", calendarID, "count", len(events))

	return events, nil
}
