package events

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"hkm-site/internal/content"
	"hkm-site/internal/content/store"
	"hkm-site/internal/domain/data"
	"hkm-site/internal/locks"
	"hkm-site/internal/networker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingClient struct {
	calls  atomic.Int32
	events []data.Event
	err    error
}

func (c *countingClient) Upcoming(context.Context, string, string) ([]data.Event, error) {
	c.calls.Add(1)
	return c.events, c.err
}

func newStore(t *testing.T, docs map[string]string) *content.Service {
	t.Helper()

	logger := zap.NewNop().Sugar()
	mem := store.NewMemoryBackend(logger)
	for key, raw := range docs {
		mem.Put(key, []byte(raw))
	}

	return content.NewServiceWithBackend(logger, mem, nil)
}

const configured = `{"googleCalendar":{"apiKey":"k","calendarId":"cal@group.calendar.google.com"}}`

func TestResolverPrefersCollection(t *testing.T) {
	svc := newStore(t, map[string]string{
		data.KeyCollectionEvents:     `{"items":[{"title":"Stored","start":"2024-03-15"}]}`,
		data.KeySettingsIntegrations: configured,
	})
	client := &countingClient{}

	got := NewResolver(zap.NewNop().Sugar(), svc, client).Resolve(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, "Stored", got[0].Title)
	assert.Zero(t, client.calls.Load())
}

func TestResolverFallsBackToCalendar(t *testing.T) {
	svc := newStore(t, map[string]string{
		data.KeyCollectionEvents:     `{"items":[]}`,
		data.KeySettingsIntegrations: configured,
	})
	client := &countingClient{events: []data.Event{
		{ID: "e1", Title: "Remote", Start: "2024-03-15T10:00:00+01:00"},
		{ID: "e2", Title: "Second", Start: "2024-03-16"},
	}}

	got := NewResolver(zap.NewNop().Sugar(), svc, client).Resolve(context.Background())

	require.Len(t, got, 2)
	for _, e := range got {
		assert.NotEmpty(t, e.ID)
		assert.NotEmpty(t, e.Title)
		assert.NotEmpty(t, e.Start)
	}
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestResolverWithoutSources(t *testing.T) {
	svc := newStore(t, map[string]string{
		data.KeySettingsIntegrations: `{"googleCalendar":{"apiKey":"k"}}`,
	})
	client := &countingClient{}

	got := NewResolver(zap.NewNop().Sugar(), svc, client).Resolve(context.Background())

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, client.calls.Load())
}

func TestResolverCalendarFailure(t *testing.T) {
	svc := newStore(t, map[string]string{data.KeySettingsIntegrations: configured})
	client := &countingClient{err: errors.New("boom")}

	got := NewResolver(zap.NewNop().Sugar(), svc, client).Resolve(context.Background())

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestResolverUninitializedStore(t *testing.T) {
	svc := content.NewService(zap.NewNop().Sugar(), nil, nil)
	client := &countingClient{}

	got := NewResolver(zap.NewNop().Sugar(), svc, client).Resolve(context.Background())

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, client.calls.Load())
}

func newCalendarServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/cal@group.calendar.google.com/events", r.URL.Path)
		assert.Equal(t, "/calendars/cal%40group.calendar.google.com/events", r.URL.EscapedPath())

		q := r.URL.Query()
		assert.Equal(t, "k", q.Get("key"))
		assert.Equal(t, "2024-03-01T08:00:00Z", q.Get("timeMin"))
		assert.Equal(t, "startTime", q.Get("orderBy"))
		assert.Equal(t, "true", q.Get("singleEvents"))
		assert.Equal(t, "20", q.Get("maxResults"))

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestClient(baseURL string) *GoogleCalendarClient {
	logger := zap.NewNop().Sugar()
	c := NewGoogleCalendarClient(logger, networker.NewNetworker(logger, ""), baseURL)
	c.now = func() time.Time { return time.Date(2024, time.March, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600)) }
	return c
}

func TestGoogleCalendarClientMapsItems(t *testing.T) {
	srv := newCalendarServer(t, http.StatusOK, `{"items":[
		{"id":"e1","summary":"Gudstjeneste","start":{"dateTime":"2024-03-03T11:00:00+01:00"},"end":{"dateTime":"2024-03-03T13:00:00+01:00"},"htmlLink":"https://calendar.google.com/e1","location":"Kirken"},
		{"id":"e2","summary":"Dugnad","description":"Ta med hansker","start":{"date":"2024-03-09"},"end":{"date":"2024-03-10"}}
	]}`)

	got, err := newTestClient(srv.URL).Upcoming(context.Background(), "k", "cal@group.calendar.google.com")
	require.NoError(t, err)

	assert.Equal(t, []data.Event{
		{
			ID:       "e1",
			Title:    "Gudstjeneste",
			Location: "Kirken",
			Start:    "2024-03-03T11:00:00+01:00",
			End:      "2024-03-03T13:00:00+01:00",
			Link:     "https://calendar.google.com/e1",
		},
		{
			ID:          "e2",
			Title:       "Dugnad",
			Description: "Ta med hansker",
			Start:       "2024-03-09",
			End:         "2024-03-10",
		},
	}, got)
}

func TestGoogleCalendarClientErrorPayload(t *testing.T) {
	srv := newCalendarServer(t, http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid"}}`)

	_, err := newTestClient(srv.URL).Upcoming(context.Background(), "k", "cal@group.calendar.google.com")
	assert.ErrorIs(t, err, ErrCalendarAPI)
}

func TestSyncerWritesCollection(t *testing.T) {
	svc := newStore(t, map[string]string{data.KeySettingsIntegrations: configured})
	client := &countingClient{events: []data.Event{{ID: "e1", Title: "Bønnemøte", Start: "2024-03-05T19:00:00"}}}
	locker := locks.NewMemoryLocker()

	s := NewSyncer(zap.NewNop().Sugar(), client, svc, locker, time.Minute)

	n, err := s.SyncConfigured(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored := content.ReadItems[data.Event](context.Background(), zap.NewNop().Sugar(), svc, data.KeyCollectionEvents)
	require.Len(t, stored, 1)
	assert.Equal(t, "Bønnemøte", stored[0].Title)

	ok, err := locker.Acquire(context.Background(), syncLockName, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "lock released after sync")
}

func TestSyncerRespectsLock(t *testing.T) {
	svc := newStore(t, nil)
	client := &countingClient{}
	locker := locks.NewMemoryLocker()

	_, err := locker.Acquire(context.Background(), syncLockName, time.Minute)
	require.NoError(t, err)

	_, err = NewSyncer(zap.NewNop().Sugar(), client, svc, locker, time.Minute).Sync(context.Background(), "k", "c")
	assert.ErrorIs(t, err, ErrSyncInProgress)
	assert.Zero(t, client.calls.Load())
}

func TestSyncerNotConfigured(t *testing.T) {
	svc := newStore(t, nil)

	_, err := NewSyncer(zap.NewNop().Sugar(), &countingClient{}, svc, locks.NewMemoryLocker(), time.Minute).SyncConfigured(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}
