package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"hkm-site/internal/content"
	"hkm-site/internal/content/store"
	"hkm-site/internal/domain/data"
	"hkm-site/internal/pages"
	"hkm-site/internal/pagesync"
	"hkm-site/internal/render"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const indexPage = `<!DOCTYPE html><html><head><title>HKM</title></head><body>
<h1 data-content-key="hero.title">Statisk tittel</h1>
<a href="/kalender.html">Kalender</a><a href="https://example.org/x">Ute</a>
</body></html>`

const calendarPage = `<!DOCTYPE html><html><head><title>Kalender</title></head><body>
<h2 id="current-month-year"></h2>
<div id="calendar-grid"><div class="cal-day-header">Man</div></div>
<ul id="calendar-agenda-list"></ul>
<p data-content-key="intro"></p>
</body></html>`

type staticEvents []data.Event

func (e staticEvents) Resolve(context.Context) []data.Event {
	return e
}

type fixture struct {
	server *Server
	svc    *content.Service
	graph  *pages.SiteGraphMemoryRepo
	saver  *pages.Saver
	http   *httptest.Server
}

func newFixture(t *testing.T, docs map[string]string) *fixture {
	t.Helper()

	logger := zap.NewNop().Sugar()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(indexPage), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kalender.html"), []byte(calendarPage), 0o644))

	mem := store.NewMemoryBackend(logger)
	for key, raw := range docs {
		mem.Put(key, []byte(raw))
	}
	svc := content.NewServiceWithBackend(logger, mem, nil)

	r, err := render.NewRenderer(logger, time.UTC)
	require.NoError(t, err)

	events := staticEvents{{ID: "e1", Title: "Bønnemøte", Start: "2024-04-11T19:00:00Z"}}
	sync := pagesync.NewSynchronizer(logger, svc, events, r)

	graph := pages.NewMemoryRepo()
	saver := pages.NewSaver(logger, graph)
	saver.StartSaverWorkers(1)

	s := NewServer(logger, sync, graph, saver, Options{SiteDir: dir, BaseURL: "https://hkm.example"})
	s.now = func() time.Time { return time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC) }

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)

	return &fixture{server: s, svc: svc, graph: graph, saver: saver, http: ts}
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestServesSynchronizedPage(t *testing.T) {
	f := newFixture(t, map[string]string{"index": `{"hero":{"title":"Velkommen"}}`})

	status, body := get(t, f.http.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Velkommen")
	assert.NotContains(t, body, "Statisk tittel")

	status, body = get(t, f.http.URL+"/index.html")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Velkommen")
}

func TestUnknownPage(t *testing.T) {
	f := newFixture(t, nil)

	status, _ := get(t, f.http.URL+"/finnes-ikke.html")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = get(t, f.http.URL+"/..%2Fsecret.html")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRecordsPagesAndServesSitemap(t *testing.T) {
	f := newFixture(t, nil)

	status, _ := get(t, f.http.URL+"/index.html")
	require.Equal(t, http.StatusOK, status)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, f.saver.Stop(ctx))

	list, err := f.graph.ListPages(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "https://hkm.example/index.html", list[0].URL)
	assert.Equal(t, data.PageIndex, list[0].PageID)
	assert.Contains(t, list[0].Links, "https://hkm.example/kalender.html")

	status, body := get(t, f.http.URL+"/sitemap.xml")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<loc>https://hkm.example/index.html</loc>")
	assert.Contains(t, body, "<lastmod>2024-03-10</lastmod>")
}

func TestServesLiveScript(t *testing.T) {
	f := newFixture(t, nil)

	status, body := get(t, f.http.URL+liveScriptRoute)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "WebSocket")
}

func dialLive(t *testing.T, f *fixture, page string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/live/" + page
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func readType(t *testing.T, conn *websocket.Conn, typ string) liveMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg liveMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == typ {
			return msg
		}
	}
}

func TestLivePushesBindings(t *testing.T) {
	f := newFixture(t, map[string]string{"index": `{"hero":{"title":"Velkommen"}}`})
	conn := dialLive(t, f, "index")

	msg := readType(t, conn, "bindings")
	assert.Equal(t, map[string]string{"hero.title": "Velkommen"}, msg.Values)

	require.NoError(t, f.svc.Write(context.Background(), "index", map[string]any{
		"hero": map[string]any{"title": "Ny tittel"},
	}))

	msg = readType(t, conn, "bindings")
	assert.Equal(t, map[string]string{"hero.title": "Ny tittel"}, msg.Values)
}

func TestLiveCalendarNavigation(t *testing.T) {
	f := newFixture(t, map[string]string{"kalender": `{"intro":"Hei"}`})
	conn := dialLive(t, f, "kalender")

	readType(t, conn, "bindings")

	require.NoError(t, conn.WriteJSON(clientMessage{Type: "navigate", Action: "next"}))
	msg := readType(t, conn, "calendar")
	assert.Equal(t, "April 2024", msg.Title)
	assert.Contains(t, msg.Grid, "Bønnemøte")
	assert.Contains(t, msg.Grid, "arrangement-detaljer.html?id=e1")

	require.NoError(t, conn.WriteJSON(clientMessage{Type: "navigate", Action: "today"}))
	msg = readType(t, conn, "calendar")
	assert.Equal(t, "Mars 2024", msg.Title)
	assert.NotContains(t, msg.Grid, "Bønnemøte")
}

func TestLiveUnknownPage(t *testing.T) {
	f := newFixture(t, nil)

	wsURL := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/live/finnes-ikke"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type countingReloader struct {
	calls atomic.Int32
}

func (c *countingReloader) Reload(string) error {
	c.calls.Add(1)
	return nil
}

func TestTemplateWatcherDebouncesReloads(t *testing.T) {
	dir := t.TempDir()
	reloader := &countingReloader{}

	tw, err := NewTemplateWatcher(zap.NewNop().Sugar(), reloader, dir)
	require.NoError(t, err)
	tw.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tw.Run(ctx)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "cards.html"), []byte(`{{define "x"}}{{end}}`), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	assert.Eventually(t, func() bool { return reloader.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), reloader.calls.Load())
}
