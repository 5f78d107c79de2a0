package podcast

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"hkm-site/internal/cache"
	"hkm-site/internal/networker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const feed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <title>HKM Podcast</title>
    <itunes:image href="https://img.example/p.jpg"/>
    <item>
      <title>Episode 1</title>
      <enclosure url="https://audio.example/1.mp3" type="audio/mpeg"/>
      <guid isPermaLink="false">abc</guid>
    </item>
    <item>
      <title>Episode 2</title>
      <description><![CDATA[<p>Hei &amp; velkommen</p>]]></description>
    </item>
  </channel>
</rss>`

const feedJSON = `{"rss":{
  "$":{"version":"2.0","xmlns:itunes":"http://www.itunes.com/dtds/podcast-1.0.dtd"},
  "channel":{
    "title":"HKM Podcast",
    "itunes:image":{"$":{"href":"https://img.example/p.jpg"}},
    "item":[
      {"title":"Episode 1","enclosure":{"$":{"url":"https://audio.example/1.mp3","type":"audio/mpeg"}},"guid":{"$":{"isPermaLink":"false"},"_":"abc"}},
      {"title":"Episode 2","description":"<p>Hei &amp; velkommen</p>"}
    ]
  }
}}`

func TestXMLToJSON(t *testing.T) {
	out, err := XMLToJSON(strings.NewReader(feed))
	require.NoError(t, err)
	assert.JSONEq(t, feedJSON, string(out))
}

func TestXMLToJSONShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"keeps order", `<r><z>1</z><a>2</a></r>`, `{"r":{"z":"1","a":"2"}}`},
		{"single child stays object", `<rss><channel><item><title>x</title></item></channel></rss>`, `{"rss":{"channel":{"item":{"title":"x"}}}}`},
		{"empty element", `<a><b/></a>`, `{"a":{"b":""}}`},
		{"mixed text", `<a>hei <b>du</b></a>`, `{"a":{"b":"du","_":"hei "}}`},
		{"entity", `<a>&aring;r</a>`, `{"a":"år"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := XMLToJSON(strings.NewReader(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestXMLToJSONRejectsBrokenInput(t *testing.T) {
	for _, in := range []string{"", "<html><body>oops</html>", "<a><b></a>", "not xml"} {
		_, err := XMLToJSON(strings.NewReader(in))
		assert.Error(t, err, in)
	}
}

type upstream struct {
	srv      *httptest.Server
	feedHits atomic.Int32
	robots   string
	robotsSt int
	feedBody atomic.Value
}

func newUpstream(t *testing.T, robots, body string) *upstream {
	t.Helper()

	u := &upstream{robots: robots}
	u.feedBody.Store(body)
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			if u.robotsSt != 0 {
				w.WriteHeader(u.robotsSt)
				return
			}
			if u.robots == "" {
				http.NotFound(w, r)
				return
			}
			_, _ = io.WriteString(w, u.robots)
		case "/feed.rss":
			u.feedHits.Add(1)
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = io.WriteString(w, u.feedBody.Load().(string))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(u.srv.Close)

	return u
}

func newTestHandler(u *upstream, ttl time.Duration) *Handler {
	logger := zap.NewNop().Sugar()
	nw := networker.NewNetworker(logger, "hkm-podcast-proxy")
	c := cache.NewMemoryCache()

	return NewHandler(logger, nw, c, NewRobotsChecker(logger, nw, c, "hkm-podcast-proxy"), u.srv.URL+"/feed.rss", ttl)
}

func TestGetPodcast(t *testing.T) {
	u := newUpstream(t, "", feed)
	srv := httptest.NewServer(NewRouter(newTestHandler(u, time.Minute)))
	defer srv.Close()

	for i := 0; i < 2; i++ {
		resp, err := http.Get(srv.URL + Route)
		require.NoError(t, err)

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.JSONEq(t, feedJSON, string(body))
	}

	assert.Equal(t, int32(1), u.feedHits.Load())
}

func TestGetPodcastPreflight(t *testing.T) {
	u := newUpstream(t, "", feed)
	srv := httptest.NewServer(NewRouter(newTestHandler(u, 0)))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+Route, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://hkm.no")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodGet)
	assert.Zero(t, u.feedHits.Load())
}

func TestGetPodcastFailure(t *testing.T) {
	tests := []struct {
		name   string
		robots string
		body   string
	}{
		{"untranslatable feed", "", "<html><body>maintenance"},
		{"disallowed by robots", "User-agent: *\nDisallow: /\n", feed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newUpstream(t, tt.robots, tt.body)
			rec := httptest.NewRecorder()

			newTestHandler(u, time.Minute).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, Route, nil))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"Kunne ikke hente eller oversette feeden"}`, rec.Body.String())
		})
	}
}

func TestGetPodcastRobotsUnavailable(t *testing.T) {
	u := newUpstream(t, "", feed)
	u.robotsSt = http.StatusServiceUnavailable
	rec := httptest.NewRecorder()

	newTestHandler(u, time.Minute).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, Route, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, feedJSON, rec.Body.String())
}

func TestRobotsCheckerFailsOpen(t *testing.T) {
	logger := zap.NewNop().Sugar()
	nw := networker.NewNetworker(logger, "hkm-podcast-proxy")
	rc := NewRobotsChecker(logger, nw, cache.NewMemoryCache(), "hkm-podcast-proxy")

	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()

	assert.True(t, rc.Allowed(context.Background(), down.URL+"/feed.rss"))
	assert.True(t, rc.Allowed(context.Background(), "://bad url"))
}

func TestFeedNotCachedOnFailure(t *testing.T) {
	u := newUpstream(t, "", "<broken")
	h := newTestHandler(u, time.Minute)

	_, err := h.Feed(context.Background())
	require.Error(t, err)

	u.feedBody.Store(feed)
	out, err := h.Feed(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, feedJSON, string(out))
	assert.Equal(t, int32(2), u.feedHits.Load())
}
