package networker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "hkm-test", r.Header.Get("User-Agent"))

		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte("<rss/>"))
	}))
	defer srv.Close()

	nw := NewNetworker(zap.NewNop().Sugar(), "hkm-test")

	res, err := nw.Fetch(context.Background(), srv.URL+"/feed")
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.NoError(t, res.Err())
	assert.Equal(t, "<rss/>", string(res.Body))
	assert.Equal(t, "application/rss+xml", res.ContentType)

	res, err = nw.Fetch(context.Background(), srv.URL+"/missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.True(t, errors.Is(res.Err(), ErrUnexpectedStatus))
}

func TestFetchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewNetworker(zap.NewNop().Sugar(), "").Fetch(ctx, "http://127.0.0.1:1/")
	assert.Error(t, err)
}
