package podcast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"hkm-site/internal/cache"
	"hkm-site/internal/networker"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	DefaultFeedURL = "https://anchor.fm/s/f7a13dec/podcast/rss"

	feedCacheKey = "podcast:feed"
	failureBody  = `{"error":"Kunne ikke hente eller oversette feeden"}`
)

var ErrNotAllowedByRobots = errors.New("feed disallowed by robots.txt")

// Handler serves the podcast RSS feed translated to JSON.
type Handler struct {
	Logger    *zap.SugaredLogger
	Networker networker.Networker
	Cache     cache.CachedStorage
	Robots    *RobotsChecker
	FeedURL   string
	CacheTTL  time.Duration
}

func NewHandler(logger *zap.SugaredLogger, nw networker.Networker, c cache.CachedStorage, robots *RobotsChecker, feedURL string, ttl time.Duration) *Handler {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}

	return &Handler{
		Logger:    logger,
		Networker: nw,
		Cache:     c,
		Robots:    robots,
		FeedURL:   feedURL,
		CacheTTL:  ttl,
	}
}

// Feed returns the JSON form of the upstream feed, from cache when possible.
func (h *Handler) Feed(ctx context.Context) ([]byte, error) {
	ctx, span := otel.Tracer("podcast").Start(ctx, "podcast.feed")
	defer span.End()

	if h.CacheTTL > 0 {
		if cached, err := h.Cache.Get(feedCacheKey); err == nil {
			span.SetAttributes(attribute.Bool("podcast.cache_hit", true))
			return cached, nil
		}
	}

	if h.Robots != nil && !h.Robots.Allowed(ctx, h.FeedURL) {
		return nil, ErrNotAllowedByRobots
	}

	res, err := h.Networker.Fetch(ctx, h.FeedURL)
	if err != nil {
		return nil, err
	}

	converted, err := XMLToJSON(bytes.NewReader(res.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to translate feed (status %d): %w", res.Status, err)
	}

	if h.CacheTTL > 0 {
		if err := h.Cache.Set(feedCacheKey, converted, h.CacheTTL); err != nil {
			h.Logger.Warnw("Failed to cache podcast feed", "err", err)
		}
	}

	return converted, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	body, err := h.Feed(r.Context())
	if err != nil {
		h.Logger.Errorw("Failed to serve podcast feed", "feed", h.FeedURL, "err", err)
		writeJSON(w, http.StatusInternalServerError, []byte(failureBody))
		return
	}

	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
