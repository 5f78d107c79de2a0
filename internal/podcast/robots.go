package podcast

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"hkm-site/internal/cache"
	"hkm-site/internal/networker"

	"github.com/jimsmart/grobotstxt"
	"go.uber.org/zap"
)

const (
	robotsCachePrefix = "robots:"
	robotsTTL         = 24 * time.Hour
)

type RobotsChecker struct {
	Logger    *zap.SugaredLogger
	Networker networker.Networker
	Cache     cache.CachedStorage
	UserAgent string
}

func NewRobotsChecker(logger *zap.SugaredLogger, nw networker.Networker, c cache.CachedStorage, userAgent string) *RobotsChecker {
	return &RobotsChecker{
		Logger:    logger,
		Networker: nw,
		Cache:     c,
		UserAgent: userAgent,
	}
}

// origin strips path, query and fragment, leaving scheme and host.
func origin(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	return (&url.URL{Scheme: u.Scheme, User: u.User, Host: u.Host}).String(), nil
}

// Allowed reports whether the upstream robots.txt lets UserAgent fetch
// urlToCheck. Only an explicit disallow blocks: a missing, unreachable or
// failing robots.txt allows the fetch.
func (rc *RobotsChecker) Allowed(ctx context.Context, urlToCheck string) bool {
	baseURL, err := origin(urlToCheck)
	if err != nil {
		rc.Logger.Warnw("Failed to get robots URL, allowing fetch", "url", urlToCheck, "err", err)
		return true
	}

	cacheKey := robotsCachePrefix + baseURL

	if robots, errCache := rc.Cache.Get(cacheKey); errCache == nil {
		rc.Logger.Debugw("Robots cache hit", "url", urlToCheck)
		return grobotstxt.AgentAllowed(string(robots), rc.UserAgent, urlToCheck)
	}

	robotsURL := baseURL + "/robots.txt"
	res, errFetch := rc.Networker.Fetch(ctx, robotsURL)
	if errFetch != nil {
		rc.Logger.Warnw("Failed to fetch robots, allowing fetch", "url", robotsURL, "err", errFetch)
		return true
	}

	var robots string
	switch {
	case res.OK():
		robots = string(res.Body)
	case res.Status >= http.StatusBadRequest && res.Status < http.StatusInternalServerError:
		rc.Logger.Debugw("No robots file", "url", robotsURL, "status", res.Status)
	default:
		rc.Logger.Warnw("Robots file unavailable, allowing fetch", "url", robotsURL, "status", res.Status)
		return true
	}

	if errSave := rc.Cache.Set(cacheKey, []byte(robots), robotsTTL); errSave != nil {
		rc.Logger.Warnw("Failed to save robots cache", "url", baseURL, "err", errSave)
	}

	return grobotstxt.AgentAllowed(robots, rc.UserAgent, urlToCheck)
}
