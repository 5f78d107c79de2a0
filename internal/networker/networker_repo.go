package networker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodySize    = 10 << 20
)

type NetworkWorker struct {
	Logger    *zap.SugaredLogger
	Client    *http.Client
	UserAgent string
}

func NewNetworker(logger *zap.SugaredLogger, userAgent string) *NetworkWorker {
	return &NetworkWorker{
		Logger: logger,
		Client: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		UserAgent: userAgent,
	}
}

// Fetch performs a GET and returns the body whatever the status code.
// Callers decide how to treat non-2xx results.
func (repo *NetworkWorker) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	if repo.UserAgent != "" {
		req.Header.Set("User-Agent", repo.UserAgent)
	}

	repo.Logger.Debugf("fetch url %s", url)

	resp, err := repo.Client.Do(req)
	if err != nil {
		repo.Logger.Errorf("fetch url %s error: %v", url, err)
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	fetchResult := &FetchResult{
		URL:    url,
		Status: resp.StatusCode,
	}

	fetchResult.Body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		repo.Logger.Errorf("read body for %s error: %v", url, err)
		return nil, fmt.Errorf("failed to read body of %s: %w", url, err)
	}

	fetchResult.ContentType = resp.Header.Get("Content-Type")
	if fetchResult.ContentType == "" {
		if len(fetchResult.Body) > 0 {
			fetchResult.ContentType = http.DetectContentType(fetchResult.Body)
		} else {
			fetchResult.ContentType = "application/octet-stream"
		}
	}

	return fetchResult, nil
}
