package networker

import (
	"context"
	"errors"
	"fmt"
)

var ErrUnexpectedStatus = errors.New("unexpected status")

type FetchResult struct {
	URL         string
	Body        []byte
	Status      int
	ContentType string
}

func (r *FetchResult) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Err is nil for 2xx results and wraps ErrUnexpectedStatus otherwise.
func (r *FetchResult) Err() error {
	if r.OK() {
		return nil
	}

	return fmt.Errorf("%w %d from %s", ErrUnexpectedStatus, r.Status, r.URL)
}

type Networker interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}
