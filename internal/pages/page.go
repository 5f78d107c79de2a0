package pages

import (
	"context"

	"hkm-site/internal/domain/data"
)

const saverBuffer = 256

// SiteGraph stores rendered pages and the links between them.
type SiteGraph interface {
	EnsureConnectivity(ctx context.Context) error
	SavePage(ctx context.Context, page *data.SitePage) error
	ListPages(ctx context.Context) ([]data.SitePage, error)
	Close(ctx context.Context) error
}
