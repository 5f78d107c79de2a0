package pages

import (
	"context"
	"sort"
	"sync"

	"hkm-site/internal/domain/data"
)

type SiteGraphMemoryRepo struct {
	mu    sync.RWMutex
	pages map[string]data.SitePage
}

func NewMemoryRepo() *SiteGraphMemoryRepo {
	return &SiteGraphMemoryRepo{pages: make(map[string]data.SitePage)}
}

func (repo *SiteGraphMemoryRepo) EnsureConnectivity(context.Context) error {
	return nil
}

func (repo *SiteGraphMemoryRepo) SavePage(_ context.Context, page *data.SitePage) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	stored := *page
	if existing, ok := repo.pages[page.URL]; ok && !existing.FoundAt.IsZero() {
		stored.FoundAt = existing.FoundAt
	}
	stored.Links = append([]string(nil), page.Links...)
	repo.pages[page.URL] = stored

	return nil
}

func (repo *SiteGraphMemoryRepo) ListPages(context.Context) ([]data.SitePage, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	out := make([]data.SitePage, 0, len(repo.pages))
	for _, p := range repo.pages {
		if p.Status == 200 {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })

	return out, nil
}

func (repo *SiteGraphMemoryRepo) Close(context.Context) error {
	return nil
}
