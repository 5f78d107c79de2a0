package pagesync

import (
	"context"

	"hkm-site/internal/content"
)

// Live calls onPatch with a complete patch of paths for every snapshot of the
// page document. The caller owns the returned subscription; nil means live
// updates are unavailable.
func (s *Synchronizer) Live(ctx context.Context, pageID string, paths []string, onPatch func(Patch)) *content.Subscription {
	if !s.Store.Ready() {
		return nil
	}

	return s.Store.Subscribe(ctx, pageID, func(doc *content.Document) {
		onPatch(BuildPatch(paths, doc))
	})
}
