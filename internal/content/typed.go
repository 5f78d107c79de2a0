package content

import (
	"context"

	"go.uber.org/zap"
)

// ReadAs reads key and decodes it into T field by field. Fields that do not
// decode are logged and left at their zero value. Absent documents report
// false.
func ReadAs[T any](ctx context.Context, logger *zap.SugaredLogger, r Reader, key string) (T, bool) {
	var v T

	doc := r.Read(ctx, key)
	if doc == nil {
		return v, false
	}

	for _, err := range doc.DecodeFields(&v) {
		logger.Warnw("Skipping content field", "key", key, "error", err)
	}

	return v, true
}

// ReadItems reads a collection document in the canonical {"items":[...]}
// shape. Items that do not decode are logged and skipped.
func ReadItems[T any](ctx context.Context, logger *zap.SugaredLogger, r Reader, key string) []T {
	doc := r.Read(ctx, key)
	if doc == nil {
		return nil
	}

	items, errs, ok := Items[T](doc)
	if !ok {
		logger.Warnw("Content collection has no items array", "key", key)
		return nil
	}
	for _, err := range errs {
		logger.Warnw("Skipping content item", "key", key, "error", err)
	}

	return items
}
