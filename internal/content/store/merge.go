package store

import (
	"encoding/json"
	"fmt"
)

// MergeDocument deep-merges partial into the existing JSON object. Nested objects
// are merged key by key, every other value replaces what was there.
func MergeDocument(existing []byte, partial map[string]any) ([]byte, error) {
	base := map[string]any{}
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &base); err != nil {
			return nil, fmt.Errorf("failed to decode existing document: %w", err)
		}
		if base == nil {
			return nil, ErrNotObject
		}
	}

	patch, err := normalize(partial)
	if err != nil {
		return nil, err
	}

	deepMerge(base, patch)

	return json.Marshal(base)
}

func normalize(partial map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(partial)
	if err != nil {
		return nil, fmt.Errorf("failed to encode partial document: %w", err)
	}

	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode partial document: %w", err)
	}

	return out, nil
}

func deepMerge(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)

		if srcIsMap && dstIsMap {
			deepMerge(dstMap, srcMap)
			continue
		}

		dst[k] = v
	}
}
