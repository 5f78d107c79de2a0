package pagesync

import (
	"path"
	"strings"

	"hkm-site/internal/domain/data"
)

// DetectPageID maps a request path to its content key: the last path segment
// without the .html suffix, or index for the site root.
func DetectPageID(p string) string {
	base := path.Base("/" + strings.TrimLeft(p, "/"))
	if base == "/" || base == "." {
		return data.PageIndex
	}

	id := strings.TrimSuffix(base, ".html")
	if id == "" {
		return data.PageIndex
	}
	return id
}
