package dom

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

var linkAttrs = map[string]struct{}{
	"href":   {},
	"src":    {},
	"action": {},
}

// Links lists the distinct same-site page links of the document, resolved
// against base. Fragments are dropped, query strings kept.
func (d *Document) Links(base string) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}

	seen := map[string]struct{}{}

	walk(d.root, func(n *html.Node) bool {
		if !IsTag(n, "a") && !IsTag(n, "form") {
			return true
		}

		for _, attribute := range n.Attr {
			if _, ok := linkAttrs[strings.ToLower(attribute.Key)]; !ok {
				continue
			}

			if normalized := normalizeURL(attribute.Val); normalized != "" {
				resolveAndAdd(normalized, seen, baseURL)
			}
		}
		return true
	})

	return sortedKeys(seen)
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, `"'`)

	if i := strings.Index(raw, "#"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimSpace(raw)

	if raw == "" {
		return ""
	}

	lower := strings.ToLower(raw)
	for _, scheme := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}

	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}

	return raw
}

func resolveAndAdd(raw string, seen map[string]struct{}, base *url.URL) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return
	}

	if !parsed.IsAbs() {
		parsed = base.ResolveReference(parsed)
	}

	if !strings.EqualFold(parsed.Host, base.Host) {
		return
	}

	if parsed.Path == "" {
		parsed.Path = "/"
	}

	seen[parsed.String()] = struct{}{}
}
