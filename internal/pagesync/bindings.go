package pagesync

import (
	"sort"

	"hkm-site/internal/content"
	"hkm-site/internal/dom"

	"golang.org/x/net/html"
)

const bindingAttr = "data-content-key"

// Patch maps binding paths to the values found in a content document.
// Paths the document does not define are absent.
type Patch struct {
	Values map[string]string `json:"values"`
}

// BindingPaths lists the distinct content paths bound in doc.
func BindingPaths(doc *dom.Document) []string {
	seen := map[string]struct{}{}
	for _, n := range doc.WithAttr(bindingAttr) {
		if p := dom.Attr(n, bindingAttr); p != "" {
			seen[p] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	return paths
}

// BuildPatch resolves every path against src. It is pure and safe to call
// with a nil document.
func BuildPatch(paths []string, src *content.Document) Patch {
	patch := Patch{Values: map[string]string{}}
	if src == nil {
		return patch
	}

	for _, p := range paths {
		if v, ok := src.Lookup(p); ok {
			patch.Values[p] = v
		}
	}

	return patch
}

// ApplyPatch writes patch values into bound elements: src for images, text
// content for everything else.
func ApplyPatch(doc *dom.Document, patch Patch) int {
	applied := 0

	for _, n := range doc.WithAttr(bindingAttr) {
		v, ok := patch.Values[dom.Attr(n, bindingAttr)]
		if !ok {
			continue
		}

		setBound(n, v)
		applied++
	}

	return applied
}

func setBound(n *html.Node, v string) {
	if dom.IsTag(n, "img") {
		dom.SetAttr(n, "src", v)
		return
	}

	dom.SetText(n, v)
}

func ApplyBindings(doc *dom.Document, src *content.Document) int {
	return ApplyPatch(doc, BuildPatch(BindingPaths(doc), src))
}
