package pagesync

import (
	"strings"

	"hkm-site/internal/dom"
	"hkm-site/internal/domain/data"

	"golang.org/x/net/html"
)

const fontLinkID = "google-font-injection"

func fontStylesheet(font string) string {
	return "https://fonts.googleapis.com/css2?family=" + strings.ReplaceAll(font, " ", "+") + ":wght@300;400;500;600;700&display=swap"
}

// ApplyDesign applies site-wide branding. Each missing field is skipped on its own.
func ApplyDesign(doc *dom.Document, pageID string, s data.DesignSettings) {
	if s.LogoURL != "" {
		for _, img := range doc.QueryAll(".logo img") {
			dom.SetAttr(img, "src", s.LogoURL)
		}
	}

	if s.FaviconURL != "" {
		icon := doc.EnsureHeadElement(`link[rel="icon"]`, "link", html.Attribute{Key: "rel", Val: "icon"})
		dom.SetAttr(icon, "href", s.FaviconURL)
	}

	if s.SiteTitle != "" && pageID == data.PageIndex {
		doc.SetTitle(s.SiteTitle)
	}

	if s.MainFont != "" {
		if body := doc.Body(); body != nil {
			dom.SetStyle(body, "font-family", "'"+s.MainFont+"', sans-serif")
		}

		if doc.ByID(fontLinkID) == nil {
			doc.EnsureHeadElement("#"+fontLinkID, "link",
				html.Attribute{Key: "id", Val: fontLinkID},
				html.Attribute{Key: "href", Val: fontStylesheet(s.MainFont)},
				html.Attribute{Key: "rel", Val: "stylesheet"},
			)
		}
	}

	root := doc.HTML()
	if root == nil {
		return
	}

	if size := s.FontSizeBase.String(); size != "" && size != "0" {
		dom.SetStyle(root, "font-size", size+"px")
	}

	if s.PrimaryColor != "" {
		dom.SetStyle(root, "--primary-color", s.PrimaryColor)
	}
}
