package server

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"hkm-site/internal/dom"
	"hkm-site/internal/domain/data"
	"hkm-site/internal/pages"

	"github.com/gorilla/mux"
)

const pageNamePattern = "[a-zA-Z0-9_-]+"

var errPageNotFound = errors.New("page not found")

func pageFile(vars map[string]string) string {
	name := vars["page"]
	if name == "" {
		name = data.PageIndex
	}
	return name + ".html"
}

func (s *Server) loadPage(file string) (*dom.Document, error) {
	f, err := os.Open(filepath.Join(s.opts.SiteDir, file))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()

	doc, err := dom.Parse(io.LimitReader(f, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	return doc, nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	file := pageFile(mux.Vars(r))

	doc, err := s.loadPage(file)
	if errors.Is(err, errPageNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Errorw("Failed to load page", "file", file, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	res := s.sync.Run(r.Context(), doc, r.URL)

	s.record(doc, res.PageID, file)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := doc.Render(w); err != nil {
		s.logger.Warnw("Failed to write page", "page", res.PageID, "error", err)
	}
}

func (s *Server) record(doc *dom.Document, pageID, file string) {
	if s.saver == nil {
		return
	}

	pageURL, err := url.JoinPath(s.opts.BaseURL, file)
	if err != nil {
		s.logger.Warnw("Failed to build page url", "file", file, "error", err)
		return
	}

	s.saver.Record(&data.SitePage{
		URL:            pageURL,
		PageID:         pageID,
		Title:          doc.Title(),
		Status:         http.StatusOK,
		Links:          doc.Links(pageURL),
		LastRenderedAt: s.now(),
	})
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	if s.graph == nil {
		http.NotFound(w, r)
		return
	}

	list, err := s.graph.ListPages(r.Context())
	if err != nil {
		s.logger.Errorw("Failed to list pages for sitemap", "error", err)
		respondError(w, http.StatusInternalServerError, "sitemap unavailable")
		return
	}

	body, err := pages.BuildSitemap(s.opts.BaseURL, list)
	if err != nil {
		s.logger.Errorw("Failed to build sitemap", "error", err)
		respondError(w, http.StatusInternalServerError, "sitemap unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(body)
}
