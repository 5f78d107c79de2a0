package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"hkm-site/internal/content"
	"hkm-site/internal/content/store"
	"hkm-site/internal/domain/data"

	"github.com/adrg/frontmatter"
	"github.com/buger/jsonparser"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrNoPosts = errors.New("no markdown posts found")

// Store is the content access the importer needs. Reads must report failures
// so a broken collection is never overwritten.
type Store interface {
	ReadStrict(ctx context.Context, key string) (*content.Document, error)
	Write(ctx context.Context, key string, partial map[string]any) error
}

type postMeta struct {
	ID             string `yaml:"id"`
	Title          string `yaml:"title"`
	Date           string `yaml:"date"`
	Category       string `yaml:"category"`
	Author         string `yaml:"author"`
	Image          string `yaml:"image"`
	SeoTitle       string `yaml:"seoTitle"`
	SeoDescription string `yaml:"seoDescription"`
	GeoPosition    string `yaml:"geoPosition"`
	Draft          bool   `yaml:"draft"`
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly}

// BlogImporter turns a directory of Markdown posts into collection_blog items.
type BlogImporter struct {
	logger *zap.SugaredLogger
	store  Store
	md     goldmark.Markdown
	title  cases.Caser
}

func NewBlogImporter(logger *zap.SugaredLogger, contentStore Store) *BlogImporter {
	return &BlogImporter{
		logger: logger,
		store:  contentStore,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
		title: cases.Title(language.Norwegian),
	}
}

// Load parses every *.md file under dir. Drafts are skipped.
func (im *BlogImporter) Load(dir string) ([]data.CollectionItem, error) {
	var items []data.CollectionItem

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("failed to walk %s: %w", path, walkErr)
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}

		item, ok, err := im.loadPost(path)
		if err != nil {
			return err
		}
		if ok {
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (im *BlogImporter) loadPost(path string) (data.CollectionItem, bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return data.CollectionItem{}, false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var meta postMeta
	body, err := frontmatter.Parse(bytes.NewReader(raw), &meta)
	if err != nil {
		im.logger.Warnw("Could not parse front matter, treating as plain markdown", "file", path, "error", err)
		body = raw
		meta = postMeta{}
	}

	if meta.Draft {
		im.logger.Debugw("Skipping draft post", "file", path)
		return data.CollectionItem{}, false, nil
	}

	var buf bytes.Buffer
	if err := im.md.Convert(body, &buf); err != nil {
		return data.CollectionItem{}, false, fmt.Errorf("failed to convert %s: %w", path, err)
	}

	slug := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	item := data.CollectionItem{
		ID:             firstNonEmpty(meta.ID, slug),
		Title:          firstNonEmpty(meta.Title, im.title.String(strings.NewReplacer("-", " ", "_", " ").Replace(slug))),
		Content:        buf.String(),
		ImageURL:       meta.Image,
		Date:           im.normalizeDate(path, meta.Date),
		Category:       meta.Category,
		Author:         meta.Author,
		SeoTitle:       meta.SeoTitle,
		SeoDescription: meta.SeoDescription,
		GeoPosition:    meta.GeoPosition,
	}

	return item, true, nil
}

func (im *BlogImporter) normalizeDate(path, value string) string {
	if value == "" {
		return ""
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			if layout == time.DateOnly {
				return t.Format(time.DateOnly)
			}
			return t.Format(time.RFC3339)
		}
	}

	im.logger.Warnw("Unrecognized post date, keeping it as written", "file", path, "date", value)
	return value
}

// Import loads dir and merges the posts into collection_blog. Posts whose id
// already exists are replaced in place; new posts are added newest first.
// Existing entries are carried over verbatim, and the import is aborted when
// the stored collection cannot be read.
func (im *BlogImporter) Import(ctx context.Context, dir string) (int, error) {
	posts, err := im.Load(dir)
	if err != nil {
		return 0, err
	}
	if len(posts) == 0 {
		return 0, fmt.Errorf("%w in %s", ErrNoPosts, dir)
	}

	existing, err := im.existing(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read blog collection, nothing imported: %w", err)
	}

	merged, err := MergeItems(existing, posts)
	if err != nil {
		return 0, err
	}

	if err := im.store.Write(ctx, data.KeyCollectionBlog, map[string]any{"items": merged}); err != nil {
		return 0, fmt.Errorf("failed to write blog collection: %w", err)
	}

	im.logger.Infow("Imported blog posts", "dir", dir, "posts", len(posts), "total", len(merged))
	return len(posts), nil
}

func (im *BlogImporter) existing(ctx context.Context) ([]json.RawMessage, error) {
	doc, err := im.store.ReadStrict(ctx, data.KeyCollectionBlog)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return content.RawItems(doc)
}

// MergeItems folds incoming posts into the stored entries. Stored entries are
// matched on their string id and kept byte for byte otherwise.
func MergeItems(existing []json.RawMessage, incoming []data.CollectionItem) ([]json.RawMessage, error) {
	byID := make(map[string]data.CollectionItem, len(incoming))
	for _, item := range incoming {
		byID[item.ID] = item
	}

	merged := make([]json.RawMessage, 0, len(existing)+len(incoming))
	for _, raw := range existing {
		id, err := jsonparser.GetString(raw, "id")
		if replacement, ok := byID[id]; ok && err == nil && id != "" {
			encoded, err := json.Marshal(replacement)
			if err != nil {
				return nil, fmt.Errorf("failed to encode post %s: %w", id, err)
			}
			merged = append(merged, encoded)
			delete(byID, id)
			continue
		}
		merged = append(merged, raw)
	}

	var added []data.CollectionItem
	for _, item := range incoming {
		if _, ok := byID[item.ID]; ok {
			added = append(added, item)
			delete(byID, item.ID)
		}
	}

	sort.SliceStable(added, func(i, j int) bool {
		return added[i].Date > added[j].Date
	})

	out := make([]json.RawMessage, 0, len(added)+len(merged))
	for _, item := range added {
		encoded, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("failed to encode post %s: %w", item.ID, err)
		}
		out = append(out, encoded)
	}

	return append(out, merged...), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
