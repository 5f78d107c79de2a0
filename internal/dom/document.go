package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML page that can be queried and mutated in place.
type Document struct {
	root *html.Node
}

func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	return &Document{root: root}, nil
}

func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

func (d *Document) Root() *html.Node {
	return d.root
}

var (
	selectorsMu sync.Mutex
	selectors   = map[string]cascadia.Selector{}
)

func compile(selector string) (cascadia.Selector, error) {
	selectorsMu.Lock()
	defer selectorsMu.Unlock()

	if sel, ok := selectors[selector]; ok {
		return sel, nil
	}

	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}

	selectors[selector] = sel
	return sel, nil
}

// QueryAll returns every element matching a CSS selector. Invalid selectors
// match nothing.
func (d *Document) QueryAll(selector string) []*html.Node {
	sel, err := compile(selector)
	if err != nil {
		return nil
	}
	return sel.MatchAll(d.root)
}

func (d *Document) Query(selector string) *html.Node {
	sel, err := compile(selector)
	if err != nil {
		return nil
	}
	return sel.MatchFirst(d.root)
}

func (d *Document) ByID(id string) *html.Node {
	return d.Find(func(n *html.Node) bool {
		return n.Type == html.ElementNode && Attr(n, "id") == id
	})
}

// Find walks the tree depth-first and returns the first element accepted by match.
func (d *Document) Find(match func(*html.Node) bool) *html.Node {
	var found *html.Node

	walk(d.root, func(n *html.Node) bool {
		if match(n) {
			found = n
			return false
		}
		return true
	})

	return found
}

func (d *Document) FindAll(match func(*html.Node) bool) []*html.Node {
	var found []*html.Node

	walk(d.root, func(n *html.Node) bool {
		if match(n) {
			found = append(found, n)
		}
		return true
	})

	return found
}

// WithAttr lists every element carrying the attribute, in document order.
func (d *Document) WithAttr(name string) []*html.Node {
	return d.FindAll(func(n *html.Node) bool {
		return n.Type == html.ElementNode && HasAttr(n, name)
	})
}

func (d *Document) element(a atom.Atom) *html.Node {
	return d.Find(func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	})
}

// HTML returns the <html> element. html.Parse always creates it.
func (d *Document) HTML() *html.Node {
	return d.element(atom.Html)
}

func (d *Document) Head() *html.Node {
	return d.element(atom.Head)
}

func (d *Document) Body() *html.Node {
	return d.element(atom.Body)
}

func (d *Document) Title() string {
	if t := d.element(atom.Title); t != nil {
		return Text(t)
	}
	return ""
}

func (d *Document) SetTitle(title string) {
	t := d.element(atom.Title)
	if t == nil {
		t = NewElement("title")
		if head := d.Head(); head != nil {
			head.AppendChild(t)
		}
	}

	SetText(t, title)
}

// EnsureHeadElement returns the first head element matching selector, creating
// it from tag and attrs when absent.
func (d *Document) EnsureHeadElement(selector, tag string, attrs ...html.Attribute) *html.Node {
	if n := d.Query(selector); n != nil {
		return n
	}

	n := NewElement(tag, attrs...)
	if head := d.Head(); head != nil {
		head.AppendChild(n)
	}

	return n
}

func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if n == nil {
		return true
	}

	if n.Type == html.ElementNode && !visit(n) {
		return false
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}

	return true
}
