package dom

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

func Attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

func HasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return true
		}
	}
	return false
}

func SetAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			n.Attr[i].Val = value
			return
		}
	}

	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func IsTag(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && strings.EqualFold(n.Data, tag)
}

func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// Text returns the concatenated text content.
func Text(n *html.Node) string {
	var sb strings.Builder

	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)

	return sb.String()
}

// SetText replaces all children with a single text node.
func SetText(n *html.Node, text string) {
	RemoveChildren(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// ParseFragment parses markup in the context of n.
func ParseFragment(n *html.Node, fragment string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), n)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}
	return nodes, nil
}

// SetInnerHTML replaces all children with the parsed fragment.
func SetInnerHTML(n *html.Node, fragment string) error {
	return ReplaceChildren(n, fragment, nil)
}

// ReplaceChildren swaps the children of n for the parsed fragment, keeping
// the existing children accepted by keep in front.
func ReplaceChildren(n *html.Node, fragment string, keep func(*html.Node) bool) error {
	nodes, err := ParseFragment(n, fragment)
	if err != nil {
		return err
	}

	var kept []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if keep != nil && keep(c) {
			kept = append(kept, c)
		}
	}

	RemoveChildren(n)

	for _, k := range kept {
		n.AppendChild(k)
	}
	for _, child := range nodes {
		n.AppendChild(child)
	}

	return nil
}

func Classes(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	SetAttr(n, "class", strings.TrimSpace(Attr(n, "class")+" "+class))
}

func RemoveClass(n *html.Node, class string) {
	if !HasClass(n, class) {
		return
	}

	kept := make([]string, 0)
	for _, c := range Classes(n) {
		if c != class {
			kept = append(kept, c)
		}
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// SetStyle sets one declaration of the inline style attribute, keeping the others.
func SetStyle(n *html.Node, property, value string) {
	decls := map[string]string{}
	var order []string

	for _, decl := range strings.Split(Attr(n, "style"), ";") {
		name, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, seen := decls[name]; !seen {
			order = append(order, name)
		}
		decls[name] = strings.TrimSpace(val)
	}

	if _, seen := decls[property]; !seen {
		order = append(order, property)
	}
	decls[property] = value

	parts := make([]string, 0, len(order))
	for _, name := range order {
		parts = append(parts, name+": "+decls[name])
	}

	SetAttr(n, "style", strings.Join(parts, "; ")+";")
}

// Style parses the inline style attribute.
func Style(n *html.Node) map[string]string {
	out := map[string]string{}
	for _, decl := range strings.Split(Attr(n, "style"), ";") {
		name, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out[strings.TrimSpace(name)] = strings.TrimSpace(val)
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
