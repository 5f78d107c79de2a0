package dom

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StripHTML returns the text content of a markup fragment.
func StripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}

	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return fragment
	}

	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(Text(n))
	}

	return sb.String()
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	runes := []rune(s)
	return string(runes[:n])
}

// Excerpt is the stripped text of fragment cut to n runes.
func Excerpt(fragment string, n int) string {
	return Truncate(StripHTML(fragment), n)
}
