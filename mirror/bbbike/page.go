package bbbike

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// Entry is a single downloadable file on a city's download page.
type Entry struct {
	Filename   string
	URL        string
	Format     string
	Size       string
	LastUpdate string
}

// parseDownloadPage extracts the download links from a city page. The
// server marks them with class="download_link"; the title attribute
// carries the last update time and a nested span the file size.
func parseDownloadPage(r io.Reader, baseURL string) ([]Entry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "parsing download page")
	}

	var entries []Entry
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "download_link") {
			if e, ok := linkEntry(n, baseURL); ok {
				entries = append(entries, e)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(entries) == 0 {
		return nil, errors.New("download page contains no download links")
	}
	return entries, nil
}

func linkEntry(n *html.Node, baseURL string) (Entry, bool) {
	e := Entry{}
	for _, a := range n.Attr {
		switch a.Key {
		case "href":
			e.Filename = a.Val
		case "title":
			e.LastUpdate = strings.TrimSpace(strings.TrimPrefix(a.Val, "last update:"))
		}
	}
	if e.Filename == "" || strings.HasSuffix(e.Filename, "/") {
		return Entry{}, false
	}
	e.URL = baseURL + e.Filename
	if i := strings.Index(e.Filename, ".osm"); i >= 0 {
		e.Format = e.Filename[i+len(".osm"):]
	}
	e.Size = linkSize(n)
	return e, true
}

// linkSize returns the text of the span holding the file size,
// e.g. <span class="size">19M</span>.
func linkSize(n *html.Node) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "span" && hasClass(c, "size") {
			return strings.TrimSpace(nodeText(c))
		}
		if s := linkSize(c); s != "" {
			return s
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
