package fetch

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ExtractText parses HTML and returns the visible text plus the href values
// of all anchors. Text under <script> and <style> elements is ignored.
func ExtractText(r io.Reader) (string, []string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	var hrefs []string
	var skipDepth int

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isSkippedElement(n) {
			skipDepth++
		}
		if skipDepth == 0 {
			switch {
			case n.Type == html.TextNode:
				text := strings.TrimSpace(n.Data)
				if text != "" {
					if sb.Len() > 0 {
						sb.WriteByte(' ')
					}
					sb.WriteString(text)
				}
			case n.Type == html.ElementNode && strings.EqualFold(n.Data, "a"):
				for _, attr := range n.Attr {
					if strings.EqualFold(attr.Key, "href") {
						if val := strings.TrimSpace(attr.Val); val != "" {
							hrefs = append(hrefs, val)
						}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if isSkippedElement(n) {
			skipDepth--
		}
	}
	walk(root)
	return sb.String(), hrefs, nil
}

func isSkippedElement(n *html.Node) bool {
	return n.Type == html.ElementNode &&
		(strings.EqualFold(n.Data, "script") || strings.EqualFold(n.Data, "style"))
}
