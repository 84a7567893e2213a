package fetch

import (
	"context"
	"net/url"
	"strings"
)

// Crawl walks pages breadth-first from start, staying on the start host, and
// returns up to max page URLs in visit order. Pages that fail to download are
// skipped; the crawl itself only errors on an unparseable start URL or a
// cancelled context.
func (f *Fetcher) Crawl(ctx context.Context, start string, max int) ([]string, error) {
	if max <= 0 || max > f.cfg.MaxCrawlPages {
		max = f.cfg.MaxCrawlPages
	}
	startURL, err := url.Parse(start)
	if err != nil {
		return nil, &Error{URL: start, Err: err}
	}
	hostBase := startURL.Scheme + "://" + startURL.Host + "/"

	visited := make(map[string]bool)
	queue := []string{start}
	order := make([]string, 0, max)

	for len(queue) > 0 && len(order) < max {
		if err := ctx.Err(); err != nil {
			return order, err
		}
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true

		body, err := f.download(ctx, cur)
		if err != nil {
			f.logger.Debug("skipping page", "url", cur, "error", err)
			continue
		}
		order = append(order, cur)

		_, hrefs, err := ExtractText(strings.NewReader(string(body)))
		if err != nil {
			continue
		}
		for _, href := range hrefs {
			abs := resolveHref(cur, href)
			if abs == "" || !strings.HasPrefix(abs, hostBase) {
				continue
			}
			if !visited[abs] {
				queue = append(queue, abs)
			}
		}
	}
	return order, nil
}

// resolveHref resolves href against the current page URL, dropping fragments,
// empty links, and non-HTTP schemes.
func resolveHref(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "data:") {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	refURL, err := url.Parse(href)
	if err != nil {
		return ""
	}
	u := baseURL.ResolveReference(refURL)
	u.Fragment = ""
	return u.String()
}
