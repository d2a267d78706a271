package crawler

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageCrawler walks the numbered listing pages of one site and collects
// detail page references
type PageCrawler struct {
	Site            SiteConfig
	MaxPages        int
	SkipFailedPages bool

	fetcher  Fetcher
	queue    *TaskQueue
	observer Observer
}

// NewPageCrawler creates a page crawler for a site
func NewPageCrawler(site SiteConfig, maxPages int, fetcher Fetcher, queue *TaskQueue, observer Observer) *PageCrawler {
	if observer == nil {
		observer = NopObserver{}
	}
	return &PageCrawler{
		Site:     site,
		MaxPages: maxPages,
		fetcher:  fetcher,
		queue:    queue,
		observer: observer,
	}
}

// Links lazily yields detail references page by page. The crawl stops at
// the first page without links, after MaxPages, or at the first fetch error,
// which is yielded with an empty reference. The returned sequence can be
// iterated only once.
func (p *PageCrawler) Links(ctx context.Context) iter.Seq2[string, error] {
	consumed := false

	return func(yield func(string, error) bool) {
		if consumed {
			return
		}
		consumed = true

		for page := 1; page <= p.MaxPages; page++ {
			doc, err := fetchDocument(ctx, p.queue, p.fetcher, p.Site.Name, p.Site.PageURL(page))
			if err != nil {
				if p.SkipFailedPages && ctx.Err() == nil {
					p.observer.PageFailed(p.Site.Name, page, err)
					continue
				}
				yield("", fmt.Errorf("listing page %d: %w", page, err))
				return
			}

			links := extractLinks(doc.Selection, p.Site.ListingSelector)
			p.observer.PageFetched(p.Site.Name, page, len(links))
			if len(links) == 0 {
				return
			}

			for _, link := range links {
				if !yield(link, nil) {
					return
				}
			}
		}
	}
}

// Crawl collects every reference Links yields
func (p *PageCrawler) Crawl(ctx context.Context) ([]string, error) {
	var refs []string
	for ref, err := range p.Links(ctx) {
		if err != nil {
			return refs, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// extractLinks returns the first href of every listing container;
// containers without one are skipped
func extractLinks(doc *goquery.Selection, selector string) []string {
	var links []string

	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		anchor := s
		if goquery.NodeName(s) != "a" {
			anchor = s.Find("a[href]").First()
		}

		href, exists := anchor.Attr("href")
		href = strings.TrimSpace(href)
		if !exists || href == "" {
			return
		}
		links = append(links, href)
	})

	return links
}
