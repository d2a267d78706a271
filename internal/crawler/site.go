package crawler

import (
	"context"
	"fmt"

	"sjsage522/estatecrawler/logger"
)

// DefaultMaxPages bounds a site crawl when no limit is configured
const DefaultMaxPages = 40

// Options tunes how site crawlers walk their sites
type Options struct {
	MaxPages        int
	SkipFailedPages bool
	Observer        Observer
}

// SiteCrawler runs the full pipeline for one site: listing pages, detail
// pages, extraction and location filtering.
type SiteCrawler struct {
	Site SiteConfig

	pager     *PageCrawler
	extractor *Extractor
	observer  Observer
	log       *logger.Logger
}

// NewSiteCrawler creates a crawler for one site sharing fetcher and queue
func NewSiteCrawler(site SiteConfig, fetcher Fetcher, queue *TaskQueue, opts Options) *SiteCrawler {
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}

	pager := NewPageCrawler(site, opts.MaxPages, fetcher, queue, opts.Observer)
	pager.SkipFailedPages = opts.SkipFailedPages

	return &SiteCrawler{
		Site:      site,
		pager:     pager,
		extractor: NewExtractor(site, fetcher, queue),
		observer:  opts.Observer,
		log:       logger.ForSite(site.Name),
	}
}

// GetName returns the site name
func (c *SiteCrawler) GetName() string {
	return c.Site.Name
}

// GetTargetArea returns the area appended to accepted locations
func (c *SiteCrawler) GetTargetArea() string {
	return c.Site.TargetArea
}

// Run crawls the site and returns the listings inside the target
// neighborhoods, in discovery order. On error the listings accepted so far
// are returned with it.
func (c *SiteCrawler) Run(ctx context.Context) (ListingBatch, error) {
	refs, err := c.pager.Crawl(ctx)
	if err != nil {
		return nil, fmt.Errorf("crawling %s: %w", c.Site.Name, err)
	}

	c.log.Info().Int("refs", len(refs)).Msg("Collected detail references")

	batch := make(ListingBatch, 0, len(refs))
	for _, ref := range refs {
		listing, err := c.extractor.Extract(ctx, ref)
		if err != nil {
			return batch, fmt.Errorf("extracting %s: %w", ref, err)
		}

		if listing.Location == Unavailable {
			c.observer.ListingRejected(c.Site.Name, ref, listing)
			continue
		}

		c.observer.ListingAccepted(c.Site.Name, ref, listing)
		batch = append(batch, listing)
	}

	return batch, nil
}
