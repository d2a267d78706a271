package crawler

import (
	"context"

	"sjsage522/estatecrawler/logger"
)

// Crawler produces a batch of listings for one site
type Crawler interface {
	Run(ctx context.Context) (ListingBatch, error)
	GetName() string
	GetTargetArea() string
}

// CreateCrawlers creates one site crawler per configured site, in
// configuration order. All crawlers share the fetcher and the queue so the
// request interval holds across sites.
func CreateCrawlers(sites []SiteConfig, fetcher Fetcher, queue *TaskQueue, opts Options) []Crawler {
	crawlers := make([]Crawler, 0, len(sites))
	for _, site := range sites {
		crawlers = append(crawlers, NewSiteCrawler(site, fetcher, queue, opts))
	}

	log := logger.ForWorker()
	log.Info().Int("count", len(crawlers)).Msg("Created crawlers")
	for i, c := range crawlers {
		log.Debug().Int("index", i).Str("site", c.GetName()).Msg("Crawler registered")
	}

	return crawlers
}
