package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sjsage522/estatecrawler/internal"
	"sjsage522/estatecrawler/internal/crawler"
	"sjsage522/estatecrawler/logger"
	"sjsage522/estatecrawler/services/publisher"
	"sjsage522/estatecrawler/storage"
)

// Worker runs every site crawler and merges the results into the dataset
type Worker struct {
	crawlers []crawler.Crawler
	store    storage.Store
	deps     internal.Dependencies
	observer crawler.Observer
	log      *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(
	crawlers []crawler.Crawler,
	store storage.Store,
	deps internal.Dependencies,
	observer crawler.Observer,
) *Worker {
	if observer == nil {
		observer = crawler.NopObserver{}
	}
	return &Worker{
		crawlers: crawlers,
		store:    store,
		deps:     deps,
		observer: observer,
		log:      logger.ForWorker(),
	}
}

// RunAll runs the crawlers one after another in configuration order and
// concatenates their listings. A failing site is logged and skipped, its
// partial listings are kept and its error is joined into the returned error.
// Every location is then normalized with the target area of its site.
func (w *Worker) RunAll(ctx context.Context) (crawler.ListingBatch, error) {
	var (
		batch crawler.ListingBatch
		areas []string
		errs  []error
	)

	for _, c := range w.crawlers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		start := time.Now()
		listings, err := c.Run(ctx)
		if err != nil {
			w.log.Error().
				Err(err).
				Str("site", c.GetName()).
				Int("partial", len(listings)).
				Msg("Site crawl failed")
			errs = append(errs, fmt.Errorf("%s: %w", c.GetName(), err))
		}

		w.log.Info().
			Str("site", c.GetName()).
			Int("listings", len(listings)).
			Dur("elapsed", time.Since(start)).
			Msg("Site crawled")

		batch = append(batch, listings...)
		for range listings {
			areas = append(areas, c.GetTargetArea())
		}
	}

	for i := range batch {
		batch[i].Location = crawler.EnsureAreaSuffix(batch[i].Location, areas[i])
	}

	return batch, errors.Join(errs...)
}

// Run crawls every site, merges the batch into the stored dataset and
// persists it. Newly added listings are then published and mirrored when
// those services are configured; their failures are only logged. Site
// errors are returned after the dataset is saved.
func (w *Worker) Run(ctx context.Context) error {
	start := time.Now()

	batch, crawlErr := w.RunAll(ctx)

	existing, err := w.store.Load()
	if err != nil {
		return errors.Join(crawlErr, err)
	}

	result := storage.Merge(existing, storage.Dataset(batch))
	w.observer.MergeSummary(len(existing), len(batch), len(result.Dataset), len(result.Added))

	if err := w.store.Persist(result.Dataset); err != nil {
		return errors.Join(crawlErr, err)
	}

	if logger.IsDebugEnabled() && len(result.Added) > 0 {
		sample, _ := json.Marshal(result.Added[0])
		w.log.Debug().RawJSON("listing", sample).Msg("First added listing")
	}

	w.publish(result.Added)
	w.mirror(ctx, result.Added)

	w.log.Info().
		Int("rows", len(result.Dataset)).
		Int("added", len(result.Added)).
		Int("duplicates", result.Duplicates).
		Dur("elapsed", time.Since(start)).
		Msg("Run finished")

	return crawlErr
}

// Cleanup removes exact duplicate rows from the stored dataset
func (w *Worker) Cleanup() (storage.CleanupReport, error) {
	return storage.Cleanup(w.store)
}

// publish sends each listing to the stream and trims the streams afterwards
func (w *Worker) publish(listings []crawler.Listing) {
	pub := w.deps.Publisher
	if pub == nil || len(listings) == 0 {
		return
	}

	log := logger.ForPublisher()
	published := 0
	for _, l := range listings {
		data, err := json.Marshal(l)
		if err != nil {
			log.Error().Err(err).Msg("Failed to encode listing")
			continue
		}

		if err := pub.Publish(publisher.ListingField, data); err != nil {
			log.Error().Err(err).Msg("Failed to publish listing")
			continue
		}
		published++
	}

	if err := pub.TrimStreams(); err != nil {
		log.Error().Err(err).Msg("Failed to trim streams")
	}

	log.Info().Int("published", published).Msg("Listings published")
}

func (w *Worker) mirror(ctx context.Context, listings []crawler.Listing) {
	if w.deps.Sink == nil || len(listings) == 0 {
		return
	}

	inserted, err := w.deps.Sink.WriteBatch(ctx, listings)
	if err != nil {
		logger.LogError("store", err, "failed to mirror %d listings", len(listings))
		return
	}
	w.log.Info().Int64("inserted", inserted).Msg("Listings mirrored")
}
