package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/estatecrawler/helpers"
	"sjsage522/estatecrawler/logger"
	crawlerrors "sjsage522/estatecrawler/pkg/errors"
	"sjsage522/estatecrawler/services/cache"
)

// HTTPFetcher fetches pages over HTTP and remembers rate limited hosts
type HTTPFetcher struct {
	CacheSvc  cache.CacheService
	BlockTime time.Duration

	fetchFunc func(ctx context.Context, url string) (io.Reader, error)
}

// NewHTTPFetcher creates a fetcher; cacheSvc may be nil
func NewHTTPFetcher(cacheSvc cache.CacheService, blockTime time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		CacheSvc:  cacheSvc,
		BlockTime: blockTime,
		fetchFunc: helpers.FetchWithRandomHeaders,
	}
}

// Fetch fetches a URL unless its host is currently blocked
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (io.Reader, error) {
	host := hostOf(rawURL)

	if f.CacheSvc != nil {
		_, err := f.CacheSvc.Get(cache.BlockKey(host))
		switch {
		case err == nil:
			return nil, crawlerrors.NewRateLimit(host, f.BlockTime)
		case !errors.Is(err, cache.ErrMiss):
			// an unreachable cache must not stop the crawl
			logger.ForCache().WithError(err).Warn().Str("host", host).Msg("Failed to read rate limit flag")
		}
	}

	body, err := f.fetchFunc(ctx, rawURL)
	if err != nil {
		if f.CacheSvc != nil && crawlerrors.IsType(err, crawlerrors.ErrorTypeRateLimit) {
			value := []byte(fmt.Sprintf("%d", f.BlockTime/time.Second))
			if setErr := f.CacheSvc.Set(cache.BlockKey(host), value, f.BlockTime); setErr != nil {
				logger.ForCache().WithError(setErr).Warn().Str("host", host).Msg("Failed to set rate limit flag")
			}
		}
		return nil, err
	}

	return body, nil
}

// fetchDocument fetches a URL through the queue and parses it
func fetchDocument(ctx context.Context, queue *TaskQueue, fetcher Fetcher, site, rawURL string) (*goquery.Document, error) {
	var doc *goquery.Document

	err := queue.Do(ctx, rawURL, func(ctx context.Context) error {
		body, err := fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return err
		}

		doc, err = createDocument(site, body)
		return err
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// createDocument creates a goquery document from a reader
func createDocument(site string, reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, crawlerrors.NewParsing(site, "HTML parsing failed", err)
	}
	return doc, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
