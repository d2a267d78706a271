package internal

import (
	"context"

	"sjsage522/estatecrawler/internal/crawler"
	"sjsage522/estatecrawler/services/cache"
	"sjsage522/estatecrawler/services/publisher"
)

// ListingSink receives newly added listings after a merge
type ListingSink interface {
	WriteBatch(ctx context.Context, listings []crawler.Listing) (int64, error)
}

// Dependencies holds the optional service dependencies; nil members are
// disabled
type Dependencies struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Sink      ListingSink
}
