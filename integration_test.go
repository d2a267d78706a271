package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/estatecrawler/config"
	"sjsage522/estatecrawler/internal"
	"sjsage522/estatecrawler/internal/crawler"
	"sjsage522/estatecrawler/services/worker"
	"sjsage522/estatecrawler/storage"
)

const listingPageHTML = `
<!DOCTYPE html>
<html>
<body>
    <div class="results">
        <article class="card"><a href="/property/1">Apartment in Achrafieh</a></article>
        <article class="card"><span>Sponsored</span></article>
        <article class="card"><a href="/property/2">Villa in Byblos</a></article>
    </div>
</body>
</html>
`

const detailPageHTML = `
<!DOCTYPE html>
<html>
<body>
    <h1>%s</h1>
    <span aria-label="Price">%s</span>
    <ul class="facts">
        <li><span>Area</span><span>%s</span></li>
        <li><span aria-label="Bedrooms">3</span></li>
    </ul>
    <p aria-label="Location">%s</p>
</body>
</html>
`

func newListingServer(t *testing.T) (*httptest.Server, *[]string) {
	var mu sync.Mutex
	var requests []string

	mux := http.NewServeMux()
	mux.HandleFunc("/buy", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, listingPageHTML)
			return
		}
		fmt.Fprint(w, "<html><body><div class=\"results\"></div></body></html>")
	})
	mux.HandleFunc("/property/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, detailPageHTML, "Apartment", "$450,000", "210 m²", "Sassine, Achrafieh")
	})
	mux.HandleFunc("/property/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, detailPageHTML, "Villa", "$900,000", "400 m²", "Byblos, Jbeil")
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.URL.RequestURI())
		mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	return server, &requests
}

func sitesFor(t *testing.T, baseDomain string) []crawler.SiteConfig {
	doc := `
sites:
  local:
    base_domain: ` + baseDomain + `
    base_path: /buy?page=
    listing_selector: article.card
    target_neighborhoods: [Achrafieh, Hamra]
    fields:
      price:     {aria_label: Price}
      area:      {anchor_text: Area}
      bedrooms:  {aria_label: Bedrooms, tag: span}
      location:  {aria_label: Location}
`
	sites, err := config.ParseSites([]byte(doc), "Beirut", nil)
	require.NoError(t, err)
	return sites
}

func TestEndToEndCrawlAndMerge(t *testing.T) {
	server, requests := newListingServer(t)
	store := storage.NewCSVStore(filepath.Join(t.TempDir(), "output", "listings.csv"))

	fetcher := crawler.NewHTTPFetcher(nil, time.Minute)
	queue := crawler.NewTaskQueue(time.Millisecond, crawler.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond})
	defer queue.Close()

	crawlers := crawler.CreateCrawlers(sitesFor(t, server.URL), fetcher, queue, crawler.Options{MaxPages: 3})
	w := worker.NewWorker(crawlers, store, internal.Dependencies{}, nil)

	require.NoError(t, w.Run(context.Background()))

	dataset, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, storage.Dataset{{
		Price:     "$450,000",
		Area:      "210 m²",
		Bedrooms:  "3",
		Bathrooms: crawler.Unavailable,
		Location:  "Sassine, Achrafieh, Beirut",
	}}, dataset)

	assert.Equal(t, []string{
		"/buy?page=1",
		"/buy?page=2",
		"/property/1",
		"/property/2",
	}, *requests)

	// a second run adds nothing
	require.NoError(t, w.Run(context.Background()))
	again, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, dataset, again)
}

func TestEndToEndServerErrorKeepsDataset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	store := storage.NewCSVStore(filepath.Join(t.TempDir(), "listings.csv"))
	existing := storage.Dataset{{Price: "$1", Area: "1", Bedrooms: "1", Bathrooms: "1", Location: "Hamra, Beirut"}}
	require.NoError(t, store.Persist(existing))

	queue := crawler.NewTaskQueue(0, crawler.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond})
	defer queue.Close()

	crawlers := crawler.CreateCrawlers(sitesFor(t, server.URL), crawler.NewHTTPFetcher(nil, time.Minute), queue, crawler.Options{})
	err := worker.NewWorker(crawlers, store, internal.Dependencies{}, nil).Run(context.Background())
	assert.Error(t, err)

	dataset, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Equal(t, existing, dataset)
}
