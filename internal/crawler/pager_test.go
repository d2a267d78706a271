package crawler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	crawlerrors "sjsage522/estatecrawler/pkg/errors"
)

func pagerSite() SiteConfig {
	return SiteConfig{
		Name:            "example",
		BaseDomain:      "https://example.com",
		BasePath:        "/buy?page=",
		ListingSelector: "div.card",
	}
}

func listPage(hrefs ...string) string {
	html := "<html><body>"
	for _, h := range hrefs {
		if h == "" {
			html += `<div class="card"><span>no link</span></div>`
			continue
		}
		html += `<div class="card"><h2>Flat</h2><a href="` + h + `">view</a><a href="/other">x</a></div>`
	}
	return html + "</body></html>"
}

func TestPageCrawlerStopsAtEmptyPage(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.pages["https://example.com/buy?page=1"] = listPage("/l/1", "/l/2")
	fetcher.pages["https://example.com/buy?page=2"] = listPage("/l/3")
	fetcher.pages["https://example.com/buy?page=3"] = listPage()
	fetcher.pages["https://example.com/buy?page=4"] = listPage("/l/4")

	queue := testQueue()
	defer queue.Close()
	observer := &recordingObserver{}

	crawler := NewPageCrawler(pagerSite(), 10, fetcher, queue, observer)
	refs, err := crawler.Crawl(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []string{"/l/1", "/l/2", "/l/3"}, refs)
	assert.Equal(t, []int{2, 1, 0}, observer.pages)
	assert.Len(t, fetcher.Requests(), 3)
}

func TestPageCrawlerRespectsMaxPages(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.pages["https://example.com/buy?page=1"] = listPage("/l/1")
	fetcher.pages["https://example.com/buy?page=2"] = listPage("/l/2")
	fetcher.pages["https://example.com/buy?page=3"] = listPage("/l/3")

	queue := testQueue()
	defer queue.Close()

	refs, err := NewPageCrawler(pagerSite(), 2, fetcher, queue, nil).Crawl(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"/l/1", "/l/2"}, refs)
}

func TestPageCrawlerSkipsContainersWithoutLink(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.pages["https://example.com/buy?page=1"] = listPage("", "/l/1", "")
	fetcher.pages["https://example.com/buy?page=2"] = listPage()

	queue := testQueue()
	defer queue.Close()

	refs, err := NewPageCrawler(pagerSite(), 5, fetcher, queue, nil).Crawl(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"/l/1"}, refs)
}

func TestPageCrawlerContainerIsAnchor(t *testing.T) {
	site := pagerSite()
	site.ListingSelector = "a.card-link"

	fetcher := newMockFetcher()
	fetcher.pages["https://example.com/buy?page=1"] = `<a class="card-link" href="/l/9"><span>Flat</span></a>`
	fetcher.pages["https://example.com/buy?page=2"] = `<p>nothing</p>`

	queue := testQueue()
	defer queue.Close()

	refs, err := NewPageCrawler(site, 5, fetcher, queue, nil).Crawl(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"/l/9"}, refs)
}

func TestPageCrawlerFetchErrorAborts(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.pages["https://example.com/buy?page=1"] = listPage("/l/1")
	fetcher.errs["https://example.com/buy?page=2"] = crawlerrors.NewNetwork("example", "connection reset", nil)
	fetcher.pages["https://example.com/buy?page=3"] = listPage("/l/3")

	queue := testQueue()
	defer queue.Close()

	refs, err := NewPageCrawler(pagerSite(), 5, fetcher, queue, nil).Crawl(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "listing page 2")
	assert.Equal(t, []string{"/l/1"}, refs)
}

func TestPageCrawlerSkipFailedPages(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.pages["https://example.com/buy?page=1"] = listPage("/l/1")
	fetcher.errs["https://example.com/buy?page=2"] = crawlerrors.NewNetwork("example", "connection reset", nil)
	fetcher.pages["https://example.com/buy?page=3"] = listPage("/l/3")
	fetcher.pages["https://example.com/buy?page=4"] = listPage()

	queue := testQueue()
	defer queue.Close()
	observer := &recordingObserver{}

	crawler := NewPageCrawler(pagerSite(), 5, fetcher, queue, observer)
	crawler.SkipFailedPages = true

	refs, err := crawler.Crawl(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"/l/1", "/l/3"}, refs)
	assert.Len(t, observer.failed, 1)
}

func TestPageCrawlerLinksNotRestartable(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.pages["https://example.com/buy?page=1"] = listPage("/l/1")
	fetcher.pages["https://example.com/buy?page=2"] = listPage()

	queue := testQueue()
	defer queue.Close()

	links := NewPageCrawler(pagerSite(), 5, fetcher, queue, nil).Links(context.Background())

	var first, second []string
	for ref := range links {
		first = append(first, ref)
	}
	for ref := range links {
		second = append(second, ref)
	}

	assert.Equal(t, []string{"/l/1"}, first)
	assert.Empty(t, second)
}
