package crawler

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	crawlerrors "sjsage522/estatecrawler/pkg/errors"
	"sjsage522/estatecrawler/services/cache"
)

// MockCacheService implements a simple in-memory cache for testing
type MockCacheService struct {
	mu    sync.Mutex
	cache map[string][]byte
}

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		cache: make(map[string][]byte),
	}
}

func (m *MockCacheService) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if val, ok := m.cache[key]; ok {
		return val, nil
	}
	return nil, cache.ErrMiss
}

func (m *MockCacheService) Set(key string, value []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[key] = value
	return nil
}

func (m *MockCacheService) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, key)
	return nil
}

// mockFetcher serves canned HTML by URL and records every request
type mockFetcher struct {
	mu       sync.Mutex
	pages    map[string]string
	errs     map[string]error
	requests []string
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		pages: make(map[string]string),
		errs:  make(map[string]error),
	}
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) (io.Reader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, url)
	if err, ok := m.errs[url]; ok {
		return nil, err
	}
	if html, ok := m.pages[url]; ok {
		return strings.NewReader(html), nil
	}
	return nil, crawlerrors.NewHTTPStatus("test", 404)
}

func (m *mockFetcher) Requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.requests...)
}

// recordingObserver keeps every event for assertions
type recordingObserver struct {
	mu       sync.Mutex
	pages    []int
	accepted []Listing
	rejected []Listing
	failed   []string
}

func (r *recordingObserver) PageFetched(site string, page, links int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, links)
}

func (r *recordingObserver) PageFailed(site string, page int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, err.Error())
}

func (r *recordingObserver) ListingAccepted(site, ref string, l Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accepted = append(r.accepted, l)
}

func (r *recordingObserver) ListingRejected(site, ref string, l Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, l)
}

// testQueue returns a queue without delay and a single attempt
func testQueue() *TaskQueue {
	return NewTaskQueue(0, RetryPolicy{MaxAttempts: 1})
}

func (r *recordingObserver) MergeSummary(existing, incoming, merged, added int) {}
