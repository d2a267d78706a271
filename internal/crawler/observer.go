package crawler

import "sjsage522/estatecrawler/logger"

// Observer is notified of discrete pipeline events
type Observer interface {
	PageFetched(site string, page, links int)
	PageFailed(site string, page int, err error)
	ListingAccepted(site, ref string, l Listing)
	ListingRejected(site, ref string, l Listing)
	MergeSummary(existing, incoming, merged, added int)
}

// LogObserver reports pipeline events through the structured logger
type LogObserver struct{}

func (LogObserver) PageFetched(site string, page, links int) {
	logger.ForSite(site).Info().Int("page", page).Int("links", links).Msg("Listing page fetched")
}

func (LogObserver) PageFailed(site string, page int, err error) {
	logger.ForSite(site).Warn().Err(err).Int("page", page).Msg("Listing page skipped")
}

func (LogObserver) ListingAccepted(site, ref string, l Listing) {
	logger.ForSite(site).Debug().
		Str("ref", ref).
		Str("price", l.Price).
		Str("location", l.Location).
		Msg("Listing accepted")
}

func (LogObserver) ListingRejected(site, ref string, l Listing) {
	logger.ForSite(site).Debug().Str("ref", ref).Msg("Listing outside target area")
}

func (LogObserver) MergeSummary(existing, incoming, merged, added int) {
	logger.ForStore().Info().
		Int("existing", existing).
		Int("incoming", incoming).
		Int("merged", merged).
		Int("added", added).
		Msg("Dataset merged")
}

// NopObserver ignores every event
type NopObserver struct{}

func (NopObserver) PageFetched(string, int, int) {}
func (NopObserver) PageFailed(string, int, error) {}
func (NopObserver) ListingAccepted(string, string, Listing) {}
func (NopObserver) ListingRejected(string, string, Listing) {}
func (NopObserver) MergeSummary(int, int, int, int) {}
