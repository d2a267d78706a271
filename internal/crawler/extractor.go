package crawler

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/estatecrawler/helpers"
)

// Extractor turns detail pages of one site into listings
type Extractor struct {
	Site    SiteConfig
	fetcher Fetcher
	queue   *TaskQueue
}

// NewExtractor creates an extractor for a site
func NewExtractor(site SiteConfig, fetcher Fetcher, queue *TaskQueue) *Extractor {
	return &Extractor{
		Site:    site,
		fetcher: fetcher,
		queue:   queue,
	}
}

// Extract fetches the detail page behind ref and extracts one listing.
// Missing fields never fail; only fetch and parse errors are returned.
func (e *Extractor) Extract(ctx context.Context, ref string) (Listing, error) {
	detailURL := helpers.ResolveURL(e.Site.BaseDomain, ref)

	doc, err := fetchDocument(ctx, e.queue, e.fetcher, e.Site.Name, detailURL)
	if err != nil {
		return Listing{}, err
	}

	listing := ExtractFields(doc.Selection, e.Site.Fields)
	listing.Location = FilterLocation(listing.Location, e.Site.TargetNeighborhoods, e.Site.TargetArea)

	return listing, nil
}

// ExtractFields applies every schema rule to a parsed document
func ExtractFields(doc *goquery.Selection, schema FieldSchema) Listing {
	listing := NewListing()
	for _, field := range FieldNames {
		rule, ok := schema[field]
		if !ok {
			continue
		}
		listing.set(field, resolveField(doc, rule))
	}
	return listing
}

// resolveField locates the value element of a rule and returns its trimmed
// text, or Unavailable when no element matches.
func resolveField(doc *goquery.Selection, rule FieldRule) string {
	var sel *goquery.Selection

	switch rule.Kind {
	case RuleAttribute:
		sel = findByAriaLabel(doc, rule.Tag, rule.Label)
	case RuleTextAnchor:
		if anchor := findByExactText(doc, rule.Tag, rule.Label); anchor.Length() > 0 {
			sel = nextElement(anchor)
		}
	}

	if sel == nil || sel.Length() == 0 {
		return Unavailable
	}
	return strings.TrimSpace(sel.Text())
}

func findByAriaLabel(doc *goquery.Selection, tag, label string) *goquery.Selection {
	return doc.Find(tagSelector(tag)).FilterFunction(func(_ int, s *goquery.Selection) bool {
		value, ok := s.Attr("aria-label")
		return ok && value == label
	}).First()
}

// findByExactText returns the innermost element whose trimmed text is label
func findByExactText(doc *goquery.Selection, tag, label string) *goquery.Selection {
	hasText := func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == label
	}

	matches := doc.Find(tagSelector(tag)).FilterFunction(hasText)
	for i := range matches.Nodes {
		candidate := matches.Eq(i)
		if candidate.Find("*").FilterFunction(hasText).Length() == 0 {
			return candidate
		}
	}
	return matches.First()
}

// nextElement returns the element that follows sel in document order,
// skipping its own descendants.
func nextElement(sel *goquery.Selection) *goquery.Selection {
	for s := sel; s.Length() > 0; s = s.Parent() {
		if next := s.Next(); next.Length() > 0 {
			return next
		}
	}
	return sel.Next()
}

func tagSelector(tag string) string {
	if tag == "" {
		return "*"
	}
	return tag
}
