package crawler

import (
	"context"
	"io"
	"strconv"

	"sjsage522/estatecrawler/helpers"
)

// Unavailable is the value of any listing field that could not be extracted
const Unavailable = "N/A"

// Field names of a listing, in dataset column order
const (
	FieldPrice     = "price"
	FieldArea      = "area"
	FieldBedrooms  = "bedrooms"
	FieldBathrooms = "bathrooms"
	FieldLocation  = "location"
)

// FieldNames lists every listing field in dataset column order
var FieldNames = []string{FieldPrice, FieldArea, FieldBedrooms, FieldBathrooms, FieldLocation}

// Listing represents one scraped property record
type Listing struct {
	Price     string `json:"price"`
	Area      string `json:"area"`
	Bedrooms  string `json:"bedrooms"`
	Bathrooms string `json:"bathrooms"`
	Location  string `json:"location"`
}

// NewListing returns a listing with every field set to Unavailable
func NewListing() Listing {
	return Listing{
		Price:     Unavailable,
		Area:      Unavailable,
		Bedrooms:  Unavailable,
		Bathrooms: Unavailable,
		Location:  Unavailable,
	}
}

// Key is the composite identity of a listing: two listings are duplicates
// iff all five fields are textually equal.
type Key [5]string

// Key returns the composite identity of the listing
func (l Listing) Key() Key {
	return Key{l.Price, l.Area, l.Bedrooms, l.Bathrooms, l.Location}
}

// Record returns the listing as a row in dataset column order
func (l Listing) Record() []string {
	return []string{l.Price, l.Area, l.Bedrooms, l.Bathrooms, l.Location}
}

// set assigns a field by name
func (l *Listing) set(field, value string) {
	switch field {
	case FieldPrice:
		l.Price = value
	case FieldArea:
		l.Area = value
	case FieldBedrooms:
		l.Bedrooms = value
	case FieldBathrooms:
		l.Bathrooms = value
	case FieldLocation:
		l.Location = value
	}
}

// ListingBatch is the ordered output of one or more site runs
type ListingBatch []Listing

// RuleKind selects how a field rule locates its element
type RuleKind int

const (
	// RuleAttribute matches the element whose aria-label equals the label
	RuleAttribute RuleKind = iota + 1
	// RuleTextAnchor matches the element whose text equals the label and
	// takes the value from the element that follows it
	RuleTextAnchor
)

func (k RuleKind) String() string {
	switch k {
	case RuleAttribute:
		return "aria_label"
	case RuleTextAnchor:
		return "anchor_text"
	default:
		return "unknown"
	}
}

// FieldRule is one extraction rule of a field schema
type FieldRule struct {
	Kind  RuleKind
	Label string
	// Tag restricts matching to one element name; empty matches any
	Tag string
}

// FieldSchema maps field names to extraction rules
type FieldSchema map[string]FieldRule

// SiteConfig describes one listing site
type SiteConfig struct {
	Name                string
	BaseDomain          string
	BasePath            string
	ListingSelector     string
	Fields              FieldSchema
	TargetNeighborhoods []string
	TargetArea          string
}

// PageURL returns the URL of a numbered listing page
func (s SiteConfig) PageURL(page int) string {
	return helpers.JoinURL(s.BaseDomain, s.BasePath) + strconv.Itoa(page)
}

// Fetcher retrieves a document by URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.Reader, error)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context, url string) (io.Reader, error)

// Fetch calls f(ctx, url)
func (f FetcherFunc) Fetch(ctx context.Context, url string) (io.Reader, error) {
	return f(ctx, url)
}
