package storage

import (
	"sjsage522/estatecrawler/internal/crawler"
	"sjsage522/estatecrawler/logger"
)

// Header is the column row of the dataset file
var Header = []string{"price", "area", "bedrooms", "bathrooms", "location"}

// Dataset is the ordered, persisted collection of listings
type Dataset []crawler.Listing

// Store loads and persists a whole dataset
type Store interface {
	Load() (Dataset, error)
	Persist(Dataset) error
}

// MergeResult is the outcome of merging a batch into a dataset
type MergeResult struct {
	Dataset Dataset
	// Added holds the incoming listings that were not already present
	Added      []crawler.Listing
	Duplicates int
}

// Merge appends incoming to existing and drops every listing whose
// composite key was already seen, so existing rows always win. Duplicates
// inside incoming are dropped too, also when existing is empty, so a
// dataset written by Merge never holds two equal rows.
func Merge(existing, incoming Dataset) MergeResult {
	seen := make(map[crawler.Key]struct{}, len(existing)+len(incoming))
	result := MergeResult{Dataset: make(Dataset, 0, len(existing)+len(incoming))}

	for i, l := range append(existing[:len(existing):len(existing)], incoming...) {
		key := l.Key()
		if _, dup := seen[key]; dup {
			result.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		result.Dataset = append(result.Dataset, l)
		if i >= len(existing) {
			result.Added = append(result.Added, l)
		}
	}

	return result
}

// CleanupReport describes a maintenance pass over the stored dataset
type CleanupReport struct {
	Before     int
	After      int
	Duplicates []crawler.Listing
}

// DedupeRows removes rows equal to an earlier row, keeping the first.
// Rows are compared as whole records rather than by Key; for the five
// string columns of a listing the two notions select the same rows.
func DedupeRows(rows Dataset) (Dataset, []crawler.Listing) {
	seen := make(map[crawler.Listing]struct{}, len(rows))
	kept := make(Dataset, 0, len(rows))
	var removed []crawler.Listing

	for _, row := range rows {
		if _, dup := seen[row]; dup {
			removed = append(removed, row)
			continue
		}
		seen[row] = struct{}{}
		kept = append(kept, row)
	}

	return kept, removed
}

// Cleanup loads the dataset, drops exact duplicate rows and persists the
// result when anything was removed. Merge keeps its own output free of
// duplicates; Cleanup repairs files that gained them elsewhere, such as
// hand edits, concatenated exports or older runs.
func Cleanup(store Store) (CleanupReport, error) {
	rows, err := store.Load()
	if err != nil {
		return CleanupReport{}, err
	}

	kept, removed := DedupeRows(rows)
	report := CleanupReport{Before: len(rows), After: len(kept), Duplicates: removed}

	log := logger.ForStore()
	for _, dup := range removed {
		log.Info().Strs("row", dup.Record()).Msg("Duplicate row")
	}

	if len(removed) == 0 {
		log.Info().Int("rows", len(rows)).Msg("No duplicate rows found")
		return report, nil
	}

	if err := store.Persist(kept); err != nil {
		return report, err
	}

	log.Info().Int("before", report.Before).Int("after", report.After).Msg("Duplicate rows removed")
	return report, nil
}
