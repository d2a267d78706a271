package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"sjsage522/estatecrawler/internal/crawler"
	"sjsage522/estatecrawler/logger"
	crawlerrors "sjsage522/estatecrawler/pkg/errors"
)

// CSVStore keeps the dataset in a single CSV file with a header row
type CSVStore struct {
	path   string
	rename func(oldpath, newpath string) error
}

// NewCSVStore creates a store for the given file path
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path, rename: os.Rename}
}

// Path returns the dataset file path
func (s *CSVStore) Path() string {
	return s.path
}

// Load reads the dataset. A missing file is an empty dataset.
func (s *CSVStore) Load() (Dataset, error) {
	file, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.ForStore().Info().Str("path", s.path).Msg("No existing dataset, starting empty")
		return Dataset{}, nil
	}
	if err != nil {
		return nil, crawlerrors.NewPersistence("opening dataset", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(Header)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, crawlerrors.NewPersistence("reading dataset "+s.path, err)
	}
	if len(records) == 0 {
		return Dataset{}, nil
	}
	if !slices.Equal(records[0], Header) {
		return nil, crawlerrors.NewPersistence(fmt.Sprintf("unexpected header %v in %s", records[0], s.path), nil)
	}

	dataset := make(Dataset, 0, len(records)-1)
	for _, r := range records[1:] {
		dataset = append(dataset, crawler.Listing{
			Price:     r[0],
			Area:      r[1],
			Bedrooms:  r[2],
			Bathrooms: r[3],
			Location:  r[4],
		})
	}

	return dataset, nil
}

// Persist replaces the dataset file. Rows are written to a temporary file
// in the same directory and renamed over the old file, so a failed write
// leaves the previous dataset untouched.
func (s *CSVStore) Persist(dataset Dataset) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return crawlerrors.NewPersistence("could not create output dir", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*")
	if err != nil {
		return crawlerrors.NewPersistence("could not create temp file", err)
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(s.fileMode()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return crawlerrors.NewPersistence("setting file mode", err)
	}

	if err := writeRows(tmp, dataset); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return crawlerrors.NewPersistence("csv write error", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return crawlerrors.NewPersistence("closing temp file", err)
	}

	if err := s.rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return crawlerrors.NewPersistence("replacing dataset", err)
	}

	logger.ForStore().Info().Int("rows", len(dataset)).Str("path", s.path).Msg("Dataset saved")
	return nil
}

// fileMode keeps the permissions of the current dataset file. A new file
// is created readable by everyone.
func (s *CSVStore) fileMode() os.FileMode {
	if info, err := os.Stat(s.path); err == nil {
		return info.Mode().Perm()
	}
	return 0644
}

func writeRows(file *os.File, dataset Dataset) error {
	writer := csv.NewWriter(file)

	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, l := range dataset {
		if err := writer.Write(l.Record()); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
