package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v2"

	"sjsage522/estatecrawler/internal/crawler"
	crawlerrors "sjsage522/estatecrawler/pkg/errors"
)

type sitesDocument struct {
	// MapSlice keeps the document order of the sites
	Sites yaml.MapSlice `yaml:"sites"`
}

type siteEntry struct {
	BaseDomain          string                `yaml:"base_domain"`
	BasePath            string                `yaml:"base_path"`
	ListingSelector     string                `yaml:"listing_selector"`
	TargetArea          string                `yaml:"target_area"`
	TargetNeighborhoods []string              `yaml:"target_neighborhoods"`
	Fields              map[string]fieldEntry `yaml:"fields"`
}

type fieldEntry struct {
	AriaLabel  string `yaml:"aria_label"`
	AnchorText string `yaml:"anchor_text"`
	Tag        string `yaml:"tag"`
}

// LoadSites reads site definitions from a YAML file. Sites keep their
// document order; when selected is non-empty only the named sites are
// returned. Sites without a target area use defaultArea.
func LoadSites(path, defaultArea string, selected []string) ([]crawler.SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, crawlerrors.NewConfiguration("reading sites file", err)
	}
	return ParseSites(data, defaultArea, selected)
}

// ParseSites parses and validates a YAML site document
func ParseSites(data []byte, defaultArea string, selected []string) ([]crawler.SiteConfig, error) {
	var doc sitesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, crawlerrors.NewConfiguration("parsing sites file", err)
	}
	if len(doc.Sites) == 0 {
		return nil, crawlerrors.NewConfiguration("no sites defined", nil)
	}

	wanted := make(map[string]bool, len(selected))
	for _, name := range selected {
		wanted[name] = false
	}

	var sites []crawler.SiteConfig
	for _, item := range doc.Sites {
		name := fmt.Sprint(item.Key)
		if _, ok := wanted[name]; len(selected) > 0 && !ok {
			continue
		}
		wanted[name] = true

		site, err := decodeSite(name, item.Value, defaultArea)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}

	for _, name := range selected {
		if !wanted[name] {
			return nil, crawlerrors.NewConfiguration(fmt.Sprintf("unknown site %q", name), nil)
		}
	}

	return sites, nil
}

func decodeSite(name string, value interface{}, defaultArea string) (crawler.SiteConfig, error) {
	invalid := func(format string, args ...interface{}) error {
		return crawlerrors.NewConfiguration(fmt.Sprintf("site %s: ", name)+fmt.Sprintf(format, args...), nil)
	}

	// round trip through YAML so unknown keys are rejected by UnmarshalStrict
	raw, err := yaml.Marshal(value)
	if err != nil {
		return crawler.SiteConfig{}, crawlerrors.NewConfiguration("site "+name, err)
	}
	var entry siteEntry
	if err := yaml.UnmarshalStrict(raw, &entry); err != nil {
		return crawler.SiteConfig{}, crawlerrors.NewConfiguration("site "+name, err)
	}

	base, err := url.Parse(entry.BaseDomain)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return crawler.SiteConfig{}, invalid("base_domain %q is not an absolute URL", entry.BaseDomain)
	}
	if entry.BasePath == "" {
		return crawler.SiteConfig{}, invalid("base_path is required")
	}
	if _, err := cascadia.Compile(entry.ListingSelector); err != nil {
		return crawler.SiteConfig{}, invalid("listing_selector %q: %v", entry.ListingSelector, err)
	}
	if len(entry.TargetNeighborhoods) == 0 {
		return crawler.SiteConfig{}, invalid("target_neighborhoods is required")
	}

	schema, err := buildSchema(entry.Fields)
	if err != nil {
		return crawler.SiteConfig{}, invalid("%v", err)
	}

	area := entry.TargetArea
	if area == "" {
		area = defaultArea
	}

	return crawler.SiteConfig{
		Name:                name,
		BaseDomain:          entry.BaseDomain,
		BasePath:            entry.BasePath,
		ListingSelector:     entry.ListingSelector,
		Fields:              schema,
		TargetNeighborhoods: entry.TargetNeighborhoods,
		TargetArea:          area,
	}, nil
}

// buildSchema maps YAML field entries to rules. Each entry names exactly
// one of aria_label and anchor_text.
func buildSchema(fields map[string]fieldEntry) (crawler.FieldSchema, error) {
	known := make(map[string]bool, len(crawler.FieldNames))
	for _, f := range crawler.FieldNames {
		known[f] = true
	}

	schema := make(crawler.FieldSchema, len(fields))
	for field, entry := range fields {
		if !known[field] {
			return nil, fmt.Errorf("unknown field %q", field)
		}

		var rule crawler.FieldRule
		switch {
		case entry.AriaLabel != "" && entry.AnchorText != "":
			return nil, fmt.Errorf("field %s: aria_label and anchor_text are mutually exclusive", field)
		case entry.AriaLabel != "":
			rule = crawler.FieldRule{Kind: crawler.RuleAttribute, Label: entry.AriaLabel}
		case entry.AnchorText != "":
			rule = crawler.FieldRule{Kind: crawler.RuleTextAnchor, Label: entry.AnchorText}
		default:
			return nil, fmt.Errorf("field %s: one of aria_label or anchor_text is required", field)
		}

		if entry.Tag != "" {
			if _, err := cascadia.Compile(entry.Tag); err != nil {
				return nil, fmt.Errorf("field %s: tag %q: %v", field, entry.Tag, err)
			}
			rule.Tag = entry.Tag
		}
		schema[field] = rule
	}

	return schema, nil
}
