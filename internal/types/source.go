// Package types defines the shared data model for brand-intel collection.
package types

import "fmt"

// DataSource identifies one of the collectable data categories.
// It doubles as the cache-key component and the rate-limit class selector.
type DataSource string

const (
	// SourceNews is press and news-article sentiment.
	SourceNews DataSource = "news"
	// SourceSocialMedia is social-media mention sentiment.
	SourceSocialMedia DataSource = "social_media"
	// SourceGlassdoor is employer-review data.
	SourceGlassdoor DataSource = "glassdoor"
	// SourceWebsite is website quality analysis.
	SourceWebsite DataSource = "website"
)

// AllSources returns every known data source in stable order.
func AllSources() []DataSource {
	return []DataSource{SourceNews, SourceSocialMedia, SourceGlassdoor, SourceWebsite}
}

// ParseDataSource converts a wire string into a DataSource.
func ParseDataSource(s string) (DataSource, error) {
	switch DataSource(s) {
	case SourceNews, SourceSocialMedia, SourceGlassdoor, SourceWebsite:
		return DataSource(s), nil
	}
	return "", fmt.Errorf("unknown data source %q", s)
}

// Valid reports whether the source is a member of the closed enumeration.
func (s DataSource) Valid() bool {
	_, err := ParseDataSource(string(s))
	return err == nil
}

// FastChanging reports whether the source's data changes within minutes.
// Fast-changing sources get the short cache TTL and the fast rate-limit class.
func (s DataSource) FastChanging() bool {
	return s == SourceNews || s == SourceSocialMedia
}
