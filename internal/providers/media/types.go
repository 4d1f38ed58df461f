package media

import (
	"context"

	"server/internal/domain"
)

// Category is one of the asset kinds requested per keyword.
type Category string

const (
	CategoryImage      Category = "image"
	CategoryVideo      Category = "video"
	CategoryBackground Category = "background"
)

// AssetType maps the search category onto the persisted asset type.
// Backgrounds are stored as images.
func (c Category) AssetType() domain.AssetType {
	if c == CategoryVideo {
		return domain.AssetTypeVideo
	}
	return domain.AssetTypeImage
}

// Result is one resolved hit for a (keyword, category) pair. It is consumed
// immediately by the downloader or persisted as an asset record; relevance is
// the constant 1 in every mapping.
type Result struct {
	URL            string
	Source         domain.ProviderName
	Width          int
	Height         int
	Duration       float64
	RelevanceScore int
	Title          string
	Alt            string
}

// Metadata converts the search hit into the persisted metadata shape.
func (r Result) Metadata() domain.AssetMetadata {
	return domain.AssetMetadata{
		Source:         r.Source,
		Width:          r.Width,
		Height:         r.Height,
		Duration:       r.Duration,
		RelevanceScore: r.RelevanceScore,
		Title:          r.Title,
		Alt:            r.Alt,
	}
}

// Searcher is the uniform contract every provider client fulfils. Search
// returns the single top hit or nil when the provider has nothing; SearchAll
// returns every hit for the aggregate-collect path. Provider, network and
// parse failures never escape the implementation: they are logged there and
// surface as an empty result.
type Searcher interface {
	Name() domain.ProviderName
	Search(ctx context.Context, query string, category Category) (*Result, error)
	SearchAll(ctx context.Context, query string, category Category) ([]Result, error)
}
