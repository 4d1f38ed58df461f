package media

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"server/internal/domain"
	"server/internal/infra"
)

const (
	pixabayDefaultBaseURL = "https://pixabay.com"
	pixabayDefaultTimeout = 15 * time.Second
)

// PixabayOptions configures the Pixabay tagged-media search client.
type PixabayOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     infra.Logger
}

// PixabayClient searches Pixabay's image and video catalogues. The API key
// travels as a query parameter rather than a header.
type PixabayClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     infra.Logger
}

// NewPixabayClient constructs a Pixabay search client.
func NewPixabayClient(opts PixabayOptions) *PixabayClient {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = pixabayDefaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: pixabayDefaultTimeout}
	}
	return &PixabayClient{
		apiKey:  opts.APIKey,
		baseURL: baseURL,
		client:  client,
		log:     opts.Logger.With().Str("provider", "pixabay").Logger(),
	}
}

// Name identifies the provider in stored metadata.
func (c *PixabayClient) Name() domain.ProviderName { return domain.ProviderPixabay }

type pixabayImageHit struct {
	LargeImageURL string `json:"largeImageURL"`
	ImageWidth    int    `json:"imageWidth"`
	ImageHeight   int    `json:"imageHeight"`
	Tags          string `json:"tags"`
}

type pixabayImageResponse struct {
	Hits []pixabayImageHit `json:"hits"`
}

type pixabayVideoRendition struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type pixabayVideoHit struct {
	Duration float64 `json:"duration"`
	Tags     string  `json:"tags"`
	Videos   struct {
		Large pixabayVideoRendition `json:"large"`
	} `json:"videos"`
}

type pixabayVideoResponse struct {
	Hits []pixabayVideoHit `json:"hits"`
}

// Search returns the top hit for the query, or nil when the provider has
// nothing. Failures are logged here and surface as absence; a cancelled
// context is the one error that propagates.
func (c *PixabayClient) Search(ctx context.Context, query string, category Category) (*Result, error) {
	results, err := c.search(ctx, query, category, 3)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn().Err(err).Str("query", query).Msg("pixabay search failed")
		return nil, nil
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// SearchAll returns every hit on the first results page.
func (c *PixabayClient) SearchAll(ctx context.Context, query string, category Category) ([]Result, error) {
	results, err := c.search(ctx, query, category, 10)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn().Err(err).Str("query", query).Msg("pixabay search failed")
		return nil, nil
	}
	return results, nil
}

func (c *PixabayClient) search(ctx context.Context, query string, category Category, perPage int) ([]Result, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", query)
	params.Set("per_page", fmt.Sprint(perPage))
	path := "/api/"
	switch category {
	case CategoryVideo:
		path = "/api/videos/"
	case CategoryBackground:
		params.Set("q", query+" background wallpaper")
		params.Set("orientation", "horizontal")
	}
	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pixabay: unexpected status %d", resp.StatusCode)
	}
	if category == CategoryVideo {
		var out pixabayVideoResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("pixabay: decode video response: %w", err)
		}
		results := make([]Result, 0, len(out.Hits))
		for _, hit := range out.Hits {
			if hit.Videos.Large.URL == "" {
				continue
			}
			results = append(results, Result{
				URL:            hit.Videos.Large.URL,
				Source:         domain.ProviderPixabay,
				Width:          hit.Videos.Large.Width,
				Height:         hit.Videos.Large.Height,
				Duration:       hit.Duration,
				RelevanceScore: 1,
				Title:          hit.Tags,
			})
		}
		return results, nil
	}
	var out pixabayImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("pixabay: decode image response: %w", err)
	}
	results := make([]Result, 0, len(out.Hits))
	for _, hit := range out.Hits {
		if hit.LargeImageURL == "" {
			continue
		}
		results = append(results, Result{
			URL:            hit.LargeImageURL,
			Source:         domain.ProviderPixabay,
			Width:          hit.ImageWidth,
			Height:         hit.ImageHeight,
			RelevanceScore: 1,
			Title:          hit.Tags,
			Alt:            hit.Tags,
		})
	}
	return results, nil
}

var _ Searcher = (*PixabayClient)(nil)
