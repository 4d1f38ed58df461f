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
	unsplashDefaultBaseURL = "https://api.unsplash.com"
	unsplashDefaultTimeout = 15 * time.Second
)

// UnsplashOptions configures the Unsplash photo search client.
type UnsplashOptions struct {
	AccessKey  string
	BaseURL    string
	HTTPClient *http.Client
	Logger     infra.Logger
}

// UnsplashClient searches the Unsplash photo library. Unsplash hosts no
// video content, so video queries always resolve to nothing.
type UnsplashClient struct {
	accessKey string
	baseURL   string
	client    *http.Client
	log       infra.Logger
}

// NewUnsplashClient constructs an Unsplash search client.
func NewUnsplashClient(opts UnsplashOptions) *UnsplashClient {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = unsplashDefaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: unsplashDefaultTimeout}
	}
	return &UnsplashClient{
		accessKey: opts.AccessKey,
		baseURL:   baseURL,
		client:    client,
		log:       opts.Logger.With().Str("provider", "unsplash").Logger(),
	}
}

// Name identifies the provider in stored metadata.
func (c *UnsplashClient) Name() domain.ProviderName { return domain.ProviderUnsplash }

type unsplashPhoto struct {
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Description    string `json:"description"`
	AltDescription string `json:"alt_description"`
	URLs           struct {
		Regular string `json:"regular"`
	} `json:"urls"`
}

type unsplashSearchResponse struct {
	Results []unsplashPhoto `json:"results"`
}

// Search returns the top photo hit for the query, or nil when the provider
// has nothing. Failures are logged here and surface as absence; a cancelled
// context is the one error that propagates.
func (c *UnsplashClient) Search(ctx context.Context, query string, category Category) (*Result, error) {
	results, err := c.search(ctx, query, category, 1)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn().Err(err).Str("query", query).Msg("unsplash search failed")
		return nil, nil
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// SearchAll returns every hit on the first results page.
func (c *UnsplashClient) SearchAll(ctx context.Context, query string, category Category) ([]Result, error) {
	results, err := c.search(ctx, query, category, 10)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn().Err(err).Str("query", query).Msg("unsplash search failed")
		return nil, nil
	}
	return results, nil
}

func (c *UnsplashClient) search(ctx context.Context, query string, category Category, perPage int) ([]Result, error) {
	if category == CategoryVideo {
		return nil, nil
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", fmt.Sprint(perPage))
	if category == CategoryBackground {
		params.Set("query", query+" background wallpaper")
		params.Set("orientation", "landscape")
	}
	endpoint := c.baseURL + "/search/photos?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unsplash: unexpected status %d", resp.StatusCode)
	}
	var out unsplashSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("unsplash: decode response: %w", err)
	}
	results := make([]Result, 0, len(out.Results))
	for _, photo := range out.Results {
		if photo.URLs.Regular == "" {
			continue
		}
		title := photo.Description
		if title == "" {
			title = photo.AltDescription
		}
		results = append(results, Result{
			URL:            photo.URLs.Regular,
			Source:         domain.ProviderUnsplash,
			Width:          photo.Width,
			Height:         photo.Height,
			RelevanceScore: 1,
			Title:          title,
			Alt:            photo.AltDescription,
		})
	}
	return results, nil
}

var _ Searcher = (*UnsplashClient)(nil)
