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
	pexelsDefaultBaseURL = "https://api.pexels.com"
	pexelsDefaultTimeout = 15 * time.Second

	// Renditions tagged "hd" up to this width are preferred for downloads.
	pexelsMaxVideoWidth = 1920
)

// PexelsOptions configures the Pexels photo and video search client.
type PexelsOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     infra.Logger
}

// PexelsClient searches both the Pexels photo and video libraries.
type PexelsClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     infra.Logger
}

// NewPexelsClient constructs a Pexels search client.
func NewPexelsClient(opts PexelsOptions) *PexelsClient {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = pexelsDefaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: pexelsDefaultTimeout}
	}
	return &PexelsClient{
		apiKey:  opts.APIKey,
		baseURL: baseURL,
		client:  client,
		log:     opts.Logger.With().Str("provider", "pexels").Logger(),
	}
}

// Name identifies the provider in stored metadata.
func (c *PexelsClient) Name() domain.ProviderName { return domain.ProviderPexels }

type pexelsPhoto struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Alt          string `json:"alt"`
	Photographer string `json:"photographer"`
	Src          struct {
		Large string `json:"large"`
	} `json:"src"`
}

type pexelsPhotoResponse struct {
	Photos []pexelsPhoto `json:"photos"`
}

type pexelsVideoFile struct {
	Link    string `json:"link"`
	Quality string `json:"quality"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

type pexelsVideo struct {
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	Duration   float64           `json:"duration"`
	URL        string            `json:"url"`
	VideoFiles []pexelsVideoFile `json:"video_files"`
}

type pexelsVideoResponse struct {
	Videos []pexelsVideo `json:"videos"`
}

// Search returns the top hit for the query, or nil when the provider has
// nothing. Failures are logged here and surface as absence; a cancelled
// context is the one error that propagates.
func (c *PexelsClient) Search(ctx context.Context, query string, category Category) (*Result, error) {
	results, err := c.search(ctx, query, category, 1)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn().Err(err).Str("query", query).Msg("pexels search failed")
		return nil, nil
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// SearchAll returns every hit on the first results page.
func (c *PexelsClient) SearchAll(ctx context.Context, query string, category Category) ([]Result, error) {
	results, err := c.search(ctx, query, category, 10)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn().Err(err).Str("query", query).Msg("pexels search failed")
		return nil, nil
	}
	return results, nil
}

func (c *PexelsClient) search(ctx context.Context, query string, category Category, perPage int) ([]Result, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", fmt.Sprint(perPage))
	path := "/v1/search"
	switch category {
	case CategoryVideo:
		path = "/videos/search"
	case CategoryBackground:
		params.Set("query", query+" background")
		params.Set("orientation", "landscape")
	}
	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pexels: unexpected status %d", resp.StatusCode)
	}
	if category == CategoryVideo {
		var out pexelsVideoResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("pexels: decode video response: %w", err)
		}
		return c.mapVideos(out.Videos), nil
	}
	var out pexelsPhotoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("pexels: decode photo response: %w", err)
	}
	return c.mapPhotos(out.Photos), nil
}

func (c *PexelsClient) mapPhotos(photos []pexelsPhoto) []Result {
	results := make([]Result, 0, len(photos))
	for _, photo := range photos {
		if photo.Src.Large == "" {
			continue
		}
		title := photo.Alt
		if title == "" {
			title = photo.Photographer
		}
		results = append(results, Result{
			URL:            photo.Src.Large,
			Source:         domain.ProviderPexels,
			Width:          photo.Width,
			Height:         photo.Height,
			RelevanceScore: 1,
			Title:          title,
			Alt:            photo.Alt,
		})
	}
	return results
}

func (c *PexelsClient) mapVideos(videos []pexelsVideo) []Result {
	results := make([]Result, 0, len(videos))
	for _, video := range videos {
		file, ok := pickVideoFile(video.VideoFiles)
		if !ok {
			continue
		}
		title := video.URL
		if idx := strings.LastIndex(strings.TrimRight(title, "/"), "/"); idx >= 0 {
			title = strings.TrimRight(title, "/")[idx+1:]
		}
		results = append(results, Result{
			URL:            file.Link,
			Source:         domain.ProviderPexels,
			Width:          video.Width,
			Height:         video.Height,
			Duration:       video.Duration,
			RelevanceScore: 1,
			Title:          title,
		})
	}
	return results
}

// pickVideoFile prefers an "hd" rendition no wider than pexelsMaxVideoWidth
// and falls back to the first rendition on offer.
func pickVideoFile(files []pexelsVideoFile) (pexelsVideoFile, bool) {
	for _, f := range files {
		if f.Quality == "hd" && f.Width <= pexelsMaxVideoWidth && f.Link != "" {
			return f, true
		}
	}
	for _, f := range files {
		if f.Link != "" {
			return f, true
		}
	}
	return pexelsVideoFile{}, false
}

var _ Searcher = (*PexelsClient)(nil)
