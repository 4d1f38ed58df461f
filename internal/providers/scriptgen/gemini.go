// Package scriptgen wraps the generative-language API that turns a video
// concept into a structured script.
package scriptgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultModel   = "gemini-1.5-pro"
	geminiDefaultTimeout = 30 * time.Second
)

// ErrEmptyCompletion indicates the model returned no usable text.
var ErrEmptyCompletion = errors.New("scriptgen: empty completion")

// GeminiOptions configures the Gemini content client.
type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiClient performs generateContent calls against the Gemini REST API.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiClient constructs a Gemini client.
func NewGeminiClient(opts GeminiOptions) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("scriptgen: gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = geminiDefaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	return &GeminiClient{apiKey: opts.APIKey, model: model, baseURL: baseURL, client: client}, nil
}

// ScriptRequest carries the inputs for one script generation.
type ScriptRequest struct {
	Topic       string
	Description string
	Keywords    []string
	Tone        string
	Duration    string
	Locale      string
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GenerateScript produces the script content for the request. Unlike the
// media providers, failures here propagate to the caller.
func (g *GeminiClient) GenerateScript(ctx context.Context, req ScriptRequest) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: buildScriptPrompt(req)}},
		}},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("scriptgen: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("scriptgen: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("scriptgen: call gemini: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("scriptgen: gemini returned status %d", resp.StatusCode)
	}
	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("scriptgen: decode response: %w", err)
	}
	for _, cand := range out.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text, nil
			}
		}
	}
	return "", ErrEmptyCompletion
}

func buildScriptPrompt(req ScriptRequest) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Create a %s video script about %s.\n", req.Duration, req.Topic)
	fmt.Fprintf(sb, "Description: %s\n", req.Description)
	fmt.Fprintf(sb, "Keywords: %s\n", strings.Join(req.Keywords, ", "))
	fmt.Fprintf(sb, "Tone: %s\n\n", req.Tone)
	sb.WriteString("Format the script with:\n")
	sb.WriteString("1. Hook/Intro\n")
	sb.WriteString("2. Main Content\n")
	sb.WriteString("3. Call to Action\n")
	sb.WriteString("4. Camera Angles and Directions in [brackets]\n")
	sb.WriteString("5. Emphasis Points in *asterisks*\n\n")
	sb.WriteString("Make it engaging and optimized for social media.")
	if req.Locale != "" && req.Locale != "en" {
		fmt.Fprintf(sb, " Write the script in the language for locale %q.", req.Locale)
	}
	return sb.String()
}

// ParseKeywords normalizes keyword input. It accepts a JSON string array, a
// comma-separated string, or the loosely structured text models tend to emit
// (code fences, prose around a JSON fragment). Blank and duplicate entries
// are dropped, order is preserved.
func ParseKeywords(raw string) []string {
	text := extractJSONFragment(raw)
	if text != "" {
		var arr []string
		if err := json.Unmarshal([]byte(text), &arr); err == nil {
			return dedupeKeywords(arr)
		}
	}
	return dedupeKeywords(strings.Split(raw, ","))
}

func dedupeKeywords(keywords []string) []string {
	seen := make(map[string]struct{})
	var result []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		lower := strings.ToLower(kw)
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		result = append(result, kw)
	}
	return result
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start < 0 || end < start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
