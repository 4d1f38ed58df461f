// Package tts wraps the ElevenLabs text-to-speech API used for narration.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"server/internal/domain"
)

const (
	elevenLabsDefaultBaseURL = "https://api.elevenlabs.io/v1"
	elevenLabsDefaultTimeout = 60 * time.Second
	elevenLabsDefaultModel   = "eleven_monolingual_v1"

	// The API rejects longer inputs; text is truncated before the call.
	maxInputChars = 5000
)

// ElevenLabsOptions configures the narration client.
type ElevenLabsOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// ElevenLabsClient synthesizes narration audio as MP3 bytes.
type ElevenLabsClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewElevenLabsClient constructs a narration client.
func NewElevenLabsClient(opts ElevenLabsOptions) (*ElevenLabsClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("tts: elevenlabs api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = elevenLabsDefaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: elevenLabsDefaultTimeout}
	}
	return &ElevenLabsClient{apiKey: opts.APIKey, baseURL: baseURL, client: client}, nil
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize converts text to speech with the given voice. Text beyond the
// provider's input cap is truncated, not rejected.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string, settings domain.VoiceSettings) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("tts: text is required")
	}
	if len(text) > maxInputChars {
		text = text[:maxInputChars]
	}
	stability := settings.Stability
	if stability == 0 {
		stability = 0.5
	}
	boost := settings.SimilarityBoost
	if boost == 0 {
		boost = 0.75
	}
	payload := synthesizeRequest{
		Text:          text,
		ModelID:       elevenLabsDefaultModel,
		VoiceSettings: voiceSettings{Stability: stability, SimilarityBoost: boost},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("tts: encode request: %w", err)
	}
	endpoint := c.baseURL + "/text-to-speech/" + settings.VoiceID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("tts: build request: %w", err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts: call elevenlabs: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tts: elevenlabs returned status %d", resp.StatusCode)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tts: read audio body: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("tts: received empty audio buffer")
	}
	return audio, nil
}
