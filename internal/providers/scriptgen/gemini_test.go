package scriptgen

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func TestGenerateScriptPromptAndResponse(t *testing.T) {
	var gotBody []byte
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"[Open on skyline]\n*Hook* Welcome."}]}}]}`))
	}))
	defer srv.Close()

	c, err := NewGeminiClient(GeminiOptions{APIKey: "k", Model: "gemini-1.5-pro", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewGeminiClient returned error: %v", err)
	}
	content, err := c.GenerateScript(context.Background(), ScriptRequest{
		Topic:       "city travel",
		Description: "A short guide",
		Keywords:    []string{"city", "travel"},
		Tone:        "upbeat",
		Duration:    "60 second",
		Locale:      "es",
	})
	if err != nil {
		t.Fatalf("GenerateScript returned error: %v", err)
	}
	if !strings.HasPrefix(content, "[Open on skyline]") {
		t.Errorf("content = %q", content)
	}
	if gotPath != "/models/gemini-1.5-pro:generateContent" {
		t.Errorf("path = %q", gotPath)
	}

	var payload struct {
		Contents []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	if len(payload.Contents) != 1 || len(payload.Contents[0].Parts) != 1 {
		t.Fatalf("request shape = %+v", payload)
	}
	prompt := payload.Contents[0].Parts[0].Text
	for _, want := range []string{
		"Create a 60 second video script about city travel.",
		"Keywords: city, travel",
		"Hook/Intro",
		"Call to Action",
		"[brackets]",
		"*asterisks*",
		`locale "es"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateScriptEnglishOmitsLocaleLine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "locale") {
			t.Error("prompt mentions locale for English requests")
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"done"}]}}]}`))
	}))
	defer srv.Close()

	c, _ := NewGeminiClient(GeminiOptions{APIKey: "k", BaseURL: srv.URL})
	if _, err := c.GenerateScript(context.Background(), ScriptRequest{Topic: "t", Description: "d", Locale: "en"}); err != nil {
		t.Fatalf("GenerateScript returned error: %v", err)
	}
}

func TestGenerateScriptEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"   "}]}}]}`))
	}))
	defer srv.Close()

	c, _ := NewGeminiClient(GeminiOptions{APIKey: "k", BaseURL: srv.URL})
	_, err := c.GenerateScript(context.Background(), ScriptRequest{Topic: "t"})
	if err != ErrEmptyCompletion {
		t.Fatalf("err = %v, want ErrEmptyCompletion", err)
	}
}

func TestGenerateScriptErrorStatusPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, _ := NewGeminiClient(GeminiOptions{APIKey: "k", BaseURL: srv.URL})
	if _, err := c.GenerateScript(context.Background(), ScriptRequest{Topic: "t"}); err == nil {
		t.Fatal("GenerateScript returned nil error for a 429")
	}
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	if _, err := NewGeminiClient(GeminiOptions{}); err == nil {
		t.Fatal("NewGeminiClient accepted an empty api key")
	}
}

func TestParseKeywords(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"json array", `["city","travel","food"]`, []string{"city", "travel", "food"}},
		{"fenced json", "```json\n[\"city\", \"travel\"]\n```", []string{"city", "travel"}},
		{"json inside prose", `Here you go: ["city", "night"] enjoy!`, []string{"city", "night"}},
		{"comma separated", "city, travel , food", []string{"city", "travel", "food"}},
		{"dupes dropped case insensitively", "City, city, CITY, sea", []string{"City", "sea"}},
		{"blanks dropped", ", ,city,", []string{"city"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseKeywords(tc.raw); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ParseKeywords(%q) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}
