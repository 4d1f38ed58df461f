package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

func TestUnsplashSearchTopHit(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"width":1920,"height":1080,"description":"city at dusk","alt_description":"skyline","urls":{"regular":"https://img.example/one.jpg"}}]}`))
	}))
	defer srv.Close()

	c := NewUnsplashClient(UnsplashOptions{AccessKey: "key123", BaseURL: srv.URL, Logger: zerolog.Nop()})
	res, err := c.Search(context.Background(), "city", CategoryImage)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if res == nil {
		t.Fatal("Search returned nil result")
	}
	if gotAuth != "Client-ID key123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Client-ID key123")
	}
	if gotQuery != "city" {
		t.Errorf("query = %q, want %q", gotQuery, "city")
	}
	if res.URL != "https://img.example/one.jpg" {
		t.Errorf("URL = %q", res.URL)
	}
	if res.Source != domain.ProviderUnsplash {
		t.Errorf("Source = %q, want unsplash", res.Source)
	}
	if res.Title != "city at dusk" || res.Alt != "skyline" {
		t.Errorf("Title/Alt = %q/%q", res.Title, res.Alt)
	}
	if res.RelevanceScore != 1 {
		t.Errorf("RelevanceScore = %d, want 1", res.RelevanceScore)
	}
}

func TestUnsplashBackgroundQueryShaping(t *testing.T) {
	var gotQuery, gotOrientation string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotOrientation = r.URL.Query().Get("orientation")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := NewUnsplashClient(UnsplashOptions{AccessKey: "k", BaseURL: srv.URL, Logger: zerolog.Nop()})
	res, err := c.Search(context.Background(), "forest", CategoryBackground)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if res != nil {
		t.Fatalf("Search = %+v, want nil for empty results", res)
	}
	if gotQuery != "forest background wallpaper" {
		t.Errorf("query = %q, want %q", gotQuery, "forest background wallpaper")
	}
	if gotOrientation != "landscape" {
		t.Errorf("orientation = %q, want landscape", gotOrientation)
	}
}

func TestUnsplashVideoResolvesToNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("video category must never hit the network")
	}))
	defer srv.Close()

	c := NewUnsplashClient(UnsplashOptions{AccessKey: "k", BaseURL: srv.URL, Logger: zerolog.Nop()})
	res, err := c.Search(context.Background(), "city", CategoryVideo)
	if err != nil || res != nil {
		t.Fatalf("Search = (%+v, %v), want (nil, nil)", res, err)
	}
}

func TestUnsplashFailureSurfacesAsAbsence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewUnsplashClient(UnsplashOptions{AccessKey: "bad", BaseURL: srv.URL, Logger: zerolog.Nop()})
	res, err := c.Search(context.Background(), "city", CategoryImage)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if res != nil {
		t.Fatalf("Search = %+v, want nil on provider failure", res)
	}
}

func TestUnsplashCancelledContextPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewUnsplashClient(UnsplashOptions{AccessKey: "key", BaseURL: srv.URL, Logger: zerolog.Nop()})
	if _, err := c.Search(ctx, "city", CategoryImage); !errors.Is(err, context.Canceled) {
		t.Fatalf("Search error = %v, want context.Canceled", err)
	}
}
