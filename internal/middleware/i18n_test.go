package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func localeFor(t *testing.T, build func(r *http.Request), lookup CountryLookup) string {
	t.Helper()
	var got string
	handler := I18N("en", lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if build != nil {
		build(req)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestI18NHeaderWins(t *testing.T) {
	got := localeFor(t, func(r *http.Request) {
		r.Header.Set("X-Locale", "fr")
		r.Header.Set("Accept-Language", "es-ES,es;q=0.9")
	}, nil)
	if got != "fr" {
		t.Fatalf("locale = %q, want fr", got)
	}
}

func TestI18NAcceptLanguageRegionStripped(t *testing.T) {
	got := localeFor(t, func(r *http.Request) {
		r.Header.Set("Accept-Language", "hi-IN,hi;q=0.9,en;q=0.8")
	}, nil)
	if got != "hi" {
		t.Fatalf("locale = %q, want hi", got)
	}
}

func TestI18NUnsupportedLocaleFallsThrough(t *testing.T) {
	got := localeFor(t, func(r *http.Request) {
		r.Header.Set("X-Locale", "de")
	}, nil)
	if got != "en" {
		t.Fatalf("locale = %q, want en", got)
	}
}

func TestI18NCountryLookup(t *testing.T) {
	lookup := func(ip string) (string, error) { return "ES", nil }
	got := localeFor(t, func(r *http.Request) {
		r.RemoteAddr = "203.0.113.7:1234"
	}, lookup)
	if got != "es" {
		t.Fatalf("locale = %q, want es", got)
	}
}
