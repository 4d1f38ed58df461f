// Package storage provides the object-store gateway the pipeline uploads
// archives and narration audio to.
package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

// Signed URL lifetimes are fixed per call site, not caller-configurable.
const (
	ArchiveURLTTL = 24 * time.Hour
	AudioURLTTL   = time.Hour
)

// ErrObjectNotFound indicates the requested object does not exist.
var ErrObjectNotFound = errors.New("storage: object not found")

// SignedURL is a time-bounded retrieval URL. It is never issued without an
// expiry; callers must not assume permanence.
type SignedURL struct {
	URL       string
	ExpiresAt time.Time
}

// ObjectStore is the gateway to durable blob storage. Upload writes the blob
// with optional object metadata and mints a signed retrieval URL valid for
// ttl; Download and Exists back the in-app download proxy.
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string, meta map[string]string, ttl time.Duration) (*SignedURL, error)
	Download(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// ObjectPath extracts the bucket-relative object path from a previously
// issued URL, given the folder the object lives under ("audio", "zips").
// Query parameters (the signature) are discarded.
func ObjectPath(rawURL, folder string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 || segments[len(segments)-1] == "" {
		return "", errors.New("storage: url carries no object name")
	}
	return folder + "/" + segments[len(segments)-1], nil
}
