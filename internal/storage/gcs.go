package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"server/internal/infra"
)

// GCSOptions carries the service-account credentials for the bucket. All
// four fields are required; absence is a startup error, not a per-request
// one.
type GCSOptions struct {
	ProjectID   string
	ClientEmail string
	PrivateKey  string
	BucketName  string
	Logger      infra.Logger
}

// GCSStore implements ObjectStore over a Google Cloud Storage bucket with V4
// signed URLs. It is constructed once at startup and shared across requests.
type GCSStore struct {
	client      *storage.Client
	bucket      string
	clientEmail string
	privateKey  []byte
	log         infra.Logger
}

// NewGCSStore validates credentials and opens the storage client. Private
// keys arriving through the environment carry literal \n sequences; they are
// unescaped here.
func NewGCSStore(ctx context.Context, opts GCSOptions) (*GCSStore, error) {
	if opts.ProjectID == "" || opts.ClientEmail == "" || opts.PrivateKey == "" || opts.BucketName == "" {
		return nil, errors.New("storage: gcs project id, client email, private key and bucket name are all required")
	}
	privateKey := strings.ReplaceAll(opts.PrivateKey, `\n`, "\n")
	creds := fmt.Sprintf(`{"type":"service_account","project_id":%q,"client_email":%q,"private_key":%q}`,
		opts.ProjectID, opts.ClientEmail, privateKey)
	client, err := storage.NewClient(ctx, option.WithCredentialsJSON([]byte(creds)))
	if err != nil {
		return nil, fmt.Errorf("storage: create gcs client: %w", err)
	}
	return &GCSStore{
		client:      client,
		bucket:      opts.BucketName,
		clientEmail: opts.ClientEmail,
		privateKey:  []byte(privateKey),
		log:         opts.Logger.With().Str("component", "gcs").Logger(),
	}, nil
}

// Upload writes the blob and returns a signed retrieval URL valid for ttl.
func (s *GCSStore) Upload(ctx context.Context, path string, data []byte, contentType string, meta map[string]string, ttl time.Duration) (*SignedURL, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	w := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if len(meta) > 0 {
		w.Metadata = meta
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("storage: write object %q: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("storage: finish object %q: %w", path, err)
	}
	signed, err := s.sign(path, ttl)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("path", path).Int("bytes", len(data)).Time("expires", signed.ExpiresAt).Msg("object uploaded")
	return signed, nil
}

func (s *GCSStore) sign(path string, ttl time.Duration) (*SignedURL, error) {
	expires := time.Now().Add(ttl)
	u, err := storage.SignedURL(s.bucket, path, &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "GET",
		GoogleAccessID: s.clientEmail,
		PrivateKey:     s.privateKey,
		Expires:        expires,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: sign url for %q: %w", path, err)
	}
	return &SignedURL{URL: u, ExpiresAt: expires}, nil
}

// Download reads the whole object into memory.
func (s *GCSStore) Download(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	r, err := s.client.Bucket(s.bucket).Object(path).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("storage: open object %q: %w", path, err)
	}
	defer func() {
		_ = r.Close()
	}()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("storage: read object %q: %w", path, err)
	}
	return data, nil
}

// Exists reports whether the object is present.
func (s *GCSStore) Exists(ctx context.Context, path string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	_, err := s.client.Bucket(s.bucket).Object(path).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage: stat object %q: %w", path, err)
	}
	return true, nil
}

var _ ObjectStore = (*GCSStore)(nil)
