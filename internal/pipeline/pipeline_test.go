package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/providers/media"
	"server/internal/storage"
)

type stubResolver struct {
	sets    map[string]media.ResolvedSet
	collect []media.Result
	queries []string
}

func (s *stubResolver) ResolveAll(ctx context.Context, keyword string) media.ResolvedSet {
	return s.sets[keyword]
}

func (s *stubResolver) Collect(ctx context.Context, query string, category media.Category) []media.Result {
	s.queries = append(s.queries, query)
	return s.collect
}

type stubDownloader struct {
	mu      sync.Mutex
	bodies  map[string][]byte
	failing map[string]bool
	calls   int
}

func (s *stubDownloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failing[url] {
		return nil, &DownloadError{URL: url, StatusCode: 503}
	}
	if body, ok := s.bodies[url]; ok {
		return body, nil
	}
	return []byte("data:" + url), nil
}

type stubStore struct {
	mu       sync.Mutex
	uploads  int
	lastPath string
	lastMeta map[string]string
	lastTTL  time.Duration
	lastData []byte
	err      error
}

func (s *stubStore) Upload(ctx context.Context, path string, data []byte, contentType string, meta map[string]string, ttl time.Duration) (*storage.SignedURL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	s.lastPath = path
	s.lastMeta = meta
	s.lastTTL = ttl
	s.lastData = data
	if s.err != nil {
		return nil, s.err
	}
	return &storage.SignedURL{URL: "https://signed.example/" + path, ExpiresAt: time.Now().Add(ttl)}, nil
}

func (s *stubStore) Download(ctx context.Context, path string) ([]byte, error) {
	return nil, storage.ErrObjectNotFound
}

func (s *stubStore) Exists(ctx context.Context, path string) (bool, error) { return false, nil }

type stubAssetRepo struct {
	mu        sync.Mutex
	created   []domain.Asset
	linkCalls int
	linkedTo  string
	linkedIDs []string
	createErr error
}

func (s *stubAssetRepo) Create(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, *asset)
	return asset, nil
}

func (s *stubAssetRepo) ListByScriptID(ctx context.Context, scriptID string) ([]domain.Asset, error) {
	return nil, nil
}

func (s *stubAssetRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]domain.Asset, error) {
	return nil, nil
}

func (s *stubAssetRepo) LinkToScript(ctx context.Context, scriptID string, assetIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.linkCalls++
	s.linkedTo = scriptID
	s.linkedIDs = assetIDs
	return nil
}

func (s *stubAssetRepo) UpdateStatus(ctx context.Context, assetID string, status domain.AssetStatus) error {
	return nil
}

type stubScriptRepo struct {
	scripts map[string]*domain.Script
	gets    int
}

func (s *stubScriptRepo) Create(ctx context.Context, script *domain.Script) (*domain.Script, error) {
	return script, nil
}

func (s *stubScriptRepo) GetByID(ctx context.Context, id string) (*domain.Script, error) {
	s.gets++
	if sc, ok := s.scripts[id]; ok {
		return sc, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubScriptRepo) ListRecent(ctx context.Context, userID string, limit int) ([]domain.Script, error) {
	return nil, nil
}

func (s *stubScriptRepo) Update(ctx context.Context, script *domain.Script) (*domain.Script, error) {
	return script, nil
}

func (s *stubScriptRepo) Delete(ctx context.Context, id string) error { return nil }

func newTestPipeline(resolver *stubResolver, downloader *stubDownloader, store *stubStore, assets *stubAssetRepo, scripts *stubScriptRepo) *Pipeline {
	return New(Options{
		Resolver:   resolver,
		Downloader: downloader,
		Store:      store,
		Assets:     assets,
		Scripts:    scripts,
		Logger:     zerolog.Nop(),
	})
}

func archiveNames(t *testing.T, data []byte) map[string]bool {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("reading uploaded archive: %v", err)
	}
	names := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		names[f.Name] = true
	}
	return names
}

func TestGenerateArchive(t *testing.T) {
	resolver := &stubResolver{sets: map[string]media.ResolvedSet{
		"city skyline": {
			Image:      &media.Result{URL: "https://img/city.jpg"},
			Video:      &media.Result{URL: "https://vid/city.mp4"},
			Background: &media.Result{URL: "https://img/city-bg.jpg"},
		},
		"beach": {
			Image: &media.Result{URL: "https://img/beach.jpg"},
		},
	}}
	downloader := &stubDownloader{}
	store := &stubStore{}
	p := newTestPipeline(resolver, downloader, store, &stubAssetRepo{}, &stubScriptRepo{})

	link, err := p.GenerateArchive(context.Background(), "script-1", []string{"city skyline", "beach"}, map[string]string{"userId": "u-1"})
	if err != nil {
		t.Fatalf("GenerateArchive returned error: %v", err)
	}
	if link == nil || link.URL == "" {
		t.Fatal("GenerateArchive returned empty link")
	}
	if store.uploads != 1 {
		t.Fatalf("uploads = %d, want 1", store.uploads)
	}
	wantPrefix := "zips/assets_script-1_"
	if len(store.lastPath) <= len(wantPrefix) || store.lastPath[:len(wantPrefix)] != wantPrefix {
		t.Errorf("upload path = %q, want %q prefix", store.lastPath, wantPrefix)
	}
	if store.lastTTL != storage.ArchiveURLTTL {
		t.Errorf("ttl = %v, want %v", store.lastTTL, storage.ArchiveURLTTL)
	}
	if store.lastMeta["scriptId"] != "script-1" || store.lastMeta["userId"] != "u-1" {
		t.Errorf("object metadata = %v", store.lastMeta)
	}

	names := archiveNames(t, store.lastData)
	for _, want := range []string{
		"images/1_city_skyline.jpg",
		"videos/1_city_skyline.mp4",
		"backgrounds/1_city_skyline_bg.jpg",
		"images/2_beach.jpg",
	} {
		if !names[want] {
			t.Errorf("archive missing %q", want)
		}
	}
	if names["videos/2_beach.mp4"] {
		t.Error("archive holds a video for a keyword that resolved none")
	}
}

func TestGenerateArchiveSkipsFailedDownloads(t *testing.T) {
	resolver := &stubResolver{sets: map[string]media.ResolvedSet{
		"city": {
			Image: &media.Result{URL: "https://img/ok.jpg"},
			Video: &media.Result{URL: "https://vid/broken.mp4"},
		},
	}}
	downloader := &stubDownloader{failing: map[string]bool{"https://vid/broken.mp4": true}}
	store := &stubStore{}
	p := newTestPipeline(resolver, downloader, store, &stubAssetRepo{}, &stubScriptRepo{})

	_, err := p.GenerateArchive(context.Background(), "s", []string{"city"}, nil)
	if err != nil {
		t.Fatalf("GenerateArchive returned error: %v", err)
	}
	names := archiveNames(t, store.lastData)
	if !names["images/1_city.jpg"] {
		t.Error("archive missing the slot that downloaded fine")
	}
	if names["videos/1_city.mp4"] {
		t.Error("archive holds the slot whose download failed")
	}
}

func TestGenerateArchiveNoAssetsFound(t *testing.T) {
	store := &stubStore{}
	p := newTestPipeline(&stubResolver{}, &stubDownloader{}, store, &stubAssetRepo{}, &stubScriptRepo{})

	_, err := p.GenerateArchive(context.Background(), "s", []string{"nothing resolves"}, nil)
	if !errors.Is(err, domain.ErrNoAssetsFound) {
		t.Fatalf("err = %v, want ErrNoAssetsFound", err)
	}
	if store.uploads != 0 {
		t.Errorf("uploads = %d, want 0 when the archive is empty", store.uploads)
	}
}

func TestGenerateArchiveRequiresKeywords(t *testing.T) {
	p := newTestPipeline(&stubResolver{}, &stubDownloader{}, &stubStore{}, &stubAssetRepo{}, &stubScriptRepo{})
	_, err := p.GenerateArchive(context.Background(), "s", nil, nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestGenerateAssetsLinksToScript(t *testing.T) {
	resolver := &stubResolver{collect: []media.Result{
		{URL: "https://img/a.jpg", Source: domain.ProviderUnsplash, Title: "A"},
		{URL: "https://img/b.jpg", Source: domain.ProviderPexels},
	}}
	assets := &stubAssetRepo{}
	scripts := &stubScriptRepo{scripts: map[string]*domain.Script{
		"script-1": {ID: "script-1", UserID: "owner-9"},
	}}
	p := newTestPipeline(resolver, &stubDownloader{}, &stubStore{}, assets, scripts)

	saved, err := p.GenerateAssets(context.Background(), "caller-1", "script-1", domain.AssetTypeImage, []string{"city", "night"}, "")
	if err != nil {
		t.Fatalf("GenerateAssets returned error: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("saved %d assets, want 2", len(saved))
	}
	for _, a := range saved {
		if a.UserID != "owner-9" {
			t.Errorf("UserID = %q, want the script owner's id", a.UserID)
		}
		if a.Status != domain.AssetStatusActive {
			t.Errorf("Status = %q, want active", a.Status)
		}
		if a.ScriptID == nil || *a.ScriptID != "script-1" {
			t.Errorf("ScriptID = %v, want script-1", a.ScriptID)
		}
	}
	// Untitled hits pick up the title-cased search query.
	if saved[1].Metadata.Title != "City Night" {
		t.Errorf("fallback Title = %q, want %q", saved[1].Metadata.Title, "City Night")
	}
	if saved[0].Metadata.Title != "A" {
		t.Errorf("Title = %q, want the provider's title kept", saved[0].Metadata.Title)
	}
	if assets.linkCalls != 1 || assets.linkedTo != "script-1" || len(assets.linkedIDs) != 2 {
		t.Errorf("link calls/target/ids = %d/%q/%d", assets.linkCalls, assets.linkedTo, len(assets.linkedIDs))
	}
	if len(resolver.queries) != 1 || resolver.queries[0] != "city night" {
		t.Errorf("search query = %v, want joined keywords", resolver.queries)
	}
}

func TestGenerateAssetsUnsavedScriptSkipsLookupAndLinking(t *testing.T) {
	resolver := &stubResolver{collect: []media.Result{{URL: "https://img/a.jpg"}}}
	assets := &stubAssetRepo{}
	scripts := &stubScriptRepo{}
	p := newTestPipeline(resolver, &stubDownloader{}, &stubStore{}, assets, scripts)

	saved, err := p.GenerateAssets(context.Background(), "caller-1", domain.UnsavedScriptID, domain.AssetTypeImage, []string{"city"}, "")
	if err != nil {
		t.Fatalf("GenerateAssets returned error: %v", err)
	}
	if scripts.gets != 0 {
		t.Errorf("script lookups = %d, want 0 for the unsaved sentinel", scripts.gets)
	}
	if assets.linkCalls != 0 {
		t.Errorf("link calls = %d, want 0 for the unsaved sentinel", assets.linkCalls)
	}
	if saved[0].ScriptID != nil {
		t.Errorf("ScriptID = %v, want nil", *saved[0].ScriptID)
	}
	if saved[0].UserID != "caller-1" {
		t.Errorf("UserID = %q, want the caller's id", saved[0].UserID)
	}
}

func TestGenerateAssetsMissingScript(t *testing.T) {
	p := newTestPipeline(&stubResolver{}, &stubDownloader{}, &stubStore{}, &stubAssetRepo{}, &stubScriptRepo{})
	_, err := p.GenerateAssets(context.Background(), "u", "nope", domain.AssetTypeImage, []string{"x"}, "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGenerateAssetsExplicitQueryWins(t *testing.T) {
	resolver := &stubResolver{}
	p := newTestPipeline(resolver, &stubDownloader{}, &stubStore{}, &stubAssetRepo{}, &stubScriptRepo{})

	if _, err := p.GenerateAssets(context.Background(), "u", domain.UnsavedScriptID, domain.AssetTypeVideo, []string{"a", "b"}, "ocean waves"); err != nil {
		t.Fatalf("GenerateAssets returned error: %v", err)
	}
	if len(resolver.queries) != 1 || resolver.queries[0] != "ocean waves" {
		t.Errorf("search query = %v, want the explicit query", resolver.queries)
	}
}
