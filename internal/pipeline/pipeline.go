package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/providers/media"
	"server/internal/storage"
	"server/pkg/zip"
)

// defaultMaxConcurrent bounds how many keywords are in flight at once; each
// keyword itself fans out to three category searches. Without a bound a
// large keyword list would launch thousands of simultaneous outbound
// requests.
const defaultMaxConcurrent = 8

// Resolver is the slice of the search coordinator the pipeline depends on.
type Resolver interface {
	ResolveAll(ctx context.Context, keyword string) media.ResolvedSet
	Collect(ctx context.Context, query string, category media.Category) []media.Result
}

// Options configures a Pipeline.
type Options struct {
	Resolver      Resolver
	Downloader    Downloader
	Store         storage.ObjectStore
	Assets        domain.AssetRepository
	Scripts       domain.ScriptRepository
	Logger        infra.Logger
	MaxConcurrent int
}

// Pipeline orchestrates search, download, archive assembly, upload and
// record persistence. Safe for concurrent use.
type Pipeline struct {
	resolver   Resolver
	downloader Downloader
	store      storage.ObjectStore
	assets     domain.AssetRepository
	scripts    domain.ScriptRepository
	log        infra.Logger
	maxConc    int
}

// New constructs a Pipeline.
func New(opts Options) *Pipeline {
	maxConc := opts.MaxConcurrent
	if maxConc <= 0 {
		maxConc = defaultMaxConcurrent
	}
	return &Pipeline{
		resolver:   opts.Resolver,
		downloader: opts.Downloader,
		store:      opts.Store,
		assets:     opts.Assets,
		scripts:    opts.Scripts,
		log:        opts.Logger,
		maxConc:    maxConc,
	}
}

// GenerateArchive resolves every keyword across the three categories,
// downloads each winning hit, bundles the lot into a categorized zip and
// uploads it, returning the signed retrieval URL. Individual slot failures
// are logged and omitted; an archive with zero files fails the whole call
// with domain.ErrNoAssetsFound and nothing is uploaded. No per-asset records
// are written on this path.
func (p *Pipeline) GenerateArchive(ctx context.Context, scriptID string, keywords []string, meta map[string]string) (*storage.SignedURL, error) {
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%w: keywords are required", domain.ErrInvalidInput)
	}

	bundle := zip.NewBundle()
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConc)
	for i, keyword := range keywords {
		g.Go(func() error {
			set := p.resolver.ResolveAll(gctx, keyword)
			if data, ok := p.fetch(gctx, keyword, media.CategoryImage, set.Image); ok {
				mu.Lock()
				bundle.AddImage(i, keyword, data)
				mu.Unlock()
			}
			if data, ok := p.fetch(gctx, keyword, media.CategoryVideo, set.Video); ok {
				mu.Lock()
				bundle.AddVideo(i, keyword, data)
				mu.Unlock()
			}
			if data, ok := p.fetch(gctx, keyword, media.CategoryBackground, set.Background); ok {
				mu.Lock()
				bundle.AddBackground(i, keyword, data)
				mu.Unlock()
			}
			return nil
		})
	}
	// All slots settle before the archive is built; completion order never
	// matters because filenames carry the positional index.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if bundle.Len() == 0 {
		return nil, domain.ErrNoAssetsFound
	}
	data, err := bundle.Build()
	if err != nil {
		return nil, fmt.Errorf("build archive: %w", err)
	}

	objectMeta := map[string]string{"scriptId": scriptID}
	for k, v := range meta {
		objectMeta[k] = v
	}
	path := fmt.Sprintf("zips/assets_%s_%s.zip", scriptID, uuid.NewString())
	signed, err := p.store.Upload(ctx, path, data, "application/zip", objectMeta, storage.ArchiveURLTTL)
	if err != nil {
		return nil, fmt.Errorf("upload archive: %w", err)
	}
	p.log.Info().Str("script_id", scriptID).Int("files", bundle.Len()).Str("path", path).Msg("asset archive generated")
	return signed, nil
}

// fetch downloads one resolved slot. A nil result or a failed download
// yields ok=false; the failure is logged here and the slot is skipped.
func (p *Pipeline) fetch(ctx context.Context, keyword string, category media.Category, res *media.Result) ([]byte, bool) {
	if res == nil {
		return nil, false
	}
	data, err := p.downloader.Fetch(ctx, res.URL)
	if err != nil {
		p.log.Warn().Err(err).Str("keyword", keyword).Str("category", string(category)).Msg("asset download failed")
		return nil, false
	}
	return data, true
}

// GenerateAssets runs the aggregate-collect path: query every provider for
// the category, persist each hit as an active asset record and link the new
// records to the script unless the script id is the unsaved sentinel. URLs
// are returned as-is for client-side rendering; no bytes are downloaded.
func (p *Pipeline) GenerateAssets(ctx context.Context, userID, scriptID string, assetType domain.AssetType, keywords []string, query string) ([]domain.Asset, error) {
	if scriptID != domain.UnsavedScriptID {
		script, err := p.scripts.GetByID(ctx, scriptID)
		if err != nil {
			return nil, err
		}
		userID = script.UserID
	}

	searchQuery := strings.TrimSpace(query)
	if searchQuery == "" {
		searchQuery = strings.Join(keywords, " ")
	}
	category := media.CategoryImage
	if assetType == domain.AssetTypeVideo {
		category = media.CategoryVideo
	}
	results := p.resolver.Collect(ctx, searchQuery, category)

	var scriptRef *string
	if scriptID != domain.UnsavedScriptID {
		scriptRef = &scriptID
	}
	titler := cases.Title(language.Und)
	saved := make([]domain.Asset, 0, len(results))
	ids := make([]string, 0, len(results))
	for _, res := range results {
		metadata := res.Metadata()
		if metadata.Title == "" {
			metadata.Title = titler.String(searchQuery)
		}
		asset, err := p.assets.Create(ctx, &domain.Asset{
			ID:       uuid.NewString(),
			ScriptID: scriptRef,
			UserID:   userID,
			Type:     assetType,
			URL:      res.URL,
			Metadata: metadata,
			Keywords: keywords,
			Status:   domain.AssetStatusActive,
		})
		if err != nil {
			return nil, fmt.Errorf("persist asset: %w", err)
		}
		saved = append(saved, *asset)
		ids = append(ids, asset.ID)
	}

	if scriptRef != nil && len(ids) > 0 {
		if err := p.assets.LinkToScript(ctx, scriptID, ids); err != nil {
			return nil, fmt.Errorf("link assets to script: %w", err)
		}
	}
	return saved, nil
}
