package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/geoip"
	mw "server/internal/middleware"
	"server/internal/pipeline"
	"server/internal/providers/media"
	"server/internal/providers/scriptgen"
	"server/internal/providers/tts"
	"server/internal/storage"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	var store storage.ObjectStore
	switch cfg.StorageBackend {
	case infra.StorageBackendGCS:
		store, err = storage.NewGCSStore(ctx, storage.GCSOptions{
			ProjectID:   cfg.GCSProjectID,
			ClientEmail: cfg.GCSClientEmail,
			PrivateKey:  cfg.GCSPrivateKey,
			BucketName:  cfg.GCSBucketName,
			Logger:      logger,
		})
	default:
		store, err = storage.NewFileStore(cfg.StorageBasePath, cfg.StorageBaseURL)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("failed to initialize object storage")
	}

	coordinator := media.NewCoordinator(logger,
		media.NewUnsplashClient(media.UnsplashOptions{AccessKey: cfg.UnsplashAccessKey, Logger: logger}),
		media.NewPexelsClient(media.PexelsOptions{APIKey: cfg.PexelsAPIKey, Logger: logger}),
		media.NewPixabayClient(media.PixabayOptions{APIKey: cfg.PixabayAPIKey, Logger: logger}),
	)

	scripts := repo.NewScriptRepository(dbpool)
	assets := repo.NewAssetRepository(dbpool)
	audio := repo.NewAudioRepository(dbpool)

	assetPipeline := pipeline.New(pipeline.Options{
		Resolver:      coordinator,
		Downloader:    pipeline.NewHTTPDownloader(nil),
		Store:         store,
		Assets:        assets,
		Scripts:       scripts,
		Logger:        logger,
		MaxConcurrent: cfg.MaxConcurrent,
	})

	generator, err := scriptgen.NewGeminiClient(scriptgen.GeminiOptions{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize script generator")
	}
	narrator, err := tts.NewElevenLabsClient(tts.ElevenLabsOptions{
		APIKey:  cfg.ElevenLabsAPIKey,
		BaseURL: cfg.ElevenLabsBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize speech synthesis")
	}

	var lookup mw.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, locale detection degrades to headers")
	} else if resolver != nil {
		defer resolver.Close()
		lookup = resolver.CountryCode
	}

	app := &handlers.App{
		Log:       logger,
		Scripts:   scripts,
		Assets:    assets,
		Audio:     audio,
		Pipeline:  assetPipeline,
		Store:     store,
		Generator: generator,
		TTS:       narrator,
	}

	router := httpapi.NewRouter(app, cfg, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}
