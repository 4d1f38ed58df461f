package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/middleware"
	"server/internal/providers/scriptgen"
	"server/internal/storage"
)

// AssetPipeline runs the acquisition flows behind the asset endpoints.
type AssetPipeline interface {
	GenerateArchive(ctx context.Context, scriptID string, keywords []string, meta map[string]string) (*storage.SignedURL, error)
	GenerateAssets(ctx context.Context, userID, scriptID string, assetType domain.AssetType, keywords []string, query string) ([]domain.Asset, error)
}

// ScriptGenerator produces script content from a structured request.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, req scriptgen.ScriptRequest) (string, error)
}

// Narrator converts text to speech.
type Narrator interface {
	Synthesize(ctx context.Context, text string, settings domain.VoiceSettings) ([]byte, error)
}

type App struct {
	Log       infra.Logger
	Scripts   domain.ScriptRepository
	Assets    domain.AssetRepository
	Audio     domain.AudioRepository
	Pipeline  AssetPipeline
	Store     storage.ObjectStore
	Generator ScriptGenerator
	TTS       Narrator
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, map[string]any{"error": map[string]string{"code": errCode, "message": msg}})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
