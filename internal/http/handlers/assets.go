package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"server/internal/domain"
	"server/internal/storage"

	"github.com/go-chi/chi/v5"
)

type createAssetRequest struct {
	ScriptID string               `json:"scriptId"`
	Type     domain.AssetType     `json:"type"`
	URL      string               `json:"url"`
	Metadata domain.AssetMetadata `json:"metadata"`
	Keywords []string             `json:"keywords"`
	Status   domain.AssetStatus   `json:"status"`
}

func assetJSON(a domain.Asset) map[string]any {
	var scriptID any
	if a.ScriptID != nil {
		scriptID = *a.ScriptID
	}
	return map[string]any{
		"id":        a.ID,
		"scriptId":  scriptID,
		"userId":    a.UserID,
		"type":      a.Type,
		"url":       a.URL,
		"metadata":  a.Metadata,
		"keywords":  a.Keywords,
		"status":    a.Status,
		"createdAt": a.CreatedAt,
		"updatedAt": a.UpdatedAt,
	}
}

// CreateAsset persists one asset record supplied by the client.
func (a *App) CreateAsset(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req createAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.URL == "" || (req.Type != domain.AssetTypeImage && req.Type != domain.AssetTypeVideo) {
		a.error(w, http.StatusBadRequest, "bad_request", "url and a valid type are required")
		return
	}
	status := req.Status
	if status == "" {
		status = domain.AssetStatusPending
	}
	asset := &domain.Asset{
		UserID:   userID,
		Type:     req.Type,
		URL:      req.URL,
		Metadata: req.Metadata,
		Keywords: req.Keywords,
		Status:   status,
	}
	if req.ScriptID != "" && req.ScriptID != domain.UnsavedScriptID {
		asset.ScriptID = &req.ScriptID
	}
	saved, err := a.Assets.Create(r.Context(), asset)
	if err != nil {
		a.Log.Error().Err(err).Msg("asset create failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save asset")
		return
	}
	a.json(w, http.StatusCreated, assetJSON(*saved))
}

// ListAssets returns the caller's assets, optionally filtered by script.
func (a *App) ListAssets(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var (
		items []domain.Asset
		err   error
	)
	if scriptID := r.URL.Query().Get("scriptId"); scriptID != "" {
		items, err = a.Assets.ListByScriptID(r.Context(), scriptID)
	} else {
		items, err = a.Assets.ListByUserID(r.Context(), userID, 100)
	}
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load assets")
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, assetJSON(it))
	}
	a.json(w, http.StatusOK, map[string]any{"assets": out})
}

type updateAssetStatusRequest struct {
	Status domain.AssetStatus `json:"status"`
}

// UpdateAssetStatus advances a pending asset to active or failed. Assets
// never move backwards in their lifecycle.
func (a *App) UpdateAssetStatus(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	assetID := chi.URLParam(r, "id")
	var req updateAssetStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Status != domain.AssetStatusActive && req.Status != domain.AssetStatusFailed {
		a.error(w, http.StatusBadRequest, "bad_request", "status must be active or failed")
		return
	}
	if err := a.Assets.UpdateStatus(r.Context(), assetID, req.Status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "asset not found or already finalized")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid status transition")
			return
		}
		a.Log.Error().Err(err).Str("asset_id", assetID).Msg("asset status update failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update asset")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"id": assetID, "status": req.Status})
}

type generateAssetsRequest struct {
	ScriptID string           `json:"scriptId"`
	Type     domain.AssetType `json:"type"`
	Keywords []string         `json:"keywords"`
	Query    string           `json:"query"`
}

// GenerateAssets searches every configured provider for the requested media
// and persists the results as active assets.
func (a *App) GenerateAssets(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req generateAssetsRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.ScriptID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "scriptId is required")
		return
	}
	if req.Type != domain.AssetTypeImage && req.Type != domain.AssetTypeVideo {
		a.error(w, http.StatusBadRequest, "bad_request", "type must be image or video")
		return
	}
	if len(req.Keywords) == 0 && strings.TrimSpace(req.Query) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "keywords or query is required")
		return
	}
	assets, err := a.Pipeline.GenerateAssets(r.Context(), userID, req.ScriptID, req.Type, req.Keywords, req.Query)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "script not found")
			return
		}
		a.Log.Error().Err(err).Str("script_id", req.ScriptID).Msg("asset generation failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to generate assets")
		return
	}
	out := make([]map[string]any, 0, len(assets))
	for _, it := range assets {
		out = append(out, assetJSON(it))
	}
	a.json(w, http.StatusOK, map[string]any{"assets": out})
}

type generateZipRequest struct {
	ScriptID string            `json:"scriptId"`
	Keywords []string          `json:"keywords"`
	Metadata map[string]string `json:"metadata"`
}

// GenerateAssetsZip resolves media for every keyword, bundles the downloads
// into a zip archive and returns a signed link to it.
func (a *App) GenerateAssetsZip(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req generateZipRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	keywords := make([]string, 0, len(req.Keywords))
	for _, kw := range req.Keywords {
		if strings.TrimSpace(kw) != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "keywords must be a non-empty array")
		return
	}
	scriptID := req.ScriptID
	if scriptID == "" {
		scriptID = domain.UnsavedScriptID
	}
	link, err := a.Pipeline.GenerateArchive(r.Context(), scriptID, keywords, req.Metadata)
	if err != nil {
		if errors.Is(err, domain.ErrNoAssetsFound) {
			a.error(w, http.StatusInternalServerError, "no_assets", "no assets could be retrieved for the given keywords")
			return
		}
		a.Log.Error().Err(err).Str("script_id", scriptID).Msg("archive generation failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to generate asset archive")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"zipUrl": link.URL, "expiresAt": link.ExpiresAt})
}

type downloadRequest struct {
	AssetURL string `json:"assetUrl"`
	AudioURL string `json:"audioUrl"`
}

// DownloadAsset streams a previously generated archive back to the client so
// the signed URL never has to be exposed to the browser.
func (a *App) DownloadAsset(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req downloadRequest
	if err := decodeJSON(r, &req); err != nil || req.AssetURL == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "assetUrl is required")
		return
	}
	path, err := storage.ObjectPath(req.AssetURL, "zips")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "assetUrl is not a valid archive link")
		return
	}
	ok, err := a.Store.Exists(r.Context(), path)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to check archive")
		return
	}
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "archive not found")
		return
	}
	data, err := a.Store.Download(r.Context(), path)
	if err != nil {
		a.Log.Error().Err(err).Str("path", path).Msg("archive download failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to download archive")
		return
	}
	name := path[strings.LastIndex(path, "/")+1:]
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
