package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"server/internal/domain"
	"server/internal/middleware"
	"server/internal/providers/scriptgen"

	"github.com/go-chi/chi/v5"
)

type generateScriptRequest struct {
	ScriptID    string          `json:"scriptId"`
	Topic       string          `json:"topic"`
	Description string          `json:"description"`
	Keywords    json.RawMessage `json:"keywords"`
	Tone        string          `json:"tone"`
	Duration    string          `json:"duration"`
}

// parseKeywordsField accepts both a JSON array of strings and a single
// comma-separated string, which is what clients actually send.
func parseKeywordsField(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		out := arr[:0]
		for _, kw := range arr {
			if strings.TrimSpace(kw) != "" {
				out = append(out, strings.TrimSpace(kw))
			}
		}
		return out
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return scriptgen.ParseKeywords(s)
	}
	return nil
}

func scriptJSON(s domain.Script) map[string]any {
	return map[string]any{
		"id":          s.ID,
		"userId":      s.UserID,
		"topic":       s.Topic,
		"description": s.Description,
		"keywords":    s.Keywords,
		"tone":        s.Tone,
		"duration":    s.Duration,
		"content":     s.Content,
		"createdAt":   s.CreatedAt,
		"updatedAt":   s.UpdatedAt,
	}
}

// GenerateScript produces script content for a topic and stores it. When a
// scriptId is supplied the existing script is updated in place.
func (a *App) GenerateScript(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req generateScriptRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Topic) == "" || strings.TrimSpace(req.Description) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "topic and description are required")
		return
	}
	keywords := parseKeywordsField(req.Keywords)
	locale := middleware.LocaleFromContext(r.Context())

	content, err := a.Generator.GenerateScript(r.Context(), scriptgen.ScriptRequest{
		Topic:       req.Topic,
		Description: req.Description,
		Keywords:    keywords,
		Tone:        req.Tone,
		Duration:    req.Duration,
		Locale:      locale,
	})
	if err != nil {
		a.Log.Error().Err(err).Str("topic", req.Topic).Msg("script generation failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to generate script")
		return
	}

	script := &domain.Script{
		UserID:      userID,
		Topic:       req.Topic,
		Description: req.Description,
		Keywords:    keywords,
		Tone:        req.Tone,
		Duration:    req.Duration,
		Content:     content,
	}
	var saved *domain.Script
	if req.ScriptID != "" && req.ScriptID != domain.UnsavedScriptID {
		existing, err := a.Scripts.GetByID(r.Context(), req.ScriptID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				a.error(w, http.StatusNotFound, "not_found", "script not found")
				return
			}
			a.error(w, http.StatusInternalServerError, "internal", "failed to load script")
			return
		}
		if existing.UserID != userID {
			a.error(w, http.StatusNotFound, "not_found", "script not found")
			return
		}
		script.ID = existing.ID
		saved, err = a.Scripts.Update(r.Context(), script)
		if err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to update script")
			return
		}
	} else {
		saved, err = a.Scripts.Create(r.Context(), script)
		if err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to save script")
			return
		}
	}
	a.json(w, http.StatusOK, map[string]any{
		"script":  scriptJSON(*saved),
		"content": content,
	})
}

// ListScripts returns the caller's most recent scripts.
func (a *App) ListScripts(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, err := a.Scripts.ListRecent(r.Context(), userID, limit)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load scripts")
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, scriptJSON(it))
	}
	a.json(w, http.StatusOK, map[string]any{"scripts": out})
}

type scriptRequest struct {
	Topic       string          `json:"topic"`
	Description string          `json:"description"`
	Keywords    json.RawMessage `json:"keywords"`
	Tone        string          `json:"tone"`
	Duration    string          `json:"duration"`
	Content     string          `json:"content"`
}

// CreateScript persists a script supplied by the client.
func (a *App) CreateScript(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req scriptRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "topic is required")
		return
	}
	saved, err := a.Scripts.Create(r.Context(), &domain.Script{
		UserID:      userID,
		Topic:       req.Topic,
		Description: req.Description,
		Keywords:    parseKeywordsField(req.Keywords),
		Tone:        req.Tone,
		Duration:    req.Duration,
		Content:     req.Content,
	})
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to save script")
		return
	}
	a.json(w, http.StatusCreated, scriptJSON(*saved))
}

func (a *App) loadOwnedScript(r *http.Request) (*domain.Script, int, string) {
	userID := a.currentUserID(r)
	if userID == "" {
		return nil, http.StatusUnauthorized, "missing user context"
	}
	script, err := a.Scripts.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, http.StatusNotFound, "script not found"
		}
		return nil, http.StatusInternalServerError, "failed to load script"
	}
	if script.UserID != userID {
		return nil, http.StatusNotFound, "script not found"
	}
	return script, 0, ""
}

// GetScript returns one script owned by the caller.
func (a *App) GetScript(w http.ResponseWriter, r *http.Request) {
	script, code, msg := a.loadOwnedScript(r)
	if script == nil {
		a.error(w, code, codeLabel(code), msg)
		return
	}
	a.json(w, http.StatusOK, scriptJSON(*script))
}

// UpdateScript applies partial changes to an owned script.
func (a *App) UpdateScript(w http.ResponseWriter, r *http.Request) {
	script, code, msg := a.loadOwnedScript(r)
	if script == nil {
		a.error(w, code, codeLabel(code), msg)
		return
	}
	var req scriptRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Topic != "" {
		script.Topic = req.Topic
	}
	if req.Description != "" {
		script.Description = req.Description
	}
	if kws := parseKeywordsField(req.Keywords); kws != nil {
		script.Keywords = kws
	}
	if req.Tone != "" {
		script.Tone = req.Tone
	}
	if req.Duration != "" {
		script.Duration = req.Duration
	}
	if req.Content != "" {
		script.Content = req.Content
	}
	saved, err := a.Scripts.Update(r.Context(), script)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to update script")
		return
	}
	a.json(w, http.StatusOK, scriptJSON(*saved))
}

// DeleteScript removes an owned script.
func (a *App) DeleteScript(w http.ResponseWriter, r *http.Request) {
	script, code, msg := a.loadOwnedScript(r)
	if script == nil {
		a.error(w, code, codeLabel(code), msg)
		return
	}
	if err := a.Scripts.Delete(r.Context(), script.ID); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete script")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"deleted": true})
}

func codeLabel(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}
