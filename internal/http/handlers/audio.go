package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"server/internal/domain"
	"server/internal/storage"

	"github.com/google/uuid"
)

type generateAudioRequest struct {
	Text          string               `json:"text"`
	ScriptID      string               `json:"scriptId"`
	VoiceSettings domain.VoiceSettings `json:"voiceSettings"`
}

// GenerateAudio narrates the given text, uploads the result and records the
// generation in the caller's history.
func (a *App) GenerateAudio(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req generateAudioRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "text is required")
		return
	}
	if req.VoiceSettings.VoiceID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "voiceSettings.voice_id is required")
		return
	}

	audio, err := a.TTS.Synthesize(r.Context(), req.Text, req.VoiceSettings)
	if err != nil {
		a.Log.Error().Err(err).Str("voice_id", req.VoiceSettings.VoiceID).Msg("speech synthesis failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to generate audio")
		return
	}

	fileName := fmt.Sprintf("audio_%d_%s.mp3", time.Now().UnixMilli(), uuid.NewString())
	link, err := a.Store.Upload(r.Context(), "audio/"+fileName, audio, "audio/mpeg", map[string]string{"userId": userID}, storage.AudioURLTTL)
	if err != nil {
		a.Log.Error().Err(err).Msg("audio upload failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store audio")
		return
	}

	record, err := a.Audio.Create(r.Context(), &domain.AudioRecord{
		UserID:        userID,
		ScriptID:      req.ScriptID,
		VoiceSettings: req.VoiceSettings,
		AudioURL:      link.URL,
		FileName:      fileName,
	})
	if err != nil {
		a.Log.Error().Err(err).Msg("audio record create failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to record audio generation")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"audioId":   record.ID,
		"audioUrl":  link.URL,
		"fileName":  fileName,
		"expiresAt": link.ExpiresAt,
	})
}

// DownloadAudio streams a generated narration back as a file attachment.
func (a *App) DownloadAudio(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req downloadRequest
	if err := decodeJSON(r, &req); err != nil || req.AudioURL == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "audioUrl is required")
		return
	}
	path, err := storage.ObjectPath(req.AudioURL, "audio")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "audioUrl is not a valid audio link")
		return
	}
	ok, err := a.Store.Exists(r.Context(), path)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to check audio file")
		return
	}
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "audio file not found")
		return
	}
	data, err := a.Store.Download(r.Context(), path)
	if err != nil {
		a.Log.Error().Err(err).Str("path", path).Msg("audio download failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to download audio")
		return
	}
	name := path[strings.LastIndex(path, "/")+1:]
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// AudioHistory lists the caller's previous narration generations.
func (a *App) AudioHistory(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	records, err := a.Audio.ListByUserID(r.Context(), userID, limit)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load audio history")
		return
	}
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, map[string]any{
			"id":            rec.ID,
			"scriptId":      rec.ScriptID,
			"voiceSettings": rec.VoiceSettings,
			"audioUrl":      rec.AudioURL,
			"fileName":      rec.FileName,
			"createdAt":     rec.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"history": out})
}
