package domain

import "time"

// VoiceSettings mirrors the text-to-speech tuning knobs stored per narration.
type VoiceSettings struct {
	VoiceID         string  `json:"voice_id"`
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// AudioRecord tracks one narration generation and where its file ended up.
type AudioRecord struct {
	ID            string
	UserID        string
	ScriptID      string
	VoiceSettings VoiceSettings
	AudioURL      string
	FileName      string
	CreatedAt     time.Time
}
