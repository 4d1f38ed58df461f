package domain

import "time"

// AssetType enumerates stored media kinds.
type AssetType string

const (
	AssetTypeImage AssetType = "image"
	AssetTypeVideo AssetType = "video"
)

// AssetStatus enumerates the asset lifecycle. Transitions only move forward:
// pending -> active or pending -> failed.
type AssetStatus string

const (
	AssetStatusPending AssetStatus = "pending"
	AssetStatusActive  AssetStatus = "active"
	AssetStatusFailed  AssetStatus = "failed"
)

// ProviderName identifies the external media library a result came from.
type ProviderName string

const (
	ProviderUnsplash ProviderName = "unsplash"
	ProviderPexels   ProviderName = "pexels"
	ProviderPixabay  ProviderName = "pixabay"
)

// UnsavedScriptID is the sentinel clients send when assets are generated
// before the script has been persisted. Script linking is skipped for it.
const UnsavedScriptID = "unsaved-script"

// AssetMetadata carries provider-reported attributes for a stored asset.
// RelevanceScore is always 1; the field exists for forward compatibility and
// no ranking signal is computed.
type AssetMetadata struct {
	Source         ProviderName `json:"source"`
	Width          int          `json:"width"`
	Height         int          `json:"height"`
	Duration       float64      `json:"duration,omitempty"`
	RelevanceScore int          `json:"relevanceScore"`
	Title          string       `json:"title,omitempty"`
	Alt            string       `json:"alt,omitempty"`
}

// Asset represents one stored media item tied to a script. ScriptID is nil
// when the owning script was not yet saved at generation time.
type Asset struct {
	ID        string
	ScriptID  *string
	UserID    string
	Type      AssetType
	URL       string
	Metadata  AssetMetadata
	Keywords  []string
	Status    AssetStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
