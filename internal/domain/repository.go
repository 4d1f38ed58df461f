package domain

import "context"

// AssetRepository handles persistence for media asset records.
type AssetRepository interface {
	Create(ctx context.Context, asset *Asset) (*Asset, error)
	ListByScriptID(ctx context.Context, scriptID string) ([]Asset, error)
	ListByUserID(ctx context.Context, userID string, limit int) ([]Asset, error)
	LinkToScript(ctx context.Context, scriptID string, assetIDs []string) error
	UpdateStatus(ctx context.Context, assetID string, status AssetStatus) error
}

// ScriptRepository defines persistence for scripts.
type ScriptRepository interface {
	Create(ctx context.Context, script *Script) (*Script, error)
	GetByID(ctx context.Context, id string) (*Script, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]Script, error)
	Update(ctx context.Context, script *Script) (*Script, error)
	Delete(ctx context.Context, id string) error
}

// AudioRepository persists narration generation records.
type AudioRepository interface {
	Create(ctx context.Context, record *AudioRecord) (*AudioRecord, error)
	ListByUserID(ctx context.Context, userID string, limit int) ([]AudioRecord, error)
}
