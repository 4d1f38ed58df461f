package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
	"server/internal/sqlinline"
)

// AssetRepositoryPG implements domain.AssetRepository using PostgreSQL. The
// metadata document keeps its nested shape in a jsonb column.
type AssetRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAssetRepository constructs a new asset repository instance.
func NewAssetRepository(pool *pgxpool.Pool) *AssetRepositoryPG {
	return &AssetRepositoryPG{pool: pool}
}

// Create persists one asset record. Records arriving without a status start
// as pending; the aggregate path creates them active directly. Status never
// moves backwards after this point.
func (r *AssetRepositoryPG) Create(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	if asset.Status == "" {
		asset.Status = domain.AssetStatusPending
	}
	metadata, err := json.Marshal(asset.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode asset metadata: %w", err)
	}
	row := r.pool.QueryRow(ctx, sqlinline.QInsertAsset, asset.ID, asset.ScriptID, asset.UserID, asset.Type, asset.URL, metadata, asset.Keywords, asset.Status)
	if err := row.Scan(&asset.CreatedAt, &asset.UpdatedAt); err != nil {
		return nil, err
	}
	return asset, nil
}

// ListByScriptID returns all assets linked to the script, oldest first.
func (r *AssetRepositoryPG) ListByScriptID(ctx context.Context, scriptID string) ([]domain.Asset, error) {
	rows, err := r.pool.Query(ctx, sqlinline.QListAssetsByScript, scriptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssets(rows)
}

// ListByUserID returns the user's most recent assets.
func (r *AssetRepositoryPG) ListByUserID(ctx context.Context, userID string, limit int) ([]domain.Asset, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, sqlinline.QListAssetsByUser, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssets(rows)
}

// LinkToScript stamps the script reference onto the given assets. Callers
// skip this entirely for the unsaved-script sentinel.
func (r *AssetRepositoryPG) LinkToScript(ctx context.Context, scriptID string, assetIDs []string) error {
	if len(assetIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, sqlinline.QLinkAssetsToScript, scriptID, assetIDs)
	return err
}

// UpdateStatus moves an asset forward in its lifecycle. Reverting an active
// or failed record to pending is rejected.
func (r *AssetRepositoryPG) UpdateStatus(ctx context.Context, assetID string, status domain.AssetStatus) error {
	if status == domain.AssetStatusPending {
		return fmt.Errorf("%w: asset status cannot revert to pending", domain.ErrInvalidInput)
	}
	tag, err := r.pool.Exec(ctx, sqlinline.QAdvanceAssetStatus, status, assetID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAssets(rows pgx.Rows) ([]domain.Asset, error) {
	var assets []domain.Asset
	for rows.Next() {
		var asset domain.Asset
		var metadata []byte
		if err := rows.Scan(&asset.ID, &asset.ScriptID, &asset.UserID, &asset.Type, &asset.URL, &metadata, &asset.Keywords, &asset.Status, &asset.CreatedAt, &asset.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(metadata, &asset.Metadata); err != nil {
			return nil, fmt.Errorf("decode asset metadata: %w", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assets, nil
}

var _ domain.AssetRepository = (*AssetRepositoryPG)(nil)
