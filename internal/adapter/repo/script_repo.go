package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
	"server/internal/sqlinline"
)

// ScriptRepositoryPG implements domain.ScriptRepository using PostgreSQL.
type ScriptRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewScriptRepository constructs a new script repository instance.
func NewScriptRepository(pool *pgxpool.Pool) *ScriptRepositoryPG {
	return &ScriptRepositoryPG{pool: pool}
}

// Create persists a new script.
func (r *ScriptRepositoryPG) Create(ctx context.Context, script *domain.Script) (*domain.Script, error) {
	if script.ID == "" {
		script.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx, sqlinline.QInsertScript, script.ID, script.UserID, script.Topic, script.Description, script.Keywords, script.Tone, script.Duration, script.Content)
	if err := row.Scan(&script.CreatedAt, &script.UpdatedAt); err != nil {
		return nil, err
	}
	return script, nil
}

// GetByID loads one script or domain.ErrNotFound.
func (r *ScriptRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Script, error) {
	row := r.pool.QueryRow(ctx, sqlinline.QSelectScriptByID, id)
	var script domain.Script
	if err := row.Scan(&script.ID, &script.UserID, &script.Topic, &script.Description, &script.Keywords, &script.Tone, &script.Duration, &script.Content, &script.CreatedAt, &script.UpdatedAt); err != nil {
		return nil, mapNoRows(err)
	}
	return &script, nil
}

// ListRecent returns the user's newest scripts.
func (r *ScriptRepositoryPG) ListRecent(ctx context.Context, userID string, limit int) ([]domain.Script, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, sqlinline.QListScriptsByUser, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var scripts []domain.Script
	for rows.Next() {
		var script domain.Script
		if err := rows.Scan(&script.ID, &script.UserID, &script.Topic, &script.Description, &script.Keywords, &script.Tone, &script.Duration, &script.Content, &script.CreatedAt, &script.UpdatedAt); err != nil {
			return nil, err
		}
		scripts = append(scripts, script)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return scripts, nil
}

// Update rewrites the mutable fields of a script.
func (r *ScriptRepositoryPG) Update(ctx context.Context, script *domain.Script) (*domain.Script, error) {
	row := r.pool.QueryRow(ctx, sqlinline.QUpdateScript, script.ID, script.Topic, script.Description, script.Keywords, script.Tone, script.Duration, script.Content)
	if err := row.Scan(&script.UserID, &script.CreatedAt, &script.UpdatedAt); err != nil {
		return nil, mapNoRows(err)
	}
	return script, nil
}

// Delete removes a script or reports domain.ErrNotFound.
func (r *ScriptRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, sqlinline.QDeleteScript, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.ScriptRepository = (*ScriptRepositoryPG)(nil)

// mapNoRows converts pgx's sentinel into the domain one.
func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}
