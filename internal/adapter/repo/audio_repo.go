package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
	"server/internal/sqlinline"
)

// AudioRepositoryPG implements domain.AudioRepository using PostgreSQL.
type AudioRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAudioRepository constructs a new audio repository instance.
func NewAudioRepository(pool *pgxpool.Pool) *AudioRepositoryPG {
	return &AudioRepositoryPG{pool: pool}
}

// Create records one narration generation.
func (r *AudioRepositoryPG) Create(ctx context.Context, record *domain.AudioRecord) (*domain.AudioRecord, error) {
	settings, err := json.Marshal(record.VoiceSettings)
	if err != nil {
		return nil, fmt.Errorf("encode voice settings: %w", err)
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx, sqlinline.QInsertAudioRecord, record.ID, record.UserID, record.ScriptID, settings, record.AudioURL, record.FileName)
	if err := row.Scan(&record.CreatedAt); err != nil {
		return nil, err
	}
	return record, nil
}

// ListByUserID returns the user's newest narration records.
func (r *AudioRepositoryPG) ListByUserID(ctx context.Context, userID string, limit int) ([]domain.AudioRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, sqlinline.QListAudioRecordsByUser, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.AudioRecord
	for rows.Next() {
		var record domain.AudioRecord
		var settings []byte
		if err := rows.Scan(&record.ID, &record.UserID, &record.ScriptID, &settings, &record.AudioURL, &record.FileName, &record.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(settings, &record.VoiceSettings); err != nil {
			return nil, fmt.Errorf("decode voice settings: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

var _ domain.AudioRepository = (*AudioRepositoryPG)(nil)
