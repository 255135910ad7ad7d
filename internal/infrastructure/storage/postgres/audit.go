package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "github.com/alenprastyaa/hakimah-laporan-harian/internal/core/context"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/audit"
)

// defaultCompressThreshold is the payload size above which changes are
// stored zstd-compressed instead of as JSONB.
const defaultCompressThreshold = 4 * 1024

var _ audit.Recorder = (*AuditStore)(nil)

// AuditStore writes the audit trail to audit_log.
type AuditStore struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditStore creates an audit store.
func NewAuditStore(txManager *TxManager) (*AuditStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditStore{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: defaultCompressThreshold,
	}, nil
}

// Record inserts an entry attributed to the user in ctx.
func (s *AuditStore) Record(ctx context.Context, entityType string, entityID id.ID, action audit.Action, changes map[string]any) error {
	payload, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}
	plain, compressed := s.encode(payload)

	var userID *id.ID
	if raw := appctx.GetUserID(ctx); raw != "" {
		if parsed, err := id.Parse(raw); err == nil {
			userID = &parsed
		}
	}

	_, err = s.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO audit_log (id, entity_type, entity_id, action, user_id, changes, changes_compressed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id.New(), entityType, entityID, string(action), userID, plain, compressed, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// encode returns the payload either as JSONB text or as a zstd frame.
func (s *AuditStore) encode(payload []byte) (plain []byte, compressed []byte) {
	if len(payload) > s.compressThreshold {
		return nil, s.encoder.EncodeAll(payload, nil)
	}
	return payload, nil
}

// History returns entries for an entity, newest first.
func (s *AuditStore) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, `
		SELECT id, entity_type, entity_id, action, user_id, changes, changes_compressed, created_at
		FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3`, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}
	defer rows.Close()

	entries := make([]audit.Entry, 0)
	for rows.Next() {
		var (
			e          audit.Entry
			action     string
			plain      []byte
			compressed []byte
		)
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &action, &e.UserID, &plain, &compressed, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Action = audit.Action(action)
		e.Changes, err = s.decode(plain, compressed)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *AuditStore) decode(plain, compressed []byte) (json.RawMessage, error) {
	if len(compressed) == 0 {
		return plain, nil
	}
	out, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress changes: %w", err)
	}
	return out, nil
}
