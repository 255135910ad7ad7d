// Package audit defines the change trail recorded for report mutations.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
)

// Action is the kind of audited mutation.
type Action string

const (
	ActionCreate          Action = "create"
	ActionUpdate          Action = "update"
	ActionDelete          Action = "delete"
	ActionRemoveUangNitip Action = "remove_uang_nitip"
)

// Entity types written to the trail.
const (
	EntityReport = "report"
	EntityStore  = "store"
	EntityBank   = "bank"
)

// Entry is one audit record. Changes holds the JSON document passed to Record.
type Entry struct {
	ID         id.ID           `json:"id" db:"id"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   id.ID           `json:"entity_id" db:"entity_id"`
	Action     Action          `json:"action" db:"action"`
	UserID     *id.ID          `json:"user_id,omitempty" db:"user_id"`
	Changes    json.RawMessage `json:"changes,omitempty" db:"changes"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// Recorder persists and reads the audit trail. Record joins the caller's
// transaction when one is active.
type Recorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]Entry, error)
}

// Noop discards records.
type Noop struct{}

// Record implements Recorder.
func (Noop) Record(context.Context, string, id.ID, Action, map[string]any) error { return nil }

// History implements Recorder.
func (Noop) History(context.Context, string, id.ID, int) ([]Entry, error) { return nil, nil }
