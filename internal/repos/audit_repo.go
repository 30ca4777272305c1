package repos

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stocklock/internal/domain"
)

// AuditRepo is the event sink behind the engine's best-effort audit trail.
type AuditRepo struct{ db *sqlx.DB }

func NewAuditRepo(db *sqlx.DB) *AuditRepo { return &AuditRepo{db: db} }

// Record durably stores one structured event. Callers treat failures as
// non-fatal; the engine logs and moves on.
func (r *AuditRepo) Record(eventType, entityType, entityID, userID string, changes map[string]any) error {
	if changes == nil {
		changes = map[string]any{}
	}
	raw, err := json.Marshal(changes)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
	  INSERT INTO audit_events(id, event_type, entity_type, entity_id, user_id, changes_json, created_at)
	  VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), eventType, entityType, entityID, userID, string(raw), formatTime(time.Now()))
	return err
}

// Latest returns the newest events first, for the admin audit view.
func (r *AuditRepo) Latest(limit int) ([]domain.AuditEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var out []domain.AuditEvent
	err := r.db.Select(&out, `
		SELECT id, event_type, entity_type, entity_id, COALESCE(user_id,'') AS user_id, changes_json, created_at
		FROM audit_events
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	return out, err
}
