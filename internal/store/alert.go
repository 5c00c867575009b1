package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/handsignal/internal/alert"
)

// AlertRecord is a persisted distress alert and its delivery outcome.
type AlertRecord struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	TriggeredAt time.Time `json:"triggeredAt"`
	Delivered   bool      `json:"delivered"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AlertRepository provides access to the alert history.
type AlertRepository struct {
	db *sql.DB
}

// Alerts returns the alert repository for this store.
func (s *Store) Alerts() *AlertRepository {
	return &AlertRepository{db: s.db}
}

// Create inserts an alert record. An empty ID is generated.
func (r *AlertRepository) Create(a *AlertRecord) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = time.Now()

	delivered := 0
	if a.Delivered {
		delivered = 1
	}

	_, err := r.db.Exec(
		`INSERT INTO alerts (id, session_id, triggered_at, delivered, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.SessionID, a.TriggeredAt, delivered, a.Error, a.CreatedAt,
	)
	return err
}

// List retrieves the most recent alerts across all sessions, newest first.
func (r *AlertRepository) List(limit int) ([]*AlertRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(
		`SELECT id, session_id, triggered_at, delivered, error, created_at
		 FROM alerts ORDER BY triggered_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	return scanAlerts(rows)
}

// ListBySession retrieves the alerts of one session in trigger order.
func (r *AlertRepository) ListBySession(sessionID string) ([]*AlertRecord, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, triggered_at, delivered, error, created_at
		 FROM alerts WHERE session_id = ? ORDER BY triggered_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	return scanAlerts(rows)
}

// RecordAlert stores the outcome of an alert send. It satisfies
// alert.Recorder; sendErr is nil when the alert was delivered.
func (s *Store) RecordAlert(a alert.Alert, sendErr error) error {
	rec := &AlertRecord{
		SessionID:   a.SessionID,
		TriggeredAt: a.Time(),
		Delivered:   sendErr == nil,
	}
	if sendErr != nil {
		rec.Error = sendErr.Error()
	}
	return s.Alerts().Create(rec)
}

func scanAlerts(rows *sql.Rows) ([]*AlertRecord, error) {
	defer rows.Close()

	var alerts []*AlertRecord
	for rows.Next() {
		a := &AlertRecord{}
		var delivered int

		if err := rows.Scan(&a.ID, &a.SessionID, &a.TriggeredAt, &delivered, &a.Error, &a.CreatedAt); err != nil {
			return nil, err
		}

		a.Delivered = delivered != 0
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return alerts, nil
}
