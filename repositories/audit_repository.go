package repositories

import (
	"database/sql"
	"time"

	"github.com/blogem/sso-demo/models"
)

// AuditRepository handles auth event persistence
type AuditRepository interface {
	Create(event *models.AuthEvent) error
	ListByEmail(email string, limit int) ([]models.AuthEvent, error)
}

type sqliteAuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &sqliteAuditRepository{db: db}
}

// Create inserts a new auth event
func (r *sqliteAuditRepository) Create(event *models.AuthEvent) error {
	query := `
		INSERT INTO auth_events (timestamp, event, user_email, detail, user_agent, ip_address)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	result, err := r.db.Exec(
		query,
		timestamp,
		event.Event,
		event.UserEmail,
		event.Detail,
		event.UserAgent,
		event.IPAddress,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = id

	return nil
}

// ListByEmail returns the most recent auth events for a user, newest first
func (r *sqliteAuditRepository) ListByEmail(email string, limit int) ([]models.AuthEvent, error) {
	query := `
		SELECT id, timestamp, event, user_email, detail, user_agent, ip_address
		FROM auth_events
		WHERE user_email = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, email, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.AuthEvent
	for rows.Next() {
		var event models.AuthEvent
		if err := rows.Scan(
			&event.ID,
			&event.Timestamp,
			&event.Event,
			&event.UserEmail,
			&event.Detail,
			&event.UserAgent,
			&event.IPAddress,
		); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}
