package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"covidbot/internal/models"
)

// handoverColumns is the standard column list for handover request queries.
const handoverColumns = `id, user_number, language, volunteer_number, status, created_at, updated_at`

// scanHandoverRequest scans a row into a HandoverRequest struct.
func scanHandoverRequest(row pgx.Row) (*models.HandoverRequest, error) {
	var r models.HandoverRequest
	err := row.Scan(
		&r.ID,
		&r.UserNumber,
		&r.Language,
		&r.VolunteerNumber,
		&r.Status,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrHandoverNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateHandoverRequest inserts a WAITING request for the user. If the user
// already has a WAITING/OPEN request, the existing request's id is returned
// instead of inserting a second one.
func (d *DB) CreateHandoverRequest(ctx context.Context, userNumber, language string) (uuid.UUID, error) {
	existing, err := d.GetActiveHandoverRequest(ctx, userNumber)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, ErrHandoverNotFound) {
		return uuid.Nil, err
	}

	query := `
		INSERT INTO handover_requests (user_number, language, status)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id uuid.UUID
	if err := d.Pool.QueryRow(ctx, query, userNumber, language, models.HandoverWaiting).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// GetActiveHandoverRequest retrieves the user's WAITING or OPEN request.
func (d *DB) GetActiveHandoverRequest(ctx context.Context, userNumber string) (*models.HandoverRequest, error) {
	query := `
		SELECT ` + handoverColumns + `
		FROM handover_requests
		WHERE user_number = $1 AND status IN ($2, $3)
	`
	return scanHandoverRequest(d.Pool.QueryRow(ctx, query, userNumber, models.HandoverWaiting, models.HandoverOpen))
}

// AcceptHandoverRequest transitions the user's WAITING request to OPEN and
// records the volunteer. First accepted wins: an already-OPEN request is not
// reassigned and the call reports ErrHandoverNotFound.
func (d *DB) AcceptHandoverRequest(ctx context.Context, userNumber, volunteerNumber string) error {
	query := `
		UPDATE handover_requests
		SET volunteer_number = $1, status = $2, updated_at = NOW()
		WHERE user_number = $3 AND status = $4
	`
	result, err := d.Pool.Exec(ctx, query, volunteerNumber, models.HandoverOpen, userNumber, models.HandoverWaiting)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrHandoverNotFound
	}
	return nil
}

// CloseHandoverRequest transitions the user's WAITING/OPEN request to CLOSE.
func (d *DB) CloseHandoverRequest(ctx context.Context, userNumber string) error {
	query := `
		UPDATE handover_requests
		SET status = $1, updated_at = NOW()
		WHERE user_number = $2 AND status IN ($3, $4)
	`
	result, err := d.Pool.Exec(ctx, query, models.HandoverClosed, userNumber, models.HandoverWaiting, models.HandoverOpen)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrHandoverNotFound
	}
	return nil
}

// ReopenHandoverRequest transitions the user's most recently closed request
// back to OPEN.
func (d *DB) ReopenHandoverRequest(ctx context.Context, userNumber string) error {
	query := `
		UPDATE handover_requests
		SET status = $1, updated_at = NOW()
		WHERE id = (
			SELECT id FROM handover_requests
			WHERE user_number = $2 AND status = $3
			ORDER BY updated_at DESC
			LIMIT 1
		)
	`
	result, err := d.Pool.Exec(ctx, query, models.HandoverOpen, userNumber, models.HandoverClosed)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrHandoverNotFound
	}
	return nil
}

// GetHandoverRequests retrieves all handover requests, newest first.
func (d *DB) GetHandoverRequests(ctx context.Context) ([]models.HandoverRequest, error) {
	query := `SELECT ` + handoverColumns + ` FROM handover_requests ORDER BY created_at DESC`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.HandoverRequest
	for rows.Next() {
		var r models.HandoverRequest
		if err := rows.Scan(
			&r.ID,
			&r.UserNumber,
			&r.Language,
			&r.VolunteerNumber,
			&r.Status,
			&r.CreatedAt,
			&r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}
