package db

import (
	"context"

	"covidbot/internal/models"
)

// AddToBlacklist appends a misconduct report for the phone number. The log is
// append-only, so repeated reports produce repeated entries.
func (d *DB) AddToBlacklist(ctx context.Context, phoneNumber string) error {
	query := `INSERT INTO blacklist (phone_number) VALUES ($1)`
	_, err := d.Pool.Exec(ctx, query, phoneNumber)
	return err
}

// IsBlacklisted reports whether the phone number has at least one entry.
func (d *DB) IsBlacklisted(ctx context.Context, phoneNumber string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM blacklist WHERE phone_number = $1)`
	var exists bool
	if err := d.Pool.QueryRow(ctx, query, phoneNumber).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// GetBlacklist retrieves all misconduct reports, newest first.
func (d *DB) GetBlacklist(ctx context.Context) ([]models.BlacklistEntry, error) {
	query := `SELECT id, phone_number, created_at FROM blacklist ORDER BY created_at DESC`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.BlacklistEntry
	for rows.Next() {
		var e models.BlacklistEntry
		if err := rows.Scan(&e.ID, &e.PhoneNumber, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
