package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"covidbot/internal/models"
)

// volunteerColumns is the standard column list for volunteer queries.
const volunteerColumns = `id, full_name, phone_number, languages, num_users_answered, created_at`

// scanVolunteer scans a row into a Volunteer struct.
func scanVolunteer(row pgx.Row) (*models.Volunteer, error) {
	var v models.Volunteer
	err := row.Scan(
		&v.ID,
		&v.FullName,
		&v.PhoneNumber,
		&v.Languages,
		&v.NumUsersAnswered,
		&v.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrVolunteerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// scanVolunteers scans multiple rows into a slice of Volunteers.
func scanVolunteers(rows pgx.Rows) ([]models.Volunteer, error) {
	defer rows.Close()

	var volunteers []models.Volunteer
	for rows.Next() {
		var v models.Volunteer
		if err := rows.Scan(
			&v.ID,
			&v.FullName,
			&v.PhoneNumber,
			&v.Languages,
			&v.NumUsersAnswered,
			&v.CreatedAt,
		); err != nil {
			return nil, err
		}
		volunteers = append(volunteers, v)
	}
	return volunteers, rows.Err()
}

// CreateVolunteer registers a new volunteer. The phone number must be
// normalized before the call; a duplicate number yields ErrDuplicateVolunteer.
func (d *DB) CreateVolunteer(ctx context.Context, v *models.Volunteer) error {
	query := `
		INSERT INTO volunteers (full_name, phone_number, languages)
		VALUES ($1, $2, $3)
		RETURNING id, num_users_answered, created_at
	`
	err := d.Pool.QueryRow(ctx, query,
		v.FullName,
		v.PhoneNumber,
		v.Languages,
	).Scan(&v.ID, &v.NumUsersAnswered, &v.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateVolunteer
		}
		return err
	}
	return nil
}

// GetVolunteer retrieves a volunteer by phone number.
func (d *DB) GetVolunteer(ctx context.Context, phoneNumber string) (*models.Volunteer, error) {
	query := `SELECT ` + volunteerColumns + ` FROM volunteers WHERE phone_number = $1`
	return scanVolunteer(d.Pool.QueryRow(ctx, query, phoneNumber))
}

// GetVolunteers retrieves all registered volunteers.
func (d *DB) GetVolunteers(ctx context.Context) ([]models.Volunteer, error) {
	query := `SELECT ` + volunteerColumns + ` FROM volunteers ORDER BY created_at ASC`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanVolunteers(rows)
}

// GetVolunteersByLanguage retrieves volunteers who can answer in a language.
func (d *DB) GetVolunteersByLanguage(ctx context.Context, language string) ([]models.Volunteer, error) {
	query := `SELECT ` + volunteerColumns + ` FROM volunteers WHERE $1 = ANY(languages) ORDER BY num_users_answered ASC`
	rows, err := d.Pool.Query(ctx, query, language)
	if err != nil {
		return nil, err
	}
	return scanVolunteers(rows)
}

// IncrementVolunteerAnswered bumps the volunteer's answered-users counter.
// An unregistered number yields ErrVolunteerNotFound.
func (d *DB) IncrementVolunteerAnswered(ctx context.Context, phoneNumber string) error {
	query := `UPDATE volunteers SET num_users_answered = num_users_answered + 1 WHERE phone_number = $1`
	result, err := d.Pool.Exec(ctx, query, phoneNumber)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrVolunteerNotFound
	}
	return nil
}
