package db

import (
	"context"

	"covidbot/internal/models"
)

// IncrementQueryOutcome bumps the counter for a resolution outcome.
func (d *DB) IncrementQueryOutcome(ctx context.Context, outcome string) error {
	query := `
		INSERT INTO query_outcomes (outcome, count)
		VALUES ($1, 1)
		ON CONFLICT (outcome) DO UPDATE SET count = query_outcomes.count + 1
	`
	_, err := d.Pool.Exec(ctx, query, outcome)
	return err
}

// GetAllQueryOutcomes retrieves all outcome counters for the metrics collector.
func (d *DB) GetAllQueryOutcomes(ctx context.Context) ([]models.QueryOutcome, error) {
	query := `SELECT outcome, count FROM query_outcomes ORDER BY outcome ASC`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []models.QueryOutcome
	for rows.Next() {
		var o models.QueryOutcome
		if err := rows.Scan(&o.Outcome, &o.Count); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
