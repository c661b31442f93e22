package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"covidbot/internal/models"
)

// subtopicColumns is the standard column list for subtopic queries.
const subtopicColumns = `id, name, questions_answers, keywords, created_at, updated_at`

// scanSubtopic scans a row into a Subtopic struct.
func scanSubtopic(row pgx.Row) (*models.Subtopic, error) {
	var subtopic models.Subtopic
	err := row.Scan(
		&subtopic.ID,
		&subtopic.Name,
		&subtopic.QuestionAnswers,
		&subtopic.Keywords,
		&subtopic.CreatedAt,
		&subtopic.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSubtopicNotFound
	}
	if err != nil {
		return nil, err
	}
	return &subtopic, nil
}

// CreateSubtopic inserts a new subtopic and fills in its generated fields.
func (d *DB) CreateSubtopic(ctx context.Context, subtopic *models.Subtopic) error {
	query := `
		INSERT INTO subtopics (name, questions_answers, keywords)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return d.Pool.QueryRow(ctx, query,
		subtopic.Name,
		subtopic.QuestionAnswers,
		subtopic.Keywords,
	).Scan(&subtopic.ID, &subtopic.CreatedAt, &subtopic.UpdatedAt)
}

// GetSubtopic retrieves a subtopic by its ID.
func (d *DB) GetSubtopic(ctx context.Context, id uuid.UUID) (*models.Subtopic, error) {
	query := `SELECT ` + subtopicColumns + ` FROM subtopics WHERE id = $1`
	return scanSubtopic(d.Pool.QueryRow(ctx, query, id))
}

// UpdateSubtopicQuestionAnswers replaces a subtopic's ordered Q&A id list.
func (d *DB) UpdateSubtopicQuestionAnswers(ctx context.Context, id uuid.UUID, questionAnswers []uuid.UUID) error {
	query := `UPDATE subtopics SET questions_answers = $1, updated_at = NOW() WHERE id = $2`
	result, err := d.Pool.Exec(ctx, query, questionAnswers, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrSubtopicNotFound
	}
	return nil
}

// UpdateSubtopicKeywords replaces a subtopic's keyword set.
func (d *DB) UpdateSubtopicKeywords(ctx context.Context, id uuid.UUID, keywords []string) error {
	query := `UPDATE subtopics SET keywords = $1, updated_at = NOW() WHERE id = $2`
	result, err := d.Pool.Exec(ctx, query, keywords, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrSubtopicNotFound
	}
	return nil
}
