package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"covidbot/internal/models"
)

// qaColumns is the standard column list for question/answer queries.
const qaColumns = `id, question, answer, more_details, keywords, created_at, updated_at`

// scanQuestionAnswer scans a row into a QuestionAnswer struct.
func scanQuestionAnswer(row pgx.Row) (*models.QuestionAnswer, error) {
	var qa models.QuestionAnswer
	err := row.Scan(
		&qa.ID,
		&qa.Question,
		&qa.Answer,
		&qa.MoreDetails,
		&qa.Keywords,
		&qa.CreatedAt,
		&qa.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQuestionAnswerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &qa, nil
}

// CreateQuestionAnswer inserts a new Q&A entry and fills in its generated fields.
func (d *DB) CreateQuestionAnswer(ctx context.Context, qa *models.QuestionAnswer) error {
	query := `
		INSERT INTO question_answers (question, answer, more_details, keywords)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return d.Pool.QueryRow(ctx, query,
		qa.Question,
		qa.Answer,
		qa.MoreDetails,
		qa.Keywords,
	).Scan(&qa.ID, &qa.CreatedAt, &qa.UpdatedAt)
}

// GetQuestionAnswer retrieves a Q&A entry by its ID.
func (d *DB) GetQuestionAnswer(ctx context.Context, id uuid.UUID) (*models.QuestionAnswer, error) {
	query := `SELECT ` + qaColumns + ` FROM question_answers WHERE id = $1`
	return scanQuestionAnswer(d.Pool.QueryRow(ctx, query, id))
}

// UpdateQuestionAnswer updates an entry's answer text and attached links.
func (d *DB) UpdateQuestionAnswer(ctx context.Context, qa *models.QuestionAnswer) error {
	query := `
		UPDATE question_answers
		SET answer = $1, more_details = $2, keywords = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`
	err := d.Pool.QueryRow(ctx, query, qa.Answer, qa.MoreDetails, qa.Keywords, qa.ID).Scan(&qa.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrQuestionAnswerNotFound
	}
	return err
}
