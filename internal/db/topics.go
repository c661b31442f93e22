package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"covidbot/internal/models"
)

// topicColumns is the standard column list for topic queries.
const topicColumns = `id, name, subtopics, keywords, created_at, updated_at`

// scanTopic scans a row into a Topic struct.
func scanTopic(row pgx.Row) (*models.Topic, error) {
	var topic models.Topic
	err := row.Scan(
		&topic.ID,
		&topic.Name,
		&topic.Subtopics,
		&topic.Keywords,
		&topic.CreatedAt,
		&topic.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTopicNotFound
	}
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// CreateTopic inserts a new topic and fills in its generated fields.
func (d *DB) CreateTopic(ctx context.Context, topic *models.Topic) error {
	query := `
		INSERT INTO topics (name, subtopics, keywords)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return d.Pool.QueryRow(ctx, query,
		topic.Name,
		topic.Subtopics,
		topic.Keywords,
	).Scan(&topic.ID, &topic.CreatedAt, &topic.UpdatedAt)
}

// GetTopics retrieves all topics.
func (d *DB) GetTopics(ctx context.Context) ([]models.Topic, error) {
	query := `SELECT ` + topicColumns + ` FROM topics ORDER BY created_at ASC`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		var topic models.Topic
		if err := rows.Scan(
			&topic.ID,
			&topic.Name,
			&topic.Subtopics,
			&topic.Keywords,
			&topic.CreatedAt,
			&topic.UpdatedAt,
		); err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

// GetTopic retrieves a topic by its ID.
func (d *DB) GetTopic(ctx context.Context, id uuid.UUID) (*models.Topic, error) {
	query := `SELECT ` + topicColumns + ` FROM topics WHERE id = $1`
	return scanTopic(d.Pool.QueryRow(ctx, query, id))
}

// UpdateTopicSubtopics replaces a topic's ordered subtopic id list.
func (d *DB) UpdateTopicSubtopics(ctx context.Context, id uuid.UUID, subtopics []uuid.UUID) error {
	query := `UPDATE topics SET subtopics = $1, updated_at = NOW() WHERE id = $2`
	result, err := d.Pool.Exec(ctx, query, subtopics, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTopicNotFound
	}
	return nil
}

// UpdateTopicKeywords replaces a topic's keyword set.
func (d *DB) UpdateTopicKeywords(ctx context.Context, id uuid.UUID, keywords []string) error {
	query := `UPDATE topics SET keywords = $1, updated_at = NOW() WHERE id = $2`
	result, err := d.Pool.Exec(ctx, query, keywords, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTopicNotFound
	}
	return nil
}
