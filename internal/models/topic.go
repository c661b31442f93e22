package models

import (
	"time"

	"github.com/google/uuid"
)

// Topic is the root level of the knowledge hierarchy. Subtopics holds the
// ordered ids of the subtopics under it; keywords are stored lowercase.
type Topic struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Subtopics []uuid.UUID `json:"subtopics"`
	Keywords  []string    `json:"keywords"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Subtopic groups question/answer entries under a topic. QuestionAnswers holds
// the ordered ids of the entries under it.
type Subtopic struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	QuestionAnswers []uuid.UUID `json:"questions_answers"`
	Keywords        []string    `json:"keywords"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
