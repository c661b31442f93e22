package models

import (
	"time"

	"github.com/google/uuid"
)

// QuestionAnswer is a single curated Q&A entry. MoreDetails is an ordered list
// of URIs (articles, images, videos) attached to the answer.
type QuestionAnswer struct {
	ID          uuid.UUID `json:"id"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	MoreDetails []string  `json:"more_details"`
	Keywords    []string  `json:"keywords"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
