package db

import "errors"

// Domain-level database error sentinels.
var (
	// Knowledge base errors
	ErrTopicNotFound          = errors.New("topic not found")
	ErrSubtopicNotFound       = errors.New("subtopic not found")
	ErrQuestionAnswerNotFound = errors.New("question/answer not found")

	// Volunteer errors
	ErrVolunteerNotFound  = errors.New("volunteer not found")
	ErrDuplicateVolunteer = errors.New("phone number already registered as a volunteer")

	// Handover errors
	ErrHandoverNotFound = errors.New("handover request not found")
)
