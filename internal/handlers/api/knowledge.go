package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"covidbot/internal/db"
	"covidbot/internal/models"
	"covidbot/internal/nlp"
	"covidbot/internal/rules"
)

// Annotator tags a question with part-of-speech information for pattern
// generation.
type Annotator interface {
	Annotate(ctx context.Context, expression string) ([]nlp.Token, error)
}

// Matcher accepts synthesized rule blocks.
type Matcher interface {
	AddRule(rule rules.Rule) (bool, error)
}

// KnowledgeHandler manages the topic/subtopic/question hierarchy. Every
// ingested question also becomes a persistent matcher rule so exact phrasings
// bypass keyword ranking.
type KnowledgeHandler struct {
	db        *db.DB
	annotator Annotator
	matcher   Matcher
}

// NewKnowledgeHandler creates a new knowledge ingestion handler.
func NewKnowledgeHandler(database *db.DB, annotator Annotator, matcher Matcher) *KnowledgeHandler {
	return &KnowledgeHandler{db: database, annotator: annotator, matcher: matcher}
}

// ListTopics returns the full topic list.
func (h *KnowledgeHandler) ListTopics(c fiber.Ctx) error {
	topics, err := h.db.GetTopics(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch topics")
	}
	return jsonSuccess(c, topics)
}

// GetTopic returns a single topic by id.
func (h *KnowledgeHandler) GetTopic(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid topic id")
	}

	topic, err := h.db.GetTopic(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrTopicNotFound) {
			return jsonError(c, fiber.StatusNotFound, "topic not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch topic")
	}
	return jsonSuccess(c, topic)
}

// CreateTopic creates a new root topic.
func (h *KnowledgeHandler) CreateTopic(c fiber.Ctx) error {
	var body struct {
		Name     string   `json:"name"`
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return jsonError(c, fiber.StatusBadRequest, "name is required")
	}

	topic := &models.Topic{
		Name:     body.Name,
		Keywords: normalizeKeywords(body.Keywords),
	}
	if err := h.db.CreateTopic(c.Context(), topic); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create topic")
	}
	return jsonCreated(c, topic)
}

// UpdateTopicKeywords replaces a topic's ranked keyword set.
func (h *KnowledgeHandler) UpdateTopicKeywords(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid topic id")
	}

	var body struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.db.UpdateTopicKeywords(c.Context(), id, normalizeKeywords(body.Keywords)); err != nil {
		if errors.Is(err, db.ErrTopicNotFound) {
			return jsonError(c, fiber.StatusNotFound, "topic not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to update keywords")
	}
	return jsonSuccess(c, fiber.Map{"id": id})
}

// CreateSubtopic creates a subtopic and links it under its topic.
func (h *KnowledgeHandler) CreateSubtopic(c fiber.Ctx) error {
	topicID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid topic id")
	}

	var body struct {
		Name     string   `json:"name"`
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return jsonError(c, fiber.StatusBadRequest, "name is required")
	}

	topic, err := h.db.GetTopic(c.Context(), topicID)
	if err != nil {
		if errors.Is(err, db.ErrTopicNotFound) {
			return jsonError(c, fiber.StatusNotFound, "topic not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch topic")
	}

	subtopic := &models.Subtopic{
		Name:     body.Name,
		Keywords: normalizeKeywords(body.Keywords),
	}
	if err := h.db.CreateSubtopic(c.Context(), subtopic); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create subtopic")
	}

	if err := h.db.UpdateTopicSubtopics(c.Context(), topicID, append(topic.Subtopics, subtopic.ID)); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to link subtopic")
	}
	return jsonCreated(c, subtopic)
}

// GetSubtopic returns a single subtopic by id.
func (h *KnowledgeHandler) GetSubtopic(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid subtopic id")
	}

	subtopic, err := h.db.GetSubtopic(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrSubtopicNotFound) {
			return jsonError(c, fiber.StatusNotFound, "subtopic not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch subtopic")
	}
	return jsonSuccess(c, subtopic)
}

// CreateQuestion ingests one question/answer entry under a subtopic and
// synthesizes its persistent matcher rule.
func (h *KnowledgeHandler) CreateQuestion(c fiber.Ctx) error {
	subtopicID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid subtopic id")
	}

	var body struct {
		Question    string   `json:"question"`
		Answer      string   `json:"answer"`
		MoreDetails []string `json:"more_details"`
		Keywords    []string `json:"keywords"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	body.Question = strings.TrimSpace(body.Question)
	if body.Question == "" || strings.TrimSpace(body.Answer) == "" {
		return jsonError(c, fiber.StatusBadRequest, "question and answer are required")
	}

	subtopic, err := h.db.GetSubtopic(c.Context(), subtopicID)
	if err != nil {
		if errors.Is(err, db.ErrSubtopicNotFound) {
			return jsonError(c, fiber.StatusNotFound, "subtopic not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch subtopic")
	}

	qa := &models.QuestionAnswer{
		Question:    body.Question,
		Answer:      body.Answer,
		MoreDetails: body.MoreDetails,
		Keywords:    normalizeKeywords(body.Keywords),
	}
	if err := h.db.CreateQuestionAnswer(c.Context(), qa); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create question")
	}

	if err := h.db.UpdateSubtopicQuestionAnswers(c.Context(), subtopicID, append(subtopic.QuestionAnswers, qa.ID)); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to link question")
	}

	if err := h.synthesize(c.Context(), subtopic.Name, qa); err != nil {
		// The entry is stored and rankable; only the exact-phrasing rule
		// is missing until the next restart.
		log.Printf("rule synthesis failed for question %s: %v", qa.ID, err)
	}
	return jsonCreated(c, qa)
}

// UpdateQuestion replaces a question/answer entry and refreshes its rule.
func (h *KnowledgeHandler) UpdateQuestion(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid question id")
	}

	var body struct {
		Question    string   `json:"question"`
		Answer      string   `json:"answer"`
		MoreDetails []string `json:"more_details"`
		Keywords    []string `json:"keywords"`
		Subtopic    string   `json:"subtopic"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	body.Question = strings.TrimSpace(body.Question)
	if body.Question == "" || strings.TrimSpace(body.Answer) == "" {
		return jsonError(c, fiber.StatusBadRequest, "question and answer are required")
	}

	qa := &models.QuestionAnswer{
		ID:          id,
		Question:    body.Question,
		Answer:      body.Answer,
		MoreDetails: body.MoreDetails,
		Keywords:    normalizeKeywords(body.Keywords),
	}
	if err := h.db.UpdateQuestionAnswer(c.Context(), qa); err != nil {
		if errors.Is(err, db.ErrQuestionAnswerNotFound) {
			return jsonError(c, fiber.StatusNotFound, "question not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to update question")
	}

	if body.Subtopic != "" {
		if err := h.synthesize(c.Context(), body.Subtopic, qa); err != nil {
			log.Printf("rule synthesis failed for question %s: %v", qa.ID, err)
		}
	}
	return jsonSuccess(c, qa)
}

// Bootstrap regenerates the persistent rule for every stored question. Called
// at startup, before the matcher serves traffic.
func (h *KnowledgeHandler) Bootstrap(ctx context.Context) error {
	topics, err := h.db.GetTopics(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch topics: %w", err)
	}

	var count int
	for _, topic := range topics {
		for _, subtopicID := range topic.Subtopics {
			subtopic, err := h.db.GetSubtopic(ctx, subtopicID)
			if err != nil {
				return fmt.Errorf("failed to fetch subtopic %s: %w", subtopicID, err)
			}
			for _, qaID := range subtopic.QuestionAnswers {
				qa, err := h.db.GetQuestionAnswer(ctx, qaID)
				if err != nil {
					return fmt.Errorf("failed to fetch question %s: %w", qaID, err)
				}
				if err := h.synthesize(ctx, subtopic.Name, qa); err != nil {
					return fmt.Errorf("failed to synthesize rule for question %s: %w", qaID, err)
				}
				count++
			}
		}
	}
	log.Printf("Loaded %d persistent rules from the knowledge base", count)
	return nil
}

// synthesize turns a stored question into a persistent pattern rule whose
// reply is the entry's id.
func (h *KnowledgeHandler) synthesize(ctx context.Context, subtopicName string, qa *models.QuestionAnswer) error {
	tokens, err := h.annotator.Annotate(ctx, qa.Question)
	if err != nil {
		return err
	}

	pattern := rules.GeneratePattern(tokens)
	if pattern == "" {
		return fmt.Errorf("question %q produced an empty pattern", qa.Question)
	}

	_, err = h.matcher.AddRule(rules.Rule{
		Namespace:  ruleNamespace(subtopicName),
		Persistent: true,
		Pattern:    pattern,
		Question:   qa.ID.String(),
	})
	return err
}

// ruleNamespace derives the rule group name from a subtopic name.
func ruleNamespace(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
