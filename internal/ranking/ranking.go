// Package ranking resolves a set of query keywords against the knowledge
// base. Topics, subtopics and question-answers each carry a keyword list; a
// candidate's score is the fraction of query keywords present in its list,
// rounded to two decimals. The engine walks topic -> subtopic -> question,
// keeping every candidate tied at the maximum score on each level, and
// classifies the result as a direct answer, a suggestion list, or a
// clarification request.
package ranking

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"

	"covidbot/internal/models"
)

// Store is the slice of the knowledge base the ranking engine reads.
type Store interface {
	GetTopics(ctx context.Context) ([]models.Topic, error)
	GetSubtopic(ctx context.Context, id uuid.UUID) (*models.Subtopic, error)
	GetQuestionAnswer(ctx context.Context, id uuid.UUID) (*models.QuestionAnswer, error)
}

// Classification says what kind of reply the ranked result warrants.
type Classification int

const (
	// NoMatch means nothing in the knowledge base scored above zero.
	NoMatch Classification = iota
	// Resolved means ranking narrowed the query down to exactly one
	// question-answer.
	Resolved
	// Suggestion means several question-answers tied at the top within a
	// single subtopic and the user should pick one.
	Suggestion
	// Confused means ranking could not settle on a single subtopic; the
	// user should be asked to clarify. Question candidates may still be
	// present, grouped under the tied subtopics.
	Confused
)

// TopicCandidate is a topic that tied at the maximum score.
type TopicCandidate struct {
	ID    uuid.UUID
	Name  string
	Ratio float64
}

// SubtopicCandidate is a subtopic that tied at the maximum score across the
// surviving topics.
type SubtopicCandidate struct {
	ID        uuid.UUID
	Name      string
	TopicID   uuid.UUID
	TopicName string
	Ratio     float64
}

// QuestionCandidate is a question-answer that tied at the maximum score
// across the surviving subtopics.
type QuestionCandidate struct {
	ID           uuid.UUID
	Question     string
	SubtopicID   uuid.UUID
	SubtopicName string
	TopicID      uuid.UUID
	TopicName    string
	Ratio        float64
}

// Result is the outcome of ranking one keyword set.
type Result struct {
	Classification Classification
	Topics         []TopicCandidate
	Subtopics      []SubtopicCandidate
	Questions      []QuestionCandidate
}

// Engine ranks keyword sets against a Store.
type Engine struct {
	store Store
}

// NewEngine creates a ranking engine backed by the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// score returns the fraction of query keywords present in the candidate's
// keyword list, rounded to two decimal places.
func score(queryKeywords []string, candidateKeywords []string) float64 {
	if len(queryKeywords) == 0 {
		return 0
	}
	keywordSet := make(map[string]bool, len(candidateKeywords))
	for _, kw := range candidateKeywords {
		keywordSet[strings.ToLower(kw)] = true
	}
	matched := 0
	for _, kw := range queryKeywords {
		if keywordSet[strings.ToLower(kw)] {
			matched++
		}
	}
	ratio := float64(matched) / float64(len(queryKeywords))
	return math.Round(ratio*100) / 100
}

// Rank resolves the keywords through the topic/subtopic/question cascade.
// Question candidates are computed whenever any subtopic scores, even when
// several topics or subtopics tie, so a clarification menu can still list
// the questions grouped under the tied subtopics.
func (e *Engine) Rank(ctx context.Context, keywords []string) (*Result, error) {
	keywords = dedupe(keywords)
	if len(keywords) == 0 {
		return &Result{Classification: NoMatch}, nil
	}

	topics, err := e.rankTopics(ctx, keywords)
	if err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		return &Result{Classification: NoMatch}, nil
	}

	result := &Result{}
	for _, t := range topics {
		result.Topics = append(result.Topics, t.TopicCandidate)
	}

	subtopics, err := e.rankSubtopics(ctx, keywords, topics)
	if err != nil {
		return nil, err
	}
	if len(subtopics) == 0 {
		result.Classification = Confused
		return result, nil
	}
	for _, s := range subtopics {
		result.Subtopics = append(result.Subtopics, s.SubtopicCandidate)
	}

	result.Questions, err = e.rankQuestions(ctx, keywords, subtopics)
	if err != nil {
		return nil, err
	}

	switch {
	case len(result.Questions) == 0:
		result.Classification = Confused
	case len(result.Topics) > 1 || len(result.Subtopics) > 1:
		result.Classification = Confused
	case len(result.Questions) == 1:
		result.Classification = Resolved
	default:
		result.Classification = Suggestion
	}
	return result, nil
}

func dedupe(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	var unique []string
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if !seen[kw] {
			seen[kw] = true
			unique = append(unique, kw)
		}
	}
	return unique
}

type rankedTopic struct {
	TopicCandidate
	subtopicIDs []uuid.UUID
}

func (e *Engine) rankTopics(ctx context.Context, keywords []string) ([]rankedTopic, error) {
	topics, err := e.store.GetTopics(ctx)
	if err != nil {
		return nil, err
	}

	var best float64
	var candidates []rankedTopic
	for _, topic := range topics {
		ratio := score(keywords, topic.Keywords)
		if ratio == 0 {
			continue
		}
		if ratio > best {
			best = ratio
			candidates = candidates[:0]
		}
		if ratio == best {
			candidates = append(candidates, rankedTopic{
				TopicCandidate: TopicCandidate{
					ID:    topic.ID,
					Name:  topic.Name,
					Ratio: ratio,
				},
				subtopicIDs: topic.Subtopics,
			})
		}
	}
	return candidates, nil
}

type rankedSubtopic struct {
	SubtopicCandidate
	questionIDs []uuid.UUID
}

func (e *Engine) rankSubtopics(ctx context.Context, keywords []string, topics []rankedTopic) ([]rankedSubtopic, error) {
	var best float64
	var candidates []rankedSubtopic
	for _, topic := range topics {
		for _, id := range topic.subtopicIDs {
			subtopic, err := e.store.GetSubtopic(ctx, id)
			if err != nil {
				return nil, err
			}
			ratio := score(keywords, subtopic.Keywords)
			if ratio == 0 {
				continue
			}
			if ratio > best {
				best = ratio
				candidates = candidates[:0]
			}
			if ratio == best {
				candidates = append(candidates, rankedSubtopic{
					SubtopicCandidate: SubtopicCandidate{
						ID:        subtopic.ID,
						Name:      subtopic.Name,
						TopicID:   topic.ID,
						TopicName: topic.Name,
						Ratio:     ratio,
					},
					questionIDs: subtopic.QuestionAnswers,
				})
			}
		}
	}
	return candidates, nil
}

func (e *Engine) rankQuestions(ctx context.Context, keywords []string, subtopics []rankedSubtopic) ([]QuestionCandidate, error) {
	var best float64
	var candidates []QuestionCandidate
	for _, subtopic := range subtopics {
		for _, id := range subtopic.questionIDs {
			qa, err := e.store.GetQuestionAnswer(ctx, id)
			if err != nil {
				return nil, err
			}
			ratio := score(keywords, qa.Keywords)
			if ratio == 0 {
				continue
			}
			if ratio > best {
				best = ratio
				candidates = candidates[:0]
			}
			if ratio == best {
				candidates = append(candidates, QuestionCandidate{
					ID:           qa.ID,
					Question:     qa.Question,
					SubtopicID:   subtopic.ID,
					SubtopicName: subtopic.Name,
					TopicID:      subtopic.TopicID,
					TopicName:    subtopic.TopicName,
					Ratio:        ratio,
				})
			}
		}
	}
	return candidates, nil
}
