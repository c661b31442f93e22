package ranking

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"covidbot/internal/models"
)

type fakeStore struct {
	topics    []models.Topic
	subtopics map[uuid.UUID]*models.Subtopic
	questions map[uuid.UUID]*models.QuestionAnswer
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		subtopics: make(map[uuid.UUID]*models.Subtopic),
		questions: make(map[uuid.UUID]*models.QuestionAnswer),
	}
}

func (f *fakeStore) GetTopics(ctx context.Context) ([]models.Topic, error) {
	return f.topics, nil
}

func (f *fakeStore) GetSubtopic(ctx context.Context, id uuid.UUID) (*models.Subtopic, error) {
	st, ok := f.subtopics[id]
	if !ok {
		return nil, fmt.Errorf("subtopic %s not found", id)
	}
	return st, nil
}

func (f *fakeStore) GetQuestionAnswer(ctx context.Context, id uuid.UUID) (*models.QuestionAnswer, error) {
	qa, ok := f.questions[id]
	if !ok {
		return nil, fmt.Errorf("question answer %s not found", id)
	}
	return qa, nil
}

func (f *fakeStore) addTopic(name string, keywords []string, subtopicIDs ...uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.topics = append(f.topics, models.Topic{
		ID:        id,
		Name:      name,
		Keywords:  keywords,
		Subtopics: subtopicIDs,
	})
	return id
}

func (f *fakeStore) addSubtopic(name string, keywords []string, questionIDs ...uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.subtopics[id] = &models.Subtopic{
		ID:              id,
		Name:            name,
		Keywords:        keywords,
		QuestionAnswers: questionIDs,
	}
	return id
}

func (f *fakeStore) addQuestion(question string, keywords []string) uuid.UUID {
	id := uuid.New()
	f.questions[id] = &models.QuestionAnswer{
		ID:       id,
		Question: question,
		Keywords: keywords,
	}
	return id
}

func TestRank_ResolvesSingleQuestion(t *testing.T) {
	store := newFakeStore()
	q1 := store.addQuestion("Should I wear a mask?", []string{"wear", "mask"})
	q2 := store.addQuestion("How do I wash a mask?", []string{"wash", "mask"})
	st := store.addSubtopic("Masks", []string{"mask"}, q1, q2)
	store.addTopic("Prevention", []string{"mask", "wear", "prevent"}, st)
	store.addTopic("Symptoms", []string{"symptom", "fever"})

	engine := NewEngine(store)
	result, err := engine.Rank(context.Background(), []string{"wear", "mask"})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	if result.Classification != Resolved {
		t.Fatalf("Rank() classification = %v, want Resolved", result.Classification)
	}
	if len(result.Questions) != 1 || result.Questions[0].ID != q1 {
		t.Errorf("Rank() questions = %v, want exactly %s", result.Questions, q1)
	}
	if result.Questions[0].Ratio != 1.0 {
		t.Errorf("Rank() question ratio = %v, want 1.0", result.Questions[0].Ratio)
	}
}

// A topic with a partially matching keyword set must lose to a full match
// rather than tie with it.
func TestRank_PartialMatchLosesToFullMatch(t *testing.T) {
	store := newFakeStore()
	q := store.addQuestion("Should I wear a mask?", []string{"wear", "mask"})
	st := store.addSubtopic("Masks", []string{"mask"}, q)
	winner := store.addTopic("Prevention", []string{"mask", "wear"}, st)
	store.addTopic("General", []string{"mask", "covid"})
	store.addTopic("Symptoms", []string{"symptom"})

	engine := NewEngine(store)
	result, err := engine.Rank(context.Background(), []string{"wear", "mask"})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	if len(result.Topics) != 1 || result.Topics[0].ID != winner {
		t.Fatalf("Rank() topics = %v, want only the full match", result.Topics)
	}
	if result.Topics[0].Ratio != 1.0 {
		t.Errorf("Rank() topic ratio = %v, want 1.0", result.Topics[0].Ratio)
	}
}

func TestRank_TiedTopicsAreConfused(t *testing.T) {
	store := newFakeStore()
	store.addTopic("Prevention", []string{"covid"})
	store.addTopic("Symptoms", []string{"covid"})

	engine := NewEngine(store)
	result, err := engine.Rank(context.Background(), []string{"covid"})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	if result.Classification != Confused {
		t.Fatalf("Rank() classification = %v, want Confused", result.Classification)
	}
	if len(result.Topics) != 2 {
		t.Errorf("Rank() topics = %d, want both tied topics", len(result.Topics))
	}
}

func TestRank_TiedSubtopicsAreConfused(t *testing.T) {
	store := newFakeStore()
	st1 := store.addSubtopic("Cloth masks", []string{"mask"})
	st2 := store.addSubtopic("Medical masks", []string{"mask"})
	store.addTopic("Prevention", []string{"mask"}, st1, st2)

	engine := NewEngine(store)
	result, err := engine.Rank(context.Background(), []string{"mask"})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	if result.Classification != Confused {
		t.Fatalf("Rank() classification = %v, want Confused", result.Classification)
	}
	if len(result.Subtopics) != 2 {
		t.Errorf("Rank() subtopics = %d, want both tied subtopics", len(result.Subtopics))
	}
}

func TestRank_TiedQuestionsAreSuggestions(t *testing.T) {
	store := newFakeStore()
	q1 := store.addQuestion("Should I wear a mask indoors?", []string{"mask"})
	q2 := store.addQuestion("Should I wear a mask outdoors?", []string{"mask"})
	st := store.addSubtopic("Masks", []string{"mask"}, q1, q2)
	store.addTopic("Prevention", []string{"mask"}, st)

	engine := NewEngine(store)
	result, err := engine.Rank(context.Background(), []string{"mask"})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	if result.Classification != Suggestion {
		t.Fatalf("Rank() classification = %v, want Suggestion", result.Classification)
	}
	if len(result.Questions) != 2 {
		t.Errorf("Rank() questions = %d, want both tied questions", len(result.Questions))
	}
	for _, q := range result.Questions {
		if q.SubtopicID != st {
			t.Errorf("question %s subtopic = %s, want %s", q.ID, q.SubtopicID, st)
		}
	}
}

func TestRank_NoMatch(t *testing.T) {
	store := newFakeStore()
	store.addTopic("Prevention", []string{"mask"})

	engine := NewEngine(store)

	for _, keywords := range [][]string{nil, {"weather"}} {
		result, err := engine.Rank(context.Background(), keywords)
		if err != nil {
			t.Fatalf("Rank(%v) error = %v", keywords, err)
		}
		if result.Classification != NoMatch {
			t.Errorf("Rank(%v) classification = %v, want NoMatch", keywords, result.Classification)
		}
	}
}

// A topic whose subtopics all score zero cannot resolve and must fall back to
// asking the user.
func TestRank_TopicWithoutScoringSubtopicsIsConfused(t *testing.T) {
	store := newFakeStore()
	st := store.addSubtopic("Vaccines", []string{"vaccine"})
	store.addTopic("Prevention", []string{"mask"}, st)

	engine := NewEngine(store)
	result, err := engine.Rank(context.Background(), []string{"mask"})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	if result.Classification != Confused {
		t.Fatalf("Rank() classification = %v, want Confused", result.Classification)
	}
	if len(result.Subtopics) != 0 {
		t.Errorf("Rank() subtopics = %v, want none", result.Subtopics)
	}
}

func TestScoreRounding(t *testing.T) {
	// One of three query keywords matches.
	got := score([]string{"mask", "wear", "vaccine"}, []string{"mask"})
	if got != 0.33 {
		t.Errorf("score() = %v, want 0.33", got)
	}
}

// Ties above the question level still surface the question candidates, so a
// clarification menu can be built from them.
func TestRank_TiedSubtopicsKeepQuestionCandidates(t *testing.T) {
	store := newFakeStore()
	q1 := store.addQuestion("Do cloth masks work?", []string{"mask"})
	q2 := store.addQuestion("Do medical masks work?", []string{"mask"})
	st1 := store.addSubtopic("Cloth masks", []string{"mask"}, q1)
	st2 := store.addSubtopic("Medical masks", []string{"mask"}, q2)
	store.addTopic("Prevention", []string{"mask"}, st1, st2)

	engine := NewEngine(store)
	result, err := engine.Rank(context.Background(), []string{"mask"})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	if result.Classification != Confused {
		t.Fatalf("Rank() classification = %v, want Confused", result.Classification)
	}
	if len(result.Questions) != 2 {
		t.Fatalf("Rank() questions = %d, want 2", len(result.Questions))
	}
	for _, q := range result.Questions {
		if q.SubtopicName == "" || q.TopicName == "" {
			t.Errorf("question %s missing parent names: %+v", q.ID, q)
		}
	}
}

func TestRank_DuplicateKeywordsCountOnce(t *testing.T) {
	store := newFakeStore()
	q := store.addQuestion("Should I wear a mask?", []string{"mask", "wear"})
	st := store.addSubtopic("Masks", []string{"mask", "wear"}, q)
	store.addTopic("Prevention", []string{"mask", "wear"}, st)

	engine := NewEngine(store)
	result, err := engine.Rank(context.Background(), []string{"mask", "Mask", "wear"})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if result.Classification != Resolved {
		t.Fatalf("Rank() classification = %v, want Resolved", result.Classification)
	}
	if result.Topics[0].Ratio != 1.0 {
		t.Errorf("topic ratio = %v, want 1.0 after dedupe", result.Topics[0].Ratio)
	}
}
