// Package dialogue interprets matcher replies and drives a conversation to
// an outgoing message: it decodes control tags, resolves menu picks, falls
// back to ranking plus rule synthesis when nothing matches, and routes
// handover traffic between users and the human channel.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	ntw "moul.io/number-to-words"

	"covidbot/internal/db"
	"covidbot/internal/handover"
	"covidbot/internal/messaging"
	"covidbot/internal/models"
	"covidbot/internal/nlp"
	"covidbot/internal/ranking"
	"covidbot/internal/rules"
	"covidbot/internal/validation"
)

// liveNamespace holds the ephemeral per-conversation rules.
const liveNamespace = "live_conversations"

// maxReturnDepth bounds the return-to-maintopic loop. A well-formed rule set
// never nests this deep.
const maxReturnDepth = 25

// Store is the slice of the database the interpreter reads and writes.
type Store interface {
	GetQuestionAnswer(ctx context.Context, id uuid.UUID) (*models.QuestionAnswer, error)
	IsBlacklisted(ctx context.Context, phoneNumber string) (bool, error)
	AddToBlacklist(ctx context.Context, phoneNumber string) error
}

// Annotator is the NLP collaborator.
type Annotator interface {
	ExtractKeywords(ctx context.Context, query string) ([]string, error)
	Annotate(ctx context.Context, expression string) ([]nlp.Token, error)
}

// Ranker resolves keyword sets against the knowledge base.
type Ranker interface {
	Rank(ctx context.Context, keywords []string) (*ranking.Result, error)
}

// Matcher is the rule engine surface the interpreter uses.
type Matcher interface {
	Reply(userID, message string) (string, error)
	Topic(userID string) string
	SetTopic(userID, topic string)
	AddRule(rule rules.Rule) (bool, error)
}

// Handover drives the escalation lifecycle.
type Handover interface {
	Start(ctx context.Context, userNumber, language string) (uuid.UUID, error)
	Forward(ctx context.Context, userNumber, text string) error
	Accept(ctx context.Context, userNumber, volunteerNumber string) error
	Close(ctx context.Context, userNumber string) error
	Answer(ctx context.Context, userNumber, text string) error
}

// Recorder counts query outcomes for the metrics collector.
type Recorder interface {
	Record(outcome string)
}

// Interpreter resolves one inbound message to one outgoing reply.
type Interpreter struct {
	store       Store
	annotator   Annotator
	ranker      Ranker
	matcher     Matcher
	handover    Handover
	recorder    Recorder
	sessions    *sessionLocks
	humanNumber string
	language    string
}

// NewInterpreter wires the interpreter's collaborators. humanNumber is the
// fixed human channel; language is recorded on handover requests.
func NewInterpreter(store Store, annotator Annotator, ranker Ranker, matcher Matcher, handover Handover, recorder Recorder, humanNumber, language string) *Interpreter {
	return &Interpreter{
		store:       store,
		annotator:   annotator,
		ranker:      ranker,
		matcher:     matcher,
		handover:    handover,
		recorder:    recorder,
		sessions:    newSessionLocks(),
		humanNumber: humanNumber,
		language:    language,
	}
}

// Resolve handles one message from userID and returns the outgoing reply.
// An empty reply with a nil error means the message was fully handled
// through handover notifications and nothing goes back on this channel.
func (i *Interpreter) Resolve(ctx context.Context, userID, query string) (string, error) {
	blacklisted, err := i.store.IsBlacklisted(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("blacklist lookup failed: %w", err)
	}
	if blacklisted {
		i.recorder.Record(models.OutcomeBlacklisted)
		return messaging.Blacklisted(), nil
	}

	unlock := i.sessions.acquire(userID)
	defer unlock()

	reply, noReply, err := i.match(userID, query)
	if err != nil {
		return "", err
	}

	if noReply {
		reply, noReply, err = i.expand(ctx, userID, query)
		if err != nil {
			return "", err
		}
	}

	if noReply {
		i.recorder.Record(models.OutcomeNoMatch)
		return messaging.UnknownAnswer(), nil
	}
	return i.dispatch(ctx, userID, query, reply)
}

// match runs the message through the matcher and resolves the navigation
// tags: return-to-maintopic loops until the reply settles, and a picked menu
// option is re-queried at the root topic with the user's topic restored
// afterwards.
func (i *Interpreter) match(userID, query string) (string, bool, error) {
	reply, err := i.matcher.Reply(userID, query)
	if err != nil {
		if errors.Is(err, rules.ErrNoReply) {
			return "", true, nil
		}
		return "", false, err
	}

	for depth := 0; depth < maxReturnDepth; depth++ {
		tag := DecodeTag(reply)
		if tag.Kind != TagReturnToMaintopic {
			break
		}
		reply, err = i.matcher.Reply(userID, tag.Text)
		if err != nil {
			if errors.Is(err, rules.ErrNoReply) {
				return "", true, nil
			}
			return "", false, err
		}
	}

	if tag := DecodeTag(reply); tag.Kind == TagRecursive {
		if strings.Contains(tag.Text, SuggestionDelimiter) {
			// The picked option is itself a suggestion menu.
			return tag.Text, false, nil
		}
		saved := i.matcher.Topic(userID)
		i.matcher.SetTopic(userID, "random")
		reply, err = i.matcher.Reply(userID, tag.Text)
		i.matcher.SetTopic(userID, saved)
		if err != nil {
			if errors.Is(err, rules.ErrNoReply) {
				return "", true, nil
			}
			return "", false, err
		}
	}

	// A reply still carrying a navigation tag here means the rule set
	// cycles; treat it as unmatched rather than leaking the tag.
	switch DecodeTag(reply).Kind {
	case TagReturnToMaintopic, TagRecursive:
		return "", true, nil
	}
	return reply, false, nil
}

// dispatch turns the settled matcher reply into the outgoing message.
func (i *Interpreter) dispatch(ctx context.Context, userID, query, reply string) (string, error) {
	if strings.Contains(reply, ClarificationDelimiter) {
		i.recorder.Record(models.OutcomeClarification)
		return FormatClarification(reply), nil
	}
	if strings.Contains(reply, SuggestionDelimiter) {
		i.recorder.Record(models.OutcomeSuggested)
		return FormatSuggestions(reply), nil
	}

	tag := DecodeTag(reply)
	switch tag.Kind {
	case TagUserHandoverRequest:
		if _, err := i.handover.Start(ctx, userID, i.language); err != nil {
			return "", err
		}
		i.recorder.Record(models.OutcomeHandover)
		return tag.Text, nil

	case TagUserHandoverContinue:
		if err := i.handover.Forward(ctx, userID, query); err != nil {
			return "", err
		}
		i.recorder.Record(models.OutcomeHandover)
		return "", nil

	case TagUserHandoverClosed:
		if err := i.handover.Close(ctx, userID); err != nil && !errors.Is(err, db.ErrHandoverNotFound) {
			return "", err
		}
		i.recorder.Record(models.OutcomeHandover)
		return tag.Text, nil

	case TagHumanHandoverAccepted:
		if userID != i.humanNumber {
			i.recorder.Record(models.OutcomeDenied)
			return messaging.PermissionDenied(), nil
		}
		if tag.Malformed || !validation.ValidateRecipient(tag.Recipient) {
			return messaging.FormatError(), nil
		}
		if err := i.handover.Accept(ctx, tag.Recipient, userID); err != nil {
			if errors.Is(err, db.ErrHandoverNotFound) {
				return messaging.FormatError(), nil
			}
			return "", err
		}
		i.recorder.Record(models.OutcomeHandover)
		return tag.Text, nil

	case TagHumanHandoverAnswer:
		recipient, text, err := handover.ParseEnvelope(query)
		if err != nil {
			return messaging.FormatError(), nil
		}
		if err := i.handover.Answer(ctx, recipient, text); err != nil {
			return "", err
		}
		i.recorder.Record(models.OutcomeHandover)
		return "", nil

	case TagHumanReportAbuse:
		if userID != i.humanNumber {
			i.recorder.Record(models.OutcomeDenied)
			return messaging.PermissionDenied(), nil
		}
		if tag.Malformed || tag.Recipient == "" {
			return messaging.FormatError(), nil
		}
		if err := i.store.AddToBlacklist(ctx, tag.Recipient); err != nil {
			return "", fmt.Errorf("failed to blacklist %s: %w", tag.Recipient, err)
		}
		i.recorder.Record(models.OutcomeHandover)
		return tag.Text, nil
	}

	// A bare id reply references a stored Q&A entry.
	if id, err := uuid.Parse(strings.TrimSpace(reply)); err == nil {
		qa, err := i.store.GetQuestionAnswer(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to load answer %s: %w", id, err)
		}
		i.recorder.Record(models.OutcomeResolved)
		return FormatAnswer(qa), nil
	}

	i.recorder.Record(models.OutcomeResolved)
	return reply, nil
}

// expand is the no-match fallback: rank the query against the knowledge
// base, synthesize suggestion or clarification rules from the candidates,
// and re-query once. Returns noReply=true when nothing could be built.
func (i *Interpreter) expand(ctx context.Context, userID, query string) (string, bool, error) {
	keywords, err := i.annotator.ExtractKeywords(ctx, query)
	if err != nil {
		return "", false, err
	}
	result, err := i.ranker.Rank(ctx, keywords)
	if err != nil {
		return "", false, err
	}

	var synthesized bool
	switch result.Classification {
	case ranking.NoMatch:
		return "", true, nil
	case ranking.Confused:
		synthesized, err = i.synthesizeClarification(ctx, query, result)
	default:
		synthesized, err = i.synthesizeSuggestion(ctx, query, result)
	}
	if err != nil {
		return "", false, err
	}
	if !synthesized {
		return "", true, nil
	}

	reply, err := i.matcher.Reply(userID, query)
	if err != nil {
		if errors.Is(err, rules.ErrNoReply) {
			return "", true, nil
		}
		return "", false, err
	}
	return reply, false, nil
}

// subtopicGroup collects the candidate questions under one subtopic.
type subtopicGroup struct {
	id        uuid.UUID
	name      string
	questions []string
}

// groupBySubtopic folds question candidates into per-subtopic groups,
// preserving candidate order and dropping duplicate question texts.
func groupBySubtopic(questions []ranking.QuestionCandidate) []subtopicGroup {
	var groups []subtopicGroup
	index := make(map[uuid.UUID]int)
	for _, q := range questions {
		gi, ok := index[q.SubtopicID]
		if !ok {
			gi = len(groups)
			index[q.SubtopicID] = gi
			groups = append(groups, subtopicGroup{id: q.SubtopicID, name: q.SubtopicName})
		}
		duplicate := false
		for _, existing := range groups[gi].questions {
			if existing == q.Question {
				duplicate = true
				break
			}
		}
		if !duplicate {
			groups[gi].questions = append(groups[gi].questions, q.Question)
		}
	}
	return groups
}

// optionPattern matches a numbered menu pick: the digit or its spelled-out
// form, with anything around it. Extra alternatives (e.g. a subtopic name)
// are appended verbatim.
func optionPattern(n int, extra ...string) string {
	alternatives := append([]string{fmt.Sprintf("%d", n), ntw.IntegerToEnUs(n)}, extra...)
	return fmt.Sprintf("[*](%s)[*]", strings.Join(alternatives, "|"))
}

// questionMenu renders up to four questions as a delimited menu line.
func questionMenu(questions []string) string {
	if len(questions) == 1 {
		return fmt.Sprintf("1. %s%s", questions[0], SuggestionDelimiter)
	}
	if len(questions) > maxSuggestions {
		questions = questions[:maxSuggestions]
	}
	entries := make([]string, len(questions))
	for qi, q := range questions {
		entries[qi] = fmt.Sprintf("%d. %s", qi+1, q)
	}
	return strings.Join(entries, SuggestionDelimiter)
}

// questionBranches builds the pick-by-number branches for a question menu.
func questionBranches(questions []string) []rules.Branch {
	if len(questions) > maxSuggestions {
		questions = questions[:maxSuggestions]
	}
	branches := make([]rules.Branch, len(questions))
	for qi, q := range questions {
		branches[qi] = rules.Branch{
			UserPattern: optionPattern(qi + 1),
			BotReply:    q,
		}
	}
	return branches
}

// synthesizeSuggestion builds the rules for the unambiguous case: the
// candidate questions all live under one subtopic, so the query pattern maps
// straight to a pick-a-question menu.
func (i *Interpreter) synthesizeSuggestion(ctx context.Context, query string, result *ranking.Result) (bool, error) {
	var questions []string
	for _, q := range result.Questions {
		questions = append(questions, q.Question)
	}
	if len(questions) == 0 {
		return false, nil
	}

	tokens, err := i.annotator.Annotate(ctx, query)
	if err != nil {
		return false, err
	}
	pattern := rules.GeneratePattern(tokens)
	if pattern == "" {
		return false, nil
	}

	conversationID := "choose_question_" + uuid.NewString()
	_, err = i.matcher.AddRule(rules.Rule{
		Namespace: liveNamespace,
		ConvID:    conversationID,
		Pattern:   pattern,
		Question:  questionMenu(questions),
		RuleID:    conversationID,
		ParentID:  "random",
		Branches:  questionBranches(questions),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// synthesizeClarification builds the rules for the ambiguous case: the
// candidate questions span several subtopics, so the query pattern maps to a
// pick-a-subtopic menu whose options each open a pick-a-question menu. A
// final option escalates to a human.
func (i *Interpreter) synthesizeClarification(ctx context.Context, query string, result *ranking.Result) (bool, error) {
	groups := groupBySubtopic(result.Questions)
	if len(groups) < 2 {
		// A single group cannot fill a clarification menu; the original
		// fell through to "no answer" here too.
		return false, nil
	}

	shown := groups
	if len(shown) > maxClarifications {
		shown = shown[:maxClarifications]
	}

	entries := make([]string, len(shown))
	for si, g := range shown {
		entries[si] = fmt.Sprintf("%d. %s", si+1, g.name)
	}
	humanOption := len(groups) + 1
	clarificationMenu := fmt.Sprintf("%s%s%d. Talk to human",
		strings.Join(entries, ClarificationDelimiter), ClarificationDelimiter, humanOption)

	tokens, err := i.annotator.Annotate(ctx, query)
	if err != nil {
		return false, err
	}
	pattern := rules.GeneratePattern(tokens)
	if pattern == "" {
		return false, nil
	}

	mainID := "choose_subtopic_" + uuid.NewString()
	if _, err := i.matcher.AddRule(rules.Rule{
		Namespace: liveNamespace,
		ConvID:    mainID,
		Pattern:   pattern,
		Question:  clarificationMenu,
		RuleID:    mainID,
	}); err != nil {
		return false, err
	}

	mainBranches := make([]rules.Branch, 0, len(shown)+1)
	for si, g := range shown {
		subID := "choose_question_" + uuid.NewString()
		if _, err := i.matcher.AddRule(rules.Rule{
			Namespace: liveNamespace,
			ConvID:    mainID,
			RuleID:    subID,
			ParentID:  mainID,
			Branches:  questionBranches(g.questions),
		}); err != nil {
			return false, err
		}
		mainBranches = append(mainBranches, rules.Branch{
			UserPattern: optionPattern(si+1, strings.ToLower(g.name)),
			BotReply:    fmt.Sprintf("%s {topic=%s}", questionMenu(g.questions), subID),
		})
	}
	mainBranches = append(mainBranches, rules.Branch{
		UserPattern: optionPattern(humanOption, "talk to human", "talk to person"),
		BotReply:    "Talk to human {topic=user_initiate_handover}",
	})

	if _, err := i.matcher.AddRule(rules.Rule{
		Namespace: liveNamespace,
		ConvID:    mainID,
		RuleID:    mainID,
		ParentID:  "random",
		Branches:  mainBranches,
	}); err != nil {
		return false, err
	}
	return true, nil
}
