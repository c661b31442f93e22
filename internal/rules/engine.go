// Package rules synthesizes conversation rules and runs them through a
// RiveScript matcher. Persistent rules map question patterns to stored Q&A
// ids; ephemeral rules are generated mid-conversation to offer suggestion and
// clarification menus, live under per-conversation topic namespaces, and are
// expired by the compactor.
package rules

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/aichaos/rivescript-go"
)

//go:embed brain/*.rive
var brainFS embed.FS

// ErrNoReply means no rule pattern matched the message.
var ErrNoReply = errors.New("no rule matched the message")

// Branch is one user-selectable option inside a nested rule namespace.
type Branch struct {
	// UserPattern matches what the user may type to pick this option.
	UserPattern string
	// BotReply is re-submitted as the real question when the option is
	// picked. It may carry a topic transition of its own.
	BotReply string
}

// Rule describes one synthesis request.
type Rule struct {
	// Namespace is the rule group the block is appended to.
	Namespace string
	// Persistent marks knowledge-base rules that never expire.
	Persistent bool
	// ConvID ties ephemeral blocks to their conversation for expiry.
	ConvID string

	// Pattern is the trigger; empty when the rule only defines branches.
	Pattern string
	// Question is the bot line sent when the pattern matches.
	Question string
	// RuleID names the nested namespace the conversation moves into after
	// the pattern matches, and the namespace the branches live in. Empty
	// for flat persistent rules.
	RuleID string
	// ParentID is where the branch fallback returns unmatched input.
	ParentID string
	// Branches are the selectable options; nil for flat rules.
	Branches []Branch
}

// render produces the rule block in the matcher's source syntax.
func (r Rule) render() string {
	var b strings.Builder
	if r.Pattern != "" {
		fmt.Fprintf(&b, "+ %s\n", r.Pattern)
		if r.RuleID != "" {
			fmt.Fprintf(&b, "- %s {topic=%s}\n\n", r.Question, r.RuleID)
		} else {
			fmt.Fprintf(&b, "- %s\n\n", r.Question)
		}
	}
	if len(r.Branches) > 0 {
		fmt.Fprintf(&b, "> topic %s\n\n", r.RuleID)
		for _, branch := range r.Branches {
			fmt.Fprintf(&b, "  + %s\n", branch.UserPattern)
			fmt.Fprintf(&b, "  - ^Recursive=%s\n\n", branch.BotReply)
		}
		b.WriteString("  + *\n")
		fmt.Fprintf(&b, "  - ^Return-to-Maintopic=<star>{topic=%s}\n\n", r.ParentID)
		b.WriteString("< topic\n\n")
	}
	return b.String()
}

// Engine is the rule matcher. It owns a RiveScript instance built from the
// embedded base brain plus every block in the store, and rebuilds it on
// compaction. All matcher access is serialized; the underlying instance is
// not safe for concurrent rule streaming.
type Engine struct {
	mu    sync.Mutex
	store *Store
	bot   *rivescript.RiveScript
	users map[string]bool
}

// NewEngine builds a matcher from the embedded base brain and the store's
// current contents.
func NewEngine(store *Store) (*Engine, error) {
	e := &Engine{
		store: store,
		users: make(map[string]bool),
	}
	bot, err := e.build()
	if err != nil {
		return nil, err
	}
	e.bot = bot
	return e, nil
}

// build creates a fresh matcher instance loaded with the base brain and the
// rendered store.
func (e *Engine) build() (*rivescript.RiveScript, error) {
	// UTF8 keeps "+" in messages so phone numbers survive as wildcards.
	bot := rivescript.New(rivescript.WithUTF8())

	entries, err := fs.Glob(brainFS, "brain/*.rive")
	if err != nil {
		return nil, err
	}
	for _, name := range entries {
		source, err := brainFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read base brain %s: %w", name, err)
		}
		if err := bot.Stream(string(source)); err != nil {
			return nil, fmt.Errorf("failed to load base brain %s: %w", name, err)
		}
	}

	if rendered := e.store.Render(); rendered != "" {
		if err := bot.Stream(rendered); err != nil {
			return nil, fmt.Errorf("failed to load synthesized rules: %w", err)
		}
	}

	bot.SortReplies()
	return bot, nil
}

// Reply matches the message for the given user and returns the rule reply.
// Returns ErrNoReply when nothing matched.
func (e *Engine) Reply(userID, message string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.users[userID] = true
	reply, err := e.bot.Reply(userID, message)
	if err != nil {
		if errors.Is(err, rivescript.ErrNoTriggerMatched) || errors.Is(err, rivescript.ErrNoReplyFound) {
			return "", ErrNoReply
		}
		return "", fmt.Errorf("matcher reply failed: %w", err)
	}
	return reply, nil
}

// Topic returns the user's current conversational topic, defaulting to the
// root topic when unset.
func (e *Engine) Topic(userID string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	topic, err := e.bot.GetUservar(userID, "topic")
	if err != nil || topic == "" || topic == "undefined" {
		return "random"
	}
	return topic
}

// SetTopic forces the user's conversational topic.
func (e *Engine) SetTopic(userID, topic string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.users[userID] = true
	e.bot.SetUservar(userID, "topic", topic)
}

// AddRule appends the rule to its namespace and streams it into the live
// matcher. Returns false without error when an identical pattern already
// exists in the namespace.
func (e *Engine) AddRule(rule Rule) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	source := rule.render()
	if source == "" {
		return false, nil
	}
	if !e.store.Append(rule.Namespace, rule.Persistent, rule.Pattern, source, rule.ConvID) {
		return false, nil
	}

	if err := e.bot.Stream(source); err != nil {
		return false, fmt.Errorf("failed to stream rule into matcher: %w", err)
	}
	e.bot.SortReplies()
	return true, nil
}

// Compact expires ephemeral rules older than maxAge and rebuilds the matcher
// from scratch, carrying each known user's topic over to the new instance.
// Returns how many blocks were expired.
func (e *Engine) Compact(maxAge time.Duration) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	expired := e.store.Expire(maxAge)

	topics := make(map[string]string, len(e.users))
	for user := range e.users {
		if topic, err := e.bot.GetUservar(user, "topic"); err == nil && topic != "undefined" {
			topics[user] = topic
		}
	}

	bot, err := e.build()
	if err != nil {
		return expired, err
	}
	for user, topic := range topics {
		bot.SetUservar(user, "topic", topic)
	}
	e.bot = bot
	return expired, nil
}
