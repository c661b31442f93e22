package rules

import (
	"strings"
	"sync"
	"time"
)

// block is one rendered rule block inside a namespace. Pattern is empty for
// blocks that only define a nested topic. Ephemeral blocks carry the
// conversation id and creation time used by expiry.
type block struct {
	pattern string
	source  string
	convID  string
	created time.Time
}

type namespace struct {
	persistent bool
	blocks     []block
}

// Store holds the synthesized rule namespaces the matcher is built from.
// Persistent namespaces hold the knowledge-base rules written at ingestion
// time; ephemeral namespaces hold per-conversation disambiguation rules and
// are subject to expiry. Appends are idempotent on the trigger pattern, the
// way the original rule files were scanned before each write.
type Store struct {
	mu         sync.RWMutex
	namespaces map[string]*namespace
	order      []string
}

// NewStore creates an empty rule store.
func NewStore() *Store {
	return &Store{namespaces: make(map[string]*namespace)}
}

// HasPattern reports whether the namespace already contains a block with a
// byte-identical trigger pattern.
func (s *Store) HasPattern(ns, pattern string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasPattern(ns, pattern)
}

func (s *Store) hasPattern(ns, pattern string) bool {
	n, ok := s.namespaces[ns]
	if !ok {
		return false
	}
	for _, b := range n.blocks {
		if b.pattern != "" && b.pattern == pattern {
			return true
		}
	}
	return false
}

// Append adds a rendered rule block to the namespace. When pattern is
// non-empty and an identical pattern already exists the append is skipped and
// Append returns false.
func (s *Store) Append(ns string, persistent bool, pattern, source, convID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pattern != "" && s.hasPattern(ns, pattern) {
		return false
	}

	n, ok := s.namespaces[ns]
	if !ok {
		n = &namespace{persistent: persistent}
		s.namespaces[ns] = n
		s.order = append(s.order, ns)
	}
	n.blocks = append(n.blocks, block{
		pattern: pattern,
		source:  source,
		convID:  convID,
		created: time.Now(),
	})
	return true
}

// Expire removes ephemeral blocks older than maxAge and returns how many were
// dropped. Namespaces left empty are removed entirely.
func (s *Store) Expire(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	expired := 0
	for name, n := range s.namespaces {
		if n.persistent {
			continue
		}
		kept := n.blocks[:0]
		for _, b := range n.blocks {
			if b.created.Before(cutoff) {
				expired++
				continue
			}
			kept = append(kept, b)
		}
		n.blocks = kept
		if len(n.blocks) == 0 {
			delete(s.namespaces, name)
			s.removeFromOrder(name)
		}
	}
	return expired
}

func (s *Store) removeFromOrder(name string) {
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// Render concatenates every namespace's blocks into one rule source document,
// in insertion order.
func (s *Store) Render() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	for _, name := range s.order {
		for _, blk := range s.namespaces[name].blocks {
			b.WriteString(blk.source)
		}
	}
	return b.String()
}
