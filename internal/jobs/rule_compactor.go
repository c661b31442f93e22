package jobs

import (
	"context"
	"log"
	"time"
)

// Compactor is the matcher surface the job drives.
type Compactor interface {
	Compact(maxAge time.Duration) (int, error)
}

// RuleCompactor periodically expires ephemeral conversation rules and
// rebuilds the matcher, keeping the rule set from growing without bound.
type RuleCompactor struct {
	engine   Compactor
	interval time.Duration
	maxAge   time.Duration
}

// NewRuleCompactor creates a new rule compactor.
func NewRuleCompactor(engine Compactor, interval, maxAge time.Duration) *RuleCompactor {
	return &RuleCompactor{
		engine:   engine,
		interval: interval,
		maxAge:   maxAge,
	}
}

// Start begins the background compaction loop.
func (c *RuleCompactor) Start(ctx context.Context) {
	log.Printf("Rule compactor started (interval: %v, maxAge: %v)", c.interval, c.maxAge)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Rule compactor stopped")
			return
		case <-ticker.C:
			c.compact()
		}
	}
}

func (c *RuleCompactor) compact() {
	expired, err := c.engine.Compact(c.maxAge)
	if err != nil {
		log.Printf("Rule compactor: rebuild failed: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("Rule compactor: expired %d conversation rules", expired)
	}
}
