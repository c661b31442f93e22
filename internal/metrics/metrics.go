package metrics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"covidbot/internal/db"
)

var (
	queryOutcomeDesc = prometheus.NewDesc(
		"covidbot_query_outcomes_total",
		"Total resolved queries by outcome",
		[]string{"outcome"},
		nil,
	)
)

// OutcomeCollector is a custom Prometheus collector that reads query outcome
// counts from the database on each scrape.
type OutcomeCollector struct {
	db *db.DB
}

// Describe sends the metric descriptor to the channel.
func (c *OutcomeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- queryOutcomeDesc
}

// Collect queries the database for all query outcomes and emits them as counters.
func (c *OutcomeCollector) Collect(ch chan<- prometheus.Metric) {
	outcomes, err := c.db.GetAllQueryOutcomes(context.Background())
	if err != nil {
		slog.Error("failed to collect query outcome metrics", "error", err)
		return
	}
	for _, o := range outcomes {
		ch <- prometheus.MustNewConstMetric(
			queryOutcomeDesc,
			prometheus.CounterValue,
			float64(o.Count),
			o.Outcome,
		)
	}
}

// Recorder provides async query outcome recording. It satisfies the dialogue
// interpreter's Recorder interface.
type Recorder struct {
	db *db.DB
}

var (
	recorder     *Recorder
	recorderOnce sync.Once
)

// Init registers the custom collector and initializes the recorder.
// Must be called once at startup.
func Init(database *db.DB) *Recorder {
	recorderOnce.Do(func() {
		recorder = &Recorder{db: database}
		prometheus.MustRegister(&OutcomeCollector{db: database})
	})
	return recorder
}

// Record asynchronously bumps the counter for a query outcome.
func (r *Recorder) Record(outcome string) {
	go func() {
		if err := r.db.IncrementQueryOutcome(context.Background(), outcome); err != nil {
			slog.Error("failed to record query outcome", "outcome", outcome, "error", err)
		}
	}()
}
