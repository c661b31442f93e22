package models

// Query resolution outcomes recorded for metrics.
const (
	OutcomeResolved      = "resolved"
	OutcomeSuggested     = "suggested"
	OutcomeClarification = "clarification"
	OutcomeNoMatch       = "no_match"
	OutcomeHandover      = "handover"
	OutcomeDenied        = "denied"
	OutcomeBlacklisted   = "blacklisted"
)

// QueryOutcome is an aggregated counter of how queries resolved, read by the
// Prometheus collector on each scrape.
type QueryOutcome struct {
	Outcome string `json:"outcome"`
	Count   int64  `json:"count"`
}
