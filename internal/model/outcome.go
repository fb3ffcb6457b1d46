package model

// Outcome classes for a processed asset.
const (
	OutcomePass            = "pass"
	OutcomeFail            = "fail"
	OutcomeNoData          = "no_data"
	OutcomeValidationError = "validation_error"
)

// Actor identifies which stage produced the final verdict.
const (
	ActorHeuristic = "heuristic"
	ActorAI        = "ai"
	ActorFallback  = "fallback"
)

// TaskOutcome is the per-asset result accumulated for the run's duration.
// Outcomes live only in the in-memory sink; nothing is persisted.
type TaskOutcome struct {
	AssetID string `json:"asset_id"`
	Name    string `json:"name"`
	Verdict string `json:"verdict"` // pass, fail, no_data, validation_error
	Status  string `json:"status"`  // approve, reject, escalate (decision-chain state)
	Actor   string `json:"actor"`   // heuristic, ai, fallback
	Reason  string `json:"reason"`
	Updated bool   `json:"updated"` // catalog writes were issued (false in dry-run)
}
