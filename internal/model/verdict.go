package model

// Verdict is the tri-state result of the escalation decision chain.
type Verdict int

const (
	// VerdictApprove means the heuristics found nothing suspicious.
	VerdictApprove Verdict = iota
	// VerdictReject means the claims are confidently fraudulent or malformed.
	VerdictReject
	// VerdictEscalate means the heuristics are inconclusive and the case
	// should be deferred to the reasoning oracle.
	VerdictEscalate
)

func (v Verdict) String() string {
	switch v {
	case VerdictApprove:
		return "approve"
	case VerdictReject:
		return "reject"
	case VerdictEscalate:
		return "escalate"
	default:
		return "unknown"
	}
}

// Decision pairs a Verdict with the reason that produced it.
type Decision struct {
	Verdict Verdict
	Reason  string
}

// SuspicionResult holds per-dimension suspicion scores for one asset.
// Manufacturer, Designer, Collection and Year are clamped to [0,100] after
// all rules run; Name and Description carry unclamped text-quality
// contributions that feed the aggregate but not per-field thresholds.
type SuspicionResult struct {
	Manufacturer int
	Designer     int
	Collection   int
	Year         int
	Name         int
	Description  int

	// Reasons is deduplicated and preserves rule trigger order.
	Reasons []string
}

// Aggregate is the unclamped sum of every dimension.
func (s SuspicionResult) Aggregate() int {
	return s.Manufacturer + s.Designer + s.Collection + s.Year + s.Name + s.Description
}

// MaxField returns the highest of the four clamped field scores.
func (s SuspicionResult) MaxField() int {
	max := s.Manufacturer
	for _, v := range []int{s.Designer, s.Collection, s.Year} {
		if v > max {
			max = v
		}
	}
	return max
}

// AIDecision is the oracle's judgment. Once obtained it is authoritative and
// is never overridden by heuristics.
type AIDecision struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}
