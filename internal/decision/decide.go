// Package decision turns suspicion scores and registry membership into an
// approve/reject/escalate verdict through a fixed-order rule chain.
package decision

import (
	"strings"

	"github.com/marketproof/attribution-cli/internal/model"
	"github.com/marketproof/attribution-cli/internal/registry"
	"github.com/marketproof/attribution-cli/internal/scorer"
)

// Thresholds for the score-based rules. The two reject thresholds are
// independent: one severely bad field rejects outright even when the
// aggregate is otherwise clean.
const (
	rejectAggregate = 65
	rejectField     = 55
	approveCeiling  = 15

	sameBrandSimilarity = 0.7

	maxRejectReasons = 4
)

// Decide evaluates the rule chain in fixed order; the first matching rule
// wins. The ordering is itself a contract, not a tie-break: an unverified
// brand claim escalates before score thresholds are consulted.
func Decide(row model.NormalizedRow, heuristics model.SuspicionResult, brands *registry.Brands) model.Decision {
	manufacturer := row.Get(model.KeyManufacturer)
	designer := row.Get(model.KeyDesigner)

	// 1. A year, collection or variant claim without a manufacturer is
	// structurally broken metadata.
	if manufacturer == "" && hasDependentField(row) {
		return model.Decision{
			Verdict: model.VerdictReject,
			Reason:  "manufacturer missing with dependent field",
		}
	}

	// 2. Manufacturer and designer collapsing into the same unverified name
	// is likely one person filed under two fields.
	if manufacturer != "" && !brands.Contains(manufacturer) &&
		scorer.Ratio(manufacturer, designer) >= sameBrandSimilarity {
		return model.Decision{
			Verdict: model.VerdictEscalate,
			Reason:  "manufacturer and designer appear to be the same unverified name",
		}
	}

	// 3. Any brand claim outside the registry needs external judgment.
	if manufacturer != "" && !brands.Contains(manufacturer) {
		return model.Decision{
			Verdict: model.VerdictEscalate,
			Reason:  "unverified brand claim",
		}
	}

	// 4. Score thresholds.
	if heuristics.Aggregate() >= rejectAggregate || heuristics.MaxField() >= rejectField {
		return model.Decision{
			Verdict: model.VerdictReject,
			Reason:  rejectReason(heuristics.Reasons),
		}
	}

	// 5. Clean enough to approve without help.
	if heuristics.Aggregate() <= approveCeiling {
		return model.Decision{Verdict: model.VerdictApprove}
	}

	// 6. Inconclusive.
	return model.Decision{Verdict: model.VerdictEscalate}
}

func hasDependentField(row model.NormalizedRow) bool {
	return row.Get(model.KeyYear) != "" ||
		row.Get(model.KeyCollection) != "" ||
		row.Get(model.KeyVariant) != ""
}

// rejectReason joins the first triggered reasons. Reasons arrive already
// deduplicated in trigger order from the scorer.
func rejectReason(reasons []string) string {
	if len(reasons) == 0 {
		return "suspicion score over threshold"
	}
	if len(reasons) > maxRejectReasons {
		reasons = reasons[:maxRejectReasons]
	}
	return strings.Join(reasons, "; ")
}
