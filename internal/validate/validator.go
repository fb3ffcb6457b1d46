// Package validate runs the per-asset validation pipeline and fans it out
// over a batch with bounded concurrency and per-asset fault isolation.
package validate

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/marketproof/attribution-cli/internal/decision"
	"github.com/marketproof/attribution-cli/internal/model"
	"github.com/marketproof/attribution-cli/internal/oracle"
	"github.com/marketproof/attribution-cli/internal/registry"
	"github.com/marketproof/attribution-cli/internal/scorer"
	"github.com/marketproof/attribution-cli/pkg/catalog"
)

// Catalog fields the validator writes verdicts through.
const (
	fieldVerdict     = "validation_verdict"
	fieldValidatedAt = "validated_at"
	fieldReason      = "validation_reason"
	fieldActor       = "validation_actor"

	maxReasonLen = 200
)

// Oracle is the escalation surface the validator depends on. Satisfied by
// *oracle.Client; tests inject fakes.
type Oracle interface {
	Judge(ctx context.Context, row model.NormalizedRow, heuristics model.SuspicionResult) *model.AIDecision
}

var _ Oracle = (*oracle.Client)(nil)

// Validator runs one asset through normalize → decide → (maybe) AI judge →
// final verdict, then issues the catalog side effects.
type Validator struct {
	scorer       *scorer.Scorer
	brands       *registry.Brands
	oracle       Oracle // nil when AI escalation is disabled
	catalog      catalog.Client
	dryRun       bool
	postComments bool
	now          func() time.Time
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithOracle enables AI escalation.
func WithOracle(o Oracle) ValidatorOption {
	return func(v *Validator) {
		v.oracle = o
	}
}

// WithDryRun disables every catalog write.
func WithDryRun(dryRun bool) ValidatorOption {
	return func(v *Validator) {
		v.dryRun = dryRun
	}
}

// WithComments posts an explanatory comment on rejected assets.
func WithComments(enabled bool) ValidatorOption {
	return func(v *Validator) {
		v.postComments = enabled
	}
}

// WithNowFunc sets the timestamp source for testing.
func WithNowFunc(f func() time.Time) ValidatorOption {
	return func(v *Validator) {
		v.now = f
	}
}

// NewValidator creates a Validator against the given registry and catalog.
func NewValidator(brands *registry.Brands, cat catalog.Client, opts ...ValidatorOption) *Validator {
	v := &Validator{
		scorer:  scorer.New(brands),
		brands:  brands,
		catalog: cat,
		now:     time.Now,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Validate runs the full per-asset pipeline and returns the outcome. An
// oracle decision, once obtained, is final: heuristics never override it.
// Catalog write failures degrade to updated=false; they do not change the
// verdict.
func (v *Validator) Validate(ctx context.Context, asset model.AssetRecord) (model.TaskOutcome, error) {
	outcome := model.TaskOutcome{
		AssetID: asset.ID,
		Name:    asset.Name,
	}

	// Assets without any attribution claims carry nothing to audit.
	if asset.Fields.Blank() {
		outcome.Verdict = model.OutcomeNoData
		outcome.Reason = "no attribution fields present"
		return outcome, nil
	}

	row := scorer.Normalize(asset)
	heuristics := v.scorer.Score(row)
	dec := decision.Decide(row, heuristics, v.brands)

	log := zap.L().With(
		zap.String("asset_id", asset.ID),
		zap.String("verdict", dec.Verdict.String()),
		zap.Int("aggregate_score", heuristics.Aggregate()),
	)

	outcome.Status = dec.Verdict.String()
	outcome.Actor = model.ActorHeuristic
	outcome.Reason = dec.Reason

	approved := dec.Verdict == model.VerdictApprove

	if dec.Verdict == model.VerdictEscalate {
		approved, outcome.Actor, outcome.Reason = v.escalate(ctx, row, heuristics, dec)
		outcome.Status = statusOf(approved)
		log.Info("escalation resolved",
			zap.String("actor", outcome.Actor),
			zap.Bool("approved", approved),
		)
	}

	if approved {
		outcome.Verdict = model.OutcomePass
	} else {
		outcome.Verdict = model.OutcomeFail
	}

	outcome.Updated = v.applyEffects(ctx, asset, outcome)
	return outcome, nil
}

// escalate defers to the oracle. When the oracle is disabled or returns no
// decision, the policy deliberately leans toward not penalizing: the asset
// is approved with actor=fallback and an explanatory reason.
func (v *Validator) escalate(ctx context.Context, row model.NormalizedRow, heuristics model.SuspicionResult, dec model.Decision) (approved bool, actor, reason string) {
	if v.oracle != nil {
		if d := v.oracle.Judge(ctx, row, heuristics); d != nil {
			return d.Valid, model.ActorAI, d.Reason
		}
	}

	reason = "escalation unresolved, approving by policy"
	if dec.Reason != "" {
		reason += ": " + dec.Reason
	}
	return true, model.ActorFallback, reason
}

// applyEffects issues the catalog writes for a final verdict. On rejection
// the manufacturer-family fields are cleared before the verdict fields are
// patched. Every call is independently idempotent; a failure is logged and
// reported as updated=false without affecting the verdict.
func (v *Validator) applyEffects(ctx context.Context, asset model.AssetRecord, outcome model.TaskOutcome) bool {
	if v.dryRun {
		return false
	}

	log := zap.L().With(zap.String("asset_id", asset.ID))
	ok := true

	if outcome.Verdict == model.OutcomeFail {
		for _, field := range model.FamilyFieldKeys() {
			if err := v.catalog.DeleteField(ctx, asset.ID, field); err != nil {
				log.Warn("failed to clear attribution field", zap.String("field", field), zap.Error(err))
				ok = false
			}
		}
	}

	patches := map[string]string{
		fieldVerdict:     outcome.Status,
		fieldValidatedAt: v.now().UTC().Format(time.RFC3339),
		fieldActor:       outcome.Actor,
		fieldReason:      truncate(outcome.Reason, maxReasonLen),
	}
	for field, value := range patches {
		if err := v.catalog.PatchField(ctx, asset.ID, field, value); err != nil {
			log.Warn("failed to patch verdict field", zap.String("field", field), zap.Error(err))
			ok = false
		}
	}

	if outcome.Verdict == model.OutcomeFail && v.postComments && asset.BaseID != "" {
		text := "Attribution review: " + truncate(outcome.Reason, maxReasonLen)
		if err := v.catalog.PostComment(ctx, asset.BaseID, text); err != nil {
			log.Warn("failed to post review comment", zap.Error(err))
		}
	}

	return ok
}

func statusOf(approved bool) string {
	if approved {
		return model.VerdictApprove.String()
	}
	return model.VerdictReject.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
