package validate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/marketproof/attribution-cli/internal/model"
	"github.com/marketproof/attribution-cli/internal/registry"
)

// fakeCatalog records every write in call order.
type fakeCatalog struct {
	ops       []string
	values    map[string]string
	failPatch bool
}

func (f *fakeCatalog) Search(_ context.Context, _ string, _, _ int) ([]model.AssetRecord, error) {
	return nil, nil
}

func (f *fakeCatalog) Get(_ context.Context, _ string) (*model.AssetRecord, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCatalog) PatchField(_ context.Context, assetID, field, value string) error {
	f.ops = append(f.ops, "PATCH "+field)
	if f.values == nil {
		f.values = make(map[string]string)
	}
	f.values[field] = value
	if f.failPatch {
		return errors.New("catalog unavailable")
	}
	return nil
}

func (f *fakeCatalog) DeleteField(_ context.Context, assetID, field string) error {
	f.ops = append(f.ops, "DELETE "+field)
	return nil
}

func (f *fakeCatalog) PostComment(_ context.Context, baseID, text string) error {
	f.ops = append(f.ops, "COMMENT "+baseID)
	return nil
}

type fakeOracle struct {
	decision *model.AIDecision
	calls    int
}

func (f *fakeOracle) Judge(_ context.Context, _ model.NormalizedRow, _ model.SuspicionResult) *model.AIDecision {
	f.calls++
	return f.decision
}

func testBrands() *registry.Brands {
	return registry.New([]string{"herman miller", "vitra"})
}

func cleanAsset() model.AssetRecord {
	return model.AssetRecord{
		ID:          "ast-1",
		BaseID:      "base-1",
		Name:        "Eames Lounge Chair",
		Description: "A faithful model of the classic lounge chair.",
		Author:      model.Author{ID: "u1", Name: "modelshop3d"},
		Fields: model.AttributionFields{
			Manufacturer: "Herman Miller",
			Designer:     "Charles Eames",
			Year:         "1956",
		},
	}
}

func escalatingAsset() model.AssetRecord {
	a := cleanAsset()
	a.Fields.Manufacturer = "Acme Furniture Co"
	a.Fields.Designer = "John Smith"
	return a
}

func TestValidate_NoAttributionFields(t *testing.T) {
	cat := &fakeCatalog{}
	v := NewValidator(testBrands(), cat)

	asset := cleanAsset()
	asset.Fields = model.AttributionFields{}

	outcome, err := v.Validate(context.Background(), asset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Verdict != model.OutcomeNoData {
		t.Errorf("verdict = %s, want no_data", outcome.Verdict)
	}
	if len(cat.ops) != 0 {
		t.Errorf("no_data must not touch the catalog, got %v", cat.ops)
	}
}

func TestValidate_CleanAssetApproved(t *testing.T) {
	cat := &fakeCatalog{}
	v := NewValidator(testBrands(), cat)

	outcome, err := v.Validate(context.Background(), cleanAsset())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Verdict != model.OutcomePass {
		t.Fatalf("verdict = %s, want pass (%s)", outcome.Verdict, outcome.Reason)
	}
	if outcome.Status != "approve" || outcome.Actor != model.ActorHeuristic {
		t.Errorf("unexpected status/actor: %s/%s", outcome.Status, outcome.Actor)
	}
	if !outcome.Updated {
		t.Error("expected catalog update")
	}

	// Approval patches verdict fields and deletes nothing.
	for _, op := range cat.ops {
		if strings.HasPrefix(op, "DELETE") {
			t.Errorf("approval must not clear fields, got %v", cat.ops)
		}
	}
	if len(cat.ops) != 4 {
		t.Errorf("expected 4 verdict patches, got %v", cat.ops)
	}
}

func TestValidate_StructurallyBrokenRejected(t *testing.T) {
	cat := &fakeCatalog{}
	v := NewValidator(testBrands(), cat)

	asset := cleanAsset()
	asset.Fields = model.AttributionFields{Year: "1956"} // year without manufacturer

	outcome, err := v.Validate(context.Background(), asset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Verdict != model.OutcomeFail {
		t.Fatalf("verdict = %s, want fail", outcome.Verdict)
	}
	if outcome.Status != "reject" {
		t.Errorf("status = %s, want reject", outcome.Status)
	}

	// Family fields are cleared before the verdict is written.
	var lastDelete, firstPatch = -1, -1
	deletes := 0
	for i, op := range cat.ops {
		switch {
		case strings.HasPrefix(op, "DELETE"):
			deletes++
			lastDelete = i
		case strings.HasPrefix(op, "PATCH"):
			if firstPatch < 0 {
				firstPatch = i
			}
		}
	}
	if deletes != len(model.FamilyFieldKeys()) {
		t.Errorf("expected %d field deletions, got %d (%v)", len(model.FamilyFieldKeys()), deletes, cat.ops)
	}
	if firstPatch < lastDelete {
		t.Errorf("verdict patched before fields cleared: %v", cat.ops)
	}
}

func TestValidate_EscalationOracleApproves(t *testing.T) {
	cat := &fakeCatalog{}
	o := &fakeOracle{decision: &model.AIDecision{Valid: true, Reason: "brand confirmed"}}
	v := NewValidator(testBrands(), cat, WithOracle(o))

	outcome, err := v.Validate(context.Background(), escalatingAsset())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.calls != 1 {
		t.Errorf("expected 1 oracle call, got %d", o.calls)
	}
	if outcome.Verdict != model.OutcomePass || outcome.Actor != model.ActorAI {
		t.Errorf("got verdict %s actor %s, want pass/ai", outcome.Verdict, outcome.Actor)
	}
	if outcome.Reason != "brand confirmed" {
		t.Errorf("unexpected reason %q", outcome.Reason)
	}
}

func TestValidate_EscalationOracleRejects(t *testing.T) {
	cat := &fakeCatalog{}
	o := &fakeOracle{decision: &model.AIDecision{Valid: false, Reason: "no such manufacturer"}}
	v := NewValidator(testBrands(), cat, WithOracle(o))

	outcome, err := v.Validate(context.Background(), escalatingAsset())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Verdict != model.OutcomeFail || outcome.Actor != model.ActorAI {
		t.Errorf("got verdict %s actor %s, want fail/ai", outcome.Verdict, outcome.Actor)
	}

	deletes := 0
	for _, op := range cat.ops {
		if strings.HasPrefix(op, "DELETE") {
			deletes++
		}
	}
	if deletes != len(model.FamilyFieldKeys()) {
		t.Errorf("AI rejection must clear family fields, got %v", cat.ops)
	}
}

func TestValidate_EscalationFallbackApproves(t *testing.T) {
	tests := []struct {
		name   string
		oracle *fakeOracle
	}{
		{"oracle disabled", nil},
		{"oracle returned nothing", &fakeOracle{decision: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := &fakeCatalog{}
			opts := []ValidatorOption{}
			if tt.oracle != nil {
				opts = append(opts, WithOracle(tt.oracle))
			}
			v := NewValidator(testBrands(), cat, opts...)

			outcome, err := v.Validate(context.Background(), escalatingAsset())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if outcome.Verdict != model.OutcomePass {
				t.Errorf("verdict = %s, want pass", outcome.Verdict)
			}
			if outcome.Actor != model.ActorFallback {
				t.Errorf("actor = %s, want fallback", outcome.Actor)
			}
			if !strings.HasPrefix(outcome.Reason, "escalation unresolved") {
				t.Errorf("unexpected reason %q", outcome.Reason)
			}
		})
	}
}

func TestValidate_DryRunSkipsWrites(t *testing.T) {
	cat := &fakeCatalog{}
	v := NewValidator(testBrands(), cat, WithDryRun(true))

	asset := cleanAsset()
	asset.Fields = model.AttributionFields{Year: "1956"} // would reject

	outcome, err := v.Validate(context.Background(), asset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Verdict != model.OutcomeFail {
		t.Errorf("dry run must still evaluate, got %s", outcome.Verdict)
	}
	if outcome.Updated {
		t.Error("dry run must report updated=false")
	}
	if len(cat.ops) != 0 {
		t.Errorf("dry run must not touch the catalog, got %v", cat.ops)
	}
}

func TestValidate_WriteFailureDegradesToNotUpdated(t *testing.T) {
	cat := &fakeCatalog{failPatch: true}
	v := NewValidator(testBrands(), cat)

	outcome, err := v.Validate(context.Background(), cleanAsset())
	if err != nil {
		t.Fatalf("write failures must not surface as errors: %v", err)
	}
	if outcome.Verdict != model.OutcomePass {
		t.Errorf("verdict must survive write failures, got %s", outcome.Verdict)
	}
	if outcome.Updated {
		t.Error("expected updated=false after failed patches")
	}
}

func TestValidate_RejectComment(t *testing.T) {
	cat := &fakeCatalog{}
	v := NewValidator(testBrands(), cat, WithComments(true))

	asset := cleanAsset()
	asset.Fields = model.AttributionFields{Year: "1956"}

	if _, err := v.Validate(context.Background(), asset); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var commented bool
	for _, op := range cat.ops {
		if op == "COMMENT base-1" {
			commented = true
		}
	}
	if !commented {
		t.Errorf("expected a review comment on rejection, got %v", cat.ops)
	}
}

func TestValidate_TimestampFromNowFunc(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cat := &fakeCatalog{}
	v := NewValidator(testBrands(), cat, WithNowFunc(func() time.Time { return fixed }))

	if _, err := v.Validate(context.Background(), cleanAsset()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cat.values["validated_at"]; got != "2026-03-01T12:00:00Z" {
		t.Errorf("validated_at = %q, want injected clock in RFC 3339", got)
	}
}
