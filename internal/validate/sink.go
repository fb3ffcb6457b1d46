package validate

import (
	"sync"

	"github.com/google/uuid"

	"github.com/marketproof/attribution-cli/internal/model"
)

// Failure is the stable identity snapshot of a worker that did not complete.
type Failure struct {
	AssetID string `json:"asset_id"`
	Name    string `json:"name"`
	Err     string `json:"error"`
}

// Summary tallies a run's outcomes.
type Summary struct {
	RunID    string `json:"run_id"`
	Pass     int    `json:"pass"`
	Fail     int    `json:"fail"`
	NoData   int    `json:"no_data"`
	Failures int    `json:"failures"`
}

// Sink accumulates outcomes for the run's duration. It is the only mutable
// state shared between workers, guarded by a single mutex; nothing is
// persisted beyond it.
type Sink struct {
	mu       sync.Mutex
	runID    string
	outcomes []model.TaskOutcome
	failures []Failure
}

// NewSink creates an empty sink with a fresh run id.
func NewSink() *Sink {
	return &Sink{runID: uuid.New().String()}
}

// RunID returns the run identifier.
func (s *Sink) RunID() string {
	return s.runID
}

// Record appends a completed outcome.
func (s *Sink) Record(outcome model.TaskOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, outcome)
}

// RecordFailure appends a failed worker's identity snapshot and a matching
// validation_error outcome, so failures appear in the run's outcome list
// alongside completed assets.
func (s *Sink) RecordFailure(assetID, name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, Failure{AssetID: assetID, Name: name, Err: err.Error()})
	s.outcomes = append(s.outcomes, model.TaskOutcome{
		AssetID: assetID,
		Name:    name,
		Verdict: model.OutcomeValidationError,
		Reason:  err.Error(),
	})
}

// Outcomes returns a copy of the recorded outcomes.
func (s *Sink) Outcomes() []model.TaskOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.TaskOutcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}

// Failures returns a copy of the recorded failures.
func (s *Sink) Failures() []Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Failure, len(s.failures))
	copy(out, s.failures)
	return out
}

// Summary tallies outcomes by class.
func (s *Sink) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{RunID: s.runID, Failures: len(s.failures)}
	for _, o := range s.outcomes {
		switch o.Verdict {
		case model.OutcomePass:
			sum.Pass++
		case model.OutcomeFail:
			sum.Fail++
		case model.OutcomeNoData:
			sum.NoData++
		}
	}
	return sum
}
