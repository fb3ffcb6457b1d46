package scorer

import (
	"strings"
	"time"
	"unicode"

	"github.com/marketproof/attribution-cli/internal/model"
	"github.com/marketproof/attribution-cli/internal/registry"
)

// Scorer applies the suspicion rules against a read-only brand registry.
type Scorer struct {
	brands *registry.Brands
	now    time.Time // injectable for testing
}

// New creates a Scorer for the given registry.
func New(brands *registry.Brands) *Scorer {
	return &Scorer{brands: brands, now: time.Now()}
}

// WithNow sets a fixed time for testing.
func (s *Scorer) WithNow(t time.Time) *Scorer {
	s.now = t
	return s
}

// ruleRun accumulates scores and reasons while the rules execute.
type ruleRun struct {
	result  model.SuspicionResult
	seen    map[string]struct{}
	reasons []string
}

func (r *ruleRun) reason(msg string) {
	if _, ok := r.seen[msg]; ok {
		return
	}
	r.seen[msg] = struct{}{}
	r.reasons = append(r.reasons, msg)
}

// Score evaluates every suspicion rule against the normalized row. Field
// scores are clamped to [0,100] after all rules; name/description
// contributions stay unclamped and feed only the aggregate.
func (s *Scorer) Score(row model.NormalizedRow) model.SuspicionResult {
	run := &ruleRun{seen: make(map[string]struct{})}

	manufacturer := row.Get(model.KeyManufacturer)
	designer := row.Get(model.KeyDesigner)
	collection := row.Get(model.KeyCollection)
	year := row.Get(model.KeyYear)
	author := row.Get(model.KeyAuthor)
	name := row.Get(model.KeyName)
	description := row.Get(model.KeyDescription)

	// Self-claim: a brand field that is really the uploader's own name.
	if author != "" {
		switch sim := Ratio(manufacturer, author); {
		case sim >= selfClaimStrong:
			run.result.Manufacturer += penaltySelfManufacturer
			run.reason("manufacturer matches author name")
		case sim >= selfClaimWeak:
			run.result.Manufacturer += penaltySelfManufacturer / 2
			run.reason("manufacturer resembles author name")
		}
		switch sim := Ratio(designer, author); {
		case sim >= selfClaimStrong:
			run.result.Designer += penaltySelfDesigner
			run.reason("designer matches author name")
		case sim >= selfClaimWeak:
			run.result.Designer += penaltySelfDesigner / 2
			run.reason("designer resembles author name")
		}
	}

	// Generic placeholder values.
	if isPlaceholder(manufacturer) {
		run.result.Manufacturer += penaltyPlaceholderManufacturer
		run.reason("manufacturer is a placeholder value")
	}
	if isPlaceholder(designer) {
		run.result.Designer += penaltyPlaceholderDesigner
		run.reason("designer is a placeholder value")
	}
	if isPlaceholder(collection) {
		run.result.Collection += penaltyPlaceholderCollection
		run.reason("collection is a placeholder value")
	}

	// Contact tokens: brand fields should never carry links or handles.
	if hasContactToken(manufacturer) {
		run.result.Manufacturer += penaltyContactManufacturer
		run.reason("contact details in manufacturer field")
	}
	if hasContactToken(designer) {
		run.result.Designer += penaltyContactDesigner
		run.reason("contact details in designer field")
	}
	if hasContactToken(collection) {
		run.result.Collection += penaltyContactCollection
		run.reason("contact details in collection field")
	}

	// Year plausibility.
	if year != "" {
		if y, ok := extractYear(year); !ok || y < minPlausibleYear || y > s.now.Year()+1 {
			run.result.Year += penaltyImplausibleYear
			run.reason("implausible production year")
		}
	}

	// Known-brand reduction: a registry manufacturer is pre-verified.
	if manufacturer != "" && s.brands.Contains(manufacturer) {
		run.result.Manufacturer -= knownBrandReduction
	}

	// Mention bonus: an asset that openly names its manufacturer or
	// collection in its own text is less suspicious about that field.
	text := name + " " + description
	if manufacturer != "" && Mentions(text, manufacturer, mentionThreshold) {
		run.result.Manufacturer -= mentionBonus
	}
	if collection != "" && Mentions(text, collection, mentionThreshold) {
		run.result.Collection -= mentionBonus
	}

	// Text quality.
	run.result.Name += scoreText(run, "name", name, minNameLen, maxNameLen)
	run.result.Description += scoreText(run, "description", description, minDescriptionLen, maxDescriptionLen)

	run.result.Manufacturer = clamp(run.result.Manufacturer)
	run.result.Designer = clamp(run.result.Designer)
	run.result.Collection = clamp(run.result.Collection)
	run.result.Year = clamp(run.result.Year)
	run.result.Reasons = run.reasons

	return run.result
}

// scoreText applies the independent text-quality penalties for one free-text
// field and returns the total contribution.
func scoreText(run *ruleRun, field, value string, minLen, maxLen int) int {
	if value == "" {
		run.reason(field + " is empty")
		return penaltyTextTooShort
	}

	total := 0
	n := len([]rune(value))

	if n < minLen {
		total += penaltyTextTooShort
		run.reason(field + " too short")
	}
	if n > maxLen {
		total += penaltyTextTooLong
		run.reason(field + " too long")
	}
	if symbolRatio(value) > maxSymbolRatio {
		total += penaltyTextSymbols
		run.reason(field + " has excessive symbols")
	}
	if longestRun(value) > maxRepeatRun {
		total += penaltyTextRepeats
		run.reason(field + " has repeated character runs")
	}
	if hasContactToken(value) {
		total += penaltyTextContact
		run.reason("contact details in " + field)
	}
	if hasPromoKeyword(value) {
		total += penaltyTextPromo
		run.reason("promotional call-to-action in " + field)
	}
	return total
}

func isPlaceholder(value string) bool {
	if value == "" {
		return false
	}
	_, ok := placeholderValues[value]
	return ok
}

func hasContactToken(value string) bool {
	for _, tok := range contactTokens {
		if strings.Contains(value, tok) {
			return true
		}
	}
	return false
}

func hasPromoKeyword(value string) bool {
	for _, kw := range promoKeywords {
		if strings.Contains(value, kw) {
			return true
		}
	}
	return false
}

// extractYear pulls the first 4-digit run out of a free-form year value
// ("c. 1956", "1970s"). Returns false when no 4-digit run exists.
func extractYear(value string) (int, bool) {
	digits := 0
	year := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			year = year*10 + int(r-'0')
			digits++
			if digits == 4 {
				return year, true
			}
			continue
		}
		digits = 0
		year = 0
	}
	return 0, false
}

// symbolRatio is the fraction of runes that are neither letters, digits nor
// spaces.
func symbolRatio(value string) float64 {
	total, symbols := 0, 0
	for _, r := range value {
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			symbols++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(symbols) / float64(total)
}

// longestRun returns the length of the longest run of one repeated rune.
func longestRun(value string) int {
	var prev rune
	run, longest := 0, 0
	for _, r := range value {
		if r == prev {
			run++
		} else {
			run = 1
			prev = r
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
