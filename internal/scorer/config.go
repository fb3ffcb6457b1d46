// Package scorer implements deterministic suspicion scoring for asset
// attribution claims. Scoring is pure: no I/O, no logging, and identical
// inputs always produce an identical result.
package scorer

// Similarity thresholds.
const (
	selfClaimStrong  = 0.98
	selfClaimWeak    = 0.80
	mentionThreshold = 0.80
)

// Penalties per rule, per field. Manufacturer claims carry the most weight:
// a fabricated manufacturer is the core fraud signal this engine exists for.
const (
	penaltySelfManufacturer = 40
	penaltySelfDesigner     = 20

	penaltyPlaceholderManufacturer = 35
	penaltyPlaceholderDesigner     = 20
	penaltyPlaceholderCollection   = 15

	penaltyContactManufacturer = 35
	penaltyContactDesigner     = 25
	penaltyContactCollection   = 20

	penaltyImplausibleYear = 40

	knownBrandReduction = 30
	mentionBonus        = 10
)

// Text-quality penalties feed the name/description dimensions, which count
// toward the aggregate but never trip per-field thresholds.
const (
	penaltyTextTooShort = 15
	penaltyTextTooLong  = 10
	penaltyTextSymbols  = 15
	penaltyTextRepeats  = 10
	penaltyTextContact  = 15
	penaltyTextPromo    = 10

	minNameLen        = 3
	maxNameLen        = 120
	minDescriptionLen = 10
	maxDescriptionLen = 600
	maxSymbolRatio    = 0.30
	maxRepeatRun      = 4
)

// Year plausibility window: [minPlausibleYear, currentYear+1].
const minPlausibleYear = 1850

// placeholderValues is the deny-list of generic values that carry no real
// attribution. Matched exactly against normalized field values.
var placeholderValues = map[string]struct{}{
	"none": {}, "n/a": {}, "na": {}, "null": {}, "nil": {}, "-": {},
	"unknown": {}, "test": {}, "testing": {}, "brand": {}, "no brand": {},
	"manufacturer": {}, "designer": {}, "collection": {}, "custom": {},
	"generic": {}, "noname": {}, "no name": {}, "original": {}, "me": {},
	"self": {}, "my brand": {}, "various": {}, "misc": {}, "default": {},
}

// contactTokens mark marketing links or handles inside brand fields.
var contactTokens = []string{
	"http://", "https://", "www.", ".com", ".net", ".io", ".shop",
	"@", "mailto:",
}

// promoKeywords are social calls-to-action that belong on a profile page,
// not in asset metadata.
var promoKeywords = []string{
	"follow us", "follow me", "subscribe", "like and share", "check out my",
	"visit my", "dm me", "discount", "promo code", "coupon", "free download",
	"link in bio", "click here",
}
