package scorer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/marketproof/attribution-cli/internal/model"
)

// Length caps applied after cleanup. Attribution fields are short by nature;
// free-text fields get more room so CTA/contact signals survive.
const (
	maxFieldLen = 200
	maxTextLen  = 800
)

// asciiFold decomposes to NFD and strips combining marks, so "Mäkelä"
// compares equal to "makela".
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var valueCleaner = strings.NewReplacer("|", " ", "\n", " ", "\r", " ", "\t", " ")

// Normalize flattens an AssetRecord into the sanitized view that scoring and
// the decision chain operate on. The result is derived data only; the source
// record is never mutated.
func Normalize(asset model.AssetRecord) model.NormalizedRow {
	return model.NormalizedRow{
		model.KeyManufacturer: CleanValue(asset.Fields.Manufacturer, maxFieldLen),
		model.KeyDesigner:     CleanValue(asset.Fields.Designer, maxFieldLen),
		model.KeyCollection:   CleanValue(asset.Fields.Collection, maxFieldLen),
		model.KeyVariant:      CleanValue(asset.Fields.Variant, maxFieldLen),
		model.KeyYear:         CleanValue(asset.Fields.Year, maxFieldLen),
		model.KeyName:         CleanValue(asset.Name, maxTextLen),
		model.KeyDescription:  CleanValue(asset.Description, maxTextLen),
		model.KeyAuthor:       CleanValue(asset.Author.Name, maxFieldLen),
		model.KeyTags:         CleanValue(strings.Join(asset.Tags, " "), maxTextLen),
	}
}

// CleanValue lowercases, ASCII-folds, collapses whitespace, strips pipes and
// newlines, and caps length at max runes.
func CleanValue(s string, max int) string {
	if folded, _, err := transform.String(asciiFold, s); err == nil {
		s = folded
	}
	s = strings.ToLower(valueCleaner.Replace(s))
	s = strings.Join(strings.Fields(s), " ")

	if r := []rune(s); len(r) > max {
		s = strings.TrimSpace(string(r[:max]))
	}
	return s
}
