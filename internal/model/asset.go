package model

import "strings"

// AssetRecord is a marketplace asset as returned by the catalog search API.
// Records are immutable once fetched; validation never mutates them.
type AssetRecord struct {
	ID                 string            `json:"id"`
	BaseID             string            `json:"base_id"`
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	Tags               []string          `json:"tags"`
	CreatedDate        string            `json:"created_date"`
	Author             Author            `json:"author"`
	VerificationStatus string            `json:"verification_status"`
	Fields             AttributionFields `json:"fields"`
}

// Author identifies the uploading account.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AttributionFields are the provenance claims under audit.
type AttributionFields struct {
	Manufacturer string `json:"manufacturer"`
	Designer     string `json:"designer"`
	Collection   string `json:"collection"`
	Variant      string `json:"variant"`
	Year         string `json:"year"`
}

// Blank reports whether every attribution field is empty or whitespace.
func (f AttributionFields) Blank() bool {
	for _, v := range []string{f.Manufacturer, f.Designer, f.Collection, f.Variant, f.Year} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// FamilyFieldKeys lists the catalog field names cleared together on a
// definitive rejection.
func FamilyFieldKeys() []string {
	return []string{"manufacturer", "designer", "collection", "variant", "year"}
}

// Keys into a NormalizedRow.
const (
	KeyManufacturer = "manufacturer"
	KeyDesigner     = "designer"
	KeyCollection   = "collection"
	KeyVariant      = "variant"
	KeyYear         = "year"
	KeyName         = "name"
	KeyDescription  = "description"
	KeyAuthor       = "author"
	KeyTags         = "tags"
)

// NormalizedRow is the flattened, sanitized string view of an AssetRecord
// that all scoring and decision logic operates on. Values are lowercased,
// ASCII-folded, whitespace-collapsed and length-capped.
type NormalizedRow map[string]string

// Get returns the value for key, or "" when absent.
func (r NormalizedRow) Get(key string) string {
	return r[key]
}
