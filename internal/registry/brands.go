// Package registry holds the whitelist of manufacturer names treated as
// pre-verified. The set is read-only after load and safe for concurrent use.
package registry

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Brands is an immutable set of approved manufacturer names, keyed by
// normalized (lowercased, trimmed) form.
type Brands struct {
	names map[string]struct{}
}

// brandFile is the YAML shape of a registry file.
type brandFile struct {
	Brands []string `yaml:"brands"`
}

// defaultBrands seeds the registry when no file is configured.
var defaultBrands = []string{
	"ikea", "vitra", "herman miller", "knoll", "cassina", "artek",
	"fritz hansen", "hay", "muuto", "kartell", "flos", "artemide",
	"louis poulsen", "string", "thonet", "usm", "fredericia",
	"carl hansen & son", "gubi", "menu", "ligne roset", "b&b italia",
	"poltrona frau", "moroso", "magis", "normann copenhagen", "tom dixon",
	"emeco", "steelcase",
}

// New builds a registry from explicit names.
func New(names []string) *Brands {
	b := &Brands{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = normalize(n)
		if n != "" {
			b.names[n] = struct{}{}
		}
	}
	return b
}

// Default returns the built-in registry.
func Default() *Brands {
	return New(defaultBrands)
}

// LoadFile reads a YAML brand list. Extra names supplement the file; the
// built-in defaults are not included.
func LoadFile(path string, extra ...string) (*Brands, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "registry: read brand file")
	}

	var f brandFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "registry: parse brand file")
	}

	return New(append(f.Brands, extra...)), nil
}

// Load returns the registry for the given path, falling back to the built-in
// defaults when path is empty.
func Load(path string) (*Brands, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Contains reports whether name is an approved brand. The lookup normalizes
// its input, so callers may pass raw or normalized values.
func (b *Brands) Contains(name string) bool {
	_, ok := b.names[normalize(name)]
	return ok
}

// Len returns the number of approved brands.
func (b *Brands) Len() int {
	return len(b.names)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
