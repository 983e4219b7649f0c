// Package sites resolves account identifiers to managed-property site codes.
package sites

import (
	_ "embed"
	"sync"

	"gopkg.in/yaml.v3"
)

// Unknown is the sentinel code for accounts outside the roster.
const Unknown = "Unknown"

//go:embed sites.yml
var rosterFile []byte

// Resolver maps accounts to site codes. Lookups are exact and
// case-sensitive; anything off the roster resolves to Unknown.
type Resolver struct {
	codes map[string]string
}

// NewResolver builds a resolver over the given account to site-code table.
func NewResolver(codes map[string]string) *Resolver {
	table := make(map[string]string, len(codes))
	for account, code := range codes {
		table[account] = code
	}
	return &Resolver{codes: table}
}

var (
	defaultResolver *Resolver
	once            sync.Once
)

// Default returns the resolver built from the embedded roster.
func Default() *Resolver {
	once.Do(func() {
		var codes map[string]string
		if err := yaml.Unmarshal(rosterFile, &codes); err != nil {
			codes = map[string]string{}
		}
		defaultResolver = NewResolver(codes)
	})
	return defaultResolver
}

// Resolve returns the site code for an account, Unknown on a miss.
func (r *Resolver) Resolve(account string) string {
	if code, ok := r.codes[account]; ok {
		return code
	}
	return Unknown
}

// Size returns the number of roster entries.
func (r *Resolver) Size() int {
	return len(r.codes)
}
