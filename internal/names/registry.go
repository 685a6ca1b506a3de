// Package names assigns filesystem-safe, collision-free output names for
// one batch run.
package names

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/coursekit/roundex/internal/share"
)

const fallback = "conversation"

// Windows-hostile characters plus path separators; anything a workbook
// filename can't carry.
var unsafeRe = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]`)

// Registry is the per-batch name table. It is the only shared mutable state
// in the pipeline, so all access is serialized; callers must allocate in
// input order to keep suffixes deterministic across runs.
type Registry struct {
	mu   sync.Mutex
	used map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{used: make(map[string]bool)}
}

// Allocate derives a name from the display name, falling back to the
// link's share id. Collisions get a " (n)" suffix in allocation order.
func (r *Registry) Allocate(link, displayName string) string {
	base := Sanitize(displayName)
	if base == "" {
		base = Sanitize(share.ID(link))
	}
	if base == "" {
		base = fallback
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := base
	for n := 1; r.used[name]; n++ {
		name = fmt.Sprintf("%s (%d)", base, n)
	}
	r.used[name] = true
	return name
}

// Sanitize strips path separators and other unsafe characters and trims
// leading/trailing dots and spaces.
func Sanitize(raw string) string {
	cleaned := unsafeRe.ReplaceAllString(raw, "_")
	return strings.Trim(cleaned, " .")
}
