package build

import (
	"slices"
	"sync"
)

// Tracker remembers the identities of the last build that was reported to
// clients and decides whether a new build differs from it.
//
// The zero value is ready to use. Its baseline is the absent identity ("")
// with no children.
type Tracker struct {
	mu           sync.Mutex
	lastIdentity string
	lastChildren []string
}

// HasChanged reports whether o differs from the last committed build: the
// top-level identity differs, or the child identities differ in length or at
// any position.
func (t *Tracker) HasChanged(o *Outcome) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if o.Identity != t.lastIdentity {
		return true
	}
	return !slices.Equal(o.Children, t.lastChildren)
}

// Commit records the identities of o as the last reported build. Both the
// top-level and child identities are replaced together.
func (t *Tracker) Commit(o *Outcome) {
	children := slices.Clone(o.Children)
	if children == nil {
		children = []string{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastIdentity = o.Identity
	t.lastChildren = children
}

// Reset forgets the last reported build so that the next build is always
// treated as changed relative to a fresh baseline.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastIdentity = ""
	t.lastChildren = nil
}

// Last returns the identities of the last reported build.
func (t *Tracker) Last() (identity string, children []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.lastIdentity, slices.Clone(t.lastChildren)
}
