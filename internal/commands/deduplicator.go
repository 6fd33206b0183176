package commands

// Deduplicator remembers canonical file identities for the lifetime of a Processor.
type Deduplicator struct {
	seen map[string]struct{}
}

// NewDeduplicator returns an empty Deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// Seen reports whether canonicalIdentity was already admitted.
func (deduplicator *Deduplicator) Seen(canonicalIdentity string) bool {
	_, found := deduplicator.seen[canonicalIdentity]
	return found
}

// Admit records canonicalIdentity and returns true the first time it is offered, false afterwards.
func (deduplicator *Deduplicator) Admit(canonicalIdentity string) bool {
	if deduplicator.Seen(canonicalIdentity) {
		return false
	}
	deduplicator.seen[canonicalIdentity] = struct{}{}
	return true
}

// Len returns the number of admitted identities.
func (deduplicator *Deduplicator) Len() int {
	return len(deduplicator.seen)
}
