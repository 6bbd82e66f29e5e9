package analytics

import (
	"sync"

	"lead-insights/internal/leads"
)

// Memo caches one Result per source, keyed by snapshot version.
// Callers must treat returned slices as read-only; they are shared between hits.
type Memo struct {
	mu      sync.Mutex
	opts    Options
	entries map[string]memoEntry
}

type memoEntry struct {
	version uint64
	result  Result
}

// NewMemo creates an empty memo that aggregates with opts.
func NewMemo(opts Options) *Memo {
	return &Memo{
		opts:    opts,
		entries: make(map[string]memoEntry),
	}
}

// Get returns the cached Result for (source, version) or aggregates ls and stores it.
// The boolean reports a cache hit.
func (m *Memo) Get(source string, version uint64, ls []leads.Lead) (Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[source]; ok && e.version == version {
		return e.result, true
	}

	res := Aggregate(ls, m.opts)
	m.entries[source] = memoEntry{version: version, result: res}
	return res, false
}

// Invalidate drops the cached Result for source.
func (m *Memo) Invalidate(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, source)
}
