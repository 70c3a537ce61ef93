package classname

import "sync"

// Table counts class name occurrences. Counts only ever grow. It is safe
// for concurrent use.
type Table struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewTable() *Table {
	return &Table{counts: make(map[string]int)}
}

// Record adds one occurrence of name.
func (t *Table) Record(name string) {
	t.mu.Lock()
	t.counts[name]++
	t.mu.Unlock()
}

// Merge adds every count in delta.
func (t *Table) Merge(delta map[string]int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for name, n := range delta {
		if n > 0 {
			t.counts[name] += n
		}
	}
}

func (t *Table) Count(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[name]
}

func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.counts)
}

// Snapshot returns a copy of the counts.
func (t *Table) Snapshot() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]int, len(t.counts))
	for name, n := range t.counts {
		out[name] = n
	}
	return out
}

// CountPaths extracts class names from paths and returns their counts
// without touching any table.
func CountPaths(paths []string) map[string]int {
	counts := make(map[string]int)
	for _, p := range paths {
		if name, ok := Extract(p); ok {
			counts[name]++
		}
	}
	return counts
}
