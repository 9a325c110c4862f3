package assets

import (
	"sort"
	"sync"
)

// Table maps a kind to the assets resolved under that kind, keyed by name.
// Names are unique within a kind.
type Table struct {
	mu      sync.RWMutex
	entries map[Kind]map[string]interface{}
}

func NewTable() *Table {
	t := &Table{
		entries: make(map[Kind]map[string]interface{}, len(Kinds)),
	}
	for _, k := range Kinds {
		t.entries[k] = make(map[string]interface{})
	}
	return t
}

// Insert stores asset under name, incrementing the name until it is unique
// within kind. It returns the name actually used.
func (t *Table) Insert(kind Kind, name string, asset interface{}) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	bucket, ok := t.entries[kind]
	if !ok {
		bucket = make(map[string]interface{})
		t.entries[kind] = bucket
	}
	for {
		if _, taken := bucket[name]; !taken {
			break
		}
		name = IncrementString(name)
	}
	bucket[name] = asset
	return name
}

// Replace swaps the asset stored under name and returns the previous one.
func (t *Table) Replace(kind Kind, name string, asset interface{}) (interface{}, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bucket, ok := t.entries[kind]
	if !ok {
		return nil, false
	}
	old, ok := bucket[name]
	if !ok {
		return nil, false
	}
	bucket[name] = asset
	return old, true
}

func (t *Table) Get(kind Kind, name string) (interface{}, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.entries[kind][name]
	return a, ok
}

// Names returns the names stored under kind, sorted.
func (t *Table) Names(kind Kind) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.entries[kind]))
	for n := range t.entries[kind] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (t *Table) Len(kind Kind) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries[kind])
}

// Snapshot returns a shallow copy of the whole table.
func (t *Table) Snapshot() map[Kind]map[string]interface{} {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[Kind]map[string]interface{}, len(t.entries))
	for k, bucket := range t.entries {
		cp := make(map[string]interface{}, len(bucket))
		for n, a := range bucket {
			cp[n] = a
		}
		out[k] = cp
	}
	return out
}

// Lookup returns the asset under kind/name typed as T.
func Lookup[T any](t *Table, kind Kind, name string) (T, bool) {
	var zero T
	a, ok := t.Get(kind, name)
	if !ok {
		return zero, false
	}
	v, ok := a.(T)
	return v, ok
}
