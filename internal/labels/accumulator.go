package labels

import (
	"sort"
	"sync"
)

// Label names an accumulation bucket and is the target of a dependency edge.
type Label string

// ID is an opaque identifier contributed to a label by a producing task.
type ID string

// Adder is the write side of the accumulator handed to running tasks.
type Adder interface {
	Add(label Label, id ID)
}

// Accumulator is a concurrency-safe mapping from label to a set of identifiers.
type Accumulator struct {
	sets sync.Map // Key: Label, Value: *idSet
}

type idSet struct {
	mu  sync.Mutex
	ids map[ID]struct{}
}

// New creates an empty accumulator.
func New() *Accumulator {
	return &Accumulator{}
}

func (a *Accumulator) set(label Label) *idSet {
	if s, ok := a.sets.Load(label); ok {
		return s.(*idSet)
	}
	s, _ := a.sets.LoadOrStore(label, &idSet{ids: make(map[ID]struct{})})
	return s.(*idSet)
}

// Add inserts id into the set for label, creating the set on first use.
func (a *Accumulator) Add(label Label, id ID) {
	s := a.set(label)
	s.mu.Lock()
	s.ids[id] = struct{}{}
	s.mu.Unlock()
}

// Snapshot returns a copy of every label's identifiers, sorted per label.
// Labels that were cleared appear with an empty slice.
func (a *Accumulator) Snapshot() map[Label][]ID {
	out := make(map[Label][]ID)
	a.sets.Range(func(k, v any) bool {
		s := v.(*idSet)
		s.mu.Lock()
		out[k.(Label)] = sortedIDs(s.ids)
		s.mu.Unlock()
		return true
	})
	return out
}

// Len returns the number of identifiers currently held under label.
func (a *Accumulator) Len(label Label) int {
	v, ok := a.sets.Load(label)
	if !ok {
		return 0
	}
	s := v.(*idSet)
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Clear empties the set for label, preserving the entry.
func (a *Accumulator) Clear(label Label) {
	v, ok := a.sets.Load(label)
	if !ok {
		return
	}
	s := v.(*idSet)
	s.mu.Lock()
	s.ids = make(map[ID]struct{})
	s.mu.Unlock()
}

// Drain returns the identifiers held under label and clears the set in the
// same critical section.
func (a *Accumulator) Drain(label Label) []ID {
	v, ok := a.sets.Load(label)
	if !ok {
		return nil
	}
	s := v.(*idSet)
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := sortedIDs(s.ids)
	s.ids = make(map[ID]struct{})
	return ids
}

func sortedIDs(set map[ID]struct{}) []ID {
	ids := make([]ID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
