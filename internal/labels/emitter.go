package labels

import "sync/atomic"

// Emitter binds a task to the label it produces. Drivers only ever see an
// Emitter, never the accumulator itself.
type Emitter struct {
	acc   Adder
	label Label
	count atomic.Int64
}

// NewEmitter returns an Emitter writing into label on acc.
func NewEmitter(acc Adder, label Label) *Emitter {
	return &Emitter{acc: acc, label: label}
}

// Emit contributes one identifier. Empty identifiers are ignored.
func (e *Emitter) Emit(id ID) {
	if id == "" {
		return
	}
	e.acc.Add(e.label, id)
	e.count.Add(1)
}

// Label returns the label this emitter writes to.
func (e *Emitter) Label() Label {
	return e.label
}

// Emitted reports how many identifiers were emitted, duplicates included.
func (e *Emitter) Emitted() int64 {
	return e.count.Load()
}
