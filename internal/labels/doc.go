// Package labels provides the Label Accumulator: the only piece of mutable
// state shared between running harvesting tasks and the scheduler.
//
// # Purpose
//
// Producing tasks contribute identifiers (one per discovered entity) under the
// label they produce. The scheduler periodically inspects the accumulated sets
// to decide when the tasks that depend on a label should run, and clears a
// label once its batch has been handed to those dependents.
//
// # Characteristics
//
//   - **Set semantics:** Adding the same identifier twice under one label keeps one copy.
//   - **Per-label locking:** Each label owns its own mutex; producers writing to
//     different labels never contend.
//   - **Entries persist:** Clearing a label empties its set but keeps the entry,
//     so a label seen once stays visible in every later snapshot.
//
// # Concurrency Model
//
// Labels are stored in a sync.Map (the key space is small and stable, values
// change constantly), and every identifier set is guarded by its own
// sync.Mutex. Snapshot copies one label at a time, so it is atomic with
// respect to any single Add but may observe a torn view across different
// labels. Triggers are evaluated per label, which makes that acceptable.
//
// Drain is the combined read-and-clear used by the scheduler when a trigger
// fires: identifiers added between a Snapshot and the subsequent clear are
// delivered with the batch instead of being dropped.
package labels
