// Package scheduler coordinates harvesting tasks that form a two-tier
// dependency graph: independent tasks start right away, dependent tasks start
// once the label they consume has accumulated enough identifiers or its
// producer has finished.
//
// # How It Works
//
// The scheduler runs a single-threaded loop on a fixed tick. Every tick:
//  1. Evaluate triggers: for each label in the accumulator snapshot, the label
//     fires when it holds more than AccumulateThreshold identifiers (strictly
//     greater) or when a producer of that label finished since the last tick.
//     A finish signal is consumed by exactly one evaluation. When a label fires
//     every dependent registered on it is queued, in registration order, with
//     its own copy of the batch, and the label is cleared. Labels without
//     dependents are cleared too, so accumulation never grows unbounded.
//  2. Reap: every running handle is asked whether its goroutine returned.
//     Finished handles raise the finish signal for the label they produced,
//     whether they succeeded or failed.
//  3. Admit: up to MaxRunning minus the running count queued handles start,
//     strictly FIFO. Nothing else limits the queue.
//
// # Lifecycle
//
//	Idle --Start--> Running --Stop--> Draining --> Stopped
//
// Tasks are registered while Idle. Start validates that every consumed label
// has a producer and admits the initial independent tasks through the same
// capped path used on later ticks. Stop cancels the context of every running
// task and returns without waiting; queued tasks never start.
//
// # Relationship with Other Components
//
//   - **labels.Accumulator:** the only state shared with running tasks.
//   - **Runner:** injected execution capability; see internal/driver.
//   - **metrics.Scheduler:** optional prometheus collectors.
package scheduler
