// Package executor implements a cooperative, strand-based GraphQL executor:
// field collection, single-threaded coroutine scheduling interleaved with
// external asynchrony, and type-directed value completion with non-null
// propagation.
//
// # Overview
//
// Execution is organized around three subsystems:
//
//   - Collector: resolves the operation against the schema and walks
//     selection sets, fragment spreads, inline fragments and @include/@skip
//     directives, emitting one callback per logical field of a concrete
//     object type, deduplicated by response key in source order.
//   - Strand scheduler: a FIFO queue of coroutine frames ("strands"). A
//     strand suspends only when completion encounters a thenable — a value
//     the configured promise adapter recognizes as asynchronous. Settled
//     thenables re-enqueue their strand; the drain finishes when the queue,
//     the pending counter, and the mutation schedule are all empty.
//   - Completer: completes a resolved value against its declared type:
//     Non-Null peeling, thenable await, null handling, leaf serialization,
//     list iteration with indexed paths, abstract-type resolution, and
//     recursive descent into composite types via the Collector.
//
// # Execution model
//
// A request enters Execute; the Collector emits root fields, each becoming a
// strand. A strand resolves its field and completes the value. Completing a
// composite value builds a fresh result map, prefills one null per child key
// in collector order — fixing response key order — and spawns child strands.
// Plain leaf children bypass the scheduler entirely and complete inline.
//
// For mutations, only the first root field is queued; the rest wait in a
// secondary schedule and start one at a time, each only after the previous
// root field and everything it spawned — including all of its thenables —
// has finished. Within one root field, execution is as concurrent as for
// queries.
//
// # SharedState
//
// Sibling fields produced by the same logical field group share a memo
// table: field definition, chosen resolver, coerced arguments, prototype
// ResolveInfo, the merged child selection set, and the child context
// templates per concrete object type. The first time a group completes an
// object of some concrete type, the Collector runs and the resulting child
// contexts are captured; every later sibling of that type clones the
// templates instead of re-collecting. This keeps per-element work on long
// lists down to context cloning and preserves key order across elements.
//
// # Non-null propagation
//
// Completion threads a null fence — the path of the nearest enclosing
// nullable ancestor — through the descent. When a Non-Null position
// completes to null, an error is recorded and null is written at the fence,
// overwriting any partial descendants; the fence's prefix is tombstoned so
// strands still running under it discard their writes. At the root the
// entire response data becomes null. The violation travels upward as a
// sentinel distinct from null so enclosing list and object completions
// strike their own writes without re-propagating.
//
// # Errors and partial success
//
// Errors are located (message, path, source locations) and appended in
// report order. A failing field nulls itself or propagates to its fence;
// peers keep running. Only operation selection and variable coercion
// failures prevent execution entirely, returning errors without a data key.
// The executor never panics across Execute: resolver panics are recovered
// and recorded as field errors.
package executor
