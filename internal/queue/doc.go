// Package queue defines the Submission record that moves through the
// captioning pipeline and the rules governing its lifecycle.
//
// A Submission is owned by the backend's persistent queue; values of this
// package are transient client-side copies. The package owns the status
// enum and the directed transition table (pending → approved|rejected,
// pending|approved → posted, deletion from any non-posted state), the
// tone catalogue, display metadata for tones and statuses, and the pure
// projection that partitions a queue snapshot into the pending, approved,
// posted, and all views.
//
// Treat this package as the single source of truth for lifecycle semantics;
// the moderation view and the CLI consult it rather than comparing strings.
package queue
