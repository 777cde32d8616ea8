// Package workflow drives one submission from input capture to a reviewed
// result.
//
// A Workflow moves through idle, composing, ready, processing, and result.
// Text or an audio blob is attached while composing; Submit validates the
// input, sends it with the selected tone, and records an explicit Outcome
// that separates complete responses from ones the backend left incomplete.
// Exactly one submission may be in flight per Workflow, and each logical
// submission carries a stable idempotency key so a retry of the same input
// can be recognized by the backend. A failed submit returns to ready with
// the input kept; Clear discards everything.
package workflow
