// Package moderation implements the operator's view of the submission queue.
//
// A Board holds the latest full snapshot fetched from the backend and its
// partition into the pending, approved, posted, and all views. Moderation
// commands (approve, reject, post, edit, delete) are offered per item status,
// refused locally when unavailable, serialized per item, and followed by a
// full re-fetch on success; a failed command leaves the snapshot untouched.
// Status changes observed between snapshots are checked against the
// lifecycle transition table and illegal ones are recorded as anomalies.
package moderation
