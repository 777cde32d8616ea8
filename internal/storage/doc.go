// Package storage provides the key-value capability captiondesk uses for
// client-held state: the bearer token and remembered operator choices.
//
// Values are JSON encoded. SQLiteStore persists across runs in a single
// database file; MemoryStore lives for one process and stands in for session
// storage. Callers depend on the Store interface and receive a concrete store
// from the CLI wiring, never from a package global.
package storage
