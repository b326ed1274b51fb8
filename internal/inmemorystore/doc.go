// Package inmemorystore provides a thread-safe, in-memory implementation
// of the nodestore.Store interface. State lives only for the duration of
// one run and is never persisted.
package inmemorystore
