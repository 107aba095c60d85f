// Package statemachine provides a minimal application that consumes
// raft.ApplyMsg and keeps an ordered, in-memory record of every committed
// command. It exists only to exercise Node.Start and the apply channel
// end-to-end in the cmd/raftd demo binary — it has no storage
// engine, no key/value semantics, and no client wire protocol, unlike the
// full key/value store this module's Raft layer was originally paired
// with.
package statemachine

import (
	"sync"

	"raftd/raft"
)

// Entry is one applied command, in commit order.
type Entry struct {
	Index   uint64
	Command []byte
}

// Log is a trivial state machine: it appends every applied command to an
// in-memory slice, keyed by apply index.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
}

// New returns an empty Log.
func New() *Log {
	return &Log{}
}

// Run consumes applyCh until it is closed, appending every valid message.
// It is meant to run in its own goroutine for the lifetime of a Node.
func (l *Log) Run(applyCh <-chan raft.ApplyMsg) {
	for msg := range applyCh {
		if !msg.CommandValid {
			continue
		}
		l.mu.Lock()
		l.entries = append(l.entries, Entry{Index: msg.CommandIndex, Command: msg.Command})
		l.mu.Unlock()
	}
}

// Entries returns a snapshot of every command applied so far, in order.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Entry(nil), l.entries...)
}

// Len reports how many commands have been applied.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
