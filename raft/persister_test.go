package raft

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryPersisterRoundTrip(t *testing.T) {
	p := NewMemoryPersister()
	require.Empty(t, p.ReadRaftState())

	blob := encodePersistentState(3, 1, []LogEntry{{Term: 0, Index: 0}, {Term: 2, Index: 1, Command: []byte("a")}})
	p.SaveRaftState(blob)
	require.Equal(t, len(blob), p.RaftStateSize())

	term, votedFor, log, err := decodePersistentState(p.ReadRaftState())
	require.NoError(t, err)
	require.Equal(t, uint64(3), term)
	require.Equal(t, 1, votedFor)
	require.Len(t, log, 2)
	require.Equal(t, []byte("a"), log[1].Command)
}

// TestPersistAndRecover covers S6 at the persister layer: a peer that
// restarts from a saved blob resumes with the same term/vote/log rather
// than a blank slate.
func TestPersistAndRecover(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.gob")

	p1 := NewFilePersister(path)
	blob := encodePersistentState(5, 2, []LogEntry{
		{Term: 0, Index: 0},
		{Term: 1, Index: 1, Command: []byte("x")},
		{Term: 1, Index: 2, Command: []byte("y")},
	})
	p1.SaveRaftState(blob)

	p2 := NewFilePersister(path)
	term, votedFor, log, err := decodePersistentState(p2.ReadRaftState())
	require.NoError(t, err)
	require.Equal(t, uint64(5), term)
	require.Equal(t, 2, votedFor)
	require.Len(t, log, 3)
}

func TestDecodeEmptyStateIsFreshPeer(t *testing.T) {
	term, votedFor, log, err := decodePersistentState(nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0), term)
	require.Equal(t, noVote, votedFor)
	require.Len(t, log, 1)
}
