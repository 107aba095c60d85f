package raft

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestConflictTruncation covers S5 directly against a single peer: a
// follower carrying uncommitted, stale-term entries at indices 5-7 must
// truncate and adopt a new leader's entries at those indices without
// regressing commitIndex.
func TestConflictTruncation(t *testing.T) {
	node := Make([]Peer{nil}, 0, NewMemoryPersister(), make(chan ApplyMsg, 16),
		WithElectionTimeout(time.Hour, 2*time.Hour),
		WithHeartbeatInterval(time.Hour),
		WithApplyInterval(time.Hour),
	)
	defer func() {
		node.Kill()
		node.Wait()
	}()

	// Seed a log with a stale-term tail at indices 5-7 and commitIndex=4,
	// as if entries 1-4 were already committed under an earlier leader.
	seed := []LogEntry{
		{Term: 0, Index: 0},
		{Term: 1, Index: 1, Command: []byte("a")},
		{Term: 1, Index: 2, Command: []byte("b")},
		{Term: 1, Index: 3, Command: []byte("c")},
		{Term: 1, Index: 4, Command: []byte("d")},
		{Term: 1, Index: 5, Command: []byte("stale-e")},
		{Term: 1, Index: 6, Command: []byte("stale-f")},
		{Term: 1, Index: 7, Command: []byte("stale-g")},
	}
	node.rp.log = seed
	node.rp.commitIndex = 4

	// A new leader at term 2 sends entries 5-7 with a different term.
	newEntries := []LogEntry{
		{Term: 2, Index: 5, Command: []byte("new-e")},
		{Term: 2, Index: 6, Command: []byte("new-f")},
		{Term: 2, Index: 7, Command: []byte("new-g")},
	}
	reply, err := node.AppendLogs(&AppendLogsArgs{
		Term:         2,
		LeaderID:     1,
		PrevLogIndex: 4,
		PrevLogTerm:  1,
		Entries:      newEntries,
		LeaderCommit: 4,
	})
	require.NoError(t, err)
	require.True(t, reply.Success)

	require.Equal(t, uint64(4), node.rp.commitIndex)
	require.Len(t, node.rp.log, 8)
	require.Equal(t, []byte("new-e"), node.rp.log[5].Command)
	require.Equal(t, uint64(2), node.rp.log[5].Term)
	require.Equal(t, []byte("new-f"), node.rp.log[6].Command)
	require.Equal(t, []byte("new-g"), node.rp.log[7].Command)
}
