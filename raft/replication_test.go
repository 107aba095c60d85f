package raft

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitForLeader(t *testing.T, tc *testCluster, timeout time.Duration) *Node {
	t.Helper()
	require.True(t, waitFor(t, timeout, func() bool { return tc.countLeaders() == 1 }))
	return tc.leader()
}

// TestSingleCommand covers S2: a command submitted to the leader is applied
// by every peer at the same index.
func TestSingleCommand(t *testing.T) {
	tc := newTestCluster(t, 3)
	defer tc.shutdown()

	leader := waitForLeader(t, tc, time.Second)
	index, _, err := leader.Start([]byte("x"))
	require.NoError(t, err)
	require.Equal(t, uint64(1), index)

	for _, ch := range tc.applyChs {
		select {
		case msg := <-ch:
			require.True(t, msg.CommandValid)
			require.Equal(t, uint64(1), msg.CommandIndex)
			require.Equal(t, []byte("x"), msg.Command)
		case <-time.After(500 * time.Millisecond):
			t.Fatal("timed out waiting for apply")
		}
	}
}

// TestStartOnFollowerRejected covers §4.8: a non-leader rejects Start with
// ErrNotLeader.
func TestStartOnFollowerRejected(t *testing.T) {
	tc := newTestCluster(t, 3)
	defer tc.shutdown()

	waitForLeader(t, tc, time.Second)
	for _, n := range tc.nodes {
		if n.IsLeader() {
			continue
		}
		_, _, err := n.Start([]byte("y"))
		require.ErrorIs(t, err, ErrNotLeader)
		return
	}
	t.Fatal("no follower found")
}

// TestLogBackfill submits five commands to the leader, spaced across
// several heartbeat rounds, and checks that every peer's log catches up far
// enough to apply all five. No follower is cut off from the leader here.
func TestLogBackfill(t *testing.T) {
	tc := newTestCluster(t, 3)
	defer tc.shutdown()

	leader := waitForLeader(t, tc, time.Second)
	for i := 0; i < 5; i++ {
		_, _, err := leader.Start([]byte{byte(i)})
		require.NoError(t, err)
		time.Sleep(15 * time.Millisecond)
	}

	require.True(t, waitFor(t, time.Second, func() bool {
		for _, n := range tc.nodes {
			if n.rp.lastApplied < 5 {
				return false
			}
		}
		return true
	}))
}

// TestCommitMonotonic covers invariant 4: commitIndex never decreases on
// any single peer while it keeps running.
func TestCommitMonotonic(t *testing.T) {
	tc := newTestCluster(t, 3)
	defer tc.shutdown()

	leader := waitForLeader(t, tc, time.Second)
	last := make([]uint64, len(tc.nodes))
	deadline := time.Now().Add(300 * time.Millisecond)
	i := 0
	for time.Now().Before(deadline) {
		if i < 10 {
			_, _, _ = leader.Start([]byte{byte(i)})
			i++
		}
		for idx, n := range tc.nodes {
			cur := n.rp.commitIndex
			require.GreaterOrEqual(t, cur, last[idx])
			last[idx] = cur
		}
		time.Sleep(5 * time.Millisecond)
	}
}
