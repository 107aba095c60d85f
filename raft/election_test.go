// raft/election_test.go
package raft

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// localPeer implements Peer by calling directly into another in-process
// Node, skipping the network entirely. Tests build a cluster of Nodes
// wired together with localPeers so the election/replication protocol can
// be exercised deterministically without transport/grpc.
type localPeer struct {
	node *Node
}

func (p *localPeer) RequestVote(ctx context.Context, args *RequestVoteArgs) (*RequestVoteReply, error) {
	return p.node.RequestVote(args)
}

func (p *localPeer) AppendLogs(ctx context.Context, args *AppendLogsArgs) (*AppendLogsReply, error) {
	return p.node.AppendLogs(args)
}

// testCluster wires n peers together in-process with fast timers, suitable
// for sub-second tests.
type testCluster struct {
	nodes    []*Node
	applyChs []chan ApplyMsg
}

func newTestCluster(t *testing.T, n int) *testCluster {
	t.Helper()
	tc := &testCluster{
		nodes:    make([]*Node, n),
		applyChs: make([]chan ApplyMsg, n),
	}

	peerSlots := make([]Peer, n)
	for i := 0; i < n; i++ {
		tc.applyChs[i] = make(chan ApplyMsg, 256)
	}
	for i := 0; i < n; i++ {
		node := Make(peerSlots, i, NewMemoryPersister(), tc.applyChs[i],
			WithElectionTimeout(30*time.Millisecond, 60*time.Millisecond),
			WithHeartbeatInterval(10*time.Millisecond),
			WithApplyInterval(5*time.Millisecond),
			WithRPCTimeout(20*time.Millisecond),
		)
		tc.nodes[i] = node
		peerSlots[i] = &localPeer{node: node}
	}
	return tc
}

func (tc *testCluster) shutdown() {
	for _, n := range tc.nodes {
		n.Kill()
	}
	for _, n := range tc.nodes {
		n.Wait()
	}
}

func (tc *testCluster) countLeaders() int {
	count := 0
	for _, n := range tc.nodes {
		if n.IsLeader() {
			count++
		}
	}
	return count
}

func (tc *testCluster) leader() *Node {
	for _, n := range tc.nodes {
		if n.IsLeader() {
			return n
		}
	}
	return nil
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

// TestInitialState covers S0: a freshly made peer starts as Follower with
// term 0 and is not leader.
func TestInitialState(t *testing.T) {
	tc := newTestCluster(t, 1)
	defer tc.shutdown()

	term, isLeader := tc.nodes[0].GetState()
	require.Equal(t, uint64(0), term)
	require.False(t, isLeader)
}

// TestSingleNodeElection covers the degenerate one-peer cluster: it must
// elect itself leader since a majority of one is itself.
func TestSingleNodeElection(t *testing.T) {
	tc := newTestCluster(t, 1)
	defer tc.shutdown()

	require.True(t, waitFor(t, time.Second, func() bool { return tc.nodes[0].IsLeader() }))
}

// TestBasicElection covers S1: within a bounded window, a 3-peer cluster
// converges on exactly one leader with term >= 1.
func TestBasicElection(t *testing.T) {
	tc := newTestCluster(t, 3)
	defer tc.shutdown()

	require.True(t, waitFor(t, time.Second, func() bool { return tc.countLeaders() == 1 }))
	require.Equal(t, 1, tc.countLeaders())

	leader := tc.leader()
	require.NotNil(t, leader)
	term, _ := leader.GetState()
	require.GreaterOrEqual(t, term, uint64(1))
}

// TestReElection covers S3: killing the leader causes a new one to emerge
// with a strictly higher term.
func TestReElection(t *testing.T) {
	tc := newTestCluster(t, 3)
	defer tc.shutdown()

	require.True(t, waitFor(t, time.Second, func() bool { return tc.countLeaders() == 1 }))
	oldLeader := tc.leader()
	oldTerm, _ := oldLeader.GetState()
	oldLeader.Kill()

	require.True(t, waitFor(t, time.Second, func() bool {
		for _, n := range tc.nodes {
			if n != oldLeader && n.IsLeader() {
				return true
			}
		}
		return false
	}))

	var newTerm uint64
	for _, n := range tc.nodes {
		if n != oldLeader && n.IsLeader() {
			newTerm, _ = n.GetState()
		}
	}
	require.Greater(t, newTerm, oldTerm)
}

// TestElectionSafety covers invariant 1: at no point does more than one
// peer in the same term believe itself leader.
func TestElectionSafety(t *testing.T) {
	tc := newTestCluster(t, 5)
	defer tc.shutdown()

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		require.LessOrEqual(t, tc.countLeaders(), 1)
		time.Sleep(5 * time.Millisecond)
	}
}
