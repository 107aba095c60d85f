package raft

import (
	"testing"
	"time"

	"go.uber.org/goleak"
)

// TestMain verifies that once every test's Nodes are killed and waited on,
// no election/apply/heartbeat goroutine or outbound-RPC goroutine is left
// running.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// Goroutines parked in a network poll wait are not counted as
		// leaks. This applies to this package's tests only, none of which
		// dial real network connections.
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func TestKillWaitNoLeaks(t *testing.T) {
	tc := newTestCluster(t, 3)
	waitForLeader(t, tc, time.Second)
	tc.shutdown()
}
