package raft

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestApplyContiguity covers invariant 5: apply indices on one peer form
// the sequence 1,2,3,... with no gaps or repeats.
func TestApplyContiguity(t *testing.T) {
	tc := newTestCluster(t, 3)
	defer tc.shutdown()

	leader := waitForLeader(t, tc, time.Second)
	for i := 0; i < 8; i++ {
		_, _, err := leader.Start([]byte{byte(i)})
		require.NoError(t, err)
	}

	var seen []uint64
	for i := 0; i < 8; i++ {
		select {
		case msg := <-tc.applyChs[0]:
			seen = append(seen, msg.CommandIndex)
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d applies", len(seen))
		}
	}
	for i, idx := range seen {
		require.Equal(t, uint64(i+1), idx)
	}
}
