// raft/util.go
package raft

import (
	"math/rand"
	"time"
)

// randDuration returns a random duration uniform in [lo, hi).
func randDuration(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int63n(int64(hi-lo)))
}
