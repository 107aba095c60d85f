// raft/peer.go
package raft

import (
	"sync"
	"time"

	"raftd/metrics"

	"go.uber.org/atomic"
)

// raftPeer is the mutable state a Server owns exclusively. Every field here
// is touched only from the Server's event loop goroutine; nothing outside
// that loop is allowed to read or write it directly. The exceptions are the
// three atomics (currentTermView, isLeaderView, dead), published for the Node
// handle and timers to read lock-free, and lastReceive, which the election
// timer reads under lastReceiveMu.
type raftPeer struct {
	me    int
	peers []Peer

	// Persistent state.
	currentTerm uint64
	votedFor    int // noVote if none
	log         []LogEntry

	// Volatile state, all roles.
	commitIndex uint64
	lastApplied uint64
	role        Role

	// Volatile state, leader only. Indexed by peer index (me's slot is unused).
	nextIndex  []uint64
	matchIndex []uint64

	persister Persister

	lastReceiveMu sync.Mutex
	lastReceive   time.Time

	logger  eventLogger
	metrics *metrics.Raft // nil-safe; every use site checks for nil

	// Published for lock-free reads by Node and the election timer.
	currentTermView atomic.Uint64
	isLeaderView    atomic.Bool
	dead            atomic.Bool
}

func newRaftPeer(peers []Peer, me int, persister Persister, logger eventLogger, m *metrics.Raft) *raftPeer {
	rp := &raftPeer{
		me:        me,
		peers:     peers,
		votedFor:  noVote,
		log:       []LogEntry{{Term: 0, Index: 0}},
		role:      Follower,
		persister: persister,
		logger:    logger,
		metrics:   m,
	}
	rp.nextIndex = make([]uint64, len(peers))
	rp.matchIndex = make([]uint64, len(peers))
	rp.resetLastReceive()

	term, votedFor, log, err := decodePersistentState(persister.ReadRaftState())
	if err != nil {
		panic(err)
	}
	rp.currentTerm = term
	rp.votedFor = votedFor
	rp.log = log
	rp.currentTermView.Store(rp.currentTerm)
	rp.publishMetrics()
	return rp
}

func (rp *raftPeer) lastLogIndex() uint64 {
	return rp.log[len(rp.log)-1].Index
}

func (rp *raftPeer) lastLogTerm() uint64 {
	return rp.log[len(rp.log)-1].Term
}

// termAt returns the term of the entry at index, which must be within
// [0, lastLogIndex()].
func (rp *raftPeer) termAt(index uint64) uint64 {
	return rp.log[index].Term
}

func (rp *raftPeer) persist() {
	rp.persister.SaveRaftState(encodePersistentState(rp.currentTerm, rp.votedFor, rp.log))
}

// stepDownIfStale applies invariant 5: on observing a term strictly greater
// than currentTerm, adopt it, clear the vote, and become Follower before any
// further processing of the triggering message. Returns true if a step-down
// happened.
func (rp *raftPeer) stepDownIfStale(term uint64) bool {
	if term <= rp.currentTerm {
		return false
	}
	old := rp.role
	oldTerm := rp.currentTerm
	rp.currentTerm = term
	rp.votedFor = noVote
	rp.role = Follower
	rp.currentTermView.Store(term)
	rp.isLeaderView.Store(false)
	rp.persist()
	if old != Follower {
		rp.logger.stateChange(old, Follower, term)
	}
	rp.logger.stepDown(oldTerm, term)
	rp.publishMetrics()
	return true
}

func (rp *raftPeer) resetLastReceive() {
	rp.lastReceiveMu.Lock()
	rp.lastReceive = time.Now()
	rp.lastReceiveMu.Unlock()
}

func (rp *raftPeer) getLastReceive() time.Time {
	rp.lastReceiveMu.Lock()
	defer rp.lastReceiveMu.Unlock()
	return rp.lastReceive
}

func (rp *raftPeer) publishMetrics() {
	if rp.metrics == nil {
		return
	}
	rp.metrics.CurrentTerm.Set(float64(rp.currentTerm))
	rp.metrics.Role.Set(float64(rp.role))
	rp.metrics.CommitIndex.Set(float64(rp.commitIndex))
	rp.metrics.LastApplied.Set(float64(rp.lastApplied))
}

// isLogUpToDate implements the §4.2 up-to-date predicate: the candidate's
// log is at least as up-to-date as ours.
func (rp *raftPeer) isLogUpToDate(candidateLastIndex, candidateLastTerm uint64) bool {
	myLastTerm := rp.lastLogTerm()
	if candidateLastTerm != myLastTerm {
		return candidateLastTerm > myLastTerm
	}
	return candidateLastIndex >= rp.lastLogIndex()
}
