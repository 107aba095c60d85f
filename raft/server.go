package raft

import (
	"context"
	"sync"
)

// Server is the single owner and sole mutator of a raftPeer. It consumes
// actions from one channel, in order, running each to completion before the
// next is dequeued — this serialization is what lets the rest of the
// package touch raftPeer without any locking of its own.
type Server struct {
	rp      *raftPeer
	actions chan action
	applyCh chan<- ApplyMsg

	cfg config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newServer(rp *raftPeer, applyCh chan<- ApplyMsg, cfg config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		rp:      rp,
		actions: make(chan action, cfg.actionBufferSize),
		applyCh: applyCh,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *Server) start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run()
	}()

	s.wg.Add(3)
	go func() { defer s.wg.Done(); s.electionTimerLoop() }()
	go func() { defer s.wg.Done(); s.applyTimerLoop() }()
	go func() { defer s.wg.Done(); s.heartbeatTimerLoop() }()
}

// stop marks the peer dead and cancels every cooperative goroutine. It does
// not wait for them to exit; callers that need that (tests asserting no
// goroutine leaks) should call wait() afterward.
func (s *Server) stop() {
	s.rp.dead.Store(true)
	s.cancel()
}

func (s *Server) wait() {
	s.wg.Wait()
}

// run is the event loop: dequeue one action, dispatch it to completion,
// repeat. It never suspends mid-mutation; the only await in this package
// that can overlap with further action processing is the election
// goroutine's vote collection, which runs off this loop entirely (see
// electionWorker) and reports back via becomeLeaderAction /
// higherTermObservedAction.
func (s *Server) run() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case a := <-s.actions:
			if s.rp.dead.Load() {
				return
			}
			s.dispatch(a)
		}
	}
}

func (s *Server) dispatch(a action) {
	switch v := a.(type) {
	case *requestVoteAction:
		v.reply <- s.handleRequestVote(v.args)
	case *appendLogsAction:
		v.reply <- s.handleAppendLogs(v.args)
	case *startAction:
		v.reply <- s.handleStart(v.command)
	case kickOffElectionAction:
		s.handleKickOffElection()
	case becomeLeaderAction:
		s.handleBecomeLeader(v.term)
	case higherTermObservedAction:
		s.rp.stepDownIfStale(v.term)
	case applyAction:
		s.handleApply()
	case startAppendLogsAction:
		if s.rp.role == Leader {
			s.broadcastAppendLogs()
		}
	case *appendLogsResultAction:
		s.handleAppendLogsResult(v)
	}
}

// post enqueues an action from outside the event loop (a timer or an
// outbound-RPC goroutine), respecting shutdown.
func (s *Server) post(a action) {
	select {
	case s.actions <- a:
	case <-s.ctx.Done():
	}
}
