// raft/election.go
package raft

import (
	"context"
	"fmt"
	"time"
)

// handleKickOffElection runs on the event loop. It transitions to Candidate,
// bumps the term, votes for self, persists, and then hands vote collection
// off to a dedicated goroutine so the loop itself never blocks on network
// I/O — see the Design Notes on why KickOffElection must not await inline.
func (s *Server) handleKickOffElection() {
	rp := s.rp
	if rp.role == Leader {
		return
	}

	old := rp.role
	rp.role = Candidate
	rp.currentTerm++
	rp.currentTermView.Store(rp.currentTerm)
	rp.votedFor = rp.me
	rp.persist()
	rp.resetLastReceive()
	rp.logger.stateChange(old, Candidate, rp.currentTerm)
	rp.logger.electionStart(rp.currentTerm)
	if rp.metrics != nil {
		rp.metrics.Elections.Inc()
	}
	rp.publishMetrics()

	term := rp.currentTerm
	me := rp.me
	lastLogIndex := rp.lastLogIndex()
	lastLogTerm := rp.lastLogTerm()
	peers := rp.peers
	rpcTimeout := s.cfg.rpcTimeout

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.electionWorker(term, me, lastLogIndex, lastLogTerm, peers, rpcTimeout)
	}()
}

// electionWorker requests votes from every other peer concurrently and
// posts the outcome back as an action. It never mutates raftPeer directly.
func (s *Server) electionWorker(term uint64, me int, lastLogIndex, lastLogTerm uint64, peers []Peer, rpcTimeout time.Duration) {
	args := &RequestVoteArgs{
		Term:         term,
		CandidateID:  me,
		LastLogIndex: lastLogIndex,
		LastLogTerm:  lastLogTerm,
	}

	votesNeeded := len(peers)/2 + 1
	votes := 1 // self
	if votes >= votesNeeded {
		s.post(becomeLeaderAction{term: term})
		return
	}

	type result struct {
		reply *RequestVoteReply
		err   error
	}
	resultCh := make(chan result, len(peers))
	for i, peer := range peers {
		if i == me {
			continue
		}
		peer := peer
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			ctx, cancel := context.WithTimeout(s.ctx, rpcTimeout)
			defer cancel()
			reply, err := peer.RequestVote(ctx, args)
			select {
			case resultCh <- result{reply, err}:
			case <-s.ctx.Done():
			}
		}()
	}

	replies := len(peers) - 1
	for i := 0; i < replies; i++ {
		select {
		case <-s.ctx.Done():
			return
		case r := <-resultCh:
			if r.err != nil {
				continue
			}
			if r.reply.Term > term {
				s.post(higherTermObservedAction{term: r.reply.Term})
				return
			}
			if r.reply.VoteGranted {
				votes++
				if votes >= votesNeeded {
					s.post(becomeLeaderAction{term: term})
					return
				}
			}
		}
	}
	// Timed out or lost the vote; the election timer will retry with a
	// fresh randomized interval.
}

// handleBecomeLeader runs on the event loop. It re-validates that the peer
// is still a Candidate in the same term before committing — votes may have
// kept arriving after the term changed underneath the election goroutine.
func (s *Server) handleBecomeLeader(term uint64) {
	rp := s.rp
	if rp.currentTerm != term || rp.role != Candidate {
		return
	}

	old := rp.role
	rp.role = Leader
	rp.isLeaderView.Store(true)
	rp.logger.stateChange(old, Leader, term)
	if rp.metrics != nil {
		rp.metrics.ElectionsWon.Inc()
	}

	lastLogIndex := rp.lastLogIndex()
	for i := range rp.peers {
		rp.nextIndex[i] = lastLogIndex + 1
		rp.matchIndex[i] = 0
	}
	rp.publishMetrics()

	s.broadcastAppendLogs()
}

// handleRequestVote implements §4.2's receiver-side RequestVote handler.
func (s *Server) handleRequestVote(args *RequestVoteArgs) *RequestVoteReply {
	rp := s.rp

	if args.Term < rp.currentTerm {
		return &RequestVoteReply{Term: rp.currentTerm, VoteGranted: false}
	}
	if args.Term > rp.currentTerm {
		rp.stepDownIfStale(args.Term)
	}

	granted := false
	if (rp.votedFor == noVote || rp.votedFor == args.CandidateID) &&
		rp.isLogUpToDate(args.LastLogIndex, args.LastLogTerm) {
		granted = true
		rp.votedFor = args.CandidateID
		rp.persist()
		rp.resetLastReceive()
		rp.logger.voteGranted(args.CandidateID, args.Term)
	} else {
		reason := fmt.Sprintf("votedFor=%d logUpToDate=%v", rp.votedFor,
			rp.isLogUpToDate(args.LastLogIndex, args.LastLogTerm))
		rp.logger.voteDenied(args.CandidateID, args.Term, reason)
	}

	return &RequestVoteReply{Term: rp.currentTerm, VoteGranted: granted}
}
