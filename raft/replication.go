package raft

import "context"

// handleAppendLogs implements the §4.5 receiver-side AppendLogs handler:
// the log-matching consistency check, conflict truncation, append of new
// entries, and commit-index advancement bounded by the leader's commit and
// our own log length.
func (s *Server) handleAppendLogs(args *AppendLogsArgs) *AppendLogsReply {
	rp := s.rp

	if args.Term < rp.currentTerm {
		return &AppendLogsReply{Term: rp.currentTerm, Success: false}
	}
	rp.stepDownIfStale(args.Term)
	if rp.role == Candidate {
		// Same-term AppendLogs from the legitimate leader; fall back to
		// Follower without bumping the term.
		old := rp.role
		rp.role = Follower
		rp.logger.stateChange(old, Follower, rp.currentTerm)
	}
	rp.resetLastReceive()
	rp.logger.appendLogsReceived(args.LeaderID, args.Term, args.PrevLogIndex, len(args.Entries))

	if args.PrevLogIndex > rp.lastLogIndex() {
		return &AppendLogsReply{Term: rp.currentTerm, Success: false}
	}
	if rp.termAt(args.PrevLogIndex) != args.PrevLogTerm {
		// Truncate the conflicting suffix so the next retry with a smaller
		// prevLogIndex can find agreement.
		rp.log = rp.log[:args.PrevLogIndex]
		rp.persist()
		return &AppendLogsReply{Term: rp.currentTerm, Success: false}
	}

	insertAt := args.PrevLogIndex + 1
	conflict := false
	for i, entry := range args.Entries {
		idx := insertAt + uint64(i)
		if idx <= rp.lastLogIndex() {
			if rp.termAt(idx) != entry.Term {
				rp.log = rp.log[:idx]
				conflict = true
			} else {
				continue
			}
		}
		if conflict || idx > rp.lastLogIndex() {
			rp.log = append(rp.log, entry)
		}
	}
	if len(args.Entries) > 0 {
		rp.persist()
	}

	if args.LeaderCommit > rp.commitIndex {
		newCommit := args.LeaderCommit
		if last := rp.lastLogIndex(); newCommit > last {
			newCommit = last
		}
		if newCommit > rp.commitIndex {
			if rp.metrics != nil {
				rp.metrics.EntriesCommitted.Add(float64(newCommit - rp.commitIndex))
			}
			rp.commitIndex = newCommit
			rp.logger.commitAdvanced(rp.commitIndex, rp.currentTerm)
			rp.publishMetrics()
		}
	}

	return &AppendLogsReply{Term: rp.currentTerm, Success: true}
}

// handleStart implements §4.8's start: a leader appends the command to its own log
// immediately and returns without waiting for replication; a non-leader
// rejects with ErrNotLeader.
func (s *Server) handleStart(command []byte) startResult {
	rp := s.rp
	if rp.role != Leader {
		return startResult{err: ErrNotLeader}
	}
	entry := LogEntry{
		Term:    rp.currentTerm,
		Index:   rp.lastLogIndex() + 1,
		Command: command,
	}
	rp.log = append(rp.log, entry)
	rp.persist()
	s.broadcastAppendLogs()
	return startResult{index: entry.Index, term: entry.Term}
}

// broadcastAppendLogs sends one AppendLogs RPC to every peer, each in its
// own goroutine, reporting the outcome back to the event loop as an
// appendLogsResultAction. It is a no-op unless role==Leader.
func (s *Server) broadcastAppendLogs() {
	rp := s.rp
	if rp.role != Leader {
		return
	}

	term := rp.currentTerm
	leaderCommit := rp.commitIndex
	peerCount := 0

	for i := range rp.peers {
		if i == rp.me {
			continue
		}
		peerCount++
		prevIndex := rp.nextIndex[i] - 1
		prevTerm := rp.termAt(prevIndex)
		var entries []LogEntry
		if rp.lastLogIndex() >= rp.nextIndex[i] {
			entries = append(entries, rp.log[rp.nextIndex[i]:]...)
		}

		args := &AppendLogsArgs{
			Term:         term,
			LeaderID:     rp.me,
			PrevLogIndex: prevIndex,
			PrevLogTerm:  prevTerm,
			Entries:      entries,
			LeaderCommit: leaderCommit,
		}
		peer := rp.peers[i]
		peerIdx := i

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			ctx, cancel := context.WithTimeout(s.ctx, s.cfg.rpcTimeout)
			defer cancel()
			reply, err := peer.AppendLogs(ctx, args)
			s.post(&appendLogsResultAction{
				peer:          peerIdx,
				reply:         reply,
				err:           err,
				sentTerm:      term,
				sentPrevIndex: prevIndex,
				sentEntries:   len(entries),
			})
		}()
	}

	rp.logger.heartbeatSent(term, peerCount)
	if rp.metrics != nil {
		rp.metrics.AppendLogsSent.Add(float64(peerCount))
	}
}

// handleAppendLogsResult implements §4.4's leader-side bookkeeping: discard
// replies that no longer correspond to the current term, update
// match/next index on success, and advance commitIndex only over entries
// from the current term (the commitment restriction), backing off
// nextIndex by one on failure.
func (s *Server) handleAppendLogsResult(v *appendLogsResultAction) {
	rp := s.rp

	if v.err != nil {
		if rp.metrics != nil {
			rp.metrics.AppendLogsFailed.Inc()
		}
		return
	}
	if v.reply.Term > rp.currentTerm {
		s.post(higherTermObservedAction{term: v.reply.Term})
		return
	}
	if rp.role != Leader || v.sentTerm != rp.currentTerm {
		// Stale: either we stepped down, or this reply belongs to an
		// AppendLogs sent in an earlier term.
		return
	}

	if v.reply.Success {
		newMatch := v.sentPrevIndex + uint64(v.sentEntries)
		if newMatch > rp.matchIndex[v.peer] {
			rp.matchIndex[v.peer] = newMatch
		}
		rp.nextIndex[v.peer] = newMatch + 1
		s.tryAdvanceCommit()
		return
	}

	if rp.metrics != nil {
		rp.metrics.AppendLogsFailed.Inc()
	}
	if rp.nextIndex[v.peer] > 1 {
		rp.nextIndex[v.peer]--
	}
}

// tryAdvanceCommit looks for the highest index replicated on a majority of
// peers whose entry's term equals the current term, and advances
// commitIndex to it. Entries from earlier terms are never committed by
// counting replicas alone — they ride along only when a current-term
// entry commits over them, per the commitment restriction.
func (s *Server) tryAdvanceCommit() {
	rp := s.rp
	for n := rp.lastLogIndex(); n > rp.commitIndex; n-- {
		if rp.termAt(n) != rp.currentTerm {
			continue
		}
		count := 1 // self
		for i := range rp.peers {
			if i != rp.me && rp.matchIndex[i] >= n {
				count++
			}
		}
		if count >= len(rp.peers)/2+1 {
			if rp.metrics != nil {
				rp.metrics.EntriesCommitted.Add(float64(n - rp.commitIndex))
			}
			rp.commitIndex = n
			rp.logger.commitAdvanced(n, rp.currentTerm)
			rp.publishMetrics()
			return
		}
	}
}
