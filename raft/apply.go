package raft

// handleApply implements §4.6: deliver every committed-but-not-yet-applied
// entry to the application, strictly in order, exactly once. The send to
// applyCh happens on the event loop goroutine; if the consumer is slow this
// blocks the loop, which is the same backpressure the action channel itself
// already exerts on producers.
func (s *Server) handleApply() {
	rp := s.rp
	for rp.lastApplied < rp.commitIndex {
		rp.lastApplied++
		entry := rp.log[rp.lastApplied]
		msg := ApplyMsg{
			CommandValid: true,
			Command:      entry.Command,
			CommandIndex: entry.Index,
		}
		select {
		case s.applyCh <- msg:
			rp.logger.applied(entry.Index)
		case <-s.ctx.Done():
			return
		}
	}
	rp.publishMetrics()
}
