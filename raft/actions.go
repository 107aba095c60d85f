package raft

// action is the message type the Server's event loop consumes. The variants
// below are the inbound RPCs, the application's Start call, the three
// timer-driven triggers, the result of an outbound AppendLogs the leader
// previously sent, and the two outcomes the election goroutine reports back
// (becomeLeaderAction, higherTermObservedAction).
type action interface{ isAction() }

type requestVoteAction struct {
	args  *RequestVoteArgs
	reply chan *RequestVoteReply
}

func (*requestVoteAction) isAction() {}

type appendLogsAction struct {
	args  *AppendLogsArgs
	reply chan *AppendLogsReply
}

func (*appendLogsAction) isAction() {}

type startResult struct {
	index uint64
	term  uint64
	err   error
}

type startAction struct {
	command []byte
	reply   chan startResult
}

func (*startAction) isAction() {}

// kickOffElectionAction is posted by the election timer.
type kickOffElectionAction struct{}

func (kickOffElectionAction) isAction() {}

// applyAction is posted by the apply timer.
type applyAction struct{}

func (applyAction) isAction() {}

// startAppendLogsAction is posted by the heartbeat timer.
type startAppendLogsAction struct{}

func (startAppendLogsAction) isAction() {}

// becomeLeaderAction is posted by the election goroutine once it observes a
// majority of grants. The handler re-validates (term, role) before
// committing to Leader, since the election may have gone stale while votes
// were in flight.
type becomeLeaderAction struct {
	term uint64
}

func (becomeLeaderAction) isAction() {}

// higherTermObservedAction is posted by the election goroutine, and by
// handleAppendLogsResult, when a reply reveals a term greater than the
// peer's own. All PeerState mutation for rule 5
// happens in the event loop, never in the posting goroutine.
type higherTermObservedAction struct {
	term uint64
}

func (higherTermObservedAction) isAction() {}

// appendLogsResultAction carries the reply to an outbound AppendLogs along
// with the context the leader had when it sent the RPC, so the handler can
// detect and discard a stale reply per §4.3 / the Design Notes on tagging
// outbound sends with (sent_term, sent_prev_index, sent_len).
type appendLogsResultAction struct {
	peer          int
	reply         *AppendLogsReply
	err           error
	sentTerm      uint64
	sentPrevIndex uint64
	sentEntries   int
}

func (*appendLogsResultAction) isAction() {}
