package raft

// Node is the public handle to a running peer. It is safe for concurrent
// use by multiple goroutines: every method either reads a published atomic
// or posts an action onto the Server's event loop and blocks on a
// per-call reply channel.
type Node struct {
	rp *raftPeer
	s  *Server
}

// Make constructs and starts a peer. peers[me] is this node's own entry and
// is never dialed; persister supplies (and receives) the durable state
// across restarts; applyCh is the channel committed entries are delivered
// on, in order, exactly once.
func Make(peers []Peer, me int, persister Persister, applyCh chan<- ApplyMsg, opts ...Option) *Node {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := newEventLogger(cfg.logger, me)
	rp := newRaftPeer(peers, me, persister, logger, cfg.metrics)
	s := newServer(rp, applyCh, cfg)
	s.start()

	return &Node{rp: rp, s: s}
}

// Start submits a command for replication. It returns immediately; only a
// Leader accepts the command, appending it to its own log before returning.
// index/term identify the log slot to watch via the apply channel; a
// non-leader call returns ErrNotLeader.
func (n *Node) Start(command []byte) (index uint64, term uint64, err error) {
	if n.rp.dead.Load() {
		return 0, 0, ErrShutdown
	}
	reply := make(chan startResult, 1)
	n.s.post(&startAction{command: command, reply: reply})
	select {
	case r := <-reply:
		return r.index, r.term, r.err
	case <-n.s.ctx.Done():
		return 0, 0, ErrShutdown
	}
}

// Term returns the peer's current term, read lock-free.
func (n *Node) Term() uint64 {
	return n.rp.currentTermView.Load()
}

// IsLeader reports whether the peer currently believes itself to be Leader,
// read lock-free.
func (n *Node) IsLeader() bool {
	return n.rp.isLeaderView.Load()
}

// GetState returns (term, isLeader) in one call, matching the MIT 6.824
// convention this package's constructor naming also follows.
func (n *Node) GetState() (uint64, bool) {
	return n.Term(), n.IsLeader()
}

// RequestVote is the inbound RPC entry point a transport server calls when
// another peer requests this node's vote.
func (n *Node) RequestVote(args *RequestVoteArgs) (*RequestVoteReply, error) {
	if n.rp.dead.Load() {
		return nil, ErrShutdown
	}
	reply := make(chan *RequestVoteReply, 1)
	n.s.post(&requestVoteAction{args: args, reply: reply})
	select {
	case r := <-reply:
		return r, nil
	case <-n.s.ctx.Done():
		return nil, ErrShutdown
	}
}

// AppendLogs is the inbound RPC entry point a transport server calls when
// the leader (or a candidate believing itself the leader) replicates
// entries or sends a heartbeat.
func (n *Node) AppendLogs(args *AppendLogsArgs) (*AppendLogsReply, error) {
	if n.rp.dead.Load() {
		return nil, ErrShutdown
	}
	reply := make(chan *AppendLogsReply, 1)
	n.s.post(&appendLogsAction{args: args, reply: reply})
	select {
	case r := <-reply:
		return r, nil
	case <-n.s.ctx.Done():
		return nil, ErrShutdown
	}
}

// Kill permanently stops the peer: the dead flag is set, every cooperative
// goroutine is cancelled, and the event loop exits. Kill does not block;
// call Wait afterward if the caller needs goroutines fully torn down (tests
// asserting no leaks via goleak should always do so).
func (n *Node) Kill() {
	n.s.stop()
}

// Wait blocks until every goroutine owned by this peer (the event loop and
// the three timer loops, plus any in-flight outbound RPC goroutines) has
// returned. It is meant to be called after Kill.
func (n *Node) Wait() {
	n.s.wait()
}
