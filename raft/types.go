// Package raft implements the core of a Raft consensus peer: the role state
// machine, election protocol, log replication, commit advancement, and the
// persistence and RPC-bridge contracts it depends on. Membership
// reconfiguration, snapshots, read-index optimizations, pre-vote, and leader
// leases are not implemented — this is single-configuration Raft with
// full-log replication.
package raft

import "context"

// Role is one of the three Raft roles a peer can occupy.
type Role int

const (
	Follower Role = iota
	Candidate
	Leader
)

func (r Role) String() string {
	switch r {
	case Follower:
		return "follower"
	case Candidate:
		return "candidate"
	case Leader:
		return "leader"
	default:
		return "unknown"
	}
}

// LogEntry is one slot in the replicated log. Index is 1-based and
// monotonic; index 0 is always a term-0 sentinel that every peer's log
// carries and that is never sent over the wire.
type LogEntry struct {
	Term    uint64
	Index   uint64
	Command []byte
}

// noVote marks the absence of a vote in the current term.
const noVote = -1

// RequestVoteArgs is the RequestVote RPC request.
type RequestVoteArgs struct {
	Term         uint64
	CandidateID  int
	LastLogIndex uint64
	LastLogTerm  uint64
}

// RequestVoteReply is the RequestVote RPC reply.
type RequestVoteReply struct {
	Term        uint64
	VoteGranted bool
}

// AppendLogsArgs is the AppendLogs RPC request. A nil/empty Entries is a
// heartbeat.
type AppendLogsArgs struct {
	Term         uint64
	LeaderID     int
	PrevLogIndex uint64
	PrevLogTerm  uint64
	Entries      []LogEntry
	LeaderCommit uint64
}

// AppendLogsReply is the AppendLogs RPC reply.
type AppendLogsReply struct {
	Term    uint64
	Success bool
}

// ApplyMsg is delivered to the application once an entry commits.
// CommandValid is always true in this implementation; it is reserved so a
// future snapshot/install-snapshot message can be distinguished on the same
// channel without changing its type.
type ApplyMsg struct {
	CommandValid bool
	Command      []byte
	CommandIndex uint64
}

// Peer is the transport-level stub the Server uses to reach one other
// cluster member. Implementations live outside this package (see
// transport/grpc for the default one); the core never depends on how bytes
// reach a peer, only that RequestVote/AppendLogs eventually return a reply
// or an error.
type Peer interface {
	RequestVote(ctx context.Context, args *RequestVoteArgs) (*RequestVoteReply, error)
	AppendLogs(ctx context.Context, args *AppendLogsArgs) (*AppendLogsReply, error)
}
