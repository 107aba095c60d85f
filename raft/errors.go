package raft

import "errors"

var (
	// ErrNotLeader is returned by Start when this peer is not (or is no
	// longer) the leader.
	ErrNotLeader = errors.New("raft: not leader")

	// ErrShutdown is returned when an action cannot be delivered because
	// the peer has been killed.
	ErrShutdown = errors.New("raft: peer is shut down")

	// ErrEncode wraps a command that could not be encoded by the caller
	// of Start; the caller supplies already-encoded bytes, so this is
	// reserved for callers that plug in their own encode step ahead of
	// Start and want a stable sentinel to wrap.
	ErrEncode = errors.New("raft: command encode error")

	// ErrDecode indicates the persisted state blob could not be decoded
	// on startup. It is fatal for that peer: continuing would mean
	// silently discarding term/vote/log history.
	ErrDecode = errors.New("raft: persisted state decode error")
)
