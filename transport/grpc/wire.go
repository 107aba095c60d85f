// Package grpc is the default raft.Peer implementation: it moves
// raft.RequestVoteArgs/Reply and raft.AppendLogsArgs/Reply over the network
// via gRPC. No .proto file or protoc-gen-go-grpc output exists in this
// module, so the wire messages are hand-encoded against protowire's
// low-level varint/tag primitives instead of descriptor-backed generated
// types, and RPC dispatch is wired through a hand-written grpc.ServiceDesc
// and a custom codec rather than generated client/server stubs.
package grpc

import (
	"fmt"

	"raftd/raft"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	fieldRVTerm         = 1
	fieldRVCandidateID  = 2
	fieldRVLastLogIndex = 3
	fieldRVLastLogTerm  = 4

	fieldRVRTerm        = 1
	fieldRVRVoteGranted = 2

	fieldALTerm         = 1
	fieldALLeaderID     = 2
	fieldALPrevLogIndex = 3
	fieldALPrevLogTerm  = 4
	fieldALEntries      = 5
	fieldALLeaderCommit = 6

	fieldALRTerm    = 1
	fieldALRSuccess = 2

	fieldEntryTerm    = 1
	fieldEntryIndex   = 2
	fieldEntryCommand = 3
)

func marshalRequestVoteArgs(a *raft.RequestVoteArgs) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldRVTerm, protowire.VarintType)
	b = protowire.AppendVarint(b, a.Term)
	b = protowire.AppendTag(b, fieldRVCandidateID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(a.CandidateID))
	b = protowire.AppendTag(b, fieldRVLastLogIndex, protowire.VarintType)
	b = protowire.AppendVarint(b, a.LastLogIndex)
	b = protowire.AppendTag(b, fieldRVLastLogTerm, protowire.VarintType)
	b = protowire.AppendVarint(b, a.LastLogTerm)
	return b
}

func unmarshalRequestVoteArgs(b []byte) (*raft.RequestVoteArgs, error) {
	a := &raft.RequestVoteArgs{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("transport/grpc: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, fmt.Errorf("transport/grpc: bad varint: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case fieldRVTerm:
			a.Term = v
		case fieldRVCandidateID:
			a.CandidateID = int(v)
		case fieldRVLastLogIndex:
			a.LastLogIndex = v
		case fieldRVLastLogTerm:
			a.LastLogTerm = v
		default:
			_ = typ
		}
	}
	return a, nil
}

func marshalRequestVoteReply(r *raft.RequestVoteReply) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldRVRTerm, protowire.VarintType)
	b = protowire.AppendVarint(b, r.Term)
	b = protowire.AppendTag(b, fieldRVRVoteGranted, protowire.VarintType)
	b = protowire.AppendVarint(b, boolToVarint(r.VoteGranted))
	return b
}

func unmarshalRequestVoteReply(b []byte) (*raft.RequestVoteReply, error) {
	r := &raft.RequestVoteReply{}
	for len(b) > 0 {
		num, _, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("transport/grpc: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, fmt.Errorf("transport/grpc: bad varint: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case fieldRVRTerm:
			r.Term = v
		case fieldRVRVoteGranted:
			r.VoteGranted = v != 0
		}
	}
	return r, nil
}

func marshalLogEntry(e raft.LogEntry) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldEntryTerm, protowire.VarintType)
	b = protowire.AppendVarint(b, e.Term)
	b = protowire.AppendTag(b, fieldEntryIndex, protowire.VarintType)
	b = protowire.AppendVarint(b, e.Index)
	if len(e.Command) > 0 {
		b = protowire.AppendTag(b, fieldEntryCommand, protowire.BytesType)
		b = protowire.AppendBytes(b, e.Command)
	}
	return b
}

func unmarshalLogEntry(b []byte) (raft.LogEntry, error) {
	var e raft.LogEntry
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return e, fmt.Errorf("transport/grpc: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return e, fmt.Errorf("transport/grpc: bad varint: %w", protowire.ParseError(n))
			}
			b = b[n:]
			switch num {
			case fieldEntryTerm:
				e.Term = v
			case fieldEntryIndex:
				e.Index = v
			}
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return e, fmt.Errorf("transport/grpc: bad bytes: %w", protowire.ParseError(n))
			}
			b = b[n:]
			if num == fieldEntryCommand {
				e.Command = append([]byte(nil), v...)
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return e, fmt.Errorf("transport/grpc: bad field: %w", protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return e, nil
}

func marshalAppendLogsArgs(a *raft.AppendLogsArgs) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldALTerm, protowire.VarintType)
	b = protowire.AppendVarint(b, a.Term)
	b = protowire.AppendTag(b, fieldALLeaderID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(a.LeaderID))
	b = protowire.AppendTag(b, fieldALPrevLogIndex, protowire.VarintType)
	b = protowire.AppendVarint(b, a.PrevLogIndex)
	b = protowire.AppendTag(b, fieldALPrevLogTerm, protowire.VarintType)
	b = protowire.AppendVarint(b, a.PrevLogTerm)
	for _, e := range a.Entries {
		b = protowire.AppendTag(b, fieldALEntries, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalLogEntry(e))
	}
	b = protowire.AppendTag(b, fieldALLeaderCommit, protowire.VarintType)
	b = protowire.AppendVarint(b, a.LeaderCommit)
	return b
}

func unmarshalAppendLogsArgs(b []byte) (*raft.AppendLogsArgs, error) {
	a := &raft.AppendLogsArgs{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("transport/grpc: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("transport/grpc: bad varint: %w", protowire.ParseError(n))
			}
			b = b[n:]
			switch num {
			case fieldALTerm:
				a.Term = v
			case fieldALLeaderID:
				a.LeaderID = int(v)
			case fieldALPrevLogIndex:
				a.PrevLogIndex = v
			case fieldALPrevLogTerm:
				a.PrevLogTerm = v
			case fieldALLeaderCommit:
				a.LeaderCommit = v
			}
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("transport/grpc: bad bytes: %w", protowire.ParseError(n))
			}
			b = b[n:]
			if num == fieldALEntries {
				e, err := unmarshalLogEntry(v)
				if err != nil {
					return nil, err
				}
				a.Entries = append(a.Entries, e)
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("transport/grpc: bad field: %w", protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return a, nil
}

func marshalAppendLogsReply(r *raft.AppendLogsReply) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldALRTerm, protowire.VarintType)
	b = protowire.AppendVarint(b, r.Term)
	b = protowire.AppendTag(b, fieldALRSuccess, protowire.VarintType)
	b = protowire.AppendVarint(b, boolToVarint(r.Success))
	return b
}

func unmarshalAppendLogsReply(b []byte) (*raft.AppendLogsReply, error) {
	r := &raft.AppendLogsReply{}
	for len(b) > 0 {
		num, _, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("transport/grpc: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, fmt.Errorf("transport/grpc: bad varint: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case fieldALRTerm:
			r.Term = v
		case fieldALRSuccess:
			r.Success = v != 0
		}
	}
	return r, nil
}

func boolToVarint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
