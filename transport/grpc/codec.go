package grpc

import (
	"fmt"

	"raftd/raft"

	"google.golang.org/grpc/encoding"
)

// codecName is registered as a content-subtype with google.golang.org/grpc/encoding,
// the same extension point protoc-gen-go-grpc output uses; it just points at
// our hand-rolled protowire (de)serializers instead of generated descriptor
// code.
const codecName = "raftwire"

func init() {
	encoding.RegisterCodec(wireCodec{})
}

type wireCodec struct{}

func (wireCodec) Name() string { return codecName }

func (wireCodec) Marshal(v interface{}) ([]byte, error) {
	switch m := v.(type) {
	case *raft.RequestVoteArgs:
		return marshalRequestVoteArgs(m), nil
	case *raft.RequestVoteReply:
		return marshalRequestVoteReply(m), nil
	case *raft.AppendLogsArgs:
		return marshalAppendLogsArgs(m), nil
	case *raft.AppendLogsReply:
		return marshalAppendLogsReply(m), nil
	default:
		return nil, fmt.Errorf("transport/grpc: codec cannot marshal %T", v)
	}
}

func (wireCodec) Unmarshal(data []byte, v interface{}) error {
	switch m := v.(type) {
	case *raft.RequestVoteArgs:
		decoded, err := unmarshalRequestVoteArgs(data)
		if err != nil {
			return err
		}
		*m = *decoded
	case *raft.RequestVoteReply:
		decoded, err := unmarshalRequestVoteReply(data)
		if err != nil {
			return err
		}
		*m = *decoded
	case *raft.AppendLogsArgs:
		decoded, err := unmarshalAppendLogsArgs(data)
		if err != nil {
			return err
		}
		*m = *decoded
	case *raft.AppendLogsReply:
		decoded, err := unmarshalAppendLogsReply(data)
		if err != nil {
			return err
		}
		*m = *decoded
	default:
		return fmt.Errorf("transport/grpc: codec cannot unmarshal into %T", v)
	}
	return nil
}
