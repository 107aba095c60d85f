package grpc

import (
	"context"

	"raftd/raft"

	grpclib "google.golang.org/grpc"
)

// raftServer is the inbound surface a transport server dispatches onto.
// *raft.Node satisfies it directly.
type raftServer interface {
	RequestVote(args *raft.RequestVoteArgs) (*raft.RequestVoteReply, error)
	AppendLogs(args *raft.AppendLogsArgs) (*raft.AppendLogsReply, error)
}

const serviceName = "raftd.transport.grpc.Raft"

func requestVoteHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(raft.RequestVoteArgs)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(raftServer).RequestVote(in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: serviceName + "/RequestVote"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(raftServer).RequestVote(req.(*raft.RequestVoteArgs))
	}
	return interceptor(ctx, in, info, handler)
}

func appendLogsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(raft.AppendLogsArgs)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(raftServer).AppendLogs(in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: serviceName + "/AppendLogs"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(raftServer).AppendLogs(req.(*raft.AppendLogsArgs))
	}
	return interceptor(ctx, in, info, handler)
}

// serviceDesc is the hand-written equivalent of what protoc-gen-go-grpc
// would emit from a .proto file. Registering it against a *grpc.Server
// wires RequestVote/AppendLogs dispatch without any generated glue.
var serviceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*raftServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "RequestVote", Handler: requestVoteHandler},
		{MethodName: "AppendLogs", Handler: appendLogsHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "transport/grpc/service.go",
}
