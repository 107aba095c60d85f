package grpc

import (
	"net"

	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
)

// Server exposes a raftServer (a *raft.Node, in practice) over gRPC using
// the hand-written serviceDesc and the raftwire codec.
type Server struct {
	node   raftServer
	logger *zap.SugaredLogger
	gs     *grpclib.Server
	lis    net.Listener
}

// NewServer wraps node for serving. logger may be nil.
func NewServer(node raftServer, logger *zap.Logger) *Server {
	var sugar *zap.SugaredLogger
	if logger != nil {
		sugar = logger.Sugar()
	} else {
		sugar = zap.NewNop().Sugar()
	}
	return &Server{node: node, logger: sugar}
}

// Serve starts listening on addr and serving RPCs. It returns once the
// listener is bound; Serve itself runs in a background goroutine.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = lis
	s.gs = grpclib.NewServer()
	s.gs.RegisterService(&serviceDesc, s.node)

	go func() {
		if err := s.gs.Serve(lis); err != nil {
			s.logger.Infow("grpc server stopped", "err", err)
		}
	}()
	return nil
}

// Stop gracefully drains in-flight RPCs and stops serving.
func (s *Server) Stop() {
	if s.gs != nil {
		s.gs.GracefulStop()
	}
}
