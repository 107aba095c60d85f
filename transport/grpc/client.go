package grpc

import (
	"context"
	"sync"

	"raftd/raft"

	"go.uber.org/multierr"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client implements raft.Peer for one other cluster member, reached over
// gRPC with the raftwire codec. The underlying connection is dialed lazily
// on first use and reused for every subsequent RPC.
type Client struct {
	addr string

	mu   sync.Mutex
	conn *grpclib.ClientConn
}

// NewClient returns a raft.Peer that talks to addr. It does not dial until
// the first RequestVote/AppendLogs call.
func NewClient(addr string) *Client {
	return &Client{addr: addr}
}

func (c *Client) connection() (*grpclib.ClientConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}
	conn, err := grpclib.NewClient(c.addr,
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
		grpclib.WithDefaultCallOptions(grpclib.CallContentSubtype(codecName)),
	)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return conn, nil
}

func (c *Client) RequestVote(ctx context.Context, args *raft.RequestVoteArgs) (*raft.RequestVoteReply, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}
	reply := new(raft.RequestVoteReply)
	if err := conn.Invoke(ctx, "/"+serviceName+"/RequestVote", args, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *Client) AppendLogs(ctx context.Context, args *raft.AppendLogsArgs) (*raft.AppendLogsReply, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}
	reply := new(raft.AppendLogsReply)
	if err := conn.Invoke(ctx, "/"+serviceName+"/AppendLogs", args, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// Close tears down the underlying connection, if one was ever dialed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// CloseAll aggregates the Close error of every client via multierr, so a
// caller shutting down a whole peer set sees every failure rather than only
// the first.
func CloseAll(clients []*Client) error {
	var err error
	for _, c := range clients {
		err = multierr.Append(err, c.Close())
	}
	return err
}
