package raft

import (
	"time"

	"raftd/metrics"

	"go.uber.org/zap"
)

const (
	defaultApplyInterval     = 50 * time.Millisecond
	defaultHeartbeatInterval = 50 * time.Millisecond
	defaultElectionTimeoutLo = 80 * time.Millisecond
	defaultElectionTimeoutHi = 300 * time.Millisecond
	defaultRPCTimeout        = 1 * time.Millisecond
)

type config struct {
	logger            *zap.Logger
	metrics           *metrics.Raft
	applyInterval     time.Duration
	heartbeatInterval time.Duration
	electionTimeoutLo time.Duration
	electionTimeoutHi time.Duration
	rpcTimeout        time.Duration
	actionBufferSize  int
}

func defaultConfig() config {
	return config{
		applyInterval:     defaultApplyInterval,
		heartbeatInterval: defaultHeartbeatInterval,
		electionTimeoutLo: defaultElectionTimeoutLo,
		electionTimeoutHi: defaultElectionTimeoutHi,
		rpcTimeout:        defaultRPCTimeout,
		actionBufferSize:  256,
	}
}

// Option configures a peer created by Make. The zero value of every
// unspecified option is a sensible default per §6's constants table.
type Option func(*config)

// WithLogger attaches a zap logger; events are tagged with this peer's index.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMetrics attaches a Prometheus instrument set created by metrics.NewRaft.
func WithMetrics(m *metrics.Raft) Option {
	return func(c *config) { c.metrics = m }
}

// WithElectionTimeout overrides the randomized election timeout window
// (default [80ms, 300ms)).
func WithElectionTimeout(lo, hi time.Duration) Option {
	return func(c *config) { c.electionTimeoutLo, c.electionTimeoutHi = lo, hi }
}

// WithHeartbeatInterval overrides the leader's heartbeat/append period
// (default 50ms).
func WithHeartbeatInterval(d time.Duration) Option {
	return func(c *config) { c.heartbeatInterval = d }
}

// WithApplyInterval overrides the apply-timer period (default 50ms).
func WithApplyInterval(d time.Duration) Option {
	return func(c *config) { c.applyInterval = d }
}

// WithRPCTimeout overrides the per-attempt outbound RPC timeout
// (default 1ms — deliberately far shorter than the election window; see
// §6's note that the important property is the gap, not the absolute value).
func WithRPCTimeout(d time.Duration) Option {
	return func(c *config) { c.rpcTimeout = d }
}

// WithActionBufferSize overrides the action channel's buffer capacity. The
// channel is not truly unbounded (see Design Notes); producers are internal
// and timer-paced, so a generous fixed buffer is the practical equivalent.
func WithActionBufferSize(n int) Option {
	return func(c *config) { c.actionBufferSize = n }
}
