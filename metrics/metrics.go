// Package metrics exposes a peer's Raft state as Prometheus instruments.
// It is observability, not one of the protocol's non-goals (read-index,
// pre-vote, leader lease, ...), so it is carried even though those feature
// areas are excluded.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Raft is the set of instruments a single peer updates as it runs.
type Raft struct {
	CurrentTerm       prometheus.Gauge
	Role              prometheus.Gauge // 0=follower, 1=candidate, 2=leader
	CommitIndex       prometheus.Gauge
	LastApplied       prometheus.Gauge
	Elections         prometheus.Counter
	ElectionsWon      prometheus.Counter
	AppendLogsSent    prometheus.Counter
	AppendLogsFailed  prometheus.Counter
	EntriesCommitted  prometheus.Counter
}

// NewRaft creates and registers a Raft instrument set labeled with nodeID.
// reg may be nil, in which case the default registry is used; callers that
// don't want metrics at all should not call NewRaft and leave the peer's
// *Raft field nil — the raft package checks for nil before every update.
func NewRaft(nodeID string, reg prometheus.Registerer) *Raft {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := prometheus.Labels{"node_id": nodeID}
	m := &Raft{
		CurrentTerm: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "raft_current_term", Help: "Current term observed by this peer.", ConstLabels: labels,
		}),
		Role: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "raft_role", Help: "Current role (0=follower, 1=candidate, 2=leader).", ConstLabels: labels,
		}),
		CommitIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "raft_commit_index", Help: "Highest log index known committed.", ConstLabels: labels,
		}),
		LastApplied: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "raft_last_applied", Help: "Highest log index applied to the state machine.", ConstLabels: labels,
		}),
		Elections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raft_elections_started_total", Help: "Elections this peer has started.", ConstLabels: labels,
		}),
		ElectionsWon: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raft_elections_won_total", Help: "Elections this peer has won.", ConstLabels: labels,
		}),
		AppendLogsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raft_append_logs_sent_total", Help: "AppendLogs RPCs sent as leader.", ConstLabels: labels,
		}),
		AppendLogsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raft_append_logs_failed_total", Help: "AppendLogs RPCs that errored, timed out, or were rejected by the follower.", ConstLabels: labels,
		}),
		EntriesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raft_entries_committed_total", Help: "Log entries that have advanced commit_index.", ConstLabels: labels,
		}),
	}
	for _, c := range []prometheus.Collector{
		m.CurrentTerm, m.Role, m.CommitIndex, m.LastApplied,
		m.Elections, m.ElectionsWon, m.AppendLogsSent, m.AppendLogsFailed, m.EntriesCommitted,
	} {
		_ = reg.Register(c) // duplicate registration (e.g. in tests) is not fatal
	}
	return m
}
