// Command raftd runs a single Raft peer, wiring persistence, the gRPC
// transport, Prometheus metrics, and the demo state machine together.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"raftd/metrics"
	"raftd/raft"
	"raftd/statemachine"
	transportgrpc "raftd/transport/grpc"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		peerAddrs  []string
		me         int
		listenAddr string
		stateFile  string
		metricsAddr string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "raftd",
		Short: "Run a single Raft consensus peer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(peerAddrs, me, listenAddr, stateFile, metricsAddr, logLevel)
		},
	}

	cmd.Flags().StringSliceVar(&peerAddrs, "peers", nil, "comma-separated list of every peer's listen address, in index order")
	cmd.Flags().IntVar(&me, "id", 0, "this peer's index into --peers")
	cmd.Flags().StringVar(&listenAddr, "listen", "", "override this peer's own listen address (defaults to --peers[id])")
	cmd.Flags().StringVar(&stateFile, "state-file", "raft-state.gob", "path to the persisted term/vote/log blob")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "address to serve /metrics on")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "zap log level: debug, info, warn, error")

	return cmd
}

func run(peerAddrs []string, me int, listenAddr, stateFile, metricsAddr, logLevel string) error {
	if me < 0 || me >= len(peerAddrs) {
		return fmt.Errorf("raftd: --id %d out of range for %d peers", me, len(peerAddrs))
	}
	if listenAddr == "" {
		listenAddr = peerAddrs[me]
	}

	logger, err := buildLogger(logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	nodeID := fmt.Sprintf("%d-%s", me, uuid.NewString())
	logger.Info("starting raftd", zap.String("node_id", nodeID), zap.Int("id", me), zap.String("listen", listenAddr))

	reg := metrics.NewRaft(nodeID, nil)

	peers := make([]raft.Peer, len(peerAddrs))
	var clients []*transportgrpc.Client
	for i, addr := range peerAddrs {
		if i == me {
			continue // never dialed; raftPeer skips its own slot
		}
		c := transportgrpc.NewClient(addr)
		clients = append(clients, c)
		peers[i] = c
	}

	persister := raft.NewFilePersister(stateFile)
	applyCh := make(chan raft.ApplyMsg, 256)
	sm := statemachine.New()
	go sm.Run(applyCh)

	node := raft.Make(peers, me, persister, applyCh,
		raft.WithLogger(logger),
		raft.WithMetrics(reg),
	)

	rpcServer := transportgrpc.NewServer(node, logger)
	if err := rpcServer.Serve(listenAddr); err != nil {
		return fmt.Errorf("raftd: serve rpc: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	httpServer := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	rpcServer.Stop()
	node.Kill()
	node.Wait()
	if err := transportgrpc.CloseAll(clients); err != nil {
		logger.Warn("error closing peer connections", zap.Error(err))
	}
	return httpServer.Close()
}

func buildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("raftd: bad --log-level %q: %w", level, err)
	}
	return cfg.Build()
}
