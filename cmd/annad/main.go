// annad — Anna's daemon: owns the fact store, the snapshot engine,
// and the unix-socket RPC server that annactl and the MCP bridge talk
// to. There is no other entry point into Anna's state.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/config"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/consent"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/eventlog"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/facts"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/inventory"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/llm"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/logging"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/mutation"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/pipeline"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/planner"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/probe"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/rpc"
	"github.com/jjgarcianorway/anna-assistant-sub011/internal/snapshot"
)

var version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "annad: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	log.Infow("annad starting", "version", version, "socket", cfg.SocketPath)

	inv := inventory.New(log)
	if err := inv.Watch(); err != nil {
		log.Warnw("inventory watch failed, proceeding with a static snapshot", "error", err)
	}
	defer inv.Close()

	factStore, err := facts.Open(cfg.FactsPath)
	if err != nil {
		return fmt.Errorf("open fact store: %w", err)
	}
	go func() {
		for ev := range inv.Events() {
			if ev.Added {
				continue
			}
			if err := factStore.InvalidateOnUninstall(ev.Binary); err != nil {
				log.Warnw("fact invalidation failed", "binary", ev.Binary, "error", err)
			}
		}
	}()

	sandbox := probe.NewSandbox()
	probeExec := probe.NewExecutor(sandbox, log)
	snapEngine := snapshot.NewEngine(cfg.SnapshotPath, probeExec, cfg.ProbeTimeout)

	llmClient := llm.New(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMMaxConcurrent, cfg.LLMRequestTimeout, log)
	plan := planner.New(llmClient, inv.Snapshot(), log)

	pipe := pipeline.New(inv, factStore, plan, probeExec, cfg.ProbeTimeout, log)

	pkgManager := mutation.PackageManager(inv.PackageManager())
	if pkgManager == "" {
		pkgManager = mutation.Pacman
	}
	executor := mutation.NewExecutor(pkgManager, false, log)

	events := eventlog.Open(cfg.EventLogPath, cfg.MaxEventLogEntries)

	privilege := consent.ProbePrivilege(os.Geteuid())
	log.Infow("privilege probe", "level", privilege)

	svc := rpc.NewService(pipe, executor, events, snapEngine, privilege, log)
	server := rpc.New(rpc.Config{
		SocketPath:  cfg.SocketPath,
		MaxInFlight: cfg.RPCMaxInFlight,
		QueueDepth:  cfg.RPCQueueDepth,
	}, svc.Handle, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infow("received signal, shutting down", "signal", sig)
		cancel()
	}()

	err = server.Start(ctx)
	server.Close()
	return err
}
