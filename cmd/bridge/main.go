// Package main bridges pre-recorded agent activity onto the ledger:
// trade journal entries, token balance snapshots, and a status
// heartbeat. Each record becomes one contract transaction.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"bountyledger/internal/bridge"
	"bountyledger/internal/config"
	"bountyledger/internal/evmrpc"
	"bountyledger/internal/ledger"
	"bountyledger/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	doTrades := flag.Bool("trades", false, "Bridge trade journal entries")
	doBalances := flag.Bool("balances", false, "Bridge token balance snapshots")
	doStatus := flag.Bool("status", false, "Log an agent status record")
	doAll := flag.Bool("all", false, "Bridge everything")
	maxTrades := flag.Int("max-trades", bridge.DefaultMaxTrades, "Max trades to bridge in one run")
	dryRun := flag.Bool("dry-run", false, "Show what would be logged without broadcasting")
	flag.Parse()

	if !*doTrades && !*doBalances && !*doStatus {
		*doAll = true
	}

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := buildRecorder(ctx, cfg, log, *dryRun)
	br := bridge.NewBridge(recorder).
		WithLogger(log).
		WithTradeChain(cfg.TradeChain).
		WithLedgerChain(cfg.LedgerChain)
	if *dryRun {
		br = br.WithPause(0)
	}

	total := 0
	if *doTrades || *doAll {
		trades, err := bridge.LoadTrades(cfg.TradesPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.TradesPath).Msg("no trade journal")
		} else {
			n := br.BridgeTrades(ctx, trades, *maxTrades)
			observability.RecordBridged("trade", n)
			total += n
		}
	}
	if *doBalances || *doAll {
		snapshots, err := bridge.LoadBalances(cfg.BalancesPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.BalancesPath).Msg("no balance snapshots")
		} else {
			n := br.BridgeBalances(ctx, snapshots)
			observability.RecordBridged("balance", n)
			total += n
		}
	}
	if *doStatus || *doAll {
		if br.BridgeStatus(ctx, cfg.AgentStatus()) {
			observability.RecordBridged("status", 1)
			total++
		}
	}

	log.Info().Int("total", total).Msg("bridge complete")
}

// buildRecorder resolves the ledger deployment and signing key. Any
// missing piece disables recording; bridged entries then count zero.
func buildRecorder(ctx context.Context, cfg config.AppConfig, log zerolog.Logger, dryRun bool) ledger.Recorder {
	if dryRun {
		return ledger.NewPreviewRecorder(os.Stdout)
	}
	dep, err := ledger.LoadDeployment(cfg.DeploymentPath)
	if err != nil {
		log.Warn().Err(err).Msg("ledger recording disabled: no deployment")
		return ledger.NewDisabledRecorder()
	}
	contractABI, err := ledger.LoadABI(cfg.ABIPath)
	if err != nil {
		log.Warn().Err(err).Msg("ledger recording disabled: no contract ABI")
		return ledger.NewDisabledRecorder()
	}
	backend := evmrpc.NewHTTPClient(cfg.RPCEndpoint)
	return ledger.NewRecorder(ctx, cfg.KeyProvider(), dep, contractABI, backend, ledger.WithLogger(log))
}
