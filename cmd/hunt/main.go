// Package main runs the bounty hunt: scan the platforms, score and rank
// what came back, consult the feasibility oracle when one is configured,
// record the outcome on the ledger, and print a report.
//
// One-shot by default; --interval loops the hunt and --metrics-addr
// serves /health and /metrics alongside it.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"bountyledger/internal/advisor"
	"bountyledger/internal/config"
	"bountyledger/internal/evaluate"
	"bountyledger/internal/evmrpc"
	"bountyledger/internal/ledger"
	"bountyledger/internal/observability"
	"bountyledger/internal/pipeline"
	"bountyledger/internal/report"
	"bountyledger/internal/scan"
)

const uptimeTick = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	jsonOut := flag.Bool("json", false, "Emit the report as JSON instead of text")
	dryRun := flag.Bool("dry-run", false, "Preview ledger writes without broadcasting")
	interval := flag.Duration("interval", cfg.ScanInterval, "Rescan interval (0 runs once)")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "Metrics HTTP address (empty disables)")
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
		<-sigCh
		os.Exit(1)
	}()

	if *metricsAddr != "" {
		go serveMetrics(log, *metricsAddr)
	}

	p := buildPipeline(ctx, cfg, log, *dryRun)

	if *interval <= 0 {
		if err := runOnce(ctx, p, *jsonOut); err != nil && ctx.Err() == nil {
			log.Fatal().Err(err).Msg("hunt failed")
		}
		return
	}
	runLoop(ctx, log, p, *interval, *jsonOut)
}

// buildPipeline assembles the scan → evaluate → advise → record chain
// from configuration.
func buildPipeline(ctx context.Context, cfg config.AppConfig, log zerolog.Logger, dryRun bool) *pipeline.Pipeline {
	var sources []scan.Source
	for _, platform := range cfg.Platforms() {
		sources = append(sources, scan.NewJSONScanner(platform, scan.WithLogger(log)))
	}
	if cfg.GitHubEnabled {
		sources = append(sources, scan.NewGitHubScanner(cfg.GitHubToken, scan.WithLogger(log)))
	}
	aggregator := scan.NewAggregator(sources...).WithLogger(log)

	evaluator := evaluate.NewEvaluator()
	evaluator.MinReward = decimal.NewFromInt(cfg.MinReward)

	p := pipeline.New(aggregator, evaluator, buildRecorder(ctx, cfg, log, dryRun)).
		WithClaimPolicy(cfg.Policy()).
		WithLedgerChain(cfg.LedgerChain).
		WithSubmitter(pipeline.NewLogSubmitter(log)).
		WithLogger(log)

	if adv := buildAdvisor(ctx, cfg, log); adv != nil {
		p = p.WithAdvisor(adv)
	}
	return p
}

// buildAdvisor returns nil when no oracle is configured or the
// configured one cannot be constructed; the hunt proceeds without
// judgments either way.
func buildAdvisor(ctx context.Context, cfg config.AppConfig, log zerolog.Logger) *advisor.Advisor {
	var oracle advisor.Oracle
	switch cfg.OracleMode {
	case "cli":
		oracle = advisor.NewCLIOracle(cfg.OracleCLI)
	case "gemini":
		g, err := advisor.NewGeminiOracle(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Warn().Err(err).Msg("gemini oracle unavailable, hunting without advisor")
			return nil
		}
		oracle = g
	default:
		return nil
	}
	return advisor.NewAdvisor(oracle).WithTimeout(cfg.OracleTimeout).WithLogger(log)
}

// buildRecorder resolves the ledger deployment and signing key. Any
// missing piece disables recording rather than aborting the hunt.
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

func runOnce(ctx context.Context, p *pipeline.Pipeline, jsonOut bool) error {
	start := time.Now()
	result, err := p.Run(ctx)
	if err != nil {
		observability.RecordScanRun("error", time.Since(start).Seconds())
		return err
	}
	observability.RecordScanRun("success", time.Since(start).Seconds())
	observability.MarkScanSuccess()

	if jsonOut {
		return report.WriteJSON(os.Stdout, result.Scan)
	}
	return report.WriteText(os.Stdout, result.Scan, time.Now().UTC())
}

func runLoop(ctx context.Context, log zerolog.Logger, p *pipeline.Pipeline, interval time.Duration, jsonOut bool) {
	log.Info().Dur("interval", interval).Msg("starting hunt loop")

	go func() {
		t := time.NewTicker(uptimeTick)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				observability.AddUptime(uptimeTick.Seconds())
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := runOnce(ctx, p, jsonOut); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("hunt run failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// serveMetrics exposes /health and /metrics for scraping.
func serveMetrics(log zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	log.Info().Str("addr", addr).Msg("metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("metrics server failed")
	}
}
