// Package main tails the ledger contract over a WebSocket logs
// subscription and prints each event as it lands. Operator tool; the
// hunt pipeline never consumes these events.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/rs/zerolog"

	"bountyledger/internal/config"
	"bountyledger/internal/evmrpc"
	"bountyledger/internal/ledger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	wsEndpoint := flag.String("ws", cfg.WSEndpoint, "Ledger WebSocket endpoint")
	asJSON := flag.Bool("json", false, "Print events as JSON lines")
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if *wsEndpoint == "" {
		log.Fatal().Msg("--ws (or LEDGER_WS) is required")
	}

	dep, err := ledger.LoadDeployment(cfg.DeploymentPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load deployment")
	}
	contractABI, err := ledger.LoadABI(cfg.ABIPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load contract abi")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ws, err := evmrpc.NewWSClient(ctx, *wsEndpoint, evmrpc.WithWSLogger(log))
	if err != nil {
		log.Fatal().Err(err).Msg("connect websocket")
	}
	defer ws.Close()

	events, err := ws.SubscribeLogs(ctx, evmrpc.LogFilter{Address: dep.Address})
	if err != nil {
		log.Fatal().Err(err).Msg("subscribe logs")
	}

	log.Info().
		Str("contract", dep.Address.Hex()).
		Str("chain", cfg.LedgerChain).
		Msg("watching ledger events")

	for {
		select {
		case <-ctx.Done():
			return
		case lg, ok := <-events:
			if !ok {
				log.Info().Msg("subscription closed")
				return
			}
			printEvent(log, contractABI, lg, *asJSON)
		}
	}
}

func printEvent(log zerolog.Logger, contractABI abi.ABI, lg evmrpc.Log, asJSON bool) {
	ev, err := ledger.DecodeEvent(contractABI, lg)
	if err != nil {
		log.Warn().Err(err).Msg("undecodable log")
		return
	}

	if asJSON {
		if err := json.NewEncoder(os.Stdout).Encode(ev); err != nil {
			log.Error().Err(err).Msg("encode event")
		}
		return
	}

	marker := ""
	if ev.Removed {
		marker = " (removed by reorg)"
	}
	fmt.Printf("[%s]%s block=%d tx=%s %s\n",
		ev.Name, marker, ev.Block, ev.TxHash.Hex(), formatFields(ev.Fields))
}

// formatFields renders event arguments as sorted key=value pairs.
func formatFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, fields[k])
	}
	return b.String()
}
