// Package bridge forwards activity recorded by other processes (a trade
// journal, balance snapshots, the agent's own status) onto the ledger
// contract. Everything goes through the Recorder, so a disabled recorder
// turns the whole bridge into a no-op.
package bridge

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bountyledger/internal/domain"
	"bountyledger/internal/ledger"
)

const (
	// DefaultMaxTrades caps how many journal entries one run bridges.
	DefaultMaxTrades = 15

	// DefaultPause is the wait between consecutive submissions.
	DefaultPause = 500 * time.Millisecond

	// DefaultTradeChain tags where the journaled trades happened.
	DefaultTradeChain = "polygon"

	// DefaultLedgerChain tags records about the ledger's own network.
	DefaultLedgerChain = "opbnb"

	// ActionAgentStatus is the action tag for status records.
	ActionAgentStatus = "agent_status_update"

	actionBlocked        = "blocked"
	actionOrderPlaced    = "order_placed"
	actionCancel         = "cancel"
	actionTradePlaced    = "trade_placed"
	actionTradeCancelled = "trade_cancelled"

	maxOrderIDLen = 20
)

// AgentStatus describes the operating process for the status record.
type AgentStatus struct {
	Agent        string   `json:"agent"`
	Version      string   `json:"version"`
	ChainsActive []string `json:"chains_active"`
}

// Bridge submits externally-produced activity to the ledger.
type Bridge struct {
	recorder    ledger.Recorder
	log         zerolog.Logger
	clock       func() time.Time
	pause       time.Duration
	tradeChain  string
	ledgerChain string
}

// NewBridge creates a bridge writing through the given recorder.
func NewBridge(recorder ledger.Recorder) *Bridge {
	return &Bridge{
		recorder:    recorder,
		log:         zerolog.Nop(),
		clock:       func() time.Time { return time.Now().UTC() },
		pause:       DefaultPause,
		tradeChain:  DefaultTradeChain,
		ledgerChain: DefaultLedgerChain,
	}
}

// WithLogger attaches a logger.
func (b *Bridge) WithLogger(log zerolog.Logger) *Bridge {
	b.log = log
	return b
}

// WithClock overrides the time source.
func (b *Bridge) WithClock(clock func() time.Time) *Bridge {
	b.clock = clock
	return b
}

// WithPause sets the wait between consecutive submissions.
func (b *Bridge) WithPause(d time.Duration) *Bridge {
	b.pause = d
	return b
}

// WithTradeChain overrides the origin tag for journaled trades.
func (b *Bridge) WithTradeChain(chain string) *Bridge {
	b.tradeChain = chain
	return b
}

// WithLedgerChain overrides the origin tag for status records.
func (b *Bridge) WithLedgerChain(chain string) *Bridge {
	b.ledgerChain = chain
	return b
}

// BridgeTrades submits up to maxEntries journal entries and returns
// how many were recorded. Blocked entries are skipped outright; failed
// submissions don't count against the cap.
func (b *Bridge) BridgeTrades(ctx context.Context, trades []domain.TradeEntry, maxEntries int) int {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxTrades
	}
	logged := 0
	for _, entry := range trades {
		if logged >= maxEntries || ctx.Err() != nil {
			break
		}
		action, details := classifyTrade(entry)
		if action == "" {
			continue
		}
		if _, ok := b.recorder.RecordActivity(ctx, b.tradeChain, action, details); ok {
			logged++
			b.wait(ctx)
		}
	}
	b.log.Info().Int("bridged", logged).Int("journal", len(trades)).Msg("trade journal bridged")
	return logged
}

// classifyTrade maps a journal entry to an activity record. A blocked
// entry maps to the empty action, meaning skip.
func classifyTrade(entry domain.TradeEntry) (string, map[string]any) {
	action := strings.ToLower(entry.Action)
	if action == actionBlocked {
		return "", nil
	}
	if action == "" {
		action = "unknown"
	}

	details := map[string]any{
		"action":    entry.Action,
		"timestamp": entry.Timestamp,
	}
	switch action {
	case actionOrderPlaced:
		market := entry.MarketName
		if market == "" {
			market = "unknown"
		}
		details["market"] = market
		details["side"] = entry.Side
		details["price"] = entry.Price
		details["size_usdc"] = entry.SizeUSDC
		details["expected_return"] = entry.ExpectedReturn
		return actionTradePlaced, details
	case actionCancel:
		details["order_id"] = clipString(entry.OrderID, maxOrderIDLen)
		return actionTradeCancelled, details
	default:
		details["raw_action"] = action
		return action, details
	}
}

// BridgeBalances submits one snapshot record per balance observation.
func (b *Bridge) BridgeBalances(ctx context.Context, snapshots []domain.BalanceSnapshot) int {
	logged := 0
	for _, snap := range snapshots {
		if ctx.Err() != nil {
			break
		}
		if snap.Symbol == "" || snap.Chain == "" {
			b.log.Warn().Str("token", snap.Token).Msg("balance snapshot missing symbol or chain, skipping")
			continue
		}
		action := strings.ToLower(snap.Symbol) + "_balance_snapshot"
		details := map[string]any{
			"balance":       snap.Balance,
			"token_address": snap.Token,
			"wallet":        snap.Wallet,
			"timestamp":     b.clock().Format(time.RFC3339),
		}
		if _, ok := b.recorder.RecordActivity(ctx, snap.Chain, action, details); ok {
			logged++
			b.wait(ctx)
		}
	}
	return logged
}

// BridgeStatus submits one status record describing this agent.
func (b *Bridge) BridgeStatus(ctx context.Context, status AgentStatus) bool {
	details := map[string]any{
		"agent":         status.Agent,
		"version":       status.Version,
		"chains_active": status.ChainsActive,
		"timestamp":     b.clock().Format(time.RFC3339),
	}
	_, ok := b.recorder.RecordActivity(ctx, b.ledgerChain, ActionAgentStatus, details)
	return ok
}

func (b *Bridge) wait(ctx context.Context) {
	if b.pause <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(b.pause):
	}
}

func clipString(s string, max int) string {
	if runes := []rune(s); len(runes) > max {
		return string(runes[:max])
	}
	return s
}
