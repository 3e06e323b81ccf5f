package bridge

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"bountyledger/internal/domain"
)

// journalScanBuffer accommodates journal lines with large embedded
// payloads.
const journalScanBuffer = 1 << 20

// LoadTrades reads a line-delimited trade journal. Blank and malformed
// lines are skipped; the journal is written by an external process and
// carries no format guarantee.
func LoadTrades(path string) ([]domain.TradeEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trade journal: %w", err)
	}
	defer f.Close()

	var trades []domain.TradeEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), journalScanBuffer)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry domain.TradeEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		trades = append(trades, entry)
	}
	if err := scanner.Err(); err != nil {
		return trades, fmt.Errorf("read trade journal: %w", err)
	}
	return trades, nil
}

// LoadBalances reads a pre-formed balance snapshot file: a JSON array
// of observations captured by whatever process watches those wallets.
func LoadBalances(path string) ([]domain.BalanceSnapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open balance snapshots: %w", err)
	}
	var snapshots []domain.BalanceSnapshot
	if err := json.Unmarshal(b, &snapshots); err != nil {
		return nil, fmt.Errorf("parse balance snapshots: %w", err)
	}
	return snapshots, nil
}
