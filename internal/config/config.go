// Package config resolves process configuration from the environment,
// with an optional .env file for local runs.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"bountyledger/internal/bridge"
	"bountyledger/internal/domain"
	"bountyledger/internal/ledger"
	"bountyledger/internal/scan"
)

// AppConfig is the full process configuration. Static contract
// artifacts (deployment, ABI) are referenced by path here and loaded
// separately; their absence disables recording rather than failing the
// load.
type AppConfig struct {
	// Scanning
	BountycasterURL string `envconfig:"BOUNTYCASTER_URL" default:"https://www.bountycaster.xyz/api/v1/bounties" validate:"url"`
	ClawquestsURL   string `envconfig:"CLAWQUESTS_URL" default:"https://clawquests.com/api/v1/quests" validate:"url"`
	GitHubEnabled   bool   `envconfig:"GITHUB_ENABLED" default:"true"`
	GitHubToken     string `envconfig:"GITHUB_TOKEN"`
	MinReward       int64  `envconfig:"MIN_REWARD" default:"25" validate:"min=0"`

	// Oracle
	OracleMode    string        `envconfig:"ORACLE_MODE" default:"off" validate:"oneof=cli gemini off"`
	OracleTimeout time.Duration `envconfig:"ORACLE_TIMEOUT" default:"60s"`
	OracleCLI     string        `envconfig:"ORACLE_CLI" default:"claude"`
	GeminiAPIKey  string        `envconfig:"GEMINI_API_KEY" validate:"required_if=OracleMode gemini"`
	GeminiModel   string        `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`

	// Ledger
	RPCEndpoint    string `envconfig:"LEDGER_RPC" default:"https://opbnb-mainnet-rpc.bnbchain.org" validate:"url"`
	WSEndpoint     string `envconfig:"LEDGER_WS" validate:"omitempty,url"`
	DeploymentPath string `envconfig:"DEPLOYMENT_PATH" default:"deployed.json"`
	ABIPath        string `envconfig:"ABI_PATH" default:"abi/BountyLedger.json"`
	LedgerChain    string `envconfig:"LEDGER_CHAIN" default:"opbnb"`
	ClaimPolicy    string `envconfig:"CLAIM_POLICY" default:"feasible" validate:"oneof=feasible always never"`

	// Signing key
	KeySource  string `envconfig:"KEY_SOURCE" default:"env" validate:"oneof=env file command"`
	KeyEnvVar  string `envconfig:"KEY_ENV_VAR" default:"LEDGER_PRIVATE_KEY"`
	KeyFile    string `envconfig:"KEY_FILE" validate:"required_if=KeySource file"`
	KeyCommand string `envconfig:"KEY_COMMAND" validate:"required_if=KeySource command"`

	// Bridge
	TradesPath   string   `envconfig:"TRADES_PATH" default:"trades.jsonl"`
	BalancesPath string   `envconfig:"BALANCES_PATH" default:"balances.json"`
	TradeChain   string   `envconfig:"TRADE_CHAIN" default:"polygon"`
	AgentName    string   `envconfig:"AGENT_NAME" default:"bountyledger"`
	AgentVersion string   `envconfig:"AGENT_VERSION" default:"dev"`
	ActiveChains []string `envconfig:"ACTIVE_CHAINS" default:"polygon,base,opbnb"`

	// Run
	ScanInterval time.Duration `envconfig:"SCAN_INTERVAL"`
	MetricsAddr  string        `envconfig:"METRICS_ADDR"`
}

// Load reads a .env file when present, resolves the environment, and
// validates the result.
func Load() (AppConfig, error) {
	_ = godotenv.Load()

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("read environment: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Platforms returns the JSON listing platforms to scan.
func (c AppConfig) Platforms() []scan.PlatformConfig {
	return []scan.PlatformConfig{
		{
			Name:     "bountycaster",
			Endpoint: c.BountycasterURL,
			Params:   map[string]string{"status": "open", "limit": "30"},
			ItemsKey: "bounties",
		},
		{
			Name:     "clawquests",
			Endpoint: c.ClawquestsURL,
			Params:   map[string]string{"status": "open"},
			ItemsKey: "quests",
		},
	}
}

// Policy returns the typed claim policy.
func (c AppConfig) Policy() domain.ClaimPolicy {
	return domain.ClaimPolicy(c.ClaimPolicy)
}

// KeyProvider builds the configured signing-key source.
func (c AppConfig) KeyProvider() ledger.KeyProvider {
	switch c.KeySource {
	case "file":
		return ledger.FileKeyProvider{Path: c.KeyFile}
	case "command":
		parts := strings.Fields(c.KeyCommand)
		if len(parts) == 0 {
			return ledger.EnvKeyProvider{Var: c.KeyEnvVar}
		}
		return ledger.CommandKeyProvider{Command: parts[0], Args: parts[1:]}
	default:
		return ledger.EnvKeyProvider{Var: c.KeyEnvVar}
	}
}

// AgentStatus describes this process for bridged status records.
func (c AppConfig) AgentStatus() bridge.AgentStatus {
	return bridge.AgentStatus{
		Agent:        c.AgentName,
		Version:      c.AgentVersion,
		ChainsActive: c.ActiveChains,
	}
}
