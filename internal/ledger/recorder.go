package ledger

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"bountyledger/internal/domain"
	"bountyledger/internal/evmrpc"
)

const (
	// GasLimit is the fixed gas limit for contract calls. Both contract
	// functions only append storage, so one generous bound covers them.
	GasLimit = 500_000

	// RewardDecimals is the contract's fixed-point scale for rewards.
	RewardDecimals = 18

	// MaxDetailLen bounds the serialized details string.
	MaxDetailLen = 500

	// DefaultConfirmTimeout bounds the wait for a receipt.
	DefaultConfirmTimeout = 30 * time.Second

	// DefaultConfirmInterval is the receipt polling cadence.
	DefaultConfirmInterval = 2 * time.Second
)

// Recorder appends pipeline outcomes to the on-chain ledger. It comes
// in two variants: a live recorder bound to one signing identity and
// one contract, and a disabled recorder that records nothing. Callers
// get the disabled variant whenever initialization fails, so the rest
// of the pipeline runs with recording simply turned off.
type Recorder interface {
	// Enabled reports whether submissions reach the network.
	Enabled() bool

	// RecordActivity appends an activity record. details is serialized
	// to JSON and truncated to MaxDetailLen characters. Returns the
	// confirmed transaction hash, or ("", false) when not recorded.
	RecordActivity(ctx context.Context, chain, action string, details any) (string, bool)

	// RecordClaim appends a bounty-claim record. reward is shifted to
	// the contract's fixed-point representation. Same return contract
	// as RecordActivity.
	RecordClaim(ctx context.Context, platform, externalID, title string, reward decimal.Decimal) (string, bool)
}

type recorderOptions struct {
	log             zerolog.Logger
	confirmTimeout  time.Duration
	confirmInterval time.Duration
}

// RecorderOption configures NewRecorder.
type RecorderOption func(*recorderOptions)

// WithLogger attaches a logger to the recorder.
func WithLogger(log zerolog.Logger) RecorderOption {
	return func(o *recorderOptions) { o.log = log }
}

// WithConfirmTimeout bounds the wait for a confirmation receipt.
func WithConfirmTimeout(d time.Duration) RecorderOption {
	return func(o *recorderOptions) { o.confirmTimeout = d }
}

// WithConfirmInterval sets the receipt polling cadence.
func WithConfirmInterval(d time.Duration) RecorderOption {
	return func(o *recorderOptions) { o.confirmInterval = d }
}

// NewRecorder resolves the signing key, verifies the network matches
// the deployment, and returns a live Recorder. Any failure returns the
// disabled variant after logging the reason once; initialization is
// never retried within a process.
func NewRecorder(ctx context.Context, keys KeyProvider, dep Deployment, contractABI abi.ABI, backend evmrpc.Client, opts ...RecorderOption) Recorder {
	o := recorderOptions{
		log:             zerolog.Nop(),
		confirmTimeout:  DefaultConfirmTimeout,
		confirmInterval: DefaultConfirmInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}

	disabled := func(reason string, err error) Recorder {
		o.log.Warn().Err(err).Str("reason", reason).Msg("ledger recording disabled")
		return disabledRecorder{}
	}

	hexKey, err := keys.PrivateKeyHex(ctx)
	if err != nil {
		return disabled("signing key unavailable via "+keys.Name(), err)
	}
	key, err := ParsePrivateKey(hexKey)
	if err != nil {
		return disabled("signing key invalid", err)
	}
	from := crypto.PubkeyToAddress(key.PublicKey)

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return disabled("network unreachable", err)
	}
	if dep.ChainID != nil && chainID.Cmp(dep.ChainID) != 0 {
		return disabled(fmt.Sprintf("connected chain %s, deployment expects %s", chainID, dep.ChainID), nil)
	}
	balance, err := backend.Balance(ctx, from)
	if err != nil {
		return disabled("balance check failed", err)
	}

	o.log.Info().
		Str("operator", from.Hex()).
		Str("contract", dep.Address.Hex()).
		Str("chain_id", chainID.String()).
		Str("balance", decimal.NewFromBigInt(balance, -RewardDecimals).String()).
		Msg("ledger recording enabled")

	return &liveRecorder{
		backend:         backend,
		contract:        dep.Address,
		chainID:         chainID,
		abi:             contractABI,
		key:             key,
		from:            from,
		confirmTimeout:  o.confirmTimeout,
		confirmInterval: o.confirmInterval,
		log:             o.log,
	}
}

// NewDisabledRecorder returns the no-op variant directly, for dry runs.
func NewDisabledRecorder() Recorder {
	return disabledRecorder{}
}

type liveRecorder struct {
	backend         evmrpc.Client
	contract        common.Address
	chainID         *big.Int
	abi             abi.ABI
	key             *ecdsa.PrivateKey
	from            common.Address
	confirmTimeout  time.Duration
	confirmInterval time.Duration
	log             zerolog.Logger
}

func (r *liveRecorder) Enabled() bool { return true }

func (r *liveRecorder) RecordActivity(ctx context.Context, chain, action string, details any) (string, bool) {
	detail, err := encodeDetails(details)
	if err != nil {
		r.log.Warn().Err(err).Str("action", action).Msg("activity details not serializable")
		return "", false
	}
	tx := r.submit(ctx, domain.TxKindActivity, MethodLogActivity, chain, action, detail)
	if tx.Status != domain.TxConfirmed {
		return "", false
	}
	return tx.TxHash, true
}

func (r *liveRecorder) RecordClaim(ctx context.Context, platform, externalID, title string, reward decimal.Decimal) (string, bool) {
	amount := reward.Shift(RewardDecimals).BigInt()
	tx := r.submit(ctx, domain.TxKindClaim, MethodRecordClaim, platform, externalID, title, amount)
	if tx.Status != domain.TxConfirmed {
		return "", false
	}
	return tx.TxHash, true
}

// encodeDetails serializes details to a bounded string. Strings pass
// through unquoted.
func encodeDetails(details any) (string, error) {
	s, ok := details.(string)
	if !ok {
		b, err := json.Marshal(details)
		if err != nil {
			return "", err
		}
		s = string(b)
	}
	if runes := []rune(s); len(runes) > MaxDetailLen {
		s = string(runes[:MaxDetailLen])
	}
	return s, nil
}

// submit runs the full submission protocol for one contract call and
// reports the resulting transaction record. Nonce and gas price are
// read fresh every time; the network, not the recorder, is the
// authority on both, so a failed submission needs no local rollback.
func (r *liveRecorder) submit(ctx context.Context, kind domain.TxKind, method string, args ...any) domain.LedgerTransaction {
	record := domain.LedgerTransaction{Kind: kind, Status: domain.TxFailed}
	fault := func(stage string, err error) domain.LedgerTransaction {
		r.log.Warn().Err(err).Str("method", method).Str("stage", stage).Msg("ledger submission failed")
		return record
	}

	nonce, err := r.backend.PendingNonce(ctx, r.from)
	if err != nil {
		return fault("nonce", err)
	}
	record.Nonce = nonce
	gasPrice, err := r.backend.GasPrice(ctx)
	if err != nil {
		return fault("gas_price", err)
	}
	record.GasPrice = gasPrice
	data, err := r.abi.Pack(method, args...)
	if err != nil {
		return fault("pack", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      GasLimit,
		To:       &r.contract,
		Value:    big.NewInt(0),
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(r.chainID), r.key)
	if err != nil {
		return fault("sign", err)
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return fault("encode", err)
	}

	hash, err := r.backend.SendRawTransaction(ctx, raw)
	if err != nil {
		return fault("broadcast", err)
	}
	record.TxHash = hash.Hex()
	r.log.Debug().
		Str("method", method).
		Str("kind", string(kind)).
		Uint64("nonce", nonce).
		Str("tx", record.TxHash).
		Msg("transaction broadcast")

	record.Status = r.awaitReceipt(ctx, method, hash)
	return record
}

// awaitReceipt polls for the receipt until the transaction settles or
// the confirmation window closes. A timed-out or cancelled wait leaves
// the status TxPending: the transaction may still land, the recorder
// just stops watching for it.
func (r *liveRecorder) awaitReceipt(ctx context.Context, method string, hash common.Hash) domain.TxStatus {
	deadline := time.Now().Add(r.confirmTimeout)
	for {
		receipt, err := r.backend.TransactionReceipt(ctx, hash)
		if err != nil {
			r.log.Warn().Err(err).Str("tx", hash.Hex()).Msg("receipt poll failed")
		} else if receipt != nil {
			if receipt.Successful() {
				r.log.Info().
					Str("method", method).
					Str("tx", hash.Hex()).
					Uint64("gas_used", uint64(receipt.GasUsed)).
					Msg("transaction confirmed")
				return domain.TxConfirmed
			}
			r.log.Warn().Str("method", method).Str("tx", hash.Hex()).Msg("transaction reverted")
			return domain.TxFailed
		}

		if time.Now().After(deadline) {
			r.log.Warn().
				Str("method", method).
				Str("tx", hash.Hex()).
				Dur("waited", r.confirmTimeout).
				Msg("confirmation timed out")
			return domain.TxPending
		}
		select {
		case <-ctx.Done():
			r.log.Warn().Err(ctx.Err()).Str("tx", hash.Hex()).Msg("confirmation wait cancelled")
			return domain.TxPending
		case <-time.After(r.confirmInterval):
		}
	}
}

// disabledRecorder is the permanent no-op variant. Its operations
// return "not recorded" without touching the network.
type disabledRecorder struct{}

func (disabledRecorder) Enabled() bool { return false }

func (disabledRecorder) RecordActivity(context.Context, string, string, any) (string, bool) {
	return "", false
}

func (disabledRecorder) RecordClaim(context.Context, string, string, string, decimal.Decimal) (string, bool) {
	return "", false
}
