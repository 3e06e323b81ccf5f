package evmrpc

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Client is the chain surface the recorder depends on. Implemented by
// HTTPClient; tests substitute fakes.
type Client interface {
	// ChainID returns the network's chain identifier.
	ChainID(ctx context.Context) (*big.Int, error)

	// PendingNonce returns the account's transaction count including
	// pending transactions, which is the next nonce to use.
	PendingNonce(ctx context.Context, addr common.Address) (uint64, error)

	// GasPrice returns the current market gas price.
	GasPrice(ctx context.Context) (*big.Int, error)

	// Balance returns the account's latest balance in wei.
	Balance(ctx context.Context, addr common.Address) (*big.Int, error)

	// SendRawTransaction broadcasts a signed transaction.
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)

	// TransactionReceipt returns the receipt for a transaction, or nil
	// while the transaction is still pending.
	TransactionReceipt(ctx context.Context, hash common.Hash) (*Receipt, error)
}

// Receipt status values reported by the execution layer.
const (
	ReceiptStatusFailed     = uint64(0)
	ReceiptStatusSuccessful = uint64(1)
)

// Receipt is the subset of a transaction receipt the recorder inspects.
type Receipt struct {
	TransactionHash common.Hash    `json:"transactionHash"`
	BlockNumber     *hexutil.Big   `json:"blockNumber"`
	GasUsed         hexutil.Uint64 `json:"gasUsed"`
	Status          hexutil.Uint64 `json:"status"`
}

// Successful reports whether the transaction executed without reverting.
func (r *Receipt) Successful() bool {
	return uint64(r.Status) == ReceiptStatusSuccessful
}
