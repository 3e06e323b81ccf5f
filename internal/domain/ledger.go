package domain

import "math/big"

// TxStatus represents the lifecycle state of a ledger write.
type TxStatus string

const (
	TxPending   TxStatus = "PENDING"
	TxConfirmed TxStatus = "CONFIRMED"
	TxFailed    TxStatus = "FAILED"
)

// String returns the string representation of TxStatus.
func (s TxStatus) String() string {
	return string(s)
}

// Terminal reports whether the status is a final state.
func (s TxStatus) Terminal() bool {
	return s == TxConfirmed || s == TxFailed
}

// TxKind distinguishes the two ledger payload shapes.
type TxKind string

const (
	TxKindActivity TxKind = "activity"
	TxKindClaim    TxKind = "claim"
)

// LedgerTransaction records one write to the ledger contract, from
// broadcast through confirmation. A non-terminal status means the
// outcome was never observed within the confirmation window.
type LedgerTransaction struct {
	Kind     TxKind
	Nonce    uint64
	GasPrice *big.Int
	TxHash   string
	Status   TxStatus
}
