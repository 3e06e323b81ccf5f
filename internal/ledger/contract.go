package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"bountyledger/internal/evmrpc"
)

// Contract function and event names, as deployed.
const (
	MethodLogActivity = "logActivity"
	MethodRecordClaim = "recordClaim"

	EventActivityLogged = "ActivityLogged"
	EventClaimRecorded  = "ClaimRecorded"
)

// LoadABI reads a contract interface description from a JSON artifact,
// either a bare ABI array or a compiler artifact with an "abi" field.
func LoadABI(path string) (abi.ABI, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("read abi: %w", err)
	}
	return ParseABI(b)
}

// ParseABI parses ABI JSON, accepting the same two shapes as LoadABI.
func ParseABI(b []byte) (abi.ABI, error) {
	parsed, err := abi.JSON(bytes.NewReader(b))
	if err == nil {
		return parsed, nil
	}
	// Compiler artifacts wrap the array in an object.
	var artifact struct {
		ABI json.RawMessage `json:"abi"`
	}
	if jsonErr := json.Unmarshal(b, &artifact); jsonErr == nil && len(artifact.ABI) > 0 {
		return abi.JSON(bytes.NewReader(artifact.ABI))
	}
	return abi.ABI{}, fmt.Errorf("parse abi: %w", err)
}

// Event is a decoded contract log, ready for display.
type Event struct {
	Name    string
	TxHash  common.Hash
	Block   uint64
	Removed bool
	Fields  map[string]any
}

// DecodeEvent resolves a raw log against the contract interface. Logs
// whose first topic matches no known event return an error.
func DecodeEvent(contractABI abi.ABI, lg evmrpc.Log) (Event, error) {
	if len(lg.Topics) == 0 {
		return Event{}, fmt.Errorf("log %s has no topics", lg.TransactionHash.Hex())
	}
	def, err := contractABI.EventByID(lg.Topics[0])
	if err != nil {
		return Event{}, fmt.Errorf("unknown event topic %s", lg.Topics[0].Hex())
	}

	fields := make(map[string]any)
	if err := def.Inputs.NonIndexed().UnpackIntoMap(fields, lg.Data); err != nil {
		return Event{}, fmt.Errorf("unpack %s data: %w", def.Name, err)
	}
	var indexed abi.Arguments
	for _, arg := range def.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if len(indexed) > 0 {
		if err := abi.ParseTopicsIntoMap(fields, indexed, lg.Topics[1:]); err != nil {
			return Event{}, fmt.Errorf("unpack %s topics: %w", def.Name, err)
		}
	}

	return Event{
		Name:    def.Name,
		TxHash:  lg.TransactionHash,
		Block:   uint64(lg.BlockNumber),
		Removed: lg.Removed,
		Fields:  fields,
	}, nil
}
