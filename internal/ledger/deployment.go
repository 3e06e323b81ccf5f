package ledger

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
)

// Deployment locates the ledger contract on one network.
type Deployment struct {
	Address common.Address
	ChainID *big.Int
}

type deploymentFile struct {
	Address string `json:"address"`
	ChainID int64  `json:"chainId"`
}

// LoadDeployment reads a deployment descriptor, the JSON file written
// by the contract deploy step: {"address": "0x...", "chainId": N}.
func LoadDeployment(path string) (Deployment, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Deployment{}, fmt.Errorf("read deployment: %w", err)
	}
	var raw deploymentFile
	if err := json.Unmarshal(b, &raw); err != nil {
		return Deployment{}, fmt.Errorf("parse deployment: %w", err)
	}
	if !common.IsHexAddress(raw.Address) {
		return Deployment{}, fmt.Errorf("deployment address %q is not a valid address", raw.Address)
	}
	if raw.ChainID <= 0 {
		return Deployment{}, fmt.Errorf("deployment chain id %d is not positive", raw.ChainID)
	}
	return Deployment{
		Address: common.HexToAddress(raw.Address),
		ChainID: big.NewInt(raw.ChainID),
	}, nil
}
