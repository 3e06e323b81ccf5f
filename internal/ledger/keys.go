package ledger

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// KeyProvider resolves the recorder's signing key from wherever the
// deployment keeps it. A failure here disables recording for the
// process lifetime rather than aborting the run.
type KeyProvider interface {
	// Name identifies the provider in log output.
	Name() string

	// PrivateKeyHex returns the hex-encoded private key. Surrounding
	// whitespace and a 0x prefix are tolerated by the caller.
	PrivateKeyHex(ctx context.Context) (string, error)
}

// EnvKeyProvider reads the key from an environment variable.
type EnvKeyProvider struct {
	Var string
}

func (p EnvKeyProvider) Name() string { return "env:" + p.Var }

func (p EnvKeyProvider) PrivateKeyHex(ctx context.Context) (string, error) {
	v := os.Getenv(p.Var)
	if v == "" {
		return "", fmt.Errorf("environment variable %s is not set", p.Var)
	}
	return v, nil
}

// FileKeyProvider reads the key from a file.
type FileKeyProvider struct {
	Path string
}

func (p FileKeyProvider) Name() string { return "file:" + p.Path }

func (p FileKeyProvider) PrivateKeyHex(ctx context.Context) (string, error) {
	b, err := os.ReadFile(p.Path)
	if err != nil {
		return "", fmt.Errorf("read key file: %w", err)
	}
	return string(b), nil
}

// CommandKeyProvider runs an external command and takes its stdout as
// the key, for setups that keep credentials in an OS keychain or a
// secrets CLI.
type CommandKeyProvider struct {
	Command string
	Args    []string
}

func (p CommandKeyProvider) Name() string { return "command:" + p.Command }

func (p CommandKeyProvider) PrivateKeyHex(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, p.Command, p.Args...).Output()
	if err != nil {
		return "", fmt.Errorf("run %s: %w", p.Command, err)
	}
	return string(out), nil
}

// ParsePrivateKey decodes a hex-encoded secp256k1 private key,
// tolerating surrounding whitespace and a 0x prefix.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	return key, nil
}
