package advisor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Oracle produces free-form text in response to a prompt. Implementations
// must honor ctx cancellation; everything else about the response is
// untrusted.
type Oracle interface {
	Name() string
	Ask(ctx context.Context, prompt string) (string, error)
}

// DefaultCLIBinary is the reasoning CLI invoked when none is configured.
const DefaultCLIBinary = "claude"

// CLIOracle shells out to a reasoning CLI, passing the prompt as the final
// argument and reading the reply from stdout. The process is killed when
// ctx expires.
type CLIOracle struct {
	binary string
	args   []string
}

// NewCLIOracle creates a subprocess oracle. With no args the binary is
// invoked as `<binary> -p <prompt>`.
func NewCLIOracle(binary string, args ...string) *CLIOracle {
	if binary == "" {
		binary = DefaultCLIBinary
	}
	if len(args) == 0 {
		args = []string{"-p"}
	}
	return &CLIOracle{binary: binary, args: args}
}

// Name identifies the oracle in logs.
func (o *CLIOracle) Name() string {
	return "cli:" + o.binary
}

// Ask runs the CLI once and returns its stdout.
func (o *CLIOracle) Ask(ctx context.Context, prompt string) (string, error) {
	argv := make([]string, 0, len(o.args)+1)
	argv = append(argv, o.args...)
	argv = append(argv, prompt)

	cmd := exec.CommandContext(ctx, o.binary, argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("oracle killed: %w", ctx.Err())
		}
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > 200 {
			detail = detail[:200]
		}
		if detail != "" {
			return "", fmt.Errorf("oracle process: %w: %s", err, detail)
		}
		return "", fmt.Errorf("oracle process: %w", err)
	}
	return stdout.String(), nil
}
