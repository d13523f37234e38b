package provision

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// RunCmdStream runs a command with output attached to the terminal.
func RunCmdStream(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// RunCmdCapture runs a command and returns combined output.
func RunCmdCapture(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// ComposeArgs builds the shared prefix for every docker compose invocation
// against this deployment.
func ComposeArgs(cfg DeploymentConfig) []string {
	return []string{
		"compose",
		"-f", filepath.Join(cfg.Home, "compose.yml"),
		"--env-file", filepath.Join(cfg.Home, ".env"),
		"-p", ProjectName,
	}
}
