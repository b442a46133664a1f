package transport

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PackTeam converts an exported team into the engine's packed format by
// running command (typically "<engine> pack-team") with the team on stdin.
func PackTeam(ctx context.Context, command []string, dir, team string) (string, error) {
	if len(command) == 0 {
		return "", fmt.Errorf("transport: empty pack-team command")
	}
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(team)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("transport: pack-team: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
