package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/softspec/packages/logging"
)

// executeHooks runs commands in order and stops at the first failure.
// A command prefixed with "-" may fail without stopping the others.
func (r *Runner) executeHooks(ctx context.Context, commands []string, baseDir string, resolve func(string) string, logger logging.Logger) error {
	for _, command := range commands {
		if err := r.executeHook(ctx, command, baseDir, resolve, logger); err != nil {
			return err
		}
	}
	return nil
}

// executeHook executes a single hook command
func (r *Runner) executeHook(ctx context.Context, command, baseDir string, resolve func(string) string, logger logging.Logger) error {
	cmdStr := strings.TrimSpace(resolve(command))
	if cmdStr == "" {
		return nil
	}

	ignoreError := strings.HasPrefix(cmdStr, "-")
	if ignoreError {
		cmdStr = strings.TrimSpace(strings.TrimPrefix(cmdStr, "-"))
	}

	// Relative executables are looked up next to the scenario file
	parts := strings.Fields(cmdStr)
	if len(parts) > 0 {
		executable := parts[0]
		if strings.HasPrefix(executable, "./") || strings.HasPrefix(executable, "../") {
			parts[0] = filepath.Join(baseDir, executable)
			cmdStr = strings.Join(parts, " ")
		} else if !filepath.IsAbs(executable) && !isInPath(executable) {
			potentialPath := filepath.Join(baseDir, executable)
			if _, err := os.Stat(potentialPath); err == nil {
				parts[0] = potentialPath
				cmdStr = strings.Join(parts, " ")
			}
		}
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", cmdStr)
	cmd.Dir = baseDir
	cmd.Env = os.Environ()

	output, err := cmd.CombinedOutput()
	if r.config.Verbose && len(output) > 0 {
		logger.Debug("hook output", logging.String("command", command), logging.String("output", string(output)))
	}
	if err != nil {
		if ignoreError {
			logger.Warn("hook failed (ignored)", logging.String("command", command), logging.Err(err))
			return nil
		}
		return fmt.Errorf("command %q failed: %v\nOutput: %s", command, err, string(output))
	}
	return nil
}

// isInPath checks if a command is available in the system PATH
func isInPath(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}
