package testutils

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

// RunStagerun executes a stagerun command with pre-split arguments. The returned
// exit code is -1 when the process could not be executed.
func RunStagerun(ctx context.Context, env []string, binary string, args []string, nolog bool) (stdout, stderr []byte, exitCode int, err error) {
	var outData, errData bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &outData
	cmd.Stderr = &errData

	// Set env: os.Environ() first, then custom env overrides on top.
	// In Go's exec.Cmd, when duplicate keys exist, the last one wins.
	newEnv := append([]string{}, os.Environ()...)
	newEnv = append(newEnv, env...)
	if nolog {
		newEnv = append(newEnv, "STAGERUN_NO_LOG=true")
	}
	cmd.Env = newEnv

	err = cmd.Run()
	if err == nil {
		return outData.Bytes(), errData.Bytes(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return outData.Bytes(), errData.Bytes(), exitErr.ExitCode(), nil
	}

	return outData.Bytes(), errData.Bytes(), -1, err
}
