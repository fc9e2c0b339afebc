package model

// ExecResult contains the result of a step execution.
type ExecResult struct {
	// ExitCode is the exit code of the executed command.
	ExitCode int
	// Output is the tail of the combined stdout and stderr of the command.
	Output string
}
