package common

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"

	"github.com/okarpov/pack-forge/internal/domain/pack"
)

// RunShell executes a shell command line in dir and returns its combined
// output. A non-zero exit is reported as a pack.CommandError carrying the
// command and its output verbatim. The call blocks until the subprocess
// exits; cancellation via ctx kills the process.
func RunShell(ctx context.Context, dir, command string) (string, error) {
	shell, flag := shellInvocation()

	cmd := exec.CommandContext(ctx, shell, flag, command)
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		exitCode := -1

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		return string(output), &pack.CommandError{
			Command:  command,
			ExitCode: exitCode,
			Output:   string(output),
		}
	}

	return string(output), nil
}

// shellInvocation returns the host shell and its command flag.
func shellInvocation() (string, string) {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return "cmd.exe", "/C"
	}

	return "sh", "-c"
}
