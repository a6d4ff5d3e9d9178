package appfactory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/leofalp/replicator/providers/observability"
)

// ErrNoBuildOutput is returned when the build did not produce an out/
// directory.
var ErrNoBuildOutput = errors.New("build output not found")

// Runner runs one external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// CommandError reports a command that failed, with its standard error.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Command, e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), &CommandError{
			Command: strings.Join(append([]string{name}, args...), " "),
			Stderr:  stderr.String(),
			Err:     err,
		}
	}
	return stdout.String(), nil
}

// Operator builds a static export of an assembled app and uploads it.
type Operator struct {
	runner   Runner
	observer observability.Provider
}

// NewOperator returns an Operator. A nil runner uses ExecRunner; a nil
// observer disables logging.
func NewOperator(runner Runner, observer observability.Provider) *Operator {
	if runner == nil {
		runner = ExecRunner{}
	}
	if observer == nil {
		observer = observability.Nop()
	}
	return &Operator{runner: runner, observer: observer}
}

// Deploy runs npm install and npm run build in appDir, then uploads
// <appDir>/out with pinme. It returns pinme's trimmed output.
func (o *Operator) Deploy(ctx context.Context, appDir string) (string, error) {
	o.observer.Info(ctx, "operator: deploying app", observability.String(observability.AttrAppDir, appDir))

	o.observer.Info(ctx, "operator: building static export")
	for _, args := range [][]string{{"install"}, {"run", "build"}} {
		if _, err := o.run(ctx, appDir, "npm", args...); err != nil {
			return "", fmt.Errorf("operator: build failed: %w", err)
		}
	}

	outDir := filepath.Join(appDir, "out")
	info, err := os.Stat(outDir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("operator: %w: %s", ErrNoBuildOutput, outDir)
	}

	o.observer.Info(ctx, "operator: uploading with pinme", observability.String("path", outDir))
	output, err := o.run(ctx, "", "pinme", "upload", outDir)
	if err != nil {
		return "", fmt.Errorf("operator: deployment failed: %w", err)
	}

	output = strings.TrimSpace(output)
	o.observer.Info(ctx, "operator: deployed", observability.String("output", output))
	return output, nil
}

func (o *Operator) run(ctx context.Context, dir, name string, args ...string) (string, error) {
	command := strings.Join(append([]string{name}, args...), " ")
	o.observer.Debug(ctx, "operator: running command", observability.String(observability.AttrCommand, command))

	output, err := o.runner.Run(ctx, dir, name, args...)
	if err != nil {
		o.observer.Error(ctx, "operator: command failed",
			observability.String(observability.AttrCommand, command),
			observability.Error(err),
		)
		return "", err
	}
	return output, nil
}
