package gimp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Named batch operations exposed by the renderer script. Each takes an input
// folder of staged artwork and writes rendered card images to the output
// folder.
const (
	OpDatabase         = "prepare-db-output-folder"
	OpPDFFront         = "prepare-pdf-front-folder"
	OpPDFBack          = "prepare-pdf-back-folder"
	OpMakePlayingCards = "prepare-makeplayingcards-folder"
	OpDriveThruCards   = "prepare-drivethrucards-folder"
)

// Renderer defines the behaviour required by the rendering stage.
type Renderer interface {
	Prepare(ctx context.Context, op, inputDir, outputDir string) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps console GIMP interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs a GIMP client.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("gimp binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Prepare runs one named batch operation synchronously. A non-zero exit is
// returned as an error; the caller decides what that means for the pair.
func (c *Client) Prepare(ctx context.Context, op, inputDir, outputDir string) error {
	if strings.TrimSpace(op) == "" {
		return errors.New("operation name required")
	}
	if inputDir == "" || outputDir == "" {
		return errors.New("input and output directories required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create render output: %w", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{
		"-i", "-d", "-f",
		"--batch-interpreter=python-fu-eval",
		"-b", batchCall(op, inputDir, outputDir),
		"-b", "pass",
	}
	if err := c.exec.Run(runCtx, c.binary, args, nil); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("gimp %s timed out after %s: %w", op, c.timeout, err)
		}
		return fmt.Errorf("gimp %s: %w", op, err)
	}
	return nil
}

// batchCall builds the python-fu expression for one operation. Operation
// names map to renderer functions by replacing dashes with underscores.
func batchCall(op, inputDir, outputDir string) string {
	fn := strings.ReplaceAll(op, "-", "_")
	return fmt.Sprintf("%s(%s, %s)", fn, pyQuote(inputDir), pyQuote(outputDir))
}

func pyQuote(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + replacer.Replace(s) + "'"
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	forward := func(line string) {
		if onOutput != nil {
			onOutput(line)
			return
		}
		fmt.Fprintln(os.Stderr, line)
	}
	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			forward(scanner.Text())
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
