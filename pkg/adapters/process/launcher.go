package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/ports"
)

// DefaultExecutable is the name of the external tool resolved through PATH.
const DefaultExecutable = "pipe"

// DefaultWaitDelay bounds how long Wait lingers on pipes held open by
// grandchildren after the tool itself has been killed.
const DefaultWaitDelay = 2 * time.Second

// Launcher implements ports.Launcher by spawning the external tool as a child process.
type Launcher struct {
	executable string
	baseArgs   []string
	env        map[string]string
	dir        string
	waitDelay  time.Duration
}

// Option configures the launcher.
type Option func(*Launcher)

// WithExecutable sets the path or name of the tool to invoke.
func WithExecutable(path string) Option {
	return func(l *Launcher) {
		if path != "" {
			l.executable = path
		}
	}
}

// WithBaseArgs sets arguments placed before every subcommand.
func WithBaseArgs(args ...string) Option {
	return func(l *Launcher) {
		l.baseArgs = args
	}
}

// WithEnv adds or overrides environment variables of the child.
func WithEnv(env map[string]string) Option {
	return func(l *Launcher) {
		l.env = env
	}
}

// WithBaseDir sets the working directory for spawned processes.
func WithBaseDir(dir string) Option {
	return func(l *Launcher) {
		l.dir = dir
	}
}

// WithWaitDelay overrides DefaultWaitDelay.
func WithWaitDelay(d time.Duration) Option {
	return func(l *Launcher) {
		l.waitDelay = d
	}
}

// NewLauncher creates a launcher for the external tool.
func NewLauncher(opts ...Option) *Launcher {
	l := &Launcher{
		executable: DefaultExecutable,
		waitDelay:  DefaultWaitDelay,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Executable returns the configured tool.
func (l *Launcher) Executable() string {
	return l.executable
}

// Start spawns `<executable> <base args> <argv>` with stdin detached and both
// output streams piped. The child is killed when ctx is done.
func (l *Launcher) Start(ctx context.Context, req domain.ActionRequest) (ports.Process, error) {
	args := make([]string, 0, len(l.baseArgs)+len(req.Args)+4)
	args = append(args, l.baseArgs...)
	args = append(args, req.Argv()...)

	cmd := exec.CommandContext(ctx, l.executable, args...)
	cmd.Dir = l.dir
	cmd.Env = mergeEnvironment(l.env)
	cmd.Stdin = nil
	cmd.WaitDelay = l.waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, l.spawnError(err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		_ = stdout.Close()
		return nil, l.spawnError(err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdout.Close()
		_ = stderr.Close()
		return nil, l.spawnError(err)
	}

	return &Child{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

func (l *Launcher) spawnError(err error) *domain.SpawnError {
	reason := domain.SpawnOSError
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		reason = domain.SpawnNotFound
	case errors.Is(err, fs.ErrPermission):
		reason = domain.SpawnPermissionDenied
	}
	return &domain.SpawnError{Executable: l.executable, Reason: reason, Err: err}
}

// Child is a running instance of the external tool.
type Child struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser
}

func (c *Child) Stdout() io.Reader { return c.stdout }
func (c *Child) Stderr() io.Reader { return c.stderr }

func (c *Child) PID() int {
	if c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}

// Wait returns the exit code. A child killed by a signal reports -1.
func (c *Child) Wait() (int, error) {
	err := c.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if errors.Is(err, exec.ErrWaitDelay) {
		return c.cmd.ProcessState.ExitCode(), nil
	}
	return -1, fmt.Errorf("wait for %s: %w", c.cmd.Path, err)
}

// Close closes both read ends. Reads blocked on either stream return an error.
func (c *Child) Close() error {
	return errors.Join(closeQuiet(c.stdout), closeQuiet(c.stderr))
}

func closeQuiet(rc io.Closer) error {
	if err := rc.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}

func mergeEnvironment(extra map[string]string) []string {
	base := os.Environ()
	if len(extra) == 0 {
		return base
	}
	merged := make([]string, 0, len(base)+len(extra))
	replaced := make(map[string]struct{}, len(extra))
	for _, kv := range base {
		equal := strings.IndexByte(kv, '=')
		if equal <= 0 {
			continue
		}
		key := kv[:equal]
		if value, ok := extra[key]; ok {
			merged = append(merged, key+"="+value)
			replaced[key] = struct{}{}
			continue
		}
		merged = append(merged, kv)
	}
	for key, value := range extra {
		if _, ok := replaced[key]; ok {
			continue
		}
		merged = append(merged, key+"="+value)
	}
	return merged
}
