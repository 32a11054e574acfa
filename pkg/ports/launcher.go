package ports

import (
	"context"
	"io"

	"github.com/aretw0/pipedeck/pkg/domain"
)

// Process is a started child of the external tool.
type Process interface {
	Stdout() io.Reader
	Stderr() io.Reader

	// Wait blocks until the child exits and returns its exit code.
	// It must only be called after both streams reached end of input.
	// A non-zero exit is not an error; err reports a failure to wait.
	Wait() (exitCode int, err error)

	// Close releases both stream read ends so blocked reads return.
	Close() error

	PID() int
}

// Launcher starts the external tool.
type Launcher interface {
	// Start spawns the tool for req. Failures to start are *domain.SpawnError.
	Start(ctx context.Context, req domain.ActionRequest) (Process, error)
}
