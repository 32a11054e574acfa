package domain

import (
	"errors"
	"fmt"
)

// ErrSlotBusy is returned when an action is triggered on a slot whose current run has not completed.
var ErrSlotBusy = errors.New("action slot is busy")

// ErrSlotNotFound is returned when a slot has never been triggered or was torn down.
var ErrSlotNotFound = errors.New("action slot not found")

// ErrOutcomeNotFound is returned when a run ID cannot be found in the outcome store.
var ErrOutcomeNotFound = errors.New("outcome not found")

// ErrRemoteNotFound is returned when a remote name is absent from the upload log.
var ErrRemoteNotFound = errors.New("remote file not found in upload log")

// ErrInvalidRequest is returned when action parameters fail validation.
var ErrInvalidRequest = errors.New("invalid action request")

// ErrAlreadyComplete is returned when a completion is attempted twice on the same run.
var ErrAlreadyComplete = errors.New("run already complete")

// SpawnReason classifies why the external executable could not be started.
type SpawnReason string

const (
	SpawnNotFound         SpawnReason = "not_found"
	SpawnPermissionDenied SpawnReason = "permission_denied"
	SpawnOSError          SpawnReason = "os_error"
)

// SpawnError reports that the external executable could not be started.
type SpawnError struct {
	Executable string
	Reason     SpawnReason
	Err        error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s (%s): %v", e.Executable, e.Reason, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// RuntimeFailure reports that the external executable exited with a non-zero status.
type RuntimeFailure struct {
	ExitCode   int
	Diagnostic string
}

func (e *RuntimeFailure) Error() string {
	if e.Diagnostic == "" {
		return fmt.Sprintf("exit status %d", e.ExitCode)
	}
	return fmt.Sprintf("exit status %d: %s", e.ExitCode, e.Diagnostic)
}
