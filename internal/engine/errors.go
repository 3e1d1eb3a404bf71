package engine

import "errors"

// Failure categories. Commands wrap one of these in Outcome.Err; callers
// match with errors.Is. None of them leaves a partial mutation behind.
var (
	ErrInsufficientResources  = errors.New("insufficient resources")
	ErrInvalidWorkerOperation = errors.New("invalid worker operation")
	ErrNoApplicableTarget     = errors.New("no applicable target")

	ErrUnavailable    = errors.New("command unavailable")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownItem    = errors.New("unknown item")
	ErrInvalidState   = errors.New("invalid game state")

	// ErrNoWorkers marks a production command with nobody to do the work.
	// It is a no-op rather than a failure, so Outcome.OK stays true.
	ErrNoWorkers = errors.New("no workers assigned")
)
