package schema

import "errors"

var (
	// ErrTabNotFound indicates a requested tab could not be found.
	ErrTabNotFound = errors.New("tab not found")
	// ErrInvalidPanel indicates an unknown sidebar panel name.
	ErrInvalidPanel = errors.New("invalid panel")
	// ErrEmptyMessage indicates the chat message was empty.
	ErrEmptyMessage = errors.New("empty message")
	// ErrAssistantBusy indicates an assistant request is already in flight.
	ErrAssistantBusy = errors.New("assistant is busy")
	// ErrInvalidConfig indicates the service configuration is unusable.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrAssistantUnavailable indicates no assistant is configured.
	ErrAssistantUnavailable = errors.New("assistant not configured")
)
