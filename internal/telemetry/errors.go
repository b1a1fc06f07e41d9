package telemetry

import "errors"

// Shared error taxonomy. Callers classify with errors.Is; producers wrap
// these with context via fmt.Errorf and %w.
var (
	// ErrInvalidParameter marks a nil or malformed argument.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrOutOfRange marks an id or value outside its permitted range.
	ErrOutOfRange = errors.New("out of range")
	// ErrTimeout marks data older than its staleness window.
	ErrTimeout = errors.New("timeout")
	// ErrBusy marks a resource that cannot be taken right now.
	ErrBusy = errors.New("busy")
	// ErrPoolExhausted marks a fixed-capacity pool with no free slot.
	ErrPoolExhausted = errors.New("pool exhausted")
	// ErrHardware marks a source or device fault.
	ErrHardware = errors.New("hardware fault")
	// ErrConfig marks an invalid or inconsistent configuration.
	ErrConfig = errors.New("configuration error")
	// ErrNotInitialized marks use of a component before successful init.
	ErrNotInitialized = errors.New("not initialized")
	// ErrIntegrity marks a snapshot whose checksum does not match its
	// payload.
	ErrIntegrity = errors.New("integrity mismatch")
)
