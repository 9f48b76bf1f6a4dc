package relay

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or message failed validation.
	ErrValidation = errors.New("validation error")

	// ErrProviderUnavailable indicates the upstream model service could not
	// be reached or rejected the request before producing any output.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrProviderInterrupted indicates the upstream stream failed after
	// producing partial output. Fragments already emitted stand.
	ErrProviderInterrupted = errors.New("provider interrupted")

	// ErrStreamNotReady indicates Message() was called before Next().
	ErrStreamNotReady = errors.New("stream not ready: call Next() first")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrToolNotFound indicates the requested tool does not exist.
	ErrToolNotFound = errors.New("tool not found")

	// ErrKitDisconnected indicates the Kit extension dropped its tool
	// connection while a call was pending or before one could be sent.
	ErrKitDisconnected = errors.New("kit disconnected")
)
