package ports

// ErrorSink receives failures from detached side effects (execution logging,
// usage increments). Implementations must not block.
type ErrorSink interface {
	Report(op string, err error)
}
