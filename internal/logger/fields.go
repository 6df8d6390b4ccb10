package logger

// Shared field keys, so log lines stay greppable across the wire layer.
const (
	KeyCircuit  = "circuit"
	KeyEndpoint = "endpoint"
	KeyPacket   = "packet"
	KeySequence = "sequence"
	KeyAttempt  = "attempt"
	KeyError    = "error"
)
