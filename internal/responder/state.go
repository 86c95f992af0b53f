package responder

// State is the responder lifecycle position.
type State int

const (
	StateIdle State = iota
	StateListening
	StateServe
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateServe:
		return "serve"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// OutcomeKind classifies how one SERVE step ended.
type OutcomeKind int

const (
	OutcomeReplied OutcomeKind = iota
	OutcomeEmpty
	OutcomeDecodeFailed
	OutcomeRangeViolation
	OutcomeTransportFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeReplied:
		return "replied"
	case OutcomeEmpty:
		return "empty"
	case OutcomeDecodeFailed:
		return "decode_failed"
	case OutcomeRangeViolation:
		return "range_violation"
	case OutcomeTransportFailed:
		return "transport_failed"
	default:
		return "unknown"
	}
}
