package room

// DropReason says why an inbound action had no effect. Dropped actions
// are invisible to the sender by design; the reason exists for logs
// and tests, never for the wire.
type DropReason string

const (
	DropDecodeFailed       DropReason = "decode_failed"
	DropInvalidToken       DropReason = "invalid_token"
	DropMissingCoordinates DropReason = "missing_coordinates"
	DropOutOfRange         DropReason = "out_of_range"
	DropRedundant          DropReason = "redundant"
	DropStaleChannel       DropReason = "stale_channel"
)

// Outcome is the typed result of processing one inbound action.
type Outcome struct {
	Applied bool
	Reason  DropReason
}

func applied() Outcome {
	return Outcome{Applied: true}
}

func dropped(reason DropReason) Outcome {
	return Outcome{Reason: reason}
}
