package model

// PinLength is the fixed number of digits of a transaction PIN.
const PinLength = 6

// PinMode is the phase of a PIN entry session.
type PinMode string

const (
	PinModeDetecting     PinMode = "detecting"      // asking the remote service whether a PIN exists
	PinModeCreateFirst   PinMode = "create_first"   // first entry of a new PIN
	PinModeCreateConfirm PinMode = "create_confirm" // confirmation entry of a new PIN
	PinModeVerify        PinMode = "verify"         // verification of an existing PIN
	PinModeSubmitted     PinMode = "submitted"      // terminal; order was released or rejected
	PinModeCancelled     PinMode = "cancelled"      // terminal; order discarded
)

// PinSession holds the transient digit buffers of one authorization attempt.
// PIN material and lockout counters live on the remote service; this struct
// is never persisted.
type PinSession struct {
	Mode    PinMode
	Entered []byte // accumulated digits of the active buffer
	Confirm []byte
}
