package passthrough

// Status is the synchronous result of a decode-session operation. Values
// mirror the status codes a WebRTC video decoder reports to the network
// stack; the caller is expected to branch on them rather than on errors.
type Status int

const (
	// StatusOK means the operation succeeded.
	StatusOK Status = iota

	// StatusError is a recoverable stream-integrity failure. The caller
	// should request a key frame upstream and keep the session alive.
	StatusError

	// StatusErrParameter means the operation was rejected because of
	// missing or invalid parameters. No state was mutated.
	StatusErrParameter

	// StatusUninitialized means the session has no usable platform decoder.
	StatusUninitialized

	// StatusFallbackSoftware tells the caller to route this stream to a
	// software decoder. Once reported from Decode it is permanent for the
	// lifetime of the session.
	StatusFallbackSoftware

	// StatusNoOutput means the frame was consumed but produced no output.
	StatusNoOutput
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "Error"
	case StatusErrParameter:
		return "ErrParameter"
	case StatusUninitialized:
		return "Uninitialized"
	case StatusFallbackSoftware:
		return "FallbackSoftware"
	case StatusNoOutput:
		return "NoOutput"
	default:
		return "Unknown"
	}
}
