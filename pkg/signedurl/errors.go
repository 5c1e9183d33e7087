package signedurl

import "errors"

// Reason distinguishes verification failures for diagnostics. Callers outside
// the gateway should see one uniform rejection.
type Reason string

const (
	ReasonMalformed Reason = "malformed"
	ReasonExpired   Reason = "expired"
	ReasonInvalid   Reason = "invalid"
)

// ErrSignature matches every *Error with errors.Is.
var ErrSignature = errors.New("signed url rejected")

// Error reports why a token failed verification.
type Error struct {
	Reason Reason
	Detail string
}

func newError(reason Reason, detail string) *Error {
	return &Error{Reason: reason, Detail: detail}
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return "signed url " + string(e.Reason)
	}
	return "signed url " + string(e.Reason) + ": " + e.Detail
}

func (e *Error) Is(target error) bool {
	return target == ErrSignature
}

// ReasonOf extracts the failure reason, or "" if err is not a signature error.
func ReasonOf(err error) Reason {
	var sigErr *Error
	if errors.As(err, &sigErr) {
		return sigErr.Reason
	}
	return ""
}
