package voice

import (
	"errors"
	"fmt"
)

// ErrorKind classifies voice errors by how they propagate: device and
// connect failures tear the session down, decode and tool-argument failures
// are contained to the event that caused them.
type ErrorKind int

const (
	// KindDevice covers microphone acquisition failures. Fatal to connect.
	KindDevice ErrorKind = iota
	// KindConnect covers remote handshake failures. Fatal to connect.
	KindConnect
	// KindDecode covers malformed inbound audio. The chunk is dropped.
	KindDecode
	// KindProtocol covers remote errors and unexpected closes. Tears the
	// session down.
	KindProtocol
	// KindToolArgument covers malformed tool-call arguments. Reported back
	// as an error result, never fatal.
	KindToolArgument
)

// Error is the typed error for voice operations.
type Error struct {
	Kind    ErrorKind
	message string
	cause   error
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, message: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, cause error, message string) *Error {
	return &Error{Kind: kind, message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}

	return e.message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsKind reports whether err is a voice error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ve *Error
	return errors.As(err, &ve) && ve.Kind == kind
}
