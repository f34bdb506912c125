package discord

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of the Discord integration.
type ErrorKind int

const (
	// KindRequestFailed: non-2xx status or transport failure.
	KindRequestFailed ErrorKind = iota + 1
	// KindInvalidChannel: a channel id resolved to a response without a name.
	KindInvalidChannel
	// KindMalformedResponse: a write was acknowledged without the expected identifier.
	KindMalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindRequestFailed:
		return "request failed"
	case KindInvalidChannel:
		return "invalid channel"
	case KindMalformedResponse:
		return "malformed response"
	default:
		return "unknown"
	}
}

// JSON error codes Discord returns alongside a 404.
const (
	CodeUnknownChannel = 10003
	CodeUnknownMessage = 10008
)

// Sentinels for errors.Is; an *Error matches the sentinel of its Kind.
var (
	ErrRequestFailed     = errors.New("discord request failed")
	ErrInvalidChannel    = errors.New("invalid discord channel")
	ErrMalformedResponse = errors.New("malformed discord response")
)

// Error is the single error type returned by the Discord client.
type Error struct {
	Kind ErrorKind
	// StatusCode and Status (the reason phrase) are set for non-2xx responses;
	// zero for transport failures.
	StatusCode int
	Status     string
	// Body is the response text, when it could be read. Code is the JSON
	// error code Discord puts in it, or 0.
	Body      string
	Code      int
	ChannelID string
	Err       error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindRequestFailed:
		if e.StatusCode == 0 {
			return fmt.Sprintf("discord request failed: %v", e.Err)
		}
		msg := fmt.Sprintf("discord request failed: %d %s", e.StatusCode, e.Status)
		if e.Body != "" {
			msg += " - " + e.Body
		}
		return msg
	case KindInvalidChannel:
		return fmt.Sprintf("invalid discord channel id: %s", e.ChannelID)
	case KindMalformedResponse:
		if e.Err != nil {
			return fmt.Sprintf("malformed discord response: %v", e.Err)
		}
		return "malformed discord response"
	default:
		return "discord error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrRequestFailed:
		return e.Kind == KindRequestFailed
	case ErrInvalidChannel:
		return e.Kind == KindInvalidChannel
	case ErrMalformedResponse:
		return e.Kind == KindMalformedResponse
	}
	return false
}

// KindOf returns the kind of a Discord error anywhere in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// IsNotFound reports whether err is a failed request answered with 404.
func IsNotFound(err error) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == KindRequestFailed && de.StatusCode == 404
}

// IsUnknownChannel reports whether Discord rejected the call because the
// channel itself does not exist.
func IsUnknownChannel(err error) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == KindRequestFailed && de.StatusCode == 404 && de.Code == CodeUnknownChannel
}
