package stream

import "errors"

var (
	// ErrConnectionFailed is returned by Connect when the initial heartbeat
	// could not be delivered. The registration is rolled back.
	ErrConnectionFailed = errors.New("stream: connection failed")

	// ErrConnectionClosed is returned when writing to a closed connection.
	ErrConnectionClosed = errors.New("stream: connection closed")

	// ErrSendFailed wraps transport errors of Send and SendUnreadCountUpdate.
	ErrSendFailed = errors.New("stream: send failed")
)
