package eventbus

import "errors"

// ErrUnexpectedEvent is returned when a handler receives an event of another type.
var ErrUnexpectedEvent = errors.New("eventbus: unexpected event type")
