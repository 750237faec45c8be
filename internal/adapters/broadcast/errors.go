package broadcast

import "errors"

var (
	// ErrClosed indicates the hub has shut down.
	ErrClosed = errors.New("hub closed")
	// ErrUnknownSubscriber indicates the subscription id is not registered.
	ErrUnknownSubscriber = errors.New("unknown subscriber")
)
