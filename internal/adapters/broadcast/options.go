package broadcast

// Default hub configuration constants.
const (
	defaultSubscriberBuffer = 16
)

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithSubscriberBuffer sets the per-subscriber queue depth.
func WithSubscriberBuffer(size int) Option {
	return func(h *Hub) {
		if size > 0 {
			h.buffer = size
		}
	}
}
