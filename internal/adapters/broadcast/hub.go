// Package broadcast fans tick snapshots out to subscribers. Each subscriber
// owns a bounded queue; one slow consumer is disconnected rather than
// allowed to stall the publish step or its peers.
package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/surgecast/surgecast/internal/domain/model"
	"github.com/surgecast/surgecast/pkg/logger"
	"github.com/surgecast/surgecast/pkg/metrics"
)

// Subscription is one subscriber's handle. C is closed when the subscriber
// is dropped or the hub shuts down.
type Subscription struct {
	ID uuid.UUID
	C  <-chan model.Snapshot
}

type subscriber struct {
	ch     chan model.Snapshot
	closed bool
}

// Hub is the pub/sub distribution layer between the scheduler and the
// transport adapters.
type Hub struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]*subscriber
	last   *model.Snapshot
	buffer int
	closed bool
	log    logger.Logger
}

// NewHub creates a hub with configuration options.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:   make(map[uuid.UUID]*subscriber),
		buffer: defaultSubscriberBuffer,
		log:    logger.Named("broadcast"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Subscribe registers a new subscriber. If a snapshot has already been
// published the subscriber receives it immediately, so late joiners are not
// blank until the next tick.
func (h *Hub) Subscribe(ctx context.Context) (Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return Subscription{}, ErrClosed
	}

	id := uuid.New()
	sub := &subscriber{ch: make(chan model.Snapshot, h.buffer)}
	if h.last != nil {
		sub.ch <- h.last.Clone()
	}
	h.subs[id] = sub

	metrics.RecordHubConnect()
	metrics.UpdateHubSubscribers(len(h.subs))

	h.log.Debug(ctx, "subscriber joined",
		logger.String("subscriber_id", id.String()),
		logger.Int("subscribers", len(h.subs)),
	)

	return Subscription{ID: id, C: sub.ch}, nil
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(ctx context.Context, id uuid.UUID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[id]
	if !ok {
		return ErrUnknownSubscriber
	}
	h.dropLocked(id, sub)

	h.log.Debug(ctx, "subscriber left",
		logger.String("subscriber_id", id.String()),
		logger.Int("subscribers", len(h.subs)),
	)

	return nil
}

// Publish delivers a snapshot to every subscriber without blocking. A
// subscriber whose queue is full is dropped; its failure never reaches the
// scheduler or other subscribers.
func (h *Hub) Publish(ctx context.Context, snapshot model.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	clone := snapshot.Clone()
	h.last = &clone

	for id, sub := range h.subs {
		select {
		case sub.ch <- snapshot.Clone():
			metrics.RecordHubDelivery()
		default:
			h.dropLocked(id, sub)
			metrics.RecordHubDroppedClient()
			h.log.Warn(ctx, "dropping slow subscriber",
				logger.String("subscriber_id", id.String()),
				logger.Any("tick", snapshot.Tick),
			)
		}
	}

	metrics.RecordSnapshotPublished()
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close drops every subscriber and rejects further subscriptions.
func (h *Hub) Close(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for id, sub := range h.subs {
		h.dropLocked(id, sub)
	}

	h.log.Info(ctx, "hub closed")
}

// dropLocked removes one subscriber. Caller holds h.mu.
func (h *Hub) dropLocked(id uuid.UUID, sub *subscriber) {
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
	delete(h.subs, id)

	metrics.RecordHubDisconnect()
	metrics.UpdateHubSubscribers(len(h.subs))
}
