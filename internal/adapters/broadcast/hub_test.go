package broadcast_test

import (
	"context"
	"errors"
	"testing"
	"time"

	broadcast "github.com/surgecast/surgecast/internal/adapters/broadcast"
	"github.com/surgecast/surgecast/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var ctx = context.Background()

func snapshot(tick uint64) model.Snapshot {
	return model.Snapshot{
		Tick:    tick,
		TakenAt: time.Now(),
		Cities: map[string]model.CityState{
			"chicago": {CityID: "chicago", PriceMultiplier: 1.0},
		},
	}
}

func TestHub_SubscribePublish(t *testing.T) {
	Convey("Given a hub with one subscriber", t, func() {
		hub := broadcast.NewHub()
		sub, err := hub.Subscribe(ctx)
		So(err, ShouldBeNil)

		Convey("When a snapshot is published", func() {
			hub.Publish(ctx, snapshot(1))

			Convey("Then the subscriber should receive it", func() {
				select {
				case got := <-sub.C:
					So(got.Tick, ShouldEqual, 1)
				case <-time.After(time.Second):
					So("timed out waiting for snapshot", ShouldBeEmpty)
				}
			})
		})

		Convey("When two snapshots are published in order", func() {
			hub.Publish(ctx, snapshot(1))
			hub.Publish(ctx, snapshot(2))

			Convey("Then the subscriber should observe them in order", func() {
				first := <-sub.C
				second := <-sub.C
				So(first.Tick, ShouldEqual, 1)
				So(second.Tick, ShouldEqual, 2)
			})
		})

		Convey("When the subscriber unsubscribes", func() {
			err := hub.Unsubscribe(ctx, sub.ID)

			Convey("Then its channel should be closed", func() {
				So(err, ShouldBeNil)
				_, open := <-sub.C
				So(open, ShouldBeFalse)
				So(hub.SubscriberCount(), ShouldEqual, 0)
			})

			Convey("And a second unsubscribe should report unknown", func() {
				So(err, ShouldBeNil)
				err := hub.Unsubscribe(ctx, sub.ID)
				So(errors.Is(err, broadcast.ErrUnknownSubscriber), ShouldBeTrue)
			})
		})
	})
}

func TestHub_InitialSnapshot(t *testing.T) {
	Convey("Given a hub that has already published", t, func() {
		hub := broadcast.NewHub()
		hub.Publish(ctx, snapshot(7))

		Convey("When a subscriber joins late", func() {
			sub, err := hub.Subscribe(ctx)

			Convey("Then it should receive the latest snapshot immediately", func() {
				So(err, ShouldBeNil)
				select {
				case got := <-sub.C:
					So(got.Tick, ShouldEqual, 7)
				case <-time.After(time.Second):
					So("timed out waiting for initial snapshot", ShouldBeEmpty)
				}
			})
		})
	})
}

func TestHub_SlowSubscriber(t *testing.T) {
	Convey("Given a hub with a tiny queue and two subscribers", t, func() {
		hub := broadcast.NewHub(broadcast.WithSubscriberBuffer(1))

		slow, err := hub.Subscribe(ctx)
		So(err, ShouldBeNil)
		healthy, err := hub.Subscribe(ctx)
		So(err, ShouldBeNil)

		Convey("When only the healthy subscriber drains its queue", func() {
			hub.Publish(ctx, snapshot(1))
			first := <-healthy.C
			hub.Publish(ctx, snapshot(2))

			Convey("Then the slow subscriber should be dropped", func() {
				So(hub.SubscriberCount(), ShouldEqual, 1)

				// The queued snapshot drains, then the channel closes.
				got, open := <-slow.C
				So(open, ShouldBeTrue)
				So(got.Tick, ShouldEqual, 1)
				_, open = <-slow.C
				So(open, ShouldBeFalse)
			})

			Convey("And the healthy subscriber should keep receiving", func() {
				So(first.Tick, ShouldEqual, 1)
				second, open := <-healthy.C
				So(open, ShouldBeTrue)
				So(second.Tick, ShouldEqual, 2)
			})
		})
	})
}

func TestHub_Close(t *testing.T) {
	Convey("Given a hub with a subscriber", t, func() {
		hub := broadcast.NewHub()
		sub, err := hub.Subscribe(ctx)
		So(err, ShouldBeNil)

		Convey("When the hub closes", func() {
			hub.Close(ctx)

			Convey("Then the subscriber channel should close", func() {
				_, open := <-sub.C
				So(open, ShouldBeFalse)
			})

			Convey("And new subscriptions should be rejected", func() {
				_, err := hub.Subscribe(ctx)
				So(errors.Is(err, broadcast.ErrClosed), ShouldBeTrue)
			})

			Convey("And publishing should be a no-op", func() {
				hub.Publish(ctx, snapshot(9))
				So(hub.SubscriberCount(), ShouldEqual, 0)
			})
		})
	})
}
