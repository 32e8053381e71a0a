package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"casteaching-go/internal/model"

	. "github.com/smartystreets/goconvey/convey"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestDispatcher(t *testing.T) {
	Convey("Given a dispatcher", t, func() {
		d := NewDispatcher(50 * time.Millisecond)
		rec := &recorder{}
		d.Register("recorder", rec)

		video := model.Video{ID: 7, Title: "Ubuntu 101"}

		Convey("Events reach every publisher", func() {
			d.Dispatch(NewVideoCreated(video))
			d.Wait()

			events := rec.Events()
			So(len(events), ShouldEqual, 1)
			So(events[0].Name(), ShouldEqual, TypeVideoCreated)
		})

		Convey("A failing publisher does not affect the others", func() {
			d.Register("failing", PublisherFunc(func(context.Context, Event) error {
				return errors.New("broker down")
			}))
			d.Dispatch(NewVideoDeleted(7))
			d.Wait()

			So(len(rec.Events()), ShouldEqual, 1)
		})

		Convey("A panicking publisher is recovered", func() {
			d.Register("panicking", PublisherFunc(func(context.Context, Event) error {
				panic("boom")
			}))
			So(func() {
				d.Dispatch(NewVideoUpdated(video))
				d.Wait()
			}, ShouldNotPanic)
			So(len(rec.Events()), ShouldEqual, 1)
		})

		Convey("Dispatch does not wait for slow publishers", func() {
			release := make(chan struct{})
			var sawDeadline bool
			d.Register("slow", PublisherFunc(func(ctx context.Context, _ Event) error {
				select {
				case <-release:
				case <-ctx.Done():
					sawDeadline = true
				}
				return ctx.Err()
			}))

			start := time.Now()
			d.Dispatch(NewVideoCreated(video))
			So(time.Since(start), ShouldBeLessThan, 40*time.Millisecond)

			d.Wait()
			close(release)
			So(sawDeadline, ShouldBeTrue)
		})

		Convey("A nil dispatcher ignores events", func() {
			var nilDispatcher *Dispatcher
			So(func() { nilDispatcher.Dispatch(NewVideoCreated(video)) }, ShouldNotPanic)
		})
	})
}

func TestEnvelopes(t *testing.T) {
	Convey("Video events expose a queue envelope", t, func() {
		video := model.Video{ID: 3, Title: "t"}

		created := NewVideoCreated(video).Envelope()
		So(created.Type, ShouldEqual, TypeVideoCreated)
		So(created.VideoID, ShouldEqual, 3)
		So(created.Video.Title, ShouldEqual, "t")

		deleted := NewVideoDeleted(3).Envelope()
		So(deleted.Type, ShouldEqual, TypeVideoDeleted)
		So(deleted.Video, ShouldBeNil)

		Convey("Only creation is broadcast", func() {
			var e Event = NewVideoCreated(video)
			_, ok := e.(Broadcastable)
			So(ok, ShouldBeTrue)

			e = NewVideoUpdated(video)
			_, ok = e.(Broadcastable)
			So(ok, ShouldBeFalse)
		})
	})
}
