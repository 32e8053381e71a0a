package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"casteaching-go/internal/event"
	"casteaching-go/internal/model"

	. "github.com/smartystreets/goconvey/convey"
)

type plainEvent struct{}

func (plainEvent) Name() string { return "plain" }

func TestEnvelopeCodec(t *testing.T) {
	Convey("Video events survive the queue encoding", t, func() {
		env := event.NewVideoCreated(model.Video{ID: 12, Title: "Ubuntu 101"}).Envelope()
		raw, err := json.Marshal(env)
		So(err, ShouldBeNil)

		decoded, err := DecodeEnvelope(raw)
		So(err, ShouldBeNil)
		So(decoded.Type, ShouldEqual, event.TypeVideoCreated)
		So(decoded.VideoID, ShouldEqual, 12)
		So(decoded.Video.Title, ShouldEqual, "Ubuntu 101")

		_, err = DecodeEnvelope([]byte("{"))
		So(err, ShouldNotBeNil)
	})

	Convey("Messages for one video share a partition key", t, func() {
		So(videoKey(5), ShouldEqual, "video-5")
	})

	Convey("Events without an envelope are skipped", t, func() {
		p := NewEventPublisher("videos")
		So(p.Publish(context.Background(), plainEvent{}), ShouldBeNil)
	})

	Convey("Publishing without a producer fails", t, func() {
		p := NewEventPublisher("videos")
		err := p.Publish(context.Background(), event.NewVideoDeleted(1))
		So(err, ShouldNotBeNil)
	})
}
