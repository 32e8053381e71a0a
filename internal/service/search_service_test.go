package service

import (
	"context"
	"testing"

	"casteaching-go/internal/api/dto"
	"casteaching-go/internal/event"
	"casteaching-go/internal/repository"
	"casteaching-go/internal/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSearchService(t *testing.T) {
	Convey("Given a search service without a search cluster", t, func() {
		db := testutil.NewDB(t)
		svc := NewSearchService(repository.NewVideoRepository(db))
		ctx := context.Background()
		testutil.CreateSampleVideos(t, db)

		Convey("Searches fall back to the database", func() {
			data, err := svc.SearchVideos(ctx, &dto.SearchVideoRequest{Q: "103"})
			So(err, ShouldBeNil)
			So(data.Source, ShouldEqual, SearchSourceDB)
			So(data.Total, ShouldEqual, 1)
			So(data.Videos[0].Title, ShouldEqual, "Ubuntu 103")
		})

		Convey("Paging is normalized", func() {
			data, err := svc.SearchVideos(ctx, &dto.SearchVideoRequest{Page: -1, PageSize: 500})
			So(err, ShouldBeNil)
			So(data.Page, ShouldEqual, 1)
			So(data.PageSize, ShouldEqual, 20)
			So(data.TotalPages, ShouldEqual, 1)
			So(len(data.Videos), ShouldEqual, 3)
		})

		Convey("Index updates report the missing cluster", func() {
			err := svc.HandleVideoEvent(ctx, &event.Envelope{Type: event.TypeVideoDeleted, VideoID: 1})
			So(err, ShouldNotBeNil)

			So(svc.HandleVideoEvent(ctx, &event.Envelope{Type: "video.unknown"}), ShouldBeNil)
		})
	})
}
