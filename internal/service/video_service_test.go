package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"casteaching-go/internal/api/dto"
	"casteaching-go/internal/event"
	"casteaching-go/internal/model"
	"casteaching-go/internal/repository"
	"casteaching-go/internal/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []event.Event
}

func (d *recordingDispatcher) Dispatch(e event.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
}

func (d *recordingDispatcher) names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.events))
	for _, e := range d.events {
		names = append(names, e.Name())
	}
	return names
}

type stubImages struct {
	err error
}

func (s stubImages) ImageURL(_ context.Context, objectName string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://images.test/" + objectName, nil
}

func int64Ptr(v int64) *int64 { return &v }

func TestVideoService(t *testing.T) {
	Convey("Given a video service", t, func() {
		db := testutil.NewDB(t)
		dispatcher := &recordingDispatcher{}
		images := &stubImages{}
		svc := NewVideoService(repository.NewVideoRepository(db), repository.NewSerieRepository(db), dispatcher, images)
		ctx := context.Background()

		Convey("Create stores an unpublished video and announces it", func() {
			info, err := svc.Create(ctx, &dto.VideoStoreRequest{
				Title:       "HTTP for noobs",
				Description: "Te ensenyo tot el que se sobre HTTP",
				URL:         "https://tubeme.acacha.org/http",
			})
			So(err, ShouldBeNil)
			So(info.ID, ShouldBeGreaterThan, 0)
			So(info.PublishedAt, ShouldBeNil)
			So(info.SerieID, ShouldBeNil)
			So(dispatcher.names(), ShouldResemble, []string{event.TypeVideoCreated})

			created := dispatcher.events[0].(event.VideoCreated)
			So(created.Video.Title, ShouldEqual, "HTTP for noobs")
		})

		Convey("An empty serie is stored as no serie", func() {
			info, err := svc.Create(ctx, &dto.VideoStoreRequest{Title: "t", SerieID: int64Ptr(0)})
			So(err, ShouldBeNil)
			So(info.SerieID, ShouldBeNil)
		})

		Convey("With an existing video", func() {
			video := testutil.CreateVideo(t, db, &model.Video{
				Title:       "Ubuntu 101",
				Description: "# Here description",
				URL:         "https://youtu.be/w8j07_DBl_I",
				SerieID:     int64Ptr(1),
			})

			Convey("Update replaces the fields and keeps the id", func() {
				info, err := svc.Update(ctx, video.ID, &dto.VideoUpdateRequest{
					Title:       "Ubuntu 102",
					Description: "new",
					URL:         "https://youtu.be/new",
				})
				So(err, ShouldBeNil)
				So(info.ID, ShouldEqual, video.ID)
				So(info.Title, ShouldEqual, "Ubuntu 102")
				So(info.URL, ShouldEqual, "https://youtu.be/new")
				So(*info.SerieID, ShouldEqual, 1)
				So(dispatcher.names(), ShouldResemble, []string{event.TypeVideoUpdated})
			})

			Convey("Update clears the serie when it is sent empty", func() {
				info, err := svc.Update(ctx, video.ID, &dto.VideoUpdateRequest{Title: "x", SerieID: int64Ptr(0), SerieIDSet: true})
				So(err, ShouldBeNil)
				So(info.SerieID, ShouldBeNil)
			})

			Convey("Delete removes it", func() {
				So(svc.Delete(ctx, video.ID), ShouldBeNil)
				_, err := svc.Get(ctx, video.ID)
				So(err, ShouldEqual, ErrVideoNotFound)
				So(dispatcher.names(), ShouldResemble, []string{event.TypeVideoDeleted})
			})

			Convey("List returns it", func() {
				list, err := svc.List(ctx)
				So(err, ShouldBeNil)
				So(list.Total, ShouldEqual, 1)
				So(list.Videos[0].Title, ShouldEqual, "Ubuntu 101")
			})

			Convey("Detail tolerates a missing serie", func() {
				detail, err := svc.GetDetail(ctx, video.ID)
				So(err, ShouldBeNil)
				So(detail.Serie, ShouldBeNil)
			})
		})

		Convey("Detail includes the serie and its image", func() {
			serie := testutil.CreateSerie(t, db)
			video := testutil.CreateVideo(t, db, &model.Video{Title: "TDD 101", SerieID: &serie.ID})

			detail, err := svc.GetDetail(ctx, video.ID)
			So(err, ShouldBeNil)
			So(detail.Serie.Title, ShouldEqual, serie.Title)
			So(detail.Serie.ImageURL, ShouldEqual, "https://images.test/tdd.png")

			Convey("An image failure only drops the image", func() {
				images.err = errors.New("minio down")
				detail, err := svc.GetDetail(ctx, video.ID)
				So(err, ShouldBeNil)
				So(detail.Serie, ShouldNotBeNil)
				So(detail.Serie.ImageURL, ShouldBeEmpty)
			})
		})

		Convey("Missing videos are reported as not found", func() {
			_, err := svc.Get(ctx, 999)
			So(err, ShouldEqual, ErrVideoNotFound)

			_, err = svc.Update(ctx, 999, &dto.VideoUpdateRequest{Title: "x"})
			So(err, ShouldEqual, ErrVideoNotFound)

			So(svc.Delete(ctx, 999), ShouldEqual, ErrVideoNotFound)
			So(dispatcher.names(), ShouldBeEmpty)
		})
	})
}
