package repository

import (
	"context"
	"errors"
	"testing"

	"casteaching-go/internal/model"
	"casteaching-go/internal/testutil"

	. "github.com/smartystreets/goconvey/convey"
	"gorm.io/gorm"
)

func TestVideoRepository(t *testing.T) {
	Convey("Given a video repository", t, func() {
		db := testutil.NewDB(t)
		repo := NewVideoRepository(db)
		ctx := context.Background()

		Convey("When a video is created", func() {
			v := &model.Video{Title: "Video title", Description: "Video description", URL: "https://www.youtube.com/watch?v=123456"}
			So(repo.Create(ctx, v), ShouldBeNil)
			So(v.ID, ShouldBeGreaterThan, 0)

			Convey("Then it can be read back without publish date", func() {
				got, err := repo.GetByID(ctx, v.ID)
				So(err, ShouldBeNil)
				So(got.Title, ShouldEqual, "Video title")
				So(got.PublishedAt, ShouldBeNil)
				So(got.SerieID, ShouldBeNil)
			})

			Convey("Then updates may clear nullable columns", func() {
				serieID := int64(9)
				_, err := repo.Update(ctx, v.ID, map[string]interface{}{"serie_id": serieID})
				So(err, ShouldBeNil)

				got, err := repo.Update(ctx, v.ID, map[string]interface{}{"serie_id": nil, "title": "New"})
				So(err, ShouldBeNil)
				So(got.SerieID, ShouldBeNil)
				So(got.Title, ShouldEqual, "New")
				So(got.ID, ShouldEqual, v.ID)
			})

			Convey("Then deleting it is terminal", func() {
				So(repo.Delete(ctx, v.ID), ShouldBeNil)

				_, err := repo.GetByID(ctx, v.ID)
				So(errors.Is(err, gorm.ErrRecordNotFound), ShouldBeTrue)

				err = repo.Delete(ctx, v.ID)
				So(errors.Is(err, gorm.ErrRecordNotFound), ShouldBeTrue)
			})
		})

		Convey("Updating a missing video reports not found", func() {
			_, err := repo.Update(ctx, 999, map[string]interface{}{"title": "x"})
			So(errors.Is(err, gorm.ErrRecordNotFound), ShouldBeTrue)
		})

		Convey("With sample videos", func() {
			samples := testutil.CreateSampleVideos(t, db)

			Convey("List returns all of them in id order", func() {
				videos, err := repo.List(ctx)
				So(err, ShouldBeNil)
				So(len(videos), ShouldEqual, len(samples))
				So(videos[0].ID, ShouldEqual, samples[0].ID)
			})

			Convey("Search matches titles case-insensitively", func() {
				videos, total, err := repo.Search(ctx, "ubuntu 102", 0, 10)
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 1)
				So(videos[0].Title, ShouldEqual, "Ubuntu 102")
			})

			Convey("An empty query pages through everything", func() {
				videos, total, err := repo.Search(ctx, "  ", 0, 2)
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 3)
				So(len(videos), ShouldEqual, 2)
			})

			Convey("GetByIDs loads the requested rows", func() {
				videos, err := repo.GetByIDs(ctx, []int64{samples[0].ID, samples[2].ID})
				So(err, ShouldBeNil)
				So(len(videos), ShouldEqual, 2)
			})
		})
	})
}

func TestUserRepository(t *testing.T) {
	Convey("Given a user repository", t, func() {
		db := testutil.NewDB(t)
		repo := NewUserRepository(db)
		ctx := context.Background()

		Convey("Permissions are ensured idempotently", func() {
			So(repo.EnsurePermissions(ctx, []string{"a", "b"}), ShouldBeNil)
			So(repo.EnsurePermissions(ctx, []string{"a", "b", "c"}), ShouldBeNil)

			var count int64
			db.Model(&model.Permission{}).Count(&count)
			So(count, ShouldEqual, 3)

			Convey("And can be granted to a user", func() {
				u := &model.User{Name: "n", Email: "N@Example.com", Password: "x"}
				So(repo.Create(ctx, u), ShouldBeNil)
				So(repo.GivePermissions(ctx, u, "a", "c"), ShouldBeNil)

				got, err := repo.GetByEmail(ctx, "n@example.com")
				So(err, ShouldBeNil)
				So(got.PermissionNames(), ShouldContain, "a")
				So(got.PermissionNames(), ShouldContain, "c")
				So(len(got.Permissions), ShouldEqual, 2)
			})
		})
	})
}
