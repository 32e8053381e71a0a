package repository

import (
	"context"
	"testing"
	"time"

	"casteaching-go/internal/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSessionRepository(t *testing.T) {
	Convey("Given a redis backed session repository", t, func() {
		client, mr := testutil.NewRedis(t)
		repo := NewSessionRepository(client, time.Hour)
		ctx := context.Background()

		Convey("When a session is created", func() {
			id, err := repo.Create(ctx, 42)
			So(err, ShouldBeNil)
			So(id, ShouldNotBeEmpty)

			Convey("Then it resolves to the user", func() {
				userID, err := repo.UserID(ctx, id)
				So(err, ShouldBeNil)
				So(userID, ShouldEqual, 42)
			})

			Convey("Then it expires after its lifetime", func() {
				mr.FastForward(2 * time.Hour)
				_, err := repo.UserID(ctx, id)
				So(err, ShouldEqual, ErrSessionNotFound)
			})

			Convey("Then flash messages are read exactly once", func() {
				So(repo.PutFlash(ctx, id, "status", "Successfully created"), ShouldBeNil)

				flash, err := repo.PullFlash(ctx, id)
				So(err, ShouldBeNil)
				So(flash["status"], ShouldEqual, "Successfully created")

				flash, err = repo.PullFlash(ctx, id)
				So(err, ShouldBeNil)
				So(flash, ShouldBeEmpty)
			})

			Convey("Then destroying it removes user and flash", func() {
				So(repo.PutFlash(ctx, id, "status", "x"), ShouldBeNil)
				So(repo.Destroy(ctx, id), ShouldBeNil)

				_, err := repo.UserID(ctx, id)
				So(err, ShouldEqual, ErrSessionNotFound)
				So(mr.Exists(flashKey(id)), ShouldBeFalse)
			})
		})

		Convey("Unknown sessions are not found", func() {
			_, err := repo.UserID(ctx, "nope")
			So(err, ShouldEqual, ErrSessionNotFound)
		})
	})
}
