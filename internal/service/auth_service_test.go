package service

import (
	"context"
	"testing"
	"time"

	"casteaching-go/internal/api/dto"
	"casteaching-go/internal/authz"
	"casteaching-go/internal/config"
	"casteaching-go/internal/repository"
	"casteaching-go/internal/testutil"
	"casteaching-go/pkg/utils"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAuthService(t *testing.T) {
	Convey("Given an auth service", t, func() {
		db := testutil.NewDB(t)
		rdb, _ := testutil.NewRedis(t)
		jwtCfg := &config.JWTConfig{Secret: "secret", Issuer: "test", ExpireHours: 2}
		svc := NewAuthService(repository.NewUserRepository(db), repository.NewSessionRepository(rdb, time.Hour), jwtCfg)
		ctx := context.Background()

		manager := testutil.CreateVideoManager(t, db)

		Convey("Valid credentials issue a token", func() {
			data, err := svc.Login(ctx, &dto.LoginRequest{Email: manager.Email, Password: testutil.DefaultPassword})
			So(err, ShouldBeNil)
			So(data.TokenType, ShouldEqual, "bearer")
			So(data.ExpiresIn, ShouldEqual, 7200)
			So(data.User.Permissions, ShouldContain, string(authz.ActionVideosStore))

			claims, err := utils.ParseToken(jwtCfg, data.Token)
			So(err, ShouldBeNil)
			So(claims.UserID, ShouldEqual, manager.ID)
		})

		Convey("Wrong passwords and unknown emails look the same", func() {
			_, err := svc.Login(ctx, &dto.LoginRequest{Email: manager.Email, Password: "nope"})
			So(err, ShouldEqual, ErrInvalidCredential)

			_, err = svc.Login(ctx, &dto.LoginRequest{Email: "ghost@casteaching.test", Password: "nope"})
			So(err, ShouldEqual, ErrInvalidCredential)
		})

		Convey("A web session resolves to the user until it ends", func() {
			sid, user, err := svc.StartSession(ctx, &dto.LoginRequest{Email: manager.Email, Password: testutil.DefaultPassword})
			So(err, ShouldBeNil)
			So(user.ID, ShouldEqual, manager.ID)

			current, err := svc.SessionUser(ctx, sid)
			So(err, ShouldBeNil)
			So(current.Email, ShouldEqual, manager.Email)
			So(len(current.Permissions), ShouldEqual, len(authz.VideoManagerPermissions))

			So(svc.EndSession(ctx, sid), ShouldBeNil)
			_, err = svc.SessionUser(ctx, sid)
			So(err, ShouldEqual, ErrSessionExpired)
		})

		Convey("Unknown users are not found", func() {
			_, err := svc.GetCurrentUser(ctx, 999)
			So(err, ShouldEqual, ErrUserNotFound)
		})
	})
}
