package router

import (
	"fmt"
	"net/http"
	"testing"

	"casteaching-go/internal/api/dto"
	"casteaching-go/internal/model"
	"casteaching-go/internal/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

func TestVideoAPI(t *testing.T) {
	Convey("Given the video API", t, func() {
		app := newTestApp(t)
		videos := testutil.CreateSampleVideos(t, app.db)

		Convey("Anyone can list videos", func() {
			w := app.api(http.MethodGet, "/api/v1/videos", "", nil)

			var data dto.VideoListData
			env := decode(w, &data)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(env.Success, ShouldBeTrue)
			So(data.Total, ShouldEqual, 3)
			So(data.Videos, ShouldHaveLength, 3)
		})

		Convey("Anyone can read a video", func() {
			w := app.api(http.MethodGet, fmt.Sprintf("/api/v1/videos/%d", videos[1].ID), "", nil)

			var data dto.VideoDetail
			decode(w, &data)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(data.Title, ShouldEqual, "Ubuntu 102")
			So(data.Serie, ShouldBeNil)
		})

		Convey("Unknown videos are not found", func() {
			w := app.api(http.MethodGet, "/api/v1/videos/999", "", nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Storing requires a token", func() {
			w := app.api(http.MethodPost, "/api/v1/videos", "", map[string]any{"title": "New"})
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("Storing requires the store permission", func() {
			token := app.token(t, testutil.CreateRegularUser(t, app.db))
			w := app.api(http.MethodPost, "/api/v1/videos", token, map[string]any{"title": "New"})

			So(w.Code, ShouldEqual, http.StatusForbidden)
			So(app.countVideos(), ShouldEqual, 3)
		})

		Convey("Video managers can store videos", func() {
			token := app.token(t, testutil.CreateVideoManager(t, app.db))
			w := app.api(http.MethodPost, "/api/v1/videos", token, map[string]any{
				"title":       "HTTP for noobs",
				"description": "All about HTTP",
				"url":         "https://tubeme.acacha.org/http",
			})

			var data dto.VideoInfo
			env := decode(w, &data)
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(env.Message, ShouldEqual, "Successfully created")
			So(data.ID, ShouldBeGreaterThan, 0)
			So(data.Title, ShouldEqual, "HTTP for noobs")
			So(app.countVideos(), ShouldEqual, 4)
			So(app.eventNames(), ShouldResemble, []string{"video.created"})
		})

		Convey("A missing title is rejected", func() {
			token := app.token(t, testutil.CreateVideoManager(t, app.db))
			w := app.api(http.MethodPost, "/api/v1/videos", token, map[string]any{"description": "no title"})

			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(app.countVideos(), ShouldEqual, 3)
		})

		Convey("Updating without serie_id keeps the serie", func() {
			serie := testutil.CreateSerie(t, app.db)
			v := testutil.CreateVideo(t, app.db, &model.Video{Title: "TDD 101", SerieID: &serie.ID})
			token := app.token(t, testutil.CreateVideoManager(t, app.db))

			w := app.api(http.MethodPut, fmt.Sprintf("/api/v1/videos/%d", v.ID), token, map[string]any{
				"title": "TDD 102",
			})

			var data dto.VideoInfo
			decode(w, &data)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(data.Title, ShouldEqual, "TDD 102")
			So(data.Description, ShouldEqual, "")
			So(data.SerieID, ShouldNotBeNil)
			So(*data.SerieID, ShouldEqual, serie.ID)
		})

		Convey("A null serie_id detaches the video", func() {
			serie := testutil.CreateSerie(t, app.db)
			v := testutil.CreateVideo(t, app.db, &model.Video{Title: "TDD 101", SerieID: &serie.ID})
			token := app.token(t, testutil.CreateVideoManager(t, app.db))

			w := app.api(http.MethodPut, fmt.Sprintf("/api/v1/videos/%d", v.ID), token, map[string]any{
				"title":    "TDD 101",
				"serie_id": nil,
			})

			var data dto.VideoInfo
			decode(w, &data)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(data.SerieID, ShouldBeNil)
		})

		Convey("Video managers cannot delete", func() {
			token := app.token(t, testutil.CreateVideoManager(t, app.db))
			w := app.api(http.MethodDelete, fmt.Sprintf("/api/v1/videos/%d", videos[0].ID), token, nil)

			So(w.Code, ShouldEqual, http.StatusForbidden)
			So(app.countVideos(), ShouldEqual, 3)
		})

		Convey("Users with the destroy permission can delete", func() {
			token := app.token(t, testutil.CreateVideoDestroyer(t, app.db))
			w := app.api(http.MethodDelete, fmt.Sprintf("/api/v1/videos/%d", videos[0].ID), token, nil)

			env := decode(w, nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(env.Message, ShouldEqual, "Successfully deleted")
			So(app.countVideos(), ShouldEqual, 2)
		})

		Convey("Tokens of deleted users are refused", func() {
			user := testutil.CreateSuperadmin(t, app.db)
			token := app.token(t, user)
			So(app.db.Select("Permissions").Delete(user).Error, ShouldBeNil)

			w := app.api(http.MethodDelete, fmt.Sprintf("/api/v1/videos/%d", videos[0].ID), token, nil)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})
	})
}

func TestSearchAPI(t *testing.T) {
	Convey("Given videos and no search cluster", t, func() {
		app := newTestApp(t)
		testutil.CreateSampleVideos(t, app.db)

		Convey("Search falls back to the database", func() {
			w := app.api(http.MethodGet, "/api/v1/videos/search?q=102", "", nil)

			var data dto.SearchVideoData
			decode(w, &data)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(data.Source, ShouldEqual, "database")
			So(data.Total, ShouldEqual, 1)
			So(data.Videos[0].Title, ShouldEqual, "Ubuntu 102")
		})

		Convey("An empty query returns every video", func() {
			w := app.api(http.MethodGet, "/api/v1/videos/search", "", nil)

			var data dto.SearchVideoData
			decode(w, &data)
			So(data.Total, ShouldEqual, 3)
			So(data.Page, ShouldEqual, 1)
			So(data.PageSize, ShouldEqual, 20)
		})
	})
}

func TestAuthAPI(t *testing.T) {
	Convey("Given a video manager account", t, func() {
		app := newTestApp(t)
		manager := testutil.CreateVideoManager(t, app.db)

		Convey("Login issues a usable token", func() {
			w := app.api(http.MethodPost, "/api/v1/auth/login", "", map[string]any{
				"email":    manager.Email,
				"password": testutil.DefaultPassword,
			})

			var data dto.TokenData
			decode(w, &data)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(data.Token, ShouldNotBeEmpty)

			w = app.api(http.MethodGet, "/api/v1/auth/me", data.Token, nil)

			var me dto.UserInfo
			decode(w, &me)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(me.Email, ShouldEqual, manager.Email)
			So(me.Permissions, ShouldContain, "videos_manage_store")
			So(me.Permissions, ShouldNotContain, "videos_manage_destroy")
		})

		Convey("Wrong credentials are unauthorized", func() {
			w := app.api(http.MethodPost, "/api/v1/auth/login", "", map[string]any{
				"email":    manager.Email,
				"password": "nope",
			})
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("Me requires a token", func() {
			w := app.api(http.MethodGet, "/api/v1/auth/me", "", nil)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)

			w = app.api(http.MethodGet, "/api/v1/auth/me", "garbage", nil)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("Unknown API routes answer with JSON", func() {
			w := app.api(http.MethodGet, "/api/v1/nothing", "", nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
		})
	})
}
