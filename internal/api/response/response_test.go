package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"casteaching-go/internal/service"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"
)

func write(fn func(c *gin.Context)) (*httptest.ResponseRecorder, ErrorResponse) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/videos/1", nil)
	fn(c)

	var body ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestFromError(t *testing.T) {
	Convey("Given errors coming out of the services", t, func() {
		Convey("A missing video is not found", func() {
			w, body := write(func(c *gin.Context) {
				FromError(c, fmt.Errorf("update video 1: %w", service.ErrVideoNotFound))
			})
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(body.Error.Type, ShouldEqual, TypeNotFound)
			So(body.Error.Message, ShouldEqual, "video not found")
		})

		Convey("Bad credentials and vanished users are unauthorized", func() {
			for _, err := range []error{service.ErrInvalidCredential, service.ErrUserNotFound, service.ErrSessionExpired} {
				w, body := write(func(c *gin.Context) { FromError(c, err) })
				So(w.Code, ShouldEqual, http.StatusUnauthorized)
				So(body.Error.Code, ShouldEqual, http.StatusUnauthorized)
				So(body.Error.Message, ShouldEqual, err.Error())
			}
		})

		Convey("Anything else hides its details behind a 500", func() {
			w, body := write(func(c *gin.Context) {
				FromError(c, errors.New("pq: connection refused"))
			})
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(body.Error.Type, ShouldEqual, TypeInternal)
			So(w.Body.String(), ShouldNotContainSubstring, "pq:")
		})
	})
}

func TestSuccessEnvelope(t *testing.T) {
	Convey("Created answers 201 with the data inside the envelope", t, func() {
		w, _ := write(func(c *gin.Context) { Created(c, "Successfully created", gin.H{"id": 1}) })

		var body Response
		So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
		So(w.Code, ShouldEqual, http.StatusCreated)
		So(body.Success, ShouldBeTrue)
		So(body.Message, ShouldEqual, "Successfully created")
		So(body.Data, ShouldResemble, map[string]interface{}{"id": float64(1)})
	})
}
