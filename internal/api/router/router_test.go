package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"casteaching-go/internal/api/handler"
	"casteaching-go/internal/api/middleware"
	"casteaching-go/internal/config"
	"casteaching-go/internal/event"
	"casteaching-go/internal/model"
	"casteaching-go/internal/repository"
	"casteaching-go/internal/service"
	"casteaching-go/internal/testutil"
	"casteaching-go/internal/web"
	"casteaching-go/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const testCookie = "casteaching_session"

type fakeImages struct{}

func (fakeImages) ImageURL(_ context.Context, objectName string) (string, error) {
	return "https://images.test/" + objectName, nil
}

type testApp struct {
	handler    http.Handler
	db         *gorm.DB
	cfg        *config.Config
	sessions   *repository.SessionRepository
	dispatcher *event.Dispatcher

	mu     sync.Mutex
	events []event.Event
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)

	cfg := &config.Config{
		Session: config.SessionConfig{CookieName: testCookie, LifetimeMinutes: 120},
		JWT:     config.JWTConfig{Secret: "test-secret", Issuer: "casteaching", ExpireHours: 1},
	}

	app := &testApp{
		db:         db,
		cfg:        cfg,
		sessions:   repository.NewSessionRepository(rdb, cfg.Session.Lifetime()),
		dispatcher: event.NewDispatcher(time.Second),
	}
	app.dispatcher.Register("recorder", event.PublisherFunc(func(_ context.Context, e event.Event) error {
		app.mu.Lock()
		defer app.mu.Unlock()
		app.events = append(app.events, e)
		return nil
	}))

	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, app.sessions, &cfg.JWT)
	videoService := service.NewVideoService(repository.NewVideoRepository(db), repository.NewSerieRepository(db), app.dispatcher, fakeImages{})
	searchService := service.NewSearchService(repository.NewVideoRepository(db))

	r := gin.New()
	r.SetHTMLTemplate(web.MustTemplates())
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(handler.ServerErrorPage))

	Setup(r, cfg, &Handlers{
		VideoPage:   handler.NewVideoPageHandler(videoService),
		ManageVideo: handler.NewManageVideoHandler(videoService),
		Session:     handler.NewSessionHandler(authService, &cfg.Session),
		Auth:        handler.NewAuthHandler(authService),
		Video:       handler.NewVideoHandler(videoService),
		Search:      handler.NewSearchHandler(searchService),
		SessionUser: authService.SessionUser,
		TokenUser:   authService.CurrentUser,
		Flash:       app.sessions,
	})

	app.handler = middleware.MethodOverride(r)
	return app
}

// login 为用户创建会话并返回会话 ID
func (a *testApp) login(t *testing.T, u *model.User) string {
	t.Helper()
	sid, err := a.sessions.Create(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sid
}

func (a *testApp) token(t *testing.T, u *model.User) string {
	t.Helper()
	token, err := utils.GenerateToken(&a.cfg.JWT, u.ID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// page 发送网页请求；form 非空时以表单提交
func (a *testApp) page(method, path, sid string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: sid})
	}

	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

// api 发送 JSON 请求
func (a *testApp) api(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a *testApp) flash(t *testing.T, sid string) map[string]string {
	t.Helper()
	flash, err := a.sessions.PullFlash(context.Background(), sid)
	if err != nil {
		t.Fatalf("pull flash: %v", err)
	}
	return flash
}

func (a *testApp) eventNames() []string {
	a.dispatcher.Wait()
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make([]string, 0, len(a.events))
	for _, e := range a.events {
		names = append(names, e.Name())
	}
	return names
}

func (a *testApp) countVideos() int64 {
	var n int64
	a.db.Model(&model.Video{}).Count(&n)
	return n
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(w *httptest.ResponseRecorder, data any) envelope {
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	if data != nil && len(env.Data) > 0 {
		_ = json.Unmarshal(env.Data, data)
	}
	return env
}
