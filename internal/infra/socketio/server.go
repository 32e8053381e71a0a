// Package socketio 私有实时频道：向已授权的管理端推送视频事件
package socketio

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"casteaching-go/internal/authz"
	"casteaching-go/internal/config"
	"casteaching-go/internal/event"
	"casteaching-go/internal/model"
	"casteaching-go/pkg/logger"
	"casteaching-go/pkg/utils"

	socket "github.com/zishang520/socket.io/socket"
	"go.uber.org/zap"
)

// UserFinder 按 ID 加载用户（含权限）
type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Server 封装 Socket.IO 服务
type Server struct {
	io     *socket.Server
	users  UserFinder
	jwtCfg *config.JWTConfig
	room   socket.Room

	connMutex   sync.RWMutex
	connections map[string]*socket.Socket
}

// NewServer 创建 Socket.IO 服务，channel 为私有频道名（不含 private- 前缀）
func NewServer(users UserFinder, jwtCfg *config.JWTConfig, channel string) *Server {
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(60 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetServeClient(false)
	opts.SetPath("/socket.io")

	s := &Server{
		io:          socket.NewServer(nil, opts),
		users:       users,
		jwtCfg:      jwtCfg,
		room:        PrivateRoom(channel),
		connections: make(map[string]*socket.Socket),
	}

	s.io.Use(s.connectionMiddleware)
	s.io.On("connection", func(args ...any) {
		sock, ok := args[0].(*socket.Socket)
		if !ok {
			logger.Error("Unexpected socket connection payload")
			return
		}
		s.handleConnection(sock)
	})

	return s
}

// PrivateRoom 私有频道对应的房间名
func PrivateRoom(channel string) socket.Room {
	return socket.Room("private-" + channel)
}

// GetHandler 返回 Socket.IO 的 HTTP 处理器
func (s *Server) GetHandler() http.Handler {
	return s.io.ServeHandler(nil)
}

// Close 关闭 Socket.IO 服务
func (s *Server) Close() error {
	done := make(chan struct{})
	s.io.Close(func() {
		close(done)
	})
	<-done
	return nil
}

// Publish 实现 event.Publisher，只推送可广播的事件
func (s *Server) Publish(ctx context.Context, e event.Event) error {
	b, ok := e.(event.Broadcastable)
	if !ok {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.io.To(s.room).Emit(b.BroadcastAs(), b.BroadcastWith()); err != nil {
		return fmt.Errorf("broadcast %s: %w", b.BroadcastAs(), err)
	}

	logger.Debug("Event broadcast",
		zap.String("event", b.BroadcastAs()),
		zap.String("room", string(s.room)),
	)
	return nil
}

// Authorize 解析 token 并判断用户能否订阅私有频道
func (s *Server) Authorize(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, fmt.Errorf("missing authentication token")
	}

	claims, err := utils.ParseToken(s.jwtCfg, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	if !authz.Allow(authz.SubjectFromUser(user), authz.ActionVideosIndex) {
		return nil, fmt.Errorf("not allowed to join %s", s.room)
	}
	return user, nil
}

func (s *Server) connectionMiddleware(sock *socket.Socket, next func(*socket.ExtendedError)) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := s.Authorize(ctx, extractToken(sock))
	if err != nil {
		logger.Warn("Socket connection rejected", zap.Error(err))
		next(socket.NewExtendedError("unauthorized", map[string]any{"code": "UNAUTHORIZED"}))
		return
	}

	sock.SetData(user)
	next(nil)
}

func (s *Server) handleConnection(sock *socket.Socket) {
	user, ok := sock.Data().(*model.User)
	if !ok || user == nil {
		logger.Error("Socket connected without user context")
		sock.Disconnect(true)
		return
	}

	id := string(sock.Id())
	s.connMutex.Lock()
	s.connections[id] = sock
	s.connMutex.Unlock()

	sock.Join(s.room)

	logger.Info("Socket connected",
		zap.Int64("user_id", user.ID),
		zap.String("conn_id", id),
		zap.String("room", string(s.room)),
	)

	sock.On("disconnect", func(args ...any) {
		s.connMutex.Lock()
		delete(s.connections, id)
		s.connMutex.Unlock()

		logger.Info("Socket disconnected",
			zap.Int64("user_id", user.ID),
			zap.String("conn_id", id),
		)
	})
}

// Connections 当前连接数
func (s *Server) Connections() int {
	s.connMutex.RLock()
	defer s.connMutex.RUnlock()
	return len(s.connections)
}

func extractToken(sock *socket.Socket) string {
	if sock == nil {
		return ""
	}

	if hs := sock.Handshake(); hs != nil {
		if authMap, ok := hs.Auth.(map[string]any); ok {
			if token, ok := authMap["token"].(string); ok && token != "" {
				return token
			}
		}
		if hs.Query != nil {
			if token, ok := hs.Query.Get("token"); ok && token != "" {
				return token
			}
		}
	}

	return ""
}
