package service

import (
	"context"
	"errors"

	"casteaching-go/internal/api/dto"
	"casteaching-go/internal/config"
	"casteaching-go/internal/model"
	"casteaching-go/internal/repository"
	"casteaching-go/pkg/utils"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidCredential = errors.New("these credentials do not match our records")
	ErrSessionExpired    = errors.New("session expired")
)

type AuthService struct {
	userRepo *repository.UserRepository
	sessions *repository.SessionRepository
	jwtCfg   *config.JWTConfig
}

func NewAuthService(userRepo *repository.UserRepository, sessions *repository.SessionRepository, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{userRepo: userRepo, sessions: sessions, jwtCfg: jwtCfg}
}

// Authenticate 校验邮箱与密码
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	if !utils.VerifyPassword(password, user.Password) {
		return nil, ErrInvalidCredential
	}
	return user, nil
}

// Login JSON API 登录，返回 token 数据
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenData, error) {
	user, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, err := utils.GenerateToken(s.jwtCfg, user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.TokenData{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: s.jwtCfg.ExpireHours * 3600,
		User:      *toUserInfo(user),
	}, nil
}

// StartSession 网页登录，返回会话 ID
func (s *AuthService) StartSession(ctx context.Context, req *dto.LoginRequest) (string, *model.User, error) {
	user, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return "", nil, err
	}

	sid, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}
	return sid, user, nil
}

// EndSession 注销会话
func (s *AuthService) EndSession(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	return s.sessions.Destroy(ctx, sid)
}

// SessionUser 根据会话 ID 加载当前用户（含权限）
func (s *AuthService) SessionUser(ctx context.Context, sid string) (*model.User, error) {
	userID, err := s.sessions.UserID(ctx, sid)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	return s.CurrentUser(ctx, userID)
}

// CurrentUser 根据用户 ID 加载用户（含权限）
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetCurrentUser 当前用户公开信息
func (s *AuthService) GetCurrentUser(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Superadmin:  user.Superadmin,
		Permissions: user.PermissionNames(),
	}
}
