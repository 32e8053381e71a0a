// Package bootstrap 启动时的数据初始化：权限行、超级管理员与预置账号
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"casteaching-go/internal/authz"
	"casteaching-go/internal/config"
	"casteaching-go/internal/model"
	"casteaching-go/internal/repository"
	"casteaching-go/pkg/logger"
	"casteaching-go/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnsurePermissions 确保所有视频管理权限存在
func EnsurePermissions(ctx context.Context, users *repository.UserRepository) error {
	actions := authz.AllActions()
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		names = append(names, string(a))
	}

	if err := users.EnsurePermissions(ctx, names); err != nil {
		return fmt.Errorf("ensure permissions: %w", err)
	}

	logger.Info("Permissions ensured", zap.Strings("permissions", names))
	return nil
}

// EnsureSuperAdmin 创建或同步配置中的超级管理员
// 已存在的账号只修正 superadmin 标记与名称，不覆盖密码
func EnsureSuperAdmin(ctx context.Context, users *repository.UserRepository, cfg *config.BootstrapConfig) error {
	if cfg.SuperadminEmail == "" {
		logger.Info("Superadmin bootstrap skipped, no email configured")
		return nil
	}

	existing, err := users.GetByEmail(ctx, cfg.SuperadminEmail)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if cfg.SuperadminPassword == "" {
			logger.Warn("Superadmin bootstrap skipped, no password configured",
				zap.String("email", cfg.SuperadminEmail))
			return nil
		}

		hash, err := utils.HashPassword(cfg.SuperadminPassword)
		if err != nil {
			return fmt.Errorf("hash superadmin password: %w", err)
		}

		user := &model.User{
			Name:       cfg.SuperadminName,
			Email:      cfg.SuperadminEmail,
			Password:   hash,
			Superadmin: true,
		}
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("create superadmin: %w", err)
		}

		logger.Info("Superadmin created", zap.String("email", cfg.SuperadminEmail))
		return nil

	case err != nil:
		return fmt.Errorf("get superadmin: %w", err)
	}

	updates := map[string]interface{}{}
	if !existing.Superadmin {
		updates["superadmin"] = true
	}
	if cfg.SuperadminName != "" && existing.Name != cfg.SuperadminName {
		updates["name"] = cfg.SuperadminName
	}

	if len(updates) == 0 {
		logger.Info("Superadmin already up to date", zap.String("email", cfg.SuperadminEmail))
		return nil
	}

	if err := users.Update(ctx, existing.ID, updates); err != nil {
		return fmt.Errorf("update superadmin: %w", err)
	}

	logger.Info("Superadmin synchronized", zap.String("email", cfg.SuperadminEmail))
	return nil
}

// EnsureAccount 创建或补齐一个预置账号的权限
// 已存在的账号不覆盖密码，也不收回配置之外的权限
func EnsureAccount(ctx context.Context, users *repository.UserRepository, account *config.AccountConfig) error {
	names, err := accountPermissions(account)
	if err != nil {
		return err
	}

	user, err := users.GetByEmail(ctx, account.Email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if account.Password == "" {
			logger.Warn("Account bootstrap skipped, no password configured",
				zap.String("email", account.Email))
			return nil
		}

		hash, err := utils.HashPassword(account.Password)
		if err != nil {
			return fmt.Errorf("hash password of %s: %w", account.Email, err)
		}

		user = &model.User{Name: account.Name, Email: account.Email, Password: hash}
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("create account %s: %w", account.Email, err)
		}
		logger.Info("Account created", zap.String("email", account.Email))

	case err != nil:
		return fmt.Errorf("get account %s: %w", account.Email, err)
	}

	held := make(map[string]bool, len(user.Permissions))
	for _, name := range user.PermissionNames() {
		held[name] = true
	}
	missing := make([]string, 0, len(names))
	for _, name := range names {
		if !held[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	if err := users.GivePermissions(ctx, user, missing...); err != nil {
		return fmt.Errorf("give permissions to %s: %w", account.Email, err)
	}

	logger.Info("Account permissions granted",
		zap.String("email", account.Email),
		zap.Strings("permissions", missing),
	)
	return nil
}

// 角色与显式权限取并集，未知的角色或权限名直接报错
func accountPermissions(account *config.AccountConfig) ([]string, error) {
	if account.Email == "" {
		return nil, fmt.Errorf("account %q has no email", account.Name)
	}

	var actions []authz.Action
	if account.Role != "" {
		roleActions, ok := authz.RoleActions(account.Role)
		if !ok {
			return nil, fmt.Errorf("account %s: unknown role %q", account.Email, account.Role)
		}
		actions = append(actions, roleActions...)
	}
	for _, p := range account.Permissions {
		a, ok := authz.ParseAction(p)
		if !ok {
			return nil, fmt.Errorf("account %s: unknown permission %q", account.Email, p)
		}
		actions = append(actions, a)
	}

	seen := make(map[authz.Action]bool, len(actions))
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		if seen[a] {
			continue
		}
		seen[a] = true
		names = append(names, string(a))
	}
	return names, nil
}

// Run 依次执行全部初始化步骤
func Run(ctx context.Context, users *repository.UserRepository, cfg *config.BootstrapConfig) error {
	if err := EnsurePermissions(ctx, users); err != nil {
		return err
	}
	if err := EnsureSuperAdmin(ctx, users, cfg); err != nil {
		return err
	}
	for i := range cfg.Accounts {
		if err := EnsureAccount(ctx, users, &cfg.Accounts[i]); err != nil {
			return err
		}
	}
	return nil
}
