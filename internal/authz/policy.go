// Package authz 视频管理权限策略。
//
// 策略是纯函数：给定主体与动作返回允许/拒绝，不依赖 HTTP 或数据库，
// 由中间件和模板在拿到当前用户后调用。
package authz

import "casteaching-go/internal/model"

// Action 受控动作，值即权限名
type Action string

const (
	ActionVideosIndex   Action = "videos_manage_index"
	ActionVideosCreate  Action = "videos_manage_create"
	ActionVideosStore   Action = "videos_manage_store"
	ActionVideosEdit    Action = "videos_manage_edit"
	ActionVideosUpdate  Action = "videos_manage_update"
	ActionVideosDestroy Action = "videos_manage_destroy"
)

// VideoManagerPermissions 视频管理员权限包（不含删除）
var VideoManagerPermissions = []Action{
	ActionVideosIndex,
	ActionVideosCreate,
	ActionVideosStore,
	ActionVideosEdit,
	ActionVideosUpdate,
}

// AllActions 返回全部受控动作，启动时据此补齐权限表
func AllActions() []Action {
	return append(append([]Action{}, VideoManagerPermissions...), ActionVideosDestroy)
}

// 预置角色，对应一组权限
const (
	RoleVideoManager   = "video_manager"
	RoleVideoDestroyer = "video_destroyer"
)

// RoleActions 返回角色包含的动作，未知角色返回 false
func RoleActions(role string) ([]Action, bool) {
	switch role {
	case RoleVideoManager:
		return append([]Action{}, VideoManagerPermissions...), true
	case RoleVideoDestroyer:
		return AllActions(), true
	}
	return nil, false
}

// ParseAction 将权限名解析为受控动作
func ParseAction(name string) (Action, bool) {
	for _, a := range AllActions() {
		if string(a) == name {
			return a, true
		}
	}
	return "", false
}

// Subject 鉴权主体
type Subject struct {
	UserID      int64
	Superadmin  bool
	Permissions []string
}

// SubjectFromUser 由用户模型构造鉴权主体，nil 用户返回匿名主体
func SubjectFromUser(u *model.User) Subject {
	if u == nil {
		return Subject{}
	}
	return Subject{
		UserID:      u.ID,
		Superadmin:  u.Superadmin,
		Permissions: u.PermissionNames(),
	}
}

// Authenticated 是否为已登录主体
func (s Subject) Authenticated() bool {
	return s.UserID != 0
}

// Can 等价于 Allow(s, action)
func (s Subject) Can(action Action) bool {
	return Allow(s, action)
}

// Allow 判断主体是否可以执行动作
func Allow(s Subject, action Action) bool {
	if !s.Authenticated() {
		return false
	}
	if s.Superadmin {
		return true
	}
	for _, p := range s.Permissions {
		if p == string(action) {
			return true
		}
	}
	return false
}
