// Package testutil 测试用的数据库、Redis 与用户/视频夹具
package testutil

import (
	"strconv"
	"testing"
	"time"

	"casteaching-go/internal/authz"
	"casteaching-go/internal/config"
	"casteaching-go/internal/infra/database"
	infraRedis "casteaching-go/internal/infra/redis"
	"casteaching-go/internal/model"
	"casteaching-go/pkg/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultPassword 夹具用户的明文密码
const DefaultPassword = "12345678"

// NewDB 创建一个内存 SQLite 数据库并完成迁移
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	// 内存库按连接隔离，只保留一个连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewRedis 启动 miniredis 并返回连接到它的客户端
func NewRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatalf("miniredis port: %v", err)
	}
	client := infraRedis.NewClient(&config.RedisConfig{Host: mr.Host(), Port: port})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

// CreateUser 创建用户并授予权限（权限不存在时自动创建）
func CreateUser(t testing.TB, db *gorm.DB, name, email string, superadmin bool, actions ...authz.Action) *model.User {
	t.Helper()

	hash, err := utils.HashPassword(DefaultPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	perms := make([]model.Permission, 0, len(actions))
	for _, a := range actions {
		p := model.Permission{Name: string(a)}
		if err := db.Where(model.Permission{Name: string(a)}).FirstOrCreate(&p).Error; err != nil {
			t.Fatalf("create permission %s: %v", a, err)
		}
		perms = append(perms, p)
	}

	u := &model.User{
		Name:        name,
		Email:       email,
		Password:    hash,
		Superadmin:  superadmin,
		Permissions: perms,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// CreateRegularUser 无任何管理权限的用户
func CreateRegularUser(t testing.TB, db *gorm.DB) *model.User {
	return CreateUser(t, db, "Pepe Pringao", "pringao@casteaching.test", false)
}

// CreateVideoManager 拥有视频管理权限包（不含删除）的用户
func CreateVideoManager(t testing.TB, db *gorm.DB) *model.User {
	return CreateUser(t, db, "Video Manager", "videosmanager@casteaching.test", false, authz.VideoManagerPermissions...)
}

// CreateVideoDestroyer 视频管理权限包外加删除权限的用户
func CreateVideoDestroyer(t testing.TB, db *gorm.DB) *model.User {
	actions := append(append([]authz.Action{}, authz.VideoManagerPermissions...), authz.ActionVideosDestroy)
	return CreateUser(t, db, "Video Destroyer", "videosdestroyer@casteaching.test", false, actions...)
}

// CreateIndexOnlyUser 只能查看管理列表的用户
func CreateIndexOnlyUser(t testing.TB, db *gorm.DB) *model.User {
	return CreateUser(t, db, "Sergi Tur Badenas", "sergitur@casteaching.test", false, authz.ActionVideosIndex)
}

// CreateSuperadmin 超级管理员
func CreateSuperadmin(t testing.TB, db *gorm.DB) *model.User {
	return CreateUser(t, db, "Super Admin", "superadmin@casteaching.test", true)
}

// CreateVideo 直接写库创建视频
func CreateVideo(t testing.TB, db *gorm.DB, v *model.Video) *model.Video {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create video: %v", err)
	}
	return v
}

// CreateSerie 直接写库创建系列
func CreateSerie(t testing.TB, db *gorm.DB) *model.Serie {
	t.Helper()
	photo := "https://www.gravatar.com/avatar/sergiturbadenas"
	image := "tdd.png"
	s := &model.Serie{
		Title:           "TDD (Test Driven Development)",
		Description:     "Bla bla bla",
		Image:           &image,
		TeacherName:     "Sergi Tur Badenas",
		TeacherPhotoURL: &photo,
	}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("create serie: %v", err)
	}
	return s
}

// CreateSampleVideos 创建三个示例视频
func CreateSampleVideos(t testing.TB, db *gorm.DB) []*model.Video {
	published := time.Date(2024, time.January, 11, 15, 0, 0, 0, time.UTC)
	return []*model.Video{
		CreateVideo(t, db, &model.Video{
			Title:       "Ubuntu 101",
			Description: "# Here description",
			URL:         "https://youtu.be/w8j07_DBl_I",
			PublishedAt: &published,
		}),
		CreateVideo(t, db, &model.Video{
			Title:       "Ubuntu 102",
			Description: "# Here description",
			URL:         "https://youtu.be/w8j07_DBl_I",
			PublishedAt: &published,
		}),
		CreateVideo(t, db, &model.Video{
			Title:       "Ubuntu 103",
			Description: "# Here description",
			URL:         "https://youtu.be/w8j07_DBl_I",
			PublishedAt: &published,
		}),
	}
}
