package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Session       SessionConfig       `mapstructure:"session"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Broadcast     BroadcastConfig     `mapstructure:"broadcast"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
	Bootstrap     BootstrapConfig     `mapstructure:"bootstrap"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Mode    string `mapstructure:"mode"`
	Port    int    `mapstructure:"port"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
}

// DSN 返回PostgreSQL连接字符串
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Addr 返回Redis地址
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// SessionConfig 会话配置（会话数据存于 Redis）
type SessionConfig struct {
	CookieName      string `mapstructure:"cookie_name"`
	LifetimeMinutes int    `mapstructure:"lifetime_minutes"`
	Secure          bool   `mapstructure:"secure"`
}

// Lifetime 返回会话有效期
func (s *SessionConfig) Lifetime() time.Duration {
	return time.Duration(s.LifetimeMinutes) * time.Minute
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint         string   `mapstructure:"endpoint"`
	AccessKey        string   `mapstructure:"access_key"`
	SecretKey        string   `mapstructure:"secret_key"`
	UseSSL           bool     `mapstructure:"use_ssl"`
	Region           string   `mapstructure:"region"`
	Buckets          []string `mapstructure:"buckets"`
	SeriesBucket     string   `mapstructure:"series_bucket"`
	URLExpiryMinutes int      `mapstructure:"url_expiry_minutes"`
}

// URLExpiry 返回预签名 URL 有效期
func (m *MinIOConfig) URLExpiry() time.Duration {
	return time.Duration(m.URLExpiryMinutes) * time.Minute
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Brokers []string          `mapstructure:"brokers"`
	Topics  map[string]string `mapstructure:"topics"`
	GroupID string            `mapstructure:"group_id"`
}

// VideoEventsTopic 返回视频事件 topic
func (k *KafkaConfig) VideoEventsTopic() string {
	if name := k.Topics["video_events"]; name != "" {
		return name
	}
	return "video_events"
}

// ElasticsearchConfig Elasticsearch配置
type ElasticsearchConfig struct {
	Hosts []string          `mapstructure:"hosts"`
	Index map[string]string `mapstructure:"index"`
}

// VideosIndex 返回视频索引名
func (e *ElasticsearchConfig) VideosIndex() string {
	if name := e.Index["videos"]; name != "" {
		return name
	}
	return "videos"
}

// BroadcastConfig 实时广播配置
type BroadcastConfig struct {
	Channel        string `mapstructure:"channel"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout 返回单次投递超时时间
func (b *BroadcastConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// ExpireDuration 返回过期时间
func (j *JWTConfig) ExpireDuration() time.Duration {
	return time.Duration(j.ExpireHours) * time.Hour
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// BootstrapConfig 启动时初始化的超级管理员与预置账号
type BootstrapConfig struct {
	SuperadminName     string          `mapstructure:"superadmin_name"`
	SuperadminEmail    string          `mapstructure:"superadmin_email"`
	SuperadminPassword string          `mapstructure:"superadmin_password"`
	Accounts           []AccountConfig `mapstructure:"accounts"`
}

// AccountConfig 预置账号，Role 与 Permissions 的权限取并集
type AccountConfig struct {
	Name        string   `mapstructure:"name"`
	Email       string   `mapstructure:"email"`
	Password    string   `mapstructure:"password"`
	Role        string   `mapstructure:"role"`
	Permissions []string `mapstructure:"permissions"`
}

// 全局配置实例
var globalConfig *Config

// Load 加载配置文件
// 先读取 .env（可选），环境变量可覆盖配置文件，如 DATABASE_HOST
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	globalConfig = &cfg

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.mode", "release")
	v.SetDefault("app.port", 8000)
	v.SetDefault("session.cookie_name", "casteaching_session")
	v.SetDefault("session.lifetime_minutes", 120)
	v.SetDefault("broadcast.channel", "videos")
	v.SetDefault("broadcast.timeout_seconds", 5)
	v.SetDefault("minio.series_bucket", "series")
	v.SetDefault("minio.url_expiry_minutes", 60)
	v.SetDefault("kafka.group_id", "casteaching-search-sync")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("config not loaded, please call Load() first")
	}
	return globalConfig
}

// GetApp 获取应用配置
func GetApp() *AppConfig {
	return &Get().App
}

// GetKafka 获取Kafka配置
func GetKafka() *KafkaConfig {
	return &Get().Kafka
}

// GetJWT 获取JWT配置
func GetJWT() *JWTConfig {
	return &Get().JWT
}
