// Package config 统一配置管理
//
// 配置加载优先级（高→低）：
//  1. 环境变量（通过 .env 文件或 shell/systemd 注入）
//  2. YAML 配置文件（configs/{env}.yaml）
//  3. 代码硬编码默认值
//
// 凭据单一数据源：
//
//	密码/密钥只存在 .env 文件中（YAML 中不存储任何密码）：
//	JWT_SECRET、MONGO_ROOT_PASSWORD、MINIO_ROOT_USER/PASSWORD、
//	REDIS_PASSWORD、SMTP_USERNAME/PASSWORD、ADMIN_EMAIL/ADMIN_PASSWORD。
//
// 环境：
//   - 开发: APP_ENV=dev → configs/dev.yaml
//   - 测试: APP_ENV=test → configs/test.yaml
//   - 生产: APP_ENV=prod → configs/prod.yaml
package config

import "time"

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Blob     BlobConfig     `yaml:"blob"`
	Auth     AuthConfig     `yaml:"auth"`
	Alert    AlertConfig    `yaml:"alert"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port string `yaml:"port"`
}

// DatabaseConfig MongoDB 配置
type DatabaseConfig struct {
	URI      string `yaml:"uri"` // 优先于 host/port，如 mongodb://localhost:27017
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"` // 只从 MONGO_ROOT_PASSWORD 环境变量读取
	Name     string `yaml:"name"`
}

// RedisConfig Redis 配置（geoip 位置缓存，可选）
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	Password string `yaml:"-"` // 只从 REDIS_PASSWORD 环境变量读取
}

// BlobConfig 上传文件二进制存储配置
type BlobConfig struct {
	Driver     string      `yaml:"driver"`      // "local" 或 "minio"，默认 local
	UploadRoot string      `yaml:"upload_root"` // local 驱动的根目录
	MinIO      MinIOConfig `yaml:"minio"`
}

// MinIOConfig MinIO 对象存储配置
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"` // 例如 localhost:9000
	AccessKey string `yaml:"-"`        // 只从 MINIO_ROOT_USER 环境变量读取
	SecretKey string `yaml:"-"`        // 只从 MINIO_ROOT_PASSWORD 环境变量读取
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`
}

// AuthConfig 认证配置
// 注意：JWTSecret/AdminEmail/AdminPassword 只从环境变量读取，不存储在 YAML 中
type AuthConfig struct {
	JWTSecret     string `yaml:"-"`         // 只从 JWT_SECRET 环境变量读取
	TokenTTL      string `yaml:"token_ttl"` // 例如 "24h"
	AdminEmail    string `yaml:"-"`         // 只从 ADMIN_EMAIL 环境变量读取
	AdminPassword string `yaml:"-"`         // 只从 ADMIN_PASSWORD 环境变量读取
}

// AlertConfig 异常登录告警配置
type AlertConfig struct {
	Driver     string `yaml:"driver"` // ""（关闭）、"mail" 或 "webhook"
	SMTPHost   string `yaml:"smtp_host"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"-"` // 只从 SMTP_USERNAME 环境变量读取
	Password   string `yaml:"-"` // 只从 SMTP_PASSWORD 环境变量读取
	From       string `yaml:"from"`
	To         string `yaml:"to"`
	WebhookURL string `yaml:"webhook_url"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env         Environment
	APIPort     string
	DatabaseURL string
	DatabaseDB  string
	RedisURL    string // 空串表示未启用位置缓存
	Blob        BlobConfig
	Auth        AuthConfig
	TokenTTL    time.Duration
	Alert       AlertConfig
}
