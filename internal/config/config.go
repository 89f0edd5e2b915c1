package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Load 加载配置
// 1. 加载 .env（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/{env}.yaml
// 3. 构建最终配置
func Load() *Config {
	// 加载 .env
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// 解析环境
	env := parseEnv(getEnv("APP_ENV", "dev"))

	// 加载 YAML 配置
	yamlCfg := loadYAMLConfig(env)

	// 从环境变量获取敏感信息
	yamlCfg.Database.Password = getEnv("MONGO_ROOT_PASSWORD", "")
	yamlCfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	yamlCfg.Blob.MinIO.AccessKey = getEnv("MINIO_ROOT_USER", "")
	yamlCfg.Blob.MinIO.SecretKey = getEnv("MINIO_ROOT_PASSWORD", "")
	yamlCfg.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	yamlCfg.Auth.AdminEmail = getEnv("ADMIN_EMAIL", "")
	yamlCfg.Auth.AdminPassword = getEnv("ADMIN_PASSWORD", "")
	yamlCfg.Alert.Username = getEnv("SMTP_USERNAME", "")
	yamlCfg.Alert.Password = getEnv("SMTP_PASSWORD", "")

	// 构建最终配置
	cfg := &Config{
		Env:         env,
		APIPort:     getEnv("API_PORT", yamlCfg.Server.Port),
		DatabaseURL: buildDatabaseURL(yamlCfg.Database),
		DatabaseDB:  yamlCfg.Database.Name,
		RedisURL:    buildRedisURL(yamlCfg.Redis),
		Blob:        yamlCfg.Blob,
		Auth:        yamlCfg.Auth,
		TokenTTL:    parseTokenTTL(yamlCfg.Auth.TokenTTL),
		Alert:       yamlCfg.Alert,
	}

	return cfg
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → {env}.yaml
func loadYAMLConfig(env Environment) *YAMLConfig {
	// 1. 初始化默认值
	cfg := &YAMLConfig{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{Host: "localhost", Port: 27017, Name: "doclocker"},
		Redis:    RedisConfig{Host: "localhost", Port: 6379, DB: 0},
		Blob:     BlobConfig{Driver: "local", UploadRoot: "uploads"},
		Auth:     AuthConfig{TokenTTL: "24h"},
	}

	// 2. 加载 {env}.yaml
	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range configPaths {
		path := filepath.Join(base, filename)
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	return cfg
}

// buildDatabaseURL 构建 MongoDB 连接字符串
func buildDatabaseURL(db DatabaseConfig) string {
	if db.URI != "" {
		return db.URI
	}
	if db.User != "" && db.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d", db.User, db.Password, db.Host, db.Port)
	}
	return fmt.Sprintf("mongodb://%s:%d", db.Host, db.Port)
}

// buildRedisURL 构建 Redis 连接字符串；未启用时返回空串
func buildRedisURL(r RedisConfig) string {
	if !r.Enabled {
		return ""
	}
	if r.Password != "" {
		return fmt.Sprintf("redis://:%s@%s:%d/%d", r.Password, r.Host, r.Port, r.DB)
	}
	return fmt.Sprintf("redis://%s:%d/%d", r.Host, r.Port, r.DB)
}

// parseTokenTTL 解析令牌有效期，非法值回退 24h
func parseTokenTTL(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// String 返回配置摘要（隐藏密码）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, DB: %s/%s, Blob: %s, Redis: %s, Alert: %s}",
		c.Env, maskPassword(c.DatabaseURL), c.DatabaseDB,
		c.Blob.Driver, maskPassword(c.RedisURL), alertDriverName(c.Alert.Driver))
}

func alertDriverName(driver string) string {
	if driver == "" {
		return "off"
	}
	return driver
}

// maskPassword 隐藏连接串中的密码
func maskPassword(url string) string {
	re := regexp.MustCompile(`(://[^:@/]*:)([^@]+)(@)`)
	return re.ReplaceAllString(url, "${1}***${3}")
}
