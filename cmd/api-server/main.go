// Package main API Server 入口
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doclocker-admin/internal/apiserver/auth"
	"doclocker-admin/internal/apiserver/server"
	"doclocker-admin/internal/config"
	"doclocker-admin/internal/shared/alert"
	"doclocker-admin/internal/shared/blobstore"
	"doclocker-admin/internal/shared/geoip"
	"doclocker-admin/internal/shared/storage/mongostore"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换 YAML）
	cfg := config.Load()

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	// 初始化 MongoDB（持久化业务数据）
	store, err := mongostore.NewStore(cfg.DatabaseURL, cfg.DatabaseDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer store.Close()
	log.Println("Connected to MongoDB")

	// 初始化对象存储（local 或 minio）
	blobs, err := newBlobStore(cfg)
	if err != nil {
		log.Fatalf("Failed to init blob storage: %v", err)
	}
	log.Printf("Blob storage ready [driver=%s]", cfg.Blob.Driver)

	// IP 归属地解析，Redis 缓存可选
	var geoCache geoip.Cache
	if cfg.RedisURL != "" {
		cache, err := geoip.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		geoCache = cache
		log.Println("Connected to Redis (geoip cache)")
	}
	geo := geoip.NewResolver(geoCache)

	// 异常时段登录告警通道
	notifier, err := newNotifier(cfg)
	if err != nil {
		log.Fatalf("Failed to init alert notifier: %v", err)
	}

	authCfg := auth.Config{
		JWTSecret:     cfg.Auth.JWTSecret,
		TokenTTL:      cfg.TokenTTL,
		AdminEmail:    cfg.Auth.AdminEmail,
		AdminPassword: cfg.Auth.AdminPassword,
	}

	// 管理员账号自举
	if err := auth.EnsureAdminUser(store, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		log.Fatalf("Failed to ensure admin user: %v", err)
	}

	h := server.NewHandler(store, blobs, geo, notifier, authCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		// 等在途审计写入落盘
		h.Shutdown()
	}()

	log.Printf("API Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}

// newBlobStore 按配置选择对象存储驱动
func newBlobStore(cfg *config.Config) (blobstore.Store, error) {
	switch cfg.Blob.Driver {
	case "minio":
		return blobstore.NewMinIOStore(context.Background(), blobstore.MinIOConfig{
			Endpoint:  cfg.Blob.MinIO.Endpoint,
			AccessKey: cfg.Blob.MinIO.AccessKey,
			SecretKey: cfg.Blob.MinIO.SecretKey,
			UseSSL:    cfg.Blob.MinIO.UseSSL,
			Bucket:    cfg.Blob.MinIO.Bucket,
		})
	case "", "local":
		return blobstore.NewLocalStore(cfg.Blob.UploadRoot)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Blob.Driver)
	}
}

// newNotifier 按配置选择告警通道；未配置时退化为空实现
func newNotifier(cfg *config.Config) (alert.Notifier, error) {
	switch cfg.Alert.Driver {
	case "mail":
		return alert.NewMailNotifier(alert.MailConfig{
			Host:     cfg.Alert.SMTPHost,
			Port:     cfg.Alert.SMTPPort,
			Username: cfg.Alert.Username,
			Password: cfg.Alert.Password,
			From:     cfg.Alert.From,
			To:       cfg.Alert.To,
		})
	case "webhook":
		return alert.NewWebhookNotifier(cfg.Alert.WebhookURL)
	case "":
		return alert.NopNotifier{}, nil
	default:
		return nil, fmt.Errorf("unknown alert driver %q", cfg.Alert.Driver)
	}
}
