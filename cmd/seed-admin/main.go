// Package main 管理员账号种子工具
//
// 在不启动 API Server 的情况下创建管理员账号：
//
//	seed-admin -email admin@example.edu -password <pw>
//
// 未给出参数时回落到 ADMIN_EMAIL / ADMIN_PASSWORD 环境变量。
package main

import (
	"flag"
	"log"

	"doclocker-admin/internal/apiserver/auth"
	"doclocker-admin/internal/config"
	"doclocker-admin/internal/shared/storage/mongostore"
)

func main() {
	cfg := config.Load()

	email := flag.String("email", cfg.Auth.AdminEmail, "admin email")
	password := flag.String("password", cfg.Auth.AdminPassword, "admin password")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("email and password are required (flags or ADMIN_EMAIL/ADMIN_PASSWORD)")
	}

	store, err := mongostore.NewStore(cfg.DatabaseURL, cfg.DatabaseDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer store.Close()

	if err := auth.EnsureAdminUser(store, *email, *password); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}
	log.Printf("Admin user ready: %s", *email)
}
