// app/bootstrap.go
package app

import (
	"context"
	"log"

	"Gin_postgres_redis_booking_system/auth"
	"Gin_postgres_redis_booking_system/db"
	"Gin_postgres_redis_booking_system/models"

	"github.com/google/uuid"
)

// BootstrapFirstAdmin 按环境变量创建首个管理员，已存在则只确保 is_admin
func BootstrapFirstAdmin(ctx context.Context, cfg Config, repo *db.Repo) {
	if cfg.BootstrapEmail == "" || cfg.BootstrapPassword == "" {
		return
	}

	// 已经有管理员就不动
	if n, err := repo.CountAdmins(ctx); err != nil {
		log.Printf("bootstrap: count admins failed: %v", err)
		return
	} else if n > 0 {
		return
	}

	if u, err := repo.FindUserByEmail(ctx, cfg.BootstrapEmail); err == nil {
		if !u.IsAdmin {
			if err := repo.SetUserAdmin(ctx, u.ID, true); err != nil {
				log.Printf("bootstrap: promote %s failed: %v", cfg.BootstrapEmail, err)
			}
		}
		return
	}

	hash, err := auth.HashPassword(cfg.BootstrapPassword)
	if err != nil {
		log.Printf("bootstrap: bad BOOTSTRAP_ADMIN_PASSWORD: %v", err)
		return
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        cfg.BootstrapEmail,
		FullName:     "Administrator",
		PasswordHash: hash,
		IsAdmin:      true,
	}
	if err := repo.CreateUser(ctx, u); err != nil {
		log.Printf("bootstrap: create admin failed: %v", err)
		return
	}
	log.Printf("[BOOTSTRAP] Created first admin user %s", cfg.BootstrapEmail)
}
