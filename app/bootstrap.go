// app/bootstrap.go
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"Gin_postgres_redis_inventory_tool/db"
	"Gin_postgres_redis_inventory_tool/models"
)

// BootstrapFirstAdmin 库里还没有管理员时，给配置的邮箱生成一张管理员邀请
func BootstrapFirstAdmin(ctx context.Context, cfg Config, repo *db.Repo, log *zap.Logger) {
	if cfg.BootstrapEmail == "" {
		return
	}
	n, err := repo.CountAdmins(ctx)
	if err != nil {
		log.Error("bootstrap: count admins failed", zap.Error(err))
		return
	}
	if n > 0 {
		return // 已经有管理员，跳过
	}

	// 生成一次性邀请
	buf := make([]byte, 16)
	rand.Read(buf)
	token := hex.EncodeToString(buf)

	if _, err := repo.CreateInvite(ctx, cfg.BootstrapEmail, token,
		models.RoleAdmin, "admin", time.Now().Add(24*time.Hour), "bootstrap"); err != nil {
		log.Error("bootstrap invite failed", zap.Error(err))
		return
	}

	// 打印邀请链接（直接点开注册）
	link := fmt.Sprintf("%s/register?inviteToken=%s", cfg.WebOrigin, token)
	log.Info("no admin found, created an admin invite",
		zap.String("email", cfg.BootstrapEmail),
		zap.String("link", link),
	)
}
