package main

import (
	"context"
	"log"
	"os"
	"time"

	"Gin_postgres_redis_inventory_tool/app"
	"Gin_postgres_redis_inventory_tool/config"
	"Gin_postgres_redis_inventory_tool/db"
	"Gin_postgres_redis_inventory_tool/pkg/clients/alerting"
	"Gin_postgres_redis_inventory_tool/pkg/logger"
	"Gin_postgres_redis_inventory_tool/routes"
	"Gin_postgres_redis_inventory_tool/scheduler"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	repo := db.NewRepo(application.DB)

	// 库里没有管理员时生成一张管理员邀请
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	app.BootstrapFirstAdmin(ctx, application.Config, repo, application.Log)
	cancel()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	// 低库存定时巡检
	var notifier alerting.Notifier = alerting.Nop{}
	if application.Config.AlertWebhookURL != "" {
		notifier = alerting.NewWebhookClient(application.Config.AlertWebhookURL)
	}
	sched := scheduler.New(repo, notifier, application.Config.LowStockCron,
		logger.Named(application.Log, "scheduler"))
	sched.Start()
	defer sched.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
