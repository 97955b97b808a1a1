package app

import (
	"Gin_postgres_redis_inventory_tool/cache"
	"Gin_postgres_redis_inventory_tool/db"
	"Gin_postgres_redis_inventory_tool/pkg/logger"
	"Gin_postgres_redis_inventory_tool/session"
	"context"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Log    *zap.Logger
	Config Config

	appSess       *session.AppSessionStore
	forecastCache *cache.ForecastCache
}

// Config 从环境变量读取
type Config struct {
	RedisAddr        string
	RedisPwd         string
	WebOrigin        string
	SessionTTL       time.Duration
	BootstrapEmail   string // 首个管理员邀请
	AlertWebhookURL  string // 低库存预警推送地址，可为空
	LowStockCron     string
	ForecastCacheTTL time.Duration
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }
func (a *App) ForecastCache() *cache.ForecastCache   { return a.forecastCache }

func MustNew() *App {
	cfg := loadConfig()

	log := logger.Must(logger.New())

	// --- DB: Postgres ---
	dbConn := db.ConnectDB()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("redis unreachable", zap.Error(err))
	}

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)

	a := &App{
		Router: r, DB: dbConn, RDB: rdb, Log: log, Config: cfg,
		appSess:       session.NewAppSessionStore(rdb, cfg.SessionTTL),
		forecastCache: cache.NewForecastCache(rdb, cfg.ForecastCacheTTL),
	}
	return a
}

func (a *App) Close() {
	_ = a.RDB.Close()
	_ = a.Log.Sync()
}

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}

	ttlSec := get("SESSION_TTL_SECONDS", "86400")
	ttl := 24 * time.Hour
	if d, err := time.ParseDuration(ttlSec + "s"); err == nil {
		ttl = d
	}

	cacheSec := get("FORECAST_CACHE_SECONDS", "60")
	cacheTTL := time.Minute
	if d, err := time.ParseDuration(cacheSec + "s"); err == nil {
		cacheTTL = d
	}

	return Config{
		RedisAddr:        get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:         os.Getenv("REDIS_PASSWORD"),
		WebOrigin:        get("WEB_ORIGIN", "http://localhost:3000"),
		SessionTTL:       ttl,
		BootstrapEmail:   strings.ToLower(strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_EMAIL"))),
		AlertWebhookURL:  os.Getenv("ALERT_WEBHOOK_URL"),
		LowStockCron:     get("LOW_STOCK_CRON", "0 8 * * *"),
		ForecastCacheTTL: cacheTTL,
	}
}
