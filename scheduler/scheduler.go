package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"Gin_postgres_redis_inventory_tool/db"
	"Gin_postgres_redis_inventory_tool/pkg/clients/alerting"
)

// Scheduler 定时扫一遍低库存，打日志并推送 webhook 预警
type Scheduler struct {
	cron     *cron.Cron
	repo     *db.Repo
	notifier alerting.Notifier
	spec     string
	logger   *zap.Logger
}

func New(repo *db.Repo, notifier alerting.Notifier, spec string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = alerting.Nop{}
	}
	if spec == "" {
		spec = "0 8 * * *" // 每天早上八点
	}

	return &Scheduler{
		cron:     cron.New(),
		repo:     repo,
		notifier: notifier,
		spec:     spec,
		logger:   logger,
	}
}

func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("spec", s.spec))

	if _, err := s.cron.AddFunc(s.spec, s.scanLowStock); err != nil {
		s.logger.Error("failed to schedule low stock scan", zap.Error(err))
		return
	}
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) scanLowStock() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	items, err := s.repo.LowStockItems(ctx, "")
	if err != nil {
		s.logger.Error("low stock scan failed", zap.Error(err))
		return
	}
	if len(items) == 0 {
		s.logger.Info("low stock scan: all items above minimum levels")
		return
	}

	for _, it := range items {
		s.logger.Warn("item at or below minimum stock level",
			zap.String("itemId", it.ID),
			zap.String("name", it.Name),
			zap.String("department", it.Department),
			zap.Int("quantity", it.Quantity),
			zap.Int("minStockLevel", it.MinStockLevel),
		)
	}

	if err := s.notifier.NotifyLowStock(ctx, items); err != nil {
		s.logger.Error("failed to deliver low stock alert", zap.Error(err))
	}
}
