// Package cache 把预测结果短暂缓存在 Redis 里。
// 预测本来就是咨询性的（允许读到略旧的库存），缓存几十秒没问题。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"Gin_postgres_redis_inventory_tool/forecast"
)

type ForecastCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewForecastCache(rdb *redis.Client, ttl time.Duration) *ForecastCache {
	return &ForecastCache{rdb: rdb, ttl: ttl}
}

func forecastKey(department string, months int) string {
	if department == "" {
		department = "all"
	}
	return fmt.Sprintf("inv:forecast:%s:%d", department, months)
}

// Get 返回 (nil, nil) 表示未命中
func (c *ForecastCache) Get(ctx context.Context, department string, months int) (*forecast.Result, error) {
	b, err := c.rdb.Get(ctx, forecastKey(department, months)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var res forecast.Result
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *ForecastCache) Set(ctx context.Context, department string, months int, res *forecast.Result) error {
	b, _ := json.Marshal(res)
	return c.rdb.Set(ctx, forecastKey(department, months), b, c.ttl).Err()
}
