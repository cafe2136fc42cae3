package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DevicePool redis里的设备池：一个list，取设备时LMOVE轮转，
// 这样并发的/sign会把设备均匀用掉而不是都压在第一台上。
type DevicePool struct {
	rdb *redis.Client
	key string
}

func newDevicePool(cfg Config) *DevicePool {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		Username: cfg.RedisUser,
		Password: cfg.RedisPass,
	})
	return &DevicePool{rdb: rdb, key: cfg.DevicePoolKey}
}

func (p *DevicePool) Close() error {
	if p == nil {
		return nil
	}
	return p.rdb.Close()
}

// Draw 轮转取一台设备；池为空时返回nil
func (p *DevicePool) Draw(ctx context.Context) (*Device, error) {
	if p == nil {
		return nil, nil
	}
	line, err := p.rdb.LMove(ctx, p.key, p.key, "LEFT", "RIGHT").Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var d Device
	if err := json.Unmarshal([]byte(line), &d); err != nil {
		return nil, fmt.Errorf("bad device record: %w", err)
	}
	return &d, nil
}

// Import 导入JSON行格式的设备列表，返回有效条数
func (p *DevicePool) Import(ctx context.Context, lines []string) (int, error) {
	if p == nil {
		return 0, fmt.Errorf("device pool disabled")
	}
	added := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var d Device
		if err := json.Unmarshal([]byte(line), &d); err != nil || d.DeviceID == "" {
			continue
		}
		raw, _ := json.Marshal(d)
		if err := p.rdb.RPush(ctx, p.key, string(raw)).Err(); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// Count 池里的设备数
func (p *DevicePool) Count(ctx context.Context) (int64, error) {
	if p == nil {
		return 0, nil
	}
	return p.rdb.LLen(ctx, p.key).Result()
}
