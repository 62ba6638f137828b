package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aerodesk/flightbooking/config"
	"github.com/aerodesk/flightbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, searchTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		searchTTL: searchTTL,
	}
}

// GetSearch returns cached search results for a route+date, or nil on miss.
func (c *RedisCache) GetSearch(ctx context.Context, origin, destination string, date time.Time) ([]domain.FlightSchedule, error) {
	data, err := c.client.Get(ctx, searchKey(origin, destination, date)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var schedules []domain.FlightSchedule
	if err := json.Unmarshal(data, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (c *RedisCache) SetSearch(ctx context.Context, origin, destination string, date time.Time, schedules []domain.FlightSchedule) error {
	payload, err := json.Marshal(schedules)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKey(origin, destination, date), payload, c.searchTTL).Err()
}

// AcquireSeatGuard takes a short-lived marker for one seat on one schedule.
// It is a cheap contention filter in front of the database row lock, not the
// source of truth: the guard expires on its own if the holder dies.
func (c *RedisCache) AcquireSeatGuard(ctx context.Context, scheduleID, seatNumber string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, seatGuardKey(scheduleID, seatNumber), "held", ttl).Result()
}

func (c *RedisCache) ReleaseSeatGuard(ctx context.Context, scheduleID, seatNumber string) error {
	return c.client.Del(ctx, seatGuardKey(scheduleID, seatNumber)).Err()
}

func searchKey(origin, destination string, date time.Time) string {
	return fmt.Sprintf("cache:schedules:%s:%s:%s", origin, destination, date.Format("2006-01-02"))
}

func seatGuardKey(scheduleID, seatNumber string) string {
	return fmt.Sprintf("guard:schedule:%s:seat:%s", scheduleID, seatNumber)
}
