package notify

import (
	"context"
	"fmt"
	"strconv"

	"parking-system/internal/services"

	"github.com/redis/go-redis/v9"
)

// RedisDisplay keeps the free-slot count under "<prefix>:free_slots" and
// announces changes on the "<prefix>:display" and "<prefix>:barrier"
// channels for display boards that subscribe to them.
type RedisDisplay struct {
	redis  *redis.Client
	prefix string
}

func NewRedisDisplay(redisClient *redis.Client, prefix string) *RedisDisplay {
	return &RedisDisplay{redis: redisClient, prefix: prefix}
}

func (d *RedisDisplay) Name() string { return "redis" }

func (d *RedisDisplay) FreeSlotsKey() string {
	return fmt.Sprintf("%s:free_slots", d.prefix)
}

func (d *RedisDisplay) PublishCapacity(ctx context.Context, freeSlots int) error {
	value := strconv.Itoa(freeSlots)

	if err := d.redis.Set(ctx, d.FreeSlotsKey(), value, 0).Err(); err != nil {
		return fmt.Errorf("set free slots: %w", err)
	}

	channel := fmt.Sprintf("%s:display", d.prefix)
	if err := d.redis.Publish(ctx, channel, value).Err(); err != nil {
		return fmt.Errorf("publish display: %w", err)
	}
	return nil
}

func (d *RedisDisplay) PublishBarrier(ctx context.Context, which services.Barrier) error {
	channel := fmt.Sprintf("%s:barrier", d.prefix)
	if err := d.redis.Publish(ctx, channel, string(which)).Err(); err != nil {
		return fmt.Errorf("publish barrier: %w", err)
	}
	return nil
}
