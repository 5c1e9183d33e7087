package idgen

import (
	"context"
	"time"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/redis/go-redis/v9"
)

// Clock abstracts the millisecond time source of Snowflake.
type Clock interface {
	Now() int64
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

func (s *SystemClock) Now() int64 {
	return time.Now().UnixMilli()
}

// RedisClock reads Redis TIME so that gateway replicas share one clock and
// their sequence numbers interleave by real creation order.
type RedisClock struct {
	client  redis.UniversalClient
	timeout time.Duration
}

func NewRedisClock(client redis.UniversalClient) *RedisClock {
	return &RedisClock{client: client, timeout: 500 * time.Millisecond}
}

// Now falls back to the local clock when Redis is unreachable.
func (r *RedisClock) Now() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	res, err := r.client.Time(ctx).Result()
	if err != nil {
		logger.Warnw("Redis TIME failed, using local clock", "error", err.Error())
		return time.Now().UnixMilli()
	}
	return res.UnixMilli()
}
