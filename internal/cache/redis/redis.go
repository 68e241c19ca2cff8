package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avichaydahan/brandlight-reports/internal/model"
)

// Job status entries expire on their own in case a crash skips ClearJob.
const statusTTL = 24 * time.Hour

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Ping Redis to check the connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cannot connect to Redis at %s: %w", addr, err)
	}

	return &RedisCache{client: rdb}, nil
}

func (r *RedisCache) SetJobStatus(ctx context.Context, downloadID string, status model.JobStatus) error {
	return r.client.Set(ctx, jobKey(downloadID), string(status), statusTTL).Err()
}

func (r *RedisCache) GetJobStatus(ctx context.Context, downloadID string) (model.JobStatus, bool, error) {
	val, err := r.client.Get(ctx, jobKey(downloadID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, err
	}
	return model.JobStatus(val), true, nil
}

func (r *RedisCache) ClearJob(ctx context.Context, downloadID string) error {
	return r.client.Del(ctx, jobKey(downloadID)).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

// helper to standardize keys
func jobKey(downloadID string) string {
	return fmt.Sprintf("job:%s", downloadID)
}
