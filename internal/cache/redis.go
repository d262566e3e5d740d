package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient cache Redis des résultats de motion. Un résultat calculé est
// un instantané: il est invalidé à chaque dépôt de bulletin et à la
// clôture de la motion.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connexion Redis
func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("[Redis] Connected to %s", addr)
	return &RedisClient{client: client}, nil
}

func resultKey(tenantID, motionID int64) string {
	return fmt.Sprintf("tenant:%d:motion:%d:result", tenantID, motionID)
}

// SetMotionResult pose l'instantané de résultat avec TTL
func (r *RedisClient) SetMotionResult(ctx context.Context, tenantID, motionID int64, result interface{}, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, resultKey(tenantID, motionID), data, ttl).Err()
}

// GetMotionResult lit l'instantané; (nil, nil) si absent
func (r *RedisClient) GetMotionResult(ctx context.Context, tenantID, motionID int64, out interface{}) (bool, error) {
	val, err := r.client.Get(ctx, resultKey(tenantID, motionID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false, err
	}
	return true, nil
}

// InvalidateMotionResult supprime l'instantané (bulletin déposé, clôture)
func (r *RedisClient) InvalidateMotionResult(ctx context.Context, tenantID, motionID int64) error {
	return r.client.Del(ctx, resultKey(tenantID, motionID)).Err()
}

// Close ferme la connexion
func (r *RedisClient) Close() error {
	return r.client.Close()
}
