package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/felixxplor/ecommerce-website-sub001/models"
)

// CheckoutMetadataTTL bounds how long checkout metadata survives between
// the payment-session step and the order-creation step.
const CheckoutMetadataTTL = 30 * time.Minute

func InitRedis(logger *zap.Logger) (*redis.Client, error) {
	host := getEnv("REDIS_HOST", "localhost")
	port := getEnv("REDIS_PORT", "6379")
	password := getEnv("REDIS_PASSWORD", "")

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established")
	return rdb, nil
}

// MetadataStore keeps checkout metadata keyed by the provider's session id
// so the order step can recover the cart token even when the provider
// round trip drops custom metadata. Entries expire server-side, so state
// survives process restarts and horizontal scaling.
type MetadataStore struct {
	rdb *redis.Client
}

func NewMetadataStore(rdb *redis.Client) *MetadataStore {
	return &MetadataStore{rdb: rdb}
}

func (s *MetadataStore) Set(ctx context.Context, sessionRef string, meta models.CheckoutMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, metadataKey(sessionRef), data, CheckoutMetadataTTL).Err()
}

func (s *MetadataStore) Get(ctx context.Context, sessionRef string) (models.CheckoutMetadata, bool, error) {
	var meta models.CheckoutMetadata
	data, err := s.rdb.Get(ctx, metadataKey(sessionRef)).Bytes()
	if err == redis.Nil {
		return meta, false, nil
	}
	if err != nil {
		return meta, false, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, false, err
	}
	return meta, true, nil
}

func (s *MetadataStore) Delete(ctx context.Context, sessionRef string) error {
	return s.rdb.Del(ctx, metadataKey(sessionRef)).Err()
}

func metadataKey(sessionRef string) string {
	return fmt.Sprintf("checkout:meta:%s", sessionRef)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
