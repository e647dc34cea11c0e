// Package cache wraps Redis for the volatile state the API keeps outside
// Postgres: email-verification and password-reset tokens, and a short-lived
// payment-status read cache.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"payflow/internal/models"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

const (
	verifyKeyPrefix = "verify:"
	resetKeyPrefix  = "reset:"
	statusKeyPrefix = "txstatus:"

	statusTTL = 5 * time.Minute
)

type Service struct {
	client *redis.Client
}

func NewService(client *redis.Client) *Service {
	return &Service{client: client}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Service) Close() error {
	return s.client.Close()
}

// StoreVerificationToken maps a verification token to a user for ttl.
func (s *Service) StoreVerificationToken(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	return s.client.Set(ctx, verifyKeyPrefix+token, userID, ttl).Err()
}

// ConsumeVerificationToken resolves and deletes a verification token.
func (s *Service) ConsumeVerificationToken(ctx context.Context, token string) (uint, error) {
	return s.consume(ctx, verifyKeyPrefix+token)
}

// StoreResetToken maps a password-reset token to a user for ttl.
func (s *Service) StoreResetToken(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	return s.client.Set(ctx, resetKeyPrefix+token, userID, ttl).Err()
}

// ConsumeResetToken resolves and deletes a password-reset token.
func (s *Service) ConsumeResetToken(ctx context.Context, token string) (uint, error) {
	return s.consume(ctx, resetKeyPrefix+token)
}

func (s *Service) consume(ctx context.Context, key string) (uint, error) {
	id, err := s.client.GetDel(ctx, key).Uint64()
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// CacheTransaction stores a status-read snapshot keyed by order ID.
func (s *Service) CacheTransaction(ctx context.Context, t *models.Transaction) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, statusKeyPrefix+t.OrderID, data, statusTTL).Err()
}

// GetTransaction returns a cached snapshot, or nil on miss.
func (s *Service) GetTransaction(ctx context.Context, orderID string) (*models.Transaction, error) {
	data, err := s.client.Get(ctx, statusKeyPrefix+orderID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var t models.Transaction
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// InvalidateTransaction drops the cached snapshot after a state transition.
func (s *Service) InvalidateTransaction(ctx context.Context, orderID string) error {
	return s.client.Del(ctx, statusKeyPrefix+orderID).Err()
}
