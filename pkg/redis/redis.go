package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound la clave no existe o ya expiró
var ErrNotFound = errors.New("redis: key not found")

// RedisClient estructura para manejar conexiones con Redis
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient crea una nueva instancia del cliente Redis y verifica la conexión
func NewRedisClient(ctx context.Context, addr, password string, db int) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("error conectando a Redis en %s: %w", addr, err)
	}

	return &RedisClient{client: rdb}, nil
}

// Set guarda un valor con TTL (0 = sin expiración)
func (r *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("error guardando %s: %w", key, err)
	}
	return nil
}

// Get obtiene un valor. Devuelve ErrNotFound si no existe.
func (r *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error obteniendo %s: %w", key, err)
	}
	return value, nil
}

// Del elimina una clave
func (r *RedisClient) Del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("error eliminando %s: %w", key, err)
	}
	return nil
}

// Close cierra la conexión con Redis
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// HealthCheck verifica que Redis esté funcionando
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
