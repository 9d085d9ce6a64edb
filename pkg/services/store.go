package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/backsoul/quizwidget/pkg/redis"
)

// ErrWidgetNotFound el widget no existe, fue cerrado o expiró
var ErrWidgetNotFound = errors.New("widget not found")

// Store guarda las instantáneas de widget de cada sesión de navegador
type Store interface {
	Save(ctx context.Context, widget *Widget, ttl time.Duration) error
	Load(ctx context.Context, id string) (*Widget, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type memoryEntry struct {
	widget    *Widget
	expiresAt time.Time
}

// MemoryStore store en proceso, usado cuando no hay Redis configurado
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, widget *Widget, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{widget: widget.clone()}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries[widget.ID] = entry

	// Limpieza perezosa de entradas vencidas
	for id, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, id)
		}
	}
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Widget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[id]
	if !ok {
		return nil, ErrWidgetNotFound
	}
	if m.expired(entry) {
		delete(m.entries, id)
		return nil, ErrWidgetNotFound
	}

	return entry.widget.clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func (m *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)
}

// RedisStore guarda los widgets como JSON en Redis con TTL
type RedisStore struct {
	client *redis.RedisClient
}

func NewRedisStore(client *redis.RedisClient) *RedisStore {
	return &RedisStore{client: client}
}

func widgetKey(id string) string {
	return fmt.Sprintf("quiz:widget:%s", id)
}

func (r *RedisStore) Save(ctx context.Context, widget *Widget, ttl time.Duration) error {
	data, err := json.Marshal(widget)
	if err != nil {
		return fmt.Errorf("error serializando widget: %w", err)
	}
	return r.client.Set(ctx, widgetKey(widget.ID), data, ttl)
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Widget, error) {
	data, err := r.client.Get(ctx, widgetKey(id))
	if errors.Is(err, redis.ErrNotFound) {
		return nil, ErrWidgetNotFound
	}
	if err != nil {
		return nil, err
	}

	var widget Widget
	if err := json.Unmarshal(data, &widget); err != nil {
		return nil, fmt.Errorf("error deserializando widget %s: %w", id, err)
	}
	return &widget, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, widgetKey(id))
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.HealthCheck(ctx)
}
