package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/rs/zerolog"
	"hash/fnv"
	"os"
	"sync"
)

const (
	keyPrefix  = "cart:"
	lockShards = 64
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Store persists serialized carts. Load returns nil data for unknown keys.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Manager loads, mutates and saves the cart of one session at a time.
type Manager struct {
	store Store
	locks [lockShards]sync.Mutex
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Key is the storage key of a session's cart.
func Key(session string) string {
	return keyPrefix + session
}

// Get returns the current cart of a session; unknown sessions get an empty cart.
func (m *Manager) Get(ctx context.Context, session string) (*Cart, error) {
	return m.load(ctx, Key(session))
}

// Update applies fn to the session's cart and persists the result.
func (m *Manager) Update(ctx context.Context, session string, fn func(*Cart)) (*Cart, error) {
	key := Key(session)
	mu := m.lock(key)
	mu.Lock()
	defer mu.Unlock()

	c, err := m.load(ctx, key)
	if err != nil {
		return nil, err
	}
	fn(c)

	if c.IsEmpty() {
		if err := m.store.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("delete cart: %w", err)
		}
		return c, nil
	}

	data, err := json.Marshal(c.items)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	if err := m.store.Save(ctx, key, data); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return c, nil
}

// Clear empties the session's cart.
func (m *Manager) Clear(ctx context.Context, session string) error {
	_, err := m.Update(ctx, session, func(c *Cart) { c.Clear() })
	return err
}

func (m *Manager) load(ctx context.Context, key string) (*Cart, error) {
	data, err := m.store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(data) == 0 {
		return New(nil), nil
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Warn().Err(err).Msgf("Discarding unreadable cart %s", key)
		return New(nil), nil
	}
	return New(items), nil
}

// lock picks the shard guarding key. Sessions sharing a shard serialize.
func (m *Manager) lock(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &m.locks[h.Sum32()%lockShards]
}

// MemoryStore keeps carts in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.carts[key], nil
}

func (s *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
	return nil
}
