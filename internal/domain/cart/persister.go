// internal/domain/cart/persister.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Persister stores one snapshot per session. Writes replace the whole
// snapshot, so concurrent writers for the same session resolve as
// last-write-wins.
type Persister interface {
	// Load returns an empty snapshot when nothing is stored for the session.
	Load(ctx context.Context, sessionID string) (Snapshot, error)
	Save(ctx context.Context, sessionID string, snapshot Snapshot) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisPersister keeps session carts in Redis with a sliding expiry
type RedisPersister struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPersister creates a Redis backed persister
func NewRedisPersister(client *redis.Client, ttl time.Duration) *RedisPersister {
	return &RedisPersister{client: client, ttl: ttl}
}

func (p *RedisPersister) Load(ctx context.Context, sessionID string) (Snapshot, error) {
	data, err := p.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{SessionID: sessionID}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load cart: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode cart: %w", err)
	}
	snapshot.SessionID = sessionID
	return snapshot, nil
}

func (p *RedisPersister) Save(ctx context.Context, sessionID string, snapshot Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := p.client.Set(ctx, sessionKey(sessionID), data, p.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (p *RedisPersister) Delete(ctx context.Context, sessionID string) error {
	if err := p.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

// MemoryPersister keeps snapshots in process memory.
type MemoryPersister struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
	saveErr   error
	deleteErr error
}

// NewMemoryPersister creates an empty in-memory persister
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{snapshots: make(map[string]Snapshot)}
}

func (p *MemoryPersister) Load(_ context.Context, sessionID string) (Snapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snapshot, ok := p.snapshots[sessionID]
	if !ok {
		return Snapshot{SessionID: sessionID}, nil
	}
	snapshot.Lines = cloneLines(snapshot.Lines)
	return snapshot, nil
}

func (p *MemoryPersister) Save(_ context.Context, sessionID string, snapshot Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.saveErr != nil {
		return p.saveErr
	}
	snapshot.Lines = cloneLines(snapshot.Lines)
	p.snapshots[sessionID] = snapshot
	return nil
}

func (p *MemoryPersister) Delete(_ context.Context, sessionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.deleteErr != nil {
		return p.deleteErr
	}
	delete(p.snapshots, sessionID)
	return nil
}

// FailSaves makes every following Save return err. Pass nil to recover.
func (p *MemoryPersister) FailSaves(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saveErr = err
}

// FailDeletes makes every following Delete return err. Pass nil to recover.
func (p *MemoryPersister) FailDeletes(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleteErr = err
}

// Has reports whether a snapshot is stored for the session.
func (p *MemoryPersister) Has(sessionID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.snapshots[sessionID]
	return ok
}

func cloneLines(lines []Line) []Line {
	if lines == nil {
		return nil
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
