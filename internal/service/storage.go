package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/msomdec/proconnect/internal/domain"
	"github.com/sony/gobreaker"
)

// Storage mirrors store state into a domain.KeyValueStore as JSON. Write
// failures are recoverable: after threshold consecutive failures a circuit
// breaker opens and every later write is skipped, leaving the stores
// running in memory only for the rest of the process.
type Storage struct {
	kv      domain.KeyValueStore
	cb      *gobreaker.CircuitBreaker
	metrics *Metrics
}

// degradedFor keeps the breaker open for the lifetime of any realistic
// process.
const degradedFor = 10 * 365 * 24 * time.Hour

// NewStorage wraps kv. A threshold of 0 is treated as 1.
func NewStorage(kv domain.KeyValueStore, threshold uint32, metrics *Metrics) *Storage {
	if threshold == 0 {
		threshold = 1
	}
	s := &Storage{kv: kv, metrics: metrics}
	s.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "local-storage",
		MaxRequests: 1,
		Timeout:     degradedFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				slog.Warn("local storage disabled, continuing in memory only", "breaker", name)
			}
			metrics.setDegraded(to == gobreaker.StateOpen)
		},
	})
	return s
}

// Degraded reports whether persistence has been switched off.
func (s *Storage) Degraded() bool {
	return s.cb.State() == gobreaker.StateOpen
}

// save encodes v and writes it under key. Failures are logged, never returned.
func (s *Storage) save(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode state", "key", key, "error", err)
		return
	}
	s.write(ctx, key, func() error { return s.kv.Set(ctx, key, data) })
}

// remove deletes key. Failures are logged, never returned.
func (s *Storage) remove(ctx context.Context, key string) {
	s.write(ctx, key, func() error { return s.kv.Delete(ctx, key) })
}

func (s *Storage) write(ctx context.Context, key string, op func() error) {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, op()
	})
	switch {
	case err == nil:
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		slog.Debug("storage write skipped", "key", key)
	default:
		s.metrics.storageFailed()
		slog.Warn("storage write failed", "key", key, "error", err)
	}
}

// load decodes the value under key into dst. It reports false when the key
// is absent or storage is degraded.
func (s *Storage) load(ctx context.Context, key string, dst any) (bool, error) {
	if s.Degraded() {
		return false, nil
	}
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}
