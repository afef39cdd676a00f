package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/msomdec/proconnect/internal/domain"
	"github.com/msomdec/proconnect/internal/event"
	"github.com/msomdec/proconnect/internal/repository/sqlite"
	"github.com/msomdec/proconnect/internal/service"
)

const testSecret = "test-secret-key-for-unit-tests-0123456789"

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestKV(t *testing.T) domain.KeyValueStore {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db.KV()
}

func testSessionOptions() service.SessionOptions {
	return service.SessionOptions{
		Secret:     testSecret,
		TTL:        24 * time.Hour,
		BcryptCost: 4, // fast tests
		LoginRate:  1,
		LoginBurst: 5,
		Now:        fixedClock,
	}
}

func newTestSessionService(t *testing.T, kv domain.KeyValueStore, bus *event.Bus, metrics *service.Metrics) *service.SessionService {
	t.Helper()
	storage := service.NewStorage(kv, 3, metrics)
	s := service.NewSessionService(context.Background(), storage, testSessionOptions(), bus, metrics)
	t.Cleanup(s.Close)
	return s
}

type testStack struct {
	kv       domain.KeyValueStore
	bus      *event.Bus
	metrics  *service.Metrics
	storage  *service.Storage
	sessions *service.SessionService
	social   *service.SocialService
}

func newTestStack(t *testing.T, seed service.Seed) *testStack {
	t.Helper()
	return newTestStackOn(t, newTestKV(t), seed)
}

func newTestStackOn(t *testing.T, kv domain.KeyValueStore, seed service.Seed) *testStack {
	t.Helper()
	ctx := context.Background()
	st := &testStack{kv: kv, bus: event.NewBus(), metrics: service.NewMetrics("test")}
	st.storage = service.NewStorage(kv, 3, st.metrics)
	st.sessions = service.NewSessionService(ctx, st.storage, testSessionOptions(), st.bus, st.metrics)
	t.Cleanup(st.sessions.Close)
	st.social = service.NewSocialService(ctx, st.storage, st.sessions, seed, st.bus, st.metrics, service.SocialOptions{Now: fixedClock})
	return st
}

// register signs up a user, leaving them as the active session.
func register(t *testing.T, s *service.SessionService, name, email string) domain.User {
	t.Helper()
	u, err := s.Register(context.Background(), service.RegisterInput{Name: name, Email: email, Password: "password123"})
	if err != nil {
		t.Fatalf("Register %s: %v", email, err)
	}
	return *u
}

func login(t *testing.T, s *service.SessionService, email string) {
	t.Helper()
	if _, err := s.Login(context.Background(), email, "password123"); err != nil {
		t.Fatalf("Login %s: %v", email, err)
	}
}

// failingKV fails every write once broken is set. Reads pass through.
type failingKV struct {
	domain.KeyValueStore
	mu     sync.Mutex
	broken bool
	writes int
}

var errDiskFull = errors.New("disk full")

func (f *failingKV) Break() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broken = true
}

func (f *failingKV) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.writes++
	broken := f.broken
	f.mu.Unlock()
	if broken {
		return errDiskFull
	}
	return f.KeyValueStore.Set(ctx, key, value)
}

func (f *failingKV) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	f.writes++
	broken := f.broken
	f.mu.Unlock()
	if broken {
		return errDiskFull
	}
	return f.KeyValueStore.Delete(ctx, key)
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func record(bus *event.Bus, types ...event.Type) *recorder {
	r := &recorder{}
	for _, typ := range types {
		bus.Subscribe(typ, func(e event.Event) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, e)
		})
	}
	return r
}

func (r *recorder) count(typ event.Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}
