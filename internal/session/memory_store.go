package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

type memoryEntry struct {
	sess    Session
	expires time.Time
}

// MemoryStore is a concurrency-safe in-process Store used when Redis is
// unavailable.  Expired entries are invisible to Load immediately and are
// purged by Sweep, which StartSweeper runs periodically.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	now  func() time.Time

	scheduler *gocron.Scheduler
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, sess Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sess.ID] = memoryEntry{sess: sess, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[id]
	if !ok || !s.now().Before(e.expires) {
		return Session{}, ErrNoSession
	}
	return e.sess, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// Len reports how many entries are held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Sweep drops expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.data {
		if !now.Before(e.expires) {
			delete(s.data, id)
			n++
		}
	}
	return n
}

// StartSweeper schedules Sweep every interval until StopSweeper.
func (s *MemoryStore) StartSweeper(interval time.Duration) error {
	sc := gocron.NewScheduler(time.UTC)
	if _, err := sc.Every(interval).Do(func() { s.Sweep() }); err != nil {
		return err
	}
	sc.StartAsync()
	s.scheduler = sc
	return nil
}

func (s *MemoryStore) StopSweeper() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
