package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("session not found")

// Record is the persisted session row.
type Record struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Data      datatypes.JSON `gorm:"not null"`
	ExpiresAt time.Time      `gorm:"index"`
	UpdatedAt time.Time
}

func (Record) TableName() string { return "sessions" }

type Store interface {
	Load(ctx context.Context, id uuid.UUID) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type gormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the sessions table and returns a persistent store.
// Callers fall back to NewMemoryStore when this fails so a broken session
// backend degrades the app instead of taking it down.
func NewGormStore(db *gorm.DB) (Store, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return &gormStore{db: db}, nil
}

func (s *gormStore) Load(ctx context.Context, id uuid.UUID) (*Record, error) {
	var rec Record
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *gormStore) Save(ctx context.Context, rec *Record) error {
	return s.db.WithContext(ctx).Save(rec).Error
}

func (s *gormStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&Record{}, "id = ?", id).Error
}

// memoryStore is the non-persistent fallback: sessions are lost on restart,
// which is explicitly accepted over crashing the pipeline.
type memoryStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]Record
	ops     int
	now     func() time.Time
}

func NewMemoryStore() Store {
	return &memoryStore{
		records: make(map[uuid.UUID]Record),
		now:     time.Now,
	}
}

func (s *memoryStore) Load(_ context.Context, id uuid.UUID) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || s.now().After(rec.ExpiresAt) {
		delete(s.records, id)
		return nil, ErrNotFound
	}
	out := rec
	return &out, nil
}

func (s *memoryStore) Save(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.ID] = *rec

	// Sweep expired records now and then to bound memory.
	s.ops++
	if s.ops >= 1000 {
		now := s.now()
		for id, r := range s.records {
			if now.After(r.ExpiresAt) {
				delete(s.records, id)
			}
		}
		s.ops = 0
	}
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}
