// Package session keeps per-visitor wizard state in an in-memory TTL store.
// Nothing here crosses session boundaries; a session is one visitor's
// browser session with the embedded tool.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"stairviz/internal/domain"
	"stairviz/internal/generate"
	"stairviz/internal/wizard"
)

// Session is the complete state of one visitor's flow.
type Session struct {
	ID       string
	TenantID string
	Origin   domain.OriginDecision
	Wizard   wizard.State
	Source   *domain.SourceAsset
	Style    *domain.StyleReference
	// Unlocked is the lead-gate latch. Once true it is never reset for the
	// lifetime of the session.
	Unlocked bool
	// PendingDownload remembers that a download was requested before the
	// gate was unlocked, so it can resume after the gate submit.
	PendingDownload bool
	Estimate        *domain.Estimate
	// Pipeline enforces single-flight generation for this session.
	Pipeline  *generate.Pipeline
	CreatedAt time.Time
}

// Store is a TTL-bound session registry.
type Store struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

// NewStore constructs a Store whose sessions expire after ttl of inactivity
// at creation time.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Store{cache: gocache.New(ttl, 10*time.Minute)}
}

// Create registers a new session for the tenant with the given embed verdict
// and generation pipeline.
func (s *Store) Create(tenantID string, origin domain.OriginDecision, pipeline *generate.Pipeline) *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Origin:    origin,
		Wizard:    wizard.NewState(),
		Pipeline:  pipeline,
		CreatedAt: time.Now(),
	}
	s.cache.SetDefault(sess.ID, sess)
	return sess
}

// Get returns the live session or domain.ErrSessionExpired.
func (s *Store) Get(id string) (*Session, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, domain.ErrSessionExpired
	}
	return v.(*Session), nil
}

// Update applies fn to the session under the store lock. fn must not block
// on I/O; perform network calls outside and commit their outcome here.
func (s *Store) Update(id string, fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	return fn(sess)
}

// Snapshot returns a copy of the session under the store lock for read-only
// use.
func (s *Store) Snapshot(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.Get(id)
	if err != nil {
		return Session{}, err
	}
	return *sess, nil
}
