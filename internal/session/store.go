// Package session keeps the process-wide view of directory sessions. Sign-in
// and sign-out events are applied locally, fanned out to subscribers and, when
// Redis is configured, shared with every other instance over pub/sub.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type EventType string

const (
	SignedIn  EventType = "signed_in"
	SignedOut EventType = "signed_out"

	// DefaultRevocationTTL bounds how long a revoked session id is remembered
	// when the event carries no token expiry.
	DefaultRevocationTTL = 24 * time.Hour
)

type Event struct {
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	At        time.Time `json:"at"`
	Origin    string    `json:"origin,omitempty"`
}

type Listener func(Event)

type Store struct {
	rdb        *redis.Client
	channel    string
	instanceID string
	logger     *logrus.Logger

	mu        sync.RWMutex
	revoked   map[string]time.Time
	listeners map[int]Listener
	nextID    int

	sub  *redis.PubSub
	done chan struct{}
}

// NewStore builds a store. rdb may be nil, in which case events stay in this process.
func NewStore(rdb *redis.Client, channel string, logger *logrus.Logger) *Store {
	return &Store{
		rdb:        rdb,
		channel:    channel,
		instanceID: uuid.NewString(),
		logger:     logger,
		revoked:    make(map[string]time.Time),
		listeners:  make(map[int]Listener),
	}
}

func revokedKey(sid string) string { return "session:revoked:" + sid }

// Start subscribes to the shared channel. It must be called once at startup.
func (s *Store) Start(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}
	sub := s.rdb.Subscribe(ctx, s.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	s.sub = sub
	s.done = make(chan struct{})
	go s.consume(sub.Channel(), s.done)
	return nil
}

func (s *Store) consume(msgs <-chan *redis.Message, done chan struct{}) {
	defer close(done)
	for msg := range msgs {
		var evt Event
		if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
			s.logger.WithError(err).Warn("session: bad event payload")
			continue
		}
		if evt.Origin == s.instanceID {
			continue
		}
		s.apply(evt)
	}
}

// Close unsubscribes and waits for the consumer to drain.
func (s *Store) Close() error {
	if s.sub == nil {
		return nil
	}
	err := s.sub.Close()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
	}
	s.sub = nil
	return err
}

// Publish applies evt locally, then shares it with other instances.
func (s *Store) Publish(ctx context.Context, evt Event) error {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	evt.Origin = s.instanceID
	s.apply(evt)

	if s.rdb == nil {
		return nil
	}
	if evt.Type == SignedOut && evt.SessionID != "" {
		ttl := time.Until(revocationExpiry(evt))
		if err := s.rdb.Set(ctx, revokedKey(evt.SessionID), evt.UserID, ttl).Err(); err != nil {
			return err
		}
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return s.rdb.Publish(ctx, s.channel, b).Err()
}

// Subscribe registers fn for every applied event and returns its unsubscribe func.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// IsRevoked reports whether sid was signed out on this or any other instance.
func (s *Store) IsRevoked(ctx context.Context, sid string) bool {
	if sid == "" {
		return false
	}
	s.mu.RLock()
	exp, ok := s.revoked[sid]
	s.mu.RUnlock()
	if ok && time.Now().Before(exp) {
		return true
	}
	if s.rdb == nil {
		return false
	}
	n, err := s.rdb.Exists(ctx, revokedKey(sid)).Result()
	if err != nil {
		s.logger.WithError(err).Warn("session: revocation lookup failed")
		return false
	}
	return n > 0
}

func (s *Store) apply(evt Event) {
	s.mu.Lock()
	if evt.Type == SignedOut && evt.SessionID != "" {
		s.revoked[evt.SessionID] = revocationExpiry(evt)
	}
	now := time.Now()
	for sid, exp := range s.revoked {
		if !now.Before(exp) {
			delete(s.revoked, sid)
		}
	}
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(evt)
	}
}

func revocationExpiry(evt Event) time.Time {
	if evt.ExpiresAt.After(time.Now().Add(time.Second)) {
		return evt.ExpiresAt
	}
	return time.Now().Add(DefaultRevocationTTL)
}
