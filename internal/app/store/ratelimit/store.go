// internal/app/store/ratelimit/store.go
package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Attempt counts failed sign-ins for one username.
type Attempt struct {
	Key          string     `bson:"_id"` // case-folded username
	AttemptCount int        `bson:"attempt_count"`
	WindowStart  time.Time  `bson:"window_start"`
	LockedUntil  *time.Time `bson:"locked_until,omitempty"`
	LastAttempt  time.Time  `bson:"last_attempt"` // TTL anchor
}

// Decision is the outcome of a throttle check.
type Decision struct {
	Allowed   bool
	Remaining int
	// RetryAt is set while the username is locked out.
	RetryAt *time.Time
}

// Store throttles sign-in attempts per username so the dashboard does not
// become a password-guessing proxy for the health API.
type Store struct {
	c           *mongo.Collection
	maxAttempts int
	window      time.Duration
	lockout     time.Duration
	now         func() time.Time
}

// New creates a Store. maxAttempts failures inside window lock the
// username for lockout.
func New(db *mongo.Database, maxAttempts int, window, lockout time.Duration) *Store {
	return &Store{
		c:           db.Collection("login_throttle"),
		maxAttempts: maxAttempts,
		window:      window,
		lockout:     lockout,
		now:         time.Now,
	}
}

// EnsureIndexes creates the TTL index that expires idle records after a day.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "last_attempt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(86400).SetName("idx_throttle_ttl"),
	})
	return err
}

func key(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (s *Store) decide(a *Attempt, now time.Time) Decision {
	if a == nil {
		return Decision{Allowed: true, Remaining: s.maxAttempts}
	}
	if a.LockedUntil != nil && now.Before(*a.LockedUntil) {
		until := *a.LockedUntil
		return Decision{RetryAt: &until}
	}
	if now.After(a.WindowStart.Add(s.window)) {
		return Decision{Allowed: true, Remaining: s.maxAttempts}
	}
	remaining := s.maxAttempts - a.AttemptCount
	if remaining <= 0 {
		return Decision{}
	}
	return Decision{Allowed: true, Remaining: remaining}
}

// Check reports whether username may attempt a sign-in now.
// Lookup errors allow the attempt.
func (s *Store) Check(ctx context.Context, username string) Decision {
	a, err := s.Get(ctx, username)
	if err != nil {
		return Decision{Allowed: true, Remaining: s.maxAttempts}
	}
	return s.decide(a, s.now())
}

// Fail records a rejected sign-in and returns the resulting decision.
func (s *Store) Fail(ctx context.Context, username string) (Decision, error) {
	k := key(username)
	now := s.now()

	// Start a fresh window when the previous one has run out.
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": k, "window_start": bson.M{"$lt": now.Add(-s.window)}},
		bson.M{
			"$set":   bson.M{"attempt_count": 0, "window_start": now},
			"$unset": bson.M{"locked_until": ""},
		},
	)
	if err != nil {
		return Decision{}, err
	}

	var a Attempt
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": k},
		bson.M{
			"$inc":         bson.M{"attempt_count": 1},
			"$set":         bson.M{"last_attempt": now},
			"$setOnInsert": bson.M{"window_start": now},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&a)
	if err != nil {
		return Decision{}, err
	}

	if a.AttemptCount >= s.maxAttempts && a.LockedUntil == nil {
		until := now.Add(s.lockout)
		if _, err := s.c.UpdateOne(ctx, bson.M{"_id": k}, bson.M{"$set": bson.M{"locked_until": until}}); err != nil {
			return Decision{}, err
		}
		a.LockedUntil = &until
	}
	return s.decide(&a, now), nil
}

// Reset forgets the failures for username. Called after a successful sign-in.
func (s *Store) Reset(ctx context.Context, username string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": key(username)})
	return err
}

// Get returns the attempt record for username, or nil if there is none.
func (s *Store) Get(ctx context.Context, username string) (*Attempt, error) {
	var a Attempt
	err := s.c.FindOne(ctx, bson.M{"_id": key(username)}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
