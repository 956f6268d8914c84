// internal/app/store/logins/loginstore.go
package loginstore

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/healthdash/internal/app/system/network"
	"github.com/dalemusser/healthdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("login_records")}
}

// EnsureIndexes creates indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_logins_username_created"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_logins_created"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a LoginRecord. If CreatedAt is zero, it's set to time.Now().UTC().
func (s *Store) Create(ctx context.Context, rec models.LoginRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, rec)
	return err
}

// CreateFrom records a successful login using the client address and user agent of r.
func (s *Store) CreateFrom(ctx context.Context, r *http.Request, username, role string) error {
	return s.Create(ctx, models.LoginRecord{
		Username:  username,
		Role:      role,
		IP:        network.GetClientIP(r),
		UserAgent: r.UserAgent(),
	})
}

// GetByUser retrieves the most recent logins of username.
func (s *Store) GetByUser(ctx context.Context, username string, limit int64) ([]models.LoginRecord, error) {
	return s.find(ctx, bson.M{"username": username}, limit)
}

// GetRecent retrieves the most recent logins across all users.
func (s *Store) GetRecent(ctx context.Context, limit int64) ([]models.LoginRecord, error) {
	return s.find(ctx, bson.M{}, limit)
}

// LastByUser returns the latest login time per username in users.
// Users who never signed in through this dashboard are absent from the map.
func (s *Store) LastByUser(ctx context.Context, users []string) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(users))
	if len(users) == 0 {
		return out, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": bson.M{"$in": users}}}},
		{{Key: "$group", Value: bson.M{"_id": "$username", "last": bson.M{"$max": "$created_at"}}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Username string    `bson:"_id"`
		Last     time.Time `bson:"last"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.Username] = row.Last
	}
	return out, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, limit int64) ([]models.LoginRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []models.LoginRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteBefore removes sign-in records older than cutoff.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
