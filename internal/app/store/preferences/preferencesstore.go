// internal/app/store/preferences/preferencesstore.go
package preferencesstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/healthdash/internal/domain/healthdata"
	"github.com/dalemusser/healthdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the dashboard_preferences collection,
// one document per username.
type Store struct {
	c *mongo.Collection
}

// New creates a new preferences store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("dashboard_preferences")}
}

// EnsureIndexes creates the unique username index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_preferences_username"),
	})
	return err
}

// Defaults returns the preferences of a user who never saved any.
func Defaults(username string) models.DashboardPreferences {
	return models.DashboardPreferences{
		Username:        username,
		SelectedMetrics: healthdata.DefaultSelection(),
		ChartType:       healthdata.ChartLine,
	}
}

// Get returns username's preferences, or the defaults when none are stored.
// Stored values are re-sanitized so a removed metric key never reaches a view.
func (s *Store) Get(ctx context.Context, username string) (models.DashboardPreferences, error) {
	var p models.DashboardPreferences
	err := s.c.FindOne(ctx, bson.M{"username": username}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Defaults(username), nil
	}
	if err != nil {
		return Defaults(username), err
	}
	p.SelectedMetrics = healthdata.SanitizeSelection(p.SelectedMetrics)
	p.ChartType = healthdata.SanitizeChartType(p.ChartType)
	return p, nil
}

// Save upserts username's preferences after sanitizing them and returns
// what was stored.
func (s *Store) Save(ctx context.Context, username string, metrics []string, chartType string) (models.DashboardPreferences, error) {
	p := models.DashboardPreferences{
		Username:        username,
		SelectedMetrics: healthdata.SanitizeSelection(metrics),
		ChartType:       healthdata.SanitizeChartType(chartType),
		UpdatedAt:       time.Now().UTC(),
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{
			"selected_metrics": p.SelectedMetrics,
			"chart_type":       p.ChartType,
			"updated_at":       p.UpdatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	return p, err
}

// Delete removes username's preferences. Used when an admin deletes the account.
func (s *Store) Delete(ctx context.Context, username string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"username": username})
	return err
}
