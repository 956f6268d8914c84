// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// collectionIndexes lists the desired indexes per collection. The names match
// the ones each store's EnsureIndexes uses so both paths converge.
func collectionIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		"audit_logs": {
			{Keys: bson.D{{Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_audit_created")},
			{Keys: bson.D{{Key: "username", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_audit_username")},
			{Keys: bson.D{{Key: "actor", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_audit_actor")},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_audit_category")},
			{Keys: bson.D{{Key: "event_type", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_audit_event_type")},
		},
		"login_records": {
			{Keys: bson.D{{Key: "username", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_logins_username_created")},
			{Keys: bson.D{{Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_logins_created")},
		},
		"login_throttle": {
			{Keys: bson.D{{Key: "last_attempt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(86400).SetName("idx_throttle_ttl")},
		},
		"dashboard_preferences": {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_preferences_username")},
		},
	}
}

// Collections returns the names of the collections EnsureAll manages.
func Collections() []string {
	return []string{"audit_logs", "login_records", "login_throttle", "dashboard_preferences"}
}

/*
EnsureAll is called at startup. Reconciliation is idempotent; errors from
every collection are aggregated so startup can fail fast with the full picture.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	all := collectionIndexes()
	var problems []string
	for _, name := range Collections() {
		if err := ensureIndexSet(ctx, db.Collection(name), all[name]); err != nil {
			problems = append(problems, name+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(b *bool) bool { return b != nil && *b }

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet creates each desired index unless one with the same key
// pattern and uniqueness already exists. A same-keyed index whose
// uniqueness differs is dropped and recreated.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listIndexes(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes to list.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		var name string
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", isUnique(unique)))

		if ex, ok := existing[sig]; ok {
			if isUnique(ex.Unique) == isUnique(unique) {
				log.Debug("reusing existing index", zap.String("existing_name", ex.Name))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop %s failed: %v", name, ex.Name, err))
				continue
			}
			log.Info("dropped index with mismatched uniqueness", zap.String("existing_name", ex.Name))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && isUnique(unique) {
				errs = append(errs, fmt.Sprintf("%s: cannot create unique index (duplicates present)", name))
			} else {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			}
			log.Warn("index ensure failed", zap.Error(err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
