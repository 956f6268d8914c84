// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/healthdash/internal/domain/healthdata"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the collections this app uses and attaches JSON-Schema
// validators where one is defined. Servers without collMod support
// (some DocumentDB versions) are logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, n := range existing {
		have[n] = true
	}

	var problems []string
	for _, c := range collections() {
		if !have[c.name] {
			if err := db.CreateCollection(ctx, c.name); err != nil && !isNamespaceExistsErr(err) {
				problems = append(problems, c.name+": "+err.Error())
				continue
			}
			zap.L().Info("created collection", zap.String("collection", c.name))
		}
		if c.schema == nil {
			continue
		}
		if err := setValidator(ctx, db, c.name, c.schema); err != nil {
			if isUnsupported(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", c.name))
				continue
			}
			problems = append(problems, c.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type collection struct {
	name   string
	schema bson.M
}

func collections() []collection {
	return []collection{
		{"audit_logs", auditSchema()},
		{"login_records", loginSchema()},
		{"login_throttle", nil},
		{"dashboard_preferences", preferencesSchema()},
	}
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

// commandErr reports whether err is a command error with one of codes, or
// whose text contains one of phrases.
func commandErr(err error, codes []int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		for _, c := range codes {
			if ce.Code == c {
				return true
			}
		}
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErr(err, []int32{48}, "already exists", "namespace exists")
}

func isUnsupported(err error) bool {
	return commandErr(err, []int32{59, 115}, "no such command", "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func auditSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"created_at", "category", "event_type", "success"},
			"properties": bson.M{
				"created_at": bson.M{"bsonType": "date"},
				"category":   bson.M{"enum": bson.A{"auth", "admin"}},
				"event_type": bson.M{"bsonType": "string", "minLength": 1},
				"success":    bson.M{"bsonType": "bool"},
			},
		},
	}
}

func loginSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"username", "created_at"},
			"properties": bson.M{
				"username":   bson.M{"bsonType": "string", "minLength": 1},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func preferencesSchema() bson.M {
	keys := bson.A{}
	for _, p := range healthdata.Parameters() {
		keys = append(keys, p.Key)
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"username", "selected_metrics", "chart_type"},
			"properties": bson.M{
				"username": bson.M{"bsonType": "string", "minLength": 1},
				"selected_metrics": bson.M{
					"bsonType": "array",
					"items":    bson.M{"enum": keys},
				},
				"chart_type": bson.M{"enum": bson.A{healthdata.ChartLine, healthdata.ChartBar}},
			},
		},
	}
}
