package indexes_test

import (
	"testing"

	"github.com/dalemusser/healthdash/internal/app/system/indexes"
	"github.com/dalemusser/healthdash/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	// SetupTestDB already ran EnsureAll once.
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll() second run error = %v", err)
	}

	cur, err := db.Collection("dashboard_preferences").Indexes().List(ctx)
	if err != nil {
		t.Fatalf("list indexes: %v", err)
	}
	var specs []bson.M
	if err := cur.All(ctx, &specs); err != nil {
		t.Fatalf("decode indexes: %v", err)
	}
	found := false
	for _, s := range specs {
		if s["name"] == "uniq_preferences_username" {
			found = true
			if s["unique"] != true {
				t.Error("preferences username index should be unique")
			}
		}
	}
	if !found {
		t.Error("uniq_preferences_username not created")
	}
}
