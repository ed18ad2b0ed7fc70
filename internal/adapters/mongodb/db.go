package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names. One collection per cached domain plus the two CRUD
// entities.
const (
	colCities      = "cities"
	colPopulations = "populations"
	colReports     = "reports"
	colIncidents   = "incidents"
)

// caseInsensitive is the collation used for cache-key lookups: strength 2
// compares base characters and accents but ignores case, which replaces
// the per-query regex the store would otherwise need.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// DB wraps a connected mongo database handle.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// New connects, pings, and ensures indexes.
func New(ctx context.Context, uri, dbname string) (*DB, error) {
	dctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(dctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(dctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := &DB{Client: client, Database: client.Database(dbname)}
	if err := db.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	return db, nil
}

// Col returns a collection handle.
func (db *DB) Col(name string) *mongo.Collection {
	return db.Database.Collection(name)
}

// Ping checks connectivity, for readiness probes.
func (db *DB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, nil)
}

// Close disconnects the client.
func (db *DB) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = db.Client.Disconnect(ctx)
}

// ensureIndexes creates the indexes the repositories rely on. The
// unique search_key index is what turns concurrent duplicate cache
// write-backs into rejected inserts.
func (db *DB) ensureIndexes(ctx context.Context) error {
	ictx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var errs []string

	for _, col := range []string{colCities, colPopulations} {
		if _, err := db.Col(col).Indexes().CreateOne(ictx, mongo.IndexModel{
			Keys:    bson.D{{Key: "search_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		}); err != nil {
			errs = append(errs, col+".search_key: "+err.Error())
		}
		if _, err := db.Col(col).Indexes().CreateOne(ictx, mongo.IndexModel{
			Keys: bson.D{{Key: "name", Value: 1}},
		}); err != nil {
			errs = append(errs, col+".name: "+err.Error())
		}
	}

	if _, err := db.Col(colReports).Indexes().CreateOne(ictx, mongo.IndexModel{
		Keys: bson.D{{Key: "location", Value: "2dsphere"}},
	}); err != nil {
		errs = append(errs, "reports.location: "+err.Error())
	}
	if _, err := db.Col(colReports).Indexes().CreateOne(ictx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tracking_code", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		errs = append(errs, "reports.tracking_code: "+err.Error())
	}
	if _, err := db.Col(colReports).Indexes().CreateOne(ictx, mongo.IndexModel{
		Keys: bson.D{{Key: "metadata.created_at", Value: -1}},
	}); err != nil {
		errs = append(errs, "reports.metadata.created_at: "+err.Error())
	}

	if _, err := db.Col(colIncidents).Indexes().CreateOne(ictx, mongo.IndexModel{
		Keys: bson.D{{Key: "line", Value: 1}},
	}); err != nil {
		errs = append(errs, "incidents.line: "+err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// normalizeKey canonicalizes a search term for the unique cache key.
func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
