package mongodb

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
)

// CityRepo implements ports.CityRepository over the cities collection.
type CityRepo struct {
	db *DB
}

// NewCityRepo creates a new CityRepo.
func NewCityRepo(db *DB) *CityRepo {
	return &CityRepo{db: db}
}

// FindByKey matches the key against the stored search term and the
// place name, anchored and case-insensitive via collation.
func (r *CityRepo) FindByKey(ctx context.Context, key string) (*domain.City, error) {
	key = strings.TrimSpace(key)

	var city domain.City
	err := r.db.Col(colCities).FindOne(ctx,
		bson.M{"$or": []bson.M{
			{"search_name": key},
			{"name": key},
		}},
		options.FindOne().SetCollation(caseInsensitive),
	).Decode(&city)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &city, nil
}

// Insert appends a cache record. The unique search_key index rejects a
// concurrent duplicate; the caller logs and swallows that.
func (r *CityRepo) Insert(ctx context.Context, city *domain.City) error {
	city.SearchKey = normalizeKey(city.SearchName)
	_, err := r.db.Col(colCities).InsertOne(ctx, city)
	return err
}

// ListAll returns every cached city, most recent first.
func (r *CityRepo) ListAll(ctx context.Context) ([]domain.City, error) {
	cur, err := r.db.Col(colCities).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var cities []domain.City
	if err := cur.All(ctx, &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

// DeleteByCityID removes a record by its upstream place id.
func (r *CityRepo) DeleteByCityID(ctx context.Context, id string) (*domain.City, error) {
	var city domain.City
	err := r.db.Col(colCities).FindOneAndDelete(ctx, bson.M{"id": id}).Decode(&city)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &city, nil
}

// UpdateByCityID applies a partial update and returns the new record.
func (r *CityRepo) UpdateByCityID(ctx context.Context, id string, patch map[string]any) (*domain.City, error) {
	var city domain.City
	err := r.db.Col(colCities).FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$set": patch},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&city)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &city, nil
}
