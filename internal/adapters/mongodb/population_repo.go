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

// PopulationRepo implements ports.PopulationRepository over the
// populations collection.
type PopulationRepo struct {
	db *DB
}

// NewPopulationRepo creates a new PopulationRepo.
func NewPopulationRepo(db *DB) *PopulationRepo {
	return &PopulationRepo{db: db}
}

// FindByKey matches the key against the country id, the original query,
// and the ISO3 code, anchored and case-insensitive.
func (r *PopulationRepo) FindByKey(ctx context.Context, key string) (*domain.Population, error) {
	key = strings.TrimSpace(key)

	var p domain.Population
	err := r.db.Col(colPopulations).FindOne(ctx,
		bson.M{"$or": []bson.M{
			{"id": key},
			{"search_name": key},
			{"countryiso3code": key},
		}},
		options.FindOne().SetCollation(caseInsensitive),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PopulationRepo) Insert(ctx context.Context, p *domain.Population) error {
	p.SearchKey = normalizeKey(p.SearchName)
	_, err := r.db.Col(colPopulations).InsertOne(ctx, p)
	return err
}

// ListAll returns every cached aggregate, most recent first.
func (r *PopulationRepo) ListAll(ctx context.Context) ([]domain.Population, error) {
	cur, err := r.db.Col(colPopulations).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var populations []domain.Population
	if err := cur.All(ctx, &populations); err != nil {
		return nil, err
	}
	return populations, nil
}

// DeleteByCountryID removes a record by its upstream country id.
func (r *PopulationRepo) DeleteByCountryID(ctx context.Context, id string) (*domain.Population, error) {
	var p domain.Population
	err := r.db.Col(colPopulations).FindOneAndDelete(ctx,
		bson.M{"id": strings.TrimSpace(id)},
		options.FindOneAndDelete().SetCollation(caseInsensitive),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
