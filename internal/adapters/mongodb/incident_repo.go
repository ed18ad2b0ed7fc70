package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
)

type incidentDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Type        string             `bson:"type"`
	Line        string             `bson:"line"`
	Description string             `bson:"description"`
	StopID      string             `bson:"stop_id,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d *incidentDoc) toDomain() *domain.Incident {
	return &domain.Incident{
		ID:          d.ID.Hex(),
		Type:        d.Type,
		Line:        d.Line,
		Description: d.Description,
		StopID:      d.StopID,
		CreatedAt:   d.CreatedAt,
	}
}

// IncidentRepo implements ports.IncidentRepository.
type IncidentRepo struct {
	db *DB
}

func NewIncidentRepo(db *DB) *IncidentRepo {
	return &IncidentRepo{db: db}
}

func (r *IncidentRepo) Create(ctx context.Context, inc *domain.Incident) (*domain.Incident, error) {
	doc := &incidentDoc{
		Type:        inc.Type,
		Line:        inc.Line,
		Description: inc.Description,
		StopID:      inc.StopID,
		CreatedAt:   inc.CreatedAt,
	}
	res, err := r.db.Col(colIncidents).InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	created := *inc
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

// ListByLine returns incidents newest-first, all lines when line is empty.
func (r *IncidentRepo) ListByLine(ctx context.Context, line string) ([]domain.Incident, error) {
	filter := bson.M{}
	if line != "" {
		filter["line"] = line
	}

	cur, err := r.db.Col(colIncidents).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []incidentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]domain.Incident, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].toDomain())
	}
	return out, nil
}

func (r *IncidentRepo) Update(ctx context.Context, id string, patch map[string]any) (*domain.Incident, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	set := bson.M{}
	for k, v := range patch {
		set[k] = v
	}

	var doc incidentDoc
	err = r.db.Col(colIncidents).FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *IncidentRepo) Delete(ctx context.Context, id string) (*domain.Incident, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc incidentDoc
	err = r.db.Col(colIncidents).FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}
