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

// reportDoc is the stored shape of a report. The domain type keeps its
// id as a plain string, so the repo owns the ObjectID mapping.
type reportDoc struct {
	ID           primitive.ObjectID    `bson:"_id,omitempty"`
	Title        string                `bson:"title"`
	Description  string                `bson:"description"`
	Category     string                `bson:"category"`
	Location     domain.ReportLocation `bson:"location"`
	Status       string                `bson:"status"`
	Priority     string                `bson:"priority"`
	UserID       string                `bson:"user_id,omitempty"`
	MediaURLs    []string              `bson:"media_urls"`
	TrackingCode string                `bson:"tracking_code"`
	Metadata     domain.ReportMetadata `bson:"metadata"`
}

func (d *reportDoc) toDomain() *domain.Report {
	return &domain.Report{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Description:  d.Description,
		Category:     d.Category,
		Location:     d.Location,
		Status:       d.Status,
		Priority:     d.Priority,
		UserID:       d.UserID,
		MediaURLs:    d.MediaURLs,
		TrackingCode: d.TrackingCode,
		Metadata:     d.Metadata,
	}
}

func fromDomainReport(r *domain.Report) *reportDoc {
	return &reportDoc{
		Title:        r.Title,
		Description:  r.Description,
		Category:     r.Category,
		Location:     r.Location,
		Status:       r.Status,
		Priority:     r.Priority,
		UserID:       r.UserID,
		MediaURLs:    r.MediaURLs,
		TrackingCode: r.TrackingCode,
		Metadata:     r.Metadata,
	}
}

// ReportRepo implements ports.ReportRepository over the reports collection.
type ReportRepo struct {
	db *DB
}

func NewReportRepo(db *DB) *ReportRepo {
	return &ReportRepo{db: db}
}

func (r *ReportRepo) Create(ctx context.Context, rep *domain.Report) (*domain.Report, error) {
	doc := fromDomainReport(rep)
	res, err := r.db.Col(colReports).InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	created := *rep
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *ReportRepo) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Malformed ids behave like missing ids.
		return nil, domain.ErrNotFound
	}

	var doc reportDoc
	err = r.db.Col(colReports).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

// FindNearby runs a $near query around the point. The 2dsphere index on
// location returns results ordered nearest-first, which the handler keeps.
func (r *ReportRepo) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, category string, limit int) ([]domain.Report, error) {
	if limit <= 0 || limit > 20 {
		limit = 20
	}

	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lon, lat},
				},
				"$maxDistance": radiusMeters,
			},
		},
	}
	if category != "" {
		filter["category"] = category
	}

	cur, err := r.db.Col(colReports).Find(ctx, filter,
		options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []reportDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]domain.Report, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].toDomain())
	}
	return out, nil
}

func (r *ReportRepo) ListRecent(ctx context.Context, limit int) ([]domain.Report, error) {
	if limit <= 0 {
		limit = 50
	}

	cur, err := r.db.Col(colReports).Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "metadata.created_at", Value: -1}}).
			SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []reportDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]domain.Report, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].toDomain())
	}
	return out, nil
}

// Update applies a field patch and refreshes metadata.updated_at.
func (r *ReportRepo) Update(ctx context.Context, id string, patch map[string]any) (*domain.Report, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	set := bson.M{"metadata.updated_at": time.Now().UTC()}
	for k, v := range patch {
		set[k] = v
	}

	var doc reportDoc
	err = r.db.Col(colReports).FindOneAndUpdate(ctx,
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

func (r *ReportRepo) Delete(ctx context.Context, id string) (*domain.Report, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc reportDoc
	err = r.db.Col(colReports).FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}
