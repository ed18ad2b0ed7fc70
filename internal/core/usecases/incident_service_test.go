package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
	"github.com/AdelSuarez/geo-api-v2/internal/core/usecases"
)

type mockIncidentRepo struct {
	createFn func(ctx context.Context, inc *domain.Incident) (*domain.Incident, error)
	listFn   func(ctx context.Context, line string) ([]domain.Incident, error)
	updateFn func(ctx context.Context, id string, patch map[string]any) (*domain.Incident, error)
	deleteFn func(ctx context.Context, id string) (*domain.Incident, error)
}

func (m *mockIncidentRepo) Create(ctx context.Context, inc *domain.Incident) (*domain.Incident, error) {
	if m.createFn != nil {
		return m.createFn(ctx, inc)
	}
	out := *inc
	out.ID = "65f000000000000000000002"
	return &out, nil
}

func (m *mockIncidentRepo) ListByLine(ctx context.Context, line string) ([]domain.Incident, error) {
	if m.listFn != nil {
		return m.listFn(ctx, line)
	}
	return nil, nil
}

func (m *mockIncidentRepo) Update(ctx context.Context, id string, patch map[string]any) (*domain.Incident, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, domain.ErrNotFound
}

func (m *mockIncidentRepo) Delete(ctx context.Context, id string) (*domain.Incident, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func TestIncidentService_Create(t *testing.T) {
	svc := usecases.NewIncidentService(&mockIncidentRepo{}, nil, discardLogger())

	created, err := svc.Create(context.Background(), &domain.Incident{
		Type:        "signal_failure",
		Line:        "Victoria",
		Description: "Signal failure at Oxford Circus",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Error("id not assigned")
	}
	if created.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}

func TestIncidentService_Create_RequiredFields(t *testing.T) {
	svc := usecases.NewIncidentService(&mockIncidentRepo{}, nil, discardLogger())

	_, err := svc.Create(context.Background(), &domain.Incident{Line: "Victoria"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Errorf("expected 2 field errors, got %+v", ve.Fields)
	}
}

func TestIncidentService_Update_FiltersFields(t *testing.T) {
	var got map[string]any
	repo := &mockIncidentRepo{
		updateFn: func(ctx context.Context, id string, patch map[string]any) (*domain.Incident, error) {
			got = patch
			return &domain.Incident{ID: id}, nil
		},
	}
	svc := usecases.NewIncidentService(repo, nil, discardLogger())

	_, err := svc.Update(context.Background(), "65f000000000000000000002", map[string]any{
		"description": "Cleared",
		"created_at":  "2020-01-01",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got["created_at"]; ok {
		t.Error("created_at is not updatable")
	}
	if got["description"] != "Cleared" {
		t.Errorf("description not patched: %+v", got)
	}
}
