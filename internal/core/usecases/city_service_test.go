package usecases_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/AdelSuarez/geo-api-v2/internal/core/domain"
	"github.com/AdelSuarez/geo-api-v2/internal/core/usecases"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock CityRepository ---

type mockCityRepo struct {
	findByKeyFn func(ctx context.Context, key string) (*domain.City, error)
	insertFn    func(ctx context.Context, city *domain.City) error
	listAllFn   func(ctx context.Context) ([]domain.City, error)
	deleteFn    func(ctx context.Context, id string) (*domain.City, error)
	updateFn    func(ctx context.Context, id string, patch map[string]any) (*domain.City, error)
}

func (m *mockCityRepo) FindByKey(ctx context.Context, key string) (*domain.City, error) {
	if m.findByKeyFn != nil {
		return m.findByKeyFn(ctx, key)
	}
	return nil, domain.ErrNotFound
}

func (m *mockCityRepo) Insert(ctx context.Context, city *domain.City) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, city)
	}
	return nil
}

func (m *mockCityRepo) ListAll(ctx context.Context) ([]domain.City, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockCityRepo) DeleteByCityID(ctx context.Context, id string) (*domain.City, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockCityRepo) UpdateByCityID(ctx context.Context, id string, patch map[string]any) (*domain.City, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, domain.ErrNotFound
}

// --- Mock CityProvider ---

type mockCityProvider struct {
	lookupFn func(ctx context.Context, query string) (*domain.City, error)
	calls    int
}

func (m *mockCityProvider) Lookup(ctx context.Context, query string) (*domain.City, error) {
	m.calls++
	if m.lookupFn != nil {
		return m.lookupFn(ctx, query)
	}
	return nil, domain.ErrNotFound
}

// --- Tests ---

func TestCityService_Lookup_CacheHitSkipsUpstream(t *testing.T) {
	cached := &domain.City{ID: "3128026", SearchName: "bilbao", Name: "Bilbao"}
	repo := &mockCityRepo{
		findByKeyFn: func(ctx context.Context, key string) (*domain.City, error) {
			return cached, nil
		},
	}
	provider := &mockCityProvider{}

	svc := usecases.NewCityService(repo, provider, nil, discardLogger())

	city, err := svc.Lookup(context.Background(), "Bilbao")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if city.Name != "Bilbao" {
		t.Errorf("expected Bilbao, got %s", city.Name)
	}
	if provider.calls != 0 {
		t.Errorf("cache hit must not reach upstream, got %d calls", provider.calls)
	}
}

func TestCityService_Lookup_MissFetchesAndWritesBack(t *testing.T) {
	inserted := make(chan *domain.City, 1)
	repo := &mockCityRepo{
		insertFn: func(ctx context.Context, city *domain.City) error {
			inserted <- city
			return nil
		},
	}
	provider := &mockCityProvider{
		lookupFn: func(ctx context.Context, query string) (*domain.City, error) {
			return &domain.City{ID: "2643743", SearchName: query, Name: "London"}, nil
		},
	}

	svc := usecases.NewCityService(repo, provider, nil, discardLogger())

	city, err := svc.Lookup(context.Background(), "London")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if city.Name != "London" {
		t.Errorf("expected London, got %s", city.Name)
	}

	select {
	case wb := <-inserted:
		if wb.ID != "2643743" {
			t.Errorf("write-back carried wrong city: %+v", wb)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("write-back never ran")
	}
}

func TestCityService_Lookup_WriteBackFailureDoesNotSurface(t *testing.T) {
	done := make(chan struct{}, 1)
	repo := &mockCityRepo{
		insertFn: func(ctx context.Context, city *domain.City) error {
			done <- struct{}{}
			return errors.New("duplicate key")
		},
	}
	provider := &mockCityProvider{
		lookupFn: func(ctx context.Context, query string) (*domain.City, error) {
			return &domain.City{ID: "1", SearchName: query, Name: "Paris"}, nil
		},
	}

	svc := usecases.NewCityService(repo, provider, nil, discardLogger())

	if _, err := svc.Lookup(context.Background(), "Paris"); err != nil {
		t.Fatalf("write-back failure must not surface: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("write-back never ran")
	}
}

func TestCityService_Lookup_StoreErrorTreatedAsMiss(t *testing.T) {
	repo := &mockCityRepo{
		findByKeyFn: func(ctx context.Context, key string) (*domain.City, error) {
			return nil, errors.New("connection reset")
		},
	}
	provider := &mockCityProvider{
		lookupFn: func(ctx context.Context, query string) (*domain.City, error) {
			return &domain.City{ID: "1", SearchName: query, Name: "Madrid"}, nil
		},
	}

	svc := usecases.NewCityService(repo, provider, nil, discardLogger())

	city, err := svc.Lookup(context.Background(), "Madrid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if city.Name != "Madrid" || provider.calls != 1 {
		t.Errorf("store failure must fall through to upstream: %+v calls=%d", city, provider.calls)
	}
}

func TestCityService_Lookup_NotFoundPropagates(t *testing.T) {
	svc := usecases.NewCityService(&mockCityRepo{}, &mockCityProvider{}, nil, discardLogger())

	_, err := svc.Lookup(context.Background(), "Xyzzy")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCityService_Lookup_EmptyQuery(t *testing.T) {
	provider := &mockCityProvider{}
	svc := usecases.NewCityService(&mockCityRepo{}, provider, nil, discardLogger())

	_, err := svc.Lookup(context.Background(), "   ")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if provider.calls != 0 {
		t.Error("empty query must not reach upstream")
	}
}
