package products

import (
	"context"
	"strings"

	"github.com/mnb-billing/mnb-pos/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.NotFound("Product")
	}
	return s.repo.Get(ctx, id)
}

// GetByBarcode looks up an exact barcode; a blank barcode never matches.
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Product{}, shared.NotFound("Product")
	}
	return s.repo.GetByBarcode(ctx, barcode)
}

// Search matches name or category by substring, or the barcode exactly.
func (s *Service) Search(ctx context.Context, term string) ([]Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []Product{}, nil
	}
	return s.repo.Search(ctx, term)
}

func (s *Service) Create(ctx context.Context, in ProductInput) (Product, error) {
	if err := s.validate(&in); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, id int64, in ProductInput) (Product, error) {
	if id <= 0 {
		return Product{}, shared.NotFound("Product")
	}
	if err := s.validate(&in); err != nil {
		return Product{}, err
	}
	return s.repo.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.NotFound("Product")
	}
	return s.repo.Delete(ctx, id)
}
