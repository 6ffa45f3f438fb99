package suppliers

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

func (s *Service) List(ctx context.Context) ([]Supplier, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, shared.NotFound("Supplier")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in SupplierInput) (Supplier, error) {
	if err := validate(&in); err != nil {
		return Supplier{}, err
	}
	return s.repo.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, id int64, in SupplierInput) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, shared.NotFound("Supplier")
	}
	if err := validate(&in); err != nil {
		return Supplier{}, err
	}
	return s.repo.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.NotFound("Supplier")
	}
	return s.repo.Delete(ctx, id)
}

func validate(in *SupplierInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return shared.NewValidationError("Supplier name is required")
	}
	return shared.Validate(in)
}
