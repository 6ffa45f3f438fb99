package products

import (
	"strings"

	"github.com/mnb-billing/mnb-pos/internal/shared"
)

func normalize(in *ProductInput) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = trimmedOrNil(in.Category)
	in.Barcode = trimmedOrNil(in.Barcode)
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func (s *Service) validate(in *ProductInput) error {
	normalize(in)
	return shared.Validate(in)
}
