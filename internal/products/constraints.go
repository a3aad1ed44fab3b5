package products

import (
	"fmt"
	"strings"

	"github.com/nmarchetti/wearhaus-backend/pkg/db/models"
	pkgerrors "github.com/nmarchetti/wearhaus-backend/pkg/errors"
)

// VariantConstraints describes which variant axes a product requires and the
// values it accepts.
type VariantConstraints struct {
	RequiresSize  bool     `json:"requires_size"`
	Sizes         []string `json:"sizes,omitempty"`
	RequiresColor bool     `json:"requires_color"`
	Colors        []string `json:"colors,omitempty"`
}

// ConstraintsFor derives the variant constraints from the product's catalog data.
func ConstraintsFor(product *models.Product) VariantConstraints {
	return VariantConstraints{
		RequiresSize:  product.HasSizes(),
		Sizes:         append([]string{}, product.Sizes...),
		RequiresColor: product.HasColors(),
		Colors:        append([]string{}, product.Colors...),
	}
}

// Validate checks a chosen size/color pair against the constraints. A product
// without a variant axis must be selected with the empty value for that axis.
func (c VariantConstraints) Validate(size, color string) error {
	size = strings.TrimSpace(size)
	color = strings.TrimSpace(color)

	if c.RequiresSize {
		if size == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "size selection is required")
		}
		if !containsFold(c.Sizes, size) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size %q is not offered", size))
		}
	} else if size != "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product has no size options")
	}

	if c.RequiresColor {
		if color == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "color selection is required")
		}
		if !containsFold(c.Colors, color) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("color %q is not offered", color))
		}
	} else if color != "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product has no color options")
	}

	return nil
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}
