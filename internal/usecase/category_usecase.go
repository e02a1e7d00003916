package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/abbaskhatri/bynkbook/internal/domain"
)

// CategoryUseCase handles category reads and creation. The name-to-id map
// it produces is passed to consumers explicitly; nothing reads category
// state ambiently.
type CategoryUseCase struct {
	categoryRepo CategoryRepository
	idGen        IDGenerator
}

// NewCategoryUseCase creates a new CategoryUseCase.
func NewCategoryUseCase(categoryRepo CategoryRepository, idGen IDGenerator) *CategoryUseCase {
	return &CategoryUseCase{categoryRepo: categoryRepo, idGen: idGen}
}

// ListCategories lists categories for a business.
func (uc *CategoryUseCase) ListCategories(ctx context.Context, businessID string, includeArchived bool) ([]*domain.Category, error) {
	return uc.categoryRepo.ListByBusiness(ctx, businessID, includeArchived)
}

// CreateCategory creates a new category.
func (uc *CategoryUseCase) CreateCategory(ctx context.Context, businessID, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrCategoryNameRequired
	}

	category := &domain.Category{
		ID:         uc.idGen.Generate(),
		BusinessID: businessID,
		Name:       name,
		CreatedAt:  time.Now().UTC(),
	}

	if err := uc.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// NameMap builds the category name lookup consumers receive as a
// parameter.
func (uc *CategoryUseCase) NameMap(ctx context.Context, businessID string) (map[string]string, error) {
	categories, err := uc.categoryRepo.ListByBusiness(ctx, businessID, true)
	if err != nil {
		return nil, err
	}
	return domain.CategoryNameMap(categories), nil
}
