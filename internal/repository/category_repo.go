package repository

import (
	"context"
	"errors"

	"cineteca/internal/dto"
	"cineteca/internal/entity"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Category, error)
	Search(ctx context.Context, req dto.SearchCategoryRequest, includeRelated bool) (*SearchResult[entity.Category], error)
	Create(ctx context.Context, category *entity.Category) error
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, category *entity.Category) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*entity.Category, error) {
	var category entity.Category
	err := r.db.WithContext(ctx).
		Preload("Movies").
		Where("id = ?", id).
		First(&category).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

var categorySortColumns = map[string]string{
	"name": "categories.name",
}

func (r *categoryRepository) Search(ctx context.Context, req dto.SearchCategoryRequest, includeRelated bool) (*SearchResult[entity.Category], error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)

	filtered := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&entity.Category{})
		if req.Q != "" {
			query = query.Where("categories.name ILIKE ?", "%"+req.Q+"%")
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, err
	}

	query := orderBy(filtered(), categorySortColumns, req.SortColumn, req.SortOrder, "categories.id")
	if includeRelated {
		query = query.Preload("Movies")
	}

	var categories []entity.Category
	err := query.
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&categories).Error
	if err != nil {
		return nil, err
	}

	return &SearchResult[entity.Category]{Items: categories, Page: page, PageSize: pageSize, TotalCount: total}, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	result := r.db.WithContext(ctx).Omit("Movies").Create(category)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	result := r.db.WithContext(ctx).Omit("Movies").Save(category)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM movie_categories WHERE category_id = ?", category.ID).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.Category{}, category.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNoRowsAffected
		}
		return nil
	})
}
