package repository

import (
	"context"
	"errors"

	"cineteca/internal/dto"
	"cineteca/internal/entity"

	"gorm.io/gorm"
)

type StudioRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Studio, error)
	Search(ctx context.Context, req dto.SearchStudioRequest, includeRelated bool) (*SearchResult[entity.Studio], error)
	Create(ctx context.Context, studio *entity.Studio) error
	Update(ctx context.Context, studio *entity.Studio) error
	Delete(ctx context.Context, studio *entity.Studio) error
}

type studioRepository struct {
	db *gorm.DB
}

func NewStudioRepository(db *gorm.DB) StudioRepository {
	return &studioRepository{db: db}
}

func (r *studioRepository) GetByID(ctx context.Context, id int64) (*entity.Studio, error) {
	var studio entity.Studio
	err := r.db.WithContext(ctx).
		Preload("Movies.Categories").
		Where("id = ?", id).
		First(&studio).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &studio, nil
}

var studioSortColumns = map[string]string{
	"name":           "studios.name",
	"country":        "studios.country",
	"foundationyear": "studios.foundation_year",
}

func (r *studioRepository) Search(ctx context.Context, req dto.SearchStudioRequest, includeRelated bool) (*SearchResult[entity.Studio], error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)

	filtered := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&entity.Studio{})
		if req.Q != "" {
			query = query.Where("studios.name ILIKE ?", "%"+req.Q+"%")
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, err
	}

	query := orderBy(filtered(), studioSortColumns, req.SortColumn, req.SortOrder, "studios.id")
	if includeRelated {
		query = query.Preload("Movies")
	}

	var studios []entity.Studio
	err := query.
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&studios).Error
	if err != nil {
		return nil, err
	}

	return &SearchResult[entity.Studio]{Items: studios, Page: page, PageSize: pageSize, TotalCount: total}, nil
}

func (r *studioRepository) Create(ctx context.Context, studio *entity.Studio) error {
	result := r.db.WithContext(ctx).Omit("Movies").Create(studio)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *studioRepository) Update(ctx context.Context, studio *entity.Studio) error {
	result := r.db.WithContext(ctx).Omit("Movies").Save(studio)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *studioRepository) Delete(ctx context.Context, studio *entity.Studio) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Movies keep existing without a studio.
		err := tx.Model(&entity.Movie{}).
			Where("studio_id = ?", studio.ID).
			Update("studio_id", nil).Error
		if err != nil {
			return err
		}
		result := tx.Delete(&entity.Studio{}, studio.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNoRowsAffected
		}
		return nil
	})
}
