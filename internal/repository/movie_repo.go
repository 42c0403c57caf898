package repository

import (
	"context"
	"errors"

	"cineteca/internal/dto"
	"cineteca/internal/entity"

	"gorm.io/gorm"
)

type MovieRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Movie, error)
	Search(ctx context.Context, req dto.SearchMovieRequest, includeRelated bool) (*SearchResult[entity.Movie], error)
	// Create persists the movie. Referenced Studio and Categories are
	// attached by identity only and never inserted or overwritten.
	Create(ctx context.Context, movie *entity.Movie) error
	// Update saves the movie's own fields and replaces its category set by
	// id: categories missing from movie.Categories are detached, new ones
	// are attached as existing records.
	Update(ctx context.Context, movie *entity.Movie) error
	// Delete removes the movie and its relationship rows. The referenced
	// studio and categories survive.
	Delete(ctx context.Context, movie *entity.Movie) error
}

type movieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) MovieRepository {
	return &movieRepository{db: db}
}

func (r *movieRepository) GetByID(ctx context.Context, id int64) (*entity.Movie, error) {
	var movie entity.Movie
	err := r.db.WithContext(ctx).
		Preload("Studio").
		Preload("Categories").
		Where("id = ?", id).
		First(&movie).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

var movieSortColumns = map[string]string{
	"name": "movies.name",
}

func (r *movieRepository) Search(ctx context.Context, req dto.SearchMovieRequest, includeRelated bool) (*SearchResult[entity.Movie], error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)

	filtered := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&entity.Movie{})
		if req.Q != "" {
			query = query.Where("movies.name ILIKE ?", "%"+req.Q+"%")
		}
		if req.Studio != nil {
			query = query.Where("movies.studio_id = ?", *req.Studio)
		}
		if len(req.Categories) > 0 {
			// Conjunctive: the movie's category set must contain ALL the
			// requested ids.
			matching := r.db.Table("movie_categories").
				Select("movie_id").
				Where("category_id IN ?", req.Categories).
				Group("movie_id").
				Having("COUNT(DISTINCT category_id) = ?", len(req.Categories))
			query = query.Where("movies.id IN (?)", matching)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, err
	}

	query := orderBy(filtered(), movieSortColumns, req.SortColumn, req.SortOrder, "movies.id")
	if includeRelated {
		query = query.Preload("Studio").Preload("Categories")
	}

	var movies []entity.Movie
	err := query.
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&movies).Error
	if err != nil {
		return nil, err
	}

	return &SearchResult[entity.Movie]{Items: movies, Page: page, PageSize: pageSize, TotalCount: total}, nil
}

func (r *movieRepository) Create(ctx context.Context, movie *entity.Movie) error {
	// Omit("Categories.*") writes the join rows but never the category rows
	// themselves; Omit("Studio") keeps the referenced studio untouched. This
	// is the attach-by-identity contract for every related entity.
	result := r.db.WithContext(ctx).
		Omit("Categories.*", "Studio").
		Create(movie)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *movieRepository) Update(ctx context.Context, movie *entity.Movie) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []int64
		err := tx.Table("movie_categories").
			Where("movie_id = ?", movie.ID).
			Pluck("category_id", &current).Error
		if err != nil {
			return err
		}

		added, removed := categorySetDiff(current, movie.CategoryIDs())
		if len(removed) > 0 {
			err := tx.Exec(
				"DELETE FROM movie_categories WHERE movie_id = ? AND category_id IN ?",
				movie.ID, removed,
			).Error
			if err != nil {
				return err
			}
		}
		for _, categoryID := range added {
			err := tx.Exec(
				"INSERT INTO movie_categories (movie_id, category_id) VALUES (?, ?)",
				movie.ID, categoryID,
			).Error
			if err != nil {
				return err
			}
		}

		result := tx.Omit("Categories", "Studio").Save(movie)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNoRowsAffected
		}
		return nil
	})
}

func (r *movieRepository) Delete(ctx context.Context, movie *entity.Movie) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM movie_categories WHERE movie_id = ?", movie.ID).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.Movie{}, movie.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNoRowsAffected
		}
		return nil
	})
}

// categorySetDiff computes the join-row changes that turn the current id set
// into the requested one: requested ids not already present are attached,
// current ids no longer requested are detached. Ids in both sets are left
// alone, so no duplicate row can ever be written.
func categorySetDiff(current, requested []int64) (added, removed []int64) {
	currentSet := make(map[int64]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	requestedSet := make(map[int64]struct{}, len(requested))
	for _, id := range requested {
		if _, dup := requestedSet[id]; dup {
			continue
		}
		requestedSet[id] = struct{}{}
		if _, ok := currentSet[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range current {
		if _, ok := requestedSet[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}
