package dto

import (
	"cineteca/internal/entity"
)

// CreateMovieRequest arrives as multipart form data; the optional image part
// is read separately by the handler.
type CreateMovieRequest struct {
	Name        string  `form:"name" validate:"required"`
	ReleaseYear int     `form:"releaseYear" validate:"required,gte=1888"`
	BoxOffice   int64   `form:"boxOffice" validate:"gte=0"`
	Studio      *int64  `form:"studio"`
	Categories  []int64 `form:"categories"`
}

type UpdateMovieRequest struct {
	Name        *string  `form:"name"`
	ReleaseYear *int     `form:"releaseYear" validate:"omitempty,gte=1888"`
	BoxOffice   *int64   `form:"boxOffice" validate:"omitempty,gte=0"`
	Studio      *int64   `form:"studio"`
	Categories  *[]int64 `form:"categories"`
}

type MovieResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	ReleaseYear int                `json:"releaseYear"`
	BoxOffice   int64              `json:"boxOffice"`
	ImageID     *string            `json:"imageId,omitempty"`
	Studio      *StudioResponse    `json:"studio,omitempty"`
	Categories  []CategoryResponse `json:"categories"`
}

func MovieResponseFromEntity(movie *entity.Movie) MovieResponse {
	response := MovieResponse{
		ID:          movie.ID,
		Name:        movie.Name,
		ReleaseYear: movie.ReleaseYear,
		BoxOffice:   movie.BoxOffice,
		ImageID:     movie.ImageID,
		Categories:  make([]CategoryResponse, 0, len(movie.Categories)),
	}
	if movie.Studio != nil {
		studio := StudioResponseFromEntity(movie.Studio, false)
		response.Studio = &studio
	}
	for i := range movie.Categories {
		response.Categories = append(response.Categories, CategoryResponseFromEntity(&movie.Categories[i], false))
	}
	return response
}

func MovieResponsesFromEntities(movies []entity.Movie) []MovieResponse {
	responses := make([]MovieResponse, 0, len(movies))
	for i := range movies {
		responses = append(responses, MovieResponseFromEntity(&movies[i]))
	}
	return responses
}
