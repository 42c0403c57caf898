package dto

import (
	"cineteca/internal/entity"
)

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

type UpdateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

type CategoryResponse struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Movies []MovieResponse `json:"movies,omitempty"`
}

func CategoryResponseFromEntity(category *entity.Category, includeMovies bool) CategoryResponse {
	response := CategoryResponse{
		ID:   category.ID,
		Name: category.Name,
	}
	if includeMovies {
		response.Movies = MovieResponsesFromEntities(category.Movies)
	}
	return response
}

func CategoryResponsesFromEntities(categories []entity.Category, includeMovies bool) []CategoryResponse {
	responses := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, CategoryResponseFromEntity(&categories[i], includeMovies))
	}
	return responses
}
