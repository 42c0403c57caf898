package dto

import (
	"cineteca/internal/entity"
)

type CreateStudioRequest struct {
	Name           string `json:"name" validate:"required"`
	Country        string `json:"country" validate:"required"`
	FoundationYear int    `json:"foundationYear" validate:"required,gte=1800"`
}

type UpdateStudioRequest struct {
	Name           *string `json:"name"`
	Country        *string `json:"country"`
	FoundationYear *int    `json:"foundationYear" validate:"omitempty,gte=1800"`
}

type StudioResponse struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Country        string          `json:"country"`
	FoundationYear int             `json:"foundationYear"`
	Movies         []MovieResponse `json:"movies,omitempty"`
}

func StudioResponseFromEntity(studio *entity.Studio, includeMovies bool) StudioResponse {
	response := StudioResponse{
		ID:             studio.ID,
		Name:           studio.Name,
		Country:        studio.Country,
		FoundationYear: studio.FoundationYear,
	}
	if includeMovies {
		response.Movies = MovieResponsesFromEntities(studio.Movies)
	}
	return response
}

func StudioResponsesFromEntities(studios []entity.Studio, includeMovies bool) []StudioResponse {
	responses := make([]StudioResponse, 0, len(studios))
	for i := range studios {
		responses = append(responses, StudioResponseFromEntity(&studios[i], includeMovies))
	}
	return responses
}
