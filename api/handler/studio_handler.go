package handler

import (
	"net/http"
	"strconv"

	"cineteca/api/metrics"
	"cineteca/internal/dto"
	"cineteca/internal/entity"
	"cineteca/internal/repository"
	"cineteca/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type StudioHandler struct {
	Studios  repository.StudioRepository
	Validate *validator.Validate
}

func NewStudioHandler(studios repository.StudioRepository, validate *validator.Validate) *StudioHandler {
	return &StudioHandler{Studios: studios, Validate: validate}
}

func (h *StudioHandler) Search(c echo.Context) error {
	var req dto.SearchStudioRequest
	if err := c.Bind(&req); err != nil {
		return writeBindError(c, err)
	}
	result, err := h.Studios.Search(c.Request().Context(), req, false)
	if err != nil {
		return writeServiceError(c, err)
	}
	response := dto.NewSearchResponse(
		dto.StudioResponsesFromEntities(result.Items, false),
		result.Page, result.PageSize, result.TotalCount,
	)
	return writeObject(c, http.StatusOK, response)
}

func (h *StudioHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeErrors(c, http.StatusBadRequest, "invalid studio id")
	}
	studio, err := h.Studios.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	if studio == nil {
		return writeServiceError(c, service.ErrNotFound)
	}
	return writeObject(c, http.StatusOK, dto.StudioResponseFromEntity(studio, true))
}

func (h *StudioHandler) Create(c echo.Context) error {
	var req dto.CreateStudioRequest
	if err := c.Bind(&req); err != nil {
		return writeBindError(c, err)
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			return writeBindError(c, err)
		}
	}
	studio := &entity.Studio{
		Name:           req.Name,
		Country:        req.Country,
		FoundationYear: req.FoundationYear,
	}
	if err := h.Studios.Create(c.Request().Context(), studio); err != nil {
		return writeServiceError(c, err)
	}
	metrics.CatalogWritesTotal.WithLabelValues("studio", "create").Inc()
	return writeObject(c, http.StatusCreated, dto.StudioResponseFromEntity(studio, false))
}

func (h *StudioHandler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeErrors(c, http.StatusBadRequest, "invalid studio id")
	}
	ctx := c.Request().Context()
	studio, err := h.Studios.GetByID(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	if studio == nil {
		return writeServiceError(c, service.ErrNotFound)
	}

	var req dto.UpdateStudioRequest
	if err := c.Bind(&req); err != nil {
		return writeBindError(c, err)
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			return writeBindError(c, err)
		}
	}
	if req.Name != nil {
		studio.Name = *req.Name
	}
	if req.Country != nil {
		studio.Country = *req.Country
	}
	if req.FoundationYear != nil {
		studio.FoundationYear = *req.FoundationYear
	}

	if err := h.Studios.Update(ctx, studio); err != nil {
		return writeServiceError(c, err)
	}
	metrics.CatalogWritesTotal.WithLabelValues("studio", "update").Inc()
	return writeObject(c, http.StatusOK, dto.StudioResponseFromEntity(studio, false))
}

func (h *StudioHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeErrors(c, http.StatusBadRequest, "invalid studio id")
	}
	ctx := c.Request().Context()
	studio, err := h.Studios.GetByID(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	if studio == nil {
		return writeServiceError(c, service.ErrNotFound)
	}
	if err := h.Studios.Delete(ctx, studio); err != nil {
		return writeServiceError(c, err)
	}
	metrics.CatalogWritesTotal.WithLabelValues("studio", "delete").Inc()
	return writeObject(c, http.StatusOK, map[string]int64{"id": studio.ID})
}
