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

type CategoryHandler struct {
	Categories repository.CategoryRepository
	Validate   *validator.Validate
}

func NewCategoryHandler(categories repository.CategoryRepository, validate *validator.Validate) *CategoryHandler {
	return &CategoryHandler{Categories: categories, Validate: validate}
}

func (h *CategoryHandler) Search(c echo.Context) error {
	var req dto.SearchCategoryRequest
	if err := c.Bind(&req); err != nil {
		return writeBindError(c, err)
	}
	result, err := h.Categories.Search(c.Request().Context(), req, false)
	if err != nil {
		return writeServiceError(c, err)
	}
	response := dto.NewSearchResponse(
		dto.CategoryResponsesFromEntities(result.Items, false),
		result.Page, result.PageSize, result.TotalCount,
	)
	return writeObject(c, http.StatusOK, response)
}

func (h *CategoryHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeErrors(c, http.StatusBadRequest, "invalid category id")
	}
	category, err := h.Categories.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	if category == nil {
		return writeServiceError(c, service.ErrNotFound)
	}
	return writeObject(c, http.StatusOK, dto.CategoryResponseFromEntity(category, true))
}

func (h *CategoryHandler) Create(c echo.Context) error {
	var req dto.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return writeBindError(c, err)
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			return writeBindError(c, err)
		}
	}
	category := &entity.Category{Name: req.Name}
	if err := h.Categories.Create(c.Request().Context(), category); err != nil {
		return writeServiceError(c, err)
	}
	metrics.CatalogWritesTotal.WithLabelValues("category", "create").Inc()
	return writeObject(c, http.StatusCreated, dto.CategoryResponseFromEntity(category, false))
}

func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeErrors(c, http.StatusBadRequest, "invalid category id")
	}
	ctx := c.Request().Context()
	category, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	if category == nil {
		return writeServiceError(c, service.ErrNotFound)
	}

	var req dto.UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return writeBindError(c, err)
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			return writeBindError(c, err)
		}
	}
	category.Name = req.Name

	if err := h.Categories.Update(ctx, category); err != nil {
		return writeServiceError(c, err)
	}
	metrics.CatalogWritesTotal.WithLabelValues("category", "update").Inc()
	return writeObject(c, http.StatusOK, dto.CategoryResponseFromEntity(category, false))
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeErrors(c, http.StatusBadRequest, "invalid category id")
	}
	ctx := c.Request().Context()
	category, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	if category == nil {
		return writeServiceError(c, service.ErrNotFound)
	}
	if err := h.Categories.Delete(ctx, category); err != nil {
		return writeServiceError(c, err)
	}
	metrics.CatalogWritesTotal.WithLabelValues("category", "delete").Inc()
	return writeObject(c, http.StatusOK, map[string]int64{"id": category.ID})
}
