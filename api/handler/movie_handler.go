package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"cineteca/api/metrics"
	"cineteca/internal/dto"
	"cineteca/internal/entity"
	"cineteca/internal/repository"
	"cineteca/internal/service"
	"cineteca/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type MovieHandler struct {
	Movies     repository.MovieRepository
	Studios    repository.StudioRepository
	Categories repository.CategoryRepository
	Images     storage.ImageStore
	Validate   *validator.Validate
}

func NewMovieHandler(
	movies repository.MovieRepository,
	studios repository.StudioRepository,
	categories repository.CategoryRepository,
	images storage.ImageStore,
	validate *validator.Validate,
) *MovieHandler {
	return &MovieHandler{
		Movies:     movies,
		Studios:    studios,
		Categories: categories,
		Images:     images,
		Validate:   validate,
	}
}

func (h *MovieHandler) Search(c echo.Context) error {
	var req dto.SearchMovieRequest
	if err := c.Bind(&req); err != nil {
		return writeBindError(c, err)
	}
	result, err := h.Movies.Search(c.Request().Context(), req, true)
	if err != nil {
		return writeServiceError(c, err)
	}
	response := dto.NewSearchResponse(
		dto.MovieResponsesFromEntities(result.Items),
		result.Page, result.PageSize, result.TotalCount,
	)
	return writeObject(c, http.StatusOK, response)
}

func (h *MovieHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeErrors(c, http.StatusBadRequest, "invalid movie id")
	}
	movie, err := h.Movies.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	if movie == nil {
		return writeServiceError(c, service.ErrNotFound)
	}
	return writeObject(c, http.StatusOK, dto.MovieResponseFromEntity(movie))
}

func (h *MovieHandler) Create(c echo.Context) error {
	var req dto.CreateMovieRequest
	if err := c.Bind(&req); err != nil {
		return writeBindError(c, err)
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			return writeBindError(c, err)
		}
	}

	ctx := c.Request().Context()
	movie := &entity.Movie{
		Name:        req.Name,
		ReleaseYear: req.ReleaseYear,
		BoxOffice:   req.BoxOffice,
	}
	if err := h.attachStudio(c, movie, req.Studio); err != nil {
		return err
	}
	if err := h.attachCategories(c, movie, req.Categories); err != nil {
		return err
	}

	imageID, err := h.uploadImage(c, "")
	if err != nil {
		return writeServiceError(c, err)
	}
	if imageID != "" {
		movie.ImageID = &imageID
	}

	if err := h.Movies.Create(ctx, movie); err != nil {
		if imageID != "" {
			if deleteErr := h.Images.Delete(ctx, imageID); deleteErr != nil {
				logrus.WithError(deleteErr).WithField("image_id", imageID).Warn("orphan image left in storage")
			}
		}
		return writeServiceError(c, err)
	}

	created, err := h.Movies.GetByID(ctx, movie.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	metrics.CatalogWritesTotal.WithLabelValues("movie", "create").Inc()
	return writeObject(c, http.StatusCreated, dto.MovieResponseFromEntity(created))
}

func (h *MovieHandler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeErrors(c, http.StatusBadRequest, "invalid movie id")
	}
	ctx := c.Request().Context()
	movie, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	if movie == nil {
		return writeServiceError(c, service.ErrNotFound)
	}

	var req dto.UpdateMovieRequest
	if err := c.Bind(&req); err != nil {
		return writeBindError(c, err)
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			return writeBindError(c, err)
		}
	}

	if req.Name != nil {
		movie.Name = *req.Name
	}
	if req.ReleaseYear != nil {
		movie.ReleaseYear = *req.ReleaseYear
	}
	if req.BoxOffice != nil {
		movie.BoxOffice = *req.BoxOffice
	}
	if req.Studio != nil {
		if err := h.attachStudio(c, movie, req.Studio); err != nil {
			return err
		}
	}
	if req.Categories != nil {
		if err := h.attachCategories(c, movie, *req.Categories); err != nil {
			return err
		}
	}

	// A failed poster upload keeps the previous image and the update goes
	// through anyway.
	existingID := ""
	if movie.ImageID != nil {
		existingID = *movie.ImageID
	}
	if imageID, err := h.uploadImage(c, existingID); err != nil {
		logrus.WithError(err).WithField("movie_id", movie.ID).Warn("poster upload failed, keeping previous image")
	} else if imageID != "" {
		movie.ImageID = &imageID
	}

	if err := h.Movies.Update(ctx, movie); err != nil {
		return writeServiceError(c, err)
	}

	updated, err := h.Movies.GetByID(ctx, movie.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	metrics.CatalogWritesTotal.WithLabelValues("movie", "update").Inc()
	return writeObject(c, http.StatusOK, dto.MovieResponseFromEntity(updated))
}

func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeErrors(c, http.StatusBadRequest, "invalid movie id")
	}
	ctx := c.Request().Context()
	movie, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	if movie == nil {
		return writeServiceError(c, service.ErrNotFound)
	}

	if err := h.Movies.Delete(ctx, movie); err != nil {
		return writeServiceError(c, err)
	}
	if movie.ImageID != nil {
		if err := h.Images.Delete(ctx, *movie.ImageID); err != nil {
			logrus.WithError(err).WithField("image_id", *movie.ImageID).Warn("orphan image left in storage")
		}
	}
	metrics.CatalogWritesTotal.WithLabelValues("movie", "delete").Inc()
	return writeObject(c, http.StatusOK, map[string]int64{"id": movie.ID})
}

// attachStudio links the movie to an existing studio by id only. Zero
// detaches the studio.
func (h *MovieHandler) attachStudio(c echo.Context, movie *entity.Movie, studioID *int64) error {
	if studioID == nil {
		return nil
	}
	if *studioID == 0 {
		movie.StudioID = nil
		movie.Studio = nil
		return nil
	}
	studio, err := h.Studios.GetByID(c.Request().Context(), *studioID)
	if err != nil {
		return writeServiceError(c, err)
	}
	if studio == nil {
		return writeErrors(c, http.StatusBadRequest, "studio does not exist")
	}
	movie.StudioID = studioID
	movie.Studio = nil
	return nil
}

// attachCategories replaces the movie's category set with references to
// existing categories by id only.
func (h *MovieHandler) attachCategories(c echo.Context, movie *entity.Movie, categoryIDs []int64) error {
	categories := make([]entity.Category, 0, len(categoryIDs))
	for _, categoryID := range categoryIDs {
		category, err := h.Categories.GetByID(c.Request().Context(), categoryID)
		if err != nil {
			return writeServiceError(c, err)
		}
		if category == nil {
			return writeErrors(c, http.StatusBadRequest, "category does not exist")
		}
		categories = append(categories, entity.Category{ID: categoryID})
	}
	movie.Categories = categories
	return nil
}

// uploadImage stores the optional "image" multipart part and returns the
// image id, or "" when the request carries no image.
func (h *MovieHandler) uploadImage(c echo.Context, existingID string) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}
	return h.storeImage(c, file, existingID)
}

func (h *MovieHandler) storeImage(c echo.Context, file *multipart.FileHeader, existingID string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return h.Images.Upload(c.Request().Context(), src, file.Header.Get("Content-Type"), existingID)
}
