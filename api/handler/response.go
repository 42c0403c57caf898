package handler

import (
	"errors"
	"fmt"
	"net/http"

	"cineteca/api/metrics"
	"cineteca/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Response is the uniform envelope every endpoint returns. Result is false
// whenever Errors is populated.
type Response struct {
	Result bool     `json:"result"`
	Object any      `json:"object,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

func writeObject(c echo.Context, status int, object any) error {
	return c.JSON(status, Response{Result: true, Object: object})
}

func writeErrors(c echo.Context, status int, errs ...string) error {
	return c.JSON(status, Response{Result: false, Errors: errs})
}

// writeBindError reports malformed payloads and failed struct validation as
// a 400 with one message per violated rule.
func writeBindError(c echo.Context, err error) error {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		messages := make([]string, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			messages = append(messages, fmt.Sprintf("field %s failed on rule %s", fe.Field(), fe.Tag()))
		}
		return writeErrors(c, http.StatusBadRequest, messages...)
	}
	return writeErrors(c, http.StatusBadRequest, "invalid request payload")
}

func writeServiceError(c echo.Context, err error) error {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return writeErrors(c, http.StatusBadRequest, validationErr.Reasons...)
	}

	switch {
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountDisabled),
		errors.Is(err, service.ErrEmailNotConfirmed),
		errors.Is(err, service.ErrAdminProtected):
		return writeErrors(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return writeErrors(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCodeExpired),
		errors.Is(err, service.ErrUnauthorized):
		return writeErrors(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrEmailDelivery):
		metrics.EmailFailuresTotal.Inc()
		return writeErrors(c, http.StatusBadGateway, "could not send the email, try again later")
	}

	logrus.WithError(err).WithField("path", c.Path()).Error("unhandled service error")
	return writeErrors(c, http.StatusInternalServerError, "internal server error")
}
