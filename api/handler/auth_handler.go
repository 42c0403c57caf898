package handler

import (
	"errors"
	"net/http"

	"cineteca/api/metrics"
	"cineteca/api/middleware"
	"cineteca/internal/dto"
	"cineteca/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Service  *service.AuthService
	Validate *validator.Validate
}

func NewAuthHandler(svc *service.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{Service: svc, Validate: validate}
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req dto.SignupRequest
	if err := c.Bind(&req); err != nil {
		return writeBindError(c, err)
	}
	if err := h.validate(req); err != nil {
		return writeBindError(c, err)
	}
	user, err := h.Service.Signup(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	metrics.SignupsTotal.Inc()
	return writeObject(c, http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return writeBindError(c, err)
	}
	if err := h.validate(req); err != nil {
		return writeBindError(c, err)
	}
	response, err := h.Service.Login(c.Request().Context(), req)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginOutcome(err)).Inc()
		return writeServiceError(c, err)
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return writeObject(c, http.StatusOK, response)
}

func (h *AuthHandler) ConfirmEmail(c echo.Context) error {
	code, err := uuid.Parse(c.Param("code"))
	if err != nil {
		return writeErrors(c, http.StatusBadRequest, "invalid confirmation code")
	}
	username, err := h.Service.ConfirmEmail(c.Request().Context(), code)
	if err != nil {
		metrics.EmailConfirmationsTotal.WithLabelValues(confirmOutcome(err)).Inc()
		return writeServiceError(c, err)
	}
	metrics.EmailConfirmationsTotal.WithLabelValues("confirmed").Inc()
	return writeObject(c, http.StatusOK, map[string]string{"username": username})
}

func (h *AuthHandler) RecoverPassword(c echo.Context) error {
	var req dto.RecoverPasswordRequest
	if err := c.Bind(&req); err != nil {
		return writeBindError(c, err)
	}
	if err := h.validate(req); err != nil {
		return writeBindError(c, err)
	}
	resent, err := h.Service.RecoverPassword(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	message := "a new password was sent to the account email"
	if resent {
		message = "the account email is not confirmed yet, a new confirmation code was sent"
	}
	return writeObject(c, http.StatusOK, map[string]string{"message": message})
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeErrors(c, http.StatusUnauthorized, "unauthorized")
	}
	user, err := h.Service.GetUser(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeObject(c, http.StatusOK, user)
}

func (h *AuthHandler) UpdateMe(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeErrors(c, http.StatusUnauthorized, "unauthorized")
	}
	var req dto.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return writeBindError(c, err)
	}
	if err := h.validate(req); err != nil {
		return writeBindError(c, err)
	}
	response, err := h.Service.SelfUpdate(c.Request().Context(), userID, req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeObject(c, http.StatusOK, response)
}

func (h *AuthHandler) SearchUsers(c echo.Context) error {
	var req dto.SearchUserRequest
	if err := c.Bind(&req); err != nil {
		return writeBindError(c, err)
	}
	response, err := h.Service.SearchUsers(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeObject(c, http.StatusOK, response)
}

func (h *AuthHandler) GetUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeErrors(c, http.StatusBadRequest, "invalid user id")
	}
	user, err := h.Service.GetUser(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeObject(c, http.StatusOK, user)
}

func (h *AuthHandler) UpdateUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeErrors(c, http.StatusBadRequest, "invalid user id")
	}
	var req dto.UpdateAnyUserRequest
	if err := c.Bind(&req); err != nil {
		return writeBindError(c, err)
	}
	if err := h.validate(req); err != nil {
		return writeBindError(c, err)
	}
	if err := h.Service.AdminUpdate(c.Request().Context(), userID, req); err != nil {
		return writeServiceError(c, err)
	}
	return writeObject(c, http.StatusOK, map[string]string{"id": userID.String()})
}

func (h *AuthHandler) ToggleUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeErrors(c, http.StatusBadRequest, "invalid user id")
	}
	user, err := h.Service.ToggleEnabled(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeObject(c, http.StatusOK, user)
}

func (h *AuthHandler) DeleteUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeErrors(c, http.StatusBadRequest, "invalid user id")
	}
	username, err := h.Service.DeleteUser(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeObject(c, http.StatusOK, map[string]string{"username": username})
}

func (h *AuthHandler) Roles(c echo.Context) error {
	roles, err := h.Service.Roles(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return writeObject(c, http.StatusOK, roles)
}

func (h *AuthHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return "not_found"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, service.ErrAccountDisabled):
		return "disabled"
	case errors.Is(err, service.ErrEmailNotConfirmed):
		return "unconfirmed"
	}
	return "error"
}

func confirmOutcome(err error) string {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return "not_found"
	case errors.Is(err, service.ErrCodeExpired):
		return "expired"
	}
	return "error"
}
