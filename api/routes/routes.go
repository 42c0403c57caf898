package routes

import (
	"time"

	"cineteca/api/handler"
	"cineteca/api/middleware"
	"cineteca/internal/entity"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	Movies         *handler.MovieHandler
	Studios        *handler.StudioHandler
	Categories     *handler.CategoryHandler
	AuthMiddleware middleware.AuthMiddleware
	SignupRate     *middleware.RateLimiter
	LoginRate      *middleware.RateLimiter
}

func NewRouter(
	e *echo.Echo,
	auth *handler.AuthHandler,
	movies *handler.MovieHandler,
	studios *handler.StudioHandler,
	categories *handler.CategoryHandler,
	authMiddleware middleware.AuthMiddleware,
) *Router {
	return &Router{
		Echo:           e,
		Auth:           auth,
		Movies:         movies,
		Studios:        studios,
		Categories:     categories,
		AuthMiddleware: authMiddleware,
		SignupRate:     middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		LoginRate:      middleware.NewRateLimiter(rate.Limit(2), 4, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo
	requireAuth := r.AuthMiddleware.RequireAuth
	adminOnly := middleware.RequireRole(entity.RoleAdmin)
	catalogWrite := middleware.RequireRole(entity.RoleAdmin, entity.RoleManager)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", r.Auth.Signup, r.SignupRate.Middleware())
	auth.POST("/login", r.Auth.Login, r.LoginRate.Middleware())
	auth.PUT("/recover-password", r.Auth.RecoverPassword, r.LoginRate.Middleware())
	auth.GET("/confirm/:code", r.Auth.ConfirmEmail)
	auth.GET("/users/me", r.Auth.Me, requireAuth)
	auth.PUT("/users/me", r.Auth.UpdateMe, requireAuth)
	auth.GET("/users", r.Auth.SearchUsers, requireAuth, adminOnly)
	auth.GET("/users/:id", r.Auth.GetUser, requireAuth, adminOnly)
	auth.PUT("/users/:id", r.Auth.UpdateUser, requireAuth, adminOnly)
	auth.PUT("/users/:id/toggle", r.Auth.ToggleUser, requireAuth, adminOnly)
	auth.DELETE("/users/:id", r.Auth.DeleteUser, requireAuth, adminOnly)
	auth.GET("/roles", r.Auth.Roles, requireAuth, adminOnly)

	movies := api.Group("/movies")
	movies.GET("", r.Movies.Search)
	movies.GET("/:id", r.Movies.Get)
	movies.POST("", r.Movies.Create, requireAuth, catalogWrite)
	movies.PUT("/:id", r.Movies.Update, requireAuth, catalogWrite)
	movies.DELETE("/:id", r.Movies.Delete, requireAuth, catalogWrite)

	studios := api.Group("/studios")
	studios.GET("", r.Studios.Search)
	studios.GET("/:id", r.Studios.Get)
	studios.POST("", r.Studios.Create, requireAuth, catalogWrite)
	studios.PUT("/:id", r.Studios.Update, requireAuth, catalogWrite)
	studios.DELETE("/:id", r.Studios.Delete, requireAuth, catalogWrite)

	categories := api.Group("/categories")
	categories.GET("", r.Categories.Search)
	categories.GET("/:id", r.Categories.Get)
	categories.POST("", r.Categories.Create, requireAuth, catalogWrite)
	categories.PUT("/:id", r.Categories.Update, requireAuth, catalogWrite)
	categories.DELETE("/:id", r.Categories.Delete, requireAuth, catalogWrite)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
