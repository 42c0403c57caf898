package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"cineteca/api/handler"
	apiMiddleware "cineteca/api/middleware"
	"cineteca/api/routes"
	"cineteca/config"
	"cineteca/internal/database"
	"cineteca/internal/repository"
	"cineteca/internal/service"
	"cineteca/internal/storage"
	"cineteca/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}
	if cfg.JWT.Secret == "" {
		logger.Fatal("CINETECA_JWT_SECRET is required")
	}

	db, err := config.ConnectDB(cfg.Database.URL)
	if err != nil {
		logger.WithError(err).Fatal("connect database")
	}
	if err := config.Migrate(db); err != nil {
		logger.WithError(err).Fatal("migrate database")
	}
	if cfg.Seed {
		if err := database.Seed(db, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			logger.WithError(err).Fatal("seed database")
		}
	}

	validate := validator.New()

	jwtManager := utils.JWTManager{
		Secret:   []byte(cfg.JWT.Secret),
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TokenTTL: cfg.JWT.TokenTTL,
	}

	userRepo := repository.NewUserRepository(db)
	codeRepo := repository.NewConfirmationCodeRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	movieRepo := repository.NewMovieRepository(db)
	studioRepo := repository.NewStudioRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	emailSender := service.NewResendEmailSender(cfg.Email.APIKey, cfg.Email.From)
	authService := service.NewAuthService(
		userRepo,
		codeRepo,
		auditRepo,
		emailSender,
		service.BcryptPasswordHasher{},
		jwtManager,
		service.RealClock{},
		service.AuthConfig{
			ConfirmationTTL: cfg.Email.ConfirmationTTL,
			ClientBaseURL:   cfg.Email.ClientBaseURL,
			AppName:         cfg.Email.AppName,
		},
	)

	imageStore, err := newImageStore(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("init image storage")
	}

	authHandler := handler.NewAuthHandler(authService, validate)
	movieHandler := handler.NewMovieHandler(movieRepo, studioRepo, categoryRepo, imageStore, validate)
	studioHandler := handler.NewStudioHandler(studioRepo, validate)
	categoryHandler := handler.NewCategoryHandler(categoryRepo, validate)

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{JWT: &jwtManager}
	router := routes.NewRouter(app, authHandler, movieHandler, studioHandler, categoryHandler, authMiddleware)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("addr", cfg.Server.Addr).Info("server started")
	if err := app.StartServer(server); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

func newImageStore(cfg config.Config, logger *logrus.Logger) (storage.ImageStore, error) {
	awsCfg, err := awscfg.LoadDefaultConfig(context.Background(), awscfg.WithRegion(cfg.Storage.Region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.WithFields(logrus.Fields{
		"bucket": cfg.Storage.Bucket,
		"region": cfg.Storage.Region,
	}).Info("image storage ready")
	return storage.NewS3Store(client, cfg.Storage.Bucket, cfg.Storage.KeyPrefix), nil
}
