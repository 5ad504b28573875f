package di

import (
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"

	"asset-backend/app/config"
	"asset-backend/app/driver/postgres"
	"asset-backend/app/port"
	"asset-backend/app/rest"
	"asset-backend/app/token"
	"asset-backend/app/usecase"
)

// Container holds all dependencies for the application
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Drivers
	DB *postgres.DB

	// Codec shared between the session cookie and the login redirect URL
	Codec *token.Codec

	// Usecases
	SessionUsecase port.SessionUsecase
	UserUsecase    port.UserUsecase
}

// NewContainer creates and initializes a new dependency injection container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	container := &Container{
		Config: cfg,
		Logger: logger,
	}

	var err error

	container.DB, err = postgres.NewConnection(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	container.Codec, err = token.NewCodec(cfg.AppSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	// Repositories
	userRepository := postgres.NewUserRepository(container.DB.Pool(), logger)
	locationRepository := postgres.NewLocationRepository(container.DB.Pool(), logger)

	// Usecases
	container.SessionUsecase = usecase.NewVerifySessionUsecase(container.Codec, userRepository, logger)
	container.UserUsecase = usecase.NewUserUsecase(userRepository, locationRepository, logger)

	logger.Info("container initialized with full dependency stack")

	return container, nil
}

// CreateRouter creates and returns a fully configured Echo router
func (c *Container) CreateRouter() *echo.Echo {
	routerConfig := rest.RouterConfig{
		Logger:         c.Logger,
		Config:         c.Config,
		SessionUsecase: c.SessionUsecase,
		UserUsecase:    c.UserUsecase,
		URLCodec:       c.Codec,
		DatabaseCheck:  c.DB.HealthCheck,
		EnableDebug:    c.Config.LogLevel == "debug",
	}

	return rest.NewRouter(routerConfig)
}

// Close closes all resources
func (c *Container) Close() error {
	if c.DB != nil {
		c.DB.Close()
	}

	c.Logger.Info("container closed")
	return nil
}
