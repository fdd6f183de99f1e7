package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/wekeepgrowing/board-server/internal/adapter/handler/http"
	"github.com/wekeepgrowing/board-server/internal/config"
	"github.com/wekeepgrowing/board-server/internal/middleware/auth"
	"github.com/wekeepgrowing/board-server/internal/usecase"
	"github.com/wekeepgrowing/board-server/pkg/logger"
)

// Usecases is everything the HTTP surface calls into.
type Usecases struct {
	Boards     *usecase.BoardUsecase
	Cards      *usecase.CardUsecase
	Membership *usecase.MembershipUsecase
	Users      *usecase.UserUsecase
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	usecases Usecases
}

func NewServer(cfg *config.Config, log *zap.Logger, usecases Usecases) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	logger.WithEchoLogger(e, log)
	e.HTTPErrorHandler = handlers.NewErrorHandler(log)
	e.Validator = handlers.NewRequestValidator()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Cors.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if cfg.Server.HTTP.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Server.HTTP.BodyLimit))
	}

	s := &Server{
		config:   cfg,
		logger:   log,
		echo:     e,
		usecases: usecases,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := s.config.Server.HTTP.Addr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	jwtConfig := auth.JWTConfig{
		Secret:    s.config.JWT.Secret,
		Issuer:    s.config.JWT.Issuer,
		Logger:    s.logger,
		SkipPaths: s.config.JWT.SkipPaths,
	}
	if s.usecases.Users != nil {
		jwtConfig.Profiles = s.usecases.Users
	}

	protected := s.echo.Group("", auth.JWTMiddleware(jwtConfig))
	handlers.RegisterRoutes(protected, handlers.Handlers{
		Boards:  handlers.NewBoardHandler(s.logger, s.usecases.Boards),
		Cards:   handlers.NewCardHandler(s.logger, s.usecases.Cards),
		Members: handlers.NewMemberHandler(s.logger, s.usecases.Membership),
	})
}
