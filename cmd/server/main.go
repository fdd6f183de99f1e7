package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/board-server/internal/config"
	"github.com/wekeepgrowing/board-server/internal/domain/repository"
	"github.com/wekeepgrowing/board-server/internal/domain/service"
	"github.com/wekeepgrowing/board-server/internal/infrastructure/cache"
	"github.com/wekeepgrowing/board-server/internal/infrastructure/database"
	grpcServer "github.com/wekeepgrowing/board-server/internal/infrastructure/grpc"
	httpServer "github.com/wekeepgrowing/board-server/internal/infrastructure/http"
	"github.com/wekeepgrowing/board-server/internal/infrastructure/storage"
	"github.com/wekeepgrowing/board-server/internal/usecase"
	"github.com/wekeepgrowing/board-server/pkg/logger"
	"github.com/wekeepgrowing/board-server/pkg/messaging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		FilePath:    cfg.Log.FilePath,
		Development: cfg.Log.Development,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger = zapLogger.With(zap.String("service", cfg.Service.Name))

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, zapLogger, cfg.Log.Development)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	repos := database.NewRepositories(db, zapLogger)

	// Redis backs the join limiter and board events; both degrade to no-ops without it
	var (
		limiter   repository.JoinLimiter    = cache.NopJoinLimiter{}
		publisher repository.EventPublisher = messaging.NopPublisher{}
	)
	if cfg.Redis.Address != "" {
		redisClient, err := messaging.NewRedisClient(messaging.Options{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TLS:      cfg.Redis.TLS,
		})
		if err != nil {
			zapLogger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()

		limiter = cache.NewRedisJoinLimiter(redisClient, cfg.Link.JoinLimit, cfg.Link.JoinWindow, zapLogger)
		publisher = messaging.NewPublisher(redisClient)
	} else {
		zapLogger.Warn("Redis is not configured, join rate limiting and board events are disabled")
	}

	s3Client, err := storage.NewS3Client(context.Background(), cfg.Storage)
	if err != nil {
		zapLogger.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	fileStorage := storage.NewS3Storage(s3Client, cfg.Storage, zapLogger)

	tokens, err := service.NewLinkTokenGenerator(cfg.Link.Secret, cfg.Link.CodeLength)
	if err != nil {
		zapLogger.Fatal("Failed to initialize invite link tokens", zap.Error(err))
	}

	// Initialize usecases
	folders := usecase.StorageFolders{Board: cfg.Storage.FolderBoard, Card: cfg.Storage.FolderCard}
	boardRepos := usecase.BoardRepositories{
		Boards:     repos.Boards,
		Members:    repos.Memberships,
		Links:      repos.InviteLinks,
		Cards:      repos.Cards,
		Activities: repos.Activities,
		Transactor: repos.Transactor,
		Publisher:  publisher,
	}
	usecases := httpServer.Usecases{
		Boards: usecase.NewBoardUsecase(boardRepos, tokens, fileStorage, folders, zapLogger),
		Cards:  usecase.NewCardUsecase(boardRepos, fileStorage, folders, zapLogger),
		Membership: usecase.NewMembershipUsecase(usecase.MembershipRepositories{
			Boards:     repos.Boards,
			Members:    repos.Memberships,
			Links:      repos.InviteLinks,
			Users:      repos.Users,
			Cards:      repos.Cards,
			Activities: repos.Activities,
			Transactor: repos.Transactor,
			Limiter:    limiter,
			Publisher:  publisher,
		}, tokens, cfg.Service.ClientURL, zapLogger),
		Users: usecase.NewUserUsecase(repos.Users, zapLogger),
	}

	// Initialize servers
	grpcSrv := grpcServer.NewServer(cfg, zapLogger)
	httpSrv := httpServer.NewServer(cfg, zapLogger, usecases)

	// Start servers
	go func() {
		if err := grpcSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start gRPC server", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	if err := grpcSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
	}

	zapLogger.Info("Servers shut down successfully")
}
