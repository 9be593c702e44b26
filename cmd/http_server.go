package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeycentre/care-center-backend/internal"
	"github.com/jeycentre/care-center-backend/internal/attendance"
	attendancePostgres "github.com/jeycentre/care-center-backend/internal/attendance/postgres"
	"github.com/jeycentre/care-center-backend/internal/attendance/qrtoken"
	"github.com/jeycentre/care-center-backend/internal/auth"
	authPostgres "github.com/jeycentre/care-center-backend/internal/auth/postgres"
	authRedis "github.com/jeycentre/care-center-backend/internal/auth/redis"
	"github.com/jeycentre/care-center-backend/internal/branch"
	branchPostgres "github.com/jeycentre/care-center-backend/internal/branch/postgres"
	"github.com/jeycentre/care-center-backend/internal/core/events"
	"github.com/jeycentre/care-center-backend/internal/leave"
	leavePostgres "github.com/jeycentre/care-center-backend/internal/leave/postgres"
	"github.com/jeycentre/care-center-backend/internal/transport"
	"github.com/jeycentre/care-center-backend/internal/transport/openapi"
	"github.com/jeycentre/care-center-backend/internal/transport/rest"
	"github.com/jeycentre/care-center-backend/internal/user"
	userPostgres "github.com/jeycentre/care-center-backend/internal/user/postgres"
	"github.com/jeycentre/care-center-backend/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Redis    *redis.Client
	Router   *chi.Mux
	Logger   *slog.Logger
	Handlers rest.Handlers

	AttendanceService *attendance.Service
	EventBus          *events.EventBus
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
		if err := deps.Redis.Close(); err != nil {
			deps.Logger.Error("Redis close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	validator, err := openapi.NewValidator("./api/openapi.yml", deps.Logger)
	if err != nil {
		// The server still runs without contract validation.
		deps.Logger.Warn("OpenAPI validator disabled", "error", err)
		validator = nil
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, validator, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if os.Getenv("APP_ENV") == "production" {
		logger.Init("production")
	} else {
		logger.Init("development")
	}
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm shares the pgx connection pool with sqlx
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	eventBus := events.NewEventBus(log)
	registerEventHandlers(eventBus, log)

	baseHandler := transport.NewBaseHandler(log)

	// Auth
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	tokenStore := authRedis.NewTokenStore(redisClient)
	authService := auth.NewService(authPostgres.NewRepository(gormDB), tokenGen, tokenStore, config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	// Branch
	branchService := branch.NewService(branchPostgres.NewBranchRepository(gormDB), log)
	branchHandler := branch.NewHandler(baseHandler, branchService)

	// User
	userService := user.NewService(userPostgres.NewUserRepository(gormDB), config.Security.BCryptCost, log)
	userHandler := user.NewHandler(baseHandler, userService)

	// Leave
	leaveService := leave.NewService(leavePostgres.NewLeaveRepository(gormDB), userService, eventBus, log)
	leaveHandler := leave.NewHandler(baseHandler, leaveService)

	// Attendance
	codec := qrtoken.NewCodec(config.Attendance.QRTokenTTL)
	attendanceService := attendance.NewService(
		attendancePostgres.NewAttendanceRepository(gormDB),
		userService,
		leaveService,
		codec,
		eventBus,
		config.Attendance,
		log,
	)
	attendanceHandler := attendance.NewHandler(baseHandler, attendanceService)

	return &Dependencies{
		Config: config,
		Logger: log,
		DB:     db,
		Redis:  redisClient,
		Router: chi.NewRouter(),
		Handlers: rest.Handlers{
			Auth:       authHandler,
			Branch:     branchHandler,
			User:       userHandler,
			Attendance: attendanceHandler,
			Leave:      leaveHandler,
		},
		AttendanceService: attendanceService,
		EventBus:          eventBus,
	}, nil
}

// registerEventHandlers attaches the audit-trail subscribers. Handlers
// run async; failures are logged by the bus and never block a scan.
func registerEventHandlers(eventBus *events.EventBus, log *slog.Logger) {
	audit := func(ctx context.Context, event events.Event) error {
		log.Info("attendance event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"actor", internal.UserIDFromContext(ctx),
			"payload", event.Payload())
		return nil
	}

	eventBus.Subscribe(events.EventTypeCheckedIn, audit)
	eventBus.Subscribe(events.EventTypeCheckedOut, audit)
	eventBus.Subscribe(events.EventTypeAutoCheckout, audit)
	eventBus.Subscribe(events.EventTypeQRCodeIssued, audit)
	eventBus.Subscribe(events.EventTypeLeaveDecided, audit)
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
