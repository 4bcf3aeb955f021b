package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	api "gymcrew-backend/internal/api/grpc"
	"gymcrew-backend/internal/api/grpc/interceptor"
	httpapi "gymcrew-backend/internal/api/http"
	"gymcrew-backend/internal/config"
	"gymcrew-backend/internal/jobs"
	"gymcrew-backend/internal/logger"
	"gymcrew-backend/internal/preference"
	"gymcrew-backend/internal/repository"
	"gymcrew-backend/internal/repository/memory"
	"gymcrew-backend/internal/repository/postgres"
	"gymcrew-backend/internal/scheduler"
	"gymcrew-backend/internal/security"
	"gymcrew-backend/internal/service"
	"gymcrew-backend/internal/storage"

	_ "github.com/lib/pq"
	_ "time/tzdata"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting GymCrew Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "grpc_address", cfg.GetServerAddress(), "http_address", cfg.GetHTTPAddress())

	// Initialize Repositories
	store, closeStore := openStore(cfg)
	defer closeStore()

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)
	authInterceptor := interceptor.NewAuthInterceptor(tokenManager)

	// Initialize Storage
	logger.Info("Using local routine storage", "upload_dir", cfg.Storage.UploadDir, "base_url", cfg.Storage.BaseURL)
	blobs, err := storage.NewLocalStore(cfg.Storage.BaseURL, cfg.Storage.UploadDir, cfg.Storage.SigningSecret)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize current-group preference store
	var prefs preference.Store
	if cfg.Redis.Addr != "" {
		rdb, err := preference.NewRedisClient(preference.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			logger.Error("Failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		logger.Info("Redis connection established", "addr", cfg.Redis.Addr)
		prefs = preference.NewRedisStore(rdb, cfg.CurrentGroupTTL())
	} else {
		logger.Warn("No redis address configured, current group selections are kept in memory")
		prefs = preference.NewMemoryStore()
	}

	// Initialize Services
	clock := time.Now
	aggregationSvc := service.NewAggregationService(store.GroupRepository, store.MembershipRepository, store.CheckInRepository, store.BadgeRepository, clock)
	dashboardSvc := service.NewDashboardService(store, aggregationSvc, blobs, clock, cfg.AwardTimeout())
	services := api.Services{
		CheckIns:     service.NewCheckInService(store.GroupRepository, store.MembershipRepository, store.LocationRepository, store.CheckInRepository, clock),
		Approvals:    service.NewApprovalService(store.MembershipRepository, store.CheckInRepository, clock),
		Memberships:  service.NewMembershipService(store.GroupRepository, store.MembershipRepository, store.CheckInRepository, clock),
		Invites:      service.NewInviteService(store.MembershipRepository, store.InviteRepository, clock),
		Locations:    service.NewLocationService(store.MembershipRepository, store.LocationRepository),
		Aggregation:  aggregationSvc,
		Dashboard:    dashboardSvc,
		Routines:     service.NewRoutineService(store.GroupRepository, store.MembershipRepository, blobs),
		CurrentGroup: preference.NewCurrentGroup(prefs, store.GroupRepository, store.MembershipRepository),
	}

	// The memory store is private to this process, so the award sweep runs here.
	if cfg.Database.Driver == config.DriverMemory {
		cronScheduler, err := scheduler.NewScheduler(jobs.NewJobRunner(store.GroupRepository, aggregationSvc, cfg, clock))
		if err != nil {
			log.Fatalf("Failed to initialize scheduler: %v", err)
		}
		cronScheduler.Start()
		defer cronScheduler.Stop()
	}

	// Set up gRPC server
	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetServerAddress())
		log.Fatalf("Failed to listen: %v", err)
	}

	s := grpc.NewServer(
		grpc.UnaryInterceptor(authInterceptor.Unary()),
	)
	api.RegisterCrewServiceServer(s, api.NewServer(services, clock))

	// Set up HTTP server for routine documents
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           httpapi.NewRouter(blobs, service.IsRoutineContentType),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server for routine documents listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		logger.Info("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Warn("HTTP shutdown error", "error", err)
		}
		s.GracefulStop()
	}()

	logger.Info("gRPC server listening", "address", cfg.GetServerAddress())
	if err := s.Serve(lis); err != nil {
		logger.Error("Failed to serve gRPC", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}

	// Let in-flight dashboard awards finish before the store closes.
	dashboardSvc.Wait()
	logger.Info("Server stopped")
}

// openStore builds the repositories for the configured driver.
func openStore(cfg *config.Config) (*repository.Store, func()) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
		return &memory.NewStore().Store, func() {}
	}

	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.Migrate {
		if err := postgres.Migrate(context.Background(), db); err != nil {
			logger.Error("Failed to apply schema", "error", err)
			log.Fatalf("Failed to apply schema: %v", err)
		}
		logger.Info("Database schema applied")
	}

	return postgres.NewStore(db), func() { db.Close() }
}
