// cmd/filmorate/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"

	httpAPI "filmorate/internal/api"
	"filmorate/internal/config"
	"filmorate/internal/database"
	grpcServer "filmorate/internal/grpc"
	"filmorate/internal/service"
	"filmorate/internal/store"
)

const defaultConfigFile = "config.yml"

// stores хранилища, выбранные по storage.kind, и функция их закрытия.
type stores struct {
	films  store.FilmStore
	users  store.UserStore
	pinger store.Pinger
	close  func()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.Storage.Kind == "memory" {
		films, users := store.NewMemoryStores(logger)
		logger.Info("In-memory stores initialized")
		return &stores{films: films, users: users, pinger: films, close: func() {}}, nil
	}

	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	closeDB := func() {
		logger.Info("Closing PostgreSQL database connection...")
		if err := db.Close(); err != nil {
			logger.Error("Failed to close PostgreSQL connection", slog.String("error", err.Error()))
		}
	}
	if cfg.Database.InitSchema {
		if err := store.InitSchema(ctx, db, logger); err != nil {
			closeDB()
			return nil, err
		}
	}
	films, err := store.NewPostgresFilmStore(db, logger)
	if err != nil {
		closeDB()
		return nil, err
	}
	users, err := store.NewPostgresUserStore(db, logger)
	if err != nil {
		closeDB()
		return nil, err
	}
	logger.Info("PostgreSQL stores initialized", slog.String("driver", cfg.Database.Driver))
	return &stores{films: films, users: users, pinger: films, close: closeDB}, nil
}

func main() {
	// .env необязателен
	_ = godotenv.Load()

	configFile := os.Getenv("FILMORATE_CONFIG")
	if configFile == "" {
		configFile = defaultConfigFile
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		slog.Error("Error initializing config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := newLogger(cfg.Logger.Level)
	if err := run(cfg, logger); err != nil {
		logger.Error("Filmorate stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init stores: %w", err)
	}
	defer st.close()

	validate, err := service.NewValidator(time.Now)
	if err != nil {
		return fmt.Errorf("init validator: %w", err)
	}
	filmService := service.NewFilmService(st.films, st.users, validate, logger)
	userService := service.NewUserService(st.users, validate, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := httpAPI.NewMetrics(registry)
	if err != nil {
		return err
	}

	router := httpAPI.NewRouter(httpAPI.RouterDeps{
		Films:    httpAPI.NewFilmHandler(filmService, logger),
		Users:    httpAPI.NewUserHandler(userService, logger),
		Health:   httpAPI.NewHealthHandler(st.pinger, logger),
		Metrics:  metrics,
		Gatherer: registry,
		Logger:   logger,
	})
	handler := httpAPI.NewHTTPHandler(router, httpAPI.GatewayOptions{
		CORSAllowedOrigins: cfg.Gateway.Origins(),
		CORSMaxAge:         cfg.Gateway.CORSMaxAge,
		RateLimitRPS:       cfg.Gateway.RateLimitRPS,
		RateLimitBurst:     cfg.Gateway.RateLimitBurst,
	}, logger)

	errChan := make(chan error, 2)

	// --- gRPC сервер здоровья; port_grpc = 0 отключает его ---
	var grpcSrv *grpc.Server
	if cfg.Server.PortGRPC > 0 {
		grpcPort := strconv.Itoa(cfg.Server.PortGRPC)
		lis, err := net.Listen("tcp", ":"+grpcPort)
		if err != nil {
			return fmt.Errorf("listen grpc on %s: %w", grpcPort, err)
		}
		grpcSrv = grpc.NewServer()
		grpcServer.Register(grpcSrv, grpcServer.NewServer(st.pinger, logger), cfg.Server.UseReflection)

		go func() {
			logger.Info("gRPC health server starting", slog.String("port", grpcPort))
			if err := grpcSrv.Serve(lis); err != nil {
				errChan <- fmt.Errorf("grpc serve: %w", err)
			}
		}()
	}

	// --- HTTP сервер ---
	httpPort := strconv.Itoa(cfg.Server.PortHTTP)
	httpSrv := &http.Server{
		Addr:              ":" + httpPort,
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.Server.HTTPReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.HTTPWriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.HTTPIdleTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.Server.HTTPReadHeaderTimeout) * time.Second,
	}
	go func() {
		logger.Info("HTTP server starting", slog.String("port", httpPort), slog.String("storage", cfg.Storage.Kind))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http serve: %w", err)
		}
	}()

	// Ожидание сигнала или ошибки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var serveErr error
	select {
	case serveErr = <-errChan:
		logger.Error("Server failed, shutting down", slog.String("error", serveErr.Error()))
	case sig := <-quit:
		logger.Info("Received signal, shutting down", slog.String("signal", sig.String()))
	}

	shutdownTimeout := time.Duration(cfg.Server.GracefulShutdownTimeout) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	if grpcSrv != nil {
		stopped := make(chan struct{})
		go func() {
			grpcSrv.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
			logger.Info("gRPC server gracefully stopped")
		case <-shutdownCtx.Done():
			logger.Warn("Graceful shutdown timeout, forcing gRPC stop")
			grpcSrv.Stop()
		}
	}

	logger.Info("Filmorate stopped")
	return serveErr
}
