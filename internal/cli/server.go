package cli

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"quiz-leaderboard-service/internal/app"
	"quiz-leaderboard-service/internal/config"
	"quiz-leaderboard-service/internal/domain"
	"quiz-leaderboard-service/internal/infra/memory"
	pgstore "quiz-leaderboard-service/internal/infra/postgres"
	redisstore "quiz-leaderboard-service/internal/infra/redis"
	transport "quiz-leaderboard-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the leaderboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 10*time.Minute)

	var national app.NationalLedger = memory.NewNationalLedger()
	var school app.SchoolDailyStore = memory.NewSchoolDailyStore()
	var schools app.SchoolDirectory = memory.NewStaticSchoolDirectory(sampleSchools())
	var users app.UserDirectory = memory.NewStaticUserDirectory(nil)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()

		national = pgstore.NewNationalLedger(db)
		school = pgstore.NewSchoolDailyStore(db)
		schools = pgstore.NewSchoolDirectory(pool)
		users = pgstore.NewUserDirectory(pool)
	}

	if redisClient != nil {
		schools = redisstore.NewSchoolMetadataCache(redisClient, schools, cacheTTL)
	} else {
		schools = memory.NewSchoolMetadataCache(schools, cacheTTL)
	}

	secret := cfg.Auth.Secret
	if secret == "" {
		logger.Warn("auth secret not configured, using insecure development secret")
		secret = "dev-secret"
	}

	service := app.NewLeaderboardService(national, school, schools, users, logger)
	handler := transport.NewHandler(service, logger)
	auth := transport.NewAuth(secret)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	router.Mount("/leaderboard", handler.Routes(auth))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting leaderboard service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleSchools seeds the in-memory directory when no Postgres is configured;
// swap in the database-backed directory in production.
func sampleSchools() map[string]domain.School {
	return map[string]domain.School{
		"school-1": {ID: "school-1", Name: "Oak High", County: "Kildare", Country: "Ireland"},
		"school-2": {ID: "school-2", Name: "Riverside Academy", County: "Cork", Country: "Ireland"},
	}
}
