package integration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quiz-leaderboard-service/internal/app"
	"quiz-leaderboard-service/internal/domain"
	pgstore "quiz-leaderboard-service/internal/infra/postgres"
	pgmigrations "quiz-leaderboard-service/internal/infra/postgres/migrations"
	infraredis "quiz-leaderboard-service/internal/infra/redis"
)

func TestSubmitScoreEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := openBun(t, ctx, pgURL)
	defer db.Close()
	seedDirectories(t, ctx, db)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	schoolCache := infraredis.NewSchoolMetadataCache(redisClient, pgstore.NewSchoolDirectory(pool), 5*time.Minute)
	service := app.NewLeaderboardService(
		pgstore.NewNationalLedger(db),
		pgstore.NewSchoolDailyStore(db),
		schoolCache,
		pgstore.NewUserDirectory(pool),
		slog.Default(),
	)

	// Two users at the same school on the same day land in one aggregate row.
	first, err := service.Submit(ctx, domain.ScoreSubmission{UserID: "u1", Username: "Alice", Score: 10})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !first.Success || first.SchoolEntry == nil {
		t.Fatalf("expected full success, got %+v", first)
	}
	second, err := service.Submit(ctx, domain.ScoreSubmission{UserID: "u2", Username: "Bob", Score: 15})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if second.SchoolEntry == nil || second.SchoolEntry.ID != first.SchoolEntry.ID {
		t.Fatalf("expected the same aggregate row, got %+v and %+v", first.SchoolEntry, second.SchoolEntry)
	}
	if second.SchoolEntry.TotalScore != 25 || second.SchoolEntry.UserCount != 2 {
		t.Fatalf("expected total=25 count=2, got %+v", second.SchoolEntry)
	}

	// A later, higher score from u1 replaces their best nationally.
	if _, err := service.Submit(ctx, domain.ScoreSubmission{UserID: "u1", Username: "Alice", Score: 30}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	national, err := service.NationalAllTime(ctx, 0)
	if err != nil {
		t.Fatalf("national ranking: %v", err)
	}
	if len(national) != 2 || national[0].UserID != "u1" || national[0].Score != 30 {
		t.Fatalf("unexpected national ranking: %+v", national)
	}

	schools, err := service.SchoolAllTime(ctx, 0)
	if err != nil {
		t.Fatalf("school ranking: %v", err)
	}
	if len(schools) != 1 || schools[0].TotalScore != 55 || schools[0].County != "Kildare" {
		t.Fatalf("unexpected school ranking: %+v", schools)
	}
	if schools[0].SchoolName != "Oak High" {
		t.Fatalf("expected cached metadata, got %+v", schools[0])
	}
}

func TestConcurrentSchoolAttribution(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	db := openBun(t, ctx, pgURL)
	defer db.Close()
	seedDirectories(t, ctx, db)

	store := pgstore.NewSchoolDailyStore(db)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := store.UpsertIncrement(ctx, "school-1", "Oak High", int64(n+1)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("upsert: %v", err)
	}

	window := domain.DayWindowFor(time.Now().UTC())
	entries, err := store.ListInWindow(ctx, &window)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one aggregate row, got %d", len(entries))
	}
	// 1 + 2 + ... + workers
	want := int64(workers * (workers + 1) / 2)
	if entries[0].TotalScore != want || entries[0].UserCount != workers {
		t.Fatalf("expected total=%d count=%d, got %+v", want, workers, entries[0])
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "leaderboard", "POSTGRES_PASSWORD": "leaderboardpass", "POSTGRES_DB": "leaderboarddb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://leaderboard:leaderboardpass@%s:%s/leaderboarddb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func openBun(t *testing.T, ctx context.Context, dsn string) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedDirectories(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()
	statements := []string{
		`INSERT INTO schools (id, school_name, county, country) VALUES ('school-1', 'Oak High', 'Kildare', 'Ireland') ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO users (id, username, school_id) VALUES ('u1', 'Alice', 'school-1') ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO users (id, username, school_id) VALUES ('u2', 'Bob', 'school-1') ON CONFLICT (id) DO NOTHING`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
