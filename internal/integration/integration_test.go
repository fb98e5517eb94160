package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"scheme-eligibility-service/internal/app"
	"scheme-eligibility-service/internal/catalog"
	"scheme-eligibility-service/internal/classifier"
	"scheme-eligibility-service/internal/domain"
	"scheme-eligibility-service/internal/flow"
	pgstore "scheme-eligibility-service/internal/infra/postgres"
	pgmigrations "scheme-eligibility-service/internal/infra/postgres/migrations"
	infraredis "scheme-eligibility-service/internal/infra/redis"
)

func TestEligibilityEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateSchemes(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	store := pgstore.NewSchemeStore(pool)
	if n, err := store.UpsertSchemes(ctx, sampleSources()); err != nil || n != 2 {
		t.Fatalf("seed schemes: n=%d err=%v", n, err)
	}
	// re-import is an upsert
	if _, err := store.UpsertSchemes(ctx, sampleSources()); err != nil {
		t.Fatalf("re-seed schemes: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	compiler := classifier.NewCompiler(zerolog.Nop())
	schemes := infraredis.NewSchemeRepository(redisClient, store, compiler, 5*time.Minute, zerolog.Nop())
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	cat := catalog.Default(catalog.WithSkipped(catalog.DefaultSkipped...))
	service := app.NewEligibilityService(sessions, schemes, flow.NewController(cat))

	turn, err := service.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	steps := []struct {
		id    domain.QuestionID
		value any
	}{
		{domain.QIncome, "45,000"},
		{domain.QResidency, "yes"},
		{domain.QGender, "female"},
	}
	for _, step := range steps {
		next, err := service.Submit(ctx, turn.SessionID, step.id, step.value)
		if err != nil {
			t.Fatalf("submit %s: %v", step.id, err)
		}
		turn = next
	}
	if turn.Progress.Answered != 3 {
		t.Fatalf("expected 3 answers, got %+v", turn.Progress)
	}

	eligible, err := service.Eligible(ctx, turn.SessionID)
	if err != nil {
		t.Fatalf("eligible: %v", err)
	}
	if len(eligible) != 1 || eligible[0].Name != "Mukhyamantri Kanya Vivah Yojana" {
		t.Fatalf("expected the marriage scheme only, got %+v", eligible)
	}

	// a second replica reads the compiled schemes from redis
	replica := app.NewEligibilityService(sessions,
		infraredis.NewSchemeRepository(redisClient, failingLoader{}, compiler, 5*time.Minute, zerolog.Nop()),
		flow.NewController(cat))
	results, err := replica.Results(ctx, turn.SessionID)
	if err != nil {
		t.Fatalf("replica results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected cached schemes on replica, got %d", len(results))
	}
}

type failingLoader struct{}

func (failingLoader) LoadSchemes(context.Context) ([]domain.SchemeSource, error) {
	return nil, fmt.Errorf("loader should not be called when the cache is warm")
}

func sampleSources() []domain.SchemeSource {
	return []domain.SchemeSource{
		{
			Name: "Mukhyamantri Kanya Vivah Yojana",
			Criteria: []string{
				"Applicant must be a resident of Bihar",
				"Annual family income should not exceed ₹60,000",
			},
			Benefits: []string{"Rs. 5000 marriage assistance"},
		},
		{
			Name: "Mukhyamantri Vridhjan Pension Yojana",
			Criteria: []string{
				"Applicant must be a resident of Bihar",
				"Applicant should be 60 years or above",
			},
		},
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "schemes", "POSTGRES_PASSWORD": "schemespass", "POSTGRES_DB": "schemesdb"},
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
	dsn := fmt.Sprintf("postgres://schemes:schemespass@%s:%s/schemesdb?sslmode=disable", host, port.Port())
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

func migrateSchemes(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
