package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"scheme-eligibility-service/internal/app"
	"scheme-eligibility-service/internal/catalog"
	"scheme-eligibility-service/internal/classifier"
	"scheme-eligibility-service/internal/config"
	"scheme-eligibility-service/internal/domain"
	"scheme-eligibility-service/internal/flow"
	"scheme-eligibility-service/internal/infra/file"
	"scheme-eligibility-service/internal/infra/memory"
	pgstore "scheme-eligibility-service/internal/infra/postgres"
	redisstore "scheme-eligibility-service/internal/infra/redis"
	"scheme-eligibility-service/internal/telemetry"
	transport "scheme-eligibility-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the eligibility server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis not reachable yet")
		}
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	loader := schemeLoader(cfg, pool, logger)
	compiler := classifier.NewCompiler(logger)
	schemeTTL := config.TTLDuration(cfg.Schemes.TTL, 10*time.Minute)
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var schemes app.SchemeRepository
	var sessions app.SessionRepository
	if redisClient != nil {
		schemes = redisstore.NewSchemeRepository(redisClient, loader, compiler, schemeTTL, logger)
		sessions = redisstore.NewSessionStore(redisClient, sessionTTL)
	} else {
		schemes = memory.NewSchemeRepository(loader, compiler, schemeTTL)
		sessions = memory.NewSessionStore(sessionTTL)
	}

	cat := catalog.Default(catalog.WithSkipped(skipped(cfg)...))
	service := app.NewEligibilityService(sessions, schemes, flow.NewController(cat), app.WithLogger(logger))

	// warm the scheme cache so classifier problems surface at boot
	if loaded, err := service.Schemes(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial scheme load failed")
	} else {
		logger.Info().Int("schemes", len(loaded)).Msg("schemes compiled")
	}

	telemetry.Init()
	api := transport.NewServer(service,
		transport.WithLogger(logger),
		transport.WithRateLimit(cfg.HTTP.RateLimitPerMinute),
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      api.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info().Str("port", finalPort).Int("questions", cat.Len()).Msg("starting eligibility service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info().Msg("shutting down server")
	case <-ctx.Done():
		logger.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// schemeLoader picks the scheme source: postgres, then a configured file,
// then the built-in sample set.
func schemeLoader(cfg config.Config, pool *pgxpool.Pool, logger zerolog.Logger) app.SchemeLoader {
	switch {
	case pool != nil:
		logger.Info().Msg("loading schemes from postgres")
		return pgstore.NewSchemeStore(pool)
	case cfg.Schemes.File != "":
		logger.Info().Str("file", cfg.Schemes.File).Msg("loading schemes from file")
		return file.NewSchemeLoader(cfg.Schemes.File)
	default:
		logger.Warn().Msg("no scheme source configured, serving sample schemes")
		return memory.NewStaticSchemeLoader(sampleSchemes())
	}
}

func skipped(cfg config.Config) []domain.QuestionID {
	ids := make([]domain.QuestionID, 0, len(cfg.Questionnaire.Skip))
	for _, id := range cfg.Questionnaire.Skip {
		ids = append(ids, domain.QuestionID(id))
	}
	return ids
}

// sampleSchemes is a minimal scheme set for local runs without a data source.
func sampleSchemes() []domain.SchemeSource {
	return []domain.SchemeSource{
		{
			Name: "Mukhyamantri Vridhjan Pension Yojana",
			Criteria: []string{
				"Applicant must be a resident of Bihar",
				"Applicant should be 60 years or above",
				"Should not be receiving any other pension",
			},
			Benefits: []string{"Rs. 400 per month for applicants aged 60 to 79", "Rs. 500 per month from age 80"},
		},
		{
			Name: "Mukhyamantri Kanya Vivah Yojana",
			Criteria: []string{
				"Applicant must be a resident of Bihar",
				"Annual family income should not exceed ₹60,000",
				"Copy of Aadhaar card",
			},
			Benefits:  []string{"Rs. 5000 marriage assistance"},
			Documents: []string{"Aadhaar card", "Income certificate", "Marriage certificate"},
		},
		{
			Name: "Bihar Student Credit Card Yojana",
			Criteria: []string{
				"Applicant must be a resident of Bihar",
				"Age should not be more than 25 years",
			},
			Benefits: []string{"Education loan up to Rs. 4 lakh"},
		},
	}
}
