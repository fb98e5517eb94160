package cli

import (
	"errors"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"scheme-eligibility-service/internal/infra/file"
	pgstore "scheme-eligibility-service/internal/infra/postgres"
)

// NewImportCmd loads a scheme file into postgres.
func NewImportCmd(configPath *string) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import schemes from a YAML, JSON or CSV file into postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			if source == "" {
				source = cfg.Schemes.File
			}
			if source == "" {
				return errors.New("no scheme file given (use --file or schemes.file)")
			}

			ctx := cmd.Context()
			if err := runMigrations(ctx, cfg, logger); err != nil {
				return err
			}
			sources, err := file.NewSchemeLoader(source).LoadSchemes(ctx)
			if err != nil {
				return err
			}

			pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := pgstore.NewSchemeStore(pool).UpsertSchemes(ctx, sources)
			if err != nil {
				return err
			}
			logger.Info().Str("file", source).Int("schemes", n).Msg("schemes imported")
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "file", "", "scheme file to import (defaults to schemes.file)")
	return cmd
}
