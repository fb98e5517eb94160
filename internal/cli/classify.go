package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"scheme-eligibility-service/internal/app"
	"scheme-eligibility-service/internal/classifier"
	"scheme-eligibility-service/internal/config"
	"scheme-eligibility-service/internal/infra/file"
	"scheme-eligibility-service/internal/infra/memory"
	pgstore "scheme-eligibility-service/internal/infra/postgres"
)

// NewClassifyCmd compiles the configured scheme source and prints the rules.
func NewClassifyCmd(configPath *string) *cobra.Command {
	var (
		source    string
		format    string
		showStats bool
	)
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify scheme criteria and print the compiled rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := parseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			if source != "" {
				cfg.Schemes.File = source
			}

			ctx := cmd.Context()
			loader, closeFn, err := classifyLoader(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			sources, err := loader.LoadSchemes(ctx)
			if err != nil {
				return err
			}
			schemes, stats := classifier.NewCompiler(logger).Compile(sources)
			if showStats {
				return printStats(cmd.OutOrStdout(), stats, out)
			}
			return printRules(cmd.OutOrStdout(), ruleRows(schemes), out)
		},
	}
	cmd.Flags().StringVar(&source, "file", "", "scheme file to classify (overrides schemes.file)")
	cmd.Flags().StringVarP(&format, "format", "o", string(FormatTable), "output format: table, json or yaml")
	cmd.Flags().BoolVar(&showStats, "stats", false, "print classification statistics instead of rules")
	return cmd
}

// classifyLoader picks a scheme source like the server does, except that a
// file wins over postgres so --file always applies.
func classifyLoader(ctx context.Context, cfg config.Config) (app.SchemeLoader, func(), error) {
	switch {
	case cfg.Schemes.File != "":
		return file.NewSchemeLoader(cfg.Schemes.File), func() {}, nil
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewSchemeStore(pool), pool.Close, nil
	default:
		return memory.NewStaticSchemeLoader(sampleSchemes()), func() {}, nil
	}
}

func printStats(w io.Writer, stats classifier.Stats, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(w, stats)
	case FormatYAML:
		return printYAML(w, stats)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Count")
	summary := [][2]string{
		{"schemes", strconv.Itoa(stats.Schemes)},
		{"dropped", strconv.Itoa(stats.Dropped)},
		{"criteria", strconv.Itoa(stats.Criteria)},
		{"classified", strconv.Itoa(stats.Classified)},
		{"unmappable", strconv.Itoa(stats.Unmappable)},
		{"unmatched", strconv.Itoa(stats.Unmatched)},
		{"inferred", strconv.Itoa(stats.Inferred)},
	}
	families := make([]string, 0, len(stats.ByFamily))
	for family := range stats.ByFamily {
		families = append(families, family)
	}
	sort.Strings(families)
	for _, family := range families {
		summary = append(summary, [2]string{"family:" + family, strconv.Itoa(stats.ByFamily[family])})
	}
	for _, row := range summary {
		if err := table.Append(row[0], row[1]); err != nil {
			return fmt.Errorf("render stats: %w", err)
		}
	}
	return table.Render()
}
