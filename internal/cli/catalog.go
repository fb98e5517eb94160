package cli

import (
	"github.com/spf13/cobra"
	"scheme-eligibility-service/internal/catalog"
	"scheme-eligibility-service/internal/domain"
)

// NewCatalogCmd prints the questionnaire as served to clients.
func NewCatalogCmd(configPath *string) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the questionnaire catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := parseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			cat, err := catalog.New(catalog.BiharQuestions(), catalog.WithSkipped(skipped(cfg)...))
			if err != nil {
				return err
			}
			skippedIDs := make(map[domain.QuestionID]bool)
			for _, id := range cat.Skipped() {
				skippedIDs[id] = true
			}
			return printQuestions(cmd.OutOrStdout(), cat.Export(), skippedIDs, out)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", string(FormatTable), "output format: table, json or yaml")
	return cmd
}
