package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
	"scheme-eligibility-service/internal/catalog"
	"scheme-eligibility-service/internal/domain"
)

// OutputFormat specifies the output format for CLI commands
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

func parseFormat(raw string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(raw)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", raw)
	}
}

// RuleRow is one compiled rule flattened for display.
type RuleRow struct {
	Scheme    string            `json:"scheme" yaml:"scheme"`
	Category  string            `json:"category" yaml:"category"`
	Question  domain.QuestionID `json:"question" yaml:"question"`
	Kind      domain.RuleKind   `json:"kind" yaml:"kind"`
	Condition string            `json:"condition" yaml:"condition"`
	Criterion string            `json:"criterion" yaml:"criterion"`
}

func ruleRows(schemes []domain.Scheme) []RuleRow {
	var rows []RuleRow
	for _, scheme := range schemes {
		for _, group := range scheme.RulesByQuestion {
			for _, rule := range group.Rules {
				kind := domain.RuleInformational
				if rule.Predicate != nil {
					kind = rule.Predicate.Kind()
				}
				rows = append(rows, RuleRow{
					Scheme:    scheme.Name,
					Category:  scheme.Category,
					Question:  group.QuestionID,
					Kind:      kind,
					Condition: describe(rule.Predicate),
					Criterion: rule.SourceText,
				})
			}
		}
	}
	return rows
}

// describe renders a predicate the way an operator would read it.
func describe(p domain.Predicate) string {
	switch p := p.(type) {
	case domain.Presence:
		if p.Expected {
			return "= yes"
		}
		return "= no"
	case domain.NumericRange:
		switch {
		case p.Min != nil && p.Max != nil:
			return formatNumber(*p.Min) + " .. " + formatNumber(*p.Max)
		case p.Min != nil:
			return ">= " + formatNumber(*p.Min)
		case p.Max != nil:
			return "<= " + formatNumber(*p.Max)
		}
		return "any"
	case domain.Membership:
		return "in " + strings.Join(p.Accepted, ", ")
	case domain.NegativeMembership:
		return "not in " + strings.Join(p.Rejected, ", ")
	default:
		return "-"
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func printRules(w io.Writer, rows []RuleRow, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(w, map[string][]RuleRow{"rules": rows})
	case FormatYAML:
		return printYAML(w, rows)
	default:
		table := tablewriter.NewWriter(w)
		table.Header("Scheme", "Question", "Kind", "Condition", "Criterion")
		for _, row := range rows {
			if err := table.Append(truncate(row.Scheme, 40), string(row.Question), string(row.Kind), row.Condition, truncate(row.Criterion, 60)); err != nil {
				return err
			}
		}
		return table.Render()
	}
}

func printQuestions(w io.Writer, questions []catalog.ExportedQuestion, skipped map[domain.QuestionID]bool, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(w, map[string][]catalog.ExportedQuestion{"questions": questions})
	case FormatYAML:
		return printYAML(w, questions)
	default:
		table := tablewriter.NewWriter(w)
		table.Header("ID", "Group", "Kind", "Parent", "Skipped", "Text")
		for _, q := range questions {
			if err := table.Append(
				string(q.ID),
				q.GroupID,
				string(q.AnswerKind),
				string(q.RequiresParent),
				strconv.FormatBool(skipped[q.ID]),
				truncate(q.Text, 60),
			); err != nil {
				return err
			}
		}
		return table.Render()
	}
}

func printJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func printYAML(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(data)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
