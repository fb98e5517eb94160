package app

import (
	"context"

	"scheme-eligibility-service/internal/classifier"
	"scheme-eligibility-service/internal/domain"
	"scheme-eligibility-service/internal/telemetry"
)

// SchemeLoader fetches raw scheme records from a backing store (file, postgres).
type SchemeLoader interface {
	LoadSchemes(ctx context.Context) ([]domain.SchemeSource, error)
}

// CompileSchemes classifies loaded sources and records classifier metrics.
func CompileSchemes(compiler *classifier.Compiler, sources []domain.SchemeSource) []domain.Scheme {
	schemes, stats := compiler.Compile(sources)
	telemetry.CriteriaClassified.WithLabelValues("classified").Add(float64(stats.Classified))
	telemetry.CriteriaClassified.WithLabelValues("unmappable").Add(float64(stats.Unmappable))
	telemetry.CriteriaClassified.WithLabelValues("unmatched").Add(float64(stats.Unmatched))
	telemetry.CriteriaClassified.WithLabelValues("inferred").Add(float64(stats.Inferred))
	telemetry.LoadedSchemes.Set(float64(len(schemes)))
	return schemes
}
