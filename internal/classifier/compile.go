package classifier

import (
	"github.com/rs/zerolog"
	"scheme-eligibility-service/internal/domain"
)

// Stats summarises one compilation run.
type Stats struct {
	Schemes    int                       `json:"schemes"`
	Dropped    int                       `json:"dropped"`
	Criteria   int                       `json:"criteria"`
	Classified int                       `json:"classified"`
	Unmappable int                       `json:"unmappable"`
	Unmatched  int                       `json:"unmatched"`
	Inferred   int                       `json:"inferred"`
	ByFamily   map[string]int            `json:"byFamily"`
	ByQuestion map[domain.QuestionID]int `json:"byQuestion"`
}

// Compiler classifies scheme sources into compiled schemes.
type Compiler struct {
	logger zerolog.Logger
}

func NewCompiler(logger zerolog.Logger) *Compiler {
	return &Compiler{logger: logger.With().Str("component", "classifier").Logger()}
}

// Compile classifies every criterion of every source. Schemes with no
// classified criterion are dropped before name inference runs, so a title
// alone never makes a scheme reachable.
func (c *Compiler) Compile(sources []domain.SchemeSource) ([]domain.Scheme, Stats) {
	stats := Stats{
		ByFamily:   make(map[string]int),
		ByQuestion: make(map[domain.QuestionID]int),
	}
	schemes := make([]domain.Scheme, 0, len(sources))

	for _, src := range sources {
		scheme := domain.Scheme{
			Name:        src.Name,
			Category:    DisplayCategory(src.Name),
			Description: src.Description,
			Benefits:    src.Benefits,
			Documents:   src.Documents,
		}
		for _, text := range src.Criteria {
			stats.Criteria++
			family, rule, ok := classify(newSentence(text, src.Name))
			switch {
			case ok:
				stats.Classified++
				stats.ByFamily[family]++
				stats.ByQuestion[rule.QuestionID]++
				scheme.AddRule(rule)
			case family != "":
				stats.Unmappable++
				c.logger.Debug().Str("scheme", src.Name).Str("family", family).Str("criterion", text).Msg("criterion not mappable")
			default:
				stats.Unmatched++
				c.logger.Debug().Str("scheme", src.Name).Str("criterion", text).Msg("criterion not classified")
			}
		}

		if len(scheme.RulesByQuestion) == 0 {
			stats.Dropped++
			c.logger.Debug().Str("scheme", src.Name).Msg("scheme has no classified criteria")
			continue
		}
		stats.Inferred += InferFromName(&scheme)
		schemes = append(schemes, scheme)
	}

	stats.Schemes = len(schemes)
	c.logger.Info().
		Int("schemes", stats.Schemes).
		Int("dropped", stats.Dropped).
		Int("criteria", stats.Criteria).
		Int("classified", stats.Classified).
		Int("inferred", stats.Inferred).
		Msg("schemes compiled")
	return schemes, stats
}
