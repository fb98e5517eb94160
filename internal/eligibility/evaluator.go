// Package eligibility checks compiled scheme rules against a session's answers.
package eligibility

import "scheme-eligibility-service/internal/domain"

// synonyms maps folded answer or rule wording to one comparison key, so
// drift between catalog options and criterion text still matches.
var synonyms = map[string]string{
	"journalist or media representative":    "journalist",
	"media representative":                  "journalist",
	"unorganised sector worker / craftsman": "unorganised sector worker",
	"unorganized sector worker":             "unorganised sector worker",
	"craftsman":                             "unorganised sector worker",
	"business startup":                      "business",
	"bpl":                                   "below poverty line (bpl)",
	"below poverty line":                    "below poverty line (bpl)",
	"ultra poor":                            "ultra-poor",
	"apl":                                   "above poverty line (apl)",
	"above poverty line":                    "above poverty line (apl)",
	"transgender":                           "other",
	"scheduled caste":                       "sc",
	"scheduled tribe":                       "st",
	"other backward class":                  "obc",
	"extremely backward class":              "ebc",
	"backward class":                        "bc",
	"women":                                 "female",
	"woman":                                 "female",
	"men":                                   "male",
	"man":                                   "male",
	"widow":                                 "widowed",
	"divorcee":                              "divorced",
}

func normalize(s string) string {
	folded := domain.Fold(s)
	if key, ok := synonyms[folded]; ok {
		return key
	}
	return folded
}

// Evaluate reports whether answer satisfies rule. Missing or mistyped
// answers fail every match-type rule. Informational rules always pass.
func Evaluate(rule domain.Rule, answer any) bool {
	switch p := rule.Predicate.(type) {
	case domain.Presence:
		got, ok := answer.(bool)
		return ok && got == p.Expected
	case domain.NumericRange:
		if _, isBool := answer.(bool); isBool {
			return false
		}
		v, ok := domain.AsNumber(answer)
		if !ok {
			return false
		}
		if p.Min != nil && v < *p.Min {
			return false
		}
		if p.Max != nil && v > *p.Max {
			return false
		}
		return true
	case domain.Membership:
		s, ok := answer.(string)
		return ok && contains(p.Accepted, normalize(s))
	case domain.NegativeMembership:
		s, ok := answer.(string)
		return ok && !contains(p.Rejected, normalize(s))
	case domain.Informational, nil:
		return true
	default:
		return false
	}
}

func contains(values []string, key string) bool {
	for _, v := range values {
		if normalize(v) == key {
			return true
		}
	}
	return false
}
