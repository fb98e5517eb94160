package classifier

import (
	"strings"

	"scheme-eligibility-service/internal/domain"
)

// InferFromName adds gender and occupation rules implied by the scheme name
// when the criteria never bound those questions. It reports how many rules
// were added.
func InferFromName(scheme *domain.Scheme) int {
	name := strings.ToLower(scheme.Name)
	added := 0

	if len(scheme.RulesFor(domain.QGender)) == 0 && containsAny(name, femaleNameKeywords) {
		scheme.AddRule(domain.Rule{
			QuestionID: domain.QGender,
			SourceText: "Female applicant (from scheme name: " + scheme.Name + ")",
			SchemeName: scheme.Name,
			Predicate:  domain.Membership{Accepted: []string{"Female"}},
		})
		added++
	}

	if len(scheme.RulesFor(domain.QOccupation)) == 0 {
		if occupation, ok := occupationFromName(name); ok {
			scheme.AddRule(domain.Rule{
				QuestionID: domain.QOccupation,
				SourceText: occupation + " (from scheme name: " + scheme.Name + ")",
				SchemeName: scheme.Name,
				Predicate:  domain.Membership{Accepted: []string{occupation}},
			})
			added++
		}
	}
	return added
}

// occupationFromName returns the single occupation family named by the scheme.
// Names hitting two families are ambiguous and infer nothing.
func occupationFromName(name string) (string, bool) {
	found := ""
	for _, entry := range occupationNameKeywords {
		if !containsAny(name, entry.keywords) {
			continue
		}
		if found != "" && found != entry.occupation {
			return "", false
		}
		found = entry.occupation
	}
	return found, found != ""
}

// DisplayCategory buckets a scheme name for statistics.
func DisplayCategory(name string) string {
	lower := strings.ToLower(name)
	for _, c := range displayCategories {
		if containsAny(lower, c.keywords) {
			return c.name
		}
	}
	return otherCategory
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
