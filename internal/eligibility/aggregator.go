package eligibility

import (
	"slices"

	"scheme-eligibility-service/internal/domain"
)

// Verdict explains one scheme check.
type Verdict struct {
	Eligible             bool              `json:"eligible"`
	MatchedQuestionCount int               `json:"matchedQuestionCount"`
	UnansweredBlocking   bool              `json:"unansweredBlocking"`
	BlockingQuestion     domain.QuestionID `json:"blockingQuestion,omitempty"`
	FailedQuestion       domain.QuestionID `json:"failedQuestion,omitempty"`
	MatchedCriteria      []string          `json:"matchedCriteria,omitempty"`
}

// SchemeResult is the per-scheme row handed to presentation layers.
type SchemeResult struct {
	Name                 string   `json:"name"`
	Category             string   `json:"category,omitempty"`
	Eligible             bool     `json:"eligible"`
	MatchedCriteriaCount int      `json:"matchedCriteriaCount"`
	TotalCriteriaCount   int      `json:"totalCriteriaCount"`
	MatchedCriteria      []string `json:"matchedCriteria,omitempty"`
}

// Aggregator applies all-or-nothing eligibility. Questions in Excluded are
// out of scope for the deployment and never gate a scheme.
type Aggregator struct {
	Excluded []domain.QuestionID
}

func NewAggregator(excluded ...domain.QuestionID) Aggregator {
	return Aggregator{Excluded: excluded}
}

// inScope returns the question groups that carry at least one real rule
// and are not excluded.
func (a Aggregator) inScope(scheme domain.Scheme) []domain.QuestionRules {
	out := make([]domain.QuestionRules, 0, len(scheme.RulesByQuestion))
	for _, group := range scheme.RulesByQuestion {
		if slices.Contains(a.Excluded, group.QuestionID) {
			continue
		}
		rules := group.Real()
		if len(rules) == 0 {
			continue
		}
		out = append(out, domain.QuestionRules{QuestionID: group.QuestionID, Rules: rules})
	}
	return out
}

// Check evaluates scheme against answers. Questions are visited in the
// order the scheme first bound them; the first unanswered or failing one
// stops the check.
func (a Aggregator) Check(scheme domain.Scheme, answers *domain.AnswerSet) Verdict {
	var v Verdict
	for _, group := range a.inScope(scheme) {
		answer, ok := answers.Get(group.QuestionID)
		if !ok {
			v.UnansweredBlocking = true
			v.BlockingQuestion = group.QuestionID
			return v
		}

		passed := false
		for _, rule := range group.Rules {
			if Evaluate(rule, answer) {
				passed = true
				v.MatchedCriteria = append(v.MatchedCriteria, rule.SourceText)
			}
		}
		if !passed {
			v.FailedQuestion = group.QuestionID
			return v
		}
		v.MatchedQuestionCount++
	}
	v.Eligible = v.MatchedQuestionCount > 0
	return v
}

// Result checks one scheme and shapes the outcome for presentation.
func (a Aggregator) Result(scheme domain.Scheme, answers *domain.AnswerSet) SchemeResult {
	verdict := a.Check(scheme, answers)
	return SchemeResult{
		Name:                 scheme.Name,
		Category:             scheme.Category,
		Eligible:             verdict.Eligible,
		MatchedCriteriaCount: verdict.MatchedQuestionCount,
		TotalCriteriaCount:   len(a.inScope(scheme)),
		MatchedCriteria:      verdict.MatchedCriteria,
	}
}

// Results checks every scheme, preserving input order.
func (a Aggregator) Results(schemes []domain.Scheme, answers *domain.AnswerSet) []SchemeResult {
	out := make([]SchemeResult, 0, len(schemes))
	for _, s := range schemes {
		out = append(out, a.Result(s, answers))
	}
	return out
}

// Eligible returns only the schemes the answers qualify for.
func (a Aggregator) Eligible(schemes []domain.Scheme, answers *domain.AnswerSet) []SchemeResult {
	var out []SchemeResult
	for _, r := range a.Results(schemes, answers) {
		if r.Eligible {
			out = append(out, r)
		}
	}
	return out
}
