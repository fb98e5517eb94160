package eligibility

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"scheme-eligibility-service/internal/classifier"
	"scheme-eligibility-service/internal/domain"
)

func rule(q domain.QuestionID, p domain.Predicate, text string) domain.Rule {
	return domain.Rule{QuestionID: q, Predicate: p, SourceText: text, SchemeName: "Test"}
}

func answers(pairs ...any) *domain.AnswerSet {
	set := domain.NewAnswerSet()
	for i := 0; i+1 < len(pairs); i += 2 {
		set.Set(pairs[i].(domain.QuestionID), pairs[i+1])
	}
	return set
}

func TestEvaluate(t *testing.T) {
	age := rule(domain.QAge, domain.Range(domain.Bound(18), domain.Bound(35)), "Age between 18 and 35 years")
	cases := []struct {
		name   string
		rule   domain.Rule
		answer any
		want   bool
	}{
		{"below range", age, float64(17), false},
		{"lower bound inclusive", age, float64(18), true},
		{"upper bound inclusive", age, float64(35), true},
		{"numeric string", age, "20", true},
		{"json number", age, json.Number("36"), false},
		{"bool for range", age, true, false},
		{"open max", rule(domain.QIncome, domain.Range(nil, domain.Bound(60000)), ""), float64(0), true},
		{"presence match", rule(domain.QResidency, domain.Presence{Expected: true}, ""), true, true},
		{"presence mismatch", rule(domain.QResidency, domain.Presence{Expected: true}, ""), false, false},
		{"presence mistyped", rule(domain.QResidency, domain.Presence{Expected: true}, ""), "yes", false},
		{"presence missing", rule(domain.QResidency, domain.Presence{Expected: false}, ""), nil, false},
		{"membership folded", rule(domain.QGender, domain.Membership{Accepted: []string{"Female"}}, ""), " female", true},
		{"membership synonym", rule(domain.QOccupation, domain.Membership{Accepted: []string{"Journalist"}}, ""), "Journalist or Media Representative", true},
		{"membership bpl", rule(domain.QEconomic, domain.Membership{Accepted: []string{"BPL"}}, ""), "below poverty line (BPL)", true},
		{"membership miss", rule(domain.QCategory, domain.Membership{Accepted: []string{"SC", "ST"}}, ""), "OBC", false},
		{"membership mistyped", rule(domain.QCategory, domain.Membership{Accepted: []string{"SC"}}, ""), float64(1), false},
		{"negative pass", rule(domain.QMarital, domain.NegativeMembership{Rejected: []string{"Remarried"}}, ""), "Widowed", true},
		{"negative fail", rule(domain.QMarital, domain.NegativeMembership{Rejected: []string{"Remarried"}}, ""), "remarried", false},
		{"negative mistyped", rule(domain.QMarital, domain.NegativeMembership{Rejected: []string{"Remarried"}}, ""), nil, false},
		{"informational", rule(domain.QAadhaar, domain.Informational{}, ""), nil, true},
	}
	for _, tc := range cases {
		if got := Evaluate(tc.rule, tc.answer); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func scheme(rules ...domain.Rule) domain.Scheme {
	s := domain.Scheme{Name: "Test"}
	for _, r := range rules {
		s.AddRule(r)
	}
	return s
}

func TestInformationalQuestionDoesNotBlock(t *testing.T) {
	s := scheme(
		rule(domain.QIncome, domain.Range(nil, domain.Bound(60000)), "Income <= 60000"),
		rule(domain.QResidency, domain.Informational{}, "Residence certificate required"),
	)
	v := NewAggregator().Check(s, answers(domain.QIncome, float64(50000)))
	if !v.Eligible || v.MatchedQuestionCount != 1 || v.UnansweredBlocking {
		t.Fatalf("expected eligible verdict, got %+v", v)
	}
	if len(v.MatchedCriteria) != 1 || v.MatchedCriteria[0] != "Income <= 60000" {
		t.Fatalf("unexpected matched criteria %v", v.MatchedCriteria)
	}
}

func TestEmptyOrInformationalSchemesNeverEligible(t *testing.T) {
	agg := NewAggregator()
	full := answers(domain.QAadhaar, true, domain.QIncome, float64(1))

	if v := agg.Check(domain.Scheme{Name: "Empty"}, full); v.Eligible {
		t.Fatalf("empty scheme judged eligible")
	}
	info := scheme(rule(domain.QAadhaar, domain.Informational{}, "Copy of Aadhaar card"))
	if v := agg.Check(info, full); v.Eligible {
		t.Fatalf("informational-only scheme judged eligible")
	}
}

func TestMissingRealAnswerBlocks(t *testing.T) {
	s := scheme(
		rule(domain.QResidency, domain.Presence{Expected: true}, "Resident of Bihar"),
		rule(domain.QAge, domain.Range(domain.Bound(18), nil), "18 or above"),
	)
	v := NewAggregator().Check(s, answers(domain.QResidency, true))
	if v.Eligible || !v.UnansweredBlocking || v.BlockingQuestion != domain.QAge {
		t.Fatalf("expected blocking on age, got %+v", v)
	}
	if v.MatchedQuestionCount != 1 {
		t.Fatalf("expected residency counted before the block, got %d", v.MatchedQuestionCount)
	}
}

func TestOrWithinAndAcrossQuestions(t *testing.T) {
	s := scheme(
		rule(domain.QCategory, domain.Membership{Accepted: []string{"SC"}}, "SC applicants"),
		rule(domain.QCategory, domain.Membership{Accepted: []string{"ST"}}, "ST applicants"),
		rule(domain.QResidency, domain.Presence{Expected: true}, "Resident of Bihar"),
	)
	agg := NewAggregator()

	v := agg.Check(s, answers(domain.QCategory, "ST", domain.QResidency, true))
	if !v.Eligible || v.MatchedQuestionCount != 2 {
		t.Fatalf("expected eligible via second category rule, got %+v", v)
	}

	v = agg.Check(s, answers(domain.QCategory, "OBC", domain.QResidency, true))
	if v.Eligible || v.FailedQuestion != domain.QCategory || v.MatchedQuestionCount != 0 {
		t.Fatalf("expected category failure to short-circuit, got %+v", v)
	}

	v = agg.Check(s, answers(domain.QCategory, "SC", domain.QResidency, false))
	if v.Eligible || v.FailedQuestion != domain.QResidency {
		t.Fatalf("expected residency failure, got %+v", v)
	}
}

func TestExcludedQuestionsAreIgnored(t *testing.T) {
	s := scheme(
		rule(domain.QDistrict, domain.Membership{Accepted: []string{"Patna"}}, "Residents of Patna"),
		rule(domain.QAge, domain.Range(domain.Bound(60), nil), "60 or above"),
	)
	agg := NewAggregator(domain.QLiving, domain.QBlock, domain.QDistrict)
	res := agg.Result(s, answers(domain.QAge, float64(65)))
	if !res.Eligible || res.TotalCriteriaCount != 1 || res.MatchedCriteriaCount != 1 {
		t.Fatalf("expected excluded district ignored, got %+v", res)
	}
}

func TestResultsFromClassifiedCriteria(t *testing.T) {
	residency, _ := classifier.Classify("Applicant must be a resident of Bihar", "Scheme A")
	age, _ := classifier.Classify("Age between 18 and 35 years", "Scheme B")
	schemes := []domain.Scheme{scheme(residency), scheme(residency, age)}
	schemes[0].Name, schemes[1].Name = "Scheme A", "Scheme B"

	agg := NewAggregator()
	results := agg.Results(schemes, answers(domain.QResidency, false, domain.QAge, float64(20)))
	if results[0].Eligible || results[1].Eligible {
		t.Fatalf("non-resident judged eligible: %+v", results)
	}

	set := answers(domain.QResidency, true, domain.QAge, float64(40))
	eligible := agg.Eligible(schemes, set)
	if len(eligible) != 1 || eligible[0].Name != "Scheme A" {
		t.Fatalf("expected only Scheme A, got %+v", eligible)
	}
	results = agg.Results(schemes, set)
	if results[1].TotalCriteriaCount != 2 || results[1].MatchedCriteriaCount != 1 {
		t.Fatalf("unexpected counts %+v", results[1])
	}
}

func TestAgeCeilingBlocksOlderStudents(t *testing.T) {
	compiler := classifier.NewCompiler(zerolog.Nop())
	schemes, _ := compiler.Compile([]domain.SchemeSource{{
		Name:     "Bihar Student Credit Card Yojana",
		Criteria: []string{"Applicant must be a resident of Bihar", "Age should not be more than 25 years"},
	}})
	if len(schemes) != 1 {
		t.Fatalf("expected scheme to compile, got %d", len(schemes))
	}

	agg := NewAggregator()
	if v := agg.Check(schemes[0], answers(domain.QResidency, true, domain.QAge, float64(70), domain.QOccupation, "Student")); v.Eligible {
		t.Fatalf("70 year old judged eligible: %+v", v)
	}
	if v := agg.Check(schemes[0], answers(domain.QResidency, true, domain.QAge, float64(22), domain.QOccupation, "Student")); !v.Eligible {
		t.Fatalf("22 year old student judged ineligible: %+v", v)
	}
}
