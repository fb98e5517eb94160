package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAnswerSetKeepsAnswerOrder(t *testing.T) {
	set := NewAnswerSet()
	set.Set(QGender, "Female")
	set.Set(QIncome, 50000.0)
	set.Set(QGender, "Other")

	entries := set.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].QuestionID != QGender || entries[0].Value != "Other" {
		t.Fatalf("expected gender first with updated value, got %+v", entries[0])
	}

	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded AnswerSet
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := decoded.Get(QIncome); !ok || v != 50000.0 {
		t.Fatalf("expected income to survive encoding, got %v %v", v, ok)
	}
	if decoded.Entries()[1].QuestionID != QIncome {
		t.Fatalf("expected order preserved after decode")
	}
}

func TestNilAnswerSetReadsAsEmpty(t *testing.T) {
	var set *AnswerSet
	if set.Len() != 0 || set.Has(QAge) {
		t.Fatalf("expected nil set to be empty")
	}
}

func TestFlowStateStatus(t *testing.T) {
	state := NewFlowState(time.Unix(0, 0))
	if state.Status() != StatusNotStarted {
		t.Fatalf("expected not started, got %s", state.Status())
	}
	state.Answers.Set(QIncome, 1.0)
	state.Cursor = 1
	if state.Status() != StatusInProgress {
		t.Fatalf("expected in progress, got %s", state.Status())
	}
	clone := state.Clone()
	clone.Answers.Set(QAge, 30.0)
	if state.Answers.Has(QAge) {
		t.Fatalf("clone must not share answers")
	}
	state.Completed = true
	if state.Status() != StatusComplete {
		t.Fatalf("expected complete, got %s", state.Status())
	}
}

func TestRuleEncodingKeepsPredicateVariant(t *testing.T) {
	scheme := Scheme{Name: "Vridhjan Pension"}
	scheme.AddRule(Rule{QuestionID: QAge, SourceText: "Age 60 years or above", Predicate: Range(Bound(60), nil)})
	scheme.AddRule(Rule{QuestionID: QMarital, SourceText: "Remarried widows are not eligible", Predicate: NegativeMembership{Rejected: []string{"Remarried"}}})
	scheme.AddRule(Rule{QuestionID: QAge, SourceText: "Age proof required", Predicate: Informational{}})

	data, err := json.Marshal(scheme)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Scheme
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	age := decoded.RulesFor(QAge)
	if len(age) != 2 {
		t.Fatalf("expected two age rules, got %d", len(age))
	}
	rng, ok := age[0].Predicate.(NumericRange)
	if !ok || rng.Min == nil || *rng.Min != 60 || rng.Max != nil {
		t.Fatalf("expected open-ended range from 60, got %#v", age[0].Predicate)
	}
	if !age[1].IsInformational() {
		t.Fatalf("expected informational rule to survive encoding")
	}
	neg, ok := decoded.RulesFor(QMarital)[0].Predicate.(NegativeMembership)
	if !ok || neg.Rejected[0] != "Remarried" {
		t.Fatalf("expected negative membership, got %#v", decoded.RulesFor(QMarital)[0].Predicate)
	}
}

func TestConditionReferences(t *testing.T) {
	cond := All(Eq(QDisability, true), Any(Gt(QChildren, 0), Neq(QMarital, "Unmarried")))
	refs := cond.References()
	if len(refs) != 3 || refs[0] != QDisability || refs[2] != QMarital {
		t.Fatalf("unexpected references %v", refs)
	}
}
