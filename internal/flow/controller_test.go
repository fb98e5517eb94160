package flow_test

import (
	"errors"
	"testing"
	"time"

	"scheme-eligibility-service/internal/catalog"
	"scheme-eligibility-service/internal/domain"
	"scheme-eligibility-service/internal/flow"
)

func newBiharController() *flow.Controller {
	return flow.NewController(catalog.Default(catalog.WithSkipped(catalog.DefaultSkipped...)))
}

func newState() *domain.FlowState {
	s := domain.NewFlowState(time.Unix(0, 0))
	return &s
}

func TestCurrentStartsWithIncome(t *testing.T) {
	ctrl := newBiharController()
	state := newState()

	q, ok := ctrl.Current(state)
	if !ok || q.ID != domain.QIncome {
		t.Fatalf("expected income first, got %+v", q)
	}
	if state.Status() != domain.StatusNotStarted {
		t.Fatalf("expected not started, got %s", state.Status())
	}
}

func TestSubmitRejectsWithoutMutation(t *testing.T) {
	ctrl := newBiharController()
	state := newState()

	if err := ctrl.Submit(state, domain.QAge, 30); !errors.Is(err, domain.ErrUnexpectedQuestion) {
		t.Fatalf("expected ErrUnexpectedQuestion, got %v", err)
	}
	if err := ctrl.Submit(state, domain.QIncome, "a lot"); !errors.Is(err, domain.ErrInvalidAnswer) {
		t.Fatalf("expected ErrInvalidAnswer, got %v", err)
	}
	if err := ctrl.Submit(state, "q_999", 1); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	if state.Answers.Len() != 0 || state.Cursor != 0 {
		t.Fatalf("expected untouched state, got cursor=%d answers=%d", state.Cursor, state.Answers.Len())
	}

	if err := ctrl.Submit(state, domain.QIncome, "1,20,000"); err != nil {
		t.Fatalf("submit income: %v", err)
	}
	if v, _ := state.Answers.Get(domain.QIncome); v != float64(120000) {
		t.Fatalf("expected coerced income, got %#v", v)
	}
	q, _ := ctrl.Current(state)
	if q.ID != domain.QResidency {
		t.Fatalf("expected residency next, got %s", q.ID)
	}
	if state.Status() != domain.StatusInProgress {
		t.Fatalf("expected in progress, got %s", state.Status())
	}
}

// answerFor returns a valid raw answer for q, choosing the given option index
// for single choice questions.
func answerFor(q domain.Question, choices map[domain.QuestionID]string) any {
	switch q.Kind {
	case domain.KindBoolean:
		return "yes"
	case domain.KindNumber:
		return "2"
	case domain.KindSingleChoice:
		if v, ok := choices[q.ID]; ok {
			return v
		}
		return q.Options[0]
	default:
		return "something"
	}
}

func walk(t *testing.T, ctrl *flow.Controller, state *domain.FlowState, choices map[domain.QuestionID]string) []domain.QuestionID {
	t.Helper()
	var asked []domain.QuestionID
	seen := make(map[domain.QuestionID]bool)
	for i := 0; i < 200; i++ {
		q, ok := ctrl.Current(state)
		if !ok {
			return asked
		}
		if seen[q.ID] {
			t.Fatalf("question %s returned twice", q.ID)
		}
		seen[q.ID] = true
		asked = append(asked, q.ID)
		if err := ctrl.Submit(state, q.ID, answerFor(q, choices)); err != nil {
			t.Fatalf("submit %s: %v", q.ID, err)
		}
	}
	t.Fatalf("questionnaire did not terminate")
	return nil
}

func TestWalkIsMonotoneAndCompletes(t *testing.T) {
	ctrl := newBiharController()
	state := newState()

	asked := walk(t, ctrl, state, map[domain.QuestionID]string{
		domain.QGender:     "male",
		domain.QMarital:    "Unmarried",
		domain.QOccupation: "Farmer",
	})

	if !state.Completed || state.Status() != domain.StatusComplete {
		t.Fatalf("expected complete state")
	}
	if err := ctrl.Submit(state, domain.QIncome, 1); !errors.Is(err, domain.ErrFlowComplete) {
		t.Fatalf("expected ErrFlowComplete, got %v", err)
	}

	index := make(map[domain.QuestionID]bool, len(asked))
	for _, id := range asked {
		index[id] = true
	}
	for _, id := range []domain.QuestionID{"q_13_1", "q_13_2", "q_7_1", domain.QAge} {
		if !index[id] {
			t.Fatalf("expected %s to be asked, got %v", id, asked)
		}
	}
	hidden := []domain.QuestionID{
		domain.QPregnancy, domain.QChildren, "q_17_1", "q_13_3", "q_13_h_farmer",
		domain.QLiving, "q_21_1", domain.QBlock, domain.QDistrict,
	}
	for _, id := range hidden {
		if index[id] {
			t.Fatalf("expected %s to be skipped, got %v", id, asked)
		}
	}
	if v, _ := state.Answers.Get(domain.QGender); v != "Male" {
		t.Fatalf("expected canonical option text, got %#v", v)
	}
}

func TestFemaleMarriedBranch(t *testing.T) {
	ctrl := newBiharController()
	state := newState()

	asked := walk(t, ctrl, state, map[domain.QuestionID]string{
		domain.QGender:     "Female",
		domain.QMarital:    "Married",
		domain.QOccupation: "Journalist",
	})
	index := make(map[domain.QuestionID]bool, len(asked))
	for _, id := range asked {
		index[id] = true
	}
	for _, id := range []domain.QuestionID{domain.QPregnancy, "q_24_1", domain.QChildren, "q_12_1", "q_17_1", "q_13_7"} {
		if !index[id] {
			t.Fatalf("expected %s to be asked, got %v", id, asked)
		}
	}
	if index["q_13_1"] {
		t.Fatalf("farmer branch shown to a journalist")
	}
}

func TestProgressTracksVisibility(t *testing.T) {
	cat, err := catalog.New([]domain.Question{
		{ID: "a", Kind: domain.KindBoolean, GroupID: "g1"},
		{ID: "b", Kind: domain.KindNumber, GroupID: "g2", ParentID: "a", Visibility: domain.Eq("a", true)},
		{ID: "c", Kind: domain.KindNumber, GroupID: "g1"},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	ctrl := flow.NewController(cat)
	state := newState()

	if p := ctrl.Progress(state); p.TotalVisible != 2 || p.Answered != 0 || p.Percentage != 0 {
		t.Fatalf("unexpected initial progress %+v", p)
	}
	if ctrl.GroupVisible(state, "g2") {
		t.Fatalf("expected g2 hidden before parent answered")
	}
	if err := ctrl.Submit(state, "a", true); err != nil {
		t.Fatalf("submit: %v", err)
	}
	p := ctrl.Progress(state)
	if p.TotalVisible != 3 || p.Answered != 1 || p.Percentage != 33.3 {
		t.Fatalf("unexpected progress %+v", p)
	}
	if !ctrl.GroupVisible(state, "g2") {
		t.Fatalf("expected g2 visible")
	}

	ctrl.Reset(state)
	if state.Answers.Len() != 0 || state.Cursor != 0 || state.Completed {
		t.Fatalf("expected reset state, got %+v", state)
	}
	if q, _ := ctrl.Current(state); q.ID != "a" {
		t.Fatalf("expected first question after reset, got %s", q.ID)
	}
}

func TestEmptyCatalogCompletesImmediately(t *testing.T) {
	cat, err := catalog.New(nil)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	ctrl := flow.NewController(cat)
	state := newState()
	if _, ok := ctrl.Current(state); ok {
		t.Fatalf("expected no question")
	}
	if !state.Completed {
		t.Fatalf("expected completion")
	}
	if p := ctrl.Progress(state); p.TotalVisible != 0 || p.Percentage != 0 {
		t.Fatalf("unexpected progress %+v", p)
	}
}
