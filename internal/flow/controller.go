// Package flow drives a questionnaire session over a catalog: which question
// comes next, which are visible, and how far along the session is.
package flow

import (
	"fmt"
	"math"
	"time"

	"scheme-eligibility-service/internal/catalog"
	"scheme-eligibility-service/internal/domain"
)

// Controller is stateless; every call operates on the FlowState it is handed.
type Controller struct {
	catalog *catalog.Catalog
	now     func() time.Time
}

type Option func(*Controller)

// WithClock overrides the time source used to stamp state updates.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func NewController(cat *catalog.Catalog, opts ...Option) *Controller {
	c := &Controller{catalog: cat, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Catalog() *catalog.Catalog { return c.catalog }

// Progress summarises a session against the currently visible questions.
type Progress struct {
	TotalVisible int               `json:"totalVisible"`
	Answered     int               `json:"answered"`
	Percentage   float64           `json:"percentage"`
	Status       domain.FlowStatus `json:"status"`
}

// Visible reports whether q would be asked given the current answers.
func (c *Controller) Visible(state *domain.FlowState, q domain.Question) bool {
	if q.Header || c.catalog.IsSkipped(q.ID) {
		return false
	}
	if q.ParentID != "" && !state.Answers.Has(q.ParentID) {
		return false
	}
	return EvaluateCondition(q.Visibility, state.Answers)
}

// GroupVisible reports whether any question of the section is visible.
func (c *Controller) GroupVisible(state *domain.FlowState, groupID string) bool {
	for _, q := range c.catalog.Group(groupID) {
		if c.Visible(state, q) {
			return true
		}
	}
	return false
}

// next finds the first pending question at or after the cursor without
// touching state.
func (c *Controller) next(state *domain.FlowState) (int, bool) {
	if state.Completed {
		return 0, false
	}
	for i := state.Cursor; i < c.catalog.Len(); i++ {
		q := c.catalog.At(i)
		if c.Visible(state, q) && !state.Answers.Has(q.ID) {
			return i, true
		}
	}
	return 0, false
}

// Current returns the question to ask. It moves the cursor over skipped
// entries and marks the state complete once nothing is left.
func (c *Controller) Current(state *domain.FlowState) (domain.Question, bool) {
	i, ok := c.next(state)
	if !ok {
		if !state.Completed {
			state.Cursor = c.catalog.Len()
			state.Completed = true
			state.UpdatedAt = c.now()
		}
		return domain.Question{}, false
	}
	state.Cursor = i
	return c.catalog.At(i), true
}

// Submit records raw as the answer to id. id must be the current question.
// On error the state is left untouched.
func (c *Controller) Submit(state *domain.FlowState, id domain.QuestionID, raw any) error {
	q, ok := c.catalog.Question(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, id)
	}
	i, ok := c.next(state)
	if !ok {
		return domain.ErrFlowComplete
	}
	if expected := c.catalog.At(i).ID; expected != id {
		return fmt.Errorf("%w: expected %s, got %s", domain.ErrUnexpectedQuestion, expected, id)
	}
	value, err := Coerce(q, raw)
	if err != nil {
		return err
	}

	if state.Answers == nil {
		state.Answers = domain.NewAnswerSet()
	}
	state.Answers.Set(id, value)
	state.Cursor = i + 1
	state.UpdatedAt = c.now()
	c.Current(state)
	return nil
}

// Progress recomputes the visible denominator from the current answers.
func (c *Controller) Progress(state *domain.FlowState) Progress {
	p := Progress{Status: state.Status()}
	for _, q := range c.catalog.Questions() {
		if !c.Visible(state, q) {
			continue
		}
		p.TotalVisible++
		if state.Answers.Has(q.ID) {
			p.Answered++
		}
	}
	if p.TotalVisible > 0 {
		p.Percentage = math.Round(float64(p.Answered)/float64(p.TotalVisible)*1000) / 10
	}
	return p
}

// Reset clears every answer and rewinds the cursor.
func (c *Controller) Reset(state *domain.FlowState) {
	state.Answers = domain.NewAnswerSet()
	state.Cursor = 0
	state.Completed = false
	state.UpdatedAt = c.now()
}
