package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"scheme-eligibility-service/internal/catalog"
	"scheme-eligibility-service/internal/domain"
	"scheme-eligibility-service/internal/eligibility"
	"scheme-eligibility-service/internal/flow"
	"scheme-eligibility-service/internal/telemetry"
)

// SessionRepository abstracts where questionnaire state lives (in-memory, Redis, etc).
// Implementations guarantee one mutator per session id inside Update.
type SessionRepository interface {
	Put(ctx context.Context, id string, state domain.FlowState) error
	Get(ctx context.Context, id string) (domain.FlowState, error)
	// Update applies fn to the stored state and persists the result only if fn succeeds.
	Update(ctx context.Context, id string, fn func(*domain.FlowState) error) (domain.FlowState, error)
	Delete(ctx context.Context, id string) error
}

// SchemeRepository serves compiled schemes (from cache/backing store).
type SchemeRepository interface {
	Schemes(ctx context.Context) ([]domain.Scheme, error)
}

// Turn is the response to a questionnaire step. Question is nil once the
// questionnaire is complete. Accepted is only meaningful for submissions.
type Turn struct {
	SessionID string                    `json:"sessionId"`
	Accepted  bool                      `json:"accepted"`
	Question  *catalog.ExportedQuestion `json:"nextQuestion,omitempty"`
	Complete  bool                      `json:"complete"`
	Progress  flow.Progress             `json:"progress"`
	Error     string                    `json:"error,omitempty"`
}

// SchemeStats counts the loaded schemes per display category.
type SchemeStats struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"byCategory"`
}

// EligibilityService contains the questionnaire and eligibility use cases.
type EligibilityService struct {
	sessions SessionRepository
	schemes  SchemeRepository
	flow     *flow.Controller
	checker  eligibility.Aggregator
	watchers *watchers
	logger   zerolog.Logger
	now      func() time.Time
	newID    func() string
}

type Option func(*EligibilityService)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *EligibilityService) { s.logger = logger }
}

// WithClock is for deterministic timestamps in tests.
func WithClock(now func() time.Time) Option {
	return func(s *EligibilityService) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *EligibilityService) { s.newID = newID }
}

func NewEligibilityService(sessions SessionRepository, schemes SchemeRepository, controller *flow.Controller, opts ...Option) *EligibilityService {
	s := &EligibilityService{
		sessions: sessions,
		schemes:  schemes,
		flow:     controller,
		checker:  eligibility.NewAggregator(controller.Catalog().Skipped()...),
		watchers: newWatchers(),
		logger:   zerolog.Nop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "eligibility_service").Logger()
	return s
}

func (s *EligibilityService) Catalog() *catalog.Catalog { return s.flow.Catalog() }

// Start opens a new session and returns its first question.
func (s *EligibilityService) Start(ctx context.Context) (Turn, error) {
	id := s.newID()
	state := domain.NewFlowState(s.now())
	s.flow.Current(&state)
	if err := s.sessions.Put(ctx, id, state); err != nil {
		return Turn{}, fmt.Errorf("start session: %w", err)
	}
	telemetry.SessionsStarted.Inc()
	s.logger.Info().Str("session", id).Msg("session started")
	return s.turn(id, &state), nil
}

// Current returns the question the session is waiting on.
func (s *EligibilityService) Current(ctx context.Context, id string) (Turn, error) {
	state, err := s.sessions.Update(ctx, id, func(st *domain.FlowState) error {
		s.flow.Current(st)
		return nil
	})
	if err != nil {
		return Turn{}, err
	}
	return s.turn(id, &state), nil
}

// Submit answers the current question. A rejected answer leaves the session
// untouched; the returned Turn then repeats the pending question alongside
// the error.
func (s *EligibilityService) Submit(ctx context.Context, id string, questionID domain.QuestionID, value any) (Turn, error) {
	state, err := s.sessions.Update(ctx, id, func(st *domain.FlowState) error {
		return s.flow.Submit(st, questionID, value)
	})
	if err != nil {
		if !isRejection(err) {
			return Turn{}, err
		}
		telemetry.AnswersSubmitted.WithLabelValues("rejected").Inc()
		s.logger.Debug().Err(err).Str("session", id).Str("question", string(questionID)).Msg("answer rejected")

		current, getErr := s.sessions.Get(ctx, id)
		if getErr != nil {
			return Turn{}, getErr
		}
		turn := s.turn(id, &current)
		turn.Error = err.Error()
		return turn, err
	}

	telemetry.AnswersSubmitted.WithLabelValues("accepted").Inc()
	turn := s.turn(id, &state)
	turn.Accepted = true
	if turn.Complete {
		telemetry.SessionsCompleted.Inc()
		s.logger.Info().Str("session", id).Int("answers", state.Answers.Len()).Msg("questionnaire complete")
	}
	s.watchers.publish(id, turn)
	return turn, nil
}

// Progress reports how far the session is through the visible questions.
func (s *EligibilityService) Progress(ctx context.Context, id string) (flow.Progress, error) {
	state, err := s.sessions.Get(ctx, id)
	if err != nil {
		return flow.Progress{}, err
	}
	return s.flow.Progress(&state), nil
}

// Reset discards every answer and restarts the questionnaire.
func (s *EligibilityService) Reset(ctx context.Context, id string) (Turn, error) {
	state, err := s.sessions.Update(ctx, id, func(st *domain.FlowState) error {
		s.flow.Reset(st)
		s.flow.Current(st)
		return nil
	})
	if err != nil {
		return Turn{}, err
	}
	s.logger.Info().Str("session", id).Msg("session reset")
	turn := s.turn(id, &state)
	s.watchers.publish(id, turn)
	return turn, nil
}

// Results checks every loaded scheme against the session's answers.
func (s *EligibilityService) Results(ctx context.Context, id string) ([]eligibility.SchemeResult, error) {
	state, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	schemes, err := s.schemes.Schemes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load schemes: %w", err)
	}
	results := s.checker.Results(schemes, state.Answers)
	for _, r := range results {
		if r.Eligible {
			telemetry.EligibilityChecks.WithLabelValues("eligible").Inc()
		} else {
			telemetry.EligibilityChecks.WithLabelValues("ineligible").Inc()
		}
	}
	return results, nil
}

// Eligible returns only the schemes the session qualifies for.
func (s *EligibilityService) Eligible(ctx context.Context, id string) ([]eligibility.SchemeResult, error) {
	results, err := s.Results(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]eligibility.SchemeResult, 0, len(results))
	for _, r := range results {
		if r.Eligible {
			out = append(out, r)
		}
	}
	return out, nil
}

// Schemes lists every compiled scheme.
func (s *EligibilityService) Schemes(ctx context.Context) ([]domain.Scheme, error) {
	return s.schemes.Schemes(ctx)
}

// Scheme looks a scheme up by name, ignoring case.
func (s *EligibilityService) Scheme(ctx context.Context, name string) (domain.Scheme, error) {
	schemes, err := s.schemes.Schemes(ctx)
	if err != nil {
		return domain.Scheme{}, err
	}
	want := domain.Fold(name)
	for _, scheme := range schemes {
		if domain.Fold(scheme.Name) == want {
			return scheme, nil
		}
	}
	return domain.Scheme{}, fmt.Errorf("%w: %s", domain.ErrSchemeNotFound, name)
}

// Stats counts schemes per display category.
func (s *EligibilityService) Stats(ctx context.Context) (SchemeStats, error) {
	schemes, err := s.schemes.Schemes(ctx)
	if err != nil {
		return SchemeStats{}, err
	}
	stats := SchemeStats{Total: len(schemes), ByCategory: make(map[string]int)}
	for _, scheme := range schemes {
		stats.ByCategory[scheme.Category]++
	}
	return stats, nil
}

// Export returns a copy of the session state for transfer.
func (s *EligibilityService) Export(ctx context.Context, id string) (domain.FlowState, error) {
	return s.sessions.Get(ctx, id)
}

// Import opens a new session seeded with the answers of an exported state.
// Answers are replayed in the order they were given; every one must belong
// to the catalog and coerce to its question's kind. An answer to a question
// that would not be asked at its replay point is dropped.
func (s *EligibilityService) Import(ctx context.Context, exported domain.FlowState) (Turn, error) {
	state := domain.NewFlowState(s.now())
	if !exported.StartedAt.IsZero() {
		state.StartedAt = exported.StartedAt
	}
	dropped := 0
	for _, answer := range exported.Answers.Entries() {
		q, ok := s.Catalog().Question(answer.QuestionID)
		if !ok {
			return Turn{}, fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, answer.QuestionID)
		}
		value, err := flow.Coerce(q, answer.Value)
		if err != nil {
			return Turn{}, err
		}
		if !s.flow.Visible(&state, q) {
			dropped++
			continue
		}
		state.Answers.Set(q.ID, value)
	}
	s.flow.Current(&state)

	id := s.newID()
	if err := s.sessions.Put(ctx, id, state); err != nil {
		return Turn{}, fmt.Errorf("import session: %w", err)
	}
	s.logger.Info().Str("session", id).Int("answers", state.Answers.Len()).Int("dropped", dropped).Msg("session imported")
	return s.turn(id, &state), nil
}

// End deletes the session and closes its watchers.
func (s *EligibilityService) End(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.watchers.close(id)
	s.logger.Info().Str("session", id).Msg("session ended")
	return nil
}

// Watch returns a channel that receives every accepted turn of a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *EligibilityService) Watch(ctx context.Context, id string) (<-chan Turn, func(), error) {
	turn, err := s.Current(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.watchers.subscribe(id, turn)
	return ch, cancel, nil
}

func (s *EligibilityService) turn(id string, state *domain.FlowState) Turn {
	t := Turn{SessionID: id, Progress: s.flow.Progress(state)}
	if q, ok := s.peek(state); ok {
		exported := catalog.ExportQuestion(q)
		t.Question = &exported
	} else {
		t.Complete = true
		t.Progress.Status = domain.StatusComplete
	}
	return t
}

// peek resolves the pending question on a copy so read paths never write.
func (s *EligibilityService) peek(state *domain.FlowState) (domain.Question, bool) {
	clone := state.Clone()
	return s.flow.Current(&clone)
}

func isRejection(err error) bool {
	return errors.Is(err, domain.ErrUnexpectedQuestion) ||
		errors.Is(err, domain.ErrInvalidAnswer) ||
		errors.Is(err, domain.ErrFlowComplete) ||
		errors.Is(err, domain.ErrQuestionNotFound)
}
