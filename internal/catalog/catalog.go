// Package catalog holds the ordered, immutable questionnaire definition.
package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"scheme-eligibility-service/internal/domain"
)

// Catalog is the ordered question list. It is read-only after New returns.
type Catalog struct {
	questions []domain.Question
	index     map[domain.QuestionID]int
	groups    []string
	byGroup   map[string][]domain.Question
	skipped   map[domain.QuestionID]struct{}
	etag      string
}

// Option customises catalog construction.
type Option func(*Catalog)

// WithSkipped marks question ids that are never asked in this deployment.
func WithSkipped(ids ...domain.QuestionID) Option {
	return func(c *Catalog) {
		for _, id := range ids {
			c.skipped[id] = struct{}{}
		}
	}
}

// New validates questions and builds a catalog. Validation failures wrap
// domain.ErrCatalogMalformed.
func New(questions []domain.Question, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		questions: make([]domain.Question, len(questions)),
		index:     make(map[domain.QuestionID]int, len(questions)),
		byGroup:   make(map[string][]domain.Question),
		skipped:   make(map[domain.QuestionID]struct{}),
	}
	copy(c.questions, questions)
	for _, opt := range opts {
		opt(c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	for _, q := range c.questions {
		if _, seen := c.byGroup[q.GroupID]; !seen {
			c.groups = append(c.groups, q.GroupID)
		}
		c.byGroup[q.GroupID] = append(c.byGroup[q.GroupID], q)
	}
	etag, err := computeETag(c.Export())
	if err != nil {
		return nil, err
	}
	c.etag = etag
	return c, nil
}

func (c *Catalog) validate() error {
	for i, q := range c.questions {
		if q.ID == "" {
			return fmt.Errorf("%w: question at position %d has no id", domain.ErrCatalogMalformed, i)
		}
		if _, dup := c.index[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question %s", domain.ErrCatalogMalformed, q.ID)
		}
		if q.ParentID != "" {
			if _, ok := c.index[q.ParentID]; !ok {
				return fmt.Errorf("%w: %s references parent %s which is not defined before it", domain.ErrCatalogMalformed, q.ID, q.ParentID)
			}
		}
		for _, ref := range q.Visibility.References() {
			if _, ok := c.index[ref]; !ok {
				return fmt.Errorf("%w: %s condition references %s which is not defined before it", domain.ErrCatalogMalformed, q.ID, ref)
			}
		}
		if !q.Header {
			switch q.Kind {
			case domain.KindBoolean, domain.KindNumber, domain.KindFreeText:
			case domain.KindSingleChoice:
				if len(q.Options) == 0 {
					return fmt.Errorf("%w: single choice question %s has no options", domain.ErrCatalogMalformed, q.ID)
				}
			default:
				return fmt.Errorf("%w: question %s has unknown answer kind %q", domain.ErrCatalogMalformed, q.ID, q.Kind)
			}
		}
		c.index[q.ID] = i
	}
	for id := range c.skipped {
		if _, ok := c.index[id]; !ok {
			return fmt.Errorf("%w: skipped question %s is not in the catalog", domain.ErrCatalogMalformed, id)
		}
	}
	return nil
}

// Questions returns the catalog in canonical order.
func (c *Catalog) Questions() []domain.Question {
	out := make([]domain.Question, len(c.questions))
	copy(out, c.questions)
	return out
}

func (c *Catalog) Len() int { return len(c.questions) }

// At returns the question at position i in canonical order.
func (c *Catalog) At(i int) domain.Question { return c.questions[i] }

// Question looks a question up by id.
func (c *Catalog) Question(id domain.QuestionID) (domain.Question, bool) {
	i, ok := c.index[id]
	if !ok {
		return domain.Question{}, false
	}
	return c.questions[i], true
}

// Index returns the canonical position of id.
func (c *Catalog) Index(id domain.QuestionID) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// Group returns the questions of a section in canonical order.
func (c *Catalog) Group(groupID string) []domain.Question {
	return append([]domain.Question(nil), c.byGroup[groupID]...)
}

// Groups lists section ids in the order they first appear.
func (c *Catalog) Groups() []string {
	return append([]string(nil), c.groups...)
}

// IsSkipped reports whether id is statically excluded from this deployment.
func (c *Catalog) IsSkipped(id domain.QuestionID) bool {
	_, ok := c.skipped[id]
	return ok
}

// Skipped lists the statically excluded ids.
func (c *Catalog) Skipped() []domain.QuestionID {
	out := make([]domain.QuestionID, 0, len(c.skipped))
	for _, q := range c.questions {
		if c.IsSkipped(q.ID) {
			out = append(out, q.ID)
		}
	}
	return out
}

// ExportedQuestion is the rendering shape handed to presentation layers.
type ExportedQuestion struct {
	ID             domain.QuestionID `json:"id" yaml:"id"`
	Text           string            `json:"text" yaml:"text"`
	AnswerKind     domain.AnswerKind `json:"answerKind" yaml:"answerKind"`
	Options        []string          `json:"options,omitempty" yaml:"options,omitempty"`
	GroupID        string            `json:"groupId" yaml:"groupId"`
	RequiresParent domain.QuestionID `json:"requiresParent,omitempty" yaml:"requiresParent,omitempty"`
}

// ExportQuestion converts q to its rendering shape.
func ExportQuestion(q domain.Question) ExportedQuestion {
	return ExportedQuestion{
		ID:             q.ID,
		Text:           q.Text,
		AnswerKind:     q.Kind,
		Options:        q.Options,
		GroupID:        q.GroupID,
		RequiresParent: q.ParentID,
	}
}

// Export lists every answerable question. Headers are omitted.
func (c *Catalog) Export() []ExportedQuestion {
	out := make([]ExportedQuestion, 0, len(c.questions))
	for _, q := range c.questions {
		if !q.Header {
			out = append(out, ExportQuestion(q))
		}
	}
	return out
}

// ETag fingerprints the exported catalog for HTTP caching.
func (c *Catalog) ETag() string { return c.etag }

func computeETag(export []ExportedQuestion) (string, error) {
	data, err := json.Marshal(export)
	if err != nil {
		return "", fmt.Errorf("encode catalog: %w", err)
	}
	return strconv.Quote(strconv.FormatUint(xxhash.Sum64(data), 16)), nil
}
