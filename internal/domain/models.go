package domain

import "time"

// QuestionID identifies one questionnaire item across the catalog, rules and answers.
type QuestionID string

// Question ids referenced by the criterion classifier. The catalog defines the rest.
const (
	QIncome         QuestionID = "q_1"
	QResidency      QuestionID = "q_2"
	QPension        QuestionID = "q_3"
	QDBT            QuestionID = "q_4"
	QBankAccount    QuestionID = "q_5"
	QMinority       QuestionID = "q_6"
	QDisability     QuestionID = "q_7"
	QDrivingLicense QuestionID = "q_8"
	QFamilyDeath    QuestionID = "q_9"
	QMedical        QuestionID = "q_10"
	QLand           QuestionID = "q_11"
	QChildren       QuestionID = "q_12"
	QOccupation     QuestionID = "q_13"
	QAadhaar        QuestionID = "q_14"
	QAge            QuestionID = "q_15"
	QEducation      QuestionID = "q_16"
	QMarital        QuestionID = "q_17"
	QEconomic       QuestionID = "q_18"
	QGender         QuestionID = "q_19"
	QCategory       QuestionID = "q_20"
	QLiving         QuestionID = "q_21"
	QBlock          QuestionID = "q_22"
	QDistrict       QuestionID = "q_23"
	QPregnancy      QuestionID = "q_24"
	QFishPond       QuestionID = "q_25"
	QPriorBenefit   QuestionID = "q_26"
	QPipedWater     QuestionID = "q_27"
	QPMAY           QuestionID = "q_28"
	QTraining       QuestionID = "q_29"
)

// AnswerKind is the input type a question accepts.
type AnswerKind string

const (
	KindBoolean      AnswerKind = "boolean"
	KindNumber       AnswerKind = "number"
	KindSingleChoice AnswerKind = "single_choice"
	KindFreeText     AnswerKind = "free_text"
)

// Question is one catalog entry. A question with a ParentID is only
// considered for visibility once the parent has an answer.
type Question struct {
	ID         QuestionID `json:"id" yaml:"id"`
	Text       string     `json:"text" yaml:"text"`
	Kind       AnswerKind `json:"answerKind" yaml:"answerKind"`
	Options    []string   `json:"options,omitempty" yaml:"options,omitempty"`
	ParentID   QuestionID `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	Visibility *Condition `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	GroupID    string     `json:"groupId" yaml:"groupId"`
	// Header marks a grouping label that takes no input.
	Header bool `json:"header,omitempty" yaml:"header,omitempty"`
	// Category tags occupation branch entries with the occupation they belong to.
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// SchemeSource is the raw scheme record handed to the classifier by a loader.
type SchemeSource struct {
	Name        string   `json:"name" yaml:"name"`
	Criteria    []string `json:"criteria" yaml:"criteria"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Benefits    []string `json:"benefits,omitempty" yaml:"benefits,omitempty"`
	Documents   []string `json:"documents,omitempty" yaml:"documents,omitempty"`
}

// FlowStatus is the derived lifecycle position of a questionnaire.
type FlowStatus string

const (
	StatusNotStarted FlowStatus = "not_started"
	StatusInProgress FlowStatus = "in_progress"
	StatusComplete   FlowStatus = "complete"
)

// FlowState is the per-session questionnaire state. It is owned by a single
// session and mutated only through the flow controller.
type FlowState struct {
	Answers   *AnswerSet `json:"answers"`
	Cursor    int        `json:"cursor"`
	Completed bool       `json:"completed"`
	StartedAt time.Time  `json:"startedAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewFlowState returns an empty state stamped with now.
func NewFlowState(now time.Time) FlowState {
	return FlowState{Answers: NewAnswerSet(), StartedAt: now, UpdatedAt: now}
}

// Status derives the lifecycle position from the cursor and answers.
func (s FlowState) Status() FlowStatus {
	switch {
	case s.Completed:
		return StatusComplete
	case s.Cursor == 0 && s.Answers.Len() == 0:
		return StatusNotStarted
	default:
		return StatusInProgress
	}
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (s FlowState) Clone() FlowState {
	out := s
	out.Answers = s.Answers.Clone()
	return out
}
