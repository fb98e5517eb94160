package domain

import (
	"encoding/json"
	"fmt"
)

// Answer is one recorded value. Value holds a bool, float64 or string.
type Answer struct {
	QuestionID QuestionID `json:"questionId"`
	Value      any        `json:"value"`
}

// AnswerSet maps question ids to answers and remembers the order they were given in.
// A nil *AnswerSet behaves as empty for reads.
type AnswerSet struct {
	entries []Answer
	index   map[QuestionID]int
}

func NewAnswerSet() *AnswerSet {
	return &AnswerSet{index: make(map[QuestionID]int)}
}

// Get returns the recorded value for id.
func (a *AnswerSet) Get(id QuestionID) (any, bool) {
	if a == nil {
		return nil, false
	}
	i, ok := a.index[id]
	if !ok {
		return nil, false
	}
	return a.entries[i].Value, true
}

// Has reports whether id has been answered.
func (a *AnswerSet) Has(id QuestionID) bool {
	_, ok := a.Get(id)
	return ok
}

// Set records value for id. Re-answering keeps the original position.
func (a *AnswerSet) Set(id QuestionID, value any) {
	if a.index == nil {
		a.index = make(map[QuestionID]int)
	}
	if i, ok := a.index[id]; ok {
		a.entries[i].Value = value
		return
	}
	a.index[id] = len(a.entries)
	a.entries = append(a.entries, Answer{QuestionID: id, Value: value})
}

func (a *AnswerSet) Len() int {
	if a == nil {
		return 0
	}
	return len(a.entries)
}

// Entries returns the answers in the order they were given.
func (a *AnswerSet) Entries() []Answer {
	if a == nil {
		return nil
	}
	out := make([]Answer, len(a.entries))
	copy(out, a.entries)
	return out
}

func (a *AnswerSet) Clone() *AnswerSet {
	out := NewAnswerSet()
	if a == nil {
		return out
	}
	for _, e := range a.entries {
		out.Set(e.QuestionID, e.Value)
	}
	return out
}

func (a *AnswerSet) MarshalJSON() ([]byte, error) {
	entries := a.Entries()
	if entries == nil {
		entries = []Answer{}
	}
	return json.Marshal(entries)
}

func (a *AnswerSet) UnmarshalJSON(data []byte) error {
	var entries []Answer
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("decode answers: %w", err)
	}
	a.entries = nil
	a.index = make(map[QuestionID]int, len(entries))
	for _, e := range entries {
		a.Set(e.QuestionID, e.Value)
	}
	return nil
}
