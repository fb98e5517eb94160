package domain

// QuestionRules groups every rule a scheme binds to one question.
// Rules within a group are alternatives.
type QuestionRules struct {
	QuestionID QuestionID `json:"questionId"`
	Rules      []Rule     `json:"rules"`
}

// Real returns the non-informational rules of the group.
func (g QuestionRules) Real() []Rule {
	out := make([]Rule, 0, len(g.Rules))
	for _, r := range g.Rules {
		if !r.IsInformational() {
			out = append(out, r)
		}
	}
	return out
}

// Scheme is a compiled benefit scheme. RulesByQuestion keeps the order in
// which question ids were first bound; every group must pass for eligibility.
type Scheme struct {
	Name            string          `json:"name"`
	Category        string          `json:"category,omitempty"`
	Description     string          `json:"description,omitempty"`
	Benefits        []string        `json:"benefits,omitempty"`
	Documents       []string        `json:"documents,omitempty"`
	RulesByQuestion []QuestionRules `json:"rulesByQuestion"`
}

// AddRule appends r to the group of its question, creating the group on first use.
func (s *Scheme) AddRule(r Rule) {
	for i := range s.RulesByQuestion {
		if s.RulesByQuestion[i].QuestionID == r.QuestionID {
			s.RulesByQuestion[i].Rules = append(s.RulesByQuestion[i].Rules, r)
			return
		}
	}
	s.RulesByQuestion = append(s.RulesByQuestion, QuestionRules{QuestionID: r.QuestionID, Rules: []Rule{r}})
}

// RulesFor returns the rules bound to id.
func (s Scheme) RulesFor(id QuestionID) []Rule {
	for _, g := range s.RulesByQuestion {
		if g.QuestionID == id {
			return g.Rules
		}
	}
	return nil
}

// RuleCount counts every rule across all questions.
func (s Scheme) RuleCount() int {
	n := 0
	for _, g := range s.RulesByQuestion {
		n += len(g.Rules)
	}
	return n
}
