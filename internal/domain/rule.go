package domain

import (
	"encoding/json"
	"fmt"
)

// RuleKind names the predicate variant of a rule.
type RuleKind string

const (
	RulePresence           RuleKind = "presence"
	RuleNumericRange       RuleKind = "numeric_range"
	RuleMembership         RuleKind = "membership"
	RuleNegativeMembership RuleKind = "negative_membership"
	RuleInformational      RuleKind = "informational"
)

// Predicate is the closed set of checks a rule can express.
// Implementations live in this package only.
type Predicate interface {
	Kind() RuleKind
	sealed()
}

// Presence requires a boolean answer equal to Expected.
type Presence struct {
	Expected bool `json:"expected"`
}

// NumericRange requires a numeric answer within [Min, Max]. A nil bound is open.
type NumericRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Membership requires the answer to be one of Accepted.
type Membership struct {
	Accepted []string `json:"accepted"`
}

// NegativeMembership requires the answer not to be one of Rejected.
type NegativeMembership struct {
	Rejected []string `json:"rejected"`
}

// Informational always passes and never counts toward eligibility.
type Informational struct{}

func (Presence) Kind() RuleKind           { return RulePresence }
func (NumericRange) Kind() RuleKind       { return RuleNumericRange }
func (Membership) Kind() RuleKind         { return RuleMembership }
func (NegativeMembership) Kind() RuleKind { return RuleNegativeMembership }
func (Informational) Kind() RuleKind      { return RuleInformational }

func (Presence) sealed()           {}
func (NumericRange) sealed()       {}
func (Membership) sealed()         {}
func (NegativeMembership) sealed() {}
func (Informational) sealed()      {}

// Range builds a NumericRange from optional bounds.
func Range(min, max *float64) NumericRange {
	return NumericRange{Min: min, Max: max}
}

// Bound returns a pointer to v for use as a range bound.
func Bound(v float64) *float64 {
	return &v
}

// Rule is a structured predicate bound to one question, derived from a criterion.
type Rule struct {
	QuestionID QuestionID
	SourceText string
	SchemeName string
	Predicate  Predicate
}

// IsInformational reports whether the rule is excluded from eligibility counts.
func (r Rule) IsInformational() bool {
	if r.Predicate == nil {
		return true
	}
	return r.Predicate.Kind() == RuleInformational
}

type ruleJSON struct {
	QuestionID QuestionID      `json:"questionId"`
	SourceText string          `json:"sourceText"`
	SchemeName string          `json:"schemeName,omitempty"`
	Kind       RuleKind        `json:"kind"`
	Params     json.RawMessage `json:"params,omitempty"`
}

func (r Rule) MarshalJSON() ([]byte, error) {
	out := ruleJSON{
		QuestionID: r.QuestionID,
		SourceText: r.SourceText,
		SchemeName: r.SchemeName,
		Kind:       RuleInformational,
	}
	if r.Predicate != nil {
		out.Kind = r.Predicate.Kind()
		params, err := json.Marshal(r.Predicate)
		if err != nil {
			return nil, err
		}
		out.Params = params
	}
	return json.Marshal(out)
}

func (r *Rule) UnmarshalJSON(data []byte) error {
	var in ruleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	pred, err := decodePredicate(in.Kind, in.Params)
	if err != nil {
		return err
	}
	*r = Rule{
		QuestionID: in.QuestionID,
		SourceText: in.SourceText,
		SchemeName: in.SchemeName,
		Predicate:  pred,
	}
	return nil
}

func decodePredicate(kind RuleKind, params json.RawMessage) (Predicate, error) {
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	switch kind {
	case RulePresence:
		var p Presence
		err := json.Unmarshal(params, &p)
		return p, err
	case RuleNumericRange:
		var p NumericRange
		err := json.Unmarshal(params, &p)
		return p, err
	case RuleMembership:
		var p Membership
		err := json.Unmarshal(params, &p)
		return p, err
	case RuleNegativeMembership:
		var p NegativeMembership
		err := json.Unmarshal(params, &p)
		return p, err
	case RuleInformational, "":
		return Informational{}, nil
	default:
		return nil, fmt.Errorf("unknown rule kind %q", kind)
	}
}
