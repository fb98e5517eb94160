package domain

// ConditionOp is the operator of a visibility condition node.
type ConditionOp string

const (
	OpEq  ConditionOp = "eq"
	OpNeq ConditionOp = "neq"
	OpGt  ConditionOp = "gt"
	OpGte ConditionOp = "gte"
	OpLt  ConditionOp = "lt"
	OpLte ConditionOp = "lte"
	OpIn  ConditionOp = "in"
	OpAny ConditionOp = "any"
	OpAll ConditionOp = "all"
)

// Condition is a pre-parsed boolean expression over earlier answers.
// Leaf nodes compare Question against Value (or Values for OpIn);
// OpAny and OpAll combine Children.
type Condition struct {
	Op       ConditionOp `json:"op" yaml:"op"`
	Question QuestionID  `json:"question,omitempty" yaml:"question,omitempty"`
	Value    any         `json:"value,omitempty" yaml:"value,omitempty"`
	Values   []any       `json:"values,omitempty" yaml:"values,omitempty"`
	Children []Condition `json:"children,omitempty" yaml:"children,omitempty"`
}

func Eq(q QuestionID, v any) *Condition  { return &Condition{Op: OpEq, Question: q, Value: v} }
func Neq(q QuestionID, v any) *Condition { return &Condition{Op: OpNeq, Question: q, Value: v} }
func Gt(q QuestionID, v float64) *Condition {
	return &Condition{Op: OpGt, Question: q, Value: v}
}
func Gte(q QuestionID, v float64) *Condition {
	return &Condition{Op: OpGte, Question: q, Value: v}
}
func Lt(q QuestionID, v float64) *Condition {
	return &Condition{Op: OpLt, Question: q, Value: v}
}
func Lte(q QuestionID, v float64) *Condition {
	return &Condition{Op: OpLte, Question: q, Value: v}
}
func In(q QuestionID, vs ...any) *Condition {
	return &Condition{Op: OpIn, Question: q, Values: vs}
}

func Any(children ...*Condition) *Condition { return combine(OpAny, children) }
func All(children ...*Condition) *Condition { return combine(OpAll, children) }

func combine(op ConditionOp, children []*Condition) *Condition {
	c := &Condition{Op: op, Children: make([]Condition, 0, len(children))}
	for _, child := range children {
		if child != nil {
			c.Children = append(c.Children, *child)
		}
	}
	return c
}

// References lists every question id the condition reads, depth first.
func (c *Condition) References() []QuestionID {
	if c == nil {
		return nil
	}
	var out []QuestionID
	if c.Question != "" {
		out = append(out, c.Question)
	}
	for i := range c.Children {
		out = append(out, c.Children[i].References()...)
	}
	return out
}
