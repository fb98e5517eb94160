package flow

import "scheme-eligibility-service/internal/domain"

// EvaluateCondition walks cond against answers. A nil condition holds.
// Unanswered references, mistyped operands and unknown operators evaluate
// to false.
func EvaluateCondition(cond *domain.Condition, answers *domain.AnswerSet) bool {
	if cond == nil {
		return true
	}
	return evaluate(*cond, answers)
}

func evaluate(c domain.Condition, answers *domain.AnswerSet) bool {
	switch c.Op {
	case domain.OpAny:
		for _, child := range c.Children {
			if evaluate(child, answers) {
				return true
			}
		}
		return false
	case domain.OpAll:
		if len(c.Children) == 0 {
			return false
		}
		for _, child := range c.Children {
			if !evaluate(child, answers) {
				return false
			}
		}
		return true
	}

	answer, ok := answers.Get(c.Question)
	if !ok {
		return false
	}

	switch c.Op {
	case domain.OpEq:
		eq, comparable := equal(answer, c.Value)
		return comparable && eq
	case domain.OpNeq:
		eq, comparable := equal(answer, c.Value)
		return comparable && !eq
	case domain.OpIn:
		for _, v := range c.Values {
			if eq, comparable := equal(answer, v); comparable && eq {
				return true
			}
		}
		return false
	case domain.OpGt, domain.OpGte, domain.OpLt, domain.OpLte:
		a, ok := domain.AsNumber(answer)
		if !ok {
			return false
		}
		b, ok := domain.AsNumber(c.Value)
		if !ok {
			return false
		}
		switch c.Op {
		case domain.OpGt:
			return a > b
		case domain.OpGte:
			return a >= b
		case domain.OpLt:
			return a < b
		default:
			return a <= b
		}
	default:
		return false
	}
}

// equal compares an answer to a condition operand. The second result is
// false when the two cannot be compared.
func equal(answer, operand any) (bool, bool) {
	if want, ok := operand.(bool); ok {
		got, ok := answer.(bool)
		return ok && got == want, ok
	}
	if _, ok := answer.(bool); ok {
		return false, false
	}
	if want, ok := operand.(string); ok {
		if got, ok := answer.(string); ok {
			return domain.Fold(got) == domain.Fold(want), true
		}
	}
	want, ok := domain.AsNumber(operand)
	if !ok {
		return false, false
	}
	got, ok := domain.AsNumber(answer)
	if !ok {
		return false, false
	}
	return got == want, true
}
