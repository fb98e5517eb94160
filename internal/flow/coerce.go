package flow

import (
	"fmt"
	"strings"

	"scheme-eligibility-service/internal/domain"
)

// Coerce converts raw into the canonical value type of q's answer kind:
// bool, float64, or string. Failures wrap domain.ErrInvalidAnswer.
func Coerce(q domain.Question, raw any) (any, error) {
	switch q.Kind {
	case domain.KindBoolean:
		if b, ok := domain.AsBool(raw); ok {
			return b, nil
		}
		return nil, fmt.Errorf("%w: %s expects yes or no, got %v", domain.ErrInvalidAnswer, q.ID, raw)
	case domain.KindNumber:
		if _, isBool := raw.(bool); !isBool {
			if f, ok := domain.AsNumber(raw); ok && f >= 0 {
				return f, nil
			}
		}
		return nil, fmt.Errorf("%w: %s expects a non-negative number, got %v", domain.ErrInvalidAnswer, q.ID, raw)
	case domain.KindSingleChoice:
		s, ok := raw.(string)
		if ok {
			for _, opt := range q.Options {
				if domain.Fold(opt) == domain.Fold(s) {
					return opt, nil
				}
			}
		}
		return nil, fmt.Errorf("%w: %s expects one of %s, got %v", domain.ErrInvalidAnswer, q.ID, strings.Join(q.Options, ", "), raw)
	case domain.KindFreeText:
		if s, ok := raw.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), nil
		}
		return nil, fmt.Errorf("%w: %s expects text", domain.ErrInvalidAnswer, q.ID)
	default:
		return nil, fmt.Errorf("%w: %s takes no input", domain.ErrInvalidAnswer, q.ID)
	}
}
