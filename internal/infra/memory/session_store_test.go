package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"scheme-eligibility-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(time.Minute)

	if err := store.Put(ctx, "s1", domain.NewFlowState(time.Now())); err != nil {
		t.Fatalf("put: %v", err)
	}
	state, err := store.Update(ctx, "s1", func(st *domain.FlowState) error {
		st.Answers.Set(domain.QIncome, float64(1000))
		st.Cursor = 1
		return nil
	})
	if err != nil || state.Cursor != 1 {
		t.Fatalf("update: %v %+v", err, state)
	}

	// returned states are copies
	state.Answers.Set(domain.QAge, float64(30))
	stored, _ := store.Get(ctx, "s1")
	if stored.Answers.Has(domain.QAge) || !stored.Answers.Has(domain.QIncome) {
		t.Fatalf("stored state leaked a caller mutation: %+v", stored.Answers.Entries())
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session removed, got %v", err)
	}
}

func TestSessionStoreUpdateFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(0)
	_ = store.Put(ctx, "s1", domain.NewFlowState(time.Now()))

	boom := errors.New("boom")
	_, err := store.Update(ctx, "s1", func(st *domain.FlowState) error {
		st.Cursor = 5
		st.Answers.Set(domain.QIncome, float64(1))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	stored, _ := store.Get(ctx, "s1")
	if stored.Cursor != 0 || stored.Answers.Len() != 0 {
		t.Fatalf("failed update mutated state: %+v", stored)
	}
}

func TestSessionStoreExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	store := NewSessionStore(time.Minute)
	store.clock = func() time.Time { return now }

	_ = store.Put(ctx, "s1", domain.NewFlowState(now))
	if store.Len() != 1 {
		t.Fatalf("expected one live session")
	}
	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired session purged")
	}
}
