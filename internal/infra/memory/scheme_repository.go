package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"scheme-eligibility-service/internal/app"
	"scheme-eligibility-service/internal/classifier"
	"scheme-eligibility-service/internal/domain"
)

// SchemeRepository caches compiled schemes with a TTL so the classifier runs
// once per expiry rather than per request.
type SchemeRepository struct {
	loader   app.SchemeLoader
	compiler *classifier.Compiler
	ttl      time.Duration
	clock    func() time.Time
	sf       singleflight.Group
	rnd      *rand.Rand

	mu        sync.RWMutex
	schemes   []domain.Scheme
	expiresAt time.Time
	loaded    bool
}

func NewSchemeRepository(loader app.SchemeLoader, compiler *classifier.Compiler, ttl time.Duration) *SchemeRepository {
	return &SchemeRepository{
		loader:   loader,
		compiler: compiler,
		ttl:      ttl,
		clock:    time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// fresh returns the cached schemes when present and, with a positive TTL, unexpired.
func (r *SchemeRepository) fresh(now time.Time) ([]domain.Scheme, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.loaded {
		return nil, false
	}
	if r.ttl > 0 && !r.expiresAt.After(now) {
		return nil, false
	}
	return r.schemes, true
}

func (r *SchemeRepository) Schemes(ctx context.Context) ([]domain.Scheme, error) {
	if schemes, ok := r.fresh(r.clock()); ok {
		return schemes, nil
	}

	result, err, _ := r.sf.Do("schemes", func() (interface{}, error) {
		now := r.clock()
		if schemes, ok := r.fresh(now); ok {
			return schemes, nil
		}

		sources, err := r.loader.LoadSchemes(ctx)
		if err != nil {
			return nil, err
		}
		schemes := app.CompileSchemes(r.compiler, sources)

		r.mu.Lock()
		r.schemes = schemes
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.loaded = true
		r.mu.Unlock()
		return schemes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Scheme), nil
}

// Invalidate drops the cached schemes so the next call reloads.
func (r *SchemeRepository) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = false
	r.schemes = nil
}

// StaticSchemeLoader is a simple loader backed by an in-memory slice (useful for tests/demos).
type StaticSchemeLoader struct {
	sources []domain.SchemeSource
}

func NewStaticSchemeLoader(sources []domain.SchemeSource) *StaticSchemeLoader {
	return &StaticSchemeLoader{sources: sources}
}

func (l *StaticSchemeLoader) LoadSchemes(_ context.Context) ([]domain.SchemeSource, error) {
	out := make([]domain.SchemeSource, len(l.sources))
	copy(out, l.sources)
	return out, nil
}

func (r *SchemeRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
