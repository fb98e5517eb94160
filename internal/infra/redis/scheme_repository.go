package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"scheme-eligibility-service/internal/app"
	"scheme-eligibility-service/internal/classifier"
	"scheme-eligibility-service/internal/domain"
)

// SchemeRepository caches compiled schemes in Redis and falls back to the
// loader and classifier on a miss. Schemes are stored in order as:
// RPUSH scheme:compiled {scheme json}...
type SchemeRepository struct {
	client   *redis.Client
	loader   app.SchemeLoader
	compiler *classifier.Compiler
	ttl      time.Duration
	logger   zerolog.Logger
	sf       singleflight.Group
	rnd      *rand.Rand
}

func NewSchemeRepository(client *redis.Client, loader app.SchemeLoader, compiler *classifier.Compiler, ttl time.Duration, logger zerolog.Logger) *SchemeRepository {
	return &SchemeRepository{
		client:   client,
		loader:   loader,
		compiler: compiler,
		ttl:      ttl,
		logger:   logger.With().Str("component", "redis_scheme_cache").Logger(),
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *SchemeRepository) Schemes(ctx context.Context) ([]domain.Scheme, error) {
	if schemes, ok := r.cached(ctx); ok {
		return schemes, nil
	}

	result, err, _ := r.sf.Do(r.key(), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if schemes, ok := r.cached(ctx); ok {
			return schemes, nil
		}

		sources, err := r.loader.LoadSchemes(ctx)
		if err != nil {
			return nil, err
		}
		schemes := app.CompileSchemes(r.compiler, sources)

		entries := make([]interface{}, 0, len(schemes))
		for _, s := range schemes {
			raw, err := json.Marshal(s)
			if err != nil {
				return nil, err
			}
			entries = append(entries, raw)
		}

		pipe := r.client.TxPipeline()
		pipe.Del(ctx, r.key())
		if len(entries) > 0 {
			pipe.RPush(ctx, r.key(), entries...)
			if ttl := r.ttlWithJitter(); ttl > 0 {
				pipe.Expire(ctx, r.key(), ttl)
			}
		}
		if _, err := pipe.Exec(ctx); err != nil {
			// the cache is an optimisation; serve the compiled schemes anyway
			r.logger.Warn().Err(err).Msg("cache compiled schemes")
		}
		return schemes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Scheme), nil
}

// Invalidate removes the cached schemes so the next call recompiles.
func (r *SchemeRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, r.key()).Err()
}

func (r *SchemeRepository) cached(ctx context.Context) ([]domain.Scheme, bool) {
	raws, err := r.client.LRange(ctx, r.key(), 0, -1).Result()
	if err != nil || len(raws) == 0 {
		return nil, false
	}
	schemes := make([]domain.Scheme, 0, len(raws))
	for _, raw := range raws {
		var s domain.Scheme
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			r.logger.Warn().Err(err).Msg("discard corrupt scheme cache")
			return nil, false
		}
		schemes = append(schemes, s)
	}
	return schemes, true
}

func (r *SchemeRepository) key() string {
	return "scheme:compiled"
}

func (r *SchemeRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
