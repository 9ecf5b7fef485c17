package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
	"github.com/riversideu/studentrisk/backend/internal/domain/providers"
	"github.com/riversideu/studentrisk/backend/internal/domain/repositories"
	"github.com/riversideu/studentrisk/backend/internal/infrastructure/observability"
)

// CachedStudentAdapter wraps a StudentRepository with a five-minute cache.
// Entries are keyed by advisor email because table grants differ per user;
// one advisor's roster must never be served to another. Stale reads within
// the TTL window are accepted.
type CachedStudentAdapter struct {
	adapter repositories.StudentRepository
	cache   providers.CacheProvider
}

// NewCachedStudentAdapter creates a new cached student adapter
func NewCachedStudentAdapter(adapter repositories.StudentRepository, cache providers.CacheProvider) repositories.StudentRepository {
	return &CachedStudentAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	rosterTTL  = 300
	studentTTL = 300
	summaryTTL = 300
)

func rosterCacheKey(email string, filter repositories.StudentFilter) string {
	categories := make([]string, len(filter.RiskCategories))
	for i, c := range filter.RiskCategories {
		categories[i] = string(c)
	}
	return fmt.Sprintf("students:roster:%s:%s:%s:%s",
		email,
		strings.Join(categories, ","),
		strings.Join(filter.Majors, ","),
		strings.Join(filter.YearLevels, ","),
	)
}

func studentCacheKey(email, studentID string) string {
	return fmt.Sprintf("students:record:%s:%s", email, studentID)
}

func summaryCacheKey(email string) string {
	return fmt.Sprintf("students:summary:%s", email)
}

// ListAtRisk returns the roster, from cache when fresh.
func (a *CachedStudentAdapter) ListAtRisk(ctx context.Context, creds entities.Credentials, filter repositories.StudentFilter) ([]*entities.Student, error) {
	cacheKey := rosterCacheKey(creds.Email, filter)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var students []*entities.Student
		if err := json.Unmarshal(cached, &students); err == nil {
			return students, nil
		}
	}

	students, err := a.adapter.ListAtRisk(ctx, creds, filter)
	if err != nil {
		return nil, err
	}

	a.fill(ctx, cacheKey, students, rosterTTL)
	return students, nil
}

// GetByID returns a single record, from cache when fresh.
func (a *CachedStudentAdapter) GetByID(ctx context.Context, creds entities.Credentials, studentID string) (*entities.Student, error) {
	cacheKey := studentCacheKey(creds.Email, studentID)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var student entities.Student
		if err := json.Unmarshal(cached, &student); err == nil {
			return &student, nil
		}
	}

	student, err := a.adapter.GetByID(ctx, creds, studentID)
	if err != nil {
		return nil, err
	}

	a.fill(ctx, cacheKey, student, studentTTL)
	return student, nil
}

// Summary returns roster aggregates, from cache when fresh.
func (a *CachedStudentAdapter) Summary(ctx context.Context, creds entities.Credentials) (*entities.RosterSummary, error) {
	cacheKey := summaryCacheKey(creds.Email)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var summary entities.RosterSummary
		if err := json.Unmarshal(cached, &summary); err == nil {
			return &summary, nil
		}
	}

	summary, err := a.adapter.Summary(ctx, creds)
	if err != nil {
		return nil, err
	}

	a.fill(ctx, cacheKey, summary, summaryTTL)
	return summary, nil
}

// fill updates the cache asynchronously so a slow cache write never delays
// the response.
func (a *CachedStudentAdapter) fill(ctx context.Context, key string, value interface{}, ttl int) {
	logger := observability.LoggerFromContext(ctx)
	go func() {
		data, err := json.Marshal(value)
		if err != nil {
			return
		}
		if err := a.cache.Set(context.Background(), key, data, ttl); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("failed to fill roster cache")
		}
	}()
}
