// Package service orchestrates the scoring engine over the store: every
// operation that writes runs in one transaction, standings are memoised per
// class, and events are published only after commit.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/ZeMendes2393/sailscore/apperr"
	"github.com/ZeMendes2393/sailscore/store"
)

// Publisher hands events to the outbox. Failures never fail the request.
type Publisher interface {
	Publish(topic string, payload any) error
}

// Service implements the scoring, fleet and publication operations.
type Service struct {
	db        *bun.DB
	repo      store.Repository
	cache     *cache.Cache
	publisher Publisher
	logger    *zap.Logger

	now func() time.Time
	rng func() *rand.Rand
}

// New builds a Service. db may be nil in tests, in which case no transaction
// is opened and the repository receives a nil bun.IDB.
func New(db *bun.DB, repo store.Repository, publisher Publisher, logger *zap.Logger, cacheTTL time.Duration) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:        db,
		repo:      repo,
		cache:     cache.New(cacheTTL, 2*cacheTTL),
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		rng: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
}

func (s *Service) runInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, db bun.IDB) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	if opts == nil {
		opts = &sql.TxOptions{}
	}
	return s.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

var repeatableRead = &sql.TxOptions{Isolation: sql.LevelRepeatableRead}

func (s *Service) publish(topic string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(topic, payload); err != nil {
		s.logger.Warn("publish event", zap.String("topic", topic), zap.Error(err))
	}
}

func standingsKey(classID int64, publishedOnly bool) string {
	return fmt.Sprintf("standings:%d:%t", classID, publishedOnly)
}

func (s *Service) invalidate(classID int64) {
	s.cache.Delete(standingsKey(classID, true))
	s.cache.Delete(standingsKey(classID, false))
}

// missing turns store.ErrNotFound into a client-facing NotFound error.
func missing(err error, entity string, id any) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(entity, id)
	}
	return err
}
