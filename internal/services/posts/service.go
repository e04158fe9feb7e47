// Package posts serves posts, comments, likes and follows with read-through
// caching and invalidation on every write.
package posts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/wayfarer/content-service/internal/core/cache"
	"github.com/wayfarer/content-service/internal/core/docdb"
	"github.com/wayfarer/content-service/internal/domain/models"
	"github.com/wayfarer/content-service/internal/services/invalidation"
	"github.com/wayfarer/content-service/internal/services/media"
	"github.com/wayfarer/content-service/internal/services/readthrough"
)

// Default cache settings applied to zero Config fields.
const (
	DefaultEntityTTL      = time.Hour
	DefaultListingTTL     = 10 * time.Minute
	DefaultCounterTTL     = time.Hour
	DefaultFlagTTL        = 24 * time.Hour
	DefaultListingBucket  = time.Hour
	DefaultRecentlyViewed = 20
)

// Invalidator applies invalidation plans after authoritative writes.
type Invalidator interface {
	Apply(ctx context.Context, m invalidation.Mutation, plan invalidation.Plan) invalidation.Report
}

// Config holds the collaborators and cache settings of the service.
type Config struct {
	Store       cache.Store
	DB          docdb.Client
	Invalidator Invalidator
	Signer      media.Signer

	EntityTTL      time.Duration
	ListingTTL     time.Duration
	CounterTTL     time.Duration
	FlagTTL        time.Duration
	ListingBucket  time.Duration
	RecentlyViewed int64

	Observer cache.Observer
	Logger   *zerolog.Logger
	Tracer   trace.Tracer
}

// Service handles post operations.
type Service struct {
	posts    docdb.Repository[models.Post]
	comments docdb.Repository[models.Comment]
	likes    docdb.Repository[models.Like]
	follows  docdb.Repository[models.Follow]

	entities      *readthrough.Entity[models.Post]
	listings      *readthrough.Entity[models.Page[models.PostView]]
	commentPages  *readthrough.Entity[models.Page[models.Comment]]
	likeCounts    *readthrough.Aggregate
	commentCounts *readthrough.Aggregate
	liked         *readthrough.Flag
	following     *readthrough.Flag
	viewers       *cache.Typed[string]
	recent        *cache.Typed[string]

	invalidator    Invalidator
	signer         media.Signer
	listingBucket  time.Duration
	flagTTL        time.Duration
	recentlyViewed int64
	logger         zerolog.Logger
	now            func() time.Time
}

// NewService creates a new post service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	if cfg.DB == nil {
		return nil, fmt.Errorf("document database client is required")
	}
	if cfg.Invalidator == nil {
		return nil, fmt.Errorf("invalidator is required")
	}
	if cfg.Signer == nil {
		return nil, fmt.Errorf("media signer is required")
	}
	applyDefaults(&cfg)

	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	opts := readthrough.Options{Logger: &logger, Observer: cfg.Observer, Tracer: cfg.Tracer}
	cacheOpts := cache.Options{Logger: &logger, Observer: cfg.Observer}
	jsonOpts := cache.DefaultJSONOptions()

	return &Service{
		posts:    cfg.DB.Posts(),
		comments: cfg.DB.Comments(),
		likes:    cfg.DB.Likes(),
		follows:  cfg.DB.Follows(),

		entities:      readthrough.NewEntity[models.Post](cfg.Store, cache.NewJSONCodec[models.Post](jsonOpts), cfg.EntityTTL, opts),
		listings:      readthrough.NewEntity[models.Page[models.PostView]](cfg.Store, cache.NewJSONCodec[models.Page[models.PostView]](jsonOpts), cfg.ListingTTL, opts),
		commentPages:  readthrough.NewEntity[models.Page[models.Comment]](cfg.Store, cache.NewJSONCodec[models.Page[models.Comment]](jsonOpts), cfg.ListingTTL, opts),
		likeCounts:    readthrough.NewAggregate(cfg.Store, cfg.CounterTTL, opts),
		commentCounts: readthrough.NewAggregate(cfg.Store, cfg.CounterTTL, opts),
		liked:         readthrough.NewFlag(cfg.Store, cfg.FlagTTL, opts),
		following:     readthrough.NewFlag(cfg.Store, cfg.FlagTTL, opts),
		viewers:       cache.NewTyped[string](cfg.Store, cache.StringCodec{}, cacheOpts),
		recent:        cache.NewTyped[string](cfg.Store, cache.StringCodec{}, cacheOpts),

		invalidator:    cfg.Invalidator,
		signer:         cfg.Signer,
		listingBucket:  cfg.ListingBucket,
		flagTTL:        cfg.FlagTTL,
		recentlyViewed: cfg.RecentlyViewed,
		logger:         logger,
		now:            time.Now,
	}, nil
}

// WithClock replaces the time source used for timestamps and listing buckets.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func applyDefaults(cfg *Config) {
	if cfg.EntityTTL <= 0 {
		cfg.EntityTTL = DefaultEntityTTL
	}
	if cfg.ListingTTL <= 0 {
		cfg.ListingTTL = DefaultListingTTL
	}
	if cfg.CounterTTL <= 0 {
		cfg.CounterTTL = DefaultCounterTTL
	}
	if cfg.FlagTTL <= 0 {
		cfg.FlagTTL = DefaultFlagTTL
	}
	if cfg.ListingBucket <= 0 {
		cfg.ListingBucket = DefaultListingBucket
	}
	if cfg.RecentlyViewed <= 0 {
		cfg.RecentlyViewed = DefaultRecentlyViewed
	}
}

// invalidate applies plan and logs a partially failed fan-out. Invalidation
// never fails the request: the authoritative write has already happened.
func (s *Service) invalidate(ctx context.Context, entity, id, owner, action string, plan invalidation.Plan) {
	report := s.invalidator.Apply(ctx, invalidation.Mutation{Entity: entity, ID: id, Owner: owner, Action: action}, plan)
	if report.Err != nil {
		s.logger.Warn().
			Err(report.Err).
			Str("entity", entity).
			Str("id", id).
			Str("action", action).
			Int("failed", report.Failed).
			Msg("cache invalidation incomplete")
	}
}

// isDuplicate reports whether err is a uniqueness violation in the store.
func isDuplicate(err error) bool {
	return errors.Is(err, docdb.ErrDuplicate)
}
