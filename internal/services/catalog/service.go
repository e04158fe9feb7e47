// Package catalog serves blogs, locations and reviews through one generic
// read-through service.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/wayfarer/content-service/internal/core/cache"
	"github.com/wayfarer/content-service/internal/core/docdb"
	domainerrors "github.com/wayfarer/content-service/internal/domain/errors"
	"github.com/wayfarer/content-service/internal/domain/models"
	"github.com/wayfarer/content-service/internal/services/invalidation"
	"github.com/wayfarer/content-service/internal/services/readthrough"
)

// Entity is the pointer form of a catalog model.
type Entity[T any] interface {
	*T
	GetID() string
	SetID(id string)
	GetOwnerID() string
	SetOwnerID(id string)
	Stamp(created, updated time.Time)
	GetCreatedAt() time.Time
}

// Invalidator applies invalidation plans after authoritative writes.
type Invalidator interface {
	Apply(ctx context.Context, m invalidation.Mutation, plan invalidation.Plan) invalidation.Report
}

// Config holds the collaborators and cache settings of a catalog service.
type Config struct {
	Store         cache.Store
	Invalidator   Invalidator
	EntityTTL     time.Duration
	ListingTTL    time.Duration
	ListingBucket time.Duration
	Observer      cache.Observer
	Logger        *zerolog.Logger
	Tracer        trace.Tracer
}

// Service handles one catalog entity type.
type Service[T any, P Entity[T]] struct {
	name        string
	repo        docdb.Repository[T]
	entities    *readthrough.Entity[T]
	listings    *readthrough.Entity[models.Page[T]]
	invalidator Invalidator
	validate    *validator.Validate
	bucket      time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewService creates a service for the entity type stored in repo. name is
// both the resource name in errors and the logical cache key name.
func NewService[T any, P Entity[T]](name string, repo docdb.Repository[T], cfg Config) (*Service[T, P], error) {
	if repo == nil {
		return nil, fmt.Errorf("%s repository is required", name)
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	if cfg.Invalidator == nil {
		return nil, fmt.Errorf("invalidator is required")
	}
	if cfg.EntityTTL <= 0 {
		cfg.EntityTTL = time.Hour
	}
	if cfg.ListingTTL <= 0 {
		cfg.ListingTTL = 10 * time.Minute
	}
	if cfg.ListingBucket <= 0 {
		cfg.ListingBucket = time.Hour
	}

	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	opts := readthrough.Options{Logger: &logger, Observer: cfg.Observer, Tracer: cfg.Tracer}
	jsonOpts := cache.DefaultJSONOptions()

	return &Service[T, P]{
		name:        name,
		repo:        repo,
		entities:    readthrough.NewEntity[T](cfg.Store, cache.NewJSONCodec[T](jsonOpts), cfg.EntityTTL, opts),
		listings:    readthrough.NewEntity[models.Page[T]](cfg.Store, cache.NewJSONCodec[models.Page[T]](jsonOpts), cfg.ListingTTL, opts),
		invalidator: cfg.Invalidator,
		validate:    validator.New(),
		bucket:      cfg.ListingBucket,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// WithClock replaces the time source.
func (s *Service[T, P]) WithClock(now func() time.Time) *Service[T, P] {
	s.now = now
	return s
}

// Get returns the entity stored under id.
func (s *Service[T, P]) Get(ctx context.Context, id string) (*T, error) {
	entity, err := s.entities.Load(ctx, s.entityKey(id), func(ctx context.Context) (*T, error) {
		return s.repo.GetByID(ctx, id)
	})
	if err != nil {
		return nil, domainerrors.NewInternalError(fmt.Sprintf("failed to load %s", s.name), err)
	}
	if entity == nil {
		return nil, domainerrors.NewNotFoundError(s.name, id)
	}
	return entity, nil
}

// List returns one page of all entities.
func (s *Service[T, P]) List(ctx context.Context, q models.ListQuery) (*models.Page[T], error) {
	q = q.Normalize()
	key := cache.NewKey(s.listName()).
		Int(q.Page).Int(q.PageSize).Str(string(q.Sort)).
		Bucket(s.now(), s.bucket).
		String()
	return s.page(ctx, key, docdb.Filter{}, q)
}

// ListBy returns one page of the entities whose field equals value.
func (s *Service[T, P]) ListBy(ctx context.Context, field, value string, q models.ListQuery) (*models.Page[T], error) {
	if value == "" {
		return nil, domainerrors.NewValidationError(field+" is required", "")
	}
	q = q.Normalize()
	key := cache.NewKey(s.scopedListName()).Str(field).Str(value).
		Int(q.Page).Int(q.PageSize).Str(string(q.Sort)).
		Bucket(s.now(), s.bucket).
		String()
	return s.page(ctx, key, docdb.Filter{field: value}, q)
}

// Create stores entity owned by viewer and writes it through to the cache.
func (s *Service[T, P]) Create(ctx context.Context, viewer string, entity *T) (*T, error) {
	if viewer == "" {
		return nil, domainerrors.NewUnauthorizedError(fmt.Sprintf("a viewer is required to create a %s", s.name))
	}
	p := P(entity)
	now := s.now().UTC()
	p.SetID(uuid.NewString())
	p.SetOwnerID(viewer)
	p.Stamp(now, now)

	if err := s.validate.Struct(entity); err != nil {
		return nil, domainerrors.NewValidationError(fmt.Sprintf("invalid %s", s.name), err.Error())
	}
	if err := s.repo.Add(ctx, entity); err != nil {
		return nil, domainerrors.NewInternalError(fmt.Sprintf("failed to create %s", s.name), err)
	}
	if err := s.repo.SaveChanges(ctx); err != nil {
		return nil, domainerrors.NewInternalError(fmt.Sprintf("failed to save %s", s.name), err)
	}

	if err := s.entities.Set(ctx, s.entityKey(p.GetID()), *entity); err != nil {
		s.logger.Warn().Err(err).Str("entity", s.name).Str("id", p.GetID()).Msg("failed to write entity through to cache")
	}
	s.invalidate(ctx, p.GetID(), viewer, "create", nil)
	return entity, nil
}

// Update replaces the entity under id. Only its owner may update it.
func (s *Service[T, P]) Update(ctx context.Context, viewer, id string, entity *T) (*T, error) {
	existing, err := s.owned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	p := P(entity)
	p.SetID(id)
	p.SetOwnerID(P(existing).GetOwnerID())
	p.Stamp(P(existing).GetCreatedAt(), s.now().UTC())

	if err := s.validate.Struct(entity); err != nil {
		return nil, domainerrors.NewValidationError(fmt.Sprintf("invalid %s", s.name), err.Error())
	}
	updated, err := s.repo.Update(ctx, id, entity)
	if err != nil {
		return nil, domainerrors.NewInternalError(fmt.Sprintf("failed to update %s", s.name), err)
	}
	if !updated {
		return nil, domainerrors.NewNotFoundError(s.name, id)
	}
	if err := s.repo.SaveChanges(ctx); err != nil {
		return nil, domainerrors.NewInternalError(fmt.Sprintf("failed to save %s", s.name), err)
	}

	s.invalidate(ctx, id, viewer, "update", []string{s.entityKey(id)})
	return entity, nil
}

// Delete removes the entity under id. Only its owner may delete it.
func (s *Service[T, P]) Delete(ctx context.Context, viewer, id string) error {
	if _, err := s.owned(ctx, viewer, id); err != nil {
		return err
	}

	removed, err := s.repo.Remove(ctx, id)
	if err != nil {
		return domainerrors.NewInternalError(fmt.Sprintf("failed to delete %s", s.name), err)
	}
	if !removed {
		return domainerrors.NewNotFoundError(s.name, id)
	}
	if err := s.repo.SaveChanges(ctx); err != nil {
		return domainerrors.NewInternalError(fmt.Sprintf("failed to save %s deletion", s.name), err)
	}

	s.invalidate(ctx, id, viewer, "delete", []string{s.entityKey(id)})
	return nil
}

// owned reads the entity from the authoritative store and checks ownership.
func (s *Service[T, P]) owned(ctx context.Context, viewer, id string) (*T, error) {
	if viewer == "" {
		return nil, domainerrors.NewUnauthorizedError(fmt.Sprintf("a viewer is required to modify a %s", s.name))
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domainerrors.NewInternalError(fmt.Sprintf("failed to load %s", s.name), err)
	}
	if existing == nil {
		return nil, domainerrors.NewNotFoundError(s.name, id)
	}
	if P(existing).GetOwnerID() != viewer {
		return nil, domainerrors.NewForbiddenError(fmt.Sprintf("only the owner can modify this %s", s.name))
	}
	return existing, nil
}

func (s *Service[T, P]) page(ctx context.Context, key string, filter docdb.Filter, q models.ListQuery) (*models.Page[T], error) {
	return s.listings.Load(ctx, key, func(ctx context.Context) (*models.Page[T], error) {
		order := docdb.SortOrderDesc
		if q.Sort == models.SortOldest {
			order = docdb.SortOrderAsc
		}

		found, err := s.repo.Find(ctx, filter, &docdb.FindOptions{
			Limit:   int64(q.PageSize),
			Skip:    int64(q.Offset()),
			SortBy:  "createdAt",
			OrderBy: order,
		})
		if err != nil {
			return nil, domainerrors.NewInternalError(fmt.Sprintf("failed to list %s", s.listName()), err)
		}
		total, err := s.repo.Count(ctx, filter)
		if err != nil {
			return nil, domainerrors.NewInternalError(fmt.Sprintf("failed to count %s", s.listName()), err)
		}

		items := make([]T, 0, len(found))
		for _, e := range found {
			items = append(items, *e)
		}
		return &models.Page[T]{Items: items, Page: q.Page, PageSize: q.PageSize, Total: total}, nil
	})
}

// invalidate drops keys plus every listing family of the entity type.
func (s *Service[T, P]) invalidate(ctx context.Context, id, owner, action string, keys []string) {
	report := s.invalidator.Apply(ctx, invalidation.Mutation{Entity: s.name, ID: id, Owner: owner, Action: action}, invalidation.Plan{
		Keys:     keys,
		Patterns: []string{cache.Pattern(s.listName()), cache.Pattern(s.scopedListName())},
	})
	if report.Err != nil {
		s.logger.Warn().Err(report.Err).Str("entity", s.name).Str("id", id).Msg("cache invalidation incomplete")
	}
}

func (s *Service[T, P]) entityKey(id string) string {
	return cache.NewKey(s.name).Str(id).String()
}

func (s *Service[T, P]) listName() string {
	return s.name + "s"
}

func (s *Service[T, P]) scopedListName() string {
	return s.name + "s_by"
}
