package invalidation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/wayfarer/content-service/internal/core/cache"
)

const tracerName = "github.com/wayfarer/content-service/internal/services/invalidation"

// Defaults applied to zero Config fields.
const (
	DefaultMaxAttempts     = 3
	DefaultInitialInterval = 50 * time.Millisecond
	DefaultMaxElapsed      = 2 * time.Second
	DefaultWorkers         = 2
	DefaultQueueSize       = 256
)

// Config holds orchestrator configuration.
type Config struct {
	Store cache.Store
	// Channel receives an Event after every fan-out. Empty disables publishing.
	Channel         string
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxElapsed      time.Duration
	Workers         int
	QueueSize       int
	Recorder        Recorder
	Logger          *zerolog.Logger
	Tracer          trace.Tracer
}

// Orchestrator applies invalidation plans against the cache. It never reads
// the authoritative store.
type Orchestrator struct {
	store           cache.Store
	channel         string
	maxAttempts     uint
	initialInterval time.Duration
	maxElapsed      time.Duration
	workers         int
	queue           *RetryQueue
	origin          string
	recorder        Recorder
	logger          zerolog.Logger
	tracer          trace.Tracer
	now             func() time.Time
}

type stepResult struct {
	outcome string
	err     error
	retry   *Step
}

// New creates an orchestrator. Call Start to run the background retry workers.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("invalidation: cache store is required")
	}

	o := &Orchestrator{
		store:           cfg.Store,
		channel:         cfg.Channel,
		maxAttempts:     cfg.MaxAttempts,
		initialInterval: cfg.InitialInterval,
		maxElapsed:      cfg.MaxElapsed,
		workers:         cfg.Workers,
		origin:          uuid.NewString(),
		recorder:        cfg.Recorder,
		logger:          log.Logger,
		tracer:          cfg.Tracer,
		now:             time.Now,
	}
	if cfg.Logger != nil {
		o.logger = *cfg.Logger
	}
	if o.maxAttempts == 0 {
		o.maxAttempts = DefaultMaxAttempts
	}
	if o.initialInterval <= 0 {
		o.initialInterval = DefaultInitialInterval
	}
	if o.maxElapsed <= 0 {
		o.maxElapsed = DefaultMaxElapsed
	}
	if o.workers <= 0 {
		o.workers = DefaultWorkers
	}
	if o.recorder == nil {
		o.recorder = nopRecorder{}
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	o.queue = NewRetryQueue(queueSize, o.retryQueued)
	return o, nil
}

// Start starts the background retry workers.
func (o *Orchestrator) Start() {
	o.queue.Start(o.workers)
}

// Stop stops the background retry workers. Steps still queued are dropped;
// their keys expire through TTL and time buckets.
func (o *Orchestrator) Stop() {
	o.queue.Stop()
}

// Origin identifies this process in published events.
func (o *Orchestrator) Origin() string {
	return o.origin
}

// Apply runs every step of plan concurrently. Steps are independent: a
// failing step neither cancels nor rolls back the others. Key and pattern
// steps are retried with exponential backoff; failures after the last
// attempt are handed to the retry queue.
//
// Apply does not honour cancellation of ctx: the authoritative write has
// already happened and its invalidation must still run. Every cache call
// is bounded by the store's own timeout.
func (o *Orchestrator) Apply(ctx context.Context, m Mutation, plan Plan) Report {
	ctx = context.WithoutCancel(ctx)
	ctx, span := o.tracer.Start(ctx, "invalidation.apply", trace.WithAttributes(
		attribute.String("mutation.entity", m.Entity),
		attribute.String("mutation.action", m.Action),
		attribute.Int("invalidation.steps", plan.Len()),
	))
	defer span.End()

	steps := plan.steps()
	results := make([]stepResult, len(steps))

	var g errgroup.Group
	for i, step := range steps {
		g.Go(func() error {
			results[i] = o.execute(ctx, step)
			return nil
		})
	}
	_ = g.Wait()

	var report Report
	var errs []error
	for i, r := range results {
		o.recorder.InvalidationStep(string(steps[i].Kind), r.outcome)
		switch r.outcome {
		case OutcomeApplied, OutcomeSkipped:
			report.Succeeded++
		case OutcomeDegraded:
			report.Degraded++
		default:
			report.Failed++
			errs = append(errs, r.err)
			if r.retry != nil && o.enqueue(*r.retry) {
				report.Queued++
			}
		}
	}
	report.Err = errors.Join(errs...)

	if report.Err != nil {
		span.RecordError(report.Err)
		o.logger.Warn().
			Err(report.Err).
			Str("entity", m.Entity).
			Str("id", m.ID).
			Str("action", m.Action).
			Int("succeeded", report.Succeeded).
			Int("failed", report.Failed).
			Int("queued", report.Queued).
			Msg("invalidation fan-out partially failed")
	}

	o.publish(ctx, m, plan)
	return report
}

func (o *Orchestrator) execute(ctx context.Context, step Step) stepResult {
	switch step.Kind {
	case StepDelta:
		return o.applyDelta(ctx, step)
	case StepKey, StepPattern:
		if err := o.withRetry(ctx, step); err != nil {
			return stepResult{outcome: OutcomeFailed, err: err, retry: retriable(step, err)}
		}
		return stepResult{outcome: OutcomeApplied}
	default:
		return stepResult{outcome: OutcomeFailed, err: fmt.Errorf("unknown invalidation step kind %q", step.Kind)}
	}
}

// applyDelta runs the delta once. A retried increment could be counted
// twice, so a failed delta degrades to deleting the counter, which is
// idempotent and makes the next read recompute it.
func (o *Orchestrator) applyDelta(ctx context.Context, step Step) stepResult {
	_, applied, err := o.store.IncrementIfExists(ctx, step.Target, step.By)
	if err == nil {
		if applied {
			return stepResult{outcome: OutcomeApplied}
		}
		return stepResult{outcome: OutcomeSkipped}
	}

	o.logger.Warn().Err(err).Str("key", step.Target).Int64("by", step.By).Msg("counter delta failed, deleting counter")

	drop := Step{Kind: StepKey, Target: step.Target}
	if derr := o.withRetry(ctx, drop); derr != nil {
		return stepResult{
			outcome: OutcomeFailed,
			err:     fmt.Errorf("counter %s: delta: %w; delete: %w", step.Target, err, derr),
			retry:   retriable(drop, derr),
		}
	}
	return stepResult{outcome: OutcomeDegraded}
}

func (o *Orchestrator) withRetry(ctx context.Context, step Step) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.initialInterval

	operation := func() (struct{}, error) {
		err := o.run(ctx, step)
		if cache.IsWrongKind(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(o.maxAttempts),
		backoff.WithMaxElapsedTime(o.maxElapsed),
	)
	return err
}

func (o *Orchestrator) run(ctx context.Context, step Step) error {
	switch step.Kind {
	case StepKey:
		_, err := o.store.Delete(ctx, step.Target)
		return err
	case StepPattern:
		_, err := o.store.DeletePattern(ctx, step.Target)
		return err
	default:
		return fmt.Errorf("step kind %q cannot be retried", step.Kind)
	}
}

func (o *Orchestrator) enqueue(step Step) bool {
	if o.queue.Enqueue(step) {
		o.recorder.InvalidationRetry(OutcomeQueued)
		return true
	}
	o.recorder.InvalidationRetry(OutcomeDropped)
	o.logger.Error().Str("kind", string(step.Kind)).Str("target", step.Target).Msg("invalidation retry queue full, dropping step")
	return false
}

func (o *Orchestrator) retryQueued(ctx context.Context, step Step) error {
	if err := o.withRetry(ctx, step); err != nil {
		o.recorder.InvalidationRetry(OutcomeFailed)
		o.logger.Error().Err(err).Str("kind", string(step.Kind)).Str("target", step.Target).Msg("background invalidation retry failed")
		return err
	}
	o.recorder.InvalidationRetry(OutcomeApplied)
	return nil
}

func (o *Orchestrator) publish(ctx context.Context, m Mutation, plan Plan) {
	if o.channel == "" {
		return
	}

	event := Event{
		ID:         uuid.NewString(),
		Origin:     o.origin,
		Entity:     m.Entity,
		EntityID:   m.ID,
		Action:     m.Action,
		Keys:       plan.Keys,
		Patterns:   plan.Patterns,
		OccurredAt: o.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		o.logger.Error().Err(err).Msg("failed to encode invalidation event")
		return
	}
	if _, err := o.store.Publish(ctx, o.channel, payload); err != nil {
		o.logger.Warn().Err(err).Str("channel", o.channel).Msg("failed to publish invalidation event")
	}
}

// Subscribe delivers decoded invalidation events to fn until the
// subscription is closed. Undecodable messages are logged and skipped.
func (o *Orchestrator) Subscribe(ctx context.Context, fn func(ctx context.Context, event Event) error) (cache.Subscription, error) {
	if o.channel == "" {
		return nil, fmt.Errorf("invalidation: no event channel configured")
	}
	return o.store.Subscribe(ctx, o.channel, func(ctx context.Context, msg cache.Message) error {
		var event Event
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			o.logger.Warn().Err(err).Str("channel", msg.Channel).Msg("skipping undecodable invalidation event")
			return nil
		}
		return fn(ctx, event)
	})
}

// retriable returns the step to queue after a failure, or nil when
// retrying cannot help.
func retriable(step Step, err error) *Step {
	if cache.IsWrongKind(err) {
		return nil
	}
	return &step
}
