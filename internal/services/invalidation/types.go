// Package invalidation fans out cache invalidations after authoritative writes.
package invalidation

import (
	"time"
)

// StepKind identifies the kind of fan-out step.
type StepKind string

const (
	// StepKey deletes one entity or aggregate key.
	StepKey StepKind = "key"
	// StepDelta applies a known delta to a materialized counter.
	StepDelta StepKind = "delta"
	// StepPattern deletes a family of listing keys.
	StepPattern StepKind = "pattern"
)

// Step outcomes reported to the Recorder.
const (
	OutcomeApplied  = "applied"
	OutcomeSkipped  = "skipped"
	OutcomeDegraded = "degraded"
	OutcomeFailed   = "failed"
	OutcomeQueued   = "queued"
	OutcomeDropped  = "dropped"
)

// Delta is a known change to a counter, such as +1 on a like.
type Delta struct {
	Key string
	By  int64
}

// Plan lists what one mutation invalidates.
type Plan struct {
	// Keys are deleted outright.
	Keys []string
	// Deltas are applied to counters that are already cached.
	Deltas []Delta
	// Patterns are glob families deleted by incremental scan.
	Patterns []string
}

// Len returns the number of fan-out steps in the plan.
func (p Plan) Len() int {
	return len(p.Keys) + len(p.Deltas) + len(p.Patterns)
}

func (p Plan) steps() []Step {
	steps := make([]Step, 0, p.Len())
	for _, k := range p.Keys {
		steps = append(steps, Step{Kind: StepKey, Target: k})
	}
	for _, d := range p.Deltas {
		steps = append(steps, Step{Kind: StepDelta, Target: d.Key, By: d.By})
	}
	for _, pattern := range p.Patterns {
		steps = append(steps, Step{Kind: StepPattern, Target: pattern})
	}
	return steps
}

// Step is one independently retryable unit of invalidation. Key and pattern
// steps are idempotent; delta steps are not and are never retried as deltas.
type Step struct {
	Kind   StepKind
	Target string
	By     int64
}

// Mutation describes the authoritative write that triggered invalidation.
type Mutation struct {
	Entity string
	ID     string
	Owner  string
	Action string
}

// Report summarizes one Apply call.
type Report struct {
	// Succeeded counts steps that were applied or had nothing to do.
	Succeeded int
	// Degraded counts delta steps replaced by deleting the counter.
	Degraded int
	// Failed counts steps that exhausted their retries.
	Failed int
	// Queued counts failed steps handed to the background retry queue.
	Queued int
	// Err joins the errors of the failed steps.
	Err error
}

// Event is published after every fan-out so other instances and
// subscribers can react to the mutation.
type Event struct {
	ID         string    `json:"id"`
	Origin     string    `json:"origin"`
	Entity     string    `json:"entity"`
	EntityID   string    `json:"entityId"`
	Action     string    `json:"action"`
	Keys       []string  `json:"keys,omitempty"`
	Patterns   []string  `json:"patterns,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Recorder receives per-step outcomes.
type Recorder interface {
	InvalidationStep(kind, outcome string)
	InvalidationRetry(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) InvalidationStep(string, string) {}
func (nopRecorder) InvalidationRetry(string)        {}
