// Package runregistry tracks the lifecycle of detection runs: submission,
// concurrency and dataset-size limits, status transitions, and the final
// report once a run completes.
package runregistry

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/umad/orca/pkg/detect"
)

var runSeq uint64

// Status is the lifecycle state of a detection run.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Limits bounds the resources a run (or the registry as a whole) may consume.
type Limits struct {
	MaxConcurrentRuns int // 0 or negative means unlimited
	MaxObjects        int // largest dataset a run may process
	RateLimitQPS      int // run submissions per second
}

// Usage tracks submission-rate bookkeeping for rate limiting.
type Usage struct {
	SubmitCount   int64
	LastSubmitAt  time.Time
	mu            sync.RWMutex
}

// Run is a single tracked detection invocation.
type Run struct {
	ID          string
	DatasetPath string
	Status      Status
	Result      *detect.Report
	Err         string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	StartedAt   time.Time
	FinishedAt  time.Time
	Metadata    map[string]interface{}
	mu          sync.RWMutex
}

// Registry handles run lifecycle and limit enforcement.
type Registry struct {
	runs   map[string]*Run
	limits Limits
	usage  Usage
	mu     sync.RWMutex
}

// NewRegistry creates a run registry bounded by limits.
func NewRegistry(limits Limits) *Registry {
	return &Registry{
		runs:   make(map[string]*Run),
		limits: limits,
	}
}

// CreateRun registers a new run in the Queued state.
func (r *Registry) CreateRun(datasetPath string) (*Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkConcurrencyLimitLocked(); err != nil {
		return nil, err
	}
	if err := r.checkRateLimitLocked(); err != nil {
		return nil, err
	}

	run := &Run{
		ID:          generateRunID(datasetPath),
		DatasetPath: datasetPath,
		Status:      StatusQueued,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Metadata:    make(map[string]interface{}),
	}

	r.runs[run.ID] = run
	return run, nil
}

// GetRun retrieves a run by ID.
func (r *Registry) GetRun(id string) (*Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, exists := r.runs[id]
	if !exists {
		return nil, fmt.Errorf("run '%s' not found", id)
	}
	return run, nil
}

// DeleteRun removes a run.
func (r *Registry) DeleteRun(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[id]; !exists {
		return fmt.Errorf("run '%s' not found", id)
	}
	delete(r.runs, id)
	return nil
}

// ListRuns returns all tracked runs.
func (r *Registry) ListRuns() []*Run {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]*Run, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, run)
	}
	return runs
}

// ActiveCount returns the number of runs in Queued or Running state.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, run := range r.runs {
		run.mu.RLock()
		if run.Status == StatusQueued || run.Status == StatusRunning {
			count++
		}
		run.mu.RUnlock()
	}
	return count
}

// UpdateLimits replaces the registry's limits.
func (r *Registry) UpdateLimits(limits Limits) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limits = limits
}

func (r *Registry) checkConcurrencyLimitLocked() error {
	if r.limits.MaxConcurrentRuns <= 0 {
		return nil
	}
	active := 0
	for _, run := range r.runs {
		run.mu.RLock()
		if run.Status == StatusQueued || run.Status == StatusRunning {
			active++
		}
		run.mu.RUnlock()
	}
	if active >= r.limits.MaxConcurrentRuns {
		return fmt.Errorf("concurrent run limit exceeded: active=%d, max=%d", active, r.limits.MaxConcurrentRuns)
	}
	return nil
}

func (r *Registry) checkRateLimitLocked() error {
	if r.limits.RateLimitQPS <= 0 {
		return nil
	}

	r.usage.mu.Lock()
	defer r.usage.mu.Unlock()

	now := time.Now()
	if now.Sub(r.usage.LastSubmitAt) < time.Second {
		if r.usage.SubmitCount >= int64(r.limits.RateLimitQPS) {
			return fmt.Errorf("run submission rate limit exceeded: %d submissions per second (max: %d)",
				r.usage.SubmitCount, r.limits.RateLimitQPS)
		}
	} else {
		r.usage.SubmitCount = 0
		r.usage.LastSubmitAt = now
	}
	r.usage.SubmitCount++
	return nil
}

// CheckObjectLimit checks a dataset size against the registry's object limit.
func (r *Registry) CheckObjectLimit(objects int) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.limits.MaxObjects > 0 && objects > r.limits.MaxObjects {
		return fmt.Errorf("dataset size exceeds limit: objects=%d, max=%d", objects, r.limits.MaxObjects)
	}
	return nil
}

// MarkRunning transitions a run to Running.
func (run *Run) MarkRunning() {
	run.mu.Lock()
	defer run.mu.Unlock()

	run.Status = StatusRunning
	run.StartedAt = time.Now()
	run.UpdatedAt = run.StartedAt
}

// MarkCompleted transitions a run to Completed with its final report.
func (run *Run) MarkCompleted(result *detect.Report) {
	run.mu.Lock()
	defer run.mu.Unlock()

	run.Status = StatusCompleted
	run.Result = result
	run.FinishedAt = time.Now()
	run.UpdatedAt = run.FinishedAt
}

// MarkFailed transitions a run to Failed with an error message.
func (run *Run) MarkFailed(err error) {
	run.mu.Lock()
	defer run.mu.Unlock()

	run.Status = StatusFailed
	run.Err = err.Error()
	run.FinishedAt = time.Now()
	run.UpdatedAt = run.FinishedAt
}

// GetMetadata retrieves run metadata.
func (run *Run) GetMetadata(key string) (interface{}, bool) {
	run.mu.RLock()
	defer run.mu.RUnlock()

	value, exists := run.Metadata[key]
	return value, exists
}

// SetMetadata sets run metadata.
func (run *Run) SetMetadata(key string, value interface{}) {
	run.mu.Lock()
	defer run.mu.Unlock()

	run.Metadata[key] = value
	run.UpdatedAt = time.Now()
}

// CurrentStatus returns the run's status under its own lock.
func (run *Run) CurrentStatus() Status {
	run.mu.RLock()
	defer run.mu.RUnlock()
	return run.Status
}

func generateRunID(datasetPath string) string {
	seq := atomic.AddUint64(&runSeq, 1)
	return fmt.Sprintf("run_%d_%d", time.Now().UnixNano(), seq)
}

// DefaultLimits returns a conservative default limit configuration.
func DefaultLimits() Limits {
	return Limits{
		MaxConcurrentRuns: 4,
		MaxObjects:        1000000,
		RateLimitQPS:      10,
	}
}

// UnlimitedLimits returns a limit configuration with no enforcement.
func UnlimitedLimits() Limits {
	return Limits{
		MaxConcurrentRuns: -1,
		MaxObjects:        -1,
		RateLimitQPS:      -1,
	}
}
