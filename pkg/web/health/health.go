// Package health serves liveness and dependency health endpoints.
package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fluxorio/todolist/pkg/web"
)

// Check reports a dependency's health; nil means healthy
type Check func(ctx context.Context) error

// Status values
const (
	StatusUp   = "UP"
	StatusDown = "DOWN"
)

// Registry holds named checks
type Registry struct {
	mu     sync.RWMutex
	checks map[string]Check
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{checks: make(map[string]Check)}
}

// Register adds or replaces the check called name
func (r *Registry) Register(name string, check Check) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[name] = check
}

// CheckResult is one check's outcome
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report is the detailed health document
type Report struct {
	Status  string                 `json:"status"`
	Service string                 `json:"service"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// Aggregator runs every registered check with a per-check timeout
type Aggregator struct {
	registry *Registry
	service  string
	timeout  time.Duration
}

// NewAggregator creates an aggregator reporting as service
func NewAggregator(registry *Registry, service string) *Aggregator {
	return &Aggregator{registry: registry, service: service, timeout: 2 * time.Second}
}

// Run executes the checks concurrently
func (a *Aggregator) Run(ctx context.Context) Report {
	a.registry.mu.RLock()
	names := make([]string, 0, len(a.registry.checks))
	for name := range a.registry.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	checks := make([]Check, len(names))
	for i, name := range names {
		checks[i] = a.registry.checks[name]
	}
	a.registry.mu.RUnlock()

	results := make([]CheckResult, len(names))
	var wg sync.WaitGroup
	for i := range checks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()
			if err := checks[i](cctx); err != nil {
				results[i] = CheckResult{Status: StatusDown, Error: err.Error()}
				return
			}
			results[i] = CheckResult{Status: StatusUp}
		}(i)
	}
	wg.Wait()

	report := Report{Status: StatusUp, Service: a.service, Checks: make(map[string]CheckResult, len(names))}
	for i, name := range names {
		report.Checks[name] = results[i]
		if results[i].Status == StatusDown {
			report.Status = StatusDown
		}
	}
	return report
}

// HandleHealth answers 200 when every check passes and 503 otherwise
func (a *Aggregator) HandleHealth(ctx *web.FastRequestContext) error {
	report := a.Run(ctx.Context())
	status := 200
	if report.Status != StatusUp {
		status = 503
	}
	return ctx.JSON(status, report)
}

// Liveness answers 200 while the process serves requests
func Liveness(service string) web.FastRequestHandler {
	return func(ctx *web.FastRequestContext) error {
		return ctx.JSON(200, Report{Status: StatusUp, Service: service})
	}
}

// Register mounts path (liveness) and path+"/detailed" (dependency checks)
func Register(router *web.FastRouter, path string, a *Aggregator) {
	router.GETFast(path, Liveness(a.service))
	router.GETFast(path+"/detailed", a.HandleHealth)
}
