// Package router wires the classical and PSB solvers into a single
// orchestration surface: validation, caching, rate limiting, tracing,
// metrics, and audit logging around each solve call. It is the thin layer
// a request handler (HTTP, gRPC, CLI) sits in front of; it performs no
// request framing itself.
package router

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tokenroute/internal/classical"
	"tokenroute/internal/graph"
	"tokenroute/internal/psb"
	"tokenroute/pkg/apperror"
	"tokenroute/pkg/audit"
	"tokenroute/pkg/cache"
	"tokenroute/pkg/logger"
	"tokenroute/pkg/metrics"
	"tokenroute/pkg/ratelimit"
	"tokenroute/pkg/telemetry"
)

// Algorithm names accepted by Solve and SolveBoth.
const (
	AlgorithmClassical = "classical"
	AlgorithmPSB       = "psb"
)

// Query describes a single routing request.
type Query struct {
	Source    graph.TokenKey
	Target    graph.TokenKey
	Algorithm string
	MaxHops   int

	// CallerID identifies the caller for rate limiting and audit
	// attribution. Empty falls back to a shared anonymous bucket.
	CallerID string
}

// SolveOutcome is the result of a single-algorithm solve, combining the
// resolved route with the solver's own execution metrics.
type SolveOutcome struct {
	RequestID string
	Algorithm string
	Result    *graph.RouteResult
	CacheHit  bool

	ClassicalMetrics *classical.Metrics
	PSBMetrics       *psb.Metrics
}

// CompareOutcome is the result of SolveBoth: both solvers' routes run
// against the same graph and query, plus the gap between their total
// weights.
type CompareOutcome struct {
	RequestID    string
	Classical    *SolveOutcome
	PSB          *SolveOutcome
	WeightDelta  float64
	PathsDiverge bool
}

// Options bundles the ambient-stack collaborators a RouteService is built
// from. Any field left nil disables that concern: a nil Cache skips
// caching, a nil Limiter skips throttling, a nil Audit logger skips
// persistence.
type Options struct {
	Cache   *cache.RouteCache
	Limiter ratelimit.Limiter
	Audit   audit.Logger
	Metrics *metrics.Metrics
}

// RouteService is the orchestration layer around the classical and PSB
// solvers. It is safe for concurrent use.
type RouteService struct {
	cache   *cache.RouteCache
	limiter ratelimit.Limiter
	audit   audit.Logger
	metrics *metrics.Metrics
}

// New builds a RouteService from opts. A zero-value Options yields a
// service with no caching, throttling, or audit persistence: every solve
// still runs the solver and records metrics, and Solve also opens a trace
// span.
func New(opts Options) *RouteService {
	m := opts.Metrics
	if m == nil {
		m = metrics.Get()
	}
	a := opts.Audit
	if a == nil {
		a = &audit.NoopLogger{}
	}
	return &RouteService{
		cache:   opts.Cache,
		limiter: opts.Limiter,
		audit:   a,
		metrics: m,
	}
}

// Solve resolves q.Source -> q.Target using the algorithm named in
// q.Algorithm (AlgorithmClassical or AlgorithmPSB), checking the route
// cache first and recording the result afterward.
func (s *RouteService) Solve(ctx context.Context, g graph.RouteGraph, q Query) (*SolveOutcome, error) {
	requestID := uuid.NewString()
	log := logger.WithRequestID(requestID)

	if err := s.throttle(ctx, q.CallerID); err != nil {
		log.Warn("solve rejected by rate limiter", "caller_id", q.CallerID, "error", err)
		return nil, err
	}

	algorithm := q.Algorithm
	if algorithm == "" {
		algorithm = AlgorithmClassical
	}
	if algorithm != AlgorithmClassical && algorithm != AlgorithmPSB {
		return nil, apperror.NewWithField(apperror.CodeInvalidAlgorithm,
			"algorithm must be one of: classical, psb", "algorithm")
	}

	var outcome *SolveOutcome
	var solveErr error

	err := telemetry.TracedSolve(ctx, "router.Solve", func(ctx context.Context) error {
		telemetry.SetAttributes(ctx, telemetry.GraphAttributes(
			countVertices(g), countEdges(g), q.Source.String(), q.Target.String(),
		)...)

		outcome, solveErr = s.solveOne(ctx, g, q.Source, q.Target, algorithm, q.MaxHops, requestID)
		return solveErr
	})
	if err != nil {
		s.recordAudit(ctx, requestID, audit.ActionSolve, algorithm, q, nil, err)
		return nil, err
	}

	s.recordAudit(ctx, requestID, audit.ActionSolve, algorithm, q, outcome.Result, nil)
	return outcome, nil
}

// SolveBoth runs both the classical and PSB solvers against the same
// query and reports the gap between their total weights. The two
// algorithms agree on an identical rate-duality objective but PSB does
// not enforce a hop cap, so their weights may legitimately diverge when
// the hop-capped classical path is forced onto a worse route; a nonzero
// WeightDelta is a diagnostic signal, not necessarily a bug.
func (s *RouteService) SolveBoth(ctx context.Context, g graph.RouteGraph, q Query) (*CompareOutcome, error) {
	requestID := uuid.NewString()

	classicalOutcome, classicalErr := s.solveOne(ctx, g, q.Source, q.Target, AlgorithmClassical, q.MaxHops, requestID)
	psbOutcome, psbErr := s.solveOne(ctx, g, q.Source, q.Target, AlgorithmPSB, q.MaxHops, requestID)

	if classicalErr != nil && psbErr != nil {
		return nil, classicalErr
	}

	result := &CompareOutcome{
		RequestID: requestID,
		Classical: classicalOutcome,
		PSB:       psbOutcome,
	}

	if classicalErr == nil && psbErr == nil {
		result.WeightDelta = psbOutcome.Result.TotalWeight - classicalOutcome.Result.TotalWeight
		result.PathsDiverge = !samePath(classicalOutcome.Result.Path, psbOutcome.Result.Path)
	}

	s.recordAudit(ctx, requestID, audit.ActionCompare, "solve_both", q, nil, nil)
	return result, nil
}

// InvalidateGraphCache drops every cached route computed over g, recording
// an audit entry for the invalidation. A no-op (with an audit entry still
// recorded) when the service was built without a route cache.
func (s *RouteService) InvalidateGraphCache(ctx context.Context, g graph.RouteGraph) (int64, error) {
	requestID := uuid.NewString()

	var n int64
	var err error
	if s.cache != nil {
		n, err = s.cache.Invalidate(ctx, g)
	}

	builder := audit.NewEntry().
		Service("tokenroute").
		Method("RouteService.InvalidateGraphCache").
		Action(audit.ActionCacheInvalidate).
		RequestID(requestID).
		Resource("graph", "").
		Meta("vertices", countVertices(g)).
		Meta("entries_removed", n)

	if err != nil {
		builder = builder.Outcome(audit.OutcomeFailure).Error(string(apperror.CodeInternal), err.Error())
	} else {
		builder = builder.Outcome(audit.OutcomeSuccess)
	}
	if logErr := s.audit.Log(ctx, builder.Build()); logErr != nil {
		logger.Log.Warn("failed to persist audit entry", "request_id", requestID, "error", logErr)
	}

	return n, err
}

func (s *RouteService) solveOne(ctx context.Context, g graph.RouteGraph, source, target graph.TokenKey, algorithm string, maxHops int, requestID string) (*SolveOutcome, error) {
	start := time.Now()

	if s.cache != nil {
		if cached, hit, err := s.cache.Get(ctx, g, source, target, algorithm, maxHops); err == nil && hit {
			s.metrics.RecordCacheLookup(true)
			return &SolveOutcome{
				RequestID: requestID,
				Algorithm: algorithm,
				Result:    fromCachedRoute(cached),
				CacheHit:  true,
			}, nil
		}
		s.metrics.RecordCacheLookup(false)
	}

	outcome := &SolveOutcome{RequestID: requestID, Algorithm: algorithm}

	var result *graph.RouteResult
	var err error

	switch algorithm {
	case AlgorithmPSB:
		var m *psb.Metrics
		result, m, err = psb.Solve(g, source, target, maxHops)
		outcome.PSBMetrics = m
	default:
		var m *classical.Metrics
		result, m, err = classical.Solve(g, source, target, maxHops)
		outcome.ClassicalMetrics = m
	}

	success := err == nil
	hops := 0
	weight := 0.0
	if success {
		outcome.Result = result
		hops = len(result.Steps)
		weight = result.TotalWeight
	}
	s.metrics.RecordSolve(algorithm, success, time.Since(start), weight, hops)
	s.metrics.RecordGraphSize("solve", countVertices(g), countEdges(g))

	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, g, source, target, algorithm, maxHops, result, 0)
	}

	return outcome, nil
}

func (s *RouteService) throttle(ctx context.Context, callerID string) error {
	if s.limiter == nil {
		return nil
	}
	key := ratelimit.DefaultKeyExtractor(ctx, callerID)
	allowed, err := s.limiter.Allow(ctx, key)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "rate limiter unavailable")
	}
	if !allowed {
		s.metrics.RateLimitRejections.Inc()
		return apperror.New(apperror.CodeRateLimited, "solve request rate limit exceeded")
	}
	return nil
}

func (s *RouteService) recordAudit(ctx context.Context, requestID string, action audit.Action, algorithm string, q Query, result *graph.RouteResult, solveErr error) {
	method := "RouteService.Solve"
	if action == audit.ActionCompare {
		method = "RouteService.SolveBoth"
	}
	builder := audit.NewEntry().
		Service("tokenroute").
		Method(method).
		Action(action).
		RequestID(requestID).
		Resource("route", q.Source.String()+"->"+q.Target.String()).
		Meta("algorithm", algorithm).
		Meta("caller_id", q.CallerID)

	if solveErr != nil {
		builder = builder.Outcome(audit.OutcomeFailure).Error(errCode(solveErr), solveErr.Error())
	} else {
		builder = builder.Outcome(audit.OutcomeSuccess)
		if result != nil {
			builder = builder.Meta("total_weight", result.TotalWeight).Meta("hops", len(result.Steps))
		}
	}

	entry := builder.Build()
	if err := s.audit.Log(ctx, entry); err != nil {
		logger.Log.Warn("failed to persist audit entry", "request_id", requestID, "error", err)
	}
}

func errCode(err error) string {
	if appErr, ok := err.(*apperror.Error); ok {
		return string(appErr.Code)
	}
	return string(apperror.CodeInternal)
}

func countVertices(g graph.RouteGraph) int {
	seen := make(map[graph.TokenKey]bool, len(g))
	for v, edges := range g {
		seen[v] = true
		for _, e := range edges {
			seen[e.Target] = true
		}
	}
	return len(seen)
}

func countEdges(g graph.RouteGraph) int {
	n := 0
	for _, edges := range g {
		n += len(edges)
	}
	return n
}

func samePath(a, b []graph.TokenKey) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func fromCachedRoute(c *cache.CachedRoute) *graph.RouteResult {
	result := &graph.RouteResult{TotalWeight: c.TotalWeight}
	for _, p := range c.Path {
		result.Path = append(result.Path, parseTokenKey(p))
	}
	for _, step := range c.Steps {
		kind := parseEdgeKind(step.Kind)
		result.Steps = append(result.Steps, graph.RouteStep{
			From:   parseTokenKey(step.From),
			To:     parseTokenKey(step.To),
			Kind:   kind,
			Rate:   step.Rate,
			Gas:    step.Gas,
			Weight: graph.Weight(graph.Edge{Kind: kind, Rate: step.Rate, Gas: step.Gas}),
		})
	}
	return result
}

func parseTokenKey(s string) graph.TokenKey {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return graph.NewTokenKey(s[:i], s[i+1:])
		}
	}
	return graph.NewTokenKey(s, "")
}

func parseEdgeKind(s string) graph.EdgeKind {
	if s == "bridge" {
		return graph.Bridge
	}
	return graph.Swap
}
