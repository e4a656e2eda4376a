package router

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"tokenroute/internal/graph"
	"tokenroute/pkg/apperror"
	"tokenroute/pkg/audit"
	"tokenroute/pkg/cache"
	"tokenroute/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init("error")
	os.Exit(m.Run())
}

func tk(symbol, chain string) graph.TokenKey { return graph.NewTokenKey(symbol, chain) }

func linearChainGraph() graph.RouteGraph {
	a, b, c, d := tk("A", "eth"), tk("B", "eth"), tk("C", "eth"), tk("D", "eth")
	return graph.RouteGraph{
		a: {{Target: b, Kind: graph.Swap, Rate: 2, Gas: 0}},
		b: {{Target: c, Kind: graph.Swap, Rate: 3, Gas: 0}},
		c: {{Target: d, Kind: graph.Swap, Rate: 5, Gas: 0}},
	}
}

func TestSolveRunsClassicalByDefault(t *testing.T) {
	svc := New(Options{})
	g := linearChainGraph()

	outcome, err := svc.Solve(context.Background(), g, Query{
		Source: tk("A", "eth"), Target: tk("D", "eth"), MaxHops: 4,
	})
	require.NoError(t, err)
	require.Equal(t, AlgorithmClassical, outcome.Algorithm)
	require.NotNil(t, outcome.ClassicalMetrics)
	require.Nil(t, outcome.PSBMetrics)
	require.Equal(t, []graph.TokenKey{tk("A", "eth"), tk("B", "eth"), tk("C", "eth"), tk("D", "eth")}, outcome.Result.Path)
}

func TestSolveRunsPSBWhenRequested(t *testing.T) {
	svc := New(Options{})
	g := linearChainGraph()

	outcome, err := svc.Solve(context.Background(), g, Query{
		Source: tk("A", "eth"), Target: tk("D", "eth"), Algorithm: AlgorithmPSB, MaxHops: 4,
	})
	require.NoError(t, err)
	require.Equal(t, AlgorithmPSB, outcome.Algorithm)
	require.NotNil(t, outcome.PSBMetrics)
	require.Nil(t, outcome.ClassicalMetrics)
}

func TestSolveRejectsUnknownAlgorithm(t *testing.T) {
	svc := New(Options{})
	g := linearChainGraph()

	_, err := svc.Solve(context.Background(), g, Query{
		Source: tk("A", "eth"), Target: tk("D", "eth"), Algorithm: "quantum", MaxHops: 4,
	})
	require.Error(t, err)
	require.Equal(t, apperror.CodeInvalidAlgorithm, apperror.Code(err))
}

func TestSolveSurfacesNoRouteFound(t *testing.T) {
	svc := New(Options{})
	g := graph.RouteGraph{tk("A", "eth"): nil, tk("B", "eth"): nil}

	_, err := svc.Solve(context.Background(), g, Query{
		Source: tk("A", "eth"), Target: tk("B", "eth"), MaxHops: 4,
	})
	require.Error(t, err)
	require.Equal(t, apperror.CodeNoRouteFound, apperror.Code(err))
}

func TestSolveCachesSecondCallAsHit(t *testing.T) {
	routeCache := cache.NewRouteCache(cache.NewMemoryCache(cache.DefaultOptions()), 0)
	svc := New(Options{Cache: routeCache})
	g := linearChainGraph()
	q := Query{Source: tk("A", "eth"), Target: tk("D", "eth"), MaxHops: 4}

	first, err := svc.Solve(context.Background(), g, q)
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	second, err := svc.Solve(context.Background(), g, q)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.InDelta(t, first.Result.TotalWeight, second.Result.TotalWeight, 1e-9)
}

func TestSolveBothAgreeOnWeightWhenHopCapIsNotBinding(t *testing.T) {
	svc := New(Options{})
	g := linearChainGraph()

	outcome, err := svc.SolveBoth(context.Background(), g, Query{
		Source: tk("A", "eth"), Target: tk("D", "eth"), MaxHops: 4,
	})
	require.NoError(t, err)
	require.NotNil(t, outcome.Classical)
	require.NotNil(t, outcome.PSB)
	require.InDelta(t, 0, outcome.WeightDelta, 1e-9)
}

func TestSolveBothDivergesWhenHopCapBindsOnClassicalOnly(t *testing.T) {
	svc := New(Options{})
	a, b, c, d, e := tk("A", "eth"), tk("B", "eth"), tk("C", "eth"), tk("D", "eth"), tk("E", "eth")
	g := graph.RouteGraph{
		a: {
			{Target: b, Kind: graph.Swap, Rate: 10},
			{Target: e, Kind: graph.Swap, Rate: 100},
		},
		b: {{Target: c, Kind: graph.Swap, Rate: 10}},
		c: {{Target: d, Kind: graph.Swap, Rate: 10}},
		d: {{Target: e, Kind: graph.Swap, Rate: 10}},
	}

	outcome, err := svc.SolveBoth(context.Background(), g, Query{Source: a, Target: e, MaxHops: 2})
	require.NoError(t, err)
	require.Equal(t, []graph.TokenKey{a, e}, outcome.Classical.Result.Path)
	require.True(t, outcome.PathsDiverge)
	require.Less(t, outcome.PSB.Result.TotalWeight, outcome.Classical.Result.TotalWeight)
}

func TestSolveRecordsAuditEntryOnSuccessAndFailure(t *testing.T) {
	rec := &recordingAuditLogger{}
	svc := New(Options{Audit: rec})
	g := linearChainGraph()

	_, err := svc.Solve(context.Background(), g, Query{Source: tk("A", "eth"), Target: tk("D", "eth"), MaxHops: 4})
	require.NoError(t, err)

	_, err = svc.Solve(context.Background(), g, Query{Source: tk("A", "eth"), Target: tk("Z", "eth"), MaxHops: 4})
	require.Error(t, err)

	require.Len(t, rec.entries, 2)
	require.Equal(t, audit.OutcomeSuccess, rec.entries[0].Outcome)
	require.Equal(t, audit.OutcomeFailure, rec.entries[1].Outcome)
}

func TestInvalidateGraphCacheRemovesCachedEntry(t *testing.T) {
	routeCache := cache.NewRouteCache(cache.NewMemoryCache(cache.DefaultOptions()), 0)
	rec := &recordingAuditLogger{}
	svc := New(Options{Cache: routeCache, Audit: rec})
	g := linearChainGraph()
	q := Query{Source: tk("A", "eth"), Target: tk("D", "eth"), MaxHops: 4}

	first, err := svc.Solve(context.Background(), g, q)
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	removed, err := svc.InvalidateGraphCache(context.Background(), g)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	second, err := svc.Solve(context.Background(), g, q)
	require.NoError(t, err)
	require.False(t, second.CacheHit)

	require.Len(t, rec.entries, 3)
	require.Equal(t, audit.ActionCacheInvalidate, rec.entries[1].Action)
}

type recordingAuditLogger struct {
	entries []*audit.Entry
}

func (r *recordingAuditLogger) Log(_ context.Context, entry *audit.Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingAuditLogger) Query(_ context.Context, _ *audit.QueryFilter) ([]*audit.Entry, error) {
	return nil, nil
}

func (r *recordingAuditLogger) Close() error { return nil }
