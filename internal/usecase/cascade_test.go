package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfcheck/backend/internal/domain"
)

// MockCatalogClient is a mock implementation of domain.CatalogClient
type MockCatalogClient struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	results map[string]*domain.CatalogItem
	queries []string
	times   []time.Time
}

func NewMockCatalogClient(clock clockwork.Clock) *MockCatalogClient {
	return &MockCatalogClient{
		clock:   clock,
		results: make(map[string]*domain.CatalogItem),
	}
}

func (m *MockCatalogClient) On(keyword, title string) *MockCatalogClient {
	m.results[keyword] = &domain.CatalogItem{Title: title}
	return m
}

func (m *MockCatalogClient) Query(ctx context.Context, keyword string) *domain.CatalogItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, keyword)
	if m.clock != nil {
		m.times = append(m.times, m.clock.Now())
	}
	return m.results[keyword]
}

func (m *MockCatalogClient) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// runWithFakeClock runs the cascade and releases the expected number of step delays
func runWithFakeClock(
	t *testing.T,
	cascade *Cascade,
	clock *clockwork.FakeClock,
	title domain.ReducedTitle,
	author string,
	delays int,
) *domain.Resolution {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan *domain.Resolution, 1)
	go func() {
		done <- cascade.Run(ctx, title, author)
	}()

	for i := 0; i < delays; i++ {
		require.NoError(t, clock.BlockUntilContext(ctx, 1), "waiting for delay %d", i+1)
		clock.Advance(DefaultStepDelay)
	}

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		t.Fatal("cascade did not finish")
		return nil
	}
}

func newTestCascade(catalog domain.CatalogClient, clock clockwork.Clock) *Cascade {
	return NewCascade(
		catalog,
		NewMatchingService(MatchConfig{}),
		NewQueryPreprocessor(),
		CascadeConfig{StepDelay: DefaultStepDelay, Clock: clock},
	)
}

func TestCascade_MatchOnFirstQuery(t *testing.T) {
	clock := clockwork.NewFakeClock()
	catalog := NewMockCatalogClient(clock).
		On(`"鬼滅の刃 (1)" 吾峠呼世晴`, "鬼滅の刃 1")
	cascade := newTestCascade(catalog, clock)

	title := NewQueryPreprocessor().Reduce("鬼滅の刃 (1) (少年ジャンプ)")
	res := runWithFakeClock(t, cascade, clock, title, "吾峠呼世晴", 0)

	require.True(t, res.Matched())
	assert.Equal(t, []string{`"鬼滅の刃 (1)" 吾峠呼世晴`}, catalog.Queries())
	assert.Equal(t, domain.QueryTitleAndAuthor, res.Match.Query.Kind)
	assert.Equal(t, "鬼滅の刃 1", res.Match.Item.Title)
	assert.InDelta(t, 1.0-2.0/7.0, res.Match.Score, 1e-9)
	require.Len(t, res.Attempts, 1)
	assert.Equal(t, domain.AttemptMatched, res.Attempts[0].Outcome)
}

func TestCascade_FallsThroughToFuzzyTitle(t *testing.T) {
	clock := clockwork.NewFakeClock()
	catalog := NewMockCatalogClient(clock).
		// exact query returns an unrelated item, which must not stop the cascade
		On(`"進撃の巨人 : 完結編 34"`, "ハリー・ポッターと賢者の石").
		On("進撃の巨人 : 完結編 34", "進撃の巨人 完結編 34")
	cascade := newTestCascade(catalog, clock)

	title := NewQueryPreprocessor().Reduce("進撃の巨人 : 完結編 (講談社コミックス) 34")
	res := runWithFakeClock(t, cascade, clock, title, "諫山創", 2)

	require.True(t, res.Matched())
	assert.Equal(t, []string{
		`"進撃の巨人 : 完結編 34" 諫山創`,
		`"進撃の巨人 : 完結編 34"`,
		"進撃の巨人 : 完結編 34",
	}, catalog.Queries())
	assert.Equal(t, domain.QueryTitleFuzzy, res.Match.Query.Kind)
	assert.Equal(t, 1.0, res.Match.Score)

	require.Len(t, res.Attempts, 3)
	assert.Equal(t, domain.AttemptNoResult, res.Attempts[0].Outcome)
	assert.Equal(t, domain.AttemptBelowThreshold, res.Attempts[1].Outcome)
	assert.Equal(t, domain.AttemptMatched, res.Attempts[2].Outcome)

	// queries are spaced by the step delay
	require.Len(t, catalog.times, 3)
	assert.Equal(t, DefaultStepDelay, catalog.times[1].Sub(catalog.times[0]))
	assert.Equal(t, DefaultStepDelay, catalog.times[2].Sub(catalog.times[1]))
}

func TestCascade_NoMatchAfterAllSteps(t *testing.T) {
	clock := clockwork.NewFakeClock()
	catalog := NewMockCatalogClient(clock).
		On("進撃の巨人 34", "まったく関係のない料理の本です")
	cascade := newTestCascade(catalog, clock)

	title := NewQueryPreprocessor().Reduce("進撃の巨人 : 完結編 (講談社コミックス) 34")
	res := runWithFakeClock(t, cascade, clock, title, "諫山創", 3)

	assert.False(t, res.Matched())
	assert.Len(t, catalog.Queries(), 4)
	assert.Equal(t, "進撃の巨人 34", catalog.Queries()[3])
	assert.Equal(t, "進撃の巨人 : 完結編 34", res.Title.Cleaned)
	require.Len(t, res.Attempts, 4)
	assert.Equal(t, domain.AttemptBelowThreshold, res.Attempts[3].Outcome)
}

func TestCascade_SimpleTitleMatchScoresAgainstCleanedTitle(t *testing.T) {
	clock := clockwork.NewFakeClock()
	catalog := NewMockCatalogClient(clock).
		On("進撃の巨人 34", "進撃の巨人 34")
	cascade := newTestCascade(catalog, clock)

	title := NewQueryPreprocessor().Reduce("進撃の巨人 : 完結編 (講談社コミックス) 34")
	res := runWithFakeClock(t, cascade, clock, title, "諫山創", 3)

	require.True(t, res.Matched())
	assert.Equal(t, domain.QuerySimpleTitleFuzzy, res.Match.Query.Kind)
	// baseline "進撃の巨人完結編34" vs "進撃の巨人34": three insertions over ten runes
	assert.InDelta(t, 0.7, res.Match.Score, 1e-9)
}

func TestCascade_NoAuthorSkipsDuplicateQuery(t *testing.T) {
	clock := clockwork.NewFakeClock()
	catalog := NewMockCatalogClient(clock)
	cascade := newTestCascade(catalog, clock)

	title := NewQueryPreprocessor().Reduce("鬼滅の刃 (1) (少年ジャンプ)")
	res := runWithFakeClock(t, cascade, clock, title, "", 1)

	assert.False(t, res.Matched())
	assert.Equal(t, []string{`"鬼滅の刃 (1)"`, "鬼滅の刃 (1)"}, catalog.Queries())
}

func TestCascade_EmptyTitle(t *testing.T) {
	catalog := NewMockCatalogClient(nil)
	cascade := newTestCascade(catalog, clockwork.NewFakeClock())

	res := cascade.Run(context.Background(), domain.ReducedTitle{}, "someone")

	assert.False(t, res.Matched())
	assert.Empty(t, catalog.Queries())
	assert.Empty(t, res.Attempts)
}

func TestCascade_CancelledDuringDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	catalog := NewMockCatalogClient(clock)
	cascade := newTestCascade(catalog, clock)
	title := NewQueryPreprocessor().Reduce("鬼滅の刃 (1)")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *domain.Resolution, 1)
	go func() {
		done <- cascade.Run(ctx, title, "吾峠呼世晴")
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	cancel()

	select {
	case res := <-done:
		assert.False(t, res.Matched())
		assert.Len(t, catalog.Queries(), 1)
	case <-waitCtx.Done():
		t.Fatal("cascade did not stop after cancellation")
	}
}

func TestCascade_ZeroDelay(t *testing.T) {
	catalog := NewMockCatalogClient(nil).On("鬼滅の刃 (1)", "鬼滅の刃 (1)")
	cascade := NewCascade(catalog, NewMatchingService(MatchConfig{}), NewQueryPreprocessor(), CascadeConfig{})

	res := cascade.Run(context.Background(), NewQueryPreprocessor().Reduce("鬼滅の刃 (1)"), "")

	require.True(t, res.Matched())
	assert.Len(t, catalog.Queries(), 2)
}
