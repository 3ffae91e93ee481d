package usecase

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/shelfcheck/backend/internal/domain"
)

// DefaultStepDelay spaces consecutive catalog queries within one resolution
const DefaultStepDelay = 500 * time.Millisecond

// cascadeState is a node of the resolution state machine
type cascadeState int

const (
	stateTitleAndAuthor cascadeState = iota
	stateTitleExactQuoted
	stateTitleFuzzy
	stateSimpleTitleFuzzy
	stateMatched
	stateNoMatch
)

var stateNames = map[cascadeState]string{
	stateTitleAndAuthor:   "title_and_author",
	stateTitleExactQuoted: "title_exact_quoted",
	stateTitleFuzzy:       "title_fuzzy",
	stateSimpleTitleFuzzy: "simple_title_fuzzy",
	stateMatched:          "matched",
	stateNoMatch:          "no_match",
}

func (s cascadeState) String() string {
	return stateNames[s]
}

// queryKind maps a searching state to the query it issues
func (s cascadeState) queryKind() domain.QueryKind {
	switch s {
	case stateTitleAndAuthor:
		return domain.QueryTitleAndAuthor
	case stateTitleExactQuoted:
		return domain.QueryTitleExact
	case stateTitleFuzzy:
		return domain.QueryTitleFuzzy
	default:
		return domain.QuerySimpleTitleFuzzy
	}
}

// next is the transition taken when a state yields no usable result
func (s cascadeState) next() cascadeState {
	switch s {
	case stateTitleAndAuthor:
		return stateTitleExactQuoted
	case stateTitleExactQuoted:
		return stateTitleFuzzy
	case stateTitleFuzzy:
		return stateSimpleTitleFuzzy
	default:
		return stateNoMatch
	}
}

func (s cascadeState) terminal() bool {
	return s == stateMatched || s == stateNoMatch
}

// CascadeConfig holds configuration for the resolution cascade
type CascadeConfig struct {
	StepDelay time.Duration
	Clock     clockwork.Clock
}

// Cascade resolves a reduced title against the catalog, relaxing the query
// one step at a time until a candidate clears the similarity threshold.
type Cascade struct {
	catalog      domain.CatalogClient
	matcher      *MatchingService
	preprocessor *QueryPreprocessor
	stepDelay    time.Duration
	clock        clockwork.Clock
}

// NewCascade creates a cascade over the given catalog client
func NewCascade(
	catalog domain.CatalogClient,
	matcher *MatchingService,
	preprocessor *QueryPreprocessor,
	config CascadeConfig,
) *Cascade {
	clock := config.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if config.StepDelay < 0 {
		config.StepDelay = 0
	}

	return &Cascade{
		catalog:      catalog,
		matcher:      matcher,
		preprocessor: preprocessor,
		stepDelay:    config.StepDelay,
		clock:        clock,
	}
}

// Run drives the state machine to a terminal state. Queries are strictly
// sequential and every query after the first waits for the step delay.
// Failures of any kind only advance the machine; the result is never an error.
func (c *Cascade) Run(ctx context.Context, title domain.ReducedTitle, author string) *domain.Resolution {
	res := &domain.Resolution{
		Title:    title,
		Author:   author,
		Attempts: []domain.Attempt{},
	}

	if title.Cleaned == "" {
		log.Info().Msg("empty title, skipping catalog search")
		return res
	}

	logger := log.With().Str("title", title.Cleaned).Str("author", author).Logger()

	state := stateTitleAndAuthor
	issued := 0
	for !state.terminal() {
		query, ok := c.preprocessor.QueryFor(state.queryKind(), title, author)
		if !ok {
			logger.Debug().Stringer("state", state).Msg("cascade step skipped")
			state = state.next()
			continue
		}

		if issued > 0 {
			if err := c.wait(ctx); err != nil {
				logger.Warn().Err(err).Stringer("state", state).Msg("cascade interrupted")
				state = stateNoMatch
				continue
			}
		}
		issued++

		item := c.catalog.Query(ctx, query.Keyword)
		attempt := domain.Attempt{Query: query, Outcome: domain.AttemptNoResult}
		if item != nil {
			score, accepted := c.matcher.Evaluate(title.Cleaned, item)
			attempt.Score = score
			attempt.CandidateTitle = item.Title
			attempt.Outcome = domain.AttemptBelowThreshold
			if accepted {
				attempt.Outcome = domain.AttemptMatched
				res.Match = &domain.MatchResult{Item: *item, Query: query, Score: score}
			}
		}
		res.Attempts = append(res.Attempts, attempt)

		logger.Info().
			Stringer("state", state).
			Str("keyword", query.Keyword).
			Str("outcome", string(attempt.Outcome)).
			Float64("score", attempt.Score).
			Msg("cascade step")

		if res.Match != nil {
			state = stateMatched
		} else {
			state = state.next()
		}
	}

	logger.Info().
		Bool("matched", res.Matched()).
		Int("queries", issued).
		Msg("cascade finished")

	return res
}

func (c *Cascade) wait(ctx context.Context) error {
	if c.stepDelay == 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.clock.After(c.stepDelay):
		return nil
	}
}
