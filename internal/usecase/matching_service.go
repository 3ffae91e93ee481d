package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog/log"

	"github.com/shelfcheck/backend/internal/domain"
)

// DefaultSimilarityThreshold is the minimum score a catalog title needs to be accepted
const DefaultSimilarityThreshold = 0.35

// containmentMinLength is the key length (in runes) both titles must exceed
// before substring containment counts as a perfect match
const containmentMinLength = 2

// Similarity scores two raw titles in [0, 1]. Both are normalized first; a key
// containing the other scores 1, otherwise the score is one minus the
// Levenshtein distance over the longer key length.
func Similarity(a, b string) float64 {
	k1, k2 := Normalize(a), Normalize(b)
	len1, len2 := utf8.RuneCountInString(k1), utf8.RuneCountInString(k2)

	if len1 > containmentMinLength && len2 > containmentMinLength {
		if strings.Contains(k1, k2) || strings.Contains(k2, k1) {
			return 1.0
		}
	}

	maxLen := max(len1, len2)
	if maxLen == 0 {
		return 1.0
	}

	return 1.0 - float64(Levenshtein(k1, k2))/float64(maxLen)
}

// Levenshtein returns the unit-cost edit distance between a and b, counted in runes
func Levenshtein(a, b string) int {
	return edlib.LevenshteinDistance(a, b)
}

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	SimilarityThreshold float64
}

// MatchingService decides whether a catalog item matches the scraped title
type MatchingService struct {
	threshold float64
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig) *MatchingService {
	threshold := config.SimilarityThreshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	return &MatchingService{
		threshold: threshold,
	}
}

// Threshold returns the acceptance threshold in use
func (s *MatchingService) Threshold() float64 {
	return s.threshold
}

// Accepts reports whether a score clears the threshold (inclusive)
func (s *MatchingService) Accepts(score float64) bool {
	return score >= s.threshold
}

// Evaluate scores a catalog item against the baseline title.
// A below-threshold score is a normal outcome, not an error.
func (s *MatchingService) Evaluate(baseline string, item *domain.CatalogItem) (float64, bool) {
	if item == nil {
		return 0, false
	}

	score := Similarity(baseline, item.Title)
	accepted := s.Accepts(score)

	log.Debug().
		Str("baseline", baseline).
		Str("candidate", item.Title).
		Float64("score", score).
		Bool("accepted", accepted).
		Msg("scored catalog candidate")

	return score, accepted
}
