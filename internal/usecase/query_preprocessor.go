package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/shelfcheck/backend/internal/domain"
)

// spaceClass mirrors the browser \s set; Go's \s only covers ASCII whitespace
const spaceClass = `[\s\v\x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}]`

// Compiled regex patterns for title reduction
var (
	// Bracketed span up to the first closing bracket of any kind
	bracketSpanPattern = regexp.MustCompile(`[\(（【\[].+?[\)）】\]]`)

	// Interior of a bracket that holds only a volume number, e.g. "1", "１２", "3 巻"
	volumeInteriorPattern = regexp.MustCompile(`^[0-9０-９.]+(?:` + spaceClass + `*巻)?$`)

	// Format marker such as ": 本"
	formatMarkerPattern = regexp.MustCompile(`:` + spaceClass + `*本`)

	whitespaceRunPattern = regexp.MustCompile(spaceClass + `+`)

	// Subtitle separators: colon, full-width colon, tildes, hyphens, em-dash
	subtitleSeparatorPattern = regexp.MustCompile(`[:：～~－\-\x{2014}]`)

	// Trailing volume token
	trailingVolumePattern = regexp.MustCompile(`([0-9０-９.]+(?:` + spaceClass + `*巻)?)$`)
)

// QueryPreprocessor reduces scraped product titles and plans catalog queries
type QueryPreprocessor struct{}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor() *QueryPreprocessor {
	return &QueryPreprocessor{}
}

// Reduce derives the cleaned and simple forms of a raw product title
func (p *QueryPreprocessor) Reduce(raw string) domain.ReducedTitle {
	cleaned := cleanTitle(raw)
	simple := simplifyTitle(cleaned)

	log.Debug().
		Str("raw", raw).
		Str("cleaned", cleaned).
		Str("simple", simple).
		Msg("reduced title")

	return domain.ReducedTitle{Cleaned: cleaned, Simple: simple}
}

// cleanTitle strips bracketed annotations (keeping volume numbers) and
// format markers, then collapses whitespace.
func cleanTitle(raw string) string {
	cleaned := bracketSpanPattern.ReplaceAllStringFunc(raw, func(span string) string {
		if volumeInteriorPattern.MatchString(bracketInterior(span)) {
			return span
		}
		return ""
	})
	cleaned = formatMarkerPattern.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRunPattern.ReplaceAllString(cleaned, " ")
	return strings.TrimFunc(cleaned, isSpace)
}

// bracketInterior drops the opening and closing bracket runes of a span
func bracketInterior(span string) string {
	_, open := utf8.DecodeRuneInString(span)
	_, closing := utf8.DecodeLastRuneInString(span)
	if open+closing > len(span) {
		return ""
	}
	return span[open : len(span)-closing]
}

// simplifyTitle keeps the text before the first subtitle separator and
// re-appends a trailing volume token lost by the cut.
func simplifyTitle(cleaned string) string {
	simple := cleaned
	if loc := subtitleSeparatorPattern.FindStringIndex(cleaned); loc != nil {
		simple = cleaned[:loc[0]]
	}
	simple = strings.TrimFunc(simple, isSpace)

	if m := trailingVolumePattern.FindStringSubmatch(cleaned); m != nil {
		if volume := m[1]; !strings.Contains(simple, volume) {
			simple = simple + " " + volume
		}
	}

	return simple
}

// QueryFor builds the keyword for one cascade step. The second return value is
// false when the step must be skipped.
func (p *QueryPreprocessor) QueryFor(kind domain.QueryKind, title domain.ReducedTitle, author string) (domain.CandidateQuery, bool) {
	quoted := `"` + title.Cleaned + `"`

	switch kind {
	case domain.QueryTitleAndAuthor:
		keyword := quoted
		if author != "" {
			keyword = quoted + " " + author
		}
		return domain.CandidateQuery{Kind: kind, Keyword: keyword}, true

	case domain.QueryTitleExact:
		// identical to the first step when there is no author
		if author == "" {
			return domain.CandidateQuery{}, false
		}
		return domain.CandidateQuery{Kind: kind, Keyword: quoted}, true

	case domain.QueryTitleFuzzy:
		return domain.CandidateQuery{Kind: kind, Keyword: title.Cleaned}, true

	case domain.QuerySimpleTitleFuzzy:
		if utf8.RuneCountInString(title.Simple) <= 1 || title.Simple == title.Cleaned {
			return domain.CandidateQuery{}, false
		}
		return domain.CandidateQuery{Kind: kind, Keyword: title.Simple}, true
	}

	return domain.CandidateQuery{}, false
}

// queryOrder is the fixed cascade order, most specific first
var queryOrder = []domain.QueryKind{
	domain.QueryTitleAndAuthor,
	domain.QueryTitleExact,
	domain.QueryTitleFuzzy,
	domain.QuerySimpleTitleFuzzy,
}

// BuildQueries returns the ordered candidate queries with skipped steps removed
func (p *QueryPreprocessor) BuildQueries(title domain.ReducedTitle, author string) []domain.CandidateQuery {
	queries := make([]domain.CandidateQuery, 0, len(queryOrder))
	for _, kind := range queryOrder {
		if q, ok := p.QueryFor(kind, title, author); ok {
			queries = append(queries, q)
		}
	}
	return queries
}
