package domain

// PageInfo represents the title and author scraped from a product detail page
type PageInfo struct {
	Title  string `json:"title" binding:"required"`
	Author string `json:"author,omitempty"`
	URL    string `json:"url,omitempty"`
}

// ReducedTitle holds the two reduced forms of a raw product title.
// Cleaned is also the scoring baseline for every cascade step.
type ReducedTitle struct {
	Cleaned string `json:"cleaned"`
	Simple  string `json:"simple"`
}

// QueryKind identifies which cascade step produced a search keyword
type QueryKind string

const (
	QueryTitleAndAuthor   QueryKind = "title_author"
	QueryTitleExact       QueryKind = "title_exact"
	QueryTitleFuzzy       QueryKind = "title_fuzzy"
	QuerySimpleTitleFuzzy QueryKind = "simple_title_fuzzy"
)

// CandidateQuery is a single keyword submitted to the catalog
type CandidateQuery struct {
	Kind    QueryKind `json:"kind"`
	Keyword string    `json:"keyword"`
}

// CatalogItem is the first item returned by a catalog search.
// A nil Price means the catalog reported no price.
type CatalogItem struct {
	Title       string   `json:"title"`
	Price       *float64 `json:"price,omitempty"`
	CatalogID   string   `json:"catalogId,omitempty"`
	ProductCode string   `json:"productCode,omitempty"`
}

// InStock reports whether the catalog listed a usable sell price
func (i CatalogItem) InStock() bool {
	return i.Price != nil && *i.Price > 0
}

// MatchResult represents an accepted catalog item and the query that found it
type MatchResult struct {
	Item  CatalogItem    `json:"item"`
	Query CandidateQuery `json:"query"`
	Score float64        `json:"score"`
}

// AttemptOutcome describes what happened to a single cascade step
type AttemptOutcome string

const (
	AttemptMatched        AttemptOutcome = "matched"
	AttemptNoResult       AttemptOutcome = "no_result"
	AttemptBelowThreshold AttemptOutcome = "below_threshold"
)

// Attempt records one issued catalog query
type Attempt struct {
	Query          CandidateQuery `json:"query"`
	Outcome        AttemptOutcome `json:"outcome"`
	Score          float64        `json:"score"`
	CandidateTitle string         `json:"candidateTitle,omitempty"`
}

// Resolution is the outcome of a full cascade run. A nil Match means no match.
type Resolution struct {
	Title    ReducedTitle `json:"title"`
	Author   string       `json:"author,omitempty"`
	Match    *MatchResult `json:"match,omitempty"`
	Attempts []Attempt    `json:"attempts"`
}

// Matched reports whether the cascade accepted a catalog item
func (r *Resolution) Matched() bool {
	return r.Match != nil
}
