package domain

// NotificationKind is either "matched" or "no_match"
type NotificationKind string

const (
	NotificationMatched NotificationKind = "matched"
	NotificationNoMatch NotificationKind = "no_match"
)

// Notification is the single payload handed to a presentation sink
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Matched *MatchedView     `json:"matched,omitempty"`
	NoMatch *NoMatchView     `json:"noMatch,omitempty"`

	// Attempts is diagnostic and never changes how the payload is rendered
	Attempts []Attempt `json:"attempts,omitempty"`
}

// MatchedView is the display model for an accepted catalog item
type MatchedView struct {
	Title        string    `json:"title"`
	DisplayTitle string    `json:"displayTitle"`
	InStock      bool      `json:"inStock"`
	Price        *float64  `json:"price"`
	PriceText    string    `json:"priceText"`
	Link         string    `json:"link"`
	Keyword      string    `json:"keyword"`
	QueryKind    QueryKind `json:"queryKind"`
	Score        float64   `json:"score"`
}

// NoMatchView seeds a manual catalog search
type NoMatchView struct {
	SearchSeed string `json:"searchSeed"`
	SearchURL  string `json:"searchUrl"`
}
