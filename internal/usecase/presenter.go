package usecase

import (
	"net/url"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/shelfcheck/backend/internal/domain"
)

// DefaultSiteURL is the public catalog site used for links
const DefaultSiteURL = "https://www.valuebooks.jp"

const (
	displayTitleLimit = 30
	outOfStockText    = "在庫なし"
	priceSuffix       = "円"
)

// Presenter turns a resolution into the single notification payload
type Presenter struct {
	siteURL string
}

// NewPresenter creates a presenter that links to the given catalog site
func NewPresenter(siteURL string) *Presenter {
	if siteURL == "" {
		siteURL = DefaultSiteURL
	}
	return &Presenter{siteURL: strings.TrimRight(siteURL, "/")}
}

// Present builds exactly one matched or no-match notification
func (p *Presenter) Present(res *domain.Resolution) *domain.Notification {
	if res == nil || res.Match == nil {
		seed := ""
		var attempts []domain.Attempt
		if res != nil {
			seed = res.Title.Cleaned
			attempts = res.Attempts
		}
		return &domain.Notification{
			Kind: domain.NotificationNoMatch,
			NoMatch: &domain.NoMatchView{
				SearchSeed: seed,
				SearchURL:  p.SearchURL(seed),
			},
			Attempts: attempts,
		}
	}

	match := res.Match
	item := match.Item
	view := &domain.MatchedView{
		Title:        item.Title,
		DisplayTitle: truncateTitle(item.Title, displayTitleLimit),
		InStock:      item.InStock(),
		Price:        item.Price,
		PriceText:    outOfStockText,
		Link:         p.ItemURL(item, match.Query.Keyword),
		Keyword:      match.Query.Keyword,
		QueryKind:    match.Query.Kind,
		Score:        match.Score,
	}
	if view.InStock {
		view.PriceText = FormatPrice(*item.Price)
	}

	return &domain.Notification{
		Kind:     domain.NotificationMatched,
		Matched:  view,
		Attempts: res.Attempts,
	}
}

// ItemURL links to the catalog detail page, or to a keyword search when the
// item carries no catalog id
func (p *Presenter) ItemURL(item domain.CatalogItem, keyword string) string {
	if item.CatalogID != "" {
		return p.siteURL + "/bp/" + url.PathEscape(item.CatalogID)
	}
	return p.SearchURL(keyword)
}

// SearchURL builds the manual in-stock search link for a keyword
func (p *Presenter) SearchURL(keyword string) string {
	return p.siteURL + "/search?keyword=" + encodeURIComponent(keyword) + "&conditions_stock=0"
}

// FormatPrice renders a price with Japanese digit grouping, e.g. "1,234円"
func FormatPrice(price float64) string {
	printer := message.NewPrinter(language.Japanese)
	return printer.Sprintf("%v", number.Decimal(price)) + priceSuffix
}

func truncateTitle(title string, limit int) string {
	r := []rune(title)
	if len(r) <= limit {
		return title
	}
	return string(r[:limit]) + "..."
}

// uriComponentReplacer restores the characters encodeURIComponent leaves alone
var uriComponentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func encodeURIComponent(s string) string {
	return uriComponentReplacer.Replace(url.QueryEscape(s))
}
