package amazon

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/shelfcheck/backend/internal/domain"
)

var (
	// Role markers appended to contributor names in the byline
	bylineRolePattern = regexp.MustCompile(`\(著\)|（著）|\(編集\)|（編集）|著者：`)

	bylineSeparatorPattern = regexp.MustCompile(`,|、`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Parser extracts book details from an amazon.co.jp product page
type Parser struct{}

// NewParser creates a new product page parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads the product title and the first listed author.
// A page without #productTitle is not a product page.
func (p *Parser) Parse(html []byte) (*domain.PageInfo, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse product page: %w", err)
	}

	titleSel := doc.Find("#productTitle").First()
	if titleSel.Length() == 0 {
		return nil, domain.ErrTitleNotFound
	}

	return &domain.PageInfo{
		Title:  collapseText(titleSel.Text()),
		Author: extractAuthor(doc),
	}, nil
}

// extractAuthor prefers the first contributor link; otherwise it strips role
// markers from the byline text and keeps the first name.
func extractAuthor(doc *goquery.Document) string {
	byline := doc.Find("#bylineInfo").First()
	if byline.Length() == 0 {
		return ""
	}

	if link := byline.Find("a.a-link-normal").First(); link.Length() > 0 {
		return collapseText(link.Text())
	}

	text := bylineRolePattern.ReplaceAllString(byline.Text(), "")
	first := bylineSeparatorPattern.Split(text, 2)[0]
	return collapseText(first)
}

// collapseText approximates rendered text: markup whitespace collapses to single spaces
func collapseText(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}
