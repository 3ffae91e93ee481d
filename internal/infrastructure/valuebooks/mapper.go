package valuebooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shelfcheck/backend/internal/domain"
)

// searchResponse is the subset of the /api/search payload we read
type searchResponse struct {
	Items []*searchItem `json:"items"`
}

// searchItem fields arrive as numbers or strings depending on the listing
type searchItem struct {
	Title        string          `json:"title"`
	MinSellPrice json.RawMessage `json:"min_sell_price"`
	VsCatalogID  json.RawMessage `json:"vs_catalog_id"`
	ProductCode  json.RawMessage `json:"productCode"`
}

// decodeFirstItem parses a search body and maps its first item
func decodeFirstItem(body []byte) (*domain.CatalogItem, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	if len(resp.Items) == 0 {
		return nil, domain.ErrNoCatalogResult
	}

	first := resp.Items[0]
	if first == nil {
		return nil, fmt.Errorf("%w: first item is null", domain.ErrMalformedResponse)
	}

	return mapToCatalogItem(first), nil
}

// mapToCatalogItem converts a search item to our domain CatalogItem
func mapToCatalogItem(item *searchItem) *domain.CatalogItem {
	return &domain.CatalogItem{
		Title:       item.Title,
		Price:       parsePrice(item.MinSellPrice),
		CatalogID:   parseIdentifier(item.VsCatalogID),
		ProductCode: parseIdentifier(item.ProductCode),
	}
}

// parsePrice accepts a JSON number or numeric string; anything else means no price
func parsePrice(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return &num
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil
	}
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if text == "" {
		return nil
	}
	num, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &num
}

// parseIdentifier accepts a JSON string or number
func parseIdentifier(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return num.String()
	}

	return ""
}
