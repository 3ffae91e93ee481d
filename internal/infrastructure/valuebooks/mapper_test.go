package valuebooks

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfcheck/backend/internal/domain"
)

func TestDecodeFirstItem(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    *domain.CatalogItem
		wantErr error
	}{
		{
			name: "numeric fields",
			body: `{"items":[{"title":"鬼滅の刃 1","min_sell_price":380,"vs_catalog_id":"0012345678","productCode":9784088807232}]}`,
			want: &domain.CatalogItem{
				Title:       "鬼滅の刃 1",
				Price:       floatPtr(380),
				CatalogID:   "0012345678",
				ProductCode: "9784088807232",
			},
		},
		{
			name: "string price and missing ids",
			body: `{"items":[{"title":"ONE PIECE 107","min_sell_price":"1,200"}]}`,
			want: &domain.CatalogItem{Title: "ONE PIECE 107", Price: floatPtr(1200)},
		},
		{
			name: "null price means out of stock",
			body: `{"items":[{"title":"夜と霧","min_sell_price":null,"vs_catalog_id":42}]}`,
			want: &domain.CatalogItem{Title: "夜と霧", CatalogID: "42"},
		},
		{
			name: "only the first item is read",
			body: `{"items":[{"title":"first"},{"title":"second"}]}`,
			want: &domain.CatalogItem{Title: "first"},
		},
		{
			name:    "empty items",
			body:    `{"items":[]}`,
			wantErr: domain.ErrNoCatalogResult,
		},
		{
			name:    "missing items",
			body:    `{"total":0}`,
			wantErr: domain.ErrNoCatalogResult,
		},
		{
			name:    "null first item",
			body:    `{"items":[null]}`,
			wantErr: domain.ErrMalformedResponse,
		},
		{
			name:    "not json",
			body:    `<html>maintenance</html>`,
			wantErr: domain.ErrMalformedResponse,
		},
		{
			name:    "items is not a list",
			body:    `{"items":"oops"}`,
			wantErr: domain.ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeFirstItem([]byte(tt.body))
			if tt.wantErr != nil {
				assert.Nil(t, got)
				assert.True(t, errors.Is(err, tt.wantErr), "error = %v, want %v", err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
	}{
		{`980`, floatPtr(980)},
		{`"980"`, floatPtr(980)},
		{`" 1,980 "`, floatPtr(1980)},
		{`""`, nil},
		{`"free"`, nil},
		{`null`, nil},
		{``, nil},
		{`{"amount":1}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parsePrice(json.RawMessage(tt.raw)))
		})
	}
}

func floatPtr(v float64) *float64 { return &v }
