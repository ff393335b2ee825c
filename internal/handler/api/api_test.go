package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
)

type stubTicker struct {
	indices []model.MarketIndex
}

func (s *stubTicker) Indices(context.Context) []model.MarketIndex { return s.indices }

func TestMarketReturnsQuotes(t *testing.T) {
	h := NewHandler(&stubTicker{indices: []model.MarketIndex{
		{Name: "DAX", Symbol: "GDAXI", Value: "18000.00", ChangePercent: "0.42", FetchedAt: time.Now()},
		{Name: "CAC 40", Symbol: "FCHI", Value: "8100.00", ChangePercent: "-0.10", Synthetic: true, FetchedAt: time.Now()},
	}})

	rec := httptest.NewRecorder()
	h.Market(rec, httptest.NewRequest(http.MethodGet, "/api/market", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Data []model.MarketIndex `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "DAX", resp.Data[0].Name)
	assert.False(t, resp.Data[0].Synthetic)
	assert.True(t, resp.Data[1].Synthetic)
}

func TestMarketEmptyTickerYieldsEmptyArray(t *testing.T) {
	h := NewHandler(&stubTicker{})

	rec := httptest.NewRecorder()
	h.Market(rec, httptest.NewRequest(http.MethodGet, "/api/market", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusNotFound, "not_found", "no such thing")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"not_found","message":"no such thing"}}`, rec.Body.String())
}
