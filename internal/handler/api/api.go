// Package api provides the JSON endpoints for the public site.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
)

// TickerSource supplies the current index quotes.
type TickerSource interface {
	Indices(ctx context.Context) []model.MarketIndex
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	ticker TickerSource
}

// NewHandler creates a new API handler.
func NewHandler(ticker TickerSource) *Handler {
	return &Handler{ticker: ticker}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any `json:"data"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// Market serves the ticker indices. Synthetic quotes keep their flag so
// clients can label them.
func (h *Handler) Market(w http.ResponseWriter, r *http.Request) {
	indices := h.ticker.Indices(r.Context())
	if indices == nil {
		indices = []model.MarketIndex{}
	}
	WriteSuccess(w, indices)
}
