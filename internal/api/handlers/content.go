// HTTP handler for the read-only content rows the UI sections render.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/zohaibasghar/portfolio-server/internal/domain/content"
)

// ContentHandler serves rows of the portfolio content tables.
type ContentHandler struct {
	store *content.Store
}

// NewContentHandler creates a ContentHandler over the given store.
func NewContentHandler(store *content.Store) *ContentHandler {
	return &ContentHandler{store: store}
}

// ContentResponse is the response body for a content table read.
type ContentResponse struct {
	Table string           `json:"table"`
	Data  []map[string]any `json:"data"`
}

// List handles GET /api/content/{table}.
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if !content.KnownTable(table) {
		writeError(w, http.StatusNotFound, "unknown content table")
		return
	}

	rows, err := h.store.Rows(r.Context(), table)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read content")
		return
	}

	writeJSON(w, http.StatusOK, ContentResponse{Table: table, Data: rows})
}
