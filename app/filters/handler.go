package filters

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aurumstore/catalog-api/models"
	"github.com/rs/zerolog"
)

type FacetsResponse struct {
	Category string              `json:"category_name"`
	Filters  map[string][]string `json:"filters"`
}

type FacetsProvider interface {
	CategoryFacets(category string) (map[string][]string, error)
	DictionaryTable(name string) ([]models.DictionaryEntry, error)
}

type FiltersHandler struct {
	repo FacetsProvider
	log  zerolog.Logger
}

func NewFiltersHandler(r FacetsProvider, log zerolog.Logger) *FiltersHandler {
	return &FiltersHandler{repo: r, log: log}
}

// HandleGetFacets returns, per dimension applicable to the category, the
// distinct values available for filtering. Empty dimensions are absent.
func (h *FiltersHandler) HandleGetFacets(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	if category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}

	facets, err := h.repo.CategoryFacets(category)
	if err != nil {
		if errors.Is(err, models.ErrCategoryNotFound) {
			writeError(w, http.StatusBadRequest, "unsupported category")
			return
		}
		h.log.Error().Err(err).Str("category", category).Msg("facet query failed")
		writeError(w, http.StatusInternalServerError, "failed to fetch filters")
		return
	}

	writeJSON(w, http.StatusOK, FacetsResponse{
		Category: category,
		Filters:  facets,
	})
}

// HandleGetTable dumps one allow-listed dictionary table.
func (h *FiltersHandler) HandleGetTable(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	if table == "" {
		writeError(w, http.StatusBadRequest, "table name is required")
		return
	}

	entries, err := h.repo.DictionaryTable(table)
	if err != nil {
		if errors.Is(err, models.ErrUnknownTable) {
			writeError(w, http.StatusBadRequest, "table not allowed")
			return
		}
		h.log.Error().Err(err).Str("table", table).Msg("dictionary table query failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if len(entries) == 0 {
		writeError(w, http.StatusNotFound, "no data found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": entries})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
