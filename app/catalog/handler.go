package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/aurumstore/catalog-api/models"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type ListResponse struct {
	Total   int64                `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
	Results []models.ProductView `json:"results"`
}

type CatalogProvider interface {
	ListProducts(f models.ProductFilters) ([]models.ProductView, int64, error)
	GetProduct(id uint) (models.ProductView, error)
	CreateProduct(in models.ProductInput) (uint, error)
	UpdateProduct(id uint, fields map[string]any) (models.ProductView, error)
	DeleteProduct(id uint) error
}

type CatalogHandler struct {
	repo CatalogProvider
	log  zerolog.Logger
}

func NewCatalogHandler(r CatalogProvider, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		repo: r,
		log:  log,
	}
}

func (h *CatalogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := models.ProductFilters{
		Category:    q.Get("categoria"),
		Search:      q.Get("search"),
		Sort:        q.Get("order"),
		Limit:       models.DefaultPageSize,
		OnPromotion: boolParam(q.Get("isPromo")),
		IsNew:       boolParam(q.Get("isNew")),
		Featured:    boolParam(q.Get("isEvidence")),
		Dimensions:  map[string]string{},
	}
	if lStr := q.Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil && l > 0 {
			filters.Limit = l
		}
	}
	if oStr := q.Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			filters.Offset = o
		}
	}
	for _, key := range models.ProductFilterKeys() {
		if v := q.Get(key); v != "" {
			filters.Dimensions[key] = v
		}
	}

	results, total, err := h.repo.ListProducts(filters)
	if err != nil {
		if errors.Is(err, models.ErrCategoryNotFound) {
			writeError(w, http.StatusBadRequest, "category not found")
			return
		}
		h.log.Error().Err(err).Str("category", filters.Category).Msg("product listing failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if len(results) == 0 {
		writeError(w, http.StatusNotFound, "no products found")
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
		Results: results,
	})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	product, err := h.repo.GetProduct(id)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.log.Error().Err(err).Uint("product_id", id).Msg("product lookup failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body) == 0 {
		writeError(w, http.StatusBadRequest, "product payload is required")
		return
	}

	input, err := buildProductInput(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.repo.CreateProduct(input)
	if err != nil {
		if errors.Is(err, models.ErrCategoryNotFound) {
			writeError(w, http.StatusBadRequest, "category not found")
			return
		}
		h.log.Error().Err(err).Str("category", input.Category).Msg("product creation failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "product created",
		"productId": id,
	})
}

func (h *CatalogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	product, err := h.repo.UpdateProduct(id, fields)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNoFieldsToUpdate):
			writeJSON(w, http.StatusOK, map[string]any{"message": "nothing to update"})
		case errors.Is(err, models.ErrProductNotFound):
			writeError(w, http.StatusNotFound, "product not found")
		default:
			h.log.Error().Err(err).Uint("product_id", id).Msg("product update failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "product updated",
		"modifiedProduct": product,
	})
}

func (h *CatalogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	if err := h.repo.DeleteProduct(id); err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.log.Error().Err(err).Uint("product_id", id).Msg("product deletion failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "product deleted",
	})
}

// buildProductInput maps a raw JSON payload to a typed input. Only the price
// is strict: a non-numeric value is rejected instead of silently zeroed.
func buildProductInput(body map[string]any) (models.ProductInput, error) {
	input := models.ProductInput{
		Category:         getString(body, "categoria"),
		Title:            getString(body, "title"),
		Code:             getString(body, "codice"),
		EANCode:          getString(body, "codice_ean"),
		Description:      getString(body, "description"),
		Image:            getString(body, "image"),
		Brand:            getString(body, "brand"),
		Package:          getString(body, "confezione"),
		Warranty:         getString(body, "garanzia"),
		ManufacturerCode: getString(body, "codice_produttore"),
		Available:        getBool(body, "available"),
		OnPromotion:      getBool(body, "in_promozione"),
		Featured:         getBool(body, "in_evidenza"),
		IsNew:            getBool(body, "novita"),
		Attributes:       map[string]string{},
	}
	if input.Category == "" {
		return input, errors.New("categoria is required")
	}

	if v, ok := body["price"]; ok {
		price, ok := toFloat(v)
		if !ok {
			return input, errors.New("price must be numeric")
		}
		input.Price = decimal.NewFromFloat(price)
	}
	if v, ok := body["discount"]; ok && v != nil {
		if d, ok := toFloat(v); ok {
			input.Discount = &d
		}
	}
	if v, ok := body["stock"]; ok {
		if n, ok := toFloat(v); ok {
			input.Stock = int(n)
		}
	}

	for _, key := range models.AttributeKeys() {
		if v := getString(body, key); v != "" {
			input.Attributes[key] = v
		}
	}
	return input, nil
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// boolParam maps a query value to a tri-state flag: unset, true or false.
func boolParam(v string) *bool {
	switch v {
	case "true", "1":
		b := true
		return &b
	case "false", "0":
		b := false
		return &b
	}
	return nil
}

func getString(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func getBool(m map[string]any, key string) bool {
	switch x := m[key].(type) {
	case bool:
		return x
	case string:
		return x == "true" || x == "1"
	case float64:
		return x == 1
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f, true
		}
	}
	return 0, false
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
