package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aurumstore/catalog-api/models"
)

// --- Mock Repo ---

type MockCatalogRepo struct {
	Views []models.ProductView
	View  models.ProductView
	Total int64
	NewID uint
	Err   error

	// Fields to capture call arguments
	lastCalledFilters models.ProductFilters
	lastCalledID      uint
	lastCalledInput   models.ProductInput
	lastCalledFields  map[string]any
	deleteCalled      bool
}

func (m *MockCatalogRepo) ListProducts(f models.ProductFilters) ([]models.ProductView, int64, error) {
	m.lastCalledFilters = f
	if m.Err != nil {
		return nil, 0, m.Err
	}
	return m.Views, m.Total, nil
}

func (m *MockCatalogRepo) GetProduct(id uint) (models.ProductView, error) {
	m.lastCalledID = id
	if m.Err != nil {
		return models.ProductView{}, m.Err
	}
	return m.View, nil
}

func (m *MockCatalogRepo) CreateProduct(in models.ProductInput) (uint, error) {
	m.lastCalledInput = in
	if m.Err != nil {
		return 0, m.Err
	}
	return m.NewID, nil
}

func (m *MockCatalogRepo) UpdateProduct(id uint, fields map[string]any) (models.ProductView, error) {
	m.lastCalledID = id
	m.lastCalledFields = fields
	if m.Err != nil {
		return models.ProductView{}, m.Err
	}
	return m.View, nil
}

func (m *MockCatalogRepo) DeleteProduct(id uint) error {
	m.lastCalledID = id
	m.deleteCalled = true
	return m.Err
}

// --- Helpers ---

func newHandler(repo *MockCatalogRepo) *CatalogHandler {
	return NewCatalogHandler(repo, zerolog.Nop())
}

func newListView(id uint, title, category string) models.ProductView {
	return models.ProductView{ID: id, Title: title, Category: category}
}

// --- Tests ---

func TestHandleList(t *testing.T) {
	twoWatches := []models.ProductView{
		newListView(1, "Diver acciaio", "orologi"),
		newListView(2, "Cronografo", "orologi"),
	}

	testCases := []struct {
		name               string
		url                string
		mockRepoSetup      func() *MockCatalogRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCalls     func(t *testing.T, repo *MockCatalogRepo)
	}{
		{
			name: "Success with default pagination",
			url:  "/api/products",
			mockRepoSetup: func() *MockCatalogRepo {
				return &MockCatalogRepo{Views: twoWatches, Total: 2}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp ListResponse
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.EqualValues(t, 2, resp.Total)
				assert.Len(t, resp.Results, 2)
				assert.Equal(t, "Diver acciaio", resp.Results[0].Title)
			},
			checkRepoCalls: func(t *testing.T, repo *MockCatalogRepo) {
				assert.Equal(t, models.DefaultPageSize, repo.lastCalledFilters.Limit)
				assert.Equal(t, 0, repo.lastCalledFilters.Offset)
				assert.Empty(t, repo.lastCalledFilters.Category)
			},
		},
		{
			name: "Custom pagination is forwarded",
			url:  "/api/products?limit=5&offset=10",
			mockRepoSetup: func() *MockCatalogRepo {
				return &MockCatalogRepo{Views: twoWatches, Total: 12}
			},
			expectedStatusCode: http.StatusOK,
			checkRepoCalls: func(t *testing.T, repo *MockCatalogRepo) {
				assert.Equal(t, 5, repo.lastCalledFilters.Limit)
				assert.Equal(t, 10, repo.lastCalledFilters.Offset)
			},
		},
		{
			name: "Invalid pagination values fall back to defaults",
			url:  "/api/products?limit=abc&offset=-3",
			mockRepoSetup: func() *MockCatalogRepo {
				return &MockCatalogRepo{Views: twoWatches, Total: 2}
			},
			expectedStatusCode: http.StatusOK,
			checkRepoCalls: func(t *testing.T, repo *MockCatalogRepo) {
				assert.Equal(t, models.DefaultPageSize, repo.lastCalledFilters.Limit)
				assert.Equal(t, 0, repo.lastCalledFilters.Offset)
			},
		},
		{
			name: "Category, search and sort are forwarded",
			url:  "/api/products?categoria=orologi&search=diver&order=price-asc",
			mockRepoSetup: func() *MockCatalogRepo {
				return &MockCatalogRepo{Views: twoWatches, Total: 2}
			},
			expectedStatusCode: http.StatusOK,
			checkRepoCalls: func(t *testing.T, repo *MockCatalogRepo) {
				assert.Equal(t, "orologi", repo.lastCalledFilters.Category)
				assert.Equal(t, "diver", repo.lastCalledFilters.Search)
				assert.Equal(t, "price-asc", repo.lastCalledFilters.Sort)
			},
		},
		{
			name: "Dimension params are collected, unknown params are not",
			url:  "/api/products?categoria=orologi&materiale_cassa=Acciaio&brand=Lumetta&bogus=x",
			mockRepoSetup: func() *MockCatalogRepo {
				return &MockCatalogRepo{Views: twoWatches, Total: 2}
			},
			expectedStatusCode: http.StatusOK,
			checkRepoCalls: func(t *testing.T, repo *MockCatalogRepo) {
				assert.Equal(t, "Acciaio", repo.lastCalledFilters.Dimensions["materiale_cassa"])
				assert.Equal(t, "Lumetta", repo.lastCalledFilters.Dimensions["brand"])
				assert.NotContains(t, repo.lastCalledFilters.Dimensions, "bogus")
			},
		},
		{
			name: "Boolean flags are tri-state",
			url:  "/api/products?isPromo=true&isNew=false&isEvidence=maybe",
			mockRepoSetup: func() *MockCatalogRepo {
				return &MockCatalogRepo{Views: twoWatches, Total: 2}
			},
			expectedStatusCode: http.StatusOK,
			checkRepoCalls: func(t *testing.T, repo *MockCatalogRepo) {
				if assert.NotNil(t, repo.lastCalledFilters.OnPromotion) {
					assert.True(t, *repo.lastCalledFilters.OnPromotion)
				}
				if assert.NotNil(t, repo.lastCalledFilters.IsNew) {
					assert.False(t, *repo.lastCalledFilters.IsNew)
				}
				assert.Nil(t, repo.lastCalledFilters.Featured, "unparseable flag stays unset")
			},
		},
		{
			name: "Empty result",
			url:  "/api/products?categoria=sveglie",
			mockRepoSetup: func() *MockCatalogRepo {
				return &MockCatalogRepo{Views: nil, Total: 0}
			},
			expectedStatusCode: http.StatusNotFound,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "no products found", errResp["error"])
			},
		},
		{
			name: "Unknown category",
			url:  "/api/products?categoria=profumi",
			mockRepoSetup: func() *MockCatalogRepo {
				return &MockCatalogRepo{Err: models.ErrCategoryNotFound}
			},
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "category not found", errResp["error"])
			},
		},
		{
			name: "Repository error",
			url:  "/api/products",
			mockRepoSetup: func() *MockCatalogRepo {
				return &MockCatalogRepo{Err: errors.New("db down")}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "internal server error", errResp["error"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := newHandler(mockRepo)
			req := httptest.NewRequest("GET", tc.url, nil)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleList(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)

			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}

			if tc.checkRepoCalls != nil {
				tc.checkRepoCalls(t, mockRepo)
			}
		})
	}
}
