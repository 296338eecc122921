package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"otka-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubProductService struct {
	product service.ProductResponse
	err     error
}

func (s *stubProductService) CreateProduct(ctx context.Context, req service.CreateProductRequest, userID string) (service.ProductResponse, error) {
	return s.product, s.err
}

func (s *stubProductService) UpdateProduct(ctx context.Context, id string, req service.UpdateProductRequest, userID string) (service.ProductResponse, error) {
	return s.product, s.err
}

func (s *stubProductService) DeleteProduct(ctx context.Context, id string, userID string) error {
	return s.err
}

func (s *stubProductService) GetProduct(ctx context.Context, id string) (service.ProductResponse, error) {
	return s.product, s.err
}

func (s *stubProductService) GetProducts(ctx context.Context, query service.ProductListQuery) ([]service.ProductResponse, int64, error) {
	return []service.ProductResponse{s.product}, 1, s.err
}

func TestPublicProductDetailHidesDelistedProducts(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &stubProductService{
		product: service.ProductResponse{ID: uuid.New(), SKU: "OSLO-3S", Name: "Canapea Oslo", Active: false},
	}
	router := gin.New()
	NewProductHandler(svc).RegisterRoutes(router.Group(""))

	url := "/api/public/products/" + svc.product.ID.String()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Relisting makes it publicly visible again.
	svc.product.Active = true
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
