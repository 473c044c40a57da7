package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront-pricing-core/internal/model"
	"github.com/fairyhunter13/storefront-pricing-core/internal/pricing"
	"github.com/fairyhunter13/storefront-pricing-core/internal/service"
	appvalidator "github.com/fairyhunter13/storefront-pricing-core/internal/validator"
)

// mockFlashSaleService is a mock implementation of FlashSaleServiceInterface.
type mockFlashSaleService struct {
	createFn            func(ctx context.Context, req *model.CreateFlashSaleRequest) (*model.FlashSale, error)
	updateFn            func(ctx context.Context, id string, req *model.UpdateFlashSaleRequest) (*model.FlashSale, error)
	listActiveFn        func(ctx context.Context) ([]model.FlashSale, error)
	listUpcomingFn      func(ctx context.Context) ([]model.FlashSale, error)
	checkAvailabilityFn func(ctx context.Context, saleID string, quantity int) (*model.AvailabilityResponse, error)
}

func (m *mockFlashSaleService) Create(ctx context.Context, req *model.CreateFlashSaleRequest) (*model.FlashSale, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return nil, nil
}

func (m *mockFlashSaleService) Update(ctx context.Context, id string, req *model.UpdateFlashSaleRequest) (*model.FlashSale, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return nil, nil
}

func (m *mockFlashSaleService) ListActive(ctx context.Context) ([]model.FlashSale, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return []model.FlashSale{}, nil
}

func (m *mockFlashSaleService) ListUpcoming(ctx context.Context) ([]model.FlashSale, error) {
	if m.listUpcomingFn != nil {
		return m.listUpcomingFn(ctx)
	}
	return []model.FlashSale{}, nil
}

func (m *mockFlashSaleService) CheckAvailability(ctx context.Context, saleID string, quantity int) (*model.AvailabilityResponse, error) {
	if m.checkAvailabilityFn != nil {
		return m.checkAvailabilityFn(ctx, saleID, quantity)
	}
	return nil, nil
}

func setupFlashSaleTestApp(mockSvc *mockFlashSaleService) *fiber.App {
	app := fiber.New()
	h := NewFlashSaleHandler(mockSvc, appvalidator.New())
	app.Get("/api/flash-sales/active", h.ListActive)
	app.Get("/api/flash-sales/upcoming", h.ListUpcoming)
	app.Post("/api/flash-sales", h.CreateFlashSale)
	app.Put("/api/flash-sales/:id", h.UpdateFlashSale)
	app.Post("/api/flash-sales/:id/check", h.CheckAvailability)
	return app
}

func TestCreateFlashSale_Success(t *testing.T) {
	mockSvc := &mockFlashSaleService{
		createFn: func(ctx context.Context, req *model.CreateFlashSaleRequest) (*model.FlashSale, error) {
			return &model.FlashSale{
				ID:            "sale_001",
				Name:          req.Name,
				StartDate:     req.StartDate,
				EndDate:       req.EndDate,
				Status:        model.SaleStatusScheduled,
				TotalQuantity: *req.TotalQuantity,
				ProductIDs:    req.ProductIDs,
			}, nil
		},
	}
	app := setupFlashSaleTestApp(mockSvc)

	start := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	end := time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339)
	body := `{"name": "Summer Blowout", "start_date": "` + start + `", "end_date": "` + end + `", "discount_percent": "25", "total_quantity": 50, "product_ids": ["prod_001"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/flash-sales", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode, "Expected 201 Created")

	var result model.FlashSale
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "sale_001", result.ID)
	assert.Equal(t, model.SaleStatusScheduled, result.Status)
	assert.Equal(t, 50, result.TotalQuantity)
}

func TestCreateFlashSale_InvalidWindow(t *testing.T) {
	mockSvc := &mockFlashSaleService{
		createFn: func(ctx context.Context, req *model.CreateFlashSaleRequest) (*model.FlashSale, error) {
			return nil, pricing.ErrInvalidSaleWindow
		},
	}
	app := setupFlashSaleTestApp(mockSvc)

	start := time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339)
	end := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	body := `{"name": "Summer Blowout", "start_date": "` + start + `", "end_date": "` + end + `", "discount_percent": "25", "total_quantity": 50}`
	req := httptest.NewRequest(http.MethodPost, "/api/flash-sales", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "invalid request: start date must be before end date", result["error"], "Exact error message required")
}

func TestCreateFlashSale_MissingTotalQuantity(t *testing.T) {
	app := setupFlashSaleTestApp(&mockFlashSaleService{})

	start := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	end := time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339)
	body := `{"name": "Summer Blowout", "start_date": "` + start + `", "end_date": "` + end + `", "discount_percent": "25"}`
	req := httptest.NewRequest(http.MethodPost, "/api/flash-sales", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "invalid request: total_quantity is required", result["error"], "Exact error message required")
}

func TestCreateFlashSale_UnsupportedStatus(t *testing.T) {
	app := setupFlashSaleTestApp(&mockFlashSaleService{})

	start := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	end := time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339)
	body := `{"name": "Summer Blowout", "start_date": "` + start + `", "end_date": "` + end + `", "status": "archived", "discount_percent": "25", "total_quantity": 50}`
	req := httptest.NewRequest(http.MethodPost, "/api/flash-sales", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "invalid request: status has an unsupported value", result["error"], "Exact error message required")
}

func TestUpdateFlashSale_NotFound(t *testing.T) {
	mockSvc := &mockFlashSaleService{
		updateFn: func(ctx context.Context, id string, req *model.UpdateFlashSaleRequest) (*model.FlashSale, error) {
			return nil, service.ErrSaleNotFound
		},
	}
	app := setupFlashSaleTestApp(mockSvc)

	body := `{"name": "Renamed"}`
	req := httptest.NewRequest(http.MethodPut, "/api/flash-sales/ghost", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var result map[string]string
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "flash sale not found", result["error"])
}

func TestUpdateFlashSale_Success(t *testing.T) {
	var capturedID string
	mockSvc := &mockFlashSaleService{
		updateFn: func(ctx context.Context, id string, req *model.UpdateFlashSaleRequest) (*model.FlashSale, error) {
			capturedID = id
			return &model.FlashSale{ID: id, Status: model.SaleStatusCancelled}, nil
		},
	}
	app := setupFlashSaleTestApp(mockSvc)

	body := `{"status": "cancelled"}`
	req := httptest.NewRequest(http.MethodPut, "/api/flash-sales/sale_001", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "sale_001", capturedID)
}

func TestListActiveFlashSales(t *testing.T) {
	mockSvc := &mockFlashSaleService{
		listActiveFn: func(ctx context.Context) ([]model.FlashSale, error) {
			return []model.FlashSale{
				{ID: "sale_001", Status: model.SaleStatusActive},
				{ID: "sale_002", Status: model.SaleStatusActive},
			}, nil
		},
	}
	app := setupFlashSaleTestApp(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/flash-sales/active", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Sales []model.FlashSale `json:"sales"`
	}
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Len(t, result.Sales, 2)
}

func TestCheckAvailability_Success(t *testing.T) {
	mockSvc := &mockFlashSaleService{
		checkAvailabilityFn: func(ctx context.Context, saleID string, quantity int) (*model.AvailabilityResponse, error) {
			return &model.AvailabilityResponse{SaleID: saleID, Available: true, Remaining: 3}, nil
		},
	}
	app := setupFlashSaleTestApp(mockSvc)

	body := `{"quantity": 3}`
	req := httptest.NewRequest(http.MethodPost, "/api/flash-sales/sale_001/check", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result model.AvailabilityResponse
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Equal(t, 3, result.Remaining)
}

func TestCheckAvailability_InsufficientStock(t *testing.T) {
	mockSvc := &mockFlashSaleService{
		checkAvailabilityFn: func(ctx context.Context, saleID string, quantity int) (*model.AvailabilityResponse, error) {
			return nil, &pricing.InsufficientStockError{Requested: quantity, Remaining: 3}
		},
	}
	app := setupFlashSaleTestApp(mockSvc)

	body := `{"quantity": 5}`
	req := httptest.NewRequest(http.MethodPost, "/api/flash-sales/sale_001/check", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result struct {
		Error     string `json:"error"`
		Remaining int    `json:"remaining"`
	}
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "insufficient flash sale stock", result.Error)
	assert.Equal(t, 3, result.Remaining, "the response must carry the actual remainder")
}

func TestCheckAvailability_TemporalStates(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		message string
	}{
		{"not started", pricing.ErrSaleNotStarted, "flash sale has not started"},
		{"ended", pricing.ErrSaleEnded, "flash sale has ended"},
		{"inactive", pricing.ErrSaleInactive, "flash sale is not active"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockSvc := &mockFlashSaleService{
				checkAvailabilityFn: func(ctx context.Context, saleID string, quantity int) (*model.AvailabilityResponse, error) {
					return nil, tc.err
				},
			}
			app := setupFlashSaleTestApp(mockSvc)

			body := `{"quantity": 1}`
			req := httptest.NewRequest(http.MethodPost, "/api/flash-sales/sale_001/check", bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

			var result map[string]string
			err = json.NewDecoder(resp.Body).Decode(&result)
			require.NoError(t, err)
			assert.Equal(t, tc.message, result["error"])
		})
	}
}

func TestCheckAvailability_SaleNotFound(t *testing.T) {
	mockSvc := &mockFlashSaleService{
		checkAvailabilityFn: func(ctx context.Context, saleID string, quantity int) (*model.AvailabilityResponse, error) {
			return nil, service.ErrSaleNotFound
		},
	}
	app := setupFlashSaleTestApp(mockSvc)

	body := `{"quantity": 1}`
	req := httptest.NewRequest(http.MethodPost, "/api/flash-sales/ghost/check", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCheckAvailability_ZeroQuantity(t *testing.T) {
	app := setupFlashSaleTestApp(&mockFlashSaleService{})

	body := `{"quantity": 0}`
	req := httptest.NewRequest(http.MethodPost, "/api/flash-sales/sale_001/check", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)
	assert.Equal(t, "invalid request: quantity is below the minimum value", result["error"], "Exact error message required")
}
