package capacity_api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"lunchbox-orders/internal/capacity"
	"lunchbox-orders/internal/capacity/capacity_api"
	"lunchbox-orders/internal/logger"
	"lunchbox-orders/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScanner struct {
	orders []models.Order
	err    error
}

func (f *fakeScanner) AllOrders(ctx context.Context) ([]models.Order, error) {
	return f.orders, f.err
}

func newHandler(scanner *fakeScanner) *capacity_api.Handler {
	svc := capacity.NewService(scanner, nil, &logger.Logger{})
	return capacity_api.NewHandler(svc, &logger.Logger{})
}

func TestGetCapacities(t *testing.T) {
	handler := newHandler(&fakeScanner{orders: []models.Order{
		{Settlements: []models.OrderSettlement{{Date: "2024-06-03"}}},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/capacity?dates=2024-06-03,2024-06-04", nil)
	rec := httptest.NewRecorder()
	handler.GetCapacities(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.DailyCapacity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].CurrentOrderCount)
	assert.Equal(t, models.MaxDailyCapacity-1, got[0].Remaining)
	assert.Equal(t, 0, got[1].CurrentOrderCount)
}

func TestGetCapacitiesMissingDates(t *testing.T) {
	handler := newHandler(&fakeScanner{})

	req := httptest.NewRequest(http.MethodGet, "/api/capacity", nil)
	rec := httptest.NewRecorder()
	handler.GetCapacities(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCapacitiesDegradesOnScanFailure(t *testing.T) {
	handler := newHandler(&fakeScanner{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/api/capacity?dates=2024-06-03", nil)
	rec := httptest.NewRecorder()
	handler.GetCapacities(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.DailyCapacity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, models.MaxDailyCapacity, got[0].Remaining)
}

func TestUpdateCapacityIgnoresOverrides(t *testing.T) {
	handler := newHandler(&fakeScanner{orders: []models.Order{
		{Settlements: []models.OrderSettlement{{Date: "2024-06-03"}}},
	}})

	body := `{"date":"2024-06-03","max_capa":50,"is_closed":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/capacity", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.UpdateCapacity(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got models.DailyCapacity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, models.MaxDailyCapacity, got.MaxCapa)
	assert.False(t, got.IsClosed)
	assert.Equal(t, 1, got.CurrentOrderCount)
}

func TestUpdateCapacityMissingDate(t *testing.T) {
	handler := newHandler(&fakeScanner{})

	req := httptest.NewRequest(http.MethodPost, "/api/capacity", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	handler.UpdateCapacity(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
