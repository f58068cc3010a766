package order_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"lunchbox-orders/internal/logger"
	"lunchbox-orders/internal/models"
	"lunchbox-orders/internal/order"
	"lunchbox-orders/internal/order/qr"
	"lunchbox-orders/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	OrderService *order.OrderService
	Logger       *logger.Logger
}

func NewHandler(orderService *order.OrderService, log *logger.Logger) *Handler {
	return &Handler{OrderService: orderService, Logger: log}
}

// CreateOrder handles POST /api/orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var form models.OrderForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateOrder: failed to decode request body: %v", err))
		utils.WriteError(w, http.StatusBadRequest, "잘못된 요청입니다.")
		return
	}

	created, err := h.OrderService.Create(r.Context(), form)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateOrder: %v", err))
		var verr *order.ValidationError
		if errors.As(err, &verr) {
			utils.WriteError(w, http.StatusBadRequest, verr.Message)
			return
		}
		utils.WriteError(w, http.StatusBadRequest, "주문 처리 중 오류가 발생했습니다.")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, created)
}

// ListOrders handles GET /api/orders with optional contact, startDate,
// endDate and location query filters.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filters := models.OrderFilters{
		Contact:   r.URL.Query().Get("contact"),
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
		Location:  r.URL.Query().Get("location"),
	}

	orders, err := h.OrderService.List(r.Context(), filters)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListOrders: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "주문 내역을 불러오는 중 오류가 발생했습니다.")
		return
	}

	utils.WriteJSON(w, http.StatusOK, orders)
}

// GetOrder handles GET /api/orders/{orderId}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	orderData, err := h.OrderService.Get(r.Context(), orderID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetOrder: %v", err))
		h.writeOrderError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, orderData)
}

// SettleOrderDate handles POST /api/orders/{orderId}/settle and
// PATCH /api/orders/{orderId}. Body: {"date": "YYYY-MM-DD"}.
func (h *Handler) SettleOrderDate(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var body struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Date == "" {
		utils.WriteError(w, http.StatusBadRequest, "date is required")
		return
	}

	orderData, err := h.OrderService.SettleDate(r.Context(), orderID, body.Date)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SettleOrderDate: %v", err))
		h.writeOrderError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, orderData)
}

// CancelOrderDate handles POST /api/orders/{orderId}/cancel-date.
// Body: {"date": "YYYY-MM-DD", "cancelAllWeekly": bool}.
func (h *Handler) CancelOrderDate(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var body struct {
		Date            string `json:"date"`
		CancelAllWeekly bool   `json:"cancelAllWeekly"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Date == "" {
		utils.WriteError(w, http.StatusBadRequest, "date is required")
		return
	}

	settlements, err := h.OrderService.CancelDate(r.Context(), orderID, body.Date, body.CancelAllWeekly)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CancelOrderDate: %v", err))
		h.writeOrderError(w, err)
		return
	}

	message := "해당 날짜의 주문이 취소되었습니다."
	if body.CancelAllWeekly {
		message = "해당 요일의 모든 주문이 취소되었습니다."
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":     message,
		"settlements": settlements,
	})
}

// DeleteOrder handles DELETE /api/orders/{orderId}.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	if err := h.OrderService.Delete(r.Context(), orderID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteOrder: %v", err))
		h.writeOrderError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// OrderQR handles GET /api/orders/{orderId}/qr with a PNG response.
func (h *Handler) OrderQR(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	orderData, err := h.OrderService.Get(r.Context(), orderID)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}

	png, err := qr.GenerateOrderQR(*orderData)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("OrderQR: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "QR 코드 생성에 실패했습니다.")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *Handler) writeOrderError(w http.ResponseWriter, err error) {
	if errors.Is(err, order.ErrOrderNotFound) {
		utils.WriteError(w, http.StatusNotFound, order.ErrOrderNotFound.Error())
		return
	}
	utils.WriteError(w, http.StatusInternalServerError, err.Error())
}
